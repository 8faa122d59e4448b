// Package votes is the authoritative per-voter, per-review vote record.
// Review.up and Review.down are aggregates derived from it and are only
// ever changed through Cast.
package votes

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidValue   = errors.New("vote value must be -1, 0 or 1")
	ErrReviewNotFound = errors.New("review not found")
	ErrVoterRequired  = errors.New("voter identity is required")
)

// Value is a vote polarity. None doubles as the explicit "clear my vote"
// intent.
type Value int

const (
	Down Value = -1
	None Value = 0
	Up   Value = 1
)

func (v Value) Valid() bool {
	return v == Down || v == None || v == Up
}

func (v Value) String() string {
	switch v {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "none"
	}
}

type Delta struct {
	Up   int
	Down int
}

// Transition is one step of the per (review, voter) state machine.
type Transition struct {
	From  Value
	To    Value
	Delta Delta
}

func (t Transition) Changed() bool {
	return t.From != t.To
}

// Name labels the transition for logs and metrics.
func (t Transition) Name() string {
	switch {
	case !t.Changed():
		return "noop"
	case t.From == None:
		return "cast_" + t.To.String()
	case t.To == None:
		return "retract_" + t.From.String()
	default:
		return "switch_to_" + t.To.String()
	}
}

// Apply computes the transition for intent given the recorded value.
// Re-submitting the recorded value is a no-op; None clears; the opposite
// polarity moves one count from one counter to the other.
func Apply(current, intent Value) (Transition, error) {
	if !intent.Valid() {
		return Transition{}, ErrInvalidValue
	}
	if !current.Valid() {
		return Transition{}, fmt.Errorf("recorded vote %d: %w", current, ErrInvalidValue)
	}

	t := Transition{From: current, To: intent}
	if current == intent {
		return t, nil
	}

	switch current {
	case Up:
		t.Delta.Up--
	case Down:
		t.Delta.Down--
	}
	switch intent {
	case Up:
		t.Delta.Up++
	case Down:
		t.Delta.Down++
	}
	return t, nil
}

// Tally is the aggregate state of a review as seen by one voter.
type Tally struct {
	ReviewID int64 `json:"reviewId"`
	Up       int   `json:"up"`
	Down     int   `json:"down"`
	My       Value `json:"my"`
}

// Add returns the tally after t has been applied.
func (tl Tally) Add(t Transition) Tally {
	tl.Up += t.Delta.Up
	tl.Down += t.Delta.Down
	tl.My = t.To
	return tl
}

type Ledger interface {
	// Cast records intent for voter on reviewID atomically and returns the
	// resulting counters.
	Cast(ctx context.Context, reviewID int64, voter string, intent Value) (Tally, Transition, error)
	// Recount rebuilds the cached counters of a review from its vote rows.
	Recount(ctx context.Context, reviewID int64) (Tally, error)
}
