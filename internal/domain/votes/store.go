package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"luggo/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

var QueryTimeoutDuration = time.Second * 5

// Repository is the postgres ledger. The review row lock taken at the start
// of Cast is the serialization point for every vote on that review; the
// (review_id, voter_uid) primary key keeps one row per voter.
type Repository struct {
	db dbx.Beginner
}

func NewRepository(db dbx.Beginner) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Cast(ctx context.Context, reviewID int64, voter string, intent Value) (Tally, Transition, error) {
	if voter == "" {
		return Tally{}, Transition{}, ErrVoterRequired
	}
	if !intent.Valid() {
		return Tally{}, Transition{}, ErrInvalidValue
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var (
		tally = Tally{ReviewID: reviewID}
		t     Transition
	)
	err := dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT upvotes, downvotes FROM reviews WHERE id = $1 FOR UPDATE
		`, reviewID).Scan(&tally.Up, &tally.Down)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReviewNotFound
		}
		if err != nil {
			return fmt.Errorf("lock review %d: %w", reviewID, err)
		}

		var recorded int16
		err = tx.QueryRow(ctx, `
			SELECT value FROM review_votes WHERE review_id = $1 AND voter_uid = $2
		`, reviewID, voter).Scan(&recorded)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("read vote: %w", err)
		}
		current := Value(recorded)
		tally.My = current

		t, err = Apply(current, intent)
		if err != nil {
			return err
		}
		if !t.Changed() {
			return nil
		}

		if t.To == None {
			_, err = tx.Exec(ctx, `
				DELETE FROM review_votes WHERE review_id = $1 AND voter_uid = $2
			`, reviewID, voter)
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO review_votes (review_id, voter_uid, value)
				VALUES ($1, $2, $3)
				ON CONFLICT (review_id, voter_uid)
				DO UPDATE SET value = EXCLUDED.value, updated_at = now()
			`, reviewID, voter, int16(t.To))
		}
		if err != nil {
			return fmt.Errorf("write vote: %w", err)
		}

		err = tx.QueryRow(ctx, `
			UPDATE reviews
			SET upvotes = upvotes + $2,
			    downvotes = downvotes + $3,
			    updated_at = now()
			WHERE id = $1
			RETURNING upvotes, downvotes
		`, reviewID, t.Delta.Up, t.Delta.Down).Scan(&tally.Up, &tally.Down)
		if err != nil {
			return fmt.Errorf("update counters: %w", err)
		}
		tally.My = t.To
		return nil
	})
	if err != nil {
		return Tally{}, Transition{}, err
	}
	return tally, t, nil
}

// Recount rebuilds the counters of a review from its vote rows. The review
// row is locked first so the count is taken after any in-flight Cast commits.
func (r *Repository) Recount(ctx context.Context, reviewID int64) (Tally, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tally := Tally{ReviewID: reviewID}
	err := dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `
			SELECT id FROM reviews WHERE id = $1 FOR UPDATE
		`, reviewID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReviewNotFound
		}
		if err != nil {
			return fmt.Errorf("lock review %d: %w", reviewID, err)
		}

		err = tx.QueryRow(ctx, `
			SELECT COUNT(*) FILTER (WHERE value = 1)::int,
			       COUNT(*) FILTER (WHERE value = -1)::int
			FROM review_votes
			WHERE review_id = $1
		`, reviewID).Scan(&tally.Up, &tally.Down)
		if err != nil {
			return fmt.Errorf("count votes: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE reviews
			SET upvotes = $2, downvotes = $3, updated_at = now()
			WHERE id = $1
		`, reviewID, tally.Up, tally.Down)
		if err != nil {
			return fmt.Errorf("update counters: %w", err)
		}
		return nil
	})
	if err != nil {
		return Tally{}, err
	}
	return tally, nil
}
