package places

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("place not found")
	ErrNameRequired      = errors.New("place name is required")
	ErrCoordsRequired    = errors.New("place coordinates are required")
	ErrInvalidID         = errors.New("place id is malformed")
	ErrTooManyCollisions = errors.New("could not allocate a free place id")
	QueryTimeoutDuration = time.Second * 5
)

type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is the canonical record of a physical location. ID never changes
// after creation; every other field follows last-write-wins.
type Place struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Coords    *Coords   `json:"coords"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Candidate is what a caller knows about a place before it has been
// resolved against the registry. ID is optional.
type Candidate struct {
	ID      string
	Name    string
	Address string
	Coords  *Coords
	Photo   string
}

type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeSuffixed Outcome = "suffixed"
	OutcomeUpserted Outcome = "upserted"
)

type Store interface {
	List(ctx context.Context) ([]Place, error)
	Get(ctx context.Context, id string) (*Place, error)
	// IDsWithBase returns base itself and every base-N id already in use.
	IDsWithBase(ctx context.Context, base string) ([]string, error)
	// Insert reports false when the id is already taken.
	Insert(ctx context.Context, place *Place) (bool, error)
	// Update overwrites every non-key field.
	Update(ctx context.Context, place *Place) error
}
