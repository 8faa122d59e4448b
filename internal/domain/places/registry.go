package places

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const maxInsertAttempts = 5

// Registry assigns and deduplicates place identifiers. It never deletes or
// merges places.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// ResolveOrCreate maps a candidate onto a stored place. A candidate that
// names an existing id updates that place's metadata. Anything else is
// created under the slug of its name, suffixed with -N when the slug is
// already taken. Losing an insert race to a concurrent creation just moves
// on to the next free suffix.
func (r *Registry) ResolveOrCreate(ctx context.Context, c Candidate) (*Place, Outcome, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Address = strings.TrimSpace(c.Address)
	c.Photo = strings.TrimSpace(c.Photo)

	if c.ID != "" {
		return r.resolveByID(ctx, c)
	}

	if c.Name == "" {
		return nil, "", ErrNameRequired
	}
	if c.Coords == nil {
		return nil, "", ErrCoordsRequired
	}

	base := Slugify(c.Name)
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		taken, err := r.store.IDsWithBase(ctx, base)
		if err != nil {
			return nil, "", err
		}

		place := c.toPlace(NextFreeID(base, taken))
		inserted, err := r.store.Insert(ctx, place)
		if err != nil {
			return nil, "", err
		}
		if !inserted {
			continue
		}

		if place.ID == base {
			return place, OutcomeCreated, nil
		}
		return place, OutcomeSuffixed, nil
	}

	return nil, "", fmt.Errorf("%w: base %q", ErrTooManyCollisions, base)
}

func (r *Registry) resolveByID(ctx context.Context, c Candidate) (*Place, Outcome, error) {
	if !ValidID(c.ID) {
		return nil, "", ErrInvalidID
	}

	existing, err := r.store.Get(ctx, c.ID)
	switch {
	case err == nil:
		return r.upsert(ctx, existing, c)
	case !errors.Is(err, ErrNotFound):
		return nil, "", err
	}

	if c.Name == "" {
		return nil, "", ErrNameRequired
	}
	if c.Coords == nil {
		return nil, "", ErrCoordsRequired
	}

	place := c.toPlace(c.ID)
	inserted, err := r.store.Insert(ctx, place)
	if err != nil {
		return nil, "", err
	}
	if inserted {
		return place, OutcomeCreated, nil
	}

	// created concurrently under the same id
	existing, err = r.store.Get(ctx, c.ID)
	if err != nil {
		return nil, "", err
	}
	return r.upsert(ctx, existing, c)
}

func (r *Registry) upsert(ctx context.Context, existing *Place, c Candidate) (*Place, Outcome, error) {
	updated := *existing
	if c.Name != "" {
		updated.Name = c.Name
	}
	if c.Address != "" {
		updated.Address = c.Address
	}
	if c.Photo != "" {
		updated.Photo = c.Photo
	}
	if c.Coords != nil {
		coords := *c.Coords
		updated.Coords = &coords
	}

	if err := r.store.Update(ctx, &updated); err != nil {
		return nil, "", err
	}
	return &updated, OutcomeUpserted, nil
}

func (c Candidate) toPlace(id string) *Place {
	place := &Place{
		ID:      id,
		Name:    c.Name,
		Address: c.Address,
		Photo:   c.Photo,
	}
	if c.Coords != nil {
		coords := *c.Coords
		place.Coords = &coords
	}
	return place
}
