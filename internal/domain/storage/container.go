package storage

import (
	"context"
	"fmt"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/users"
	"luggo/internal/domain/votes"
	"luggo/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewTx is a tx-scoped set of repos for creating a place and its review
// as one unit of work.
type ReviewTx struct {
	Places  places.Store
	Reviews reviews.Store
}

// Cleared reports what a reset removed.
type Cleared struct {
	Reviews int64 `json:"reviews"`
	Places  int64 `json:"places"`
	Votes   int64 `json:"votes"`
}

// Backend is what differs between the postgres and in-memory stores.
type Backend interface {
	WithReviewTx(ctx context.Context, fn func(tx *ReviewTx) error) error
	Ping(ctx context.Context) error
	Reset(ctx context.Context) (Cleared, error)
}

type Container struct {
	Places  places.Store
	Reviews reviews.Store
	Votes   votes.Ledger
	Users   users.Store
	Backend
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		Places:  places.NewRepository(db),
		Reviews: reviews.NewRepository(db),
		Votes:   votes.NewRepository(db),
		Users:   users.NewRepository(db),
		Backend: &pgBackend{pool: db},
	}
}

type pgBackend struct {
	pool *pgxpool.Pool
}

func (b *pgBackend) WithReviewTx(ctx context.Context, fn func(tx *ReviewTx) error) error {
	if b.pool == nil {
		return fmt.Errorf("storage container pool is nil")
	}

	return dbx.WithTx(ctx, b.pool, func(tx pgx.Tx) error {
		return fn(&ReviewTx{
			Places:  places.NewRepository(tx),
			Reviews: reviews.NewRepository(tx),
		})
	})
}

func (b *pgBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *pgBackend) Reset(ctx context.Context) (Cleared, error) {
	var c Cleared
	err := dbx.WithTx(ctx, b.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT (SELECT COUNT(*) FROM review_votes),
			       (SELECT COUNT(*) FROM reviews),
			       (SELECT COUNT(*) FROM places)
		`).Scan(&c.Votes, &c.Reviews, &c.Places)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `TRUNCATE review_votes, reviews, places RESTART IDENTITY`)
		return err
	})
	if err != nil {
		return Cleared{}, fmt.Errorf("reset data: %w", err)
	}
	return c, nil
}

// CreatedReview is the result of CreateReview.
type CreatedReview struct {
	Review  *reviews.Review
	Place   *places.Place
	Outcome places.Outcome
}

// CreateReview resolves (or creates) the place and inserts the review in
// one unit of work. Place resolution is idempotent, so a failed insert can
// simply be retried.
func (c *Container) CreateReview(ctx context.Context, candidate places.Candidate, fields reviews.Fields, author reviews.Author) (*CreatedReview, error) {
	if fields.Rating < reviews.MinRating || fields.Rating > reviews.MaxRating {
		return nil, reviews.ErrInvalidRating
	}

	var out CreatedReview
	err := c.WithReviewTx(ctx, func(tx *ReviewTx) error {
		place, outcome, err := places.NewRegistry(tx.Places).ResolveOrCreate(ctx, candidate)
		if err != nil {
			return err
		}

		review, err := reviews.New(place, fields, author)
		if err != nil {
			return err
		}
		if err := tx.Reviews.Create(ctx, review); err != nil {
			return err
		}

		review.Photo = reviews.StoredPhoto(review.Photo, place.Photo)
		out = CreatedReview{Review: review, Place: place, Outcome: outcome}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
