package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		uid TEXT PRIMARY KEY,
		username TEXT UNIQUE,
		display_name TEXT NOT NULL,
		password_hash TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS places (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		photo TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGSERIAL PRIMARY KEY,
		place_id TEXT NOT NULL REFERENCES places(id) ON DELETE CASCADE,
		author_uid TEXT NOT NULL,
		author_name TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		note TEXT,
		photo TEXT,
		tags TEXT[] NOT NULL DEFAULT '{}',
		image_ids TEXT[] NOT NULL DEFAULT '{}',
		city TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		upvotes INTEGER NOT NULL DEFAULT 0 CHECK (upvotes >= 0),
		downvotes INTEGER NOT NULL DEFAULT 0 CHECK (downvotes >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS reviews_created_at_idx ON reviews (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS review_votes (
		review_id BIGINT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
		voter_uid TEXT NOT NULL,
		value SMALLINT NOT NULL CHECK (value IN (-1, 1)),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (review_id, voter_uid)
	)`,
	`CREATE INDEX IF NOT EXISTS review_votes_voter_idx ON review_votes (voter_uid)`,
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
