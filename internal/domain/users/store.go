package users

import (
	"context"
	"errors"
	"fmt"

	"luggo/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) get(ctx context.Context, where string, arg any) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var (
		user     User
		username *string
		hash     *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT uid, username, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE `+where+` = $1
	`, arg).Scan(&user.UID, &username, &user.DisplayName, &hash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if username != nil {
		user.Username = *username
	}
	if hash != nil {
		user.Password.SetHash([]byte(*hash))
	}
	return &user, nil
}

func (r *Repository) GetByUID(ctx context.Context, uid string) (*User, error) {
	return r.get(ctx, "uid", uid)
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.get(ctx, "username", username)
}

func (r *Repository) Upsert(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  INSERT INTO users (uid, display_name)
	  VALUES ($1, $2)
	  ON CONFLICT (uid) DO UPDATE
	  SET display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
	      updated_at = now()
	  RETURNING display_name, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, user.UID, user.DisplayName).
		Scan(&user.DisplayName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", user.UID, err)
	}
	return nil
}

func (r *Repository) EnsureLocal(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
	  INSERT INTO users (uid, username, display_name, password_hash)
	  VALUES ($1, $2, $3, $4)
	  ON CONFLICT (uid) DO UPDATE
	  SET username = EXCLUDED.username,
	      display_name = EXCLUDED.display_name,
	      password_hash = EXCLUDED.password_hash,
	      updated_at = now()
	  RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, user.UID, user.Username, user.DisplayName, string(user.Password.Hash())).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ensure local user %s: %w", user.Username, err)
	}
	return nil
}
