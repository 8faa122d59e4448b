package places

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

const placeColumns = `id, name, COALESCE(address, ''), COALESCE(photo, ''), latitude, longitude, created_at, updated_at`

func scanPlace(row pgx.Row) (*Place, error) {
	var (
		p        Place
		lat, lng *float64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Photo, &lat, &lng, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		p.Coords = &Coords{Lat: *lat, Lng: *lng}
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context) ([]Place, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+placeColumns+` FROM places ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	places := []Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, *p)
	}
	return places, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Place, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	p, err := scanPlace(r.db.QueryRow(ctx, `SELECT `+placeColumns+` FROM places WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get place %s: %w", id, err)
	}
	return p, nil
}

func (r *Repository) IDsWithBase(ctx context.Context, base string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	// slugs never contain LIKE metacharacters
	rows, err := r.db.Query(ctx, `SELECT id FROM places WHERE id = $1 OR id LIKE $2`, base, base+"-%")
	if err != nil {
		return nil, fmt.Errorf("list place ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) Insert(ctx context.Context, p *Place) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	lat, lng := coordArgs(p.Coords)
	err := r.db.QueryRow(ctx, `
		INSERT INTO places (id, name, address, photo, latitude, longitude)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Address, p.Photo, lat, lng).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert place %s: %w", p.ID, err)
	}
	return true, nil
}

func (r *Repository) Update(ctx context.Context, p *Place) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	lat, lng := coordArgs(p.Coords)
	err := r.db.QueryRow(ctx, `
		UPDATE places
		SET name = $2,
		    address = $3,
		    photo = NULLIF($4, ''),
		    latitude = $5,
		    longitude = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Name, p.Address, p.Photo, lat, lng).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update place %s: %w", p.ID, err)
	}
	return nil
}

func coordArgs(c *Coords) (lat, lng *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Lat, &c.Lng
}
