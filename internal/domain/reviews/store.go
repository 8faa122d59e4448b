package reviews

import (
	"context"
	"errors"
	"fmt"

	"luggo/internal/domain/places"
	"luggo/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, review *Review) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var lat, lng *float64
	if review.Coords != nil {
		lat, lng = &review.Coords.Lat, &review.Coords.Lng
	}

	query := `
        INSERT INTO reviews (
          place_id, author_uid, author_name, rating, note, photo,
          tags, image_ids, city, latitude, longitude
        )
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11)
        RETURNING id, upvotes, downvotes, created_at
    `
	err := r.db.QueryRow(ctx, query,
		review.PlaceID,
		review.AuthorUID,
		review.AuthorName,
		review.Rating,
		review.Note,
		review.Photo,
		review.Tags,
		review.ImageIDs,
		review.City,
		lat,
		lng,
	).Scan(&review.ID, &review.Up, &review.Down, &review.CreatedAt)
	if err != nil {
		switch dbx.PgErrorCode(err) {
		case dbx.CheckViolation:
			return ErrInvalidRating
		case dbx.ForeignKeyViolation:
			return places.ErrNotFound
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

const reviewSelect = `
        SELECT r.id, r.place_id, p.name, r.author_uid, r.author_name, r.rating,
               COALESCE(r.note, ''), COALESCE(NULLIF(r.photo, ''), p.photo, ''),
               r.tags, r.image_ids, COALESCE(NULLIF(r.city, ''), p.address, ''),
               COALESCE(r.latitude, p.latitude), COALESCE(r.longitude, p.longitude),
               r.upvotes, r.downvotes, COALESCE(v.value, 0), r.created_at
        FROM reviews r
        JOIN places p ON p.id = r.place_id
        LEFT JOIN review_votes v ON v.review_id = r.id AND v.voter_uid = $1
`

func scanReview(row pgx.Row, withMyVote bool) (*Review, error) {
	var (
		rv       Review
		lat, lng *float64
		my       int
	)
	err := row.Scan(
		&rv.ID,
		&rv.PlaceID,
		&rv.PlaceName,
		&rv.AuthorUID,
		&rv.AuthorName,
		&rv.Rating,
		&rv.Note,
		&rv.Photo,
		&rv.Tags,
		&rv.ImageIDs,
		&rv.City,
		&lat,
		&lng,
		&rv.Up,
		&rv.Down,
		&my,
		&rv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		rv.Coords = &places.Coords{Lat: *lat, Lng: *lng}
	}
	if withMyVote {
		rv.MyVote = &my
	}
	return &rv, nil
}

func (r *Repository) List(ctx context.Context, viewer string) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, reviewSelect+` ORDER BY r.created_at DESC, r.id DESC`, viewer)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	list := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows, viewer != "")
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		list = append(list, *rv)
	}
	return list, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (*Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rv, err := scanReview(r.db.QueryRow(ctx, reviewSelect+` WHERE r.id = $2`, "", id), false)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}
	return rv, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*)::int FROM reviews`).Scan(&n)
	return n, err
}
