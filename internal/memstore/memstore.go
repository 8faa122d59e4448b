// Package memstore keeps every repository in process memory. It backs the
// test suites and STORE_DRIVER=memory; data is lost on restart.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/storage"
	"luggo/internal/domain/users"
	"luggo/internal/domain/votes"
)

type voteKey struct {
	reviewID int64
	voter    string
}

type data struct {
	mu sync.Mutex
	// tx serializes units of work; it is always taken before mu.
	tx sync.Mutex

	places       map[string]places.Place
	reviews      map[int64]*reviews.Review
	votes        map[voteKey]votes.Value
	users        map[string]users.User
	nextReviewID int64
	now          func() time.Time
}

// New returns a container wired to a fresh in-memory store.
func New() *storage.Container {
	d := &data{
		places:  make(map[string]places.Place),
		reviews: make(map[int64]*reviews.Review),
		votes:   make(map[voteKey]votes.Value),
		users:   make(map[string]users.User),
		now:     time.Now,
	}
	return &storage.Container{
		Places:  &placeRepo{d},
		Reviews: &reviewRepo{d},
		Votes:   &ledger{d},
		Users:   &userRepo{d},
		Backend: &backend{d},
	}
}

type backend struct{ d *data }

func (b *backend) WithReviewTx(ctx context.Context, fn func(tx *storage.ReviewTx) error) error {
	b.d.tx.Lock()
	defer b.d.tx.Unlock()

	return fn(&storage.ReviewTx{
		Places:  &placeRepo{b.d},
		Reviews: &reviewRepo{b.d},
	})
}

func (b *backend) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (b *backend) Reset(ctx context.Context) (storage.Cleared, error) {
	b.d.tx.Lock()
	defer b.d.tx.Unlock()
	b.d.mu.Lock()
	defer b.d.mu.Unlock()

	cleared := storage.Cleared{
		Reviews: int64(len(b.d.reviews)),
		Places:  int64(len(b.d.places)),
		Votes:   int64(len(b.d.votes)),
	}
	b.d.places = make(map[string]places.Place)
	b.d.reviews = make(map[int64]*reviews.Review)
	b.d.votes = make(map[voteKey]votes.Value)
	b.d.nextReviewID = 0
	return cleared, nil
}

type placeRepo struct{ d *data }

func (r *placeRepo) List(ctx context.Context) ([]places.Place, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	list := make([]places.Place, 0, len(r.d.places))
	for _, p := range r.d.places {
		list = append(list, clonePlace(p))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID < list[j].ID
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *placeRepo) Get(ctx context.Context, id string) (*places.Place, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	p, ok := r.d.places[id]
	if !ok {
		return nil, places.ErrNotFound
	}
	p = clonePlace(p)
	return &p, nil
}

func (r *placeRepo) IDsWithBase(ctx context.Context, base string) ([]string, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	var ids []string
	for id := range r.d.places {
		if id == base || strings.HasPrefix(id, base+"-") {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *placeRepo) Insert(ctx context.Context, p *places.Place) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, taken := r.d.places[p.ID]; taken {
		return false, nil
	}
	now := r.d.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.d.places[p.ID] = clonePlace(*p)
	return true, nil
}

func (r *placeRepo) Update(ctx context.Context, p *places.Place) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	existing, ok := r.d.places[p.ID]
	if !ok {
		return places.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.d.now()
	r.d.places[p.ID] = clonePlace(*p)
	return nil
}

type reviewRepo struct{ d *data }

func (r *reviewRepo) Create(ctx context.Context, review *reviews.Review) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if review.Rating < reviews.MinRating || review.Rating > reviews.MaxRating {
		return reviews.ErrInvalidRating
	}
	if _, ok := r.d.places[review.PlaceID]; !ok {
		return places.ErrNotFound
	}

	r.d.nextReviewID++
	review.ID = r.d.nextReviewID
	review.Up, review.Down = 0, 0
	review.MyVote = nil
	review.CreatedAt = r.d.now()

	stored := cloneReview(*review)
	r.d.reviews[stored.ID] = &stored
	return nil
}

func (r *reviewRepo) List(ctx context.Context, viewer string) ([]reviews.Review, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	list := make([]reviews.Review, 0, len(r.d.reviews))
	for _, stored := range r.d.reviews {
		list = append(list, r.d.joined(stored, viewer))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (r *reviewRepo) Get(ctx context.Context, id int64) (*reviews.Review, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	stored, ok := r.d.reviews[id]
	if !ok {
		return nil, reviews.ErrNotFound
	}
	rv := r.d.joined(stored, "")
	return &rv, nil
}

func (r *reviewRepo) Count(ctx context.Context) (int, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	return len(r.d.reviews), nil
}

// joined mirrors the postgres read path: place data fills whatever the
// review itself lacks. Callers hold mu.
func (d *data) joined(stored *reviews.Review, viewer string) reviews.Review {
	rv := cloneReview(*stored)
	place := d.places[rv.PlaceID]
	rv.PlaceName = place.Name
	rv.Photo = reviews.StoredPhoto(rv.Photo, place.Photo)
	if rv.City == "" {
		rv.City = place.Address
	}
	if rv.Coords == nil && place.Coords != nil {
		c := *place.Coords
		rv.Coords = &c
	}
	if viewer != "" {
		my := int(d.votes[voteKey{rv.ID, viewer}])
		rv.MyVote = &my
	}
	return rv
}

type ledger struct{ d *data }

func (l *ledger) Cast(ctx context.Context, reviewID int64, voter string, intent votes.Value) (votes.Tally, votes.Transition, error) {
	if voter == "" {
		return votes.Tally{}, votes.Transition{}, votes.ErrVoterRequired
	}
	if err := ctx.Err(); err != nil {
		return votes.Tally{}, votes.Transition{}, err
	}

	l.d.mu.Lock()
	defer l.d.mu.Unlock()

	stored, ok := l.d.reviews[reviewID]
	if !ok {
		return votes.Tally{}, votes.Transition{}, votes.ErrReviewNotFound
	}

	key := voteKey{reviewID, voter}
	current := l.d.votes[key]
	t, err := votes.Apply(current, intent)
	if err != nil {
		return votes.Tally{}, votes.Transition{}, err
	}

	tally := votes.Tally{ReviewID: reviewID, Up: stored.Up, Down: stored.Down, My: current}.Add(t)
	if t.To == votes.None {
		delete(l.d.votes, key)
	} else {
		l.d.votes[key] = t.To
	}
	stored.Up, stored.Down = tally.Up, tally.Down
	return tally, t, nil
}

func (l *ledger) Recount(ctx context.Context, reviewID int64) (votes.Tally, error) {
	l.d.mu.Lock()
	defer l.d.mu.Unlock()

	stored, ok := l.d.reviews[reviewID]
	if !ok {
		return votes.Tally{}, votes.ErrReviewNotFound
	}

	tally := votes.Tally{ReviewID: reviewID}
	for key, v := range l.d.votes {
		if key.reviewID != reviewID {
			continue
		}
		switch v {
		case votes.Up:
			tally.Up++
		case votes.Down:
			tally.Down++
		}
	}
	stored.Up, stored.Down = tally.Up, tally.Down
	return tally, nil
}

type userRepo struct{ d *data }

func (r *userRepo) GetByUID(ctx context.Context, uid string) (*users.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	u, ok := r.d.users[uid]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	for _, u := range r.d.users {
		if u.Username != "" && u.Username == username {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (r *userRepo) Upsert(ctx context.Context, user *users.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	now := r.d.now()
	existing, ok := r.d.users[user.UID]
	if !ok {
		user.CreatedAt = now
		user.UpdatedAt = now
		r.d.users[user.UID] = *user
		return nil
	}
	if user.DisplayName != "" {
		existing.DisplayName = user.DisplayName
	}
	existing.UpdatedAt = now
	r.d.users[user.UID] = existing
	*user = existing
	return nil
}

func (r *userRepo) EnsureLocal(ctx context.Context, user *users.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	now := r.d.now()
	if existing, ok := r.d.users[user.UID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.d.users[user.UID] = *user
	return nil
}

func clonePlace(p places.Place) places.Place {
	if p.Coords != nil {
		c := *p.Coords
		p.Coords = &c
	}
	return p
}

func cloneReview(rv reviews.Review) reviews.Review {
	rv.Tags = append([]string(nil), rv.Tags...)
	rv.ImageIDs = append([]string(nil), rv.ImageIDs...)
	if rv.Tags == nil {
		rv.Tags = []string{}
	}
	if rv.ImageIDs == nil {
		rv.ImageIDs = []string{}
	}
	if rv.Coords != nil {
		c := *rv.Coords
		rv.Coords = &c
	}
	if rv.MyVote != nil {
		my := *rv.MyVote
		rv.MyVote = &my
	}
	return rv
}
