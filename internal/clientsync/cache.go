package clientsync

import (
	"sort"
	"sync"

	"luggo/internal/domain/places"
	"luggo/internal/domain/reviews"
	"luggo/internal/domain/votes"
	"luggo/internal/reputation"
)

// Identity is the signed-in user as the client knows it.
type Identity struct {
	UID         string
	DisplayName string
	Token       string
}

// Entry is a cached review plus the values derived from the current identity.
type Entry struct {
	reviews.Review
	// Me reports whether the signed-in identity authored the review.
	Me bool
	// UserName is the author label to display.
	UserName string
	// Status is inline feedback for the review's controls, empty when fine.
	Status string
	// DisplayPhoto is the image to render: the review's photo, the place's,
	// or a placeholder built from the place name.
	DisplayPhoto string
}

func (e Entry) CurrentVote() votes.Value {
	if e.Review.MyVote == nil {
		return votes.None
	}
	return votes.Value(*e.Review.MyVote)
}

// Cache mirrors server state. Identity changes re-derive ownership in place;
// server responses always replace optimistic values.
type Cache struct {
	mu       sync.RWMutex
	identity *Identity
	places   map[string]places.Place
	reviews  []*Entry
	byID     map[int64]*Entry
	karma    map[string]int
	loaded   bool
}

func NewCache() *Cache {
	return &Cache{
		places: make(map[string]places.Place),
		byID:   make(map[int64]*Entry),
		karma:  make(map[string]int),
	}
}

func (c *Cache) Identity() *Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return nil
	}
	ident := *c.identity
	return &ident
}

// SetIdentity switches the active identity (nil on logout). Per-viewer vote
// state is dropped when the identity key changes.
func (c *Cache) SetIdentity(ident *Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := ""
	if c.identity != nil {
		prev = c.identity.UID
	}
	next := ""
	if ident != nil {
		cp := *ident
		c.identity = &cp
		next = ident.UID
	} else {
		c.identity = nil
	}

	for _, e := range c.reviews {
		if prev != next {
			e.Review.MyVote = nil
		}
		c.derive(e)
	}
	c.recompute()
}

// Loaded reports whether the cache holds server state.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Invalidate drops server state; identity survives.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.places = make(map[string]places.Place)
	c.reviews = nil
	c.byID = make(map[int64]*Entry)
	c.karma = make(map[string]int)
	c.loaded = false
}

// Replace loads a full snapshot. list is expected newest first.
func (c *Cache) Replace(ps []places.Place, list []reviews.Review) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.places = make(map[string]places.Place, len(ps))
	for _, p := range ps {
		c.places[p.ID] = p
	}

	c.reviews = make([]*Entry, 0, len(list))
	c.byID = make(map[int64]*Entry, len(list))
	for _, r := range list {
		e := &Entry{Review: r}
		c.derive(e)
		c.reviews = append(c.reviews, e)
		c.byID[r.ID] = e
	}
	c.recompute()
	c.loaded = true
}

// MergePlace stores p and re-derives the reviews attached to it.
func (c *Cache) MergePlace(p places.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.places[p.ID] = p
	for _, e := range c.reviews {
		if e.PlaceID == p.ID {
			c.derive(e)
		}
	}
}

// MergeReview stores a review returned by the server, newest first.
func (c *Cache) MergeReview(r reviews.Review) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.byID[r.ID]; ok {
		status := e.Status
		*e = Entry{Review: r, Status: status}
		c.derive(e)
	} else {
		e := &Entry{Review: r}
		c.derive(e)
		c.reviews = append([]*Entry{e}, c.reviews...)
		c.byID[r.ID] = e
	}
	c.recompute()
}

func (c *Cache) Place(id string) (places.Place, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.places[id]
	return p, ok
}

// Places returns cached places ordered by name.
func (c *Cache) Places() []places.Place {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]places.Place, 0, len(c.places))
	for _, p := range c.places {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Cache) Review(id int64) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return copyEntry(e), true
}

func (c *Cache) Reviews() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.reviews))
	for _, e := range c.reviews {
		out = append(out, copyEntry(e))
	}
	return out
}

func (c *Cache) Karma(uid string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.karma[uid]
}

func (c *Cache) Rank(uid string) reputation.Rank {
	return reputation.RankFor(c.Karma(uid))
}

// ApplyTally overwrites the counters of a review. The viewer's vote is only
// written while uid, the identity the tally was computed for, is still
// signed in.
func (c *Cache) ApplyTally(uid string, t votes.Tally) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.byID[t.ReviewID]
	if !ok {
		return
	}
	e.Up, e.Down = t.Up, t.Down
	if c.isViewer(uid) {
		my := int(t.My)
		e.Review.MyVote = &my
	}
	c.recompute()
}

// Restore puts back a previously read entry's vote state and sets status.
// As with ApplyTally, the vote itself is skipped once uid has signed out.
func (c *Cache) Restore(uid string, snapshot Entry, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.byID[snapshot.ID]
	if !ok {
		return
	}
	e.Up, e.Down = snapshot.Up, snapshot.Down
	if c.isViewer(uid) {
		e.Review.MyVote = nil
		if snapshot.Review.MyVote != nil {
			my := *snapshot.Review.MyVote
			e.Review.MyVote = &my
		}
	}
	e.Status = status
	c.recompute()
}

func (c *Cache) SetStatus(reviewID int64, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.byID[reviewID]; ok {
		e.Status = status
	}
}

// isViewer reports whether uid is the signed-in identity. Callers hold mu.
func (c *Cache) isViewer(uid string) bool {
	return c.identity != nil && uid != "" && c.identity.UID == uid
}

// derive recomputes the fields that depend on the identity or on cached
// places. Callers hold mu.
func (c *Cache) derive(e *Entry) {
	e.Me = c.isViewer(e.AuthorUID)
	e.UserName = e.AuthorName
	if e.Me && c.identity.DisplayName != "" {
		e.UserName = c.identity.DisplayName
	}

	place := c.places[e.PlaceID]
	name := e.PlaceName
	if name == "" {
		name = place.Name
	}
	e.DisplayPhoto, _ = reviews.ResolvePhoto(e.Photo, place.Photo, name)
}

// recompute rebuilds karma from every cached review. Callers hold mu.
func (c *Cache) recompute() {
	entries := make([]reputation.Entry, 0, len(c.reviews))
	for _, e := range c.reviews {
		entries = append(entries, reputation.Entry{Author: e.AuthorUID, Up: e.Up, Down: e.Down})
	}
	c.karma = reputation.Recompute(entries)
}

func copyEntry(e *Entry) Entry {
	out := *e
	if e.Review.MyVote != nil {
		my := *e.Review.MyVote
		out.Review.MyVote = &my
	}
	return out
}
