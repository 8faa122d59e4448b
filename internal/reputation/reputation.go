// Package reputation derives per-author karma and rank from review counters.
// Nothing here is stored; callers recompute from the full review list
// whenever it changes.
package reputation

import (
	"sort"
	"time"

	"luggo/internal/domain/reviews"
)

const (
	ExpertThreshold  = 10
	TrustedThreshold = 3
)

type Rank struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var (
	Novice  = Rank{Label: "Novice", Color: "#94a3b8"}
	Trusted = Rank{Label: "Trusted", Color: "#34d399"}
	Expert  = Rank{Label: "Expert", Color: "#fbbf24"}
)

// Entry is the part of a review that contributes to karma.
type Entry struct {
	Author string
	Up     int
	Down   int
}

func FromReviews(list []reviews.Review) []Entry {
	entries := make([]Entry, 0, len(list))
	for _, r := range list {
		entries = append(entries, Entry{Author: r.AuthorUID, Up: r.Up, Down: r.Down})
	}
	return entries
}

// Recompute folds entries into karma = sum(up - down) per author.
// Entries without an author are ignored.
func Recompute(entries []Entry) map[string]int {
	karma := make(map[string]int)
	for _, e := range entries {
		if e.Author == "" {
			continue
		}
		karma[e.Author] += e.Up - e.Down
	}
	return karma
}

// RankFor picks the highest rank whose threshold karma reaches.
func RankFor(karma int) Rank {
	switch {
	case karma >= ExpertThreshold:
		return Expert
	case karma >= TrustedThreshold:
		return Trusted
	default:
		return Novice
	}
}

type Standing struct {
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	Karma      int    `json:"karma"`
	Rank       Rank   `json:"rank"`
}

// Board lists every author with their karma and rank, highest karma first.
// The display name is taken from the author's most recent review in list.
func Board(list []reviews.Review) []Standing {
	karma := Recompute(FromReviews(list))

	names := make(map[string]string, len(karma))
	latest := make(map[string]time.Time, len(karma))
	for _, r := range list {
		if t, seen := latest[r.AuthorUID]; !seen || r.CreatedAt.After(t) {
			latest[r.AuthorUID] = r.CreatedAt
			names[r.AuthorUID] = r.AuthorName
		}
	}

	board := make([]Standing, 0, len(karma))
	for author, k := range karma {
		board = append(board, Standing{
			AuthorID:   author,
			AuthorName: names[author],
			Karma:      k,
			Rank:       RankFor(k),
		})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Karma == board[j].Karma {
			return board[i].AuthorID < board[j].AuthorID
		}
		return board[i].Karma > board[j].Karma
	})
	return board
}
