package reputation

import (
	"testing"
	"time"

	"luggo/internal/domain/reviews"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecompute(t *testing.T) {
	karma := Recompute([]Entry{
		{Author: "A", Up: 3, Down: 0},
		{Author: "A", Up: 0, Down: 1},
		{Author: "B", Up: 10, Down: 0},
	})

	require.Len(t, karma, 2)
	assert.Equal(t, 2, karma["A"])
	assert.Equal(t, 10, karma["B"])
	assert.Equal(t, Novice, RankFor(karma["A"]))
	assert.Equal(t, Expert, RankFor(karma["B"]))
}

func TestRecomputeIgnoresAnonymous(t *testing.T) {
	karma := Recompute([]Entry{{Up: 4}, {Author: "C", Down: 2}})

	assert.Equal(t, map[string]int{"C": -2}, karma)
}

func TestRankThresholds(t *testing.T) {
	tests := []struct {
		karma int
		want  Rank
	}{
		{-5, Novice},
		{0, Novice},
		{2, Novice},
		{3, Trusted},
		{9, Trusted},
		{10, Expert},
		{250, Expert},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RankFor(tt.karma), "karma %d", tt.karma)
	}
}

func TestBoard(t *testing.T) {
	now := time.Now()
	list := []reviews.Review{
		{AuthorUID: "u1", AuthorName: "Old Name", Up: 2, CreatedAt: now.Add(-time.Hour)},
		{AuthorUID: "u1", AuthorName: "Ana", Up: 2, Down: 1, CreatedAt: now},
		{AuthorUID: "u2", AuthorName: "Beto", Up: 12, CreatedAt: now},
	}

	board := Board(list)

	require.Len(t, board, 2)
	assert.Equal(t, Standing{AuthorID: "u2", AuthorName: "Beto", Karma: 12, Rank: Expert}, board[0])
	assert.Equal(t, Standing{AuthorID: "u1", AuthorName: "Ana", Karma: 3, Rank: Trusted}, board[1])
}
