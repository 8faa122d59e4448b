package votes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	tests := []struct {
		current, intent Value
		delta           Delta
		name            string
	}{
		{None, None, Delta{}, "noop"},
		{None, Up, Delta{Up: 1}, "cast_up"},
		{None, Down, Delta{Down: 1}, "cast_down"},
		{Up, Up, Delta{}, "noop"},
		{Up, None, Delta{Up: -1}, "retract_up"},
		{Up, Down, Delta{Up: -1, Down: 1}, "switch_to_down"},
		{Down, Down, Delta{}, "noop"},
		{Down, None, Delta{Down: -1}, "retract_down"},
		{Down, Up, Delta{Up: 1, Down: -1}, "switch_to_up"},
	}

	for _, tt := range tests {
		t.Run(tt.current.String()+"->"+tt.intent.String(), func(t *testing.T) {
			tr, err := Apply(tt.current, tt.intent)
			require.NoError(t, err)
			assert.Equal(t, tt.current, tr.From)
			assert.Equal(t, tt.intent, tr.To)
			assert.Equal(t, tt.delta, tr.Delta)
			assert.Equal(t, tt.name, tr.Name())
			assert.Equal(t, tt.current != tt.intent, tr.Changed())
		})
	}
}

func TestApplyRejectsInvalidValues(t *testing.T) {
	_, err := Apply(None, Value(2))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Apply(Value(-3), Up)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

// The counters a single voter contributes always equal their last intent.
func TestApplySequencesKeepSingleVote(t *testing.T) {
	sequences := [][]Value{
		{Up, Up, Down, Down, None, Up},
		{Down, Up, None, None, Down},
		{Up, None, Up, Down, Up, Down, None},
	}

	for _, seq := range sequences {
		var (
			tally   Tally
			current = None
		)
		for _, intent := range seq {
			tr, err := Apply(current, intent)
			require.NoError(t, err)
			tally = tally.Add(tr)
			current = tr.To

			assert.LessOrEqual(t, tally.Up+tally.Down, 1)
			assert.GreaterOrEqual(t, tally.Up, 0)
			assert.GreaterOrEqual(t, tally.Down, 0)
			assert.Equal(t, intent, tally.My)
			assert.Equal(t, b2i(intent == Up), tally.Up)
			assert.Equal(t, b2i(intent == Down), tally.Down)
		}
	}
}

func TestTallyAdd(t *testing.T) {
	tr, err := Apply(Up, Down)
	require.NoError(t, err)

	got := Tally{ReviewID: 7, Up: 4, Down: 2, My: Up}.Add(tr)
	assert.Equal(t, Tally{ReviewID: 7, Up: 3, Down: 3, My: Down}, got)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
