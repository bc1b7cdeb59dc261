package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReferenceOctave(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		hz   float64
		want string
	}{
		{220, "La"},
		{221, "La"},
		{233.082, "La#"},
		{246.942, "Si"},
		{261.626, "Do"},
		{277.183, "Do#"},
		{293.665, "Ré"},
		{311.127, "Ré#"},
		{329.628, "Mi"},
		{349.228, "Fa"},
		{369.994, "Fa#"},
		{391.995, "Sol"},
		{415.305, "Sol#"},
		{420, "Sol#"},
		// Closer to the next A than to Sol#.
		{435, "La"},
		{439.99, "La"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Name(tt.hz), "hz=%v", tt.hz)
	}
}

func TestResolveNearestInOctave(t *testing.T) {
	table := DefaultTable()
	entries := table.Entries()
	lower, upper := table.Bounds()

	for hz := lower; hz < upper; hz += 0.37 {
		best := entries[0]
		bestDist := math.Inf(1)
		for _, e := range append(entries, NoteEntry{Name: entries[0].Name, ReferenceHz: upper}) {
			if d := math.Abs(hz - e.ReferenceHz); d < bestDist {
				best, bestDist = e, d
			}
		}
		assert.Equal(t, best.Name, table.Name(hz), "hz=%v", hz)
	}
}

func TestResolveOctaveInvariance(t *testing.T) {
	table := DefaultTable()

	for _, hz := range []float64{220, 230.5, 250, 262, 300, 333.3, 360, 400, 417, 438} {
		want := table.Name(hz)
		for k := -8; k <= 8; k++ {
			got := table.Name(hz * math.Pow(2, float64(k)))
			assert.Equal(t, want, got, "hz=%v k=%d", hz, k)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	table := DefaultTable()

	for _, hz := range []float64{0, -1, -440, math.NaN(), math.Inf(1), math.Inf(-1), 1e300} {
		_, ok := table.Resolve(hz)
		assert.False(t, ok, "hz=%v", hz)
		assert.Equal(t, Unknown, table.Name(hz), "hz=%v", hz)
	}
}

func TestResolveDeterministic(t *testing.T) {
	table := DefaultTable()
	first := table.Name(441.3)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, table.Name(441.3))
	}
	assert.Equal(t, "La", first)
}

func TestResolveTieGoesLow(t *testing.T) {
	table, err := NewTable([]NoteEntry{{"A", 100}, {"B", 150}})
	require.NoError(t, err)

	assert.Equal(t, "A", table.Name(125))
	// Tie between B and the wrapped anchor at 200.
	assert.Equal(t, "B", table.Name(175))
	assert.Equal(t, "A", table.Name(190))
}

func TestNewTableValidation(t *testing.T) {
	_, err := NewTable(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = NewTable([]NoteEntry{{"A", 100}, {"B", 90}})
	assert.ErrorIs(t, err, ErrUnsortedTable)

	_, err = NewTable([]NoteEntry{{"A", 100}, {"B", 200}})
	assert.ErrorIs(t, err, ErrUnsortedTable)

	for _, anchor := range []float64{0, -220, math.NaN(), math.Inf(1)} {
		_, err = NewTable([]NoteEntry{{"A", anchor}})
		assert.ErrorIs(t, err, ErrAnchor, "anchor=%v", anchor)
		assert.NotErrorIs(t, err, ErrUnsortedTable, "anchor=%v", anchor)
	}
}

func TestTableFor(t *testing.T) {
	solfege, err := TableFor(Solfege)
	require.NoError(t, err)
	assert.Equal(t, "La", solfege.Name(440))

	letter, err := TableFor(Letter)
	require.NoError(t, err)
	assert.Equal(t, "A", letter.Name(440))
	assert.Equal(t, "C", letter.Name(261.626))

	_, err = TableFor("numeric")
	assert.ErrorIs(t, err, ErrNotation)
}

func TestEntriesAreCopies(t *testing.T) {
	table := DefaultTable()
	entries := table.Entries()
	require.Len(t, entries, 12)

	entries[0].Name = "changed"
	assert.Equal(t, "La", table.Entries()[0].Name)
}
