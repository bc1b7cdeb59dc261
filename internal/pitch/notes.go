package pitch

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Unknown is the label rendered when a frequency cannot be resolved.
const Unknown = "?"

// maxFoldIterations bounds octave folding so zero and non-finite input
// terminate.
const maxFoldIterations = 20

// NoteEntry is one pitch class of the reference octave.
type NoteEntry struct {
	Name        string  // e.g. "La", "Do#"
	ReferenceHz float64 // Frequency within [220Hz, 440Hz)
}

// Equal-tempered reference octave anchored on A3 = 220Hz.
var (
	solfegeEntries = []NoteEntry{
		{"La", 220.000},
		{"La#", 233.082},
		{"Si", 246.942},
		{"Do", 261.626},
		{"Do#", 277.183},
		{"Ré", 293.665},
		{"Ré#", 311.127},
		{"Mi", 329.628},
		{"Fa", 349.228},
		{"Fa#", 369.994},
		{"Sol", 391.995},
		{"Sol#", 415.305},
	}

	letterEntries = []NoteEntry{
		{"A", 220.000},
		{"A#", 233.082},
		{"B", 246.942},
		{"C", 261.626},
		{"C#", 277.183},
		{"D", 293.665},
		{"D#", 311.127},
		{"E", 329.628},
		{"F", 349.228},
		{"F#", 369.994},
		{"G", 391.995},
		{"G#", 415.305},
	}
)

// Notation names a note naming scheme.
type Notation string

const (
	Solfege Notation = "solfege"
	Letter  Notation = "letter"
)

// Errors
var (
	ErrEmptyTable    = errors.New("note table is empty")
	ErrUnsortedTable = errors.New("note table is not in ascending frequency order")
	ErrAnchor        = errors.New("anchor frequency must be positive and finite")
	ErrNotation      = errors.New("unknown notation")
)

// Table maps frequencies to note names by folding them into a single
// reference octave. A Table is immutable once built and safe for concurrent
// use.
type Table struct {
	entries []NoteEntry
	// search is entries plus the next octave's anchor, so that frequencies
	// just below the upper bound wrap around to the first name.
	search []NoteEntry
	lower  float64
	upper  float64
}

var (
	solfegeTable = mustTable(solfegeEntries)
	letterTable  = mustTable(letterEntries)
)

// NewTable builds a table from entries ordered by ascending ReferenceHz.
// The reference octave spans [entries[0], 2*entries[0]).
func NewTable(entries []NoteEntry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}

	lower := entries[0].ReferenceHz
	if !(lower > 0) || math.IsInf(lower, 0) {
		return nil, errors.Wrapf(ErrAnchor, "%v", lower)
	}
	upper := 2 * lower

	t := &Table{
		entries: make([]NoteEntry, len(entries)),
		search:  make([]NoteEntry, 0, len(entries)+1),
		lower:   lower,
		upper:   upper,
	}

	for i, e := range entries {
		if i > 0 && e.ReferenceHz <= entries[i-1].ReferenceHz {
			return nil, errors.Wrapf(ErrUnsortedTable, "entry %d (%s)", i, e.Name)
		}
		if e.ReferenceHz >= upper {
			return nil, errors.Wrapf(ErrUnsortedTable, "entry %d (%s) outside reference octave", i, e.Name)
		}
		// Labels are padded by rune count, so keep them composed.
		t.entries[i] = NoteEntry{Name: norm.NFC.String(e.Name), ReferenceHz: e.ReferenceHz}
	}

	t.search = append(t.search, t.entries...)
	t.search = append(t.search, NoteEntry{Name: t.entries[0].Name, ReferenceHz: upper})

	return t, nil
}

func mustTable(entries []NoteEntry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// TableFor returns the built-in table for a notation.
func TableFor(n Notation) (*Table, error) {
	switch n {
	case Solfege, "":
		return solfegeTable, nil
	case Letter:
		return letterTable, nil
	default:
		return nil, errors.Wrapf(ErrNotation, "%q", string(n))
	}
}

// DefaultTable returns the solfege table.
func DefaultTable() *Table {
	return solfegeTable
}

// Entries returns a copy of the table's entries in ascending order.
func (t *Table) Entries() []NoteEntry {
	out := make([]NoteEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Bounds returns the reference octave [lower, upper).
func (t *Table) Bounds() (lower, upper float64) {
	return t.lower, t.upper
}

// Fold moves hz into the reference octave by repeated halving or doubling.
// ok is false for zero, negative and non-finite input.
func (t *Table) Fold(hz float64) (folded float64, ok bool) {
	if math.IsNaN(hz) {
		return 0, false
	}

	iters := 0
	for hz >= t.upper && iters < maxFoldIterations {
		hz /= 2
		iters++
	}
	for hz < t.lower && iters < maxFoldIterations {
		hz *= 2
		iters++
	}
	if iters >= maxFoldIterations || hz < t.lower || hz >= t.upper {
		return 0, false
	}
	return hz, true
}

// Resolve returns the entry nearest to hz after octave folding. On equal
// distance the lower neighbor wins.
func (t *Table) Resolve(hz float64) (NoteEntry, bool) {
	folded, ok := t.Fold(hz)
	if !ok {
		return NoteEntry{}, false
	}

	idx := sort.Search(len(t.search), func(i int) bool {
		return t.search[i].ReferenceHz >= folded
	})

	down := t.distance(idx-1, folded)
	up := t.distance(idx, folded)
	if down <= up {
		return t.entryAt(idx - 1), true
	}
	return t.entryAt(idx), true
}

// Name resolves hz to a note name, or Unknown.
func (t *Table) Name(hz float64) string {
	e, ok := t.Resolve(hz)
	if !ok {
		return Unknown
	}
	return e.Name
}

func (t *Table) distance(i int, hz float64) float64 {
	if i < 0 || i >= len(t.search) {
		return math.Inf(1)
	}
	return math.Abs(hz - t.search[i].ReferenceHz)
}

// entryAt maps a search index back to its pitch class; the wraparound
// sentinel reports the anchor's frequency.
func (t *Table) entryAt(i int) NoteEntry {
	if i == len(t.entries) {
		return t.entries[0]
	}
	return t.entries[i]
}
