// Package display renders spectrum frames as text.
package display

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/0xlemi/spectronote/internal/pitch"
	"github.com/0xlemi/spectronote/internal/spectrum"
)

// Glyph is the bar character for the spectrum chart.
const Glyph = '|'

// Options controls which part of the spectrum is drawn and how.
type Options struct {
	// BucketCount is the number of chart rows per frame.
	BucketCount int
	// InterestingRatio divides the window size to get the inspected prefix.
	InterestingRatio int
	// BarScale converts a normalized mean magnitude into a glyph count.
	BarScale float64
}

// DefaultOptions matches a 4096-sample window shown as 64 rows.
func DefaultOptions() Options {
	return Options{
		BucketCount:      64,
		InterestingRatio: 32,
		BarScale:         40,
	}
}

// ErrLayout reports options that cannot lay out a frame.
var ErrLayout = errors.New("invalid display layout")

// Visualizer renders frames as a bar chart and a dominant-note line.
type Visualizer struct {
	opts  Options
	notes *pitch.Table
}

// NewVisualizer creates a visualizer. A nil table selects solfege names.
func NewVisualizer(opts Options, notes *pitch.Table) (*Visualizer, error) {
	if opts.BucketCount < 1 || opts.InterestingRatio < 1 || !(opts.BarScale > 0) {
		return nil, errors.Wrapf(ErrLayout, "%+v", opts)
	}
	if notes == nil {
		notes = pitch.DefaultTable()
	}
	return &Visualizer{opts: opts, notes: notes}, nil
}

// PrefixLen returns how many low bins of a frame are inspected.
func (v *Visualizer) PrefixLen(f spectrum.Frame) int {
	return f.Size() / v.opts.InterestingRatio
}

// Render writes the spectrum chart followed by the dominant-note line.
func (v *Visualizer) Render(w io.Writer, f spectrum.Frame) error {
	var b strings.Builder
	if err := v.writeSpectrum(&b, f); err != nil {
		return err
	}
	v.writeDominant(&b, f)

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write frame")
}

// RenderSpectrum writes one row per bucket of the inspected prefix and a
// terminating blank line. Bars are scaled against the loudest bin.
func (v *Visualizer) RenderSpectrum(w io.Writer, f spectrum.Frame) error {
	var b strings.Builder
	if err := v.writeSpectrum(&b, f); err != nil {
		return err
	}
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write spectrum")
}

// RenderDominant writes the frequency and note of the loudest inspected bin.
func (v *Visualizer) RenderDominant(w io.Writer, f spectrum.Frame) error {
	var b strings.Builder
	v.writeDominant(&b, f)
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write dominant note")
}

func (v *Visualizer) writeSpectrum(b *strings.Builder, f spectrum.Frame) error {
	prefix := v.PrefixLen(f)
	bucketSize := prefix / v.opts.BucketCount
	if bucketSize < 1 {
		return errors.Wrapf(ErrLayout, "%d bins cannot fill %d buckets", prefix, v.opts.BucketCount)
	}

	bins := make([]complex128, prefix)
	copy(bins, f.Prefix(prefix))
	if err := spectrum.Normalize(bins); err != nil && !errors.Is(err, spectrum.ErrSilent) {
		return err
	}

	// Trailing bins that do not fill a whole bucket are not drawn.
	for i := 0; i < v.opts.BucketCount; i++ {
		start := i * bucketSize
		hz := f.BinHz(start)
		mean := spectrum.MeanMagnitude(bins[start : start+bucketSize])

		fmt.Fprintf(b, "%5.0f %4s: ", hz, v.notes.Name(hz))
		b.WriteString(strings.Repeat(string(Glyph), barLen(mean, v.opts.BarScale)))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return nil
}

func (v *Visualizer) writeDominant(b *strings.Builder, f spectrum.Frame) {
	idx := spectrum.Dominant(f.Prefix(v.PrefixLen(f)))
	hz := f.BinHz(idx)
	fmt.Fprintf(b, "%5s %4s\n", strconv.FormatFloat(hz, 'f', -1, 64), v.notes.Name(hz))
}

func barLen(mean, scale float64) int {
	n := math.Round(mean * scale)
	if !(n > 0) {
		return 0
	}
	return int(n)
}
