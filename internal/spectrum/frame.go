package spectrum

import (
	"math/cmplx"

	"github.com/pkg/errors"
)

// Errors
var (
	ErrNoBins = errors.New("no bins to normalize")
	ErrSilent = errors.New("all bins are zero")
)

// Frame is the DFT of one sample window. Bin k maps to k*SampleRate/len(Bins)
// for k < len(Bins)/2.
type Frame struct {
	Bins       []complex128
	SampleRate int
}

// Size returns the window length the frame was computed from.
func (f Frame) Size() int {
	return len(f.Bins)
}

// Prefix returns the first n bins, clamped to the frame length. The slice
// aliases the frame.
func (f Frame) Prefix(n int) []complex128 {
	if n > len(f.Bins) {
		n = len(f.Bins)
	}
	if n < 0 {
		n = 0
	}
	return f.Bins[:n]
}

// BinHz returns the frequency of bin i of this frame.
func (f Frame) BinHz(i int) float64 {
	return BinToHz(i, f.SampleRate, len(f.Bins))
}

// BinToHz converts a bin index to Hz.
func BinToHz(binIndex, sampleRate, windowSize int) float64 {
	return float64(binIndex) * float64(sampleRate) / float64(windowSize)
}

// Normalize divides every bin by the bin of largest magnitude, so that bin
// ends up at magnitude 1. The division is complex, which also rotates the
// phase of every bin. On ties the first bin wins.
//
// An all-zero slice is left untouched and ErrSilent is returned.
func Normalize(bins []complex128) error {
	if len(bins) == 0 {
		return ErrNoBins
	}

	peak := bins[0]
	peakAbs := cmplx.Abs(peak)
	for _, b := range bins[1:] {
		if a := cmplx.Abs(b); a > peakAbs {
			peak, peakAbs = b, a
		}
	}

	if peakAbs == 0 {
		return ErrSilent
	}

	for i := range bins {
		bins[i] /= peak
	}
	return nil
}

// Dominant returns the index of the bin with the largest squared magnitude.
// On ties the first bin wins; an empty or silent slice yields 0.
func Dominant(bins []complex128) int {
	maxIdx, maxNorm := 0, 0.0
	for i, b := range bins {
		norm := real(b)*real(b) + imag(b)*imag(b)
		if norm > maxNorm {
			maxIdx, maxNorm = i, norm
		}
	}
	return maxIdx
}

// MeanMagnitude returns the mean magnitude of bins, or 0 for an empty slice.
func MeanMagnitude(bins []complex128) float64 {
	if len(bins) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bins {
		sum += cmplx.Abs(b)
	}
	return sum / float64(len(bins))
}
