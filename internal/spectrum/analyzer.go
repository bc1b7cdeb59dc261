package spectrum

import (
	"github.com/mjibson/go-dsp/fft"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/0xlemi/spectronote/internal/audio"
)

// Errors
var (
	ErrWindowSize = errors.New("window length does not match analyzer size")
	ErrEngine     = errors.New("unknown fft engine")
)

// EngineName selects the FFT implementation behind an Analyzer.
type EngineName string

const (
	EngineDSP   EngineName = "dsp"
	EngineGonum EngineName = "gonum"
)

// Engine computes a forward DFT of src. Implementations may keep per-size
// plans and are not required to be safe for concurrent use.
type Engine interface {
	Forward(src []complex128) []complex128
}

// dspEngine wraps go-dsp, which caches its radix-2 factors per length.
type dspEngine struct{}

func (dspEngine) Forward(src []complex128) []complex128 {
	return fft.FFT(src)
}

// gonumEngine holds a gonum plan built once for a fixed length.
type gonumEngine struct {
	plan *fourier.CmplxFFT
}

func (e gonumEngine) Forward(src []complex128) []complex128 {
	return e.plan.Coefficients(nil, src)
}

// NewEngine builds the named engine for windows of length n.
func NewEngine(name EngineName, n int) (Engine, error) {
	switch name {
	case EngineDSP, "":
		return dspEngine{}, nil
	case EngineGonum:
		return gonumEngine{plan: fourier.NewCmplxFFT(n)}, nil
	default:
		return nil, errors.Wrapf(ErrEngine, "%q", string(name))
	}
}

// Analyzer transforms fixed-size sample windows into spectrum frames. No
// window function is applied to the samples, so low bins show leakage.
//
// An Analyzer is owned by a single goroutine.
type Analyzer struct {
	size   int
	engine Engine
	input  []complex128
}

// NewAnalyzer creates an analyzer for windows of windowSize samples.
func NewAnalyzer(windowSize int, engine Engine) (*Analyzer, error) {
	if windowSize < 1 {
		return nil, errors.Wrapf(ErrWindowSize, "window size %d", windowSize)
	}
	if engine == nil {
		engine = dspEngine{}
	}

	return &Analyzer{
		size:   windowSize,
		engine: engine,
		input:  make([]complex128, windowSize),
	}, nil
}

// Size returns the window length the analyzer was planned for.
func (a *Analyzer) Size() int {
	return a.size
}

// Transform computes the DFT of w. The returned frame owns its bins.
func (a *Analyzer) Transform(w audio.Window) (Frame, error) {
	if len(w.Samples) != a.size {
		return Frame{}, errors.Wrapf(ErrWindowSize, "got %d samples, want %d", len(w.Samples), a.size)
	}

	for i, s := range w.Samples {
		a.input[i] = complex(float64(s), 0)
	}

	bins := a.engine.Forward(a.input)

	return Frame{
		Bins:       bins,
		SampleRate: w.SampleRate,
	}, nil
}
