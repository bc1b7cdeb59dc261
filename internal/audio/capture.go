package audio

import (
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Errors
var (
	ErrAlreadyStarted = errors.New("audio capture already started")
	ErrNotStarted     = errors.New("audio capture not started")
)

// Window is one fixed-size block of mono samples together with the rate
// they were captured at.
type Window struct {
	Samples    []float32
	SampleRate int
}

// Handler receives each completed window. It runs on the capture goroutine
// and must not block. The window is owned by the handler once delivered.
type Handler func(Window)

// Capturer defines the interface for audio capture
type Capturer interface {
	// Start begins delivering windows to h
	Start(h Handler) error

	// Stop ends audio capture
	Stop() error

	// SampleRate returns the negotiated sample rate, valid after Start
	SampleRate() int

	// IsCapturing returns true if currently capturing audio
	IsCapturing() bool
}

// Chunker turns arbitrarily sized input buffers into windows of a fixed size.
type Chunker struct {
	size    int
	pending []float32
}

// NewChunker creates a chunker emitting size-sample windows.
func NewChunker(size int) *Chunker {
	return &Chunker{size: size, pending: make([]float32, 0, size)}
}

// Push appends in and emits every full window. Emitted windows never alias in.
func (c *Chunker) Push(in []float32, sampleRate int, h Handler) {
	for len(in) > 0 {
		n := c.size - len(c.pending)
		if n > len(in) {
			n = len(in)
		}
		c.pending = append(c.pending, in[:n]...)
		in = in[n:]

		if len(c.pending) == c.size {
			h(Window{Samples: c.pending, SampleRate: sampleRate})
			c.pending = make([]float32, 0, c.size)
		}
	}
}

// ToneCapturer synthesizes a pure sine tone in real time. It stands in for
// a device when none is available.
type ToneCapturer struct {
	mu          sync.Mutex
	isCapturing bool
	windowSize  int
	sampleRate  int
	frequency   float64
	amplitude   float32
	interval    time.Duration
	phase       float64
	done        chan struct{}
	wg          sync.WaitGroup
}

// NewToneCapturer creates a capturer producing windowSize-sample windows of a
// sine at frequency Hz.
func NewToneCapturer(windowSize, sampleRate int, frequency float64) (*ToneCapturer, error) {
	if windowSize < 1 || sampleRate < 1 {
		return nil, errors.Errorf("invalid tone parameters: window %d, rate %d", windowSize, sampleRate)
	}
	if !(frequency > 0) || math.IsInf(frequency, 0) {
		return nil, errors.Errorf("invalid tone frequency %v", frequency)
	}

	interval := time.Duration(float64(time.Second) * float64(windowSize) / float64(sampleRate))
	if interval < time.Millisecond {
		interval = time.Millisecond
	}

	return &ToneCapturer{
		windowSize: windowSize,
		sampleRate: sampleRate,
		frequency:  frequency,
		amplitude:  0.5,
		interval:   interval,
	}, nil
}

var _ Capturer = (*ToneCapturer)(nil)

// Start begins emitting one window per window duration.
func (c *ToneCapturer) Start(h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCapturing {
		return ErrAlreadyStarted
	}

	c.done = make(chan struct{})
	c.isCapturing = true
	c.wg.Add(1)
	go c.run(h, c.done)
	return nil
}

func (c *ToneCapturer) run(h Handler, done <-chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h(c.Next())
		}
	}
}

// Next synthesizes the next window, continuing the phase of the previous one.
func (c *ToneCapturer) Next() Window {
	samples := make([]float32, c.windowSize)
	step := 2 * math.Pi * c.frequency / float64(c.sampleRate)
	for i := range samples {
		samples[i] = c.amplitude * float32(math.Sin(c.phase))
		c.phase = math.Mod(c.phase+step, 2*math.Pi)
	}
	return Window{Samples: samples, SampleRate: c.sampleRate}
}

// Stop ends audio capture
func (c *ToneCapturer) Stop() error {
	c.mu.Lock()
	if !c.isCapturing {
		c.mu.Unlock()
		return ErrNotStarted
	}
	close(c.done)
	c.isCapturing = false
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

// SampleRate returns the synthesis rate
func (c *ToneCapturer) SampleRate() int {
	return c.sampleRate
}

// IsCapturing returns true if currently capturing audio
func (c *ToneCapturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}
