// Package device captures from the system's default input through PortAudio.
package device

import (
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/0xlemi/spectronote/internal/audio"
)

// Capturer implements audio capture using PortAudio
type Capturer struct {
	mu          sync.Mutex
	isCapturing bool
	stream      *portaudio.Stream
	windowSize  int
	sampleRate  int
	chunker     *audio.Chunker
	handler     audio.Handler
	logger      *zap.Logger
}

// NewCapturer initializes PortAudio and prepares a mono capturer
// delivering windowSize-sample windows.
func NewCapturer(windowSize int, logger *zap.Logger) (*Capturer, error) {
	if windowSize < 1 {
		return nil, errors.Errorf("invalid window size %d", windowSize)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initialize portaudio")
	}

	return &Capturer{
		windowSize: windowSize,
		chunker:    audio.NewChunker(windowSize),
		logger:     logger.Named("capture"),
	}, nil
}

// Start opens the default input device at its native rate and begins capture.
func (c *Capturer) Start(h audio.Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCapturing {
		return audio.ErrAlreadyStarted
	}

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		return errors.Wrap(err, "find default input device")
	}

	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = 1
	params.FramesPerBuffer = c.windowSize

	c.handler = h
	c.stream, err = portaudio.OpenStream(params, c.processAudio)
	if err != nil {
		return errors.Wrapf(err, "open capture device %q", device.Name)
	}

	// The device may not honor the requested rate; all frequency math uses
	// what the stream reports.
	c.sampleRate = int(math.Round(params.SampleRate))
	if info := c.stream.Info(); info != nil && info.SampleRate > 0 {
		c.sampleRate = int(math.Round(info.SampleRate))
	}

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		return errors.Wrap(err, "start capture stream")
	}

	c.logger.Info("Using capture config",
		zap.String("device", device.Name),
		zap.Int("channels", 1),
		zap.Int("sample_rate", c.sampleRate),
		zap.Int("samples", c.windowSize),
	)

	c.isCapturing = true
	return nil
}

// Stop ends audio capture and terminates PortAudio.
func (c *Capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCapturing {
		return audio.ErrNotStarted
	}

	if err := c.stream.Stop(); err != nil {
		return errors.Wrap(err, "stop capture stream")
	}
	if err := c.stream.Close(); err != nil {
		return errors.Wrap(err, "close capture stream")
	}
	if err := portaudio.Terminate(); err != nil {
		return errors.Wrap(err, "terminate portaudio")
	}

	c.isCapturing = false
	return nil
}

// processAudio is the PortAudio callback. PortAudio reuses in, so the
// chunker copies samples out before the handler sees them.
func (c *Capturer) processAudio(in []float32) {
	c.chunker.Push(in, c.sampleRate, c.handler)
}

var _ audio.Capturer = (*Capturer)(nil)

// SampleRate returns the negotiated sample rate
func (c *Capturer) SampleRate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sampleRate
}

// IsCapturing returns true if currently capturing audio
func (c *Capturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}
