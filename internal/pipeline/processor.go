package pipeline

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/0xlemi/spectronote/internal/audio"
	"github.com/0xlemi/spectronote/internal/display"
	"github.com/0xlemi/spectronote/internal/spectrum"
)

// Processor is the consumer side of the pipeline. It owns the analyzer, so
// transforms never run concurrently.
type Processor struct {
	analyzer   *spectrum.Analyzer
	visualizer *display.Visualizer
	out        io.Writer
	logger     *zap.Logger
	buf        bytes.Buffer
	frames     uint64
}

// NewProcessor creates a consumer writing each rendered frame to out in a
// single Write call.
func NewProcessor(analyzer *spectrum.Analyzer, visualizer *display.Visualizer, out io.Writer, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		analyzer:   analyzer,
		visualizer: visualizer,
		out:        out,
		logger:     logger.Named("processor"),
	}
}

// Process runs transform, normalize and render for one window.
func (p *Processor) Process(w audio.Window) error {
	frame, err := p.analyzer.Transform(w)
	if err != nil {
		return err
	}

	p.buf.Reset()
	if err := p.visualizer.Render(&p.buf, frame); err != nil {
		return err
	}

	if _, err := p.out.Write(p.buf.Bytes()); err != nil {
		return errors.Wrap(err, "write frame")
	}
	p.frames++
	return nil
}

// Frames returns how many windows were rendered.
func (p *Processor) Frames() uint64 {
	return p.frames
}

// Run consumes q in order until it is closed or ctx is done. Closing q lets
// Run drain every queued window before returning; cancelling ctx stops it
// after the current frame and may leave windows unprocessed. Windows of the
// wrong size are skipped; any other failure stops the loop.
func (p *Processor) Run(ctx context.Context, q *Queue) error {
	p.logger.Debug("Consumer started", zap.Int("window_size", p.analyzer.Size()))
	defer func() {
		p.logger.Debug("Consumer stopped", zap.Uint64("frames", p.frames))
	}()

	var lastDropped uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case w, ok := <-q.Windows():
			if !ok {
				return nil
			}

			if err := p.Process(w); err != nil {
				if errors.Is(err, spectrum.ErrWindowSize) {
					p.logger.Warn("Skipping window", zap.Error(err))
					continue
				}
				return err
			}

			if d := q.Dropped(); d != lastDropped {
				p.logger.Debug("Dropped windows under load",
					zap.Uint64("dropped", d),
					zap.Uint64("since_last", d-lastDropped),
				)
				lastDropped = d
			}
		}
	}
}
