package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/0xlemi/spectronote/internal/audio"
	"github.com/0xlemi/spectronote/internal/audio/device"
	"github.com/0xlemi/spectronote/internal/config"
	"github.com/0xlemi/spectronote/internal/display"
	"github.com/0xlemi/spectronote/internal/logging"
	"github.com/0xlemi/spectronote/internal/pipeline"
	"github.com/0xlemi/spectronote/internal/pitch"
	"github.com/0xlemi/spectronote/internal/spectrum"
	"github.com/0xlemi/spectronote/internal/ui"
)

const appName = "spectronote"

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"window-size":      "windowSize",
	"buckets":          "displayBucketCount",
	"ratio":            "interestingRatio",
	"bar-scale":        "barScale",
	"engine":           "engine",
	"notation":         "notation",
	"queue-depth":      "queueDepth",
	"source":           "source",
	"tone-hz":          "toneHz",
	"tone-sample-rate": "toneSampleRate",
	"tui":              "tui",
	"log-level":        "logLevel",
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Live audio spectrum and dominant note in the terminal",
		Long: `Captures mono audio from the default input device, runs an FFT over each
window and prints a bar chart of the low end of the spectrum together with the
name of the loudest note. Press enter to quit.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			return run(cfg, os.Stdin, os.Stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (yaml)")
	flags.Int("window-size", 4096, "samples per analysis window")
	flags.Int("buckets", 64, "spectrum rows per frame")
	flags.Int("ratio", 32, "show the lowest window-size/ratio bins")
	flags.Float64("bar-scale", 40, "glyphs per unit of normalized magnitude")
	flags.String("engine", string(spectrum.EngineDSP), "fft engine (dsp, gonum)")
	flags.String("notation", string(pitch.Solfege), "note names (solfege, letter)")
	flags.Int("queue-depth", 4, "windows buffered before the oldest is dropped")
	flags.String("source", config.SourceDevice, "audio source (device, tone)")
	flags.Float64("tone-hz", 440, "frequency of the synthetic tone source")
	flags.Int("tone-sample-rate", 44100, "sample rate of the synthetic tone source")
	flags.Bool("tui", false, "full-screen display instead of scrolling output")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// loadConfig layers defaults, config file, environment and flags.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet, configFile string) (*config.Config, error) {
	config.SetDefaults(v)

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", flag)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", configFile)
		}
	}

	return config.Load(v)
}

func newCapturer(cfg *config.Config, logger *zap.Logger) (audio.Capturer, error) {
	if cfg.Source == config.SourceTone {
		return audio.NewToneCapturer(cfg.WindowSize, cfg.ToneSampleRate, cfg.ToneHz)
	}
	return device.NewCapturer(cfg.WindowSize, logger)
}

func run(cfg *config.Config, stdin io.Reader, stdout io.Writer) error {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	notes, err := pitch.TableFor(pitch.Notation(cfg.Notation))
	if err != nil {
		return err
	}
	engine, err := spectrum.NewEngine(spectrum.EngineName(cfg.Engine), cfg.WindowSize)
	if err != nil {
		return err
	}
	analyzer, err := spectrum.NewAnalyzer(cfg.WindowSize, engine)
	if err != nil {
		return err
	}
	visualizer, err := display.NewVisualizer(cfg.DisplayOptions(), notes)
	if err != nil {
		return err
	}

	capturer, err := newCapturer(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create audio capturer")
	}

	var program *tea.Program
	out := stdout
	if cfg.TUI {
		program = tea.NewProgram(ui.NewModel(appName), tea.WithAltScreen(), tea.WithInput(stdin))
		out = ui.FrameWriter{Program: program}
	}

	queue := pipeline.NewQueue(cfg.QueueDepth)
	processor := pipeline.NewProcessor(analyzer, visualizer, out, logger)

	if err := capturer.Start(queue.Handler()); err != nil {
		return errors.Wrap(err, "failed to start audio capture")
	}

	logger.Debug("Pipeline running",
		zap.String("source", cfg.Source),
		zap.Int("sample_rate", capturer.SampleRate()),
		zap.Int("window_size", cfg.WindowSize),
		zap.String("engine", cfg.Engine),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return processor.Run(gctx, queue)
	})

	gate := make(chan error, 1)
	go func() {
		gate <- waitForExit(program, stdin)
	}()

	var gateErr error
	select {
	case gateErr = <-gate:
	case <-gctx.Done():
		// The consumer failed; its error is reported by Wait below.
		if program != nil {
			program.Quit()
		}
	}

	if err := capturer.Stop(); err != nil {
		logger.Warn("Failed to stop audio capture", zap.Error(err))
	}
	// Closing the queue lets the consumer drain what is left; ctx stays live
	// until Wait returns so the drain is not cut short.
	queue.Close()

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Debug("Stopped", zap.Uint64("frames", processor.Frames()), zap.Uint64("dropped", queue.Dropped()))
	return gateErr
}

// waitForExit blocks until the user quits: the TUI exits or a line (or EOF)
// arrives on stdin.
func waitForExit(program *tea.Program, stdin io.Reader) error {
	if program != nil {
		_, err := program.Run()
		return errors.Wrap(err, "run ui")
	}

	_, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "read exit line")
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
