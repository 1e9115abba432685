package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/lifegrid/model"
	"github.com/sheikhrachel/lifegrid/utils"
)

var (
	rootCmd = &cobra.Command{
		Use:   "lifegrid",
		Short: "Conway's Game of Life on a fixed, non-wrapping grid",
		Long: `Runs Conway's Game of Life in the terminal, in an SDL window, or as a
plain text report of a single cell. Press q or Escape to quit and r to reset.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGame,
	}

	configPath string
	logFile    string
	flagConfig = utils.DefaultConfig()
)

func init() {
	registerFlags(rootCmd.Flags())
}

// registerFlags binds the command line flags to configPath, logFile and flagConfig
func registerFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&configPath, "config", "c", "", "YAML or JSON config file")
	flags.IntVar(&flagConfig.Width, "width", flagConfig.Width, "grid width in cells")
	flags.IntVar(&flagConfig.Height, "height", flagConfig.Height, "grid height in cells")
	flags.StringVarP(&flagConfig.Renderer, "renderer", "r", flagConfig.Renderer, "terminal, window or text")
	flags.BoolVarP(&flagConfig.Fullscreen, "fullscreen", "f", flagConfig.Fullscreen, "start the window fullscreen")
	flags.Int64Var(&flagConfig.Seed, "seed", flagConfig.Seed, "random seed, 0 picks one from the clock")
	flags.IntVarP(&flagConfig.MaxGenerations, "generations", "n", flagConfig.MaxGenerations, "stop after this many generations, 0 runs until quit")
	flags.DurationVar(&flagConfig.FrameRate, "frame-rate", flagConfig.FrameRate, "delay between generations")
	flags.StringVarP(&flagConfig.Pattern, "pattern", "p", flagConfig.Pattern, "glider, blinker, block or a plaintext .cells file")
	flags.BoolVar(&flagConfig.AutoRestart, "auto-restart", flagConfig.AutoRestart, "re-randomise on extinction or stagnation")
	flags.StringVar(&flagConfig.MetricsAddr, "metrics-addr", flagConfig.MetricsAddr, "serve Prometheus metrics on this address")
	flags.StringVar(&flagConfig.LogLevel, "log-level", flagConfig.LogLevel, "debug, info, warn or error")
	flags.StringVar(&logFile, "log-file", "", "write logs here instead of stderr")
}

// mergeFlags copies every explicitly set flag over the file configuration
func mergeFlags(cmd *cobra.Command, config utils.Config) utils.Config {
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("width", func() { config.Width = flagConfig.Width })
	set("height", func() { config.Height = flagConfig.Height })
	set("renderer", func() { config.Renderer = strings.ToLower(flagConfig.Renderer) })
	set("fullscreen", func() { config.Fullscreen = flagConfig.Fullscreen })
	set("seed", func() { config.Seed = flagConfig.Seed })
	set("generations", func() { config.MaxGenerations = flagConfig.MaxGenerations })
	set("frame-rate", func() { config.FrameRate = flagConfig.FrameRate })
	set("pattern", func() { config.Pattern = flagConfig.Pattern })
	set("auto-restart", func() { config.AutoRestart = flagConfig.AutoRestart })
	set("metrics-addr", func() { config.MetricsAddr = flagConfig.MetricsAddr })
	set("log-level", func() { config.LogLevel = flagConfig.LogLevel })
	return config
}

// openLog picks the log destination. The terminal renderer owns the screen,
// so without a log file its logs are dropped.
func openLog(config utils.Config) (io.Writer, func(), error) {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "[openLog] failed to open log file: %+v", logFile)
		}
		return f, func() { _ = f.Close() }, nil
	}
	if config.Renderer == utils.RendererTerminal {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

func newRenderer(config utils.Config) (renderer, error) {
	switch config.Renderer {
	case utils.RendererWindow:
		return newWindowRenderer(config)
	default:
		r, err := model.NewTerminalRenderer()
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

func runGame(cmd *cobra.Command, _ []string) error {
	config, err := utils.LoadConfig(configPath)
	if err != nil {
		return err
	}
	config = mergeFlags(cmd, config)
	config.Renderer = strings.ToLower(config.Renderer)
	if err = config.Validate(); err != nil {
		return err
	}

	out, closeLog, err := openLog(config)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := utils.NewLogger(out, config.LogLevel)

	stats := utils.NewStats()
	g, err := initializeGame(config, stats, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)

	if config.MetricsAddr != "" {
		serveMetrics(ctx, eg, config.MetricsAddr, stats, logger)
	}

	// the loop stays on the main goroutine because SDL requires the main thread
	runErr := runLoop(ctx, g, config, cmd.OutOrStdout())
	stop()
	if err = eg.Wait(); err != nil && runErr == nil {
		runErr = err
	}

	logger.Info("final stats",
		"generations", stats.TotalGenerations,
		"runtime", time.Since(stats.StartTime).Round(time.Millisecond),
		"gen_per_sec", stats.GenerationsPerSecond,
		"avg_population", stats.AveragePopulation,
		"restarts", stats.Restarts,
	)
	return runErr
}

func runLoop(ctx context.Context, g *game, config utils.Config, out io.Writer) error {
	if config.Renderer == utils.RendererText {
		return runText(ctx, g, out)
	}

	r, err := newRenderer(config)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			g.logger.Warn("failed to close renderer", "error", cerr)
		}
	}()
	return runRender(ctx, g, r)
}

// serveMetrics exposes the stats registry until ctx is cancelled
func serveMetrics(ctx context.Context, eg *errgroup.Group, addr string, stats *utils.Stats, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(stats.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg.Go(func() error {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "[serveMetrics]")
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("lifegrid failed", "error", err)
		os.Exit(1)
	}
}
