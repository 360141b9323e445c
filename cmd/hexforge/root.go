package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/hexforge/internal/categorize"
	"github.com/MrWong99/hexforge/internal/cluster"
	"github.com/MrWong99/hexforge/internal/config"
	"github.com/MrWong99/hexforge/internal/emit"
	"github.com/MrWong99/hexforge/internal/observe"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	archive    string
	outputDir  string

	cfg     *config.Config
	metrics *observe.Metrics
	stdout  io.Writer
	stderr  io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "hexforge",
		Short:         "Build game content from a world archive",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "hexforge.yaml", "path to the YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")
	pf.StringVar(&a.archive, "archive", "", "override archive.path")
	pf.StringVar(&a.outputDir, "output-dir", "", "override output.dir")

	root.AddCommand(
		newRunCmd(a),
		newAnalyzeCmd(a),
		newSeedCmd(a),
		newGenerateAllCmd(a),
		newGenerateCmd(a),
		newUpgradesCmd(a),
		newValidateCmd(a),
	)
	return root
}

// setup loads the configuration, applies flag overrides and installs the
// default logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = config.LogLevel(a.logLevel)
	}
	if a.archive != "" {
		cfg.Archive.Path = a.archive
	}
	if a.outputDir != "" {
		cfg.Output.Dir = a.outputDir
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	slog.SetDefault(newLogger(a.stderr, cfg.LogLevel))
	slog.Debug("configuration loaded",
		"config", a.configPath,
		"archive", cfg.Archive.Path,
		"output", cfg.Output.Dir,
	)
	return nil
}

// newLogger creates a text [slog.Logger] writing to w at the given level.
func newLogger(w io.Writer, level config.LogLevel) *slog.Logger {
	var l slog.Level
	switch level {
	case config.LogDebug:
		l = slog.LevelDebug
	case config.LogWarn:
		l = slog.LevelWarn
	case config.LogError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// withTelemetry runs fn. When telemetry.metrics_addr is set, the OpenTelemetry
// providers are installed and /metrics plus /healthz are served for the
// lifetime of fn.
func (a *app) withTelemetry(ctx context.Context, fn func(context.Context) error) error {
	addr := a.cfg.Telemetry.MetricsAddr
	if addr == "" {
		a.metrics = observe.DefaultMetrics()
		return fn(ctx)
	}

	tel, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()
	a.metrics = tel.Metrics

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServing := context.WithCancel(gctx)
	g.Go(func() error {
		slog.Info("telemetry endpoint listening", "addr", addr)
		return observe.Serve(serveCtx, addr, observe.Handler(a.metrics, prometheus.DefaultGatherer))
	})
	g.Go(func() error {
		defer stopServing()
		return fn(gctx)
	})
	return g.Wait()
}

// loadCorpus reads the training corpus, or returns nil when none is
// configured.
func (a *app) loadCorpus() (*categorize.Corpus, error) {
	if a.cfg.Training.Dir == "" {
		return nil, nil
	}
	return categorize.LoadCorpus(a.cfg.Training.Dir, a.cfg.Training.Strict)
}

func (a *app) clusterOptions() []cluster.Option {
	if len(a.cfg.Clusters.CanonicalNames) == 0 {
		return nil
	}
	return []cluster.Option{
		cluster.WithResolver(cluster.NewCanonicalResolver(a.cfg.Clusters.CanonicalNames, a.cfg.Clusters.MatchThreshold)),
	}
}

// emitter builds an [emit.Emitter]. Empty directories fall back to the
// configured output layout.
func (a *app) emitter(assetsDir, promptsDir string, corpus *categorize.Corpus) *emit.Emitter {
	out := a.cfg.Output
	if assetsDir == "" {
		assetsDir = out.Path(out.AssetsDir)
	}
	if promptsDir == "" {
		promptsDir = out.Path(out.PromptsDir)
	}
	return emit.New(assetsDir, promptsDir, out.Path(out.ContainersDir),
		emit.WithTraining(corpus),
		emit.WithMetrics(a.metrics),
		emit.WithContainerPackage(out.ContainerPackage),
	)
}

func (a *app) analysisDir() string {
	return a.cfg.Output.Path(a.cfg.Output.AnalysisDir)
}

// printPaths writes one path per line followed by a count.
func (a *app) printPaths(paths []string) {
	for _, p := range paths {
		fmt.Fprintln(a.stdout, p)
	}
	fmt.Fprintf(a.stdout, "%d files written\n", len(paths))
}
