package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/jamgantt/pkg/chart"
	"github.com/vanderheijden86/jamgantt/pkg/config"
	"github.com/vanderheijden86/jamgantt/pkg/debug"
	"github.com/vanderheijden86/jamgantt/pkg/ingest"
	"github.com/vanderheijden86/jamgantt/pkg/logging"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
	"github.com/vanderheijden86/jamgantt/pkg/ui"
)

// rootOptions holds flag values shared by the subcommands.
type rootOptions struct {
	configPath string
	logLevel   string
	cpuProfile string

	logScale     bool
	demo         bool
	demoInterval time.Duration
	recipe       string
	file         string
	feedMode     string
	stdin        bool
	fps          int
	noMiniPlot   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var stopProfile func()

	cmd := &cobra.Command{
		Use:   "jg",
		Short: "Live frequency/time jamming plan chart",
		Long: `jg draws a jamming plan as a Gantt chart of frequency against time.

Tasks arrive from a demo ticker, from lines piped on stdin, or from lines
appended to a followed file. Each line either names a recipe step or, in
structured mode, carries a JSON task.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.cpuProfile == "" {
				return nil
			}
			stop, err := startCPUProfile(opts.cpuProfile)
			if err != nil {
				return err
			}
			stopProfile = stop
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if stopProfile != nil {
				stopProfile()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.AddCommand(newSnapshotCmd(opts), newVersionCmd(), newConfigCmd(opts))
	return cmd
}

// addFlags registers the persistent flags and the TUI flags on cmd.
func (o *rootOptions) addFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/jamgantt/config.yaml)")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&o.cpuProfile, "cpu-profile", "", "write CPU profile to file")
	pf.StringVar(&o.recipe, "recipe", "", "YAML recipe file replacing the demo recipe")

	f := cmd.Flags()
	f.BoolVar(&o.logScale, "log", false, "start with a log10 frequency scale")
	f.BoolVar(&o.demo, "demo", true, "run the demo ticker")
	f.DurationVar(&o.demoInterval, "demo-interval", ingest.DefaultDemoInterval, "demo ticker period")
	f.StringVarP(&o.file, "file", "f", "", "follow a file for appended feed lines")
	f.StringVar(&o.feedMode, "feed-mode", "step", "feed line format: step or structured")
	f.BoolVar(&o.stdin, "stdin", true, "read feed lines from stdin when it is not a terminal")
	f.IntVar(&o.fps, "fps", 30, "frames per second (1-120)")
	f.BoolVar(&o.noMiniPlot, "no-mini-plot", false, "hide the per-task strip below the plot")
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	path := configPath(opts)
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadFrom(path)
		switch {
		case errors.Is(err, config.ErrInvalid):
			return cfg, err
		case err != nil:
			// An unreadable config file is not fatal.
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", err)
		default:
			cfg = loaded
		}
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if changed("log") {
		cfg.UI.LogScale = opts.logScale
	}
	if changed("demo") {
		cfg.Demo.Enabled = opts.demo
	}
	if changed("demo-interval") {
		cfg.Demo.Interval = opts.demoInterval
	}
	if changed("recipe") {
		cfg.Demo.Recipe = opts.recipe
	}
	if changed("file") {
		cfg.Feed.File = opts.file
	}
	if changed("feed-mode") {
		cfg.Feed.Mode = opts.feedMode
	}
	if changed("stdin") {
		cfg.Feed.Stdin = opts.stdin
	}
	if changed("fps") {
		cfg.UI.FPS = opts.fps
	}
	if changed("no-mini-plot") {
		cfg.UI.MiniPlot = !opts.noMiniPlot
	}
	return cfg, cfg.Validate()
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.LogDir(), cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: logging disabled: %v\n", err)
		logger, closer = logging.Nop(), io.NopCloser(nil)
	}
	defer closer.Close()

	// Debug output would corrupt the alt screen.
	if debug.Enabled() {
		if f, err := os.OpenFile(filepath.Join(cfg.LogDir(), "jg-debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			debug.SetOutput(f)
			defer f.Close()
		}
	}

	recipe, err := cfg.Recipe()
	if err != nil {
		return err
	}

	var progOpts []tea.ProgramOption
	pcfg := ingest.PipelineConfig{
		Demo:         cfg.Demo.Enabled,
		DemoInterval: cfg.Demo.Interval,
		TailPath:     cfg.Feed.File,
		FeedMode:     cfg.FeedMode(),
		RecipeLen:    recipe.Len(),
		Logger:       logger,
	}
	if cfg.Feed.Stdin && !term.IsTerminal(int(os.Stdin.Fd())) {
		pcfg.Input = os.Stdin
		// Keys come from the terminal while stdin carries the feed.
		progOpts = append(progOpts, tea.WithInputTTY())
	}

	pipe := ingest.StartPipeline(cmd.Context(), pcfg)
	defer func() {
		pipe.Stop()
		if err := pipe.Wait(); err != nil {
			logger.Warn("feed stopped with error", "error", err.Error())
		}
	}()
	logger.Info("jg starting", "producers", pipe.Producers(), "fps", cfg.UI.FPS)

	mode := scale.Linear
	if cfg.UI.LogScale {
		mode = scale.Log10
	}
	session := chart.NewSession(pipe.Queue(),
		chart.WithLogger(logger),
		chart.WithRecipe(recipe),
		chart.WithMode(mode),
	)

	m := ui.NewModel(session, ui.Options{
		FrameInterval:  cfg.FrameInterval(),
		SnapshotDir:    cfg.SnapshotDir(),
		SnapshotFormat: cfg.Snapshot.Format,
		MiniPlot:       cfg.UI.MiniPlot,
		Logger:         logger,
	})
	return runTUIProgram(m, progOpts...)
}

func runTUIProgram(m ui.Model, extra ...tea.ProgramOption) error {
	opts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	}, extra...)
	p := tea.NewProgram(m, opts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set JG_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("JG_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

func startCPUProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

// quietLogger returns the logger for one-shot subcommands: stderr at warn
// unless a level was asked for.
func quietLogger(w io.Writer, level string) *slog.Logger {
	if level == "" {
		level = "warn"
	}
	return logging.NewWriter(w, level)
}
