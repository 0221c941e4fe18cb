// Command datalog builds Datalog programs bottom-up and answers queries
// against the materialized database.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wbrown/bottomup-datalog/datalog/annotations"
	"github.com/wbrown/bottomup-datalog/datalog/executor"
	"github.com/wbrown/bottomup-datalog/datalog/metrics"
	"github.com/wbrown/bottomup-datalog/datalog/parser"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

// app carries the state shared by every subcommand of one invocation
type app struct {
	// Global flags
	configPath string
	verbose    bool
	arity      string
	unsafe     string
	maxPasses  int
	workers    int
	metrics    bool
	color      string

	cfg      *Config
	logger   *zap.Logger
	recorder *metrics.Recorder
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand wires the command tree. Each call returns independent
// state so tests can run commands side by side.
func newRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "datalog",
		Short: "Naive bottom-up Datalog evaluator",
		Long: `datalog materializes every fact derivable from a program's facts and
rules, then answers queries by pattern matching against the result.

Programs are written either in bracket syntax (.edn):
  [parent alice bob]
  [[ancestor X Y] [parent X Y]]
  [:query [ancestor alice Y]]

or in conventional syntax (.dl):
  parent(alice, bob).
  ancestor(X, Y) :- parent(X, Y).
  ?- ancestor(alice, Y).

Capitalized names are variables; everything else is a constant.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer func() { _ = a.logger.Sync() }()
			if a.recorder != nil {
				return a.recorder.WriteText(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./"+defaultConfigFile+" if present)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging and an evaluation trace on stderr")
	flags.StringVar(&a.arity, "arity", "", "atom matching across arities: strict or prefix")
	flags.StringVar(&a.unsafe, "unsafe", "", "rules whose head variables are unbound: reject or allow")
	flags.IntVar(&a.maxPasses, "max-passes", 0, "fail when no fixpoint is reached after N passes (0 = unbounded)")
	flags.IntVar(&a.workers, "workers", 0, "evaluate rule body goals on N goroutines (0 or 1 = sequential)")
	flags.BoolVar(&a.metrics, "metrics", false, "print Prometheus metrics to stderr on exit")
	flags.StringVar(&a.color, "color", "", "trace colouring: auto, always or never")

	root.AddCommand(
		a.queryCommand(),
		a.factsCommand(),
		a.runCommand(),
		a.checkCommand(),
		a.replCommand(),
	)
	return root
}

// setup loads the config file, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path, required := a.configPath, true
	if path == "" {
		path, required = defaultConfigFile, false
	}
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("arity") {
		cfg.Engine.Arity = a.arity
	}
	if flags.Changed("unsafe") {
		cfg.Engine.Unsafe = a.unsafe
	}
	if flags.Changed("max-passes") {
		cfg.Engine.MaxPasses = a.maxPasses
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = a.workers
	}
	if flags.Changed("metrics") {
		cfg.Output.Metrics = a.metrics
	}
	if flags.Changed("color") {
		cfg.Output.Color = a.color
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
		cfg.Output.Trace = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cfg.LogLevel()
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	if cfg.Output.Metrics {
		a.recorder = metrics.NewRecorder()
	}

	a.logger.Debug("configuration loaded",
		zap.String("config", path),
		zap.String("arity", cfg.Engine.Arity),
		zap.String("unsafe", cfg.Engine.Unsafe),
		zap.Int("max_passes", cfg.Engine.MaxPasses),
		zap.Int("workers", cfg.Engine.Workers),
		zap.Bool("metrics", cfg.Output.Metrics))
	return nil
}

// engine builds an executor engine wired to the trace formatter and the
// metrics recorder as configured. Trace output goes to w.
func (a *app) engine(w io.Writer) *executor.Engine {
	cfg := a.cfg
	if cfg == nil {
		cfg = DefaultConfig()
	}
	opts, _ := cfg.EngineOptions()

	var trace annotations.Handler
	if cfg.Output.Trace {
		var formatter *annotations.OutputFormatter
		switch strings.ToLower(cfg.Output.Color) {
		case "always":
			formatter = annotations.NewOutputFormatterWithColor(w, true)
		case "never":
			formatter = annotations.NewOutputFormatterWithColor(w, false)
		default:
			formatter = annotations.NewOutputFormatter(w)
		}
		trace = formatter.Handle
	}

	var record annotations.Handler
	if a.recorder != nil {
		record = a.recorder.Handler()
	}

	return executor.NewEngine(opts).WithHandler(annotations.Tee(trace, record))
}

// load parses the given files into one program
func (a *app) load(paths []string) (*query.Program, error) {
	prog, err := parser.LoadFiles(paths...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("program loaded",
		zap.Strings("files", paths),
		zap.Int("facts", len(prog.Facts)),
		zap.Int("rules", len(prog.Rules)),
		zap.Int("queries", len(prog.Queries)))
	return prog, nil
}

// build materializes prog, logging the outcome
func (a *app) build(cmd *cobra.Command, prog *query.Program) (*executor.Engine, *executor.Database, error) {
	e := a.engine(cmd.ErrOrStderr())
	db, err := e.Build(commandContext(cmd), prog.Facts, prog.Rules)
	if err != nil {
		a.logger.Error("build failed", zap.Error(err))
		return nil, nil, err
	}
	a.logger.Info("database built",
		zap.Int("passes", db.Passes),
		zap.Int("facts", db.Facts.Len()),
		zap.Int("derived", db.Derived()),
		zap.Strings("relations", db.Facts.Relations()))
	return e, db, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
