package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wbrown/bottomup-datalog/datalog/crosscheck"
	"github.com/wbrown/bottomup-datalog/datalog/executor"
	"github.com/wbrown/bottomup-datalog/datalog/parser"
)

func (a *app) queryCommand() *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "query FILE... --query ATOM",
		Short: "Build the database and answer one query",
		Long: `Materializes the facts and rules of every FILE, then matches ATOM
against the result. ATOM may be written in either syntax.

Example:
  datalog query examples/family.dl --query 'ancestor(carol, Y)'
  datalog query examples/family.edn --query '[ancestor carol Y]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parser.ParseAtom(pattern)
			if err != nil {
				return fmt.Errorf("bad query: %w", err)
			}
			prog, err := a.load(args)
			if err != nil {
				return err
			}

			start := time.Now()
			e, db, err := a.build(cmd, prog)
			if err != nil {
				return err
			}
			bindings := e.Query(db, q)
			a.logger.Info("query answered",
				zap.Stringer("query", q),
				zap.Int("bindings", len(bindings)),
				zap.Duration("elapsed", time.Since(start)))

			fmt.Fprint(cmd.OutOrStdout(), executor.NewTableFormatter().FormatBindings(q, bindings))
			return nil
		},
	}
	cmd.Flags().StringVarP(&pattern, "query", "q", "", "query atom, e.g. ancestor(carol, Y)")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) factsCommand() *cobra.Command {
	var relation string
	var derivedOnly bool

	cmd := &cobra.Command{
		Use:   "facts FILE...",
		Short: "Print the materialized database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := a.load(args)
			if err != nil {
				return err
			}
			_, db, err := a.build(cmd, prog)
			if err != nil {
				return err
			}

			facts := db.Facts.Facts()
			if derivedOnly {
				facts = db.DerivedFacts()
			}
			if relation != "" {
				filtered := facts[:0]
				for _, f := range facts {
					if f.Relation() == relation {
						filtered = append(filtered, f)
					}
				}
				facts = filtered
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, executor.NewTableFormatter().FormatFacts(facts))
			fmt.Fprintf(out, "\n_fixpoint after %d passes_\n", db.Passes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&relation, "relation", "r", "", "only print facts of this relation")
	cmd.Flags().BoolVar(&derivedOnly, "derived", false, "only print facts produced by rules")
	return cmd
}

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE...",
		Short: "Answer every query embedded in the files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := a.load(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(prog.Queries) == 0 {
				fmt.Fprintln(out, "_No queries_")
				return nil
			}

			e := a.engine(cmd.ErrOrStderr())
			result, err := e.Run(commandContext(cmd), prog)
			if err != nil {
				a.logger.Error("run failed", zap.Error(err))
				return err
			}

			tf := executor.NewTableFormatter()
			for i, answer := range result.Answers {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "Query: %s\n\n", parser.FormatAtom(answer.Query))
				fmt.Fprint(out, tf.FormatBindings(answer.Query, answer.Bindings))
			}
			a.logger.Info("program run",
				zap.Int("passes", result.Database.Passes),
				zap.Int("facts", result.Database.Facts.Len()),
				zap.Int("queries", len(result.Answers)))
			return nil
		},
	}
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Compare the materialized database against Mangle",
		Long: `Builds the program with this engine and with Google Mangle and reports
facts only one of them derives. Only safe programs whose relations have a
single arity can be checked, so the engine must run with strict arity
matching and unsafe rules rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.engine(io.Discard).Options()
			if opts.ArityMode != executor.ArityStrict || opts.UnsafePolicy != executor.UnsafeReject {
				return fmt.Errorf("check needs --arity strict and --unsafe reject, got --arity %s and --unsafe %s",
					opts.ArityMode, opts.UnsafePolicy)
			}

			prog, err := a.load(args)
			if err != nil {
				return err
			}
			_, db, err := a.build(cmd, prog)
			if err != nil {
				return err
			}

			report, err := crosscheck.Compare(db, prog)
			if err != nil {
				return fmt.Errorf("cross-check: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			if !report.OK() {
				a.logger.Warn("engines disagree",
					zap.Int("missing", len(report.Missing)),
					zap.Int("extra", len(report.Extra)))
				return fmt.Errorf("databases differ: %d missing, %d extra", len(report.Missing), len(report.Extra))
			}
			return nil
		},
	}
}
