package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/robertkrimen/isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wbrown/bottomup-datalog/datalog"
	"github.com/wbrown/bottomup-datalog/datalog/executor"
	"github.com/wbrown/bottomup-datalog/datalog/parser"
	"github.com/wbrown/bottomup-datalog/datalog/query"
)

const replHelp = `Commands:
  .help         show this help
  .exit         leave the shell
  .facts [REL]  print the materialized database, optionally one relation
  .rules        print the loaded rules
  .load FILE    add the facts, rules and queries of FILE
  .reset        forget everything loaded so far

Anything else is parsed as program text in either syntax:
  parent(alice, bob).              [parent alice bob]
  anc(X, Y) :- parent(X, Y).       [[anc X Y] [parent X Y]]
  ?- anc(alice, Y).                [:query [anc alice Y]]
A bare atom such as anc(alice, Y) is answered as a query.`

func (a *app) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [FILE...]",
		Short: "Interactive shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &session{app: a, ctx: commandContext(cmd), out: cmd.OutOrStdout(), trace: cmd.ErrOrStderr()}
			for _, path := range args {
				if err := s.load(path); err != nil {
					return err
				}
			}
			return s.loop()
		},
	}
}

// session is the state of one interactive shell. The program only grows
// until .reset; every query rebuilds the database from scratch.
type session struct {
	app   *app
	ctx   context.Context
	out   io.Writer
	trace io.Writer
	prog  query.Program
}

func (s *session) loop() error {
	isInputTty := isatty.Check(os.Stdin.Fd())
	if isInputTty {
		fmt.Fprintln(s.out, "Datalog shell")
		fmt.Fprintln(s.out, ".help for help")
	}

	prompt := ""
	if isInputTty {
		prompt = "datalog> "
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       filepath.Join(os.TempDir(), ".datalog-history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye!",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer l.Close()

	for {
		line, readErr := l.Readline()
		if readErr == readline.ErrInterrupt {
			continue
		}
		if readErr != nil {
			return nil
		}
		if s.ctx.Err() != nil {
			return nil
		}

		quit, err := s.handle(line)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// handle runs one line of input and reports whether the shell should exit
func (s *session) handle(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, ";") {
		return false, nil
	}

	if strings.HasPrefix(line, ".") {
		fields := strings.Fields(line)
		switch fields[0] {
		case ".exit", ".quit":
			return true, nil
		case ".help":
			fmt.Fprintln(s.out, replHelp)
		case ".facts":
			relation := ""
			if len(fields) > 1 {
				relation = fields[1]
			}
			return false, s.printFacts(relation)
		case ".rules":
			if len(s.prog.Rules) == 0 {
				fmt.Fprintln(s.out, "_No rules_")
			}
			for _, r := range s.prog.Rules {
				fmt.Fprintln(s.out, parser.FormatRule(r))
			}
		case ".load":
			if len(fields) != 2 {
				return false, fmt.Errorf("usage: .load FILE")
			}
			return false, s.load(fields[1])
		case ".reset":
			s.prog = query.Program{}
			fmt.Fprintln(s.out, "Cleared.")
		default:
			return false, fmt.Errorf("unknown command %s, use .help", fields[0])
		}
		return false, nil
	}

	prog, err := parser.Parse(line, parser.DetectSyntax(line))
	if err != nil {
		// A lone atom is a query
		q, atomErr := parser.ParseAtom(line)
		if atomErr != nil {
			return false, err
		}
		return false, s.answer(q)
	}
	return false, s.add(prog)
}

func (s *session) load(path string) error {
	prog, err := parser.LoadFile(path)
	if err != nil {
		return err
	}
	s.app.logger.Debug("file loaded into shell", zap.String("file", path))
	return s.add(prog)
}

// add merges prog into the session and answers its queries. Clauses that
// would make every later build fail are refused and the session is left
// as it was.
func (s *session) add(prog *query.Program) error {
	queries := prog.Queries
	if err := s.admit(prog); err != nil {
		return err
	}
	s.prog.Merge(&query.Program{Facts: prog.Facts, Rules: prog.Rules})

	if n, m := len(prog.Facts), len(prog.Rules); n > 0 || m > 0 {
		fmt.Fprintf(s.out, "Added %s and %s.\n", plural(n, "fact"), plural(m, "rule"))
	}
	for _, q := range queries {
		if err := s.answer(q); err != nil {
			return err
		}
	}
	return nil
}

// admit checks that the session program extended with prog still builds
func (s *session) admit(prog *query.Program) error {
	if len(prog.Rules) == 0 && len(prog.Facts) == 0 {
		return nil
	}

	e := executor.NewEngine(s.app.engine(io.Discard).Options())
	if e.Options().UnsafePolicy == executor.UnsafeReject {
		for _, r := range prog.Rules {
			if unbound := r.UnboundHeadVariables(); len(unbound) > 0 {
				return fmt.Errorf("rule %s not added: head variables %s are not bound by the body",
					parser.FormatRule(r), strings.Join(unbound, ", "))
			}
		}
	}
	if len(prog.Rules) == 0 {
		return nil
	}

	trial := query.Program{}
	trial.Merge(&query.Program{Facts: s.prog.Facts, Rules: s.prog.Rules})
	trial.Merge(&query.Program{Facts: prog.Facts, Rules: prog.Rules})
	if _, err := e.Build(s.ctx, trial.Facts, trial.Rules); err != nil {
		return fmt.Errorf("rules not added: %w", err)
	}
	return nil
}

func (s *session) build() (*executor.Engine, *executor.Database, error) {
	e := s.app.engine(s.trace)
	db, err := e.Build(s.ctx, s.prog.Facts, s.prog.Rules)
	if err != nil {
		return nil, nil, err
	}
	return e, db, nil
}

func (s *session) answer(q datalog.Atom) error {
	e, db, err := s.build()
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, executor.NewTableFormatter().FormatBindings(q, e.Query(db, q)))
	return nil
}

func (s *session) printFacts(relation string) error {
	_, db, err := s.build()
	if err != nil {
		return err
	}
	facts := db.Facts.Facts()
	if relation != "" {
		facts = db.Facts.Relation(relation)
	}
	fmt.Fprint(s.out, executor.NewTableFormatter().FormatFacts(facts))
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
