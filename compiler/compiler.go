package compiler

import (
	"fmt"
	"io"

	"github.com/pathgram/pathgram/driver"
	"github.com/pathgram/pathgram/grammar"
	"github.com/pathgram/pathgram/log"
)

type Option func(c *compilerConfig) error

func EnableLogging(w io.Writer) Option {
	return func(c *compilerConfig) error {
		logger, err := log.NewLogger(w)
		if err != nil {
			return err
		}
		c.logger = logger
		return nil
	}
}

// Validate makes Compile run grammar.Grammar.Validate before building
// anything, so that every problem is reported at once.
func Validate() Option {
	return func(c *compilerConfig) error {
		c.validate = true
		return nil
	}
}

type compilerConfig struct {
	logger   log.Logger
	validate bool
}

// Compile turns the start production of g into a DFA. All intermediate
// state, including the label generator, belongs to this call, so grammars
// may be compiled concurrently.
func Compile(g *grammar.Grammar, opts ...Option) (*driver.DFA, error) {
	config := &compilerConfig{
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		err := opt(config)
		if err != nil {
			return nil, err
		}
	}

	if config.validate {
		err := g.Validate()
		if err != nil {
			return nil, fmt.Errorf("invalid grammar:\n%w", err)
		}
	}

	config.logger.Log("Grammar:\n%v", g)

	var nfa *NFA
	{
		var err error
		nfa, err = BuildNFA(g)
		if err != nil {
			return nil, fmt.Errorf("failed to build an NFA for %v: %w", g.Start, err)
		}

		config.logger.Log("%v", nfa)
	}

	var tranTab *driver.DFA
	{
		d := genDFA(nfa)
		config.logger.Log("DFA:")
		sub := log.Indent(config.logger, 1)
		for i, s := range d.states {
			sub.Log("%v %v = {%v}", i, s.label, nfa.deriveLabelList(s.set))
		}

		var err error
		tranTab, err = genTransitionTable(d)
		if err != nil {
			return nil, err
		}

		config.logger.Log(`  States: %v states
  Terminals: %v
  Initial State: %v`, tranTab.NumStates(), tranTab.NumTerminals(), tranTab.Start())
		config.logger.Log("  Accepting States: %v", tranTab.AcceptStates())
		config.logger.Log("  Table:\n%v", tranTab.DumpTable())
	}

	return tranTab, nil
}

// CompileExpr compiles a single anonymous expression.
func CompileExpr(e grammar.Expr, opts ...Option) (*driver.DFA, error) {
	return Compile(grammar.New("main", e), opts...)
}
