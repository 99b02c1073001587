package main

import (
	"fmt"

	"github.com/pathgram/pathgram/compiler"
	"github.com/spf13/cobra"
)

var inspectFlags = struct {
	output *string
	nfa    *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "inspect grammar",
		Short:   "Show the grammar, the NFA and the DFA built from a grammar description",
		Example: `  pathgram inspect trip.toml --nfa`,
		Args:    cobra.ExactArgs(1),
		RunE:    runInspect,
	}
	inspectFlags.output = addOutputFlag(cmd.Flags())
	inspectFlags.nfa = cmd.Flags().Bool("nfa", false, "also print every NFA state")
	rootCmd.AddCommand(cmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cg, err := compileDescription(args[0])
	if err != nil {
		return err
	}

	w, done, err := openOutput(*inspectFlags.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintf(w, "Symbols:\n")
	for code := 0; code < cg.dfa.NumTerminals(); code++ {
		fmt.Fprintf(w, "  %v: %v\n", code, cg.desc.SymbolName(code))
	}
	fmt.Fprintf(w, "Productions:\n%v", cg.g)

	if *inspectFlags.nfa {
		nfa, err := compiler.BuildNFA(cg.g)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%v", nfa)
	}

	fmt.Fprintf(w, "DFA %v: %v states, accepting %v\n", cg.dfa.NT(), cg.dfa.NumStates(), cg.dfa.AcceptStates())
	fmt.Fprintf(w, "%v\n", cg.dfa.RenderTable())
	return nil
}
