package main

import (
	"encoding/json"
	"fmt"

	"github.com/pathgram/pathgram/compiler"
	"github.com/pathgram/pathgram/driver"
	"github.com/pathgram/pathgram/grammar"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	debug  *bool
	dump   *bool
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "compile grammar",
		Short: "Compile a grammar description into a DFA",
		Long: `compile takes a grammar description (TOML, or JSON when the file name ends in .json)
and generates a DFA accepting the sequences described by its start production.`,
		Example: `  Write the transition table as JSON:
    pathgram compile trip.toml -o trip.json
  Print the plain transition table:
    pathgram compile trip.toml --dump`,
		Args: cobra.ExactArgs(1),
		RunE: runCompile,
	}
	compileFlags.debug = addDebugFlag(cmd.Flags())
	compileFlags.dump = cmd.Flags().Bool("dump", false, "print the plain transition table instead of JSON")
	compileFlags.output = addOutputFlag(cmd.Flags())
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var opts []compiler.Option
	if *compileFlags.debug {
		w, done, err := openLog("compile")
		if err != nil {
			return err
		}
		defer func() {
			done(retErr)
		}()
		opts = append(opts, compiler.EnableLogging(w))
	}

	cg, err := compileDescription(args[0], opts...)
	if err != nil {
		return err
	}

	w, done, err := openOutput(*compileFlags.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer done()

	if *compileFlags.dump {
		fmt.Fprint(w, cg.dfa.DumpTable())
		return nil
	}
	out, err := json.Marshal(cg.dfa)
	if err != nil {
		return fmt.Errorf("Cannot write a compiled grammar: %w", err)
	}
	fmt.Fprintf(w, "%v\n", string(out))
	return nil
}

type compiledGrammar struct {
	desc *grammar.Description
	g    *grammar.Grammar
	dfa  *driver.DFA
}

func compileDescription(path string, opts ...compiler.Option) (*compiledGrammar, error) {
	desc, err := grammar.LoadDescription(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot read a grammar description: %w", err)
	}
	g, err := desc.Grammar()
	if err != nil {
		return nil, err
	}
	dfa, err := compiler.Compile(g, opts...)
	if err != nil {
		return nil, err
	}
	return &compiledGrammar{
		desc: desc,
		g:    g,
		dfa:  dfa,
	}, nil
}
