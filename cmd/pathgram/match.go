package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pathgram/pathgram/compiler"
	"github.com/spf13/cobra"
)

var matchFlags = struct {
	debug         *bool
	output        *string
	trace         *bool
	verify        *bool
	breakOnReject *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "match grammar [sequence...]",
		Short: "Match sequences of symbols against a grammar",
		Long: `match compiles a grammar description and reports, for every sequence, whether the
start production accepts it. A sequence is a list of symbol names or codes separated by
commas or spaces. Without sequence arguments, match reads one sequence per line from stdin.`,
		Example: `  pathgram match trip.toml walk,transit,walk
  cat sequences.txt | pathgram match trip.toml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runMatch,
	}
	matchFlags.debug = addDebugFlag(cmd.Flags())
	matchFlags.output = addOutputFlag(cmd.Flags())
	matchFlags.trace = cmd.Flags().BoolP("trace", "t", false, "include the visited states in the output")
	matchFlags.verify = cmd.Flags().Bool("verify", false, "cross-check every result by simulating the NFA")
	matchFlags.breakOnReject = cmd.Flags().BoolP("break-on-reject", "b", false, "stop with exit status 1 as soon as a sequence is rejected")
	rootCmd.AddCommand(cmd)
}

type matchResult struct {
	Sequence      []string `json:"sequence"`
	Codes         []int    `json:"codes"`
	Accepted      bool     `json:"accepted"`
	LongestPrefix int      `json:"longest_prefix"`
	States        []int    `json:"states,omitempty"`
}

func runMatch(cmd *cobra.Command, args []string) (retErr error) {
	var opts []compiler.Option
	if *matchFlags.debug {
		w, done, err := openLog("match")
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

	var nfa *compiler.NFA
	if *matchFlags.verify {
		nfa, err = compiler.BuildNFA(cg.g)
		if err != nil {
			return err
		}
	}

	w, done, err := openOutput(*matchFlags.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer done()

	match := func(text string) error {
		syms := splitSequence(text)
		codes, err := cg.desc.Encode(syms)
		if err != nil {
			return fmt.Errorf("sequence `%v`: %w", text, err)
		}
		res := &matchResult{
			Sequence:      syms,
			Codes:         codes,
			LongestPrefix: cg.dfa.LongestPrefix(codes),
		}
		if *matchFlags.trace {
			res.States, res.Accepted = cg.dfa.Trace(codes)
		} else {
			res.Accepted = cg.dfa.Matches(codes)
		}
		if nfa != nil && nfa.Accepts(codes) != res.Accepted {
			return fmt.Errorf("the DFA and the NFA disagree on sequence `%v`; DFA: %v", text, res.Accepted)
		}
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal a result; result: %v, error: %v", res, err)
		}
		fmt.Fprintf(w, "%v\n", string(data))
		if !res.Accepted && *matchFlags.breakOnReject {
			return fmt.Errorf("detected a rejected sequence: %v", string(data))
		}
		return nil
	}

	if len(args) > 1 {
		for _, text := range args[1:] {
			err := match(text)
			if err != nil {
				return err
			}
		}
		return nil
	}
	return eachLine(cmd.InOrStdin(), match)
}

func splitSequence(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func eachLine(r io.Reader, fn func(line string) error) error {
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		err := fn(line)
		if err != nil {
			return err
		}
	}
	return s.Err()
}
