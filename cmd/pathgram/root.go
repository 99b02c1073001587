package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "pathgram",
	Short: "Compile grammars over symbol codes into DFAs and match sequences",
	Long: `pathgram provides three features:
* Compiles a grammar description into a table-driven DFA.
* Matches sequences of symbols against the compiled grammar.
* Inspects the intermediate automata, primarily for debugging a grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

func addDebugFlag(fs *pflag.FlagSet) *bool {
	return fs.BoolP("debug", "d", false, "enable logging")
}

func addOutputFlag(fs *pflag.FlagSet) *string {
	return fs.StringP("output", "o", "", "output file path (default stdout)")
}

// openLog creates the log file of a subcommand and writes its start banner.
// The returned function writes the end banner and closes the file.
func openLog(cmdName string) (io.Writer, func(error), error) {
	fileName := fmt.Sprintf("pathgram-%v.log", cmdName)
	f, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("Cannot open the log file %s: %w", fileName, err)
	}
	fmt.Fprintf(f, `pathgram %v starts.
Date time: %v
---
`, cmdName, time.Now().Format(time.RFC3339))
	return f, func(retErr error) {
		fmt.Fprintf(f, "---\n")
		if retErr != nil {
			fmt.Fprintf(f, "pathgram %v failed: %v\n", cmdName, retErr)
		} else {
			fmt.Fprintf(f, "pathgram %v succeeded.\n", cmdName)
		}
		f.Close()
	}, nil
}

// openOutput returns def when path is empty and the created file
// otherwise.
func openOutput(path string, def io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return def, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("Cannot open the output file %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
