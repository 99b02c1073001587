package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tripGrammar = "testdata/trip.toml"

// run executes the root command. Flags keep their values between runs, so
// callers spell out every flag they depend on.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCompileCommand(t *testing.T) {
	out, err := run(t, "", "compile", tripGrammar, "--dump=true", "--debug=false", "--output=")
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Len(t, strings.Fields(row), 3, "row: %q", row)
	}
	// The start state can read any of the three symbols, and new states are
	// numbered in ascending order of the symbol that discovered them.
	assert.Equal(t, "01 02 03 ", rows[0])

	out, err = run(t, "", "compile", tripGrammar, "--dump=false", "--debug=false", "--output=")
	require.NoError(t, err)
	var tab struct {
		NT           string  `json:"nt"`
		InitialState int     `json:"initial_state"`
		ColCount     int     `json:"col_count"`
		RowCount     int     `json:"row_count"`
		Transition   [][]int `json:"transition"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &tab))
	assert.Equal(t, "trip", tab.NT)
	assert.Equal(t, 0, tab.InitialState)
	assert.Equal(t, 3, tab.ColCount)
	assert.Len(t, tab.Transition, tab.RowCount)
	assert.Equal(t, len(rows), tab.RowCount)

	_, err = run(t, "", "compile", "testdata/missing.toml", "--dump=false", "--debug=false", "--output=")
	assert.Error(t, err)
}

func TestMatchCommand(t *testing.T) {
	tests := []struct {
		caption  string
		stdin    string
		args     []string
		accepted []bool
		err      bool
	}{
		{
			caption:  "sequences as arguments",
			args:     []string{"walk,transit,walk", "transit walk", "walk", "bike,walk,transit", "1,0,2"},
			accepted: []bool{true, true, false, true, true},
		},
		{
			caption:  "sequences from stdin",
			stdin:    "walk transit\n\n# comment\nwalk walk\nbike,walk\n",
			accepted: []bool{true, false, true},
		},
		{
			caption:  "out of vocabulary code",
			args:     []string{"transit,7"},
			accepted: []bool{false},
		},
		{
			caption: "unknown symbol",
			args:    []string{"ferry"},
			err:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			args := append([]string{"match", tripGrammar, "--verify=true", "--trace=false", "--break-on-reject=false", "--debug=false", "--output="}, tt.args...)
			out, err := run(t, tt.stdin, args...)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			require.Len(t, lines, len(tt.accepted))
			for i, line := range lines {
				var res matchResult
				require.NoError(t, json.Unmarshal([]byte(line), &res))
				assert.Equal(t, tt.accepted[i], res.Accepted, "line: %v", line)
			}
		})
	}
}

func TestMatchCommand_Trace(t *testing.T) {
	out, err := run(t, "", "match", tripGrammar, "--verify=false", "--trace=true", "--break-on-reject=false", "--debug=false", "--output=", "transit,bike")
	require.NoError(t, err)
	var res matchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Accepted)
	assert.Equal(t, []int{1, 2}, res.Codes)
	assert.Equal(t, 1, res.LongestPrefix)
	require.Len(t, res.States, 3)
	assert.Equal(t, 0, res.States[0])
}

func TestMatchCommand_BreakOnReject(t *testing.T) {
	out, err := run(t, "", "match", tripGrammar, "--verify=false", "--trace=false", "--break-on-reject=true", "--debug=false", "--output=", "transit", "walk", "bike")
	assert.Error(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 2)
}

func TestInspectCommand(t *testing.T) {
	out, err := run(t, "", "inspect", tripGrammar, "--nfa=true", "--output=")
	require.NoError(t, err)
	assert.Contains(t, out, "  0: walk\n")
	assert.Contains(t, out, "  2: bike\n")
	assert.Contains(t, out, "* trip -> ")
	assert.Contains(t, out, "NFA trip (start: A)")
	assert.Contains(t, out, "DFA trip: ")
}

func TestSplitSequence(t *testing.T) {
	assert.Equal(t, []string{"walk", "transit", "bike"}, splitSequence(" walk, transit,,bike\t"))
	assert.Empty(t, splitSequence(""))
}
