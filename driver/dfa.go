package driver

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	// Reject marks a table cell with no valid move. It lies outside every
	// valid state ID.
	Reject = math.MinInt32

	// Accept is reserved for a single accept state reached through a special
	// terminal. The compiler never writes it.
	Accept = math.MaxInt32
)

// DFA is a compiled, table-driven deterministic automaton. The start state
// is always 0. A DFA is never modified after NewDFA returns, so it can be
// shared by any number of goroutines.
type DFA struct {
	nt        string
	rowCount  int
	colCount  int
	tran      []int
	accepting []bool
	acc       []int
	labels    []string
}

// NewDFA builds a DFA from a rectangular transition table. Every cell must
// be Reject or a row index. accepting lists the accept states and labels,
// when not nil, gives one display label per row.
func NewDFA(nt string, table [][]int, accepting []int, labels []string) (*DFA, error) {
	rowCount := len(table)
	if rowCount == 0 {
		return nil, fmt.Errorf("a transition table must have at least one row")
	}
	colCount := len(table[0])
	tran := make([]int, rowCount*colCount)
	for s, row := range table {
		if len(row) != colCount {
			return nil, fmt.Errorf("row %v has %v columns; want: %v", s, len(row), colCount)
		}
		for v, to := range row {
			if to != Reject && (to < 0 || to >= rowCount) {
				return nil, fmt.Errorf("invalid transition; state: %v, symbol: %v, target: %v", s, v, to)
			}
			tran[s*colCount+v] = to
		}
	}

	acceptingTab := make([]bool, rowCount)
	acc := make([]int, 0, len(accepting))
	for _, s := range accepting {
		if s < 0 || s >= rowCount {
			return nil, fmt.Errorf("invalid accept state: %v", s)
		}
		if acceptingTab[s] {
			continue
		}
		acceptingTab[s] = true
		acc = append(acc, s)
	}

	if labels == nil {
		labels = make([]string, rowCount)
		for i := range labels {
			labels[i] = fmt.Sprintf("%v", i)
		}
	}
	if len(labels) != rowCount {
		return nil, fmt.Errorf("%v labels given for %v states", len(labels), rowCount)
	}

	return &DFA{
		nt:        nt,
		rowCount:  rowCount,
		colCount:  colCount,
		tran:      tran,
		accepting: acceptingTab,
		acc:       acc,
		labels:    append([]string{}, labels...),
	}, nil
}

// NT returns the name of the production the DFA was compiled from.
func (d *DFA) NT() string {
	return d.nt
}

func (d *DFA) NumStates() int {
	return d.rowCount
}

// NumTerminals returns the width of the table, the largest terminal seen at
// compile time plus one.
func (d *DFA) NumTerminals() int {
	return d.colCount
}

// AcceptStates returns the IDs of the accept states in the order they were
// given to NewDFA.
func (d *DFA) AcceptStates() []int {
	return append([]int{}, d.acc...)
}

func (d *DFA) Labels() []string {
	return append([]string{}, d.labels...)
}

func (d *DFA) Start() int {
	return 0
}

// Step returns the state reached from state on sym. A symbol the table has
// no column for is rejected like any missing move.
func (d *DFA) Step(state, sym int) int {
	if state < 0 || state >= d.rowCount || sym < 0 || sym >= d.colCount {
		return Reject
	}
	return d.tran[state*d.colCount+sym]
}

func (d *DFA) IsAccept(state int) bool {
	if state < 0 || state >= d.rowCount {
		return false
	}
	return d.accepting[state]
}

// Matches reports whether the whole of seq belongs to the language. It stops
// at the first symbol without a move.
func (d *DFA) Matches(seq []int) bool {
	state := 0
	for _, sym := range seq {
		if sym < 0 || sym >= d.colCount {
			return false
		}
		state = d.tran[state*d.colCount+sym]
		if state == Reject {
			return false
		}
	}
	return d.accepting[state]
}

// LongestPrefix returns the length of the longest prefix of seq the DFA
// accepts, or -1 when it accepts none, not even the empty prefix.
func (d *DFA) LongestPrefix(seq []int) int {
	longest := -1
	state := 0
	if d.accepting[state] {
		longest = 0
	}
	for i, sym := range seq {
		state = d.Step(state, sym)
		if state == Reject {
			break
		}
		if d.accepting[state] {
			longest = i + 1
		}
	}
	return longest
}

// Parse is Matches for symbols given as arguments.
func (d *DFA) Parse(syms ...int) bool {
	return d.Matches(syms)
}

// Trace returns the states visited while reading seq, starting with the
// start state. When a symbol is rejected the trace ends with Reject and ok
// is false.
func (d *DFA) Trace(seq []int) (states []int, ok bool) {
	state := d.Start()
	states = append(states, state)
	for _, sym := range seq {
		state = d.Step(state, sym)
		states = append(states, state)
		if state == Reject {
			return states, false
		}
	}
	return states, d.accepting[state]
}

// DumpTable renders the table with one row per state and one column per
// terminal. Rejected moves show as `--`.
func (d *DFA) DumpTable() string {
	var b strings.Builder
	for s := 0; s < d.rowCount; s++ {
		for v := 0; v < d.colCount; v++ {
			to := d.tran[s*d.colCount+v]
			if to == Reject {
				fmt.Fprintf(&b, "-- ")
			} else {
				fmt.Fprintf(&b, "%02d ", to)
			}
		}
		fmt.Fprintf(&b, "\n")
	}
	return b.String()
}

type transitionTable struct {
	NT              string   `json:"nt"`
	InitialState    int      `json:"initial_state"`
	AcceptingStates []int    `json:"accepting_states"`
	RowCount        int      `json:"row_count"`
	ColCount        int      `json:"col_count"`
	Transition      [][]int  `json:"transition"`
	Labels          []string `json:"labels"`
}

func (d *DFA) MarshalJSON() ([]byte, error) {
	tran := make([][]int, d.rowCount)
	for s := range tran {
		tran[s] = append([]int{}, d.tran[s*d.colCount:(s+1)*d.colCount]...)
	}
	return json.Marshal(&transitionTable{
		NT:              d.nt,
		InitialState:    d.Start(),
		AcceptingStates: d.AcceptStates(),
		RowCount:        d.rowCount,
		ColCount:        d.colCount,
		Transition:      tran,
		Labels:          d.labels,
	})
}
