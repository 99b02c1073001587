package compiler

import (
	"fmt"
	"sort"

	"github.com/pathgram/pathgram/driver"
)

const dfaStartLabel = "START"

type dfaState struct {
	set    stateSet
	label  string
	accept bool
	trans  []transition
}

// dfa is the intermediate result of the subset construction. States are
// numbered in the order they were discovered, so the start state is 0.
type dfa struct {
	nt          string
	states      []*dfaState
	index       map[string]int
	maxTerminal int
}

func (d *dfa) add(set stateSet, label string) int {
	id := len(d.states)
	d.states = append(d.states, &dfaState{
		set:   set,
		label: label,
	})
	d.index[set.key()] = id
	return id
}

// genDFA converts nfa into an equivalent DFA with the subset construction.
// Each DFA state stands for the epsilon-closed set of NFA states the NFA
// could be in, and equal sets always map to the same DFA state.
func genDFA(nfa *NFA) *dfa {
	d := &dfa{
		nt:    nfa.NT,
		index: map[string]int{},
	}
	d.maxTerminal = nfa.MaxTerminal()
	if d.maxTerminal < 0 {
		d.maxTerminal = 0
	}

	d.add(nfa.closure(newStateSet(nfa.Start)), dfaStartLabel)
	usedLabels := map[string]struct{}{
		dfaStartLabel: {},
	}
	unmarked := []int{0}
	for len(unmarked) > 0 {
		from := d.states[unmarked[0]]
		unmarked = unmarked[1:]

		moves := map[int][]stateID{}
		for _, id := range from.set {
			s := nfa.states.get(id)
			if s.accept {
				from.accept = true
			}
			for _, t := range s.trans {
				moves[t.terminal] = append(moves[t.terminal], t.to)
			}
		}

		terminals := make([]int, 0, len(moves))
		for a := range moves {
			terminals = append(terminals, a)
		}
		sort.Ints(terminals)

		for _, a := range terminals {
			u := nfa.closure(newStateSet(moves[a]...))
			to, ok := d.index[u.key()]
			if !ok {
				label := nfa.deriveLabel(u)
				if _, dup := usedLabels[label]; dup {
					label = fmt.Sprintf("%v_%v", label, len(d.states))
				}
				usedLabels[label] = struct{}{}
				to = d.add(u, label)
				unmarked = append(unmarked, to)
			}
			from.trans = append(from.trans, transition{
				terminal: a,
				to:       stateID(to),
			})
		}
	}
	return d
}

// genTransitionTable lays the DFA out as a dense table in which every cell
// not written by a transition holds driver.Reject.
func genTransitionTable(d *dfa) (*driver.DFA, error) {
	rowCount := len(d.states)
	colCount := d.maxTerminal + 1
	table := make([][]int, rowCount)
	for s := range table {
		row := make([]int, colCount)
		for v := range row {
			row[v] = driver.Reject
		}
		table[s] = row
	}

	var acc []int
	labels := make([]string, rowCount)
	for s, ds := range d.states {
		for _, t := range ds.trans {
			table[s][t.terminal] = int(t.to)
		}
		if ds.accept {
			acc = append(acc, s)
		}
		labels[s] = ds.label
	}

	return driver.NewDFA(d.nt, table, acc, labels)
}

// Determinize converts nfa into a table-driven DFA accepting the same
// sequences.
func Determinize(nfa *NFA) (*driver.DFA, error) {
	return genTransitionTable(genDFA(nfa))
}
