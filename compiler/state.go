package compiler

import (
	"fmt"
	"strings"
)

type stateID int

const stateIDNil = stateID(-1)

type transition struct {
	terminal int
	to       stateID
}

// state is a node of an automaton under construction. Targets are indices
// into the arena that owns the state, so cyclic graphs need no pointers.
type state struct {
	label  string
	trans  []transition
	eps    []stateID
	accept bool
}

// labeler hands out the labels A, B, ..., Z, AA, AB, ... in order. Every
// compilation owns its own labeler.
type labeler struct {
	next int
}

func (l *labeler) label() string {
	n := l.next
	l.next++
	var b []byte
	for {
		b = append(b, byte('A'+n%26))
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// arena owns every state of one automaton. States are only ever added and
// edges are only ever appended.
type arena struct {
	states []*state
	labels *labeler
}

func newArena() *arena {
	return &arena{
		labels: &labeler{},
	}
}

func (a *arena) newState() stateID {
	return a.newLabeledState(a.labels.label())
}

func (a *arena) newLabeledState(label string) stateID {
	id := stateID(len(a.states))
	a.states = append(a.states, &state{
		label: label,
	})
	return id
}

func (a *arena) get(id stateID) *state {
	return a.states[id]
}

func (a *arena) addTransition(from stateID, terminal int, to stateID) {
	s := a.states[from]
	s.trans = append(s.trans, transition{
		terminal: terminal,
		to:       to,
	})
}

func (a *arena) addEpsilon(from, to stateID) {
	s := a.states[from]
	s.eps = append(s.eps, to)
}

func (a *arena) setAccept(id stateID) {
	a.states[id].accept = true
}

func (a *arena) len() int {
	return len(a.states)
}

// describe renders a state the way the debug dumps print it, for instance
// `C: 0->D 2->F eps{E G} accept`.
func (a *arena) describe(id stateID) string {
	s := a.states[id]
	var b strings.Builder
	fmt.Fprintf(&b, "%v:", s.label)
	for _, t := range s.trans {
		fmt.Fprintf(&b, " %v->%v", t.terminal, a.states[t.to].label)
	}
	if len(s.eps) > 0 {
		fmt.Fprintf(&b, " eps{")
		for i, to := range s.eps {
			if i > 0 {
				fmt.Fprintf(&b, " ")
			}
			fmt.Fprintf(&b, "%v", a.states[to].label)
		}
		fmt.Fprintf(&b, "}")
	}
	if s.accept {
		fmt.Fprintf(&b, " accept")
	}
	return b.String()
}
