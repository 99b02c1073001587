package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pathgram/pathgram/grammar"
)

var (
	ErrUndefinedProduction = errors.New("undefined production")
	ErrReferenceCycle      = errors.New("production refers to itself")
)

// NFA is a nondeterministic automaton with epsilon transitions. Its
// structure is fixed once BuildNFA returns.
type NFA struct {
	states *arena
	Start  stateID
	NT     string
}

// fragment is the automaton built for one expression: a single entry state
// and a single exit state with no outgoing edges of its own.
type fragment struct {
	start stateID
	end   stateID
}

type nfaBuilder struct {
	g     *grammar.Grammar
	a     *arena
	tmpl  *arena
	frags map[string]fragment
	stack []string
}

// BuildNFA compiles the start production of g into an NFA using Thompson's
// construction. Each referenced production is compiled once and a copy of
// its fragment is spliced in at every reference.
func BuildNFA(g *grammar.Grammar) (*NFA, error) {
	b := &nfaBuilder{
		g:     g,
		a:     newArena(),
		tmpl:  newArena(),
		frags: map[string]fragment{},
	}
	root, ok := g.Productions[g.Start]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUndefinedProduction, g.Start)
	}
	b.stack = append(b.stack, g.Start)
	f, err := b.build(b.a, root)
	if err != nil {
		return nil, err
	}
	b.a.setAccept(f.end)
	return &NFA{
		states: b.a,
		Start:  f.start,
		NT:     g.Start,
	}, nil
}

func (b *nfaBuilder) build(a *arena, e grammar.Expr) (fragment, error) {
	switch n := e.(type) {
	case *grammar.Terminal:
		if n.Code < 0 {
			return fragment{}, fmt.Errorf("terminal code must be non-negative; got: %v", n.Code)
		}
		s := a.newState()
		t := a.newState()
		a.addTransition(s, n.Code, t)
		return fragment{start: s, end: t}, nil
	case *grammar.Sequence:
		l, err := b.build(a, n.Left)
		if err != nil {
			return fragment{}, err
		}
		r, err := b.build(a, n.Right)
		if err != nil {
			return fragment{}, err
		}
		a.addEpsilon(l.end, r.start)
		return fragment{start: l.start, end: r.end}, nil
	case *grammar.Alternation:
		s := a.newState()
		l, err := b.build(a, n.Left)
		if err != nil {
			return fragment{}, err
		}
		r, err := b.build(a, n.Right)
		if err != nil {
			return fragment{}, err
		}
		t := a.newState()
		a.addEpsilon(s, l.start)
		a.addEpsilon(s, r.start)
		a.addEpsilon(l.end, t)
		a.addEpsilon(r.end, t)
		return fragment{start: s, end: t}, nil
	case *grammar.Repeat:
		return b.buildRepeat(a, n)
	case *grammar.Reference:
		f, err := b.production(n.Name)
		if err != nil {
			return fragment{}, err
		}
		return copyFragment(b.tmpl, f, a), nil
	case nil:
		return fragment{}, fmt.Errorf("expression is missing")
	}
	return fragment{}, fmt.Errorf("unknown expression type: %T", e)
}

// buildRepeat expands e{min,max} into min mandatory copies of the operand
// followed by either a loop (unbounded) or max-min optional copies.
func (b *nfaBuilder) buildRepeat(a *arena, n *grammar.Repeat) (fragment, error) {
	if n.Min < 0 || (n.Max != grammar.Unbounded && n.Max < n.Min) {
		return fragment{}, fmt.Errorf("invalid repeat bounds: {%v,%v}", n.Min, n.Max)
	}
	s := a.newState()
	cur := s
	for i := 0; i < n.Min; i++ {
		f, err := b.build(a, n.Inner)
		if err != nil {
			return fragment{}, err
		}
		a.addEpsilon(cur, f.start)
		cur = f.end
	}
	if n.Max == grammar.Unbounded {
		f, err := b.build(a, n.Inner)
		if err != nil {
			return fragment{}, err
		}
		t := a.newState()
		a.addEpsilon(cur, f.start)
		a.addEpsilon(cur, t)
		a.addEpsilon(f.end, f.start)
		a.addEpsilon(f.end, t)
		return fragment{start: s, end: t}, nil
	}
	t := a.newState()
	for i := n.Min; i < n.Max; i++ {
		f, err := b.build(a, n.Inner)
		if err != nil {
			return fragment{}, err
		}
		a.addEpsilon(cur, f.start)
		a.addEpsilon(cur, t)
		cur = f.end
	}
	a.addEpsilon(cur, t)
	return fragment{start: s, end: t}, nil
}

// production returns the memoised fragment of a production, compiling it
// into the template arena on first use.
func (b *nfaBuilder) production(name string) (fragment, error) {
	for _, n := range b.stack {
		if n == name {
			return fragment{}, fmt.Errorf("%w: %v -> %v", ErrReferenceCycle, strings.Join(b.stack, " -> "), name)
		}
	}
	if f, ok := b.frags[name]; ok {
		return f, nil
	}
	e, ok := b.g.Productions[name]
	if !ok {
		return fragment{}, fmt.Errorf("%w: %v", ErrUndefinedProduction, name)
	}
	b.stack = append(b.stack, name)
	f, err := b.build(b.tmpl, e)
	b.stack = b.stack[:len(b.stack)-1]
	if err != nil {
		return fragment{}, fmt.Errorf("production %v: %w", name, err)
	}
	b.frags[name] = f
	return f, nil
}

// copyFragment duplicates every state reachable from f.start in src into
// dst with fresh labels, preserving the order in which the states were
// discovered.
func copyFragment(src *arena, f fragment, dst *arena) fragment {
	mapping := map[stateID]stateID{}
	queue := []stateID{f.start}
	mapping[f.start] = dst.newState()
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visit := func(to stateID) stateID {
			if m, ok := mapping[to]; ok {
				return m
			}
			m := dst.newState()
			mapping[to] = m
			queue = append(queue, to)
			return m
		}
		s := src.get(id)
		for _, t := range s.trans {
			dst.addTransition(mapping[id], t.terminal, visit(t.to))
		}
		for _, to := range s.eps {
			dst.addEpsilon(mapping[id], visit(to))
		}
	}
	end, ok := mapping[f.end]
	if !ok {
		end = stateIDNil
	}
	return fragment{start: mapping[f.start], end: end}
}

func (n *NFA) NumStates() int {
	return n.states.len()
}

// MaxTerminal returns the largest terminal on any transition, or -1 when
// the automaton has none.
func (n *NFA) MaxTerminal() int {
	max := -1
	for _, s := range n.states.states {
		for _, t := range s.trans {
			if t.terminal > max {
				max = t.terminal
			}
		}
	}
	return max
}

// Accepts simulates the NFA directly on seq. It is far slower than a
// compiled DFA and exists to cross-check one.
func (n *NFA) Accepts(seq []int) bool {
	cur := n.closure(newStateSet(n.Start))
	for _, sym := range seq {
		cur = n.closure(n.move(cur, sym))
		if len(cur) == 0 {
			return false
		}
	}
	for _, id := range cur {
		if n.states.get(id).accept {
			return true
		}
	}
	return false
}

// move returns the states reachable from s on one transition labelled sym.
func (n *NFA) move(s stateSet, sym int) stateSet {
	var to []stateID
	for _, id := range s {
		for _, t := range n.states.get(id).trans {
			if t.terminal == sym {
				to = append(to, t.to)
			}
		}
	}
	return newStateSet(to...)
}

func (n *NFA) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "NFA %v (start: %v)\n", n.NT, n.states.get(n.Start).label)
	for i := 0; i < n.states.len(); i++ {
		fmt.Fprintf(&b, "  %v\n", n.states.describe(stateID(i)))
	}
	return b.String()
}
