package grammar

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const identifierPattern = "^[A-Za-z_][0-9A-Za-z_]*$"

var identifierRE = regexp.MustCompile(identifierPattern)

func validateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier doesn't allow to be the empty string")
	}
	if !identifierRE.MatchString(id) {
		return fmt.Errorf("identifier must be %v; got: %v", identifierPattern, id)
	}
	return nil
}

// Grammar is a set of named productions, one of which is the start
// production.
type Grammar struct {
	Start       string
	Productions map[string]Expr
}

// New returns a grammar consisting of a single production.
func New(start string, e Expr) *Grammar {
	return &Grammar{
		Start: start,
		Productions: map[string]Expr{
			start: e,
		},
	}
}

// Define adds or replaces a production and returns g for chaining.
func (g *Grammar) Define(name string, e Expr) *Grammar {
	if g.Productions == nil {
		g.Productions = map[string]Expr{}
	}
	g.Productions[name] = e
	return g
}

// Names returns the production names in lexical order.
func (g *Grammar) Names() []string {
	names := make([]string, 0, len(g.Productions))
	for name := range g.Productions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxTerminal returns the largest terminal code used by any production, or
// -1 when there are no terminals.
func (g *Grammar) MaxTerminal() int {
	max := -1
	for _, e := range g.Productions {
		Walk(e, func(n Expr) {
			if t, ok := n.(*Terminal); ok && t.Code > max {
				max = t.Code
			}
		})
	}
	return max
}

func (g *Grammar) String() string {
	var b strings.Builder
	for _, name := range g.Names() {
		mark := " "
		if name == g.Start {
			mark = "*"
		}
		fmt.Fprintf(&b, "%v %v -> %v\n", mark, name, g.Productions[name])
	}
	return b.String()
}

// ValidationError collects every problem found in a grammar.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v", e.Errs[0])
	for _, err := range e.Errs[1:] {
		fmt.Fprintf(&b, "\n%v", err)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// Validate checks that the start production exists, that every reference
// resolves, that no production refers to itself directly or indirectly, and
// that terminals and repeat bounds are well-formed.
func (g *Grammar) Validate() error {
	var errs []error
	if _, ok := g.Productions[g.Start]; !ok {
		errs = append(errs, fmt.Errorf("start production `%v` is not defined", g.Start))
	}
	for _, name := range g.Names() {
		if err := validateIdentifier(name); err != nil {
			errs = append(errs, fmt.Errorf("production `%v`: %w", name, err))
		}
		for _, err := range g.validateExpr(g.Productions[name]) {
			errs = append(errs, fmt.Errorf("production `%v`: %w", name, err))
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		errs = append(errs, fmt.Errorf("productions refer to themselves: %v", strings.Join(cycle, " -> ")))
	}
	if len(errs) > 0 {
		return &ValidationError{
			Errs: errs,
		}
	}
	return nil
}

func (g *Grammar) validateExpr(e Expr) []error {
	if e == nil {
		return []error{fmt.Errorf("expression is missing")}
	}
	var errs []error
	Walk(e, func(n Expr) {
		switch n := n.(type) {
		case *Terminal:
			if n.Code < 0 {
				errs = append(errs, fmt.Errorf("terminal code must be non-negative; got: %v", n.Code))
			}
		case *Sequence:
			if n.Left == nil || n.Right == nil {
				errs = append(errs, fmt.Errorf("a sequence must have two operands"))
			}
		case *Alternation:
			if n.Left == nil || n.Right == nil {
				errs = append(errs, fmt.Errorf("an alternation must have two operands"))
			}
		case *Repeat:
			if n.Inner == nil {
				errs = append(errs, fmt.Errorf("a repeat must have an operand"))
			}
			if n.Min < 0 {
				errs = append(errs, fmt.Errorf("repeat minimum must be non-negative; got: %v", n.Min))
			}
			if n.Max != Unbounded && n.Max < n.Min {
				errs = append(errs, fmt.Errorf("repeat maximum must be unbounded or at least the minimum; got: {%v,%v}", n.Min, n.Max))
			}
		case *Reference:
			if _, ok := g.Productions[n.Name]; !ok {
				errs = append(errs, fmt.Errorf("reference to undefined production `%v`", n.Name))
			}
		}
	})
	return errs
}

// findCycle returns the names along a reference cycle, first name repeated
// at the end, or nil when the reference graph is acyclic.
func (g *Grammar) findCycle() []string {
	const (
		unvisited = iota
		visiting
		done
	)
	marks := map[string]int{}
	var path []string
	var visit func(name string) []string
	visit = func(name string) []string {
		switch marks[name] {
		case visiting:
			for i, n := range path {
				if n == name {
					return append(append([]string{}, path[i:]...), name)
				}
			}
		case done:
			return nil
		}
		e, ok := g.Productions[name]
		if !ok {
			return nil
		}
		marks[name] = visiting
		path = append(path, name)
		for _, ref := range References(e) {
			if cycle := visit(ref); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		marks[name] = done
		return nil
	}
	for _, name := range g.Names() {
		if cycle := visit(name); cycle != nil {
			return cycle
		}
	}
	return nil
}
