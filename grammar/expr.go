package grammar

import "fmt"

// Unbounded is the Max of a Repeat that has no upper limit.
const Unbounded = -1

// Expr is a grammar expression. The set of implementations is closed:
// *Terminal, *Sequence, *Alternation, *Repeat and *Reference.
type Expr interface {
	fmt.Stringer
	expr()
}

var (
	_ Expr = &Terminal{}
	_ Expr = &Sequence{}
	_ Expr = &Alternation{}
	_ Expr = &Repeat{}
	_ Expr = &Reference{}
)

// Terminal matches exactly one symbol.
type Terminal struct {
	Code int
}

// Sequence matches Left followed by Right.
type Sequence struct {
	Left  Expr
	Right Expr
}

// Alternation matches either Left or Right.
type Alternation struct {
	Left  Expr
	Right Expr
}

// Repeat matches Inner at least Min and at most Max times. Max is Unbounded
// when there is no upper limit.
type Repeat struct {
	Inner Expr
	Min   int
	Max   int
}

// Reference matches whatever the production called Name matches.
type Reference struct {
	Name string
}

func (*Terminal) expr()    {}
func (*Sequence) expr()    {}
func (*Alternation) expr() {}
func (*Repeat) expr()      {}
func (*Reference) expr()   {}

func (e *Terminal) String() string {
	return fmt.Sprintf("%v", e.Code)
}

func (e *Sequence) String() string {
	return fmt.Sprintf("(%v %v)", e.Left, e.Right)
}

func (e *Alternation) String() string {
	return fmt.Sprintf("(%v|%v)", e.Left, e.Right)
}

func (e *Repeat) String() string {
	switch {
	case e.Min == 0 && e.Max == 1:
		return fmt.Sprintf("%v?", e.Inner)
	case e.Min == 0 && e.Max == Unbounded:
		return fmt.Sprintf("%v*", e.Inner)
	case e.Min == 1 && e.Max == Unbounded:
		return fmt.Sprintf("%v+", e.Inner)
	case e.Max == Unbounded:
		return fmt.Sprintf("%v{%v,}", e.Inner, e.Min)
	case e.Min == e.Max:
		return fmt.Sprintf("%v{%v}", e.Inner, e.Min)
	}
	return fmt.Sprintf("%v{%v,%v}", e.Inner, e.Min, e.Max)
}

func (e *Reference) String() string {
	return fmt.Sprintf("<%v>", e.Name)
}

// T returns a terminal expression for a symbol code.
func T(code int) *Terminal {
	return &Terminal{
		Code: code,
	}
}

// Seq chains its operands left to right. A single operand is returned as is.
func Seq(first Expr, rest ...Expr) Expr {
	e := first
	for _, r := range rest {
		e = &Sequence{
			Left:  e,
			Right: r,
		}
	}
	return e
}

// Alt joins its operands as alternatives. A single operand is returned as is.
func Alt(first Expr, rest ...Expr) Expr {
	e := first
	for _, r := range rest {
		e = &Alternation{
			Left:  e,
			Right: r,
		}
	}
	return e
}

func Opt(e Expr) *Repeat {
	return Rep(e, 0, 1)
}

func Star(e Expr) *Repeat {
	return Rep(e, 0, Unbounded)
}

func Plus(e Expr) *Repeat {
	return Rep(e, 1, Unbounded)
}

func Rep(e Expr, min, max int) *Repeat {
	return &Repeat{
		Inner: e,
		Min:   min,
		Max:   max,
	}
}

func Ref(name string) *Reference {
	return &Reference{
		Name: name,
	}
}

// Walk calls fn for e and every expression nested in it, parents first.
// References are not followed.
func Walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch n := e.(type) {
	case *Sequence:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Alternation:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Repeat:
		Walk(n.Inner, fn)
	}
}

// References returns the production names e refers to directly, in order of
// first appearance.
func References(e Expr) []string {
	var names []string
	seen := map[string]struct{}{}
	Walk(e, func(n Expr) {
		ref, ok := n.(*Reference)
		if !ok {
			return
		}
		if _, ok := seen[ref.Name]; ok {
			return
		}
		seen[ref.Name] = struct{}{}
		names = append(names, ref.Name)
	})
	return names
}

