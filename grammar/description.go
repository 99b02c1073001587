package grammar

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// RepeatDescription is the bounded repetition form of an expression
// description. A nil Max means unbounded.
type RepeatDescription struct {
	Expr *ExprDescription `json:"expr" toml:"expr"`
	Min  int              `json:"min" toml:"min"`
	Max  *int             `json:"max,omitempty" toml:"max,omitempty"`
}

// ExprDescription is one node of an expression in a description file.
// Exactly one field must be set.
type ExprDescription struct {
	Sym    string             `json:"sym,omitempty" toml:"sym,omitempty"`
	Ref    string             `json:"ref,omitempty" toml:"ref,omitempty"`
	Seq    []*ExprDescription `json:"seq,omitempty" toml:"seq,omitempty"`
	Alt    []*ExprDescription `json:"alt,omitempty" toml:"alt,omitempty"`
	Opt    *ExprDescription   `json:"opt,omitempty" toml:"opt,omitempty"`
	Star   *ExprDescription   `json:"star,omitempty" toml:"star,omitempty"`
	Plus   *ExprDescription   `json:"plus,omitempty" toml:"plus,omitempty"`
	Repeat *RepeatDescription `json:"repeat,omitempty" toml:"repeat,omitempty"`
}

func (d *ExprDescription) kinds() []string {
	var ks []string
	if d.Sym != "" {
		ks = append(ks, "sym")
	}
	if d.Ref != "" {
		ks = append(ks, "ref")
	}
	if len(d.Seq) > 0 {
		ks = append(ks, "seq")
	}
	if len(d.Alt) > 0 {
		ks = append(ks, "alt")
	}
	if d.Opt != nil {
		ks = append(ks, "opt")
	}
	if d.Star != nil {
		ks = append(ks, "star")
	}
	if d.Plus != nil {
		ks = append(ks, "plus")
	}
	if d.Repeat != nil {
		ks = append(ks, "repeat")
	}
	return ks
}

// Description is the hand-off format in which a grammar author supplies a
// grammar: symbol names with their codes and the productions over them.
type Description struct {
	Name        string                      `json:"name" toml:"name"`
	Start       string                      `json:"start" toml:"start"`
	Symbols     map[string]int              `json:"symbols" toml:"symbols"`
	Productions map[string]*ExprDescription `json:"productions" toml:"productions"`
}

// Validate reports every problem in the description, one per line.
func (d *Description) Validate() error {
	var errs []error
	if d.Name != "" {
		if err := validateIdentifier(d.Name); err != nil {
			errs = append(errs, fmt.Errorf("name: %w", err))
		}
	}
	if len(d.Productions) == 0 {
		errs = append(errs, fmt.Errorf("the description must have at least one production"))
	}
	if d.Start == "" {
		errs = append(errs, fmt.Errorf("start production is not specified"))
	}
	for _, name := range sortedKeys(d.Symbols) {
		if err := validateIdentifier(name); err != nil {
			errs = append(errs, fmt.Errorf("symbol `%v`: %w", name, err))
		}
		if d.Symbols[name] < 0 {
			errs = append(errs, fmt.Errorf("symbol `%v`: code must be non-negative; got: %v", name, d.Symbols[name]))
		}
	}
	{
		codes := map[int]string{}
		for _, name := range sortedKeys(d.Symbols) {
			code := d.Symbols[name]
			if prev, ok := codes[code]; ok {
				errs = append(errs, fmt.Errorf("symbols `%v` and `%v` share code %v", prev, name, code))
				continue
			}
			codes[code] = name
		}
	}
	for _, name := range sortedKeys(d.Productions) {
		for _, err := range d.validateExpr(d.Productions[name]) {
			errs = append(errs, fmt.Errorf("production `%v`: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return &ValidationError{
			Errs: errs,
		}
	}
	return nil
}

func (d *Description) validateExpr(e *ExprDescription) []error {
	if e == nil {
		return []error{fmt.Errorf("expression is missing")}
	}
	ks := e.kinds()
	if len(ks) != 1 {
		if len(ks) == 0 {
			return []error{fmt.Errorf("expression must have one of sym, ref, seq, alt, opt, star, plus or repeat")}
		}
		return []error{fmt.Errorf("expression must have exactly one kind; got: %v", strings.Join(ks, ", "))}
	}
	var errs []error
	switch {
	case e.Sym != "":
		if _, ok := d.Symbols[e.Sym]; !ok {
			errs = append(errs, fmt.Errorf("undefined symbol `%v`", e.Sym))
		}
	case e.Ref != "":
		if _, ok := d.Productions[e.Ref]; !ok {
			errs = append(errs, fmt.Errorf("reference to undefined production `%v`", e.Ref))
		}
	case len(e.Seq) > 0:
		for _, c := range e.Seq {
			errs = append(errs, d.validateExpr(c)...)
		}
	case len(e.Alt) > 0:
		for _, c := range e.Alt {
			errs = append(errs, d.validateExpr(c)...)
		}
	case e.Opt != nil:
		errs = append(errs, d.validateExpr(e.Opt)...)
	case e.Star != nil:
		errs = append(errs, d.validateExpr(e.Star)...)
	case e.Plus != nil:
		errs = append(errs, d.validateExpr(e.Plus)...)
	case e.Repeat != nil:
		if e.Repeat.Min < 0 {
			errs = append(errs, fmt.Errorf("repeat minimum must be non-negative; got: %v", e.Repeat.Min))
		}
		if e.Repeat.Max != nil && *e.Repeat.Max < e.Repeat.Min {
			errs = append(errs, fmt.Errorf("repeat maximum must be at least the minimum; got: {%v,%v}", e.Repeat.Min, *e.Repeat.Max))
		}
		errs = append(errs, d.validateExpr(e.Repeat.Expr)...)
	}
	return errs
}

// Grammar converts the description into a grammar and validates the result.
func (d *Description) Grammar() (*Grammar, error) {
	err := d.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid grammar description:\n%w", err)
	}
	g := &Grammar{
		Start:       d.Start,
		Productions: map[string]Expr{},
	}
	for name, e := range d.Productions {
		g.Productions[name] = d.convert(e)
	}
	err = g.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid grammar:\n%w", err)
	}
	return g, nil
}

func (d *Description) convert(e *ExprDescription) Expr {
	switch {
	case e.Sym != "":
		return T(d.Symbols[e.Sym])
	case e.Ref != "":
		return Ref(e.Ref)
	case len(e.Seq) > 0:
		return Seq(d.convert(e.Seq[0]), d.convertAll(e.Seq[1:])...)
	case len(e.Alt) > 0:
		return Alt(d.convert(e.Alt[0]), d.convertAll(e.Alt[1:])...)
	case e.Opt != nil:
		return Opt(d.convert(e.Opt))
	case e.Star != nil:
		return Star(d.convert(e.Star))
	case e.Plus != nil:
		return Plus(d.convert(e.Plus))
	}
	max := Unbounded
	if e.Repeat.Max != nil {
		max = *e.Repeat.Max
	}
	return Rep(d.convert(e.Repeat.Expr), e.Repeat.Min, max)
}

func (d *Description) convertAll(es []*ExprDescription) []Expr {
	out := make([]Expr, 0, len(es))
	for _, e := range es {
		out = append(out, d.convert(e))
	}
	return out
}

// Encode turns a sequence of symbol names or decimal codes into codes.
func (d *Description) Encode(syms []string) ([]int, error) {
	codes := make([]int, 0, len(syms))
	for _, s := range syms {
		if code, ok := d.Symbols[s]; ok {
			codes = append(codes, code)
			continue
		}
		code, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("unknown symbol `%v`", s)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// SymbolName returns the name bound to code, or the decimal code itself.
func (d *Description) SymbolName(code int) string {
	for name, c := range d.Symbols {
		if c == code {
			return name
		}
	}
	return strconv.Itoa(code)
}

// ReadDescription reads a TOML description from r.
func ReadDescription(r io.Reader) (*Description, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseDescription(data, false)
}

// LoadDescription reads a description file. Files ending in .json are read
// as JSON and anything else as TOML.
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the grammar description file %s: %w", path, err)
	}
	d, err := parseDescription(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func parseDescription(data []byte, isJSON bool) (*Description, error) {
	d := &Description{}
	if isJSON {
		if err := json.Unmarshal(data, d); err != nil {
			return nil, err
		}
		return d, nil
	}
	if err := toml.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
