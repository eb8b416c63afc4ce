package interp

import (
	"fmt"
	"math"
	"strings"
)

// Value is the runtime tagged-variant every AST node evaluates to. Concrete
// types below implement it; operator behavior is dispatched by type switch
// in ops.go (binOp/unaryOp) rather than through per-type interface methods, so
// that "illegal operation" can be a single default arm shared by every
// combination.
type Value interface {
	Type() string
	String() string
	IsTruthy() bool
}

// Number is the sole numeric kind; IsFloat distinguishes int-valued from
// float-valued numbers so that integer arithmetic stays exact until a
// division (or an explicit float literal) widens it.
type Number struct {
	Int     int64
	Float   float64
	IsFloat bool
}

func Int(v int64) Number     { return Number{Int: v} }
func Float(v float64) Number { return Number{Float: v, IsFloat: true} }

func NumberFromLit(lit any) Number {
	switch v := lit.(type) {
	case int64:
		return Int(v)
	case float64:
		return Float(v)
	}
	return Int(0)
}

var (
	NullValue  = Int(0)
	FalseValue = Int(0)
	TrueValue  = Int(1)
	MathPi     = Float(math.Pi)
)

func (n Number) Type() string { return "Number" }

func (n Number) F() float64 {
	if n.IsFloat {
		return n.Float
	}
	return float64(n.Int)
}

func (n Number) String() string {
	if n.IsFloat {
		return formatFloat(n.Float)
	}
	return fmt.Sprintf("%d", n.Int)
}

func formatFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (n Number) IsTruthy() bool { return n.F() != 0 }

func boolNumber(b bool) Number {
	if b {
		return TrueValue
	}
	return FalseValue
}

// String_ is the Language's immutable String value (named with a trailing
// underscore to avoid colliding with Go's builtin string).
type String_ struct {
	Value string
}

func (s String_) Type() string   { return "String" }
func (s String_) String() string { return s.Value }
func (s String_) IsTruthy() bool { return len(s.Value) > 0 }

// List is an ordered, mutable, heterogeneous sequence. Operators that
// "return a new list" (Add, Sub via *) copy the backing slice; SetIndex
// mutates in place, matching the reference semantics where iteration over a
// mutated container observes the mutation.
type List struct {
	Elements []Value
}

func (l *List) Type() string { return "List" }

func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func (l *List) IsTruthy() bool { return len(l.Elements) > 0 }

func (l *List) Copy() *List {
	elems := make([]Value, len(l.Elements))
	copy(elems, l.Elements)
	return &List{Elements: elems}
}

// Dict is a string-keyed, mutable, insertion-ordered map.
type Dict struct {
	Keys   []string
	Values map[string]Value
}

func NewDict() *Dict {
	return &Dict{Values: make(map[string]Value)}
}

func (d *Dict) Type() string { return "Dict" }

func (d *Dict) Set(key string, v Value) {
	if _, exists := d.Values[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Values[key] = v
}

func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.Values[key]
	return v, ok
}

func (d *Dict) String() string {
	parts := make([]string, 0, len(d.Keys))
	for _, k := range d.Keys {
		parts = append(parts, fmt.Sprintf("%q: %s", k, d.Values[k].String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (d *Dict) IsTruthy() bool { return len(d.Keys) > 0 }

// Function is a user-defined closure: it holds a strong reference to the
// scope active at the point of its definition, not the scope of any caller.
type Function struct {
	Name       string
	Params     []Param
	Body       Node
	AutoReturn bool
	Captured   *Scope
	Span       Span
}

func (f *Function) Type() string { return "Function" }

func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("<function %s>", name)
}

func (f *Function) IsTruthy() bool { return true }

func (f *Function) displayName() string {
	if f.Name == "" {
		return "<anonymous>"
	}
	return f.Name
}

// BuiltIn is a host-registered named callable sharing Function's calling
// convention (positional args, defaults, dynamic clauses) but implemented
// in Go rather than parsed from source.
type BuiltIn struct {
	Name   string
	Params []Param
	Fn     func(i *Evaluator, scope *Scope, span Span, args []Value) Signal
}

func (b *BuiltIn) Type() string   { return "BuiltIn" }
func (b *BuiltIn) String() string { return fmt.Sprintf("<built-in function %s>", b.Name) }
func (b *BuiltIn) IsTruthy() bool { return true }

// HostCallable adapts an opaque Go function exposed across the Host Bridge
// (see host.go) so it can be called with the same convention as a Function.
type HostCallable struct {
	Name string
	Fn   func(args []any) (any, error)
}

func (h *HostCallable) Type() string   { return "HostCallable" }
func (h *HostCallable) String() string { return fmt.Sprintf("<host function %s>", h.Name) }
func (h *HostCallable) IsTruthy() bool { return true }

// Iterator lazily produces values; ForIn drives it one Next() at a time.
// An iterator over a List reads the element slice as it was when iteration
// began: an element replaced in place is observed, but elements appended or
// removed mid-iteration are not. An iterator over a Dict walks a copy of the
// key list taken when iteration began.
type Iterator struct {
	Next func() (Value, bool)
}

func (it *Iterator) Type() string   { return "Iterator" }
func (it *Iterator) String() string { return "<iterator>" }
func (it *Iterator) IsTruthy() bool { return true }

func sliceIterator(vs []Value) *Iterator {
	i := 0
	return &Iterator{Next: func() (Value, bool) {
		if i >= len(vs) {
			return nil, false
		}
		v := vs[i]
		i++
		return v, true
	}}
}

// StructInstance is a named bag of fields created from a Struct
// declaration, all initialized to null at creation.
type StructInstance struct {
	StructName string
	Fields     map[string]Value
}

func (s *StructInstance) Type() string { return "StructInstance" }

func (s *StructInstance) String() string {
	parts := make([]string, 0, len(s.Fields))
	for k, v := range s.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v.String()))
	}
	return fmt.Sprintf("%s{%s}", s.StructName, strings.Join(parts, ", "))
}

func (s *StructInstance) IsTruthy() bool { return true }

// ErrorValue wraps a Diagnostic so a catch clause can bind it to an
// ordinary scripting value — printed, it renders the same diagnostic text
// a top-level uncaught error would.
type ErrorValue struct {
	Diag *Diagnostic
}

func (e ErrorValue) Type() string   { return "Error" }
func (e ErrorValue) String() string { return e.Diag.AsString() }
func (e ErrorValue) IsTruthy() bool { return true }

// Module is a first-class value wrapping the top-level scope of an
// evaluated source file (or a shell namespace for intermediate dotted-path
// segments, or the exports map of a host-native module).
type Module struct {
	Name    string
	Symbols map[string]Value
}

func NewModule(name string) *Module {
	return &Module{Name: name, Symbols: make(map[string]Value)}
}

func (m *Module) Type() string   { return "Module" }
func (m *Module) String() string { return fmt.Sprintf("<module %s>", m.Name) }
func (m *Module) IsTruthy() bool { return true }

func (m *Module) Get(name string) (Value, bool) {
	v, ok := m.Symbols[name]
	return v, ok
}

func (m *Module) Set(name string, v Value) {
	m.Symbols[name] = v
}
