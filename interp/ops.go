package interp

import (
	"fmt"
	"math"
	"strings"
)

func illegalOperation(span Span, left, right Value) *Diagnostic {
	rightDesc := "nothing"
	if right != nil {
		rightDesc = fmt.Sprintf("%s (%s)", right.String(), right.Type())
	}
	return runtimeErr(span, fmt.Sprintf("Illegal operation between %s (%s) and %s", left.String(), left.Type(), rightDesc), nil)
}

// binOp dispatches a binary operator by a type switch on (op, left, right)
// kinds, per the "operator dispatch by match; illegal operation is the
// default arm" design note.
func binOp(op TokenKind, opLit string, left, right Value, span Span, rightSpan Span) (Value, *Diagnostic) {
	if op == KEYWORD {
		switch opLit {
		case "and":
			return boolNumber(left.IsTruthy() && right.IsTruthy()), nil
		case "or":
			return boolNumber(left.IsTruthy() || right.IsTruthy()), nil
		}
	}

	switch l := left.(type) {
	case Number:
		if r, ok := right.(Number); ok {
			return numberBinOp(op, l, r, rightSpan)
		}
		if op == PLUS {
			if r, ok := right.(String_); ok {
				return String_{Value: l.String() + r.Value}, nil
			}
		}
	case String_:
		switch op {
		case PLUS:
			return String_{Value: l.Value + right.String()}, nil
		case MUL:
			if r, ok := right.(Number); ok {
				return String_{Value: strings.Repeat(l.Value, int(r.F()))}, nil
			}
		case EE:
			if r, ok := right.(String_); ok {
				return boolNumber(l.Value == r.Value), nil
			}
		case NE:
			if r, ok := right.(String_); ok {
				return boolNumber(l.Value != r.Value), nil
			}
		}
	case *List:
		switch op {
		case PLUS:
			n := l.Copy()
			n.Elements = append(n.Elements, right)
			return n, nil
		case MINUS:
			if r, ok := right.(Number); ok {
				idx := int(r.F())
				if idx < 0 {
					idx += len(l.Elements)
				}
				if idx < 0 || idx >= len(l.Elements) {
					return nil, runtimeErr(rightSpan, "Element at this index could not be removed from list because index is out of bounds", nil)
				}
				n := l.Copy()
				n.Elements = append(n.Elements[:idx], n.Elements[idx+1:]...)
				return n, nil
			}
		case MUL:
			if r, ok := right.(*List); ok {
				n := l.Copy()
				n.Elements = append(n.Elements, r.Elements...)
				return n, nil
			}
		case DIV:
			if r, ok := right.(Number); ok {
				idx := int(r.F())
				if idx < 0 {
					idx += len(l.Elements)
				}
				if idx < 0 || idx >= len(l.Elements) {
					return nil, runtimeErr(rightSpan, "Element at this index could not be retrieved from list because index is out of bounds", nil)
				}
				return l.Elements[idx], nil
			}
		}
	}

	return nil, illegalOperation(span, left, right)
}

func numberBinOp(op TokenKind, l, r Number, rightSpan Span) (Value, *Diagnostic) {
	switch op {
	case PLUS:
		return numAdd(l, r), nil
	case MINUS:
		return numArith(l, r, func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b }), nil
	case MUL:
		return numArith(l, r, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b }), nil
	case DIV:
		if r.F() == 0 {
			return nil, runtimeErr(rightSpan, "Division by zero", nil)
		}
		return Float(l.F() / r.F()), nil
	case MOD:
		if r.F() == 0 {
			return nil, runtimeErr(rightSpan, "Modulo by zero", nil)
		}
		if !l.IsFloat && !r.IsFloat {
			return Int(intFloorMod(l.Int, r.Int)), nil
		}
		return Float(floatMod(l.F(), r.F())), nil
	case POW:
		return Float(math.Pow(l.F(), r.F())), nil
	case EE:
		return boolNumber(l.F() == r.F()), nil
	case NE:
		return boolNumber(l.F() != r.F()), nil
	case LT:
		return boolNumber(l.F() < r.F()), nil
	case GT:
		return boolNumber(l.F() > r.F()), nil
	case LTE:
		return boolNumber(l.F() <= r.F()), nil
	case GTE:
		return boolNumber(l.F() >= r.F()), nil
	}
	return nil, runtimeErr(rightSpan, "Illegal operation", nil)
}

func numAdd(l, r Number) Number {
	if !l.IsFloat && !r.IsFloat {
		return Int(l.Int + r.Int)
	}
	return Float(l.F() + r.F())
}

func numArith(l, r Number, ffn func(a, b float64) float64, ifn func(a, b int64) int64) Number {
	if !l.IsFloat && !r.IsFloat {
		return Int(ifn(l.Int, r.Int))
	}
	return Float(ffn(l.F(), r.F()))
}

// floatMod is Python-style floor-mod: the result's sign always follows the
// divisor, unlike Go's truncated '%'.
func floatMod(a, b float64) float64 {
	return a - b*math.Floor(a/b)
}

// intFloorMod is the integer analogue of floatMod, since Go's integer '%'
// also truncates toward zero rather than flooring.
func intFloorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// unaryOp applies a prefix operator ('-', '+', "not").
func unaryOp(op TokenKind, opLit string, v Value, span Span) (Value, *Diagnostic) {
	if op == KEYWORD && opLit == "not" {
		return boolNumber(!v.IsTruthy()), nil
	}
	n, ok := v.(Number)
	if !ok {
		return nil, illegalOperation(span, v, nil)
	}
	switch op {
	case MINUS:
		if n.IsFloat {
			return Float(-n.Float), nil
		}
		return Int(-n.Int), nil
	case PLUS:
		return n, nil
	}
	return nil, illegalOperation(span, v, nil)
}

// getIndex implements read access for String (char-by-char), List, Dict.
func getIndex(coll Value, index Value, span Span) (Value, *Diagnostic) {
	switch c := coll.(type) {
	case String_:
		n, ok := index.(Number)
		if !ok {
			return nil, illegalOperation(span, coll, index)
		}
		idx := int(n.F())
		runes := []rune(c.Value)
		if idx < 0 {
			idx += len(runes)
		}
		if idx < 0 || idx >= len(runes) {
			return nil, runtimeErr(span, fmt.Sprintf("Cannot retrieve character %s from string %q because it is out of bounds", index.String(), c.Value), nil)
		}
		return String_{Value: string(runes[idx])}, nil
	case *List:
		n, ok := index.(Number)
		if !ok {
			return nil, illegalOperation(span, coll, index)
		}
		idx := int(n.F())
		if idx < 0 {
			idx += len(c.Elements)
		}
		if idx < 0 || idx >= len(c.Elements) {
			return nil, runtimeErr(span, fmt.Sprintf("Cannot retrieve element %s from list because it is out of bounds", index.String()), nil)
		}
		return c.Elements[idx], nil
	case *Dict:
		key, ok := index.(String_)
		if !ok {
			return nil, illegalOperation(span, coll, index)
		}
		v, ok := c.Get(key.Value)
		if !ok {
			return nil, runtimeErr(span, fmt.Sprintf("Key %q not found in dict", key.Value), nil)
		}
		return v, nil
	}
	return nil, illegalOperation(span, coll, index)
}

// setIndex implements write access for List and Dict (String is read-only).
func setIndex(coll Value, index Value, value Value, span Span) *Diagnostic {
	switch c := coll.(type) {
	case *List:
		n, ok := index.(Number)
		if !ok {
			return illegalOperation(span, coll, index)
		}
		idx := int(n.F())
		if idx < 0 {
			idx += len(c.Elements)
		}
		if idx < 0 || idx >= len(c.Elements) {
			return runtimeErr(span, fmt.Sprintf("Cannot set element %s because it is out of bounds", index.String()), nil)
		}
		c.Elements[idx] = value
		return nil
	case *Dict:
		key, ok := index.(String_)
		if !ok {
			return illegalOperation(span, coll, index)
		}
		c.Set(key.Value, value)
		return nil
	}
	return illegalOperation(span, coll, index)
}

// iterate returns the lazy Iterator a ForIn loop drives, for every
// container kind that defines one.
func iterate(v Value, span Span) (*Iterator, *Diagnostic) {
	switch c := v.(type) {
	case String_:
		runes := []rune(c.Value)
		vals := make([]Value, len(runes))
		for i, r := range runes {
			vals[i] = String_{Value: string(r)}
		}
		return sliceIterator(vals), nil
	case *List:
		return sliceIterator(c.Elements), nil
	case *Iterator:
		return c, nil
	case *Dict:
		vals := make([]Value, len(c.Keys))
		for i, k := range c.Keys {
			vals[i] = String_{Value: k}
		}
		return sliceIterator(vals), nil
	}
	return nil, runtimeErr(span, fmt.Sprintf("%s (%s) is not iterable", v.String(), v.Type()), nil)
}
