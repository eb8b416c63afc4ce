package interp

import "fmt"

// hostToValue and valueToHost are the two total conversion functions
// crossing the Host Bridge boundary: every Go value has some Language
// representation (falling back to its stringification), and every Value
// converts back to a plain Go value a host function can consume.
func hostToValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return NullValue
	case bool:
		return boolNumber(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case float64:
		return Float(x)
	case string:
		return String_{Value: x}
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = hostToValue(e)
		}
		return &List{Elements: elems}
	case map[string]any:
		d := NewDict()
		for k, e := range x {
			d.Set(k, hostToValue(e))
		}
		return d
	case Value:
		return x
	default:
		return String_{Value: fmt.Sprintf("%v", x)}
	}
}

func valueToHost(v Value) any {
	switch x := v.(type) {
	case Number:
		if x.IsFloat {
			return x.Float
		}
		return x.Int
	case String_:
		return x.Value
	case *List:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			out[i] = valueToHost(e)
		}
		return out
	case *Dict:
		out := make(map[string]any, len(x.Keys))
		for _, k := range x.Keys {
			out[k] = valueToHost(x.Values[k])
		}
		return out
	default:
		return v.String()
	}
}
