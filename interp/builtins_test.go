package interp

import "testing"

func TestBuiltinAppendAndLen(t *testing.T) {
	v := evalOK(t, `
xs = [1, 2]
append(xs, 3)
len(xs)
`)
	if v.(Number).Int != 3 {
		t.Errorf("got %+v", v)
	}
}

func TestBuiltinPopRemovesAndReturnsElement(t *testing.T) {
	v := evalOK(t, `
xs = [10, 20, 30]
popped = pop(xs, 1)
[popped, len(xs)]
`)
	l := v.(*List)
	if l.Elements[0].(Number).Int != 20 || l.Elements[1].(Number).Int != 2 {
		t.Errorf("got %+v", l.Elements)
	}
}

func TestBuiltinExtendAppendsAllElements(t *testing.T) {
	v := evalOK(t, `
a = [1, 2]
extend(a, [3, 4])
a
`)
	l := v.(*List)
	if len(l.Elements) != 4 {
		t.Errorf("got %+v", l.Elements)
	}
}

func TestBuiltinRangeHalfOpenInterval(t *testing.T) {
	v := evalOK(t, "range(0, 5, 2)")
	l := v.(*List)
	if len(l.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d: %+v", len(l.Elements), l.Elements)
	}
	if l.Elements[0].(Number).F() != 0 || l.Elements[2].(Number).F() != 4 {
		t.Errorf("got %+v", l.Elements)
	}
}

func TestBuiltinRangeSingleArgDefaultsStartToZero(t *testing.T) {
	v := evalOK(t, "range(3)")
	l := v.(*List)
	if len(l.Elements) != 3 {
		t.Errorf("got %+v", l.Elements)
	}
}

func TestBuiltinMapAppliesFunctionToEachElement(t *testing.T) {
	v := evalOK(t, `
fun double(x) -> x * 2
join(map(double, [1, 2, 3]), ",")
`)
	if v.(String_).Value != "2,4,6" {
		t.Errorf("got %q", v.(String_).Value)
	}
}

func TestBuiltinFilterKeepsTruthyResults(t *testing.T) {
	v := evalOK(t, `
fun isEven(x) -> x % 2 == 0
len(filter(isEven, [1, 2, 3, 4, 5, 6]))
`)
	if v.(Number).Int != 3 {
		t.Errorf("got %+v", v)
	}
}

func TestBuiltinReduceAccumulates(t *testing.T) {
	v := evalOK(t, `
fun add(acc, x) -> acc + x
reduce(add, [1, 2, 3, 4], 0)
`)
	if v.(Number).Int != 10 {
		t.Errorf("got %+v", v)
	}
}

func TestBuiltinJoinAndSplitRoundTrip(t *testing.T) {
	v := evalOK(t, `join(split("a,b,c", ","), "-")`)
	if v.(String_).Value != "a-b-c" {
		t.Errorf("got %q", v.(String_).Value)
	}
}

func TestBuiltinTrimStripsBothEnds(t *testing.T) {
	v := evalOK(t, `trim("  hi  ")`)
	if v.(String_).Value != "hi" {
		t.Errorf("got %q", v.(String_).Value)
	}
}

func TestBuiltinStringPredicates(t *testing.T) {
	v := evalOK(t, `[startswith("hello", "he"), endswith("hello", "lo"), contains("hello", "ell")]`)
	l := v.(*List)
	for i, el := range l.Elements {
		if !el.(Number).IsTruthy() {
			t.Errorf("expected predicate %d to be true", i)
		}
	}
}

func TestBuiltinIsTypeChecks(t *testing.T) {
	v := evalOK(t, `[is_num(1), is_str("x"), is_list([1]), is_fun(print)]`)
	l := v.(*List)
	for i, el := range l.Elements {
		if !el.(Number).IsTruthy() {
			t.Errorf("expected type predicate %d to be true", i)
		}
	}
}

func TestBuiltinLenRejectsUnsupportedType(t *testing.T) {
	i, _ := newTestInterp(t)
	_, err := i.Eval(nil, "<test>", "len(1)")
	i.Flush()
	if err == nil {
		t.Fatal("expected a diagnostic for len() on a number")
	}
}
