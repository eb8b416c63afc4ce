package interp

import "testing"

func TestFStringLiteralBraces(t *testing.T) {
	v := evalOK(t, `f"{{literal}}"`)
	if v.(String_).Value != "{literal}" {
		t.Errorf("got %q", v.(String_).Value)
	}
}

func TestFStringMultipleInterpolations(t *testing.T) {
	v := evalOK(t, `
a = 1
b = 2
f"{a} + {b} = {a + b}"
`)
	if v.(String_).Value != "1 + 2 = 3" {
		t.Errorf("got %q", v.(String_).Value)
	}
}

func TestFStringUnclosedBraceErrors(t *testing.T) {
	i, _ := newTestInterp(t)
	_, err := i.Eval(nil, "<test>", `f"{unclosed"`)
	i.Flush()
	if err == nil {
		t.Fatal("expected a diagnostic for an unclosed '{' in an f-string")
	}
}

func TestFStringEmptyExpressionErrors(t *testing.T) {
	i, _ := newTestInterp(t)
	_, err := i.Eval(nil, "<test>", `f"{}"`)
	i.Flush()
	if err == nil {
		t.Fatal("expected a diagnostic for an empty '{}' in an f-string")
	}
}

func TestFStringNoInterpolationPassesThrough(t *testing.T) {
	v := evalOK(t, `f"plain text"`)
	if v.(String_).Value != "plain text" {
		t.Errorf("got %q", v.(String_).Value)
	}
}
