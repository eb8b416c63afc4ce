package interp

import "testing"

func TestScopeGetWalksChain(t *testing.T) {
	global := NewScope("global", nil)
	global.Set("x", Int(1), false)
	child := NewScope("child", global)
	if v, ok := child.Get("x"); !ok || v.(Number).Int != 1 {
		t.Errorf("expected to find x=1 via parent chain, got %v, %v", v, ok)
	}
	if _, ok := child.Get("missing"); ok {
		t.Error("expected missing name to not be found")
	}
}

func TestScopeSetWritesCurrentFrameOnly(t *testing.T) {
	global := NewScope("global", nil)
	global.Set("x", Int(1), false)
	child := NewScope("child", global)
	child.Set("x", Int(2), false)

	if v, _ := child.Get("x"); v.(Number).Int != 2 {
		t.Errorf("expected child's own binding to shadow parent, got %v", v)
	}
	if v, _ := global.Get("x"); v.(Number).Int != 1 {
		t.Errorf("expected parent's binding to be untouched, got %v", v)
	}
}

func TestScopeConstRejectsReassignment(t *testing.T) {
	s := NewScope("s", nil)
	s.Set("x", Int(1), true)
	if ok := s.Set("x", Int(2), false); ok {
		t.Error("expected Set on a const binding to fail")
	}
	if v, _ := s.Get("x"); v.(Number).Int != 1 {
		t.Errorf("expected const value to remain 1, got %v", v)
	}
}

func TestScopeConstVisibleThroughChildFrame(t *testing.T) {
	global := NewScope("global", nil)
	global.Set("x", Int(1), true)
	child := NewScope("child", global)
	if !child.IsConst("x") {
		t.Error("expected IsConst to walk the parent chain")
	}
	if ok := child.Set("x", Int(2), false); ok {
		t.Error("expected a child frame to be unable to reassign a const bound in a parent frame")
	}
}

func TestScopeStructDeclarationLookup(t *testing.T) {
	global := NewScope("global", nil)
	global.DeclareStruct("Point", []string{"x", "y"})
	child := NewScope("child", global)
	fields, ok := child.LookupStruct("Point")
	if !ok {
		t.Fatal("expected to find Point struct via parent chain")
	}
	if len(fields) != 2 || fields[0] != "x" || fields[1] != "y" {
		t.Errorf("got %v", fields)
	}
	if _, ok := child.LookupStruct("Nope"); ok {
		t.Error("expected undeclared struct name to not be found")
	}
}

func TestScopeSymbolsIsShallowCopy(t *testing.T) {
	s := NewScope("s", nil)
	s.Set("a", Int(1), false)
	snap := s.Symbols()
	s.Set("b", Int(2), false)
	if _, ok := snap["b"]; ok {
		t.Error("expected snapshot to not observe bindings added after it was taken")
	}
	if len(snap) != 1 {
		t.Errorf("expected snapshot to have 1 entry, got %d", len(snap))
	}
}
