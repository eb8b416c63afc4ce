package interp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// writeTxtarFixture materializes a txtar archive's files under a fresh temp
// directory and returns that directory's path.
func writeTxtarFixture(t *testing.T, archive string) string {
	t.Helper()
	dir := t.TempDir()
	a := txtar.Parse([]byte(archive))
	for _, f := range a.Files {
		path := filepath.Join(dir, f.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, f.Data, 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestModuleLoaderDottedImport(t *testing.T) {
	dir := writeTxtarFixture(t, `
-- math/util.cvd --
fun square(x) -> x * x
`)
	i := New(Options{SearchRoots: []string{dir}, WorkDir: t.TempDir()})
	v, err := i.Eval(context.Background(), "<test>", `
import math.util
math.util.square(4)
`)
	i.Flush()
	if err != nil {
		t.Fatalf("unexpected diagnostic: %s", err.Details)
	}
	if v.(Number).Int != 16 {
		t.Errorf("got %+v", v)
	}
}

func TestModuleLoaderFromImport(t *testing.T) {
	dir := writeTxtarFixture(t, `
-- greet.cvd --
const GREETING = "hi"
`)
	i := New(Options{SearchRoots: []string{dir}, WorkDir: t.TempDir()})
	v, err := i.Eval(context.Background(), "<test>", `
from greet import GREETING
GREETING
`)
	i.Flush()
	if err != nil {
		t.Fatalf("unexpected diagnostic: %s", err.Details)
	}
	if v.(String_).Value != "hi" {
		t.Errorf("got %+v", v)
	}
}

func TestModuleLoaderCachesByPath(t *testing.T) {
	dir := writeTxtarFixture(t, `
-- counter.cvd --
const SEEN = 1
`)
	global := NewScope("<global>", nil)
	registerBuiltins(global, nil, nil, nil, newFileTable())
	loader := NewModuleLoader([]string{dir}, global)
	ev := NewEvaluator(context.Background(), loader)

	first, err := loader.Load(ev, "counter", Span{})
	if err != nil {
		t.Fatalf("unexpected diagnostic: %s", err.Details)
	}
	second, err := loader.Load(ev, "counter", Span{})
	if err != nil {
		t.Fatalf("unexpected diagnostic: %s", err.Details)
	}
	if first != second {
		t.Error("expected repeated loads of the same dotted path to return the identical *Module")
	}
}

func TestModuleLoaderMissingModuleErrors(t *testing.T) {
	dir := t.TempDir()
	global := NewScope("<global>", nil)
	registerBuiltins(global, nil, nil, nil, newFileTable())
	loader := NewModuleLoader([]string{dir}, global)
	ev := NewEvaluator(context.Background(), loader)

	_, err := loader.Load(ev, "does.not.exist", Span{})
	if err == nil {
		t.Fatal("expected a diagnostic for a missing module")
	}
}

func TestModuleLoaderScriptModuleParentsToGlobalScope(t *testing.T) {
	dir := writeTxtarFixture(t, `
-- m.cvd --
fun local() -> math_pi
`)
	i := New(Options{SearchRoots: []string{dir}, WorkDir: t.TempDir()})
	v, err := i.Eval(context.Background(), "<test>", `
import m
m.local()
`)
	i.Flush()
	if err != nil {
		t.Fatalf("unexpected diagnostic: %s", err.Details)
	}
	n := v.(Number)
	if !n.IsFloat || n.Float < 3.14 {
		t.Errorf("expected the module to see math_pi via the global scope, got %+v", n)
	}
}
