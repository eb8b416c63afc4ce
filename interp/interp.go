package interp

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Options configures a single Interpreter instance. Every field has a
// working zero value; embedding code typically only sets Stdout/Stderr/Args
// and, for tests, a fixed SearchRoots slice instead of a real .path file.
type Options struct {
	Stdin       *os.File
	Stdout      *bufio.Writer
	Stderr      *bufio.Writer
	Args        []string
	SearchRoots []string // overrides .path discovery when non-nil
	WorkDir     string   // defaults to os.Getwd()
}

// Interpreter owns the global scope, the module cache, and the
// file-descriptor table for one isolated execution. Embedding code is
// expected to create a fresh Interpreter per isolated run — state is not
// safe to share across unrelated scripts, matching the single-instance
// ownership model described for the module cache and file table.
type Interpreter struct {
	ID          uuid.UUID
	Global      *Scope
	Loader      *ModuleLoader
	SearchRoots []string
	opts        Options
	files       *fileTable
}

// New constructs an Interpreter with a freshly seeded global scope
// (builtins, argv, math_pi, …) and a module loader over the resolved
// search-path roots.
func New(opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = bufio.NewWriter(os.Stdout)
	}
	if opts.Stderr == nil {
		opts.Stderr = bufio.NewWriter(os.Stderr)
	}
	if opts.WorkDir == "" {
		opts.WorkDir, _ = os.Getwd()
	}

	roots := opts.SearchRoots
	if roots == nil {
		roots = loadOrInitSearchPath(opts.WorkDir)
	}

	global := NewScope("<global>", nil)
	files := newFileTable()
	registerBuiltins(global, opts.Args, opts.Stdout, opts.Stderr, files)

	loader := NewModuleLoader(roots, global)

	return &Interpreter{
		ID:          uuid.New(),
		Global:      global,
		Loader:      loader,
		SearchRoots: roots,
		opts:        opts,
		files:       files,
	}
}

// loadOrInitSearchPath reads a ".path" file (one filesystem root per line,
// blank lines ignored) from workDir; if absent, it writes one containing
// "." and "./std" and returns those as the default roots.
func loadOrInitSearchPath(workDir string) []string {
	pathFile := filepath.Join(workDir, ".path")
	data, err := os.ReadFile(pathFile)
	if err != nil {
		defaults := []string{".", "./std"}
		_ = os.WriteFile(pathFile, []byte(strings.Join(defaults, "\n")+"\n"), 0644)
		return defaults
	}
	var roots []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		roots = append(roots, line)
	}
	if len(roots) == 0 {
		return []string{".", "./std"}
	}
	return roots
}

// Use registers a set of host-language exports directly into the global
// scope, bypassing the module loader — for embedding code that wants to
// hand the script a ready-made namespace instead of a file on disk.
func (i *Interpreter) Use(name string, exports map[string]any) {
	mod := NewModule(name)
	for k, v := range exports {
		mod.Set(k, hostToValue(v))
	}
	i.Global.Set(name, mod, false)
}

// Eval lexes, parses, and evaluates src under file name fn, returning its
// final value or the first diagnostic encountered at any stage.
func (i *Interpreter) Eval(ctx context.Context, fn, src string) (Value, *Diagnostic) {
	root, err := ParseSource(fn, src)
	if err != nil {
		return nil, err
	}
	ev := NewEvaluator(ctx, i.Loader)
	sig := ev.Eval(root, i.Global, nil)
	if sig.Err != nil {
		return nil, sig.Err
	}
	if sig.HasReturn {
		return sig.ReturnValue, nil
	}
	return sig.Value, nil
}

// EvalPath reads the file at path and evaluates it exactly as Eval would.
func (i *Interpreter) EvalPath(ctx context.Context, path string) (Value, *Diagnostic) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, runtimeErr(Span{}, "Can't find file '"+path+"'", nil)
	}
	return i.Eval(ctx, path, string(data))
}

// Flush ensures buffered stdout/stderr writes reach their underlying files
// — embedding code should defer this after a run.
func (i *Interpreter) Flush() {
	i.opts.Stdout.Flush()
	i.opts.Stderr.Flush()
}
