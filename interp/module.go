package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"strings"
	"sync"

	"golang.org/x/mod/module"
)

// scriptExt is the native source extension; hostExt is the extension
// tried second, for host-native (Go plugin) modules.
const (
	scriptExt = ".cvd"
	hostExt   = ".so"
)

// ModuleLoader resolves dotted-path imports against an ordered list of
// filesystem roots, memoizing one canonical *Module per dotted path in a
// cache owned by this loader (one loader per Interpreter) — loading the same
// path twice through the same loader returns the identical instance so
// mutations on one are visible through the other.
type ModuleLoader struct {
	mu    sync.Mutex
	cache map[string]*Module
	Roots []string

	// GlobalScope is the root scope every freshly loaded module's top-level
	// scope is parented to, so modules see builtins but not the importer's
	// locals.
	GlobalScope *Scope
}

func NewModuleLoader(roots []string, global *Scope) *ModuleLoader {
	return &ModuleLoader{cache: make(map[string]*Module), Roots: roots, GlobalScope: global}
}

// Load resolves, evaluates (or host-loads), and caches the module at the
// given dotted path.
func (m *ModuleLoader) Load(e *Evaluator, dottedPath string, span Span) (*Module, *Diagnostic) {
	m.mu.Lock()
	if cached, ok := m.cache[dottedPath]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	parts := splitDotted(dottedPath)
	if err := module.CheckFilePath(strings.Join(parts, "/")); err != nil {
		return nil, runtimeErr(span, fmt.Sprintf("invalid module path '%s': %s", dottedPath, err), nil)
	}

	scriptPath := m.findFile(parts, scriptExt)
	hostPath := m.findFile(parts, hostExt)

	var mod *Module
	var diag *Diagnostic
	switch {
	case scriptPath != "":
		mod, diag = m.loadScriptModule(e, dottedPath, scriptPath, span)
	case hostPath != "":
		mod, diag = m.loadHostModule(dottedPath, hostPath, span)
	default:
		return nil, runtimeErr(span, fmt.Sprintf("Can't find module '%s'", dottedPath), nil)
	}
	if diag != nil {
		return nil, diag
	}

	m.mu.Lock()
	m.cache[dottedPath] = mod
	m.mu.Unlock()
	return mod, nil
}

func (m *ModuleLoader) findFile(parts []string, ext string) string {
	for _, root := range m.Roots {
		candidate := filepath.Join(append([]string{root}, parts...)...) + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func (m *ModuleLoader) loadScriptModule(e *Evaluator, dottedPath, path string, span Span) (*Module, *Diagnostic) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, runtimeErr(span, fmt.Sprintf("Can't find file '%s'", path), nil)
	}

	root, parseErr := ParseSource(path, string(data))
	if parseErr != nil {
		return nil, parseErr
	}

	moduleScope := NewScope(fmt.Sprintf("<module %s>", dottedPath), m.GlobalScope)
	sig := e.Eval(root, moduleScope, nil)
	if sig.Err != nil {
		return nil, sig.Err
	}

	return &Module{Name: dottedPath, Symbols: moduleScope.Symbols()}, nil
}

// loadHostModule loads a host-native module via Go's plugin mechanism; the
// plugin must expose an "Exports" symbol of type func() map[string]any.
func (m *ModuleLoader) loadHostModule(dottedPath, path string, span Span) (*Module, *Diagnostic) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, runtimeErr(span, fmt.Sprintf("failed to load host module '%s': %s", dottedPath, err), nil)
	}
	sym, err := p.Lookup("Exports")
	if err != nil {
		return nil, runtimeErr(span, fmt.Sprintf("host module '%s' must define Exports", dottedPath), nil)
	}
	exportsFn, okFn := sym.(func() map[string]any)
	if !okFn {
		return nil, runtimeErr(span, fmt.Sprintf("host module '%s' Exports has the wrong signature", dottedPath), nil)
	}
	exports := exportsFn()

	mod := NewModule(dottedPath)
	for k, v := range exports {
		mod.Set(k, hostToValue(v))
	}
	return mod, nil
}

// ReadLegacyFile resolves a quoted legacy import path against the root
// list without going through the module cache or namespace attachment.
func (m *ModuleLoader) ReadLegacyFile(path string, span Span) (string, *Diagnostic) {
	if filepath.IsAbs(path) {
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		}
	}
	for _, root := range m.Roots {
		candidate := filepath.Join(root, path)
		if data, err := os.ReadFile(candidate); err == nil {
			return string(data), nil
		}
	}
	return "", runtimeErr(span, fmt.Sprintf("Can't find file '%s'", path), nil)
}
