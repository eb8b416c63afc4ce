package interp

// Scope is one frame of the lexical chain: a name→value map, the subset of
// those names bound const, a struct-name→field-list table, and a parent
// pointer. Lookup walks the chain; Set only ever writes the current frame —
// there is no implicit walk-up on assignment.
type Scope struct {
	DisplayName string
	Parent      *Scope
	vars        map[string]Value
	consts      map[string]bool
	structs     map[string][]string
}

func NewScope(displayName string, parent *Scope) *Scope {
	return &Scope{
		DisplayName: displayName,
		Parent:      parent,
		vars:        make(map[string]Value),
		consts:      make(map[string]bool),
		structs:     make(map[string][]string),
	}
}

// Get walks the chain from this frame outward.
func (s *Scope) Get(name string) (Value, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// IsConst reports whether name is bound const anywhere in the chain.
func (s *Scope) IsConst(name string) bool {
	for sc := s; sc != nil; sc = sc.Parent {
		if _, ok := sc.vars[name]; ok {
			return sc.consts[name]
		}
	}
	return false
}

// Set writes name in this frame only. Returns false if name is already
// const-bound anywhere in the chain (the caller should surface a runtime
// error in that case).
func (s *Scope) Set(name string, v Value, asConst bool) bool {
	if s.IsConst(name) {
		return false
	}
	s.vars[name] = v
	if asConst {
		s.consts[name] = true
	}
	return true
}

// DeclareStruct registers a field list under name in this frame.
func (s *Scope) DeclareStruct(name string, fields []string) {
	s.structs[name] = fields
}

// LookupStruct walks the chain for a struct declaration.
func (s *Scope) LookupStruct(name string) ([]string, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if fields, ok := sc.structs[name]; ok {
			return fields, true
		}
	}
	return nil, false
}

// Symbols returns a shallow copy of this frame's own bindings — used when a
// Module value snapshots the top-level scope of an evaluated file.
func (s *Scope) Symbols() map[string]Value {
	out := make(map[string]Value, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}
