package ir

// Scope is a lexical scope. Module root scopes have a nil Func; every scope
// inside a function body, including the function's own scope, records the
// function that owns it.
type Scope struct {
	Parent *Scope
	Func   *Func
	module *Module
}

// NewScope creates a scope nested in parent and owned by fn.
func NewScope(parent *Scope, fn *Func) *Scope {
	return &Scope{Parent: parent, Func: fn}
}

// Module returns the module at the root of the scope chain.
func (s *Scope) Module() *Module {
	for ; s != nil; s = s.Parent {
		if s.module != nil {
			return s.module
		}
	}
	return nil
}

// Contains reports whether t is s or nested inside s.
func (s *Scope) Contains(t *Scope) bool {
	for ; t != nil; t = t.Parent {
		if t == s {
			return true
		}
	}
	return false
}

// IsModule reports whether s is a module root scope.
func (s *Scope) IsModule() bool {
	return s.module != nil
}
