package ir

import "strconv"

// Program is a compilation unit: one or more modules.
type Program struct {
	Modules []*Module
}

// Module returns the module with the given name, or nil.
func (p *Program) Module(name string) *Module {
	for _, m := range p.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Module is a top-level namespace holding global variables and functions.
type Module struct {
	Scope *Scope
	Name  string
	Stmts []Stmt
}

// NewModule creates an empty module with its root scope.
func NewModule(name string) *Module {
	m := &Module{Name: name}
	m.Scope = &Scope{module: m}
	return m
}

// Append adds a statement at the tail of the module.
func (m *Module) Append(s Stmt) {
	m.Stmts = append(m.Stmts, s)
}

// Funcs returns the module-level functions in statement order.
func (m *Module) Funcs() []*Func {
	var funcs []*Func
	for _, s := range m.Stmts {
		if def, ok := s.(*FuncDef); ok {
			funcs = append(funcs, def.Func)
		}
	}
	return funcs
}

// Func returns the module-level function with the given name, or nil.
func (m *Module) Func(name string) *Func {
	for _, s := range m.Stmts {
		if def, ok := s.(*FuncDef); ok && def.Func.Name == name {
			return def.Func
		}
	}
	return nil
}

// Globals returns the module-level variables in declaration order.
func (m *Module) Globals() []*Var {
	var vars []*Var
	for _, s := range m.Stmts {
		if d, ok := s.(*VarDecl); ok {
			vars = append(vars, d.Var)
		}
	}
	return vars
}

// UniqueName returns base, or base with a numeric suffix, such that no
// module-level function or variable already uses it.
func (m *Module) UniqueName(base string) string {
	taken := make(map[string]bool)
	for _, s := range m.Stmts {
		switch s := s.(type) {
		case *FuncDef:
			taken[s.Func.Name] = true
		case *VarDecl:
			taken[s.Var.Name] = true
		}
	}
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		name := base + "." + strconv.Itoa(i)
		if !taken[name] {
			return name
		}
	}
}

// Functions enumerates every function of the program, module-level and
// nested, in definition order with enclosing functions before the functions
// they contain.
func Functions(p *Program) []*Func {
	var funcs []*Func
	for _, m := range p.Modules {
		for _, s := range m.Stmts {
			Inspect(s, func(n Node) bool {
				if def, ok := n.(*FuncDef); ok {
					funcs = append(funcs, def.Func)
				}
				return true
			})
		}
	}
	return funcs
}
