package ir

import (
	"strconv"
	"strings"
)

// Symbol is a named entity a Ref can point at: a *Var or a *Func.
type Symbol interface {
	SymbolName() string
	symbol()
}

// Var is a variable or formal parameter.
type Var struct {
	Scope *Scope
	Name  string
	Type  Type
}

// NewVar creates a variable owned by scope.
func NewVar(name string, typ Type, scope *Scope) *Var {
	return &Var{Name: name, Type: typ, Scope: scope}
}

func (v *Var) SymbolName() string { return v.Name }
func (*Var) symbol()              {}

// IsGlobal reports whether v is declared at module level.
func (v *Var) IsGlobal() bool {
	return v.Scope != nil && v.Scope.Func == nil
}

// Formal is a function parameter.
type Formal struct {
	Var    *Var
	Intent Intent
}

// Func is a function symbol.
//
// Outer is the scope holding the function's definition; Body.Scope is the
// function's own scope, which holds the formals and is the parent of every
// block scope inside the body.
type Func struct {
	Outer   *Scope
	Body    *Block
	Def     *FuncDef
	Name    string
	Formals []*Formal
	Result  Type
}

// NewFunc creates a function defined in outer with an empty body and its
// defining statement.
func NewFunc(name string, outer *Scope, result Type) *Func {
	f := &Func{Name: name, Outer: outer, Result: result}
	f.Body = &Block{Scope: NewScope(outer, f)}
	f.Def = &FuncDef{Func: f}
	return f
}

func (f *Func) SymbolName() string { return f.Name }
func (*Func) symbol()              {}

// EnclosingFunc returns the function whose body contains f's definition,
// or nil for a module-level function.
func (f *Func) EnclosingFunc() *Func {
	if f.Outer == nil {
		return nil
	}
	return f.Outer.Func
}

// IsNested reports whether f is defined inside another function's body.
func (f *Func) IsNested() bool {
	return f.EnclosingFunc() != nil
}

// Module returns the module f belongs to.
func (f *Func) Module() *Module {
	return f.Outer.Module()
}

// QualifiedName joins the names of the enclosing functions and f with dots.
func (f *Func) QualifiedName() string {
	var parts []string
	for fn := f; fn != nil; fn = fn.EnclosingFunc() {
		parts = append(parts, fn.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// AddFormal synthesizes a formal parameter of the given intent and type,
// binds it into f's scope and appends it to f's formal list. The name is
// made unique among the names already bound inside f.
func (f *Func) AddFormal(name string, intent Intent, typ Type) *Var {
	v := NewVar(f.FreshName(name), typ, f.Body.Scope)
	f.Formals = append(f.Formals, &Formal{Var: v, Intent: intent})
	return v
}

// FreshName returns base, or base with a numeric suffix, such that no formal,
// local variable or nested function of f already uses it, and no function or
// global referenced from f's body goes by it.
func (f *Func) FreshName(base string) string {
	taken := make(map[string]bool)
	for _, p := range f.Formals {
		taken[p.Var.Name] = true
	}
	Inspect(f.Body, func(n Node) bool {
		switch n := n.(type) {
		case *VarDecl:
			taken[n.Var.Name] = true
		case *FuncDef:
			taken[n.Func.Name] = true
		case *Ref:
			switch sym := n.Sym.(type) {
			case *Func:
				taken[sym.Name] = true
			case *Var:
				if sym.IsGlobal() {
					taken[sym.Name] = true
				}
			}
		}
		return true
	})
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		name := base + "_" + strconv.Itoa(i)
		if !taken[name] {
			return name
		}
	}
}

// Reparent moves f's definition into outer, keeping its body scope chained
// under the new location.
func (f *Func) Reparent(outer *Scope) {
	f.Outer = outer
	f.Body.Scope.Parent = outer
}

// Formal returns the formal bound to v, or nil.
func (f *Func) Formal(v *Var) *Formal {
	for _, p := range f.Formals {
		if p.Var == v {
			return p
		}
	}
	return nil
}
