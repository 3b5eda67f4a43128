package ir

// CloneDef returns a structurally independent copy of a function definition.
//
// The copy gets a fresh Func, fresh scopes and fresh symbols for every
// variable and function declared inside the definition; references to those
// symbols are redirected to their copies. References to symbols declared
// outside the definition are kept as they are. No node of the copy is shared
// with the original.
func CloneDef(def *FuncDef) *FuncDef {
	c := &cloner{
		root:   def.Func,
		funcs:  make(map[*Func]*Func),
		vars:   make(map[*Var]*Var),
		scopes: make(map[*Scope]*Scope),
	}
	return c.funcDef(def)
}

type cloner struct {
	root   *Func
	funcs  map[*Func]*Func
	vars   map[*Var]*Var
	scopes map[*Scope]*Scope
}

func (c *cloner) inside(s *Scope) bool {
	return c.root.Body.Scope.Contains(s)
}

func (c *cloner) scope(s *Scope) *Scope {
	if s == nil || !c.inside(s) {
		return s
	}
	if ns, ok := c.scopes[s]; ok {
		return ns
	}
	parent := c.scope(s.Parent)
	fn := c.fn(s.Func)
	// fn may have mapped s while creating the body of a function
	if ns, ok := c.scopes[s]; ok {
		return ns
	}
	ns := &Scope{Parent: parent, Func: fn}
	c.scopes[s] = ns
	return ns
}

func (c *cloner) fn(f *Func) *Func {
	if f != c.root && !c.inside(f.Outer) {
		return f
	}
	if nf, ok := c.funcs[f]; ok {
		return nf
	}
	nf := &Func{Name: f.Name, Result: f.Result}
	c.funcs[f] = nf
	nf.Outer = c.scope(f.Outer)
	nf.Body = &Block{Scope: c.scope(f.Body.Scope)}
	return nf
}

func (c *cloner) variable(v *Var) *Var {
	if !c.inside(v.Scope) {
		return v
	}
	if nv, ok := c.vars[v]; ok {
		return nv
	}
	nv := &Var{Name: v.Name, Type: v.Type, Scope: c.scope(v.Scope)}
	c.vars[v] = nv
	return nv
}

func (c *cloner) symbol(sym Symbol) Symbol {
	switch sym := sym.(type) {
	case *Var:
		return c.variable(sym)
	case *Func:
		return c.fn(sym)
	}
	return sym
}

func (c *cloner) funcDef(def *FuncDef) *FuncDef {
	f := def.Func
	nf := c.fn(f)
	nf.Formals = make([]*Formal, len(f.Formals))
	for i, p := range f.Formals {
		nf.Formals[i] = &Formal{Var: c.variable(p.Var), Intent: p.Intent}
	}
	nf.Body.Stmts = c.stmts(f.Body.Stmts)
	nf.Def = &FuncDef{Func: nf, Line: def.Line}
	return nf.Def
}

func (c *cloner) block(b *Block) *Block {
	if b == nil {
		return nil
	}
	return &Block{Scope: c.scope(b.Scope), Stmts: c.stmts(b.Stmts)}
}

func (c *cloner) stmts(list []Stmt) []Stmt {
	out := make([]Stmt, len(list))
	for i, s := range list {
		out[i] = c.stmt(s)
	}
	return out
}

func (c *cloner) stmt(s Stmt) Stmt {
	switch s := s.(type) {
	case *VarDecl:
		return &VarDecl{Var: c.variable(s.Var), Init: c.expr(s.Init), Line: s.Line}
	case *Assign:
		return &Assign{Target: c.ref(s.Target), Value: c.expr(s.Value), Line: s.Line}
	case *ExprStmt:
		return &ExprStmt{X: c.expr(s.X), Line: s.Line}
	case *If:
		return &If{Cond: c.expr(s.Cond), Then: c.block(s.Then), Else: c.block(s.Else), Line: s.Line}
	case *While:
		return &While{Cond: c.expr(s.Cond), Body: c.block(s.Body), Line: s.Line}
	case *Return:
		return &Return{Value: c.expr(s.Value), Line: s.Line}
	case *Print:
		return &Print{Value: c.expr(s.Value), Line: s.Line}
	case *FuncDef:
		return c.funcDef(s)
	}
	panic("ir: unknown statement")
}

func (c *cloner) ref(r *Ref) *Ref {
	return &Ref{Sym: c.symbol(r.Sym)}
}

func (c *cloner) expr(e Expr) Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *IntLit:
		return &IntLit{Value: e.Value}
	case *BoolLit:
		return &BoolLit{Value: e.Value}
	case *Ref:
		return c.ref(e)
	case *Call:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = c.expr(a)
		}
		return &Call{Callee: c.ref(e.Callee), Args: args}
	case *Binary:
		return &Binary{Op: e.Op, X: c.expr(e.X), Y: c.expr(e.Y)}
	case *Unary:
		return &Unary{Op: e.Op, X: c.expr(e.X)}
	}
	panic("ir: unknown expression")
}

// Substitute replaces, throughout the subtree rooted at n, every reference to
// a symbol that is a key of subst with a reference to the mapped symbol. It
// returns the number of references rewritten.
func Substitute(n Node, subst map[Symbol]Symbol) int {
	if len(subst) == 0 {
		return 0
	}
	count := 0
	Inspect(n, func(n Node) bool {
		if r, ok := n.(*Ref); ok {
			if to, ok := subst[r.Sym]; ok {
				r.Sym = to
				count++
			}
		}
		return true
	})
	return count
}
