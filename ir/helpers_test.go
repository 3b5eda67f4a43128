package ir

func topFunc(m *Module, name string) *Func {
	f := NewFunc(name, m.Scope, TypeVoid)
	m.Append(f.Def)
	return f
}

func nestedFunc(b *Block, name string) *Func {
	f := NewFunc(name, b.Scope, TypeVoid)
	b.Stmts = append(b.Stmts, f.Def)
	return f
}

func local(b *Block, name string, init int64) *Var {
	v := NewVar(name, TypeInt, b.Scope)
	b.Stmts = append(b.Stmts, &VarDecl{Var: v, Init: &IntLit{Value: init}})
	return v
}

func callStmt(b *Block, f *Func, args ...Expr) *Call {
	c := &Call{Callee: &Ref{Sym: f}, Args: args}
	b.Stmts = append(b.Stmts, &ExprStmt{X: c})
	return c
}

func printRef(b *Block, v *Var) *Ref {
	r := &Ref{Sym: v}
	b.Stmts = append(b.Stmts, &Print{Value: r})
	return r
}

// sample builds
//
//	(module $m
//	  (func $f
//	    (var $x int 1)
//	    (call $g)
//	    (func $g (var $y int 2) (print $x) (print $y))))
func sample() (*Program, *Func, *Func, *Var) {
	m := NewModule("m")
	f := topFunc(m, "f")
	x := local(f.Body, "x", 1)
	g := NewFunc("g", f.Body.Scope, TypeVoid)
	callStmt(f.Body, g)
	f.Body.Stmts = append(f.Body.Stmts, g.Def)
	y := local(g.Body, "y", 2)
	printRef(g.Body, x)
	printRef(g.Body, y)
	return &Program{Modules: []*Module{m}}, f, g, x
}
