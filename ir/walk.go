package ir

// Visitor receives post-order callbacks from Walk. Returning an error stops
// the walk.
type Visitor interface {
	// PostStmt is called for a statement after its whole subtree, including
	// the body of a function it defines, has been visited.
	PostStmt(c *Cursor) error
	// PostExpr is called for an expression after its operands.
	PostExpr(e Expr) error
}

// Cursor addresses the statement a PostStmt hook was called for.
type Cursor struct {
	module  *Module
	root    Stmt
	list    *[]Stmt
	stmt    Stmt
	index   int
	deleted bool
}

// Stmt returns the current statement.
func (c *Cursor) Stmt() Stmt { return c.stmt }

// Module returns the module being walked.
func (c *Cursor) Module() *Module { return c.module }

// Root returns the module-level statement that contains the current one.
func (c *Cursor) Root() Stmt { return c.root }

// Delete detaches the current statement from its statement list. The walk
// continues with the statement that followed it.
func (c *Cursor) Delete() {
	if c.deleted {
		return
	}
	list := *c.list
	*c.list = append(list[:c.index], list[c.index+1:]...)
	c.deleted = true
}

// Walk visits every module of p in order. See WalkModule.
func Walk(p *Program, v Visitor) error {
	for _, m := range p.Modules {
		if err := WalkModule(m, v); err != nil {
			return err
		}
	}
	return nil
}

// WalkModule visits the statements m held when the walk began, in order and
// in post-order: expressions before the statement containing them, the
// statements of a block before the statement owning the block.
func WalkModule(m *Module, v Visitor) error {
	w := &walker{v: v, module: m}
	n := len(m.Stmts)
	for i := 0; i < n; i++ {
		w.root = m.Stmts[i]
		deleted, err := w.stmt(&m.Stmts, i)
		if err != nil {
			return err
		}
		if deleted {
			i--
			n--
		}
	}
	return nil
}

type walker struct {
	v      Visitor
	module *Module
	root   Stmt
}

func (w *walker) block(b *Block) error {
	for i := 0; i < len(b.Stmts); i++ {
		deleted, err := w.stmt(&b.Stmts, i)
		if err != nil {
			return err
		}
		if deleted {
			i--
		}
	}
	return nil
}

func (w *walker) stmt(list *[]Stmt, i int) (bool, error) {
	s := (*list)[i]

	var err error
	switch s := s.(type) {
	case *VarDecl:
		if s.Init != nil {
			err = w.expr(s.Init)
		}
	case *Assign:
		if err = w.expr(s.Target); err == nil {
			err = w.expr(s.Value)
		}
	case *ExprStmt:
		err = w.expr(s.X)
	case *If:
		if err = w.expr(s.Cond); err == nil {
			err = w.block(s.Then)
		}
		if err == nil && s.Else != nil {
			err = w.block(s.Else)
		}
	case *While:
		if err = w.expr(s.Cond); err == nil {
			err = w.block(s.Body)
		}
	case *Return:
		if s.Value != nil {
			err = w.expr(s.Value)
		}
	case *Print:
		err = w.expr(s.Value)
	case *FuncDef:
		err = w.block(s.Func.Body)
	}
	if err != nil {
		return false, err
	}

	c := &Cursor{module: w.module, root: w.root, list: list, stmt: s, index: i}
	if err := w.v.PostStmt(c); err != nil {
		return c.deleted, err
	}
	return c.deleted, nil
}

func (w *walker) expr(e Expr) error {
	switch e := e.(type) {
	case *Call:
		if err := w.expr(e.Callee); err != nil {
			return err
		}
		for _, arg := range e.Args {
			if err := w.expr(arg); err != nil {
				return err
			}
		}
	case *Binary:
		if err := w.expr(e.X); err != nil {
			return err
		}
		if err := w.expr(e.Y); err != nil {
			return err
		}
	case *Unary:
		if err := w.expr(e.X); err != nil {
			return err
		}
	}
	return w.v.PostExpr(e)
}

// Inspect traverses the tree rooted at n in depth-first pre-order, calling
// f for every node. If f returns false, the children of that node are
// skipped. The body of a defined function is a child of its FuncDef.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *VarDecl:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *Assign:
		Inspect(n.Target, f)
		Inspect(n.Value, f)
	case *ExprStmt:
		Inspect(n.X, f)
	case *If:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *While:
		Inspect(n.Cond, f)
		Inspect(n.Body, f)
	case *Return:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	case *Print:
		Inspect(n.Value, f)
	case *FuncDef:
		Inspect(n.Func.Body, f)
	case *Call:
		Inspect(n.Callee, f)
		for _, arg := range n.Args {
			Inspect(arg, f)
		}
	case *Binary:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *Unary:
		Inspect(n.X, f)
	}
}
