package ir

// Node is any block, statement or expression.
type Node interface {
	node()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Block is a statement sequence with its own scope.
type Block struct {
	Scope *Scope
	Stmts []Stmt
}

// VarDecl declares a variable, optionally initialized. Without an
// initializer the variable holds its type's zero value.
type VarDecl struct {
	Var  *Var
	Init Expr
	Line int
}

// Assign stores Value into the variable referenced by Target.
type Assign struct {
	Target *Ref
	Value  Expr
	Line   int
}

// ExprStmt evaluates a call for its effects.
type ExprStmt struct {
	X    Expr
	Line int
}

// If runs Then when Cond holds, otherwise Else (which may be nil).
type If struct {
	Cond Expr
	Then *Block
	Else *Block
	Line int
}

// While runs Body as long as Cond holds.
type While struct {
	Cond Expr
	Body *Block
	Line int
}

// Return leaves the current function. Value is nil for void functions.
type Return struct {
	Value Expr
	Line  int
}

// Print writes the value of an expression to the program output.
type Print struct {
	Value Expr
	Line  int
}

// FuncDef is the defining statement of a function.
type FuncDef struct {
	Func *Func
	Line int
}

// IntLit is a 64-bit integer literal.
type IntLit struct {
	Value int64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
}

// Ref references a variable or function symbol.
type Ref struct {
	Sym Symbol
}

// Call invokes the function referenced by Callee.
type Call struct {
	Callee *Ref
	Args   []Expr
}

// Binary applies a two-operand operator.
type Binary struct {
	X  Expr
	Y  Expr
	Op Op
}

// Unary applies a one-operand operator.
type Unary struct {
	X  Expr
	Op Op
}

func (*Block) node()    {}
func (*VarDecl) node()  {}
func (*Assign) node()   {}
func (*ExprStmt) node() {}
func (*If) node()       {}
func (*While) node()    {}
func (*Return) node()   {}
func (*Print) node()    {}
func (*FuncDef) node()  {}
func (*IntLit) node()   {}
func (*BoolLit) node()  {}
func (*Ref) node()      {}
func (*Call) node()     {}
func (*Binary) node()   {}
func (*Unary) node()    {}

func (*VarDecl) stmtNode()  {}
func (*Assign) stmtNode()   {}
func (*ExprStmt) stmtNode() {}
func (*If) stmtNode()       {}
func (*While) stmtNode()    {}
func (*Return) stmtNode()   {}
func (*Print) stmtNode()    {}
func (*FuncDef) stmtNode()  {}

func (*IntLit) exprNode()  {}
func (*BoolLit) exprNode() {}
func (*Ref) exprNode()     {}
func (*Call) exprNode()    {}
func (*Binary) exprNode()  {}
func (*Unary) exprNode()   {}

// CallTarget returns the function a call resolves to.
func CallTarget(c *Call) (*Func, bool) {
	if c.Callee == nil {
		return nil, false
	}
	f, ok := c.Callee.Sym.(*Func)
	return f, ok
}

// VarRef returns the variable an expression references directly.
func VarRef(e Expr) (*Var, bool) {
	r, ok := e.(*Ref)
	if !ok {
		return nil, false
	}
	v, ok := r.Sym.(*Var)
	return v, ok
}

// TypeOf returns the static type of e.
func TypeOf(e Expr) Type {
	switch e := e.(type) {
	case *IntLit:
		return TypeInt
	case *BoolLit:
		return TypeBool
	case *Ref:
		if v, ok := e.Sym.(*Var); ok {
			return v.Type
		}
	case *Call:
		if f, ok := CallTarget(e); ok {
			return f.Result
		}
	case *Binary:
		return e.Op.ResultType()
	case *Unary:
		return e.Op.ResultType()
	}
	return TypeVoid
}
