package syntax

import (
	"io"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/wippyai/lambdalift/ir"
)

// Print writes prog in source form.
func Print(w io.Writer, prog *ir.Program) error {
	_, err := io.WriteString(w, Format(prog))
	return err
}

// Format returns prog in source form.
func Format(prog *ir.Program) string {
	p := &printer{}
	for i, m := range prog.Modules {
		if i > 0 {
			p.b.WriteByte('\n')
		}
		p.module(m)
	}
	return p.b.String()
}

// FormatModule returns a single module in source form.
func FormatModule(m *ir.Module) string {
	p := &printer{}
	p.module(m)
	return p.b.String()
}

// Fingerprint hashes the source form of prog. Programs that print the same
// have the same fingerprint.
func Fingerprint(prog *ir.Program) uint64 {
	h := xxh3.New()
	_ = Print(h, prog)
	return h.Sum64()
}

type printer struct {
	b     strings.Builder
	depth int
}

func (p *printer) indent() {
	p.b.WriteByte('\n')
	for i := 0; i < p.depth; i++ {
		p.b.WriteString("  ")
	}
}

func (p *printer) line(head string) {
	p.indent()
	p.b.WriteByte('(')
	p.b.WriteString(head)
}

func (p *printer) module(m *ir.Module) {
	p.b.WriteString("(module $")
	p.b.WriteString(m.Name)
	p.depth++
	for _, s := range m.Stmts {
		p.stmt(s)
	}
	p.depth--
	p.b.WriteString(")\n")
}

func (p *printer) block(stmts []ir.Stmt) {
	p.depth++
	for _, s := range stmts {
		p.stmt(s)
	}
	p.depth--
}

func (p *printer) stmt(s ir.Stmt) {
	switch s := s.(type) {
	case *ir.VarDecl:
		p.line("var $" + s.Var.Name + " " + s.Var.Type.String())
		if s.Init != nil {
			p.b.WriteByte(' ')
			p.expr(s.Init)
		}
	case *ir.Assign:
		p.line("set ")
		p.expr(s.Target)
		p.b.WriteByte(' ')
		p.expr(s.Value)
	case *ir.ExprStmt:
		p.indent()
		p.expr(s.X)
		return
	case *ir.If:
		p.line("if ")
		p.expr(s.Cond)
		p.depth++
		p.line("then")
		p.block(s.Then.Stmts)
		p.b.WriteByte(')')
		if s.Else != nil {
			p.line("else")
			p.block(s.Else.Stmts)
			p.b.WriteByte(')')
		}
		p.depth--
	case *ir.While:
		p.line("while ")
		p.expr(s.Cond)
		p.block(s.Body.Stmts)
	case *ir.Return:
		p.line("return")
		if s.Value != nil {
			p.b.WriteByte(' ')
			p.expr(s.Value)
		}
	case *ir.Print:
		p.line("print ")
		p.expr(s.Value)
	case *ir.FuncDef:
		p.funcDef(s.Func)
	}
	p.b.WriteByte(')')
}

func (p *printer) funcDef(f *ir.Func) {
	p.line("func $" + f.Name)
	for _, formal := range f.Formals {
		p.b.WriteString(" (" + formal.Intent.String() + " $" + formal.Var.Name + " " + formal.Var.Type.String() + ")")
	}
	if f.Result != ir.TypeVoid {
		p.b.WriteString(" (result " + f.Result.String() + ")")
	}
	p.block(f.Body.Stmts)
}

func (p *printer) expr(e ir.Expr) {
	switch e := e.(type) {
	case *ir.IntLit:
		p.b.WriteString(strconv.FormatInt(e.Value, 10))
	case *ir.BoolLit:
		p.b.WriteString(strconv.FormatBool(e.Value))
	case *ir.Ref:
		p.b.WriteString("$" + e.Sym.SymbolName())
	case *ir.Call:
		p.b.WriteString("(call ")
		p.expr(e.Callee)
		for _, a := range e.Args {
			p.b.WriteByte(' ')
			p.expr(a)
		}
		p.b.WriteByte(')')
	case *ir.Binary:
		p.b.WriteString("(" + e.Op.String() + " ")
		p.expr(e.X)
		p.b.WriteByte(' ')
		p.expr(e.Y)
		p.b.WriteByte(')')
	case *ir.Unary:
		p.b.WriteString("(" + e.Op.String() + " ")
		p.expr(e.X)
		p.b.WriteByte(')')
	}
}
