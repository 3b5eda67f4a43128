package wasmgen

import (
	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
	enc "github.com/wippyai/lambdalift/wasmgen/internal/encoder"
)

// funcBuilder emits the body of one function.
type funcBuilder struct {
	gen    *generator
	fn     *ir.Func
	code   *enc.Buffer
	slots  map[*ir.Var]uint32 // frame offsets of locals and by-value formals
	params map[*ir.Var]uint32 // wasm parameter index of every formal
	fp     uint32             // local index of the frame pointer
	size   uint32
}

func (fb *funcBuilder) alloc(v *ir.Var) {
	if _, ok := fb.slots[v]; ok {
		return
	}
	fb.slots[v] = fb.size
	fb.size += slotSize
}

// prologue reserves the frame, traps on stack exhaustion and spills the
// by-value formals into their slots.
func (fb *funcBuilder) prologue() {
	c := fb.code
	c.OpU32(enc.OpGlobalGet, spGlobal)
	c.I32Const(int32(fb.size))
	c.Op(enc.OpI32Sub)
	c.OpU32(enc.OpLocalSet, fb.fp)
	c.OpU32(enc.OpLocalGet, fb.fp)
	c.OpU32(enc.OpGlobalSet, spGlobal)

	c.OpU32(enc.OpLocalGet, fb.fp)
	c.I32Const(int32(fb.gen.stackLimit))
	c.Op(enc.OpI32LtU)
	c.Block(enc.OpIf)
	c.Op(enc.OpUnreachable)
	c.Op(enc.OpEnd)

	for _, p := range fb.fn.Formals {
		if p.Intent != ir.IntentIn {
			continue
		}
		c.OpU32(enc.OpLocalGet, fb.fp)
		c.OpU32(enc.OpLocalGet, fb.params[p.Var])
		c.Mem(enc.OpI64Store, fb.slots[p.Var])
	}
}

// epilogue releases the frame.
func (fb *funcBuilder) epilogue() {
	c := fb.code
	c.OpU32(enc.OpLocalGet, fb.fp)
	c.I32Const(int32(fb.size))
	c.Op(enc.OpI32Add)
	c.OpU32(enc.OpGlobalSet, spGlobal)
}

// address pushes the base address of v and returns the offset to add.
func (fb *funcBuilder) address(v *ir.Var) (uint32, error) {
	if addr, ok := fb.gen.globals[v]; ok {
		fb.code.I32Const(0)
		return addr, nil
	}
	if off, ok := fb.slots[v]; ok {
		fb.code.OpU32(enc.OpLocalGet, fb.fp)
		return off, nil
	}
	if idx, ok := fb.params[v]; ok {
		fb.code.OpU32(enc.OpLocalGet, idx)
		return 0, nil
	}
	where := "module initializer"
	if fb.fn != nil {
		where = fb.fn.Name
	}
	return 0, errors.Invariant(errors.PhaseCodegen, "variable $%s is not reachable from %s", v.Name, where)
}

func (fb *funcBuilder) load(v *ir.Var) error {
	off, err := fb.address(v)
	if err != nil {
		return err
	}
	fb.code.Mem(enc.OpI64Load, off)
	return nil
}

func (fb *funcBuilder) store(v *ir.Var, value ir.Expr) error {
	off, err := fb.address(v)
	if err != nil {
		return err
	}
	if value == nil {
		fb.code.I64Const(0)
	} else if err := fb.expr(value); err != nil {
		return err
	}
	fb.code.Mem(enc.OpI64Store, off)
	return nil
}

// addressOf pushes the absolute address of v.
func (fb *funcBuilder) addressOf(v *ir.Var) error {
	off, err := fb.address(v)
	if err != nil {
		return err
	}
	if off != 0 {
		fb.code.I32Const(int32(off))
		fb.code.Op(enc.OpI32Add)
	}
	return nil
}

func (fb *funcBuilder) stmts(list []ir.Stmt) error {
	for _, s := range list {
		if err := fb.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fb *funcBuilder) stmt(s ir.Stmt) error {
	c := fb.code
	switch s := s.(type) {
	case *ir.VarDecl:
		return fb.store(s.Var, s.Init)

	case *ir.Assign:
		v, ok := s.Target.Sym.(*ir.Var)
		if !ok {
			return errors.Invariant(errors.PhaseCodegen, "assignment to function $%s", s.Target.Sym.SymbolName())
		}
		return fb.store(v, s.Value)

	case *ir.ExprStmt:
		if err := fb.expr(s.X); err != nil {
			return err
		}
		if ir.TypeOf(s.X) != ir.TypeVoid {
			c.Op(enc.OpDrop)
		}

	case *ir.If:
		if err := fb.cond(s.Cond); err != nil {
			return err
		}
		c.Block(enc.OpIf)
		if err := fb.stmts(s.Then.Stmts); err != nil {
			return err
		}
		if s.Else != nil {
			c.Op(enc.OpElse)
			if err := fb.stmts(s.Else.Stmts); err != nil {
				return err
			}
		}
		c.Op(enc.OpEnd)

	case *ir.While:
		c.Block(enc.OpBlock)
		c.Block(enc.OpLoop)
		if err := fb.cond(s.Cond); err != nil {
			return err
		}
		c.Op(enc.OpI32Eqz)
		c.OpU32(enc.OpBrIf, 1)
		if err := fb.stmts(s.Body.Stmts); err != nil {
			return err
		}
		c.OpU32(enc.OpBr, 0)
		c.Op(enc.OpEnd)
		c.Op(enc.OpEnd)

	case *ir.Return:
		if s.Value != nil {
			if err := fb.expr(s.Value); err != nil {
				return err
			}
		}
		fb.epilogue()
		c.Op(enc.OpReturn)

	case *ir.Print:
		if err := fb.expr(s.Value); err != nil {
			return err
		}
		c.OpU32(enc.OpCall, printIndex)

	case *ir.FuncDef:
		return errors.Unsupported(errors.PhaseCodegen, "nested function $"+s.Func.QualifiedName())

	default:
		return errors.Invariant(errors.PhaseCodegen, "unknown statement %T", s)
	}
	return nil
}

// cond lowers a boolean expression to an i32.
func (fb *funcBuilder) cond(e ir.Expr) error {
	if err := fb.expr(e); err != nil {
		return err
	}
	fb.code.Op(enc.OpI32WrapI64)
	return nil
}

var binaryOps = map[ir.Op]byte{
	ir.OpAdd: enc.OpI64Add,
	ir.OpSub: enc.OpI64Sub,
	ir.OpMul: enc.OpI64Mul,
	ir.OpDiv: enc.OpI64DivS,
	ir.OpRem: enc.OpI64RemS,
	ir.OpEq:  enc.OpI64Eq,
	ir.OpNe:  enc.OpI64Ne,
	ir.OpLt:  enc.OpI64LtS,
	ir.OpLe:  enc.OpI64LeS,
	ir.OpGt:  enc.OpI64GtS,
	ir.OpGe:  enc.OpI64GeS,
	ir.OpAnd: enc.OpI64And,
	ir.OpOr:  enc.OpI64Or,
}

func (fb *funcBuilder) expr(e ir.Expr) error {
	c := fb.code
	switch e := e.(type) {
	case *ir.IntLit:
		c.I64Const(e.Value)

	case *ir.BoolLit:
		if e.Value {
			c.I64Const(1)
		} else {
			c.I64Const(0)
		}

	case *ir.Ref:
		v, ok := e.Sym.(*ir.Var)
		if !ok {
			return errors.Invariant(errors.PhaseCodegen, "function $%s used as a value", e.Sym.SymbolName())
		}
		return fb.load(v)

	case *ir.Call:
		return fb.call(e)

	case *ir.Unary:
		if e.Op == ir.OpNeg {
			c.I64Const(0)
			if err := fb.expr(e.X); err != nil {
				return err
			}
			c.Op(enc.OpI64Sub)
			return nil
		}
		if err := fb.expr(e.X); err != nil {
			return err
		}
		c.Op(enc.OpI64Eqz)
		c.Op(enc.OpI64ExtendU)

	case *ir.Binary:
		op, ok := binaryOps[e.Op]
		if !ok {
			return errors.Invariant(errors.PhaseCodegen, "unknown operator %s", e.Op)
		}
		if err := fb.expr(e.X); err != nil {
			return err
		}
		if err := fb.expr(e.Y); err != nil {
			return err
		}
		c.Op(op)
		if e.Op.IsComparison() {
			c.Op(enc.OpI64ExtendU)
		}

	default:
		return errors.Invariant(errors.PhaseCodegen, "unknown expression %T", e)
	}
	return nil
}

func (fb *funcBuilder) call(e *ir.Call) error {
	f, ok := ir.CallTarget(e)
	if !ok {
		return errors.Invariant(errors.PhaseCodegen, "call without a function target")
	}
	idx, ok := fb.gen.funcs[f]
	if !ok {
		return errors.NotFound(errors.PhaseCodegen, "module-level function", "$"+f.QualifiedName())
	}
	if len(e.Args) != len(f.Formals) {
		return errors.Invariant(errors.PhaseCodegen, "call to $%s has %d arguments for %d formals",
			f.Name, len(e.Args), len(f.Formals))
	}
	for i, a := range e.Args {
		if f.Formals[i].Intent == ir.IntentRef {
			v, ok := ir.VarRef(a)
			if !ok {
				return errors.Invariant(errors.PhaseCodegen, "argument %d of $%s must be a variable", i+1, f.Name)
			}
			if err := fb.addressOf(v); err != nil {
				return err
			}
			continue
		}
		if err := fb.expr(a); err != nil {
			return err
		}
	}
	fb.code.OpU32(enc.OpCall, idx)
	return nil
}
