package interp

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

const (
	defaultStepLimit = 50_000_000
	maxCallDepth     = 10_000
	ctxCheckInterval = 4096
)

type config struct {
	out       io.Writer
	stepLimit int
}

// Option configures a run.
type Option func(*config)

// WithStepLimit caps the number of statements and calls executed.
func WithStepLimit(n int) Option {
	return func(c *config) {
		c.stepLimit = n
	}
}

// WithOutput writes every printed value to w, one per line, in addition to
// collecting it in Result.Output.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.out = w
	}
}

// Result is the outcome of a run.
type Result struct {
	Output []int64
	Value  int64
	Steps  int
}

type cell struct {
	v int64
}

type frame struct {
	fn    *ir.Func
	link  *frame
	cells map[*ir.Var]*cell
	ret   int64
}

type machine struct {
	ctx     context.Context
	cfg     config
	globals map[*ir.Var]*cell
	res     *Result
	depth   int
}

// Run initializes the globals of every module in order and calls entry with
// args. Entry is a module-level function name, optionally qualified by its
// module as "module.func".
func Run(ctx context.Context, prog *ir.Program, entry string, args []int64, opts ...Option) (*Result, error) {
	cfg := config{stepLimit: defaultStepLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	fn, err := Lookup(prog, entry)
	if err != nil {
		return nil, err
	}
	if len(args) != len(fn.Formals) {
		return nil, errors.New(errors.PhaseRuntime, errors.KindArity).
			Symbol(entry).
			Detail("expected %d arguments, got %d", len(fn.Formals), len(args)).
			Build()
	}

	m := &machine{
		ctx:     ctx,
		cfg:     cfg,
		globals: make(map[*ir.Var]*cell),
		res:     &Result{},
	}
	for _, mod := range prog.Modules {
		for _, v := range mod.Globals() {
			m.globals[v] = &cell{}
		}
	}
	for _, mod := range prog.Modules {
		for _, s := range mod.Stmts {
			d, ok := s.(*ir.VarDecl)
			if !ok || d.Init == nil {
				continue
			}
			val, err := m.eval(nil, d.Init)
			if err != nil {
				return nil, err
			}
			m.globals[d.Var].v = val
		}
	}

	cells := make([]*cell, len(args))
	for i, a := range args {
		cells[i] = &cell{v: a}
	}
	val, err := m.invoke(fn, nil, cells)
	if err != nil {
		return nil, err
	}
	m.res.Value = val
	return m.res, nil
}

// Lookup finds a module-level function by "func" or "module.func".
func Lookup(prog *ir.Program, entry string) (*ir.Func, error) {
	if mod, name, ok := strings.Cut(entry, "."); ok {
		if m := prog.Module(mod); m != nil {
			if f := m.Func(name); f != nil {
				return f, nil
			}
		}
	}
	for _, m := range prog.Modules {
		if f := m.Func(entry); f != nil {
			return f, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseRuntime, "function", entry)
}

func (m *machine) step() error {
	m.res.Steps++
	if m.cfg.stepLimit > 0 && m.res.Steps > m.cfg.stepLimit {
		return errors.New(errors.PhaseRuntime, errors.KindLimit).
			Detail("step limit %d exceeded", m.cfg.stepLimit).
			Build()
	}
	if m.res.Steps%ctxCheckInterval == 0 {
		if err := m.ctx.Err(); err != nil {
			return errors.Wrap(errors.PhaseRuntime, errors.KindLimit, err, "interrupted")
		}
	}
	return nil
}

// lookup returns the cell of v as seen from fr.
func (m *machine) lookup(fr *frame, v *ir.Var) (*cell, error) {
	if v.IsGlobal() {
		if c, ok := m.globals[v]; ok {
			return c, nil
		}
		return nil, errors.Trap(errors.PhaseRuntime, "global $%s is not part of the program", v.Name)
	}
	owner := v.Scope.Func
	for f := fr; f != nil; f = f.link {
		if f.fn == owner {
			if c, ok := f.cells[v]; ok {
				return c, nil
			}
			break
		}
	}
	return nil, errors.Trap(errors.PhaseRuntime, "$%s is not live here", v.Name)
}

// staticLink returns the activation of fn's enclosing function reachable
// from the caller's frame.
func (m *machine) staticLink(caller *frame, fn *ir.Func) (*frame, error) {
	outer := fn.EnclosingFunc()
	if outer == nil {
		return nil, nil
	}
	for f := caller; f != nil; f = f.link {
		if f.fn == outer {
			return f, nil
		}
	}
	return nil, errors.Trap(errors.PhaseRuntime, "no active frame of %s for call to %s",
		outer.QualifiedName(), fn.QualifiedName())
}

func (m *machine) invoke(fn *ir.Func, link *frame, args []*cell) (int64, error) {
	if err := m.step(); err != nil {
		return 0, err
	}
	if m.depth >= maxCallDepth {
		return 0, errors.New(errors.PhaseRuntime, errors.KindLimit).
			Symbol(fn.Name).
			Detail("call depth %d exceeded", maxCallDepth).
			Build()
	}
	m.depth++
	defer func() { m.depth-- }()

	fr := &frame{fn: fn, link: link, cells: make(map[*ir.Var]*cell, len(fn.Formals))}
	for i, p := range fn.Formals {
		fr.cells[p.Var] = args[i]
	}
	if _, err := m.block(fr, fn.Body.Stmts); err != nil {
		return 0, err
	}
	return fr.ret, nil
}

func (m *machine) call(fr *frame, c *ir.Call) (int64, error) {
	fn, ok := ir.CallTarget(c)
	if !ok {
		return 0, errors.Invariant(errors.PhaseRuntime, "call without a function target")
	}
	if len(c.Args) != len(fn.Formals) {
		return 0, errors.New(errors.PhaseRuntime, errors.KindArity).
			Symbol(fn.Name).
			Detail("expected %d arguments, got %d", len(fn.Formals), len(c.Args)).
			Build()
	}
	args := make([]*cell, len(c.Args))
	for i, a := range c.Args {
		if fn.Formals[i].Intent == ir.IntentRef {
			v, ok := ir.VarRef(a)
			if !ok {
				return 0, errors.Trap(errors.PhaseRuntime, "argument %d of %s must be a variable", i+1, fn.Name)
			}
			cl, err := m.lookup(fr, v)
			if err != nil {
				return 0, err
			}
			args[i] = cl
			continue
		}
		val, err := m.eval(fr, a)
		if err != nil {
			return 0, err
		}
		args[i] = &cell{v: val}
	}
	link, err := m.staticLink(fr, fn)
	if err != nil {
		return 0, err
	}
	return m.invoke(fn, link, args)
}

// block runs stmts and reports whether a return was executed.
func (m *machine) block(fr *frame, stmts []ir.Stmt) (bool, error) {
	for _, s := range stmts {
		done, err := m.stmt(fr, s)
		if err != nil || done {
			return done, err
		}
	}
	return false, nil
}

func (m *machine) stmt(fr *frame, s ir.Stmt) (bool, error) {
	if err := m.step(); err != nil {
		return false, err
	}
	switch s := s.(type) {
	case *ir.VarDecl:
		c := &cell{}
		if s.Init != nil {
			val, err := m.eval(fr, s.Init)
			if err != nil {
				return false, err
			}
			c.v = val
		}
		fr.cells[s.Var] = c

	case *ir.Assign:
		val, err := m.eval(fr, s.Value)
		if err != nil {
			return false, err
		}
		v, ok := s.Target.Sym.(*ir.Var)
		if !ok {
			return false, errors.Invariant(errors.PhaseRuntime, "assignment to %s", s.Target.Sym.SymbolName())
		}
		c, err := m.lookup(fr, v)
		if err != nil {
			return false, err
		}
		c.v = val

	case *ir.ExprStmt:
		if _, err := m.eval(fr, s.X); err != nil {
			return false, err
		}

	case *ir.If:
		cond, err := m.eval(fr, s.Cond)
		if err != nil {
			return false, err
		}
		if cond != 0 {
			return m.block(fr, s.Then.Stmts)
		}
		if s.Else != nil {
			return m.block(fr, s.Else.Stmts)
		}

	case *ir.While:
		for {
			if err := m.step(); err != nil {
				return false, err
			}
			cond, err := m.eval(fr, s.Cond)
			if err != nil {
				return false, err
			}
			if cond == 0 {
				break
			}
			done, err := m.block(fr, s.Body.Stmts)
			if err != nil || done {
				return done, err
			}
		}

	case *ir.Return:
		if s.Value != nil {
			val, err := m.eval(fr, s.Value)
			if err != nil {
				return false, err
			}
			fr.ret = val
		}
		return true, nil

	case *ir.Print:
		val, err := m.eval(fr, s.Value)
		if err != nil {
			return false, err
		}
		m.res.Output = append(m.res.Output, val)
		if m.cfg.out != nil {
			if _, err := io.WriteString(m.cfg.out, strconv.FormatInt(val, 10)+"\n"); err != nil {
				return false, errors.Wrap(errors.PhaseRuntime, errors.KindTrap, err, "write output")
			}
		}

	case *ir.FuncDef:
		// definitions have no run-time effect
	}
	return false, nil
}

func (m *machine) eval(fr *frame, e ir.Expr) (int64, error) {
	switch e := e.(type) {
	case *ir.IntLit:
		return e.Value, nil
	case *ir.BoolLit:
		return boolValue(e.Value), nil
	case *ir.Ref:
		v, ok := e.Sym.(*ir.Var)
		if !ok {
			return 0, errors.Invariant(errors.PhaseRuntime, "function %s used as a value", e.Sym.SymbolName())
		}
		c, err := m.lookup(fr, v)
		if err != nil {
			return 0, err
		}
		return c.v, nil
	case *ir.Call:
		return m.call(fr, e)
	case *ir.Unary:
		x, err := m.eval(fr, e.X)
		if err != nil {
			return 0, err
		}
		if e.Op == ir.OpNot {
			return boolValue(x == 0), nil
		}
		return -x, nil
	case *ir.Binary:
		return m.binary(fr, e)
	}
	return 0, errors.Invariant(errors.PhaseRuntime, "unknown expression %T", e)
}

func (m *machine) binary(fr *frame, e *ir.Binary) (int64, error) {
	x, err := m.eval(fr, e.X)
	if err != nil {
		return 0, err
	}
	y, err := m.eval(fr, e.Y)
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case ir.OpAdd:
		return x + y, nil
	case ir.OpSub:
		return x - y, nil
	case ir.OpMul:
		return x * y, nil
	case ir.OpDiv, ir.OpRem:
		if y == 0 {
			return 0, errors.Trap(errors.PhaseRuntime, "integer divide by zero")
		}
		if e.Op == ir.OpRem {
			return x % y, nil
		}
		if x == math.MinInt64 && y == -1 {
			return 0, errors.Trap(errors.PhaseRuntime, "integer overflow")
		}
		return x / y, nil
	case ir.OpEq:
		return boolValue(x == y), nil
	case ir.OpNe:
		return boolValue(x != y), nil
	case ir.OpLt:
		return boolValue(x < y), nil
	case ir.OpLe:
		return boolValue(x <= y), nil
	case ir.OpGt:
		return boolValue(x > y), nil
	case ir.OpGe:
		return boolValue(x >= y), nil
	case ir.OpAnd:
		return boolValue(x != 0 && y != 0), nil
	case ir.OpOr:
		return boolValue(x != 0 || y != 0), nil
	}
	return 0, errors.Invariant(errors.PhaseRuntime, "unknown operator %s", e.Op)
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
