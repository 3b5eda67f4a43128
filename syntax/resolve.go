package syntax

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

// forward tracks a function between the start of its block and its
// definition.
type forward struct {
	body    []*sexp
	defined bool
	used    bool
	useLine int
	useVars int
}

type binding struct {
	sym ir.Symbol
	fwd *forward
}

// block is a lexical block during resolution.
type block struct {
	parent *block
	scope  *ir.Scope
	names  map[string]*binding
	vars   []string
}

func newBlock(parent *block, scope *ir.Scope) *block {
	return &block{parent: parent, scope: scope, names: make(map[string]*binding)}
}

type resolver struct {
	mod   *ir.Module
	fn    *ir.Func
	blk   *block
	funcs map[*sexp]*ir.Func
}

func (r *resolver) path() []string {
	if r.fn == nil {
		return []string{r.mod.Name}
	}
	return []string{r.mod.Name, r.fn.QualifiedName()}
}

func resolveModule(form *sexp, defaultName string) (*ir.Module, error) {
	items := form.list[1:]
	name := defaultName
	if len(items) > 0 && items[0].isAtom() && isName(items[0]) {
		name = items[0].atom.Value[1:]
		items = items[1:]
	}

	m := ir.NewModule(name)
	r := &resolver{
		mod:   m,
		blk:   newBlock(nil, m.Scope),
		funcs: make(map[*sexp]*ir.Func),
	}
	stmts, err := r.stmts(items)
	if err != nil {
		return nil, err
	}
	m.Stmts = stmts
	return m, nil
}

// stmts resolves the statements of the current block. Functions are bound
// before any statement so that calls may precede definitions.
func (r *resolver) stmts(forms []*sexp) ([]ir.Stmt, error) {
	for _, f := range forms {
		if f.head() == "func" {
			if err := r.declareFunc(f); err != nil {
				return nil, err
			}
		}
	}
	out := make([]ir.Stmt, 0, len(forms))
	for _, f := range forms {
		s, err := r.stmt(f)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *resolver) nestedBlock(forms []*sexp) (*ir.Block, error) {
	outer := r.blk
	r.blk = newBlock(outer, ir.NewScope(outer.scope, r.fn))
	defer func() { r.blk = outer }()

	stmts, err := r.stmts(forms)
	if err != nil {
		return nil, err
	}
	return &ir.Block{Scope: r.blk.scope, Stmts: stmts}, nil
}

func (r *resolver) bind(name string, line int, b *binding) error {
	if _, dup := r.blk.names[name]; dup {
		return errors.Duplicate(line, r.path(), "$"+name)
	}
	r.blk.names[name] = b
	return nil
}

func (r *resolver) declareFunc(f *sexp) error {
	list := f.list
	if len(list) < 2 || !isName(list[1]) {
		return syntaxError(f.line, "function name expected")
	}
	name := list[1].atom.Value[1:]
	fn := ir.NewFunc(name, r.blk.scope, ir.TypeVoid)
	fn.Def.Line = f.line

	formals := make(map[string]bool)
	i := 2
sig:
	for ; i < len(list); i++ {
		part := list[i]
		switch part.head() {
		case "param", "ref":
			if len(part.list) != 3 || !isName(part.list[1]) {
				return syntaxError(part.line, "expected (%s $name type)", part.head())
			}
			pname := part.list[1].atom.Value[1:]
			if formals[pname] {
				return errors.Duplicate(part.line, append(r.path(), name), "$"+pname)
			}
			formals[pname] = true
			typ, err := r.valueType(part.list[2])
			if err != nil {
				return err
			}
			intent := ir.IntentIn
			if part.head() == "ref" {
				intent = ir.IntentRef
			}
			fn.Formals = append(fn.Formals, &ir.Formal{
				Var:    ir.NewVar(pname, typ, fn.Body.Scope),
				Intent: intent,
			})
		case "result":
			if len(part.list) != 2 {
				return syntaxError(part.line, "expected (result type)")
			}
			typ, err := r.valueType(part.list[1])
			if err != nil {
				return err
			}
			fn.Result = typ
		default:
			break sig
		}
	}

	r.funcs[f] = fn
	return r.bind(name, f.line, &binding{sym: fn, fwd: &forward{body: list[i:]}})
}

func (r *resolver) defineFunc(f *sexp) (*ir.FuncDef, error) {
	fn := r.funcs[f]
	b := r.blk.names[fn.Name]
	fwd := b.fwd
	fwd.defined = true
	if fwd.used && len(r.blk.vars) > fwd.useVars {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Line(fwd.useLine).
			Path(r.path()...).
			Symbol("$"+fn.Name).
			Detail("called before $%s is declared, which it may capture", r.blk.vars[fwd.useVars]).
			Build()
	}

	outerFn, outerBlk := r.fn, r.blk
	r.fn = fn
	r.blk = newBlock(outerBlk, fn.Body.Scope)
	defer func() { r.fn, r.blk = outerFn, outerBlk }()

	for _, p := range fn.Formals {
		r.blk.names[p.Var.Name] = &binding{sym: p.Var}
	}
	stmts, err := r.stmts(fwd.body)
	if err != nil {
		return nil, err
	}
	fn.Body.Stmts = stmts
	return fn.Def, nil
}

func (r *resolver) stmt(s *sexp) (ir.Stmt, error) {
	if s.isAtom() {
		return nil, syntaxError(s.line, "expected statement, got %s", s)
	}
	h := s.head()
	switch h {
	case "var":
		return r.varDecl(s)
	case "func":
		return r.defineFunc(s)
	}
	if r.fn == nil {
		return nil, syntaxError(s.line, "%s is not allowed at module level", s)
	}

	switch h {
	case "set":
		if len(s.list) != 3 {
			return nil, syntaxError(s.line, "expected (set $name expr)")
		}
		v, err := r.variable(s.list[1])
		if err != nil {
			return nil, err
		}
		val, err := r.expr(s.list[2])
		if err != nil {
			return nil, err
		}
		if err := r.expect(s.line, v.Type, val); err != nil {
			return nil, err
		}
		return &ir.Assign{Target: &ir.Ref{Sym: v}, Value: val, Line: s.line}, nil

	case "call":
		call, err := r.call(s)
		if err != nil {
			return nil, err
		}
		return &ir.ExprStmt{X: call, Line: s.line}, nil

	case "if":
		return r.ifStmt(s)

	case "while":
		if len(s.list) < 2 {
			return nil, syntaxError(s.line, "expected (while cond stmt*)")
		}
		cond, err := r.cond(s.list[1])
		if err != nil {
			return nil, err
		}
		body, err := r.nestedBlock(s.list[2:])
		if err != nil {
			return nil, err
		}
		return &ir.While{Cond: cond, Body: body, Line: s.line}, nil

	case "return":
		ret := &ir.Return{Line: s.line}
		switch len(s.list) {
		case 1:
			if r.fn.Result != ir.TypeVoid {
				return nil, errors.TypeMismatch(s.line, r.path(), r.fn.Result.String(), "no value")
			}
		case 2:
			val, err := r.expr(s.list[1])
			if err != nil {
				return nil, err
			}
			if r.fn.Result == ir.TypeVoid {
				return nil, errors.TypeMismatch(s.line, r.path(), "no value", ir.TypeOf(val).String())
			}
			if err := r.expect(s.line, r.fn.Result, val); err != nil {
				return nil, err
			}
			ret.Value = val
		default:
			return nil, syntaxError(s.line, "expected (return expr?)")
		}
		return ret, nil

	case "print":
		if len(s.list) != 2 {
			return nil, syntaxError(s.line, "expected (print expr)")
		}
		val, err := r.expr(s.list[1])
		if err != nil {
			return nil, err
		}
		return &ir.Print{Value: val, Line: s.line}, nil
	}

	return nil, syntaxError(s.line, "unknown statement %s", s)
}

func (r *resolver) varDecl(s *sexp) (ir.Stmt, error) {
	if len(s.list) < 3 || len(s.list) > 4 || !isName(s.list[1]) {
		return nil, syntaxError(s.line, "expected (var $name type expr?)")
	}
	name := s.list[1].atom.Value[1:]
	typ, err := r.valueType(s.list[2])
	if err != nil {
		return nil, err
	}
	decl := &ir.VarDecl{Line: s.line}
	if len(s.list) == 4 {
		// the initializer cannot see the variable it initializes
		if decl.Init, err = r.expr(s.list[3]); err != nil {
			return nil, err
		}
		if err := r.expect(s.line, typ, decl.Init); err != nil {
			return nil, err
		}
	}
	decl.Var = ir.NewVar(name, typ, r.blk.scope)
	if err := r.bind(name, s.line, &binding{sym: decl.Var}); err != nil {
		return nil, err
	}
	r.blk.vars = append(r.blk.vars, name)
	return decl, nil
}

func (r *resolver) ifStmt(s *sexp) (ir.Stmt, error) {
	if len(s.list) < 3 || len(s.list) > 4 || s.list[2].head() != "then" {
		return nil, syntaxError(s.line, "expected (if cond (then stmt*) (else stmt*)?)")
	}
	cond, err := r.cond(s.list[1])
	if err != nil {
		return nil, err
	}
	then, err := r.nestedBlock(s.list[2].list[1:])
	if err != nil {
		return nil, err
	}
	stmt := &ir.If{Cond: cond, Then: then, Line: s.line}
	if len(s.list) == 4 {
		if s.list[3].head() != "else" {
			return nil, syntaxError(s.list[3].line, "expected (else stmt*)")
		}
		if stmt.Else, err = r.nestedBlock(s.list[3].list[1:]); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (r *resolver) cond(s *sexp) (ir.Expr, error) {
	e, err := r.expr(s)
	if err != nil {
		return nil, err
	}
	return e, r.expect(s.line, ir.TypeBool, e)
}

func (r *resolver) expr(s *sexp) (ir.Expr, error) {
	if s.isAtom() {
		return r.atom(s)
	}
	h := s.head()
	if h == "call" {
		call, err := r.call(s)
		if err != nil {
			return nil, err
		}
		if f, _ := ir.CallTarget(call); f.Result == ir.TypeVoid {
			return nil, errors.TypeMismatch(s.line, r.path(), "value", "call to void $"+f.Name)
		}
		return call, nil
	}

	op, ok := ir.LookupOp(h)
	if !ok {
		return nil, syntaxError(s.line, "unknown expression %s", s)
	}
	if op.IsUnary() {
		if len(s.list) != 2 {
			return nil, syntaxError(s.line, "%s takes one operand", op)
		}
		x, err := r.expr(s.list[1])
		if err != nil {
			return nil, err
		}
		if err := r.expect(s.line, op.Operand(), x); err != nil {
			return nil, err
		}
		return &ir.Unary{Op: op, X: x}, nil
	}

	if len(s.list) != 3 {
		return nil, syntaxError(s.line, "%s takes two operands", op)
	}
	x, err := r.expr(s.list[1])
	if err != nil {
		return nil, err
	}
	y, err := r.expr(s.list[2])
	if err != nil {
		return nil, err
	}
	want := op.Operand()
	if op == ir.OpEq || op == ir.OpNe {
		want = ir.TypeOf(x)
	}
	if err := r.expect(s.line, want, x); err != nil {
		return nil, err
	}
	if err := r.expect(s.line, want, y); err != nil {
		return nil, err
	}
	return &ir.Binary{Op: op, X: x, Y: y}, nil
}

func (r *resolver) atom(s *sexp) (ir.Expr, error) {
	t := s.atom
	switch {
	case t.Value == "true":
		return &ir.BoolLit{Value: true}, nil
	case t.Value == "false":
		return &ir.BoolLit{Value: false}, nil
	case isName(s):
		v, err := r.variable(s)
		if err != nil {
			return nil, err
		}
		return &ir.Ref{Sym: v}, nil
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(t.Value, "_", ""), 0, 64)
	if err != nil {
		return nil, syntaxError(s.line, "invalid expression %q", t.Value)
	}
	return &ir.IntLit{Value: n}, nil
}

func (r *resolver) call(s *sexp) (*ir.Call, error) {
	if len(s.list) < 2 || !isName(s.list[1]) {
		return nil, syntaxError(s.line, "expected (call $name expr*)")
	}
	sym, err := r.lookup(s.list[1])
	if err != nil {
		return nil, err
	}
	f, ok := sym.(*ir.Func)
	if !ok {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Line(s.line).Path(r.path()...).Symbol("$" + sym.SymbolName()).
			Detail("not a function").Build()
	}

	args := s.list[2:]
	if len(args) != len(f.Formals) {
		return nil, errors.New(errors.PhaseResolve, errors.KindArity).
			Line(s.line).Path(r.path()...).Symbol("$" + f.Name).
			Detail("expected %d arguments, got %d", len(f.Formals), len(args)).Build()
	}
	call := &ir.Call{Callee: &ir.Ref{Sym: f}, Args: make([]ir.Expr, len(args))}
	for i, a := range args {
		arg, err := r.expr(a)
		if err != nil {
			return nil, err
		}
		formal := f.Formals[i]
		if err := r.expect(a.line, formal.Var.Type, arg); err != nil {
			return nil, err
		}
		if _, isVar := ir.VarRef(arg); formal.Intent == ir.IntentRef && !isVar {
			return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Line(a.line).Path(r.path()...).Symbol("$" + f.Name).
				Detail("argument %d is passed by reference and must be a variable", i+1).Build()
		}
		call.Args[i] = arg
	}
	return call, nil
}

func (r *resolver) variable(s *sexp) (*ir.Var, error) {
	if !isName(s) {
		return nil, syntaxError(s.line, "variable name expected, got %s", s)
	}
	sym, err := r.lookup(s)
	if err != nil {
		return nil, err
	}
	v, ok := sym.(*ir.Var)
	if !ok {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Line(s.line).Path(r.path()...).Symbol(s.atom.Value).
			Detail("function used as a value").Build()
	}
	return v, nil
}

func (r *resolver) lookup(s *sexp) (ir.Symbol, error) {
	name := s.atom.Value[1:]
	for b := r.blk; b != nil; b = b.parent {
		bd, ok := b.names[name]
		if !ok {
			continue
		}
		if f := bd.fwd; f != nil && !f.defined && !f.used && b.scope.Func != nil {
			f.used, f.useLine, f.useVars = true, s.line, len(b.vars)
		}
		return bd.sym, nil
	}
	return nil, errors.Unresolved(s.line, r.path(), s.atom.Value, r.suggest(name))
}

// suggest returns the visible name closest to name, or "".
func (r *resolver) suggest(name string) string {
	var candidates []string
	seen := make(map[string]bool)
	for b := r.blk; b != nil; b = b.parent {
		for n := range b.names {
			if !seen[n] {
				seen[n] = true
				candidates = append(candidates, n)
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return "$" + ranks[0].Target
	}

	best, bestDist := "", 3
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return ""
	}
	return "$" + best
}

func (r *resolver) valueType(s *sexp) (ir.Type, error) {
	if s.isAtom() {
		if typ, ok := ir.LookupType(s.atom.Value); ok {
			return typ, nil
		}
	}
	return ir.TypeVoid, syntaxError(s.line, "unknown type %s", s)
}

func (r *resolver) expect(line int, want ir.Type, e ir.Expr) error {
	if got := ir.TypeOf(e); got != want {
		return errors.TypeMismatch(line, r.path(), want.String(), got.String())
	}
	return nil
}

func isName(s *sexp) bool {
	return s.atom != nil && len(s.atom.Value) > 1 && s.atom.Value[0] == '$'
}
