package wasmgen

import (
	"go.uber.org/zap"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
	enc "github.com/wippyai/lambdalift/wasmgen/internal/encoder"
)

const (
	// HostModule and PrintName name the imported print function.
	HostModule = "env"
	PrintName  = "print"

	// MemoryPages is the size of linear memory; the stack starts at its end.
	MemoryPages = 16

	pageSize    = 65536
	slotSize    = 8
	globalsBase = 8
	printIndex  = 0
	spGlobal    = 0
)

// Compile lowers m to a WebAssembly binary.
func Compile(m *ir.Module) ([]byte, error) {
	if m == nil {
		return nil, errors.Invariant(errors.PhaseCodegen, "nil module")
	}
	if err := checkFlat(m); err != nil {
		return nil, err
	}

	g := &generator{
		mod:     m,
		out:     &enc.Module{MemoryPages: MemoryPages},
		funcs:   make(map[*ir.Func]uint32),
		globals: make(map[*ir.Var]uint32),
	}
	if err := g.layout(); err != nil {
		return nil, err
	}
	for _, f := range m.Funcs() {
		if err := g.function(f); err != nil {
			return nil, err
		}
	}
	if err := g.start(); err != nil {
		return nil, err
	}

	bin := enc.Encode(g.out)
	Logger().Debug("compiled module",
		zap.String("module", m.Name),
		zap.Int("functions", len(g.out.Funcs)),
		zap.Int("globals", len(g.globals)),
		zap.Int("bytes", len(bin)))
	return bin, nil
}

// checkFlat rejects modules that still define functions inside functions.
func checkFlat(m *ir.Module) error {
	var err error
	for _, s := range m.Stmts {
		ir.Inspect(s, func(n ir.Node) bool {
			if def, ok := n.(*ir.FuncDef); ok && def.Func.IsNested() && err == nil {
				err = errors.New(errors.PhaseCodegen, errors.KindUnsupported).
					Line(def.Line).
					Symbol("$" + def.Func.QualifiedName()).
					Detail("nested function definitions are not supported, run the lift pass first").
					Build()
			}
			return err == nil
		})
	}
	return err
}

type generator struct {
	mod        *ir.Module
	out        *enc.Module
	funcs      map[*ir.Func]uint32
	globals    map[*ir.Var]uint32
	stackLimit uint32
}

func valueType(intent ir.Intent) byte {
	if intent == ir.IntentRef {
		return enc.ValI32
	}
	return enc.ValI64
}

func signature(f *ir.Func) enc.FuncType {
	ft := enc.FuncType{Params: make([]byte, len(f.Formals))}
	for i, p := range f.Formals {
		ft.Params[i] = valueType(p.Intent)
	}
	if f.Result != ir.TypeVoid {
		ft.Results = []byte{enc.ValI64}
	}
	return ft
}

// layout assigns function indices and global addresses and declares the
// import, the stack pointer and the function exports.
func (g *generator) layout() error {
	g.out.Imports = []enc.Import{{
		Module:  HostModule,
		Name:    PrintName,
		TypeIdx: g.out.TypeIndex(enc.FuncType{Params: []byte{enc.ValI64}}),
	}}

	addr := uint32(globalsBase)
	for _, v := range g.mod.Globals() {
		g.globals[v] = addr
		addr += slotSize
	}
	if addr > MemoryPages*pageSize/2 {
		return errors.New(errors.PhaseCodegen, errors.KindLimit).
			Detail("%d globals do not fit in memory", len(g.globals)).
			Build()
	}

	sp := &enc.Buffer{}
	sp.I32Const(MemoryPages * pageSize)
	sp.Op(enc.OpEnd)
	g.stackLimit = addr
	g.out.Globals = []enc.Global{{Type: enc.ValI32, Mutable: true, Init: sp.Bytes}}

	next := uint32(len(g.out.Imports))
	for _, f := range g.mod.Funcs() {
		g.funcs[f] = next
		g.out.Exports = append(g.out.Exports, enc.Export{Name: f.Name, Kind: enc.KindFunc, Idx: next})
		next++
	}
	return nil
}

// start emits a function running the global initializers, if there are any.
func (g *generator) start() error {
	fb := &funcBuilder{gen: g, code: &enc.Buffer{}, slots: map[*ir.Var]uint32{}}
	has := false
	for _, s := range g.mod.Stmts {
		d, ok := s.(*ir.VarDecl)
		if !ok || d.Init == nil {
			continue
		}
		has = true
		if err := fb.store(d.Var, d.Init); err != nil {
			return err
		}
	}
	if !has {
		return nil
	}
	fb.code.Op(enc.OpEnd)

	idx := uint32(len(g.out.Imports) + len(g.out.Funcs))
	g.out.Funcs = append(g.out.Funcs, g.out.TypeIndex(enc.FuncType{}))
	g.out.Code = append(g.out.Code, enc.Code{Body: fb.code.Bytes})
	g.out.Start = &idx
	return nil
}

func (g *generator) function(f *ir.Func) error {
	fb := &funcBuilder{
		gen:    g,
		fn:     f,
		code:   &enc.Buffer{},
		slots:  make(map[*ir.Var]uint32),
		params: make(map[*ir.Var]uint32),
		fp:     uint32(len(f.Formals)),
	}

	for i, p := range f.Formals {
		fb.params[p.Var] = uint32(i)
		if p.Intent == ir.IntentIn {
			fb.alloc(p.Var)
		}
	}
	ir.Inspect(f.Body, func(n ir.Node) bool {
		if d, ok := n.(*ir.VarDecl); ok {
			fb.alloc(d.Var)
		}
		return true
	})

	fb.prologue()
	if err := fb.stmts(f.Body.Stmts); err != nil {
		return err
	}
	fb.epilogue()
	if f.Result != ir.TypeVoid {
		fb.code.I64Const(0)
	}
	fb.code.Op(enc.OpEnd)

	g.out.Funcs = append(g.out.Funcs, g.out.TypeIndex(signature(f)))
	g.out.Code = append(g.out.Code, enc.Code{
		Locals: []enc.Local{{Count: 1, Type: enc.ValI32}},
		Body:   fb.code.Bytes,
	})
	return nil
}
