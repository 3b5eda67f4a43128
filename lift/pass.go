package lift

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

// Stats counts what a pass did.
type Stats struct {
	Nested         int // nested functions found by the analysis
	Sweeps         int // fixpoint sweeps, including the final unchanged one
	Hoisted        int // definitions moved to module level
	FormalsAdded   int // ref formals synthesized on hoisted functions
	CallsRewritten int // calls that received capture arguments or a new target
	ArgsAdded      int // capture arguments appended to calls
	Backpatches    int // replays of the symbol map after a forward call
}

// Result is the outcome of a completed pass.
type Result struct {
	Analysis *Analysis
	// Hoisted maps each original nested function to its module-level copy.
	Hoisted map[*ir.Func]*ir.Func
	// Emitted lists the hoisted definitions in the order they were appended.
	Emitted []*ir.FuncDef
	Stats   Stats
}

// Pass lifts nested functions. It is an ir.Visitor: construct it with New,
// drive it with ir.Walk and close it with Finish. Run does all three.
//
// A Pass is not safe for concurrent use and cannot be reused.
type Pass struct {
	log      *zap.Logger
	analysis *Analysis
	captures CaptureMap

	hoisted map[*ir.Func]*ir.Func    // original -> hoisted
	pending map[*ir.Func][]*ir.Call // visited calls waiting for their target
	emitted []*ir.FuncDef

	stats Stats
	done  bool
}

// New analyzes prog and returns a pass ready to rewrite it. The capture map
// is computed here and does not change afterwards.
func New(prog *ir.Program, opts ...Option) (*Pass, error) {
	if prog == nil {
		return nil, errors.Invariant(errors.PhaseAnalyze, "nil program")
	}
	cfg := newConfig(opts)

	a, err := Analyze(ir.Functions(prog), opts...)
	if err != nil {
		return nil, err
	}

	p := &Pass{
		log:      cfg.logger,
		analysis: a,
		captures: a.Captures,
		hoisted:  make(map[*ir.Func]*ir.Func),
		pending:  make(map[*ir.Func][]*ir.Call),
	}
	p.stats.Nested = len(a.Nested)
	p.stats.Sweeps = len(a.Sweeps)
	return p, nil
}

// Analysis returns the frozen capture analysis.
func (p *Pass) Analysis() *Analysis {
	return p.analysis
}

// Captures returns the variables f captures, in formal order.
func (p *Pass) Captures(f *ir.Func) []*ir.Var {
	if set, ok := p.captures[f]; ok {
		return set.Vars()
	}
	return nil
}

// Hoisted returns the module-level replacement of f once it has been lifted.
func (p *Pass) Hoisted(f *ir.Func) (*ir.Func, bool) {
	nf, ok := p.hoisted[f]
	return nf, ok
}

// Finish closes the pass. Every function a rewritten call waited for must
// have been hoisted by now.
func (p *Pass) Finish() (*Result, error) {
	if p.done {
		return nil, errors.Invariant(errors.PhaseRewrite, "pass already finished")
	}
	p.done = true

	if len(p.pending) > 0 {
		names := make([]string, 0, len(p.pending))
		for f := range p.pending {
			names = append(names, f.QualifiedName())
		}
		sort.Strings(names)
		return nil, errors.Invariant(errors.PhaseRewrite,
			"calls to %v were rewritten but the functions were never hoisted", names)
	}

	hoisted := make(map[*ir.Func]*ir.Func, len(p.hoisted))
	for k, v := range p.hoisted {
		hoisted[k] = v
	}

	p.log.Debug("lift finished",
		zap.Int("hoisted", p.stats.Hoisted),
		zap.Int("calls", p.stats.CallsRewritten),
		zap.Int("backpatches", p.stats.Backpatches))

	return &Result{
		Analysis: p.analysis,
		Hoisted:  hoisted,
		Emitted:  append([]*ir.FuncDef(nil), p.emitted...),
		Stats:    p.stats,
	}, nil
}

// Run lifts every nested function of prog in place and verifies the result.
func Run(prog *ir.Program, opts ...Option) (*Result, error) {
	p, err := New(prog, opts...)
	if err != nil {
		return nil, err
	}
	if err := ir.Walk(prog, p); err != nil {
		return nil, err
	}
	res, err := p.Finish()
	if err != nil {
		return nil, err
	}
	if err := Verify(prog, res.Hoisted); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pass) checkOpen() error {
	if p.done {
		return errors.Invariant(errors.PhaseRewrite, "pass used after Finish")
	}
	return nil
}

// backpatch retargets the calls that were rewritten before fn was hoisted.
// Copies of them live in definitions already emitted, which get the whole
// original-to-hoisted map replayed over them. The calls themselves have
// been visited and are retargeted in place; nothing the walk has not
// reached yet is touched.
func (p *Pass) backpatch(fn *ir.Func) int {
	subst := make(map[ir.Symbol]ir.Symbol, len(p.hoisted))
	for from, to := range p.hoisted {
		subst[from] = to
	}
	n := 0
	for _, def := range p.emitted {
		n += ir.Substitute(def, subst)
	}
	nf := p.hoisted[fn]
	for _, call := range p.pending[fn] {
		call.Callee = &ir.Ref{Sym: nf}
		n++
	}
	delete(p.pending, fn)
	p.stats.Backpatches++
	return n
}
