package lift

import (
	"github.com/wippyai/lambdalift/ir"
)

// PostExpr rewrites calls to nested functions: the callee's captured
// variables are appended as actual arguments, in capture order, and the
// callee is retargeted to the hoisted copy if it exists yet. Otherwise the
// callee is recorded so that hoisting it later patches the call.
func (p *Pass) PostExpr(e ir.Expr) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	call, ok := e.(*ir.Call)
	if !ok {
		return nil
	}
	target, ok := ir.CallTarget(call)
	if !ok {
		return nil
	}
	set, ok := p.captures[target]
	if !ok {
		return nil
	}

	for _, v := range set.vars {
		call.Args = append(call.Args, &ir.Ref{Sym: v})
	}
	p.stats.ArgsAdded += set.Len()
	p.stats.CallsRewritten++

	if nf, ok := p.hoisted[target]; ok {
		call.Callee = &ir.Ref{Sym: nf}
	} else {
		p.pending[target] = append(p.pending[target], call)
	}
	return nil
}
