package lift

import (
	"go.uber.org/zap"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

// PostStmt hoists nested function definitions. Other statements are left
// alone.
func (p *Pass) PostStmt(c *ir.Cursor) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	def, ok := c.Stmt().(*ir.FuncDef)
	if !ok || !def.Func.IsNested() {
		return nil
	}
	return p.hoist(c, def)
}

func (p *Pass) hoist(c *ir.Cursor, def *ir.FuncDef) error {
	fn := def.Func
	set, ok := p.captures[fn]
	if !ok {
		return errors.Invariant(errors.PhaseRewrite,
			"nested function %s is missing from the capture analysis", fn.QualifiedName())
	}
	if _, dup := p.hoisted[fn]; dup {
		return errors.Invariant(errors.PhaseRewrite, "%s hoisted twice", fn.QualifiedName())
	}
	mod := fn.Module()
	if mod == nil {
		return errors.Invariant(errors.PhaseRewrite,
			"nested function %s has no owning module", fn.QualifiedName())
	}

	clone := ir.CloneDef(def)
	nf := clone.Func
	nf.Name = mod.UniqueName(fn.QualifiedName())
	nf.Reparent(mod.Scope)

	vars := set.Vars()
	if len(vars) > 0 {
		subst := make(map[ir.Symbol]ir.Symbol, len(vars))
		for _, v := range vars {
			subst[v] = nf.AddFormal(v.Name, ir.IntentRef, v.Type)
		}
		ir.Substitute(nf.Body, subst)
		p.stats.FormalsAdded += len(vars)
	}

	mod.Append(clone)
	p.emitted = append(p.emitted, clone)
	p.hoisted[fn] = nf
	p.stats.Hoisted++

	p.log.Debug("hoisted function",
		zap.String("func", fn.QualifiedName()),
		zap.String("as", nf.Name),
		zap.Strings("captures", set.Names()))

	if _, waiting := p.pending[fn]; waiting {
		n := p.backpatch(fn)
		p.log.Debug("backpatched forward calls",
			zap.String("func", fn.QualifiedName()),
			zap.Int("refs", n))
	}

	c.Delete()
	return nil
}
