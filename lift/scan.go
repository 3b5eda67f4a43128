package lift

import (
	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

// scanUses returns, in first-use order, the enclosing-scope variables that
// f's body uses: referenced directly anywhere in the body (including the
// bodies of functions nested in f), or captured by a nested function that
// the body calls, according to the current contents of captures.
//
// Module globals and variables declared inside f are never captures.
func scanUses(f *ir.Func, captures CaptureMap) ([]*ir.Var, error) {
	own := f.Body.Scope
	seen := make(map[*ir.Var]struct{})
	var uses []*ir.Var
	var err error

	add := func(v *ir.Var) {
		if v.Scope == nil {
			err = errors.Invariant(errors.PhaseAnalyze,
				"variable %s used in %s has no scope", v.Name, f.QualifiedName())
			return
		}
		if v.IsGlobal() || own.Contains(v.Scope) {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		if !v.Scope.Contains(own) {
			err = errors.Invariant(errors.PhaseAnalyze,
				"variable %s is not visible in %s", v.Name, f.QualifiedName())
			return
		}
		seen[v] = struct{}{}
		uses = append(uses, v)
	}

	ir.Inspect(f.Body, func(n ir.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *ir.Ref:
			if v, ok := n.Sym.(*ir.Var); ok {
				add(v)
			}
		case *ir.Call:
			if g, ok := ir.CallTarget(n); ok {
				if set, ok := captures[g]; ok {
					for _, v := range set.vars {
						add(v)
					}
				}
			}
		}
		return err == nil
	})
	return uses, err
}
