package lift

import (
	"go.uber.org/zap"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

// CaptureSet is an ordered, duplicate-free set of captured variables.
// Iteration order is the order in which variables were first added.
type CaptureSet struct {
	index map[*ir.Var]int
	vars  []*ir.Var
}

func newCaptureSet() *CaptureSet {
	return &CaptureSet{index: make(map[*ir.Var]int)}
}

// Add inserts v and reports whether it was not already present.
func (s *CaptureSet) Add(v *ir.Var) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.vars)
	s.vars = append(s.vars, v)
	return true
}

// Has reports whether v is in the set.
func (s *CaptureSet) Has(v *ir.Var) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of variables.
func (s *CaptureSet) Len() int {
	return len(s.vars)
}

// Vars returns the variables in insertion order. The slice must not be
// modified.
func (s *CaptureSet) Vars() []*ir.Var {
	return s.vars
}

// Names returns the variable names in insertion order.
func (s *CaptureSet) Names() []string {
	names := make([]string, len(s.vars))
	for i, v := range s.vars {
		names[i] = v.Name
	}
	return names
}

// SubsetOf reports whether every member of s is in o.
func (s *CaptureSet) SubsetOf(o *CaptureSet) bool {
	for _, v := range s.vars {
		if !o.Has(v) {
			return false
		}
	}
	return true
}

// Equal reports whether s and o have the same members, ignoring order.
func (s *CaptureSet) Equal(o *CaptureSet) bool {
	return s.Len() == o.Len() && s.SubsetOf(o)
}

func (s *CaptureSet) clone() *CaptureSet {
	c := &CaptureSet{
		index: make(map[*ir.Var]int, len(s.index)),
		vars:  make([]*ir.Var, len(s.vars)),
	}
	copy(c.vars, s.vars)
	for v, i := range s.index {
		c.index[v] = i
	}
	return c
}

// CaptureMap maps every nested function to the variables it captures.
// Functions defined at module level have no entry.
type CaptureMap map[*ir.Func]*CaptureSet

// SweepStats describes one fixpoint sweep.
type SweepStats struct {
	// Sizes holds each nested function's capture count after the sweep.
	Sizes map[*ir.Func]int
	// Grown counts the functions whose set changed during the sweep.
	Grown int
}

// Analysis is the frozen result of the capture fixpoint.
type Analysis struct {
	Captures CaptureMap
	Nested   []*ir.Func
	Sweeps   []SweepStats
}

// Analyze computes, for every nested function in funcs, the enclosing-scope
// variables it uses directly or through calls to other nested functions.
//
// The computation is a monotone fixpoint: sets start empty and each sweep
// rescans every nested function, adding what it finds. Sweeps are repeated
// until one leaves every set unchanged. Module-level functions in funcs are
// ignored.
func Analyze(funcs []*ir.Func, opts ...Option) (*Analysis, error) {
	cfg := newConfig(opts)
	a := &Analysis{Captures: make(CaptureMap)}

	for _, f := range funcs {
		if !f.IsNested() {
			continue
		}
		if _, dup := a.Captures[f]; dup {
			continue
		}
		if f.Module() == nil {
			return nil, errors.Invariant(errors.PhaseAnalyze,
				"nested function %s has no owning module", f.QualifiedName())
		}
		a.Nested = append(a.Nested, f)
		a.Captures[f] = newCaptureSet()
	}

	limit := cfg.maxSweeps
	if limit <= 0 {
		limit = sweepLimit(a.Nested)
	}

	for {
		if len(a.Sweeps) >= limit {
			return nil, errors.New(errors.PhaseAnalyze, errors.KindLimit).
				Detail("capture analysis did not converge after %d sweeps", limit).
				Build()
		}

		prev := make(map[*ir.Func]*CaptureSet, len(a.Nested))
		for _, f := range a.Nested {
			prev[f] = a.Captures[f].clone()
		}

		for _, f := range a.Nested {
			uses, err := scanUses(f, a.Captures)
			if err != nil {
				return nil, err
			}
			set := a.Captures[f]
			for _, v := range uses {
				set.Add(v)
			}
		}

		stats := SweepStats{Sizes: make(map[*ir.Func]int, len(a.Nested))}
		for _, f := range a.Nested {
			cur, old := a.Captures[f], prev[f]
			if !old.SubsetOf(cur) {
				return nil, errors.Invariant(errors.PhaseAnalyze,
					"capture set of %s shrank during sweep %d", f.QualifiedName(), len(a.Sweeps)+1)
			}
			if !old.Equal(cur) {
				stats.Grown++
			}
			stats.Sizes[f] = cur.Len()
		}
		a.Sweeps = append(a.Sweeps, stats)
		if stats.Grown == 0 {
			break
		}
	}

	cfg.logger.Debug("capture analysis converged",
		zap.Int("nested", len(a.Nested)),
		zap.Int("sweeps", len(a.Sweeps)))

	return a, nil
}

// Lookup returns f's capture set, or nil and false if f is not nested.
func (a *Analysis) Lookup(f *ir.Func) (*CaptureSet, bool) {
	set, ok := a.Captures[f]
	return set, ok
}

// sweepLimit bounds the number of sweeps: every sweep but the last adds at
// least one (function, variable) pair, and only variables referenced inside
// some nested function can ever be captured.
func sweepLimit(nested []*ir.Func) int {
	vars := make(map[*ir.Var]struct{})
	for _, f := range nested {
		ir.Inspect(f.Body, func(n ir.Node) bool {
			if r, ok := n.(*ir.Ref); ok {
				if v, ok := r.Sym.(*ir.Var); ok && !v.IsGlobal() {
					vars[v] = struct{}{}
				}
			}
			return true
		})
	}
	return len(nested)*len(vars) + 2
}
