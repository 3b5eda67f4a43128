package lift

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

func TestCaptureSet(t *testing.T) {
	scope := ir.NewScope(nil, nil)
	a := ir.NewVar("a", ir.TypeInt, scope)
	b := ir.NewVar("b", ir.TypeInt, scope)

	s := newCaptureSet()
	if !s.Add(b) || !s.Add(a) {
		t.Fatal("Add() of new variables returned false")
	}
	if s.Add(b) {
		t.Error("Add() of a member returned true")
	}
	if got := s.Names(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Names() = %v, want insertion order [b a]", got)
	}

	o := newCaptureSet()
	o.Add(a)
	if !o.SubsetOf(s) || s.SubsetOf(o) {
		t.Error("SubsetOf() wrong")
	}
	if o.Equal(s) {
		t.Error("sets of different size are equal")
	}
	o.Add(b)
	if !o.Equal(s) {
		t.Error("sets with the same members in another order are not equal")
	}

	c := s.clone()
	c.Add(ir.NewVar("c", ir.TypeInt, scope))
	if s.Len() != 2 {
		t.Error("clone shares storage with the original")
	}
}

func TestAnalyzeDirectUses(t *testing.T) {
	prog := parse(t, `(module $m
  (var $global int 0)
  (func $f (param $p int)
    (var $x int 1)
    (var $unused int 2)
    (func $g
      (var $own int 3)
      (print (+ $own $global))
      (print (+ $x $p)))
    (call $g)))`)

	a, err := Analyze(ir.Functions(prog))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	g := nested(t, prog, "f.g")
	if got := captureNames(a, g); !slices.Equal(got, []string{"x", "p"}) {
		t.Errorf("captures of g = %v, want [x p]", got)
	}
	if _, ok := a.Lookup(nested(t, prog, "f")); ok {
		t.Error("module-level function has a capture entry")
	}
	if len(a.Nested) != 1 {
		t.Errorf("nested = %d, want 1", len(a.Nested))
	}
}

func TestAnalyzeTransitiveThroughCalls(t *testing.T) {
	prog := parse(t, `(module $m
  (func $f (result int)
    (var $x int 0)
    (func $g (call $h) (call $h))
    (func $h (set $x (+ $x 1)))
    (call $g)
    (return $x)))`)

	a, err := Analyze(ir.Functions(prog))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	g, h := nested(t, prog, "f.g"), nested(t, prog, "f.h")
	if got := captureNames(a, g); !slices.Equal(got, []string{"x"}) {
		t.Errorf("captures of g = %v, want [x]", got)
	}

	// g is scanned before h grows, so it catches up one sweep later
	if len(a.Sweeps) != 3 {
		t.Fatalf("sweeps = %d, want 3", len(a.Sweeps))
	}
	wantG := []int{0, 1, 1}
	wantH := []int{1, 1, 1}
	for i, sw := range a.Sweeps {
		if sw.Sizes[g] != wantG[i] || sw.Sizes[h] != wantH[i] {
			t.Errorf("sweep %d sizes g=%d h=%d, want g=%d h=%d", i+1, sw.Sizes[g], sw.Sizes[h], wantG[i], wantH[i])
		}
	}
	if last := a.Sweeps[len(a.Sweeps)-1]; last.Grown != 0 {
		t.Errorf("final sweep grew %d sets", last.Grown)
	}
}

func TestAnalyzeCallerKeepsOnlyOuterVariables(t *testing.T) {
	// g owns y, so the call to h inside g adds only x to g's captures
	prog := parse(t, `(module $m
  (func $f
    (var $x int 0)
    (func $g
      (var $y int 0)
      (func $h (print (+ $x $y)))
      (call $h))
    (call $g)))`)

	a, err := Analyze(ir.Functions(prog))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if got := captureNames(a, nested(t, prog, "f.g.h")); !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("captures of h = %v, want [x y]", got)
	}
	if got := captureNames(a, nested(t, prog, "f.g")); !slices.Equal(got, []string{"x"}) {
		t.Errorf("captures of g = %v, want [x]", got)
	}
}

func TestAnalyzeTransitivityHolds(t *testing.T) {
	prog := parse(t, mutualRecursion)
	a, err := Analyze(ir.Functions(prog))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	for _, f := range a.Nested {
		caller := a.Captures[f]
		ir.Inspect(f.Body, func(n ir.Node) bool {
			call, ok := n.(*ir.Call)
			if !ok {
				return true
			}
			callee, _ := ir.CallTarget(call)
			set, ok := a.Captures[callee]
			if !ok {
				return true
			}
			for _, v := range set.Vars() {
				if !f.Body.Scope.Contains(v.Scope) && !caller.Has(v) {
					t.Errorf("%s calls %s but does not capture %s", f.Name, callee.Name, v.Name)
				}
			}
			return true
		})
	}
}

func TestAnalyzeSweepLimit(t *testing.T) {
	prog := parse(t, `(module $m
  (func $f
    (var $x int 0)
    (func $g (call $h))
    (func $h (print $x))
    (call $g)))`)

	_, err := Analyze(ir.Functions(prog), WithMaxSweeps(1))
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindLimit {
		t.Fatalf("expected limit error, got %v", err)
	}
}

func TestAnalyzeRejectsDetachedNestedFunction(t *testing.T) {
	// an enclosing function whose scope chain never reaches a module
	outer := ir.NewFunc("outer", ir.NewScope(nil, nil), ir.TypeVoid)
	inner := ir.NewFunc("inner", outer.Body.Scope, ir.TypeVoid)

	_, err := Analyze([]*ir.Func{outer, inner})
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInvariant {
		t.Fatalf("expected invariant error, got %v", err)
	}
}
