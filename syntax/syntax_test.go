package syntax

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

const counter = `;; counter
(module $main
  (var $total int 0)
  (func $count (param $n int) (result int)
    (var $i int 0)
    (func $step
      (set $i (+ $i 1))
      (set $total (+ $total $i)))
    (while (< $i $n)
      (call $step))
    (return $i)))
`

func TestParse(t *testing.T) {
	prog, err := Parse("counter", counter)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(prog.Modules) != 1 {
		t.Fatalf("got %d modules, want 1", len(prog.Modules))
	}
	m := prog.Modules[0]
	if m.Name != "main" {
		t.Errorf("module name = %q, want main", m.Name)
	}
	if got := len(m.Globals()); got != 1 {
		t.Errorf("got %d globals, want 1", got)
	}

	count := m.Func("count")
	if count == nil {
		t.Fatal("count not found")
	}
	if count.Result != ir.TypeInt || len(count.Formals) != 1 {
		t.Errorf("count signature = %v %d formals", count.Result, len(count.Formals))
	}

	funcs := ir.Functions(prog)
	if len(funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(funcs))
	}
	step := funcs[1]
	if step.Name != "step" || step.EnclosingFunc() != count {
		t.Errorf("step = %s nested in %v", step.Name, step.EnclosingFunc())
	}

	// the reference to $i inside step binds to count's local
	assign := step.Body.Stmts[0].(*ir.Assign)
	v := assign.Target.Sym.(*ir.Var)
	if v.Scope != count.Body.Scope {
		t.Errorf("$i bound to scope of %v, want count", v.Scope.Func)
	}
	if assign.Line != 7 {
		t.Errorf("assign line = %d, want 7", assign.Line)
	}
}

func TestParseDefaultModuleName(t *testing.T) {
	prog, err := Parse("anon", "(module (func $f))")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if prog.Modules[0].Name != "anon" {
		t.Errorf("module name = %q, want anon", prog.Modules[0].Name)
	}
}

func TestParseForwardCall(t *testing.T) {
	src := `(module $m
  (func $f (result int)
    (var $x int 1)
    (call $g)
    (func $g (set $x 2))
    (return $x)))`
	prog, err := Parse("fwd", src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	f := prog.Modules[0].Func("f")
	call := f.Body.Stmts[1].(*ir.ExprStmt).X.(*ir.Call)
	g, _ := ir.CallTarget(call)
	if g.Def != f.Body.Stmts[2] {
		t.Error("forward call not bound to the later definition")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		phase errors.Phase
		kind  errors.Kind
		text  string
	}{
		{
			name:  "unknown_character",
			src:   "(module $m #)",
			phase: errors.PhaseParse,
			kind:  errors.KindSyntax,
		},
		{
			name:  "unclosed",
			src:   "(module $m (func $f)",
			phase: errors.PhaseParse,
			kind:  errors.KindSyntax,
		},
		{
			name:  "not_a_module",
			src:   "(func $f)",
			phase: errors.PhaseParse,
			kind:  errors.KindSyntax,
		},
		{
			name:  "statement_at_module_level",
			src:   "(module $m (print 1))",
			phase: errors.PhaseParse,
			kind:  errors.KindSyntax,
		},
		{
			name:  "unresolved_with_suggestion",
			src:   "(module $m (func $f (var $count int 0) (print $cnt)))",
			phase: errors.PhaseResolve,
			kind:  errors.KindUnresolved,
			text:  "did you mean $count?",
		},
		{
			name:  "variable_before_declaration",
			src:   "(module $m (func $f (print $x) (var $x int 0)))",
			phase: errors.PhaseResolve,
			kind:  errors.KindUnresolved,
		},
		{
			name:  "duplicate",
			src:   "(module $m (func $f (var $x int) (var $x int)))",
			phase: errors.PhaseResolve,
			kind:  errors.KindDuplicate,
		},
		{
			name:  "duplicate_function",
			src:   "(module $m (func $f) (func $f))",
			phase: errors.PhaseResolve,
			kind:  errors.KindDuplicate,
		},
		{
			name:  "type_mismatch",
			src:   "(module $m (func $f (var $x int true)))",
			phase: errors.PhaseResolve,
			kind:  errors.KindTypeMismatch,
		},
		{
			name:  "condition_not_bool",
			src:   "(module $m (func $f (if 1 (then))))",
			phase: errors.PhaseResolve,
			kind:  errors.KindTypeMismatch,
		},
		{
			name:  "void_call_as_value",
			src:   "(module $m (func $g) (func $f (print (call $g))))",
			phase: errors.PhaseResolve,
			kind:  errors.KindTypeMismatch,
		},
		{
			name:  "missing_return_value",
			src:   "(module $m (func $f (result int) (return)))",
			phase: errors.PhaseResolve,
			kind:  errors.KindTypeMismatch,
		},
		{
			name:  "arity",
			src:   "(module $m (func $g (param $a int)) (func $f (call $g)))",
			phase: errors.PhaseResolve,
			kind:  errors.KindArity,
		},
		{
			name:  "ref_argument_not_variable",
			src:   "(module $m (func $g (ref $a int)) (func $f (call $g 1)))",
			phase: errors.PhaseResolve,
			kind:  errors.KindInvalidInput,
		},
		{
			name:  "function_as_value",
			src:   "(module $m (func $g) (func $f (print $g)))",
			phase: errors.PhaseResolve,
			kind:  errors.KindInvalidInput,
		},
		{
			name: "forward_call_before_capturable_variable",
			src: `(module $m
  (func $f
    (call $g)
    (var $y int 1)
    (func $g (print $y))))`,
			phase: errors.PhaseResolve,
			kind:  errors.KindInvalidInput,
			text:  "$y",
		},
		{
			name: "forward_call_through_sibling",
			src: `(module $m
  (func $f
    (func $h (call $g))
    (call $h)
    (var $y int 1)
    (func $g (print $y))))`,
			phase: errors.PhaseResolve,
			kind:  errors.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.name, tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T: %v", err, err)
			}
			if e.Phase != tt.phase || e.Kind != tt.kind {
				t.Errorf("got [%s] %s, want [%s] %s: %v", e.Phase, e.Kind, tt.phase, tt.kind, err)
			}
			if tt.text != "" && !strings.Contains(err.Error(), tt.text) {
				t.Errorf("error %q does not mention %q", err, tt.text)
			}
		})
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := Parse("lines", "(module $m\n  (func $f\n    (print $nope)))")
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Line != 3 {
		t.Errorf("line = %d, want 3", e.Line)
	}
	if got := strings.Join(e.Path, "."); got != "m.f" {
		t.Errorf("path = %q, want m.f", got)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	srcs := []string{
		counter,
		`(module $a
  (var $g bool (== 1 1))
  (func $f (param $a int) (ref $b int) (result bool)
    (if (and (> $a 0) (not $g))
      (then
        (set $b (neg $a)))
      (else
        (set $b (% $a 3))))
    (return (!= $b 0))))
(module $b
  (func $main
    (print -7)))`,
	}
	for i, src := range srcs {
		prog, err := Parse("rt", src)
		if err != nil {
			t.Fatalf("source %d: Parse() error: %v", i, err)
		}
		out := Format(prog)
		again, err := Parse("rt", out)
		if err != nil {
			t.Fatalf("source %d: reparse error: %v\n%s", i, err, out)
		}
		if got := Format(again); got != out {
			t.Errorf("source %d: round trip changed output:\n%s\n---\n%s", i, out, got)
		}
	}
}

func TestFormat(t *testing.T) {
	prog := MustParse("fmt", "(module $m (func $f (result int) (var $x int 1) (func $g (set $x 2)) (call $g) (return $x)))")
	want := `(module $m
  (func $f (result int)
    (var $x int 1)
    (func $g
      (set $x 2))
    (call $g)
    (return $x)))
`
	if got := Format(prog); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestFingerprint(t *testing.T) {
	a := MustParse("a", counter)
	b := MustParse("b", counter)
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("identical programs have different fingerprints")
	}
	c := MustParse("c", strings.Replace(counter, "(var $i int 0)", "(var $i int 1)", 1))
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("different programs share a fingerprint")
	}
}
