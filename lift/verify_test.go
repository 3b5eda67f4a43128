package lift

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		setup func(prog *ir.Program) map[*ir.Func]*ir.Func
		ok    bool
	}{
		{
			name: "lifted_program",
			src:  `(module $m (func $f (var $x int 0) (call $g $x)) (func $g (ref $x int) (print $x)))`,
			ok:   true,
		},
		{
			name: "nested_definition",
			src:  `(module $m (func $f (func $g) (call $g)))`,
		},
		{
			name: "stale_reference",
			src:  `(module $m (func $f (call $g)) (func $g))`,
			setup: func(prog *ir.Program) map[*ir.Func]*ir.Func {
				g := prog.Modules[0].Func("g")
				return map[*ir.Func]*ir.Func{g: ir.NewFunc("g2", prog.Modules[0].Scope, ir.TypeVoid)}
			},
		},
		{
			name: "missing_argument",
			src:  `(module $m (func $f (call $g)) (func $g))`,
			setup: func(prog *ir.Program) map[*ir.Func]*ir.Func {
				g := prog.Modules[0].Func("g")
				g.AddFormal("x", ir.IntentRef, ir.TypeInt)
				return nil
			},
		},
		{
			name: "ref_formal_given_a_value",
			src:  `(module $m (func $f (call $g 1)) (func $g (param $x int)))`,
			setup: func(prog *ir.Program) map[*ir.Func]*ir.Func {
				prog.Modules[0].Func("g").Formals[0].Intent = ir.IntentRef
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parse(t, tt.src)
			var hoisted map[*ir.Func]*ir.Func
			if tt.setup != nil {
				hoisted = tt.setup(prog)
			}
			err := Verify(prog, hoisted)
			if tt.ok {
				if err != nil {
					t.Fatalf("Verify() error: %v", err)
				}
				return
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Phase != errors.PhaseVerify || e.Kind != errors.KindInvariant {
				t.Fatalf("expected verify invariant error, got %v", err)
			}
		})
	}
}
