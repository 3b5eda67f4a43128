package lift

import (
	"context"
	"slices"
	"testing"

	"github.com/wippyai/lambdalift/interp"
	"github.com/wippyai/lambdalift/ir"
	"github.com/wippyai/lambdalift/syntax"
)

func parse(t *testing.T, src string) *ir.Program {
	t.Helper()
	prog, err := syntax.Parse(t.Name(), src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return prog
}

func liftSource(t *testing.T, src string, opts ...Option) (*ir.Program, *Result) {
	t.Helper()
	prog := parse(t, src)
	res, err := Run(prog, opts...)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return prog, res
}

// nested returns the function with the given qualified name.
func nested(t *testing.T, prog *ir.Program, qualified string) *ir.Func {
	t.Helper()
	for _, f := range ir.Functions(prog) {
		if f.QualifiedName() == qualified {
			return f
		}
	}
	t.Fatalf("function %s not found", qualified)
	return nil
}

func captureNames(a *Analysis, f *ir.Func) []string {
	set, ok := a.Lookup(f)
	if !ok {
		return nil
	}
	return set.Names()
}

// sameBehavior runs entry on the original and the lifted form of src and
// compares results and output.
func sameBehavior(t *testing.T, src, entry string, args ...int64) {
	t.Helper()
	ctx := context.Background()

	before, err := interp.Run(ctx, parse(t, src), entry, args)
	if err != nil {
		t.Fatalf("interp before lifting: %v", err)
	}
	lifted, _ := liftSource(t, src)
	after, err := interp.Run(ctx, lifted, entry, args)
	if err != nil {
		t.Fatalf("interp after lifting: %v\n%s", err, syntax.Format(lifted))
	}
	if before.Value != after.Value {
		t.Errorf("%s%v: value %d before lifting, %d after", entry, args, before.Value, after.Value)
	}
	if !slices.Equal(before.Output, after.Output) {
		t.Errorf("%s%v: output %v before lifting, %v after", entry, args, before.Output, after.Output)
	}
}

// checkNoStaleRefs fails if any function reference points outside the
// module-level functions of the program.
func checkNoStaleRefs(t *testing.T, prog *ir.Program) {
	t.Helper()
	live := make(map[*ir.Func]bool)
	for _, m := range prog.Modules {
		for _, f := range m.Funcs() {
			live[f] = true
		}
	}
	for _, m := range prog.Modules {
		for _, s := range m.Stmts {
			ir.Inspect(s, func(n ir.Node) bool {
				if r, ok := n.(*ir.Ref); ok {
					if f, ok := r.Sym.(*ir.Func); ok && !live[f] {
						t.Errorf("reference to %s, which is not a module-level function", f.QualifiedName())
					}
				}
				return true
			})
		}
	}
}
