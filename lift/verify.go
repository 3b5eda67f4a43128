package lift

import (
	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
)

// Verify checks that prog is free of nested functions and that its calls
// are consistent: no reference to a function listed as a key of hoisted,
// one actual per formal, and a variable reference for every ref formal.
func Verify(prog *ir.Program, hoisted map[*ir.Func]*ir.Func) error {
	for _, m := range prog.Modules {
		for _, s := range m.Stmts {
			if err := verifyStmt(s, hoisted); err != nil {
				return err
			}
		}
	}
	return nil
}

func verifyStmt(s ir.Stmt, hoisted map[*ir.Func]*ir.Func) error {
	var err error
	fail := func(format string, args ...any) {
		err = errors.Invariant(errors.PhaseVerify, format, args...)
	}
	ir.Inspect(s, func(n ir.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *ir.FuncDef:
			if n.Func.IsNested() {
				fail("nested function %s survived lifting", n.Func.QualifiedName())
			}
		case *ir.Ref:
			if f, ok := n.Sym.(*ir.Func); ok {
				if _, stale := hoisted[f]; stale {
					fail("reference to %s was not retargeted", f.QualifiedName())
				}
			}
		case *ir.Call:
			f, ok := ir.CallTarget(n)
			if !ok {
				break
			}
			if len(n.Args) != len(f.Formals) {
				fail("call to %s has %d arguments for %d formals", f.Name, len(n.Args), len(f.Formals))
				break
			}
			for i, formal := range f.Formals {
				if formal.Intent != ir.IntentRef {
					continue
				}
				if _, ok := ir.VarRef(n.Args[i]); !ok {
					fail("argument %d of call to %s must be a variable", i+1, f.Name)
					break
				}
			}
		}
		return err == nil
	})
	return err
}
