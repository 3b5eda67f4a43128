// Package lift removes nested function definitions from a resolved program
// by lambda lifting.
//
// # Overview
//
// Every function defined inside another function's body is moved to the
// module that contains it. Variables of enclosing functions that the nested
// function reads or writes, directly or through calls to other nested
// functions, become extra formal parameters with alias intent, so writes
// inside the lifted function remain visible to the caller. Every call to a
// nested function receives the matching actual arguments and is retargeted
// to the lifted copy. Runtime behavior is unchanged.
//
// Before:
//
//	(func $f (result int)
//	  (var $x int 1)
//	  (func $g (set $x (+ $x 1)))
//	  (call $g)
//	  (return $x))
//
// After:
//
//	(func $f (result int)
//	  (var $x int 1)
//	  (call $f.g $x)
//	  (return $x))
//	(func $f.g (ref $x int)
//	  (set $x (+ $x 1)))
//
// # How It Works
//
// The pass has two phases that never interleave:
//
//  1. Analysis (New): a fixpoint over every nested function of the program.
//     Each sweep rescans each function for references to enclosing-scope
//     variables and unions in the current capture sets of the nested
//     functions it calls. Sets only grow, so the loop stops on the first
//     sweep that changes nothing.
//  2. Rewrite (ir.Walk with the Pass as visitor): in post-order, every call
//     to a nested function gets its captured variables appended as actuals,
//     and every nested definition is cloned, given one ref formal per
//     captured variable, appended to its module and removed from its
//     original position.
//
// A call visited before its target has been lifted keeps the original
// callee and is put on a pending list under that target. When the target is
// lifted, the pending calls are retargeted and the original-to-lifted symbol
// map is replayed over every lifted definition, which may hold copies of
// them. Only nodes the walk has already visited are changed.
//
// # Usage
//
//	res, err := lift.Run(prog)
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Stats.Hoisted, "functions lifted")
//
// Errors returned by the pass are internal defects of kind
// errors.KindInvariant: the pass assumes a resolved, well-formed program and
// reports nothing to end users.
package lift
