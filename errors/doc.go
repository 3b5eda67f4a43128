// Package errors provides structured error types for the lambdalift toolchain.
//
// Errors are categorized by Phase (which stage produced the error) and Kind
// (error category). The Error type carries source context: the symbol path
// (module, enclosing functions), the offending symbol, the source line and a
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindUnresolved).
//		Path("main", "outer").
//		Symbol("$count").
//		Line(12).
//		Detail("did you mean $counter?").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Invariant(errors.PhaseRewrite, "nested function %s has no module", name)
//	err := errors.Trap(errors.PhaseRuntime, "integer divide by zero")
//
// KindInvariant marks compiler-internal defects: malformed input reaching a
// pass that assumes a resolved, well-formed program. These are never user
// diagnostics.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
