// Package interp executes resolved programs directly.
//
// The interpreter runs programs both before and after lambda lifting:
// nested functions reach the variables of their enclosing activations
// through static links, and ref formals share the caller's storage cell.
// It is the reference against which lifted programs and generated
// WebAssembly are compared.
//
// All values are 64-bit integers at run time; booleans are 0 and 1, and
// print writes them that way.
package interp
