// Package syntax reads and writes the textual form of resolved programs.
//
// The format borrows the S-expression layout of the WebAssembly text format:
//
//	;; counter.lift
//	(module $main
//	  (var $total int 0)
//	  (func $count (param $n int) (result int)
//	    (var $i int 0)
//	    (func $step (set $i (+ $i 1)))
//	    (while (< $i $n)
//	      (call $step))
//	    (return $i)))
//
// Parse tokenizes, reads and resolves source text into an ir.Program: every
// name is bound to its symbol and every expression is type checked. Print and
// Format render a program back to text; printing the output of Parse and
// parsing it again yields an equivalent program. Fingerprint hashes the
// printed form.
//
// Functions are visible throughout the block that defines them, so calls may
// precede the definition. Variables are visible from their declaration
// onward. A call that precedes the definition of a nested function is
// rejected when a variable of the same block is declared in between, since
// the function could capture a variable that does not exist yet at the call.
package syntax
