// Package lambdalift moves nested functions to module level.
//
// A nested function may read and write variables of the functions that
// enclose it. Lifting turns every such function into a module-level one that
// receives those variables as extra by-reference formals, and rewrites every
// call so the caller passes its own variables along. The program keeps its
// behavior and no longer needs closures or static links.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	lambdalift/
//	├── ir/          Program tree, scopes, symbols, walker, cloning
//	├── lift/        Capture analysis and the lifting pass
//	├── syntax/      Text format: parser, resolver, printer
//	├── interp/      Reference interpreter with static links
//	├── wasmgen/     WebAssembly back end for lifted modules, run with wazero
//	├── errors/      Structured error types for debugging
//	└── cmd/lift/    Command-line driver and interactive viewer
//
// # Quick Start
//
// Parse, lift and print a program:
//
//	prog, err := syntax.Parse("demo", src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := lift.Run(prog)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(syntax.Format(prog))
//	fmt.Println(res.Stats.Hoisted, "functions hoisted")
//
// Run the lifted module as WebAssembly:
//
//	out, err := wasmgen.RunModule(ctx, prog.Modules[0], "main", []int64{10})
//
// # Capture Analysis
//
// The capture set of a nested function is every non-global variable it uses
// that is declared outside of it, directly or through the functions it
// calls. Calls make the sets depend on each other, so they are computed as a
// fixpoint that only ever grows.
//
// # Thread Safety
//
// A program tree must not be shared between goroutines while a pass runs.
// Passes are single-use. The package loggers are set once at startup.
package lambdalift
