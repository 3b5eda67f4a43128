// Package wasmgen lowers lifted modules to WebAssembly and runs them with
// wazero.
//
// Code generation requires a module without nested functions; run the lift
// pass first. The generated module has this shape:
//
//   - every value is an i64; booleans are 0 and 1
//   - variables live in linear memory: globals at fixed addresses from 8,
//     locals and by-value formals in a per-call frame on a downward-growing
//     stack whose pointer is global 0
//   - ref formals are i32 addresses of the caller's variable
//   - print is the host import env.print (i64)
//   - global initializers run in a start function
//   - every module-level function is exported under its own name
//
// Run instantiates a binary with the host module and calls one export.
package wasmgen
