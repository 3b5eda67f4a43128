// Package ir provides the resolved program representation consumed by the
// lambda-lifting pass and the back ends.
//
// A Program is a list of Modules; each Module owns a top-level statement
// sequence and a root Scope. Names have already been bound: every variable
// and callee reference is a *Ref pointing at a *Var or *Func symbol, and
// symbols are compared by identity, never by name.
//
// Statements and expressions form closed sum types. Every concrete node
// implements an unexported marker method, so consumers switch exhaustively
// over the known node kinds:
//
//	switch s := stmt.(type) {
//	case *ir.VarDecl, *ir.Assign, *ir.ExprStmt, *ir.If, *ir.While,
//		*ir.Return, *ir.Print, *ir.FuncDef:
//	}
//
// # Primitives
//
// Besides the data model the package supplies the generic operations a pass
// consumes rather than implements:
//
//   - Functions: whole-program function enumeration
//   - Scope queries: Scope.Contains, Scope.Module, Func.EnclosingFunc
//   - CallTarget: resolved callee of a call expression
//   - CloneDef: structurally independent copy of a function definition
//   - Substitute: replace references to a set of symbols throughout a subtree
//   - Func.AddFormal: formal parameter synthesis
//   - Walk: post-order traversal with statement cursors
//
// # Mutation during Walk
//
// Walk visits nodes in post-order and lets the statement hook detach the
// statement it was called for (Cursor.Delete) and append statements at a
// module tail (Module.Append). Both edits happen only after the affected
// subtree has been fully visited. Statements appended to a module during a
// walk are not visited by that walk.
package ir
