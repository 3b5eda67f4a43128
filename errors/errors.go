package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates which stage produced the error
type Phase string

const (
	PhaseParse   Phase = "parse"   // tokenizing and reading
	PhaseResolve Phase = "resolve" // name binding and type checks
	PhaseAnalyze Phase = "analyze" // free-variable fixpoint
	PhaseRewrite Phase = "rewrite" // hoisting and call rewriting
	PhaseVerify  Phase = "verify"  // post-condition checks
	PhaseCodegen Phase = "codegen" // wasm lowering
	PhaseRuntime Phase = "runtime" // interpreter and wasm execution
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax       Kind = "syntax"
	KindUnresolved   Kind = "unresolved"
	KindDuplicate    Kind = "duplicate"
	KindTypeMismatch Kind = "type_mismatch"
	KindArity        Kind = "arity"
	KindInvalidInput Kind = "invalid_input"
	KindUnsupported  Kind = "unsupported"
	KindNotFound     Kind = "not_found"
	KindInvariant    Kind = "invariant"
	KindTrap         Kind = "trap"
	KindLimit        Kind = "limit"
)

// Error is the structured error type used throughout the toolchain
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Symbol string
	Detail string
	Path   []string
	Line   int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Line > 0 {
		b.WriteString(" line ")
		b.WriteString(strconv.Itoa(e.Line))
	}

	if len(e.Path) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Symbol != "" {
		b.WriteString(": ")
		b.WriteString(e.Symbol)
	}

	if e.Detail != "" {
		if e.Symbol != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the symbol path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Symbol sets the offending symbol name
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Line sets the source line
func (b *Builder) Line(line int) *Builder {
	b.err.Line = line
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Invariant creates an internal-defect error
func Invariant(phase Phase, format string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvariant,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Unresolved creates an unknown identifier error
func Unresolved(line int, path []string, name, suggestion string) *Error {
	e := &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnresolved,
		Path:   path,
		Symbol: name,
		Line:   line,
		Detail: "unknown identifier",
	}
	if suggestion != "" {
		e.Detail = fmt.Sprintf("unknown identifier, did you mean %s?", suggestion)
	}
	return e
}

// Duplicate creates a redeclaration error
func Duplicate(line int, path []string, name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindDuplicate,
		Path:   path,
		Symbol: name,
		Line:   line,
		Detail: "already declared in this scope",
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(line int, path []string, want, got string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindTypeMismatch,
		Path:   path,
		Line:   line,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// Unsupported creates an unsupported feature error
func Unsupported(phase Phase, feature string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: feature + " not supported",
	}
}

// Trap creates a runtime trap error
func Trap(phase Phase, format string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTrap,
		Detail: fmt.Sprintf(format, args...),
	}
}

// NotFound creates a lookup failure error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Symbol: name,
		Detail: what + " not found",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
