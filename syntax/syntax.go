package syntax

import (
	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/ir"
	"github.com/wippyai/lambdalift/syntax/internal/token"
)

// Parse reads and resolves src. The name is used for a module written
// without a name and in error messages.
func Parse(name, src string) (*ir.Program, error) {
	tokens, err := token.Tokenize(src)
	if err != nil {
		if lexErr, ok := err.(*token.Error); ok {
			return nil, syntaxError(lexErr.Line, "unexpected character %q", lexErr.Char)
		}
		return nil, errors.Wrap(errors.PhaseParse, errors.KindSyntax, err, name)
	}

	forms, err := (&reader{tokens: tokens}).readAll()
	if err != nil {
		return nil, err
	}

	prog := &ir.Program{}
	for _, form := range forms {
		if form.head() != "module" {
			return nil, syntaxError(form.line, "expected (module ...), got %s", form)
		}
		m, err := resolveModule(form, name)
		if err != nil {
			return nil, err
		}
		if prog.Module(m.Name) != nil {
			return nil, errors.Duplicate(form.line, nil, "$"+m.Name)
		}
		prog.Modules = append(prog.Modules, m)
	}
	if len(prog.Modules) == 0 {
		return nil, syntaxError(0, "%s: no module", name)
	}
	return prog, nil
}

// MustParse is like Parse but panics on error. It simplifies tests and
// package-level program literals.
func MustParse(name, src string) *ir.Program {
	prog, err := Parse(name, src)
	if err != nil {
		panic(err)
	}
	return prog
}
