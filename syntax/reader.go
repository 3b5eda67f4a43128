package syntax

import (
	"github.com/wippyai/lambdalift/errors"
	"github.com/wippyai/lambdalift/syntax/internal/token"
)

// sexp is an atom or a parenthesized list.
type sexp struct {
	atom *token.Token
	list []*sexp
	line int
}

func (s *sexp) isAtom() bool { return s.atom != nil }

// head returns the keyword of a list such as (func ...), or "".
func (s *sexp) head() string {
	if s.atom != nil || len(s.list) == 0 || s.list[0].atom == nil {
		return ""
	}
	return s.list[0].atom.Value
}

func (s *sexp) String() string {
	if s.atom != nil {
		return s.atom.Value
	}
	if h := s.head(); h != "" {
		return "(" + h + " ...)"
	}
	return "(...)"
}

type reader struct {
	tokens []token.Token
	pos    int
}

func (r *reader) peek() *token.Token {
	if r.pos >= len(r.tokens) {
		return nil
	}
	return &r.tokens[r.pos]
}

func (r *reader) next() *token.Token {
	if r.pos >= len(r.tokens) {
		return nil
	}
	t := &r.tokens[r.pos]
	r.pos++
	return t
}

// readAll reads every top-level form.
func (r *reader) readAll() ([]*sexp, error) {
	var forms []*sexp
	for r.peek() != nil {
		s, err := r.read()
		if err != nil {
			return nil, err
		}
		forms = append(forms, s)
	}
	return forms, nil
}

func (r *reader) read() (*sexp, error) {
	t := r.next()
	if t == nil {
		return nil, syntaxError(0, "unexpected end of input")
	}
	switch t.Type {
	case token.RParen:
		return nil, syntaxError(t.Line, "unexpected ')'")
	case token.LParen:
		s := &sexp{line: t.Line}
		for {
			p := r.peek()
			if p == nil {
				return nil, syntaxError(t.Line, "unclosed '('")
			}
			if p.Type == token.RParen {
				r.next()
				return s, nil
			}
			child, err := r.read()
			if err != nil {
				return nil, err
			}
			s.list = append(s.list, child)
		}
	}
	return &sexp{atom: t, line: t.Line}, nil
}

func syntaxError(line int, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseParse, errors.KindSyntax).
		Line(line).
		Detail(format, args...).
		Build()
}
