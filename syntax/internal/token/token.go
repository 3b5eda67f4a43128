package token

import (
	"fmt"
	"strings"
	"unicode"
)

type Type int

const (
	LParen Type = iota
	RParen
	Ident
	Number
)

func (t Type) String() string {
	switch t {
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

// Error reports a character the lexer does not accept.
type Error struct {
	Char rune
	Line int
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: unexpected character %q", e.Line, e.Char)
}

const operatorChars = "+-*/%=!<>"

func isOperator(r rune) bool {
	return strings.ContainsRune(operatorChars, r)
}

func isIdent(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '$'
}

func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == ';' && i+1 < len(runes) && runes[i+1] == ';' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			if i < len(runes) {
				line++
			}
			continue
		}

		if r == '(' {
			tokens = append(tokens, Token{"(", LParen, line})
			continue
		}
		if r == ')' {
			tokens = append(tokens, Token{")", RParen, line})
			continue
		}

		// Number, with an optional minus sign directly attached
		if unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
			start := i
			i++
			for i < len(runes) && (unicode.IsDigit(runes[i]) || unicode.IsLetter(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, line})
			i--
			continue
		}

		// Operator symbol
		if isOperator(r) {
			start := i
			for i < len(runes) && isOperator(runes[i]) {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line})
			i--
			continue
		}

		// Identifier: $names and keywords
		if r == '$' || unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && isIdent(runes[i]) {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line})
			i--
			continue
		}

		return nil, &Error{Char: r, Line: line}
	}

	return tokens, nil
}
