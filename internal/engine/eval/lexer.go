package eval

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return "unknown"
	}
}

type token struct {
	kind  tokenKind
	value float64
	pos   int
}

// lexer splits an arithmetic expression into tokens. It accepts only
// numbers, the four operators and parentheses.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return &EvaluationError{Expr: l.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch c {
	case '+', '-':
		// A doubled sign is an increment/decrement, not two unary operators.
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == c {
			return token{}, l.errorf(start, "unexpected %q", l.src[start:start+2])
		}
		l.pos++
		if c == '+' {
			return token{kind: tokPlus, pos: start}, nil
		}
		return token{kind: tokMinus, pos: start}, nil
	case '*':
		l.pos++
		return token{kind: tokStar, pos: start}, nil
	case '/':
		l.pos++
		return token{kind: tokSlash, pos: start}, nil
	case '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	}

	if isDigit(c) || c == '.' {
		return l.number()
	}

	r, _ := utf8.DecodeRuneInString(l.src[start:])
	return token{}, l.errorf(start, "unexpected character %q", r)
}

// number scans digits[.digits][e[+-]digits], also ".5" and "5.".
func (l *lexer) number() (token, error) {
	start := l.pos
	mantissaDigits := 0

	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
		mantissaDigits++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
			mantissaDigits++
		}
	}
	if mantissaDigits == 0 {
		return token{}, l.errorf(start, "malformed number")
	}

	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		p := l.pos + 1
		if p < len(l.src) && (l.src[p] == '+' || l.src[p] == '-') {
			p++
		}
		expDigits := 0
		for p < len(l.src) && isDigit(l.src[p]) {
			p++
			expDigits++
		}
		if expDigits == 0 {
			return token{}, l.errorf(l.pos, "malformed exponent")
		}
		l.pos = p
	}

	text := l.src[start:l.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Out-of-range literals still carry ±Inf or 0, matching float semantics.
		if !errors.Is(err, strconv.ErrRange) {
			return token{}, l.errorf(start, "malformed number %q", text)
		}
	}
	return token{kind: tokNumber, value: v, pos: start}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
