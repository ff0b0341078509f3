package eval

// maxDepth bounds nesting of parentheses and unary signs.
const maxDepth = 256

// parser is a recursive-descent evaluator for
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := ('+' | '-') unary | primary
//	primary := number | '(' expr ')'
//
// It computes values while parsing; no tree is built.
type parser struct {
	lex   *lexer
	tok   token
	depth int
}

// Eval evaluates an arithmetic expression over float64 operands with the
// usual precedence. The expression must already be normalized (see
// Normalize). Malformed input returns an *EvaluationError. Eval does not
// reject non-finite results; intermediate and final infinities follow IEEE
// 754 arithmetic.
func Eval(expr string) (float64, error) {
	p := &parser{lex: newLexer(expr)}
	if err := p.advance(); err != nil {
		return 0, err
	}

	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokEOF {
		return 0, p.unexpected()
	}
	return v, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected() error {
	return p.lex.errorf(p.tok.pos, "unexpected %s", p.tok.kind)
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return p.lex.errorf(p.tok.pos, "expression nested too deeply")
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}

	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return 0, err
		}
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == tokPlus {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}

	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return 0, err
		}
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == tokStar {
			left *= right
		} else {
			left /= right
		}
	}
	return left, nil
}

func (p *parser) unary() (float64, error) {
	switch p.tok.kind {
	case tokPlus, tokMinus:
		neg := p.tok.kind == tokMinus
		if err := p.enter(); err != nil {
			return 0, err
		}
		defer p.leave()

		if err := p.advance(); err != nil {
			return 0, err
		}
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if neg {
			return -v, nil
		}
		return v, nil
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	switch p.tok.kind {
	case tokNumber:
		v := p.tok.value
		if err := p.advance(); err != nil {
			return 0, err
		}
		return v, nil

	case tokLParen:
		if err := p.enter(); err != nil {
			return 0, err
		}
		defer p.leave()

		if err := p.advance(); err != nil {
			return 0, err
		}
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.tok.kind != tokRParen {
			return 0, p.unexpected()
		}
		if err := p.advance(); err != nil {
			return 0, err
		}
		return v, nil
	}
	return 0, p.unexpected()
}
