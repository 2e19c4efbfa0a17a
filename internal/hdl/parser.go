package hdl

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Parse parses a program. Statements are separated by newlines or
// semicolons; '#' starts a comment running to the end of the line.
//
// Precedence, lowest first: assignment, + and -, * and /, unary -.
func Parse(text string) (Program, error) {
	toks, err := newScanner(text).tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Program {
	prog, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return prog
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) current() token { return p.toks[p.pos] }

func (p *parser) lookahead() token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return syntaxErrorf(t.line, t.col, format, args...)
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.current()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, got %s", what, t)
	}
	return p.advance(), nil
}

func (p *parser) skipSeparators() {
	for p.current().kind == tokSeparator {
		p.advance()
	}
}

func (p *parser) program() (Program, error) {
	var prog Program
	p.skipSeparators()
	for p.current().kind != tokEOF {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog = append(prog, stmt)
		if t := p.current(); t.kind != tokSeparator && t.kind != tokEOF {
			return nil, p.errorf(t, "unexpected %s", t)
		}
		p.skipSeparators()
	}
	return prog, nil
}

func (p *parser) statement() (Node, error) {
	if p.current().kind == tokName && p.lookahead().kind == tokAssign {
		name := p.advance().text
		p.advance()
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &Assignation{Name: name, Value: value}, nil
	}
	return p.expression()
}

func (p *parser) expression() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for k := p.current().kind; k == tokPlus || k == tokMinus; k = p.current().kind {
		op := Operator(p.advance().text[0])
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for k := p.current().kind; k == tokTimes || k == tokDivide; k = p.current().kind {
		op := Operator(p.advance().text[0])
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (Node, error) {
	if p.current().kind == tokMinus {
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Negation{Operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	t := p.current()
	switch t.kind {
	case tokNumber:
		p.advance()
		v, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, p.errorf(t, "invalid number %s", t.text)
		}
		return &Constant{Value: v}, nil

	case tokAccount:
		p.advance()
		n := len(t.text) - 1
		return &AccountRef{Number: t.text[:n], Figure: Figure(t.text[n])}, nil

	case tokInterval:
		p.advance()
		return p.interval(t)

	case tokName:
		p.advance()
		if p.current().kind != tokLParen {
			return &Variable{Name: t.text}, nil
		}
		p.advance()
		args, err := p.arguments()
		if err != nil {
			return nil, err
		}
		return &Call{Name: t.text, Args: args}, nil

	case tokLParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorf(t, "unexpected %s", t)
}

// arguments parses a comma-separated list up to the closing parenthesis.
func (p *parser) arguments() ([]Node, error) {
	var args []Node
	if p.current().kind == tokRParen {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t := p.advance()
		switch t.kind {
		case tokComma:
			continue
		case tokRParen:
			return args, nil
		}
		return nil, p.errorf(t, "expected ',' or ')', got %s", t)
	}
}

func (p *parser) interval(t token) (Node, error) {
	// The scanner guarantees the shape [digits:digits]F.
	text := t.text
	colon := 0
	for text[colon] != ':' {
		colon++
	}
	end := len(text) - 2
	lo, errLo := strconv.Atoi(text[1:colon])
	hi, errHi := strconv.Atoi(text[colon+1 : end])
	switch {
	case errLo != nil || errHi != nil:
		return nil, p.errorf(t, "account interval %s out of range", text)
	case hi < lo:
		return nil, p.errorf(t, "empty account interval %s", text)
	case hi-lo >= maxInterval:
		return nil, p.errorf(t, "account interval %s is too wide", text)
	}
	return &AccountInterval{Low: lo, High: hi, Figure: Figure(text[len(text)-1])}, nil
}
