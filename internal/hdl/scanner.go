package hdl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrSyntax is wrapped by every SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError locates a scanning or parsing failure. Line and Column are
// 1-based.
type SyntaxError struct {
	Line, Column int
	Msg          string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokSeparator
	tokNumber
	tokAccount
	tokInterval
	tokName
	tokLParen
	tokRParen
	tokComma
	tokPlus
	tokMinus
	tokTimes
	tokDivide
	tokAssign
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokSeparator:
		return "end of statement"
	case tokNumber:
		return "number"
	case tokAccount:
		return "account"
	case tokInterval:
		return "account interval"
	case tokName:
		return "name"
	}
	return "operator"
}

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func (t token) String() string {
	if t.kind == tokEOF || t.kind == tokSeparator && t.text == "\n" {
		return t.kind.String()
	}
	return strconv.Quote(t.text)
}

// maxInterval bounds the number of accounts an interval may enumerate.
const maxInterval = 1_000_000

// scanner splits HDL text into tokens.
type scanner struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newScanner(text string) *scanner {
	return &scanner{src: []rune(text), line: 1, col: 1}
}

func (s *scanner) current() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peek() rune {
	if s.pos+1 >= len(s.src) {
		return 0
	}
	return s.src[s.pos+1]
}

func (s *scanner) advance() {
	if s.current() == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.pos++
}

func syntaxErrorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) readWhile(pred func(rune) bool) string {
	var b strings.Builder
	for s.pos < len(s.src) && pred(s.current()) {
		b.WriteRune(s.current())
		s.advance()
	}
	return b.String()
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isNameStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isNameRune(r rune) bool { return isNameStart(r) || isDigit(r) }

func isFigure(r rune) bool { return r == 'D' || r == 'C' || r == 'B' }

// tokens scans the whole text.
func (s *scanner) tokens() ([]token, error) {
	var res []token
	for {
		t, err := s.next()
		if err != nil {
			return nil, err
		}
		res = append(res, t)
		if t.kind == tokEOF {
			return res, nil
		}
	}
}

func (s *scanner) next() (token, error) {
	for {
		switch c := s.current(); {
		case c == ' ' || c == '\t' || c == '\r':
			s.advance()
		case c == '#':
			s.readWhile(func(r rune) bool { return r != '\n' })
		default:
			return s.token()
		}
	}
}

func (s *scanner) token() (token, error) {
	line, col := s.line, s.col
	tok := func(kind tokenKind, text string) token {
		return token{kind: kind, text: text, line: line, col: col}
	}
	single := map[rune]tokenKind{
		'\n': tokSeparator, ';': tokSeparator,
		'(': tokLParen, ')': tokRParen, ',': tokComma,
		'+': tokPlus, '-': tokMinus, '*': tokTimes, '/': tokDivide,
		'=': tokAssign,
	}

	c := s.current()
	if s.pos >= len(s.src) {
		return tok(tokEOF, ""), nil
	}
	if kind, ok := single[c]; ok {
		s.advance()
		return tok(kind, string(c)), nil
	}
	switch {
	case c == '[':
		return s.interval(line, col)
	case isDigit(c):
		digits := s.readWhile(isDigit)
		if isFigure(s.current()) && !isNameRune(s.peek()) {
			figure := s.current()
			s.advance()
			return tok(tokAccount, digits+string(figure)), nil
		}
		if s.current() == '.' && isDigit(s.peek()) {
			s.advance()
			digits += "." + s.readWhile(isDigit)
		}
		if isNameRune(s.current()) {
			return token{}, syntaxErrorf(s.line, s.col, "unexpected %q after number %s", s.current(), digits)
		}
		return tok(tokNumber, digits), nil
	case isNameStart(c):
		return tok(tokName, s.readWhile(isNameRune)), nil
	}
	return token{}, syntaxErrorf(line, col, "illegal character %q", c)
}

// interval scans [lo:hi]F.
func (s *scanner) interval(line, col int) (token, error) {
	s.advance()
	lo := s.readWhile(isDigit)
	if lo == "" || s.current() != ':' {
		return token{}, syntaxErrorf(s.line, s.col, "malformed account interval, expected [low:high]")
	}
	s.advance()
	hi := s.readWhile(isDigit)
	if hi == "" || s.current() != ']' {
		return token{}, syntaxErrorf(s.line, s.col, "malformed account interval, expected [low:high]")
	}
	s.advance()
	if !isFigure(s.current()) || isNameRune(s.peek()) {
		return token{}, syntaxErrorf(s.line, s.col, "account interval must be followed by D, C or B")
	}
	figure := s.current()
	s.advance()
	return token{kind: tokInterval, text: "[" + lo + ":" + hi + "]" + string(figure), line: line, col: col}, nil
}
