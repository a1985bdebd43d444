package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errEmptyAmount     = errors.New("amount is empty")
	errDivisionByZero  = errors.New("division by zero")
	errUnbalancedParen = errors.New("unbalanced parentheses")
)

// EvaluateExpression evaluates a parenthesized arithmetic expression such as
// "(25000 - 15000)" or "((2000 + 160) * 2)". Multiplication and division bind
// tighter than addition and subtraction.
func EvaluateExpression(expr string) (decimal.Decimal, error) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "(") || !strings.HasSuffix(expr, ")") {
		return decimal.Zero, fmt.Errorf("expression must be wrapped in parentheses: %q", expr)
	}

	p := &exprParser{input: expr}
	result, err := p.parseExpr(0)
	if err != nil {
		return decimal.Zero, err
	}
	if !p.done() {
		return decimal.Zero, fmt.Errorf("unexpected %q at position %d", p.peek(), p.pos)
	}
	return result, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) done() bool {
	p.skipSpace()
	return p.pos >= len(p.input)
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) next() byte {
	ch := p.peek()
	if ch != 0 {
		p.pos++
	}
	return ch
}

func (p *exprParser) number() (decimal.Decimal, error) {
	p.skipSpace()
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch >= '0' && ch <= '9' {
			p.pos++
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return decimal.Zero, fmt.Errorf("expected number at position %d", start)
	}
	lit := p.input[start:p.pos]
	d, err := decimal.NewFromString(lit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", lit, err)
	}
	return d, nil
}

// operand parses a number, a parenthesized group or a signed operand.
func (p *exprParser) operand() (decimal.Decimal, error) {
	switch p.peek() {
	case '(':
		p.next()
		v, err := p.parseExpr(0)
		if err != nil {
			return decimal.Zero, err
		}
		if p.next() != ')' {
			return decimal.Zero, errUnbalancedParen
		}
		return v, nil
	case '-':
		p.next()
		v, err := p.operand()
		return v.Neg(), err
	case '+':
		p.next()
		return p.operand()
	default:
		return p.number()
	}
}

func (p *exprParser) parseExpr(minPrec int) (decimal.Decimal, error) {
	left, err := p.operand()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		op := p.peek()
		prec := precedence(op)
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		p.next()

		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return decimal.Zero, err
		}
		if left, err = apply(left, op, right); err != nil {
			return decimal.Zero, err
		}
	}
}

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/':
		return 2
	default:
		return 0
	}
}

func apply(left decimal.Decimal, op byte, right decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case '+':
		return left.Add(right), nil
	case '-':
		return left.Sub(right), nil
	case '*':
		return left.Mul(right), nil
	case '/':
		if right.IsZero() {
			return decimal.Zero, errDivisionByZero
		}
		return left.Div(right), nil
	}
	return decimal.Zero, fmt.Errorf("unknown operator %q", op)
}
