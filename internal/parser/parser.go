// Package parser builds an AST from a lexed formula, implementing the
// precedence chain:
//
//	comparison < concatenation < additive < multiplicative < exponent < unary < postfix(:)
//
// with ^ right-associative and every other binary operator left-associative,
// matching the Excel formula grammar this engine supports.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arlowgrid/cellwise/internal/astnode"
	"github.com/arlowgrid/cellwise/internal/lexer"
)

// ParseError carries source position alongside a human-readable message.
type ParseError struct {
	Msg  string
	Line int
	Col  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parser is a recursive-descent parser over a fixed token slice.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a Parser over an already-lexed token slice.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a full formula expression (the part after the leading "=").
// Parse consumes the formula body only; stripping "=" is the caller's job
// (see ParseFormula below for the convenience wrapper that does both).
func (p *Parser) Parse() (astnode.Node, error) {
	if len(p.tokens) == 0 {
		return nil, &ParseError{Msg: "empty formula"}
	}
	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != lexer.TokenEOF {
		return nil, p.errorAt(tok, "unexpected token %q", tok.Text)
	}
	return node, nil
}

// ParseFormula lexes and parses a raw formula string, including the
// leading "=". It is the convenience entrypoint most callers want.
func ParseFormula(formula string) (astnode.Node, error) {
	body := strings.TrimPrefix(formula, "=")
	lx := lexer.New(body)
	tokens, lexErrs := lx.Tokenize()
	if len(lexErrs) > 0 {
		return nil, &ParseError{Msg: strings.Join(lexErrs, "; ")}
	}
	return New(tokens).Parse()
}

func (p *Parser) current() lexer.Token { return p.tokens[p.pos] }

func (p *Parser) peek(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Line: tok.Line, Col: tok.Column}
}

func (p *Parser) expect(t lexer.TokenType, what string) (lexer.Token, error) {
	tok := p.current()
	if tok.Type != t {
		return tok, p.errorAt(tok, "expected %s, got %q", what, tok.Text)
	}
	return p.advance(), nil
}

// --- precedence chain, lowest to highest ---

func (p *Parser) parseComparison() (astnode.Node, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		var op astnode.BinaryOp
		switch p.current().Type {
		case lexer.TokenEqual:
			op = astnode.OpEq
		case lexer.TokenNotEqual:
			op = astnode.OpNe
		case lexer.TokenLess:
			op = astnode.OpLt
		case lexer.TokenLessEqual:
			op = astnode.OpLe
		case lexer.TokenGreater:
			op = astnode.OpGt
		case lexer.TokenGreaterEqual:
			op = astnode.OpGe
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &astnode.BinaryNode{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseConcat() (astnode.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.current().Type == lexer.TokenAmpersand {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &astnode.BinaryNode{Op: astnode.OpConcat, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (astnode.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op astnode.BinaryOp
		switch p.current().Type {
		case lexer.TokenPlus:
			op = astnode.OpAdd
		case lexer.TokenMinus:
			op = astnode.OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &astnode.BinaryNode{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() (astnode.Node, error) {
	left, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	for {
		var op astnode.BinaryOp
		switch p.current().Type {
		case lexer.TokenStar:
			op = astnode.OpMul
		case lexer.TokenSlash:
			op = astnode.OpDiv
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		left = &astnode.BinaryNode{Op: op, Left: left, Right: right}
	}
}

// parseExponent is right-associative: a^b^c == a^(b^c).
func (p *Parser) parseExponent() (astnode.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.current().Type == lexer.TokenCaret {
		p.advance()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return &astnode.BinaryNode{Op: astnode.OpPow, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseUnary() (astnode.Node, error) {
	switch p.current().Type {
	case lexer.TokenMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &astnode.UnaryNode{Op: astnode.OpNeg, Operand: operand}, nil
	case lexer.TokenPlus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &astnode.UnaryNode{Op: astnode.OpPos, Operand: operand}, nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles the ":" range operator, which binds tighter than
// every binary operator but looser than a bare primary.
func (p *Parser) parsePostfix() (astnode.Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.current().Type != lexer.TokenColon {
		return left, nil
	}
	startRef, ok := left.(*astnode.CellRefNode)
	if !ok {
		return nil, p.errorAt(p.current(), "range operator requires a cell reference on the left")
	}
	p.advance()
	endTok := p.current()
	var endSheet string
	if endTok.Type == lexer.TokenSheetRef {
		endSheet = endTok.Text
		p.advance()
		endTok = p.current()
	}
	if endTok.Type != lexer.TokenIdentifier {
		return nil, p.errorAt(endTok, "expected cell reference after ':'")
	}
	endRef, err := parseCellRefText(endTok.Text, endSheet)
	if err != nil {
		return nil, p.errorAt(endTok, "%s", err.Error())
	}
	p.advance()
	return &astnode.RangeRefNode{Start: startRef, End: endRef}, nil
}

func (p *Parser) parsePrimary() (astnode.Node, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.TokenNumber:
		p.advance()
		n, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid number %q", tok.Text)
		}
		return &astnode.NumberNode{Value: n, Literal: tok.Text}, nil

	case lexer.TokenString:
		p.advance()
		return &astnode.TextNode{Value: tok.Text}, nil

	case lexer.TokenBoolean:
		p.advance()
		return &astnode.BoolNode{Value: tok.Text == "TRUE"}, nil

	case lexer.TokenLeftParen:
		p.advance()
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil

	case lexer.TokenSheetRef:
		sheet := tok.Text
		p.advance()
		refTok := p.current()
		if refTok.Type != lexer.TokenIdentifier {
			return nil, p.errorAt(refTok, "expected cell reference after '%s!'", sheet)
		}
		ref, err := parseCellRefText(refTok.Text, sheet)
		if err != nil {
			return nil, p.errorAt(refTok, "%s", err.Error())
		}
		p.advance()
		return ref, nil

	case lexer.TokenIdentifier:
		name := tok.Text
		p.advance()
		if p.current().Type == lexer.TokenLeftParen {
			return p.parseFuncCall(name)
		}
		ref, err := parseCellRefText(name, "")
		if err != nil {
			return nil, p.errorAt(tok, "unknown reference %q", name)
		}
		return ref, nil

	default:
		return nil, p.errorAt(tok, "unexpected token %q", tok.Text)
	}
}

func (p *Parser) parseFuncCall(name string) (astnode.Node, error) {
	if _, err := p.expect(lexer.TokenLeftParen, "'('"); err != nil {
		return nil, err
	}
	var args []astnode.Node
	if p.current().Type != lexer.TokenRightParen {
		for {
			arg, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.current().Type != lexer.TokenComma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexer.TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return &astnode.FuncCallNode{Name: strings.ToUpper(name), Args: args}, nil
}

// parseCellRefText splits text like "$A$1" into a CellRefNode, returning
// an error if text does not have the shape of a cell reference (1-3
// letters followed by 1-7 digits, each optionally $-prefixed).
func parseCellRefText(text, sheet string) (*astnode.CellRefNode, error) {
	i := 0
	colAbs := false
	if i < len(text) && text[i] == '$' {
		colAbs = true
		i++
	}
	letterStart := i
	for i < len(text) && isLetter(text[i]) {
		i++
	}
	letters := text[letterStart:i]
	if letters == "" || len(letters) > 3 {
		return nil, fmt.Errorf("not a cell reference")
	}
	rowAbs := false
	if i < len(text) && text[i] == '$' {
		rowAbs = true
		i++
	}
	digitStart := i
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	digits := text[digitStart:i]
	if digits == "" || len(digits) > 7 || i != len(text) {
		return nil, fmt.Errorf("not a cell reference")
	}
	row, err := strconv.Atoi(digits)
	if err != nil {
		return nil, fmt.Errorf("not a cell reference")
	}
	return &astnode.CellRefNode{
		Sheet:  sheet,
		Column: columnLetterToIndex(letters),
		Row:    row - 1,
		ColAbs: colAbs,
		RowAbs: rowAbs,
	}, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func columnLetterToIndex(letters string) int {
	idx := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		idx = idx*26 + int(c-'A'+1)
	}
	return idx - 1
}
