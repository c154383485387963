// Package parser implements a recursive-descent, Pratt-style parser
// that turns a token stream into the tagged-union AST defined by
// internal/ast.
package parser

import (
	"github.com/aegis-lang/aegis/internal/ast"
	"github.com/aegis-lang/aegis/internal/diagnostics"
	"github.com/aegis-lang/aegis/internal/pipeline"
	"github.com/aegis-lang/aegis/internal/token"
)

// Precedence ladder, lowest to highest.
const (
	LOWEST int = iota
	TERNARY
	NULLCOALESCE
	LOGICAL_OR
	LOGICAL_AND
	EQUALITY
	RELATIONAL
	BITWISE
	ADDITIVE
	MULTIPLICATIVE
	UNARY
	POSTFIX
)

var precedences = map[token.Type]int{
	token.QUESTION:      TERNARY,
	token.NULL_COALESCE: NULLCOALESCE,
	token.OR:            LOGICAL_OR,
	token.AND:           LOGICAL_AND,
	token.EQ:            EQUALITY,
	token.NOT_EQ:        EQUALITY,
	token.LT:            RELATIONAL,
	token.GT:            RELATIONAL,
	token.LTE:           RELATIONAL,
	token.GTE:           RELATIONAL,
	token.BIT_AND:       BITWISE,
	token.BIT_OR:        BITWISE,
	token.BIT_XOR:       BITWISE,
	token.SHL:           BITWISE,
	token.SHR:           BITWISE,
	token.PLUS:          ADDITIVE,
	token.MINUS:         ADDITIVE,
	token.STAR:          MULTIPLICATIVE,
	token.SLASH:         MULTIPLICATIVE,
	token.PERCENT:       MULTIPLICATIVE,
	token.DOT_DOT:       MULTIPLICATIVE,
	token.LPAREN:        POSTFIX,
	token.DOT:           POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser walks a flat token slice with one token of lookahead,
// recording diagnostics rather than aborting on the first error so a
// caller can report everything wrong with a file at once.
type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	errors []*diagnostics.Error

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.INT:      p.parseIntegerLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.TRUE:     p.parseBoolLiteral,
		token.FALSE:    p.parseBoolLiteral,
		token.NULL:     p.parseNullLiteral,
		token.BANG:     p.parseUnaryExpression,
		token.MINUS:    p.parseUnaryExpression,
		token.INCR:     p.parsePrefixIncrDecr,
		token.DECR:     p.parsePrefixIncrDecr,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACKET: p.parseListLiteral,
		token.LBRACE:   p.parseDictLiteral,
		token.NEW:      p.parseNewExpression,
		token.SUPER:    p.parseSuperExpression,
		token.FUNC:     p.parseFunctionLiteral,
		token.AT:       p.parseDecoratedFunctionLiteral,
	}

	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:          p.parseBinaryExpression,
		token.MINUS:         p.parseBinaryExpression,
		token.STAR:          p.parseBinaryExpression,
		token.SLASH:         p.parseBinaryExpression,
		token.PERCENT:       p.parseBinaryExpression,
		token.EQ:            p.parseBinaryExpression,
		token.NOT_EQ:        p.parseBinaryExpression,
		token.LT:            p.parseBinaryExpression,
		token.GT:            p.parseBinaryExpression,
		token.LTE:           p.parseBinaryExpression,
		token.GTE:           p.parseBinaryExpression,
		token.BIT_AND:       p.parseBinaryExpression,
		token.BIT_OR:        p.parseBinaryExpression,
		token.BIT_XOR:       p.parseBinaryExpression,
		token.SHL:           p.parseBinaryExpression,
		token.SHR:           p.parseBinaryExpression,
		token.DOT_DOT:       p.parseRangeExpression,
		token.AND:           p.parseLogicalExpression,
		token.OR:            p.parseLogicalExpression,
		token.QUESTION:      p.parseTernaryExpression,
		token.NULL_COALESCE: p.parseNullCoalesceExpression,
		token.LPAREN:        p.parseCallExpression,
		token.DOT:           p.parseMemberExpression,
		token.ASSIGN:        p.parseAssignExpression,
		token.PLUS_ASSIGN:   p.parseCompoundAssignExpression,
		token.MINUS_ASSIGN:  p.parseCompoundAssignExpression,
		token.STAR_ASSIGN:   p.parseCompoundAssignExpression,
		token.SLASH_ASSIGN:  p.parseCompoundAssignExpression,
		token.INCR:          p.parsePostfixIncrDecr,
		token.DECR:          p.parsePostfixIncrDecr,
	}

	// Assignment and compound-assignment bind looser than everything
	// else; they're reached via a dedicated check in
	// parseExpressionStatement rather than through the precedence
	// table so ordinary expressions never trip over them mid-parse.
	// At LOWEST the infix loop never consumes them; they're registered
	// above so that check can dispatch through infixParseFns. A
	// statement holds at most one assignment: `a = b = 1` and an
	// assignment inside parentheses or arguments do not parse.
	precedences[token.ASSIGN] = LOWEST
	precedences[token.PLUS_ASSIGN] = LOWEST
	precedences[token.MINUS_ASSIGN] = LOWEST
	precedences[token.STAR_ASSIGN] = LOWEST
	precedences[token.SLASH_ASSIGN] = LOWEST
	precedences[token.INCR] = POSTFIX
	precedences[token.DECR] = POSTFIX

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []*diagnostics.Error { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = token.New(token.EOF, "", p.curToken.Line)
	}
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, diagnostics.NewError(
		diagnostics.ErrParseExpectedToken, p.peekToken,
		"expected next token to be %s, got %s instead", t, p.peekToken.Type,
	))
}

func (p *Parser) noPrefixParseFnError(t token.Type) {
	p.errors = append(p.errors, diagnostics.NewError(
		diagnostics.ErrParseNoPrefixFn, p.curToken,
		"no prefix parse function for %s found", t,
	))
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewError(
		diagnostics.ErrParseUnexpectedToken, p.curToken, format, args...,
	))
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// skipNewlines consumes any NEWLINE tokens at the current position.
// The lexer emits one NEWLINE per line break; statements carry no
// semicolons, so these tokens are skipped wherever a construct may
// continue on the next line.
func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// ParseProgram parses the full token stream into a Program. Parse
// errors are collected in p.errors and also copied into a
// pipeline.PipelineContext by Process below; ParseProgram itself never
// returns an error value, matching the teacher's "keep going, collect
// diagnostics" style.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program
}

// Processor implements pipeline.Processor, running the parser over
// ctx.TokenStream and recording the result on ctx.AstRoot.
type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Errors) > 0 {
		return ctx
	}
	p := New(ctx.TokenStream)
	ctx.AstRoot = p.ParseProgram()
	for _, e := range p.Errors() {
		e.File = ctx.FilePath
		ctx.Errors = append(ctx.Errors, e)
	}
	return ctx
}
