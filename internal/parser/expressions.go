package parser

import (
	"strconv"

	"github.com/aegis-lang/aegis/internal/ast"
	"github.com/aegis-lang/aegis/internal/token"
)

// parseExpression is the Pratt core: a prefix parser builds the left
// operand, then infix parsers consume operators of higher precedence
// than the caller's floor, left to right.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(token.EOF) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return ast.NewIdentifier(p.curToken.Line, p.curToken.Literal)
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf("invalid integer literal %q", p.curToken.Literal)
		return nil
	}
	return ast.NewIntegerLiteral(p.curToken.Line, v)
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf("invalid float literal %q", p.curToken.Literal)
		return nil
	}
	return ast.NewFloatLiteral(p.curToken.Line, v)
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return ast.NewStringLiteral(p.curToken.Line, p.curToken.Literal)
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return ast.NewBoolLiteral(p.curToken.Line, p.curToken.Type == token.TRUE)
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return ast.NewNullLiteral(p.curToken.Line)
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.curToken
	op := tok.Literal
	p.nextToken()
	operand := p.parseExpression(UNARY)
	if operand == nil {
		return nil
	}
	return ast.NewUnaryExpr(tok.Line, op, operand)
}

// parsePrefixIncrDecr handles `++x` / `--x`, desugared the same way
// as the postfix form: `x = x + 1`.
func (p *Parser) parsePrefixIncrDecr() ast.Expression {
	tok := p.curToken
	op := "+"
	if tok.Type == token.DECR {
		op = "-"
	}
	p.nextToken()
	target := p.parseExpression(UNARY)
	if target == nil {
		return nil
	}
	one := ast.NewIntegerLiteral(tok.Line, 1)
	return ast.NewAssignExpr(tok.Line, target, ast.NewBinaryExpr(tok.Line, op, target, one))
}

func (p *Parser) parsePostfixIncrDecr(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := "+"
	if tok.Type == token.DECR {
		op = "-"
	}
	one := ast.NewIntegerLiteral(tok.Line, 1)
	return ast.NewAssignExpr(tok.Line, left, ast.NewBinaryExpr(tok.Line, op, left, one))
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken() // consume '('
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.curToken
	elems := p.parseExpressionList(token.RBRACKET)
	return ast.NewListLiteral(tok.Line, elems)
}

func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first != nil {
		list = append(list, first)
	}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		e := p.parseExpression(LOWEST)
		if e != nil {
			list = append(list, e)
		}
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseDictLiteral() ast.Expression {
	tok := p.curToken
	var entries []ast.DictEntry
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		entries = append(entries, ast.DictEntry{Key: key, Value: val})
		if !p.peekTokenIs(token.RBRACE) {
			if !p.expectPeek(token.COMMA) {
				return nil
			}
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return ast.NewDictLiteral(tok.Line, entries)
}

func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(MULTIPLICATIVE)
	return ast.NewRangeExpr(tok.Line, left, right)
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := tok.Literal
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return ast.NewBinaryExpr(tok.Line, op, left, right)
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := tok.Literal
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return ast.NewLogicalExpr(tok.Line, op, left, right)
}

func (p *Parser) parseTernaryExpression(cond ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	then := p.parseExpression(TERNARY)
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	els := p.parseExpression(TERNARY)
	return ast.NewTernaryExpr(tok.Line, cond, then, els)
}

func (p *Parser) parseNullCoalesceExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(NULLCOALESCE)
	return ast.NewNullCoalesceExpr(tok.Line, left, right)
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.curToken
	args := p.parseExpressionList(token.RPAREN)
	return ast.NewCallExpr(tok.Line, callee, args)
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return ast.NewMemberExpr(tok.Line, object, p.curToken.Literal)
}

// assignTargetOK reports whether e is a legal assignment target: a
// bare identifier or an attribute chain. Index assignment (`a[i]=v`)
// is not part of the grammar; lists and dicts are mutated through
// method calls instead.
func assignTargetOK(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !assignTargetOK(left) {
		p.errorf("invalid assignment target")
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return ast.NewAssignExpr(tok.Line, left, value)
}

var compoundOps = map[token.Type]string{
	token.PLUS_ASSIGN:  "+",
	token.MINUS_ASSIGN: "-",
	token.STAR_ASSIGN:  "*",
	token.SLASH_ASSIGN: "/",
}

func (p *Parser) parseCompoundAssignExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !assignTargetOK(left) {
		p.errorf("invalid assignment target")
		return nil
	}
	op := compoundOps[tok.Type]
	p.nextToken()
	rhs := p.parseExpression(LOWEST)
	if rhs == nil {
		return nil
	}
	return ast.NewAssignExpr(tok.Line, left, ast.NewBinaryExpr(tok.Line, op, left, rhs))
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	className := p.curToken.Literal
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args := p.parseExpressionList(token.RPAREN)
	return ast.NewNewExpr(tok.Line, className, args)
}

func (p *Parser) parseSuperExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.DOT) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	method := p.curToken.Literal
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args := p.parseExpressionList(token.RPAREN)
	return ast.NewSuperCallExpr(tok.Line, method, args)
}

// parseParamList parses `(name [: Type], ...)`; curToken must be '('
// on entry and is left on the matching ')' on return.
func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	for {
		name := p.curToken.Literal
		typ := ""
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return params
			}
			typ = p.curToken.Literal
		}
		params = append(params, ast.Param{Name: name, Type: typ})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RPAREN) {
		return params
	}
	return params
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.curToken
	name := ""
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		name = p.curToken.Literal
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseParamList()
	ret := ""
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		ret = p.curToken.Literal
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatements()
	return ast.NewFunctionLiteral(tok.Line, name, params, ret, body)
}

// parseDecoratedFunctionLiteral lowers `@deco func f(...) {...}` into
// `f = deco(func (...) {...})`, reusing AssignExpr/CallExpr so the
// compiler never needs to know decorators exist.
func (p *Parser) parseDecoratedFunctionLiteral() ast.Expression {
	tok := p.curToken
	p.nextToken()
	decorator := p.parseExpression(POSTFIX)
	if decorator == nil {
		return nil
	}
	p.skipNewlines()
	if !p.curTokenIs(token.FUNC) && !p.expectPeek(token.FUNC) {
		return nil
	}
	fnExpr := p.parseFunctionLiteral()
	fn, ok := fnExpr.(*ast.FunctionLiteral)
	if !ok {
		return nil
	}
	wrapped := ast.NewCallExpr(tok.Line, decorator, []ast.Expression{fn})
	if fn.Name == "" {
		return wrapped
	}
	target := ast.NewIdentifier(tok.Line, fn.Name)
	anon := ast.NewFunctionLiteral(fn.Line(), "", fn.Params, fn.ReturnType, fn.Body)
	return ast.NewAssignExpr(tok.Line, target, ast.NewCallExpr(tok.Line, decorator, []ast.Expression{anon}))
}

