package parser

import (
	"fmt"

	"github.com/aegis-lang/aegis/internal/ast"
	"github.com/aegis-lang/aegis/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VAR:
		return p.parseVarStatement()
	case token.CONST:
		return p.parseConstStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.FOREACH:
		return p.parseForeachStatement()
	case token.FUNC:
		return p.parseFunctionStatement()
	case token.AT:
		return p.parseDecoratedFunctionStatement()
	case token.CLASS:
		return p.parseClassStatement()
	case token.INTERFACE:
		return p.parseInterfaceStatement()
	case token.ENUM:
		return p.parseEnumStatement()
	case token.NAMESPACE:
		return p.parseNamespaceStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.BREAK:
		return ast.NewBreakStatement(p.curToken.Line)
	case token.CONTINUE:
		return ast.NewContinueStatement(p.curToken.Line)
	case token.RETURN:
		return p.parseReturnStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if _, ok := compoundOps[p.peekToken.Type]; ok || p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		exp = p.infixParseFns[p.curToken.Type](exp)
		if exp == nil {
			return nil
		}
	}
	return ast.NewExpressionStatement(tok.Line, exp)
}

// parseBlockStatements parses `{ stmt... }` leaving curToken on the
// closing '}', and returns the raw statement slice (used by function
// and namespace bodies, which store []Statement rather than a nested
// BlockStatement).
func (p *Parser) parseBlockStatements() []ast.Statement {
	var stmts []ast.Statement
	p.nextToken() // consume '{'
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	return stmts
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	tok := p.curToken
	stmts := p.parseBlockStatements()
	return ast.NewBlockStatement(tok.Line, stmts)
}

// tempCounter guarantees a collision-free synthetic name for each
// destructured var declaration within a single parse.
var tempCounter int

func nextTempName() string {
	tempCounter++
	return fmt.Sprintf("$tmp%d", tempCounter)
}

// parseVarStatement handles both `var name [: type] [= expr]` and the
// list-destructuring form `var [a,b,...] = expr`, which lowers to a
// temporary holding expr plus one `var name = tmp.at(i)` per target
// (spec.md §4.2).
func (p *Parser) parseVarStatement() ast.Statement {
	tok := p.curToken
	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken() // consume '['
		var names []string
		p.nextToken()
		for !p.curTokenIs(token.RBRACKET) {
			if p.curTokenIs(token.IDENT) {
				names = append(names, p.curToken.Literal)
			}
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			p.nextToken()
		}
		// curToken now ']'
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		tmp := nextTempName()
		stmts := []ast.Statement{ast.NewVarStatement(tok.Line, tmp, "", value)}
		for i, name := range names {
			idx := ast.NewIntegerLiteral(tok.Line, int64(i))
			call := ast.NewCallExpr(tok.Line,
				ast.NewMemberExpr(tok.Line, ast.NewIdentifier(tok.Line, tmp), "at"),
				[]ast.Expression{idx})
			stmts = append(stmts, ast.NewVarStatement(tok.Line, name, "", call))
		}
		return ast.NewSeqStatement(tok.Line, stmts)
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	typ := ""
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		typ = p.curToken.Literal
	}
	var value ast.Expression
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		value = p.parseExpression(LOWEST)
	}
	return ast.NewVarStatement(tok.Line, name, typ, value)
}

func (p *Parser) parseConstStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	return ast.NewConstStatement(tok.Line, name, value)
}

func (p *Parser) parsePrintStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	value := p.parseExpression(LOWEST)
	return ast.NewPrintStatement(tok.Line, value)
}

func (p *Parser) parseParenCondition() ast.Expression {
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return cond
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.curToken
	cond := p.parseParenCondition()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	then := p.parseBlockStatement()

	var els *ast.BlockStatement
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			inner := p.parseIfStatement()
			els = ast.NewBlockStatement(tok.Line, []ast.Statement{inner})
		} else {
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			els = p.parseBlockStatement()
		}
	}
	return ast.NewIfStatement(tok.Line, cond, then, els)
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.curToken
	cond := p.parseParenCondition()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return ast.NewWhileStatement(tok.Line, cond, body)
}

// parseForStatement parses the C-style `for (i, start, end, step) { ... }`.
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	v := p.curToken.Literal
	if !p.expectPeek(token.COMMA) {
		return nil
	}
	p.nextToken()
	start := p.parseExpression(LOWEST)
	if !p.expectPeek(token.COMMA) {
		return nil
	}
	p.nextToken()
	end := p.parseExpression(LOWEST)
	var step ast.Expression
	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		step = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return ast.NewForStatement(tok.Line, v, start, end, step, body)
}

func (p *Parser) parseForeachStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	v := p.curToken.Literal
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	iterable := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return ast.NewForeachStatement(tok.Line, v, iterable, body)
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	fn := p.parseFunctionLiteral()
	lit, ok := fn.(*ast.FunctionLiteral)
	if !ok {
		return nil
	}
	return ast.NewFunctionStatement(lit.Line(), lit)
}

// parseDecoratedFunctionStatement mirrors parseDecoratedFunctionLiteral
// but at statement position, where the result is an assignment
// statement (not a value-producing expression).
func (p *Parser) parseDecoratedFunctionStatement() ast.Statement {
	tok := p.curToken
	exp := p.parseDecoratedFunctionLiteral()
	if exp == nil {
		return nil
	}
	return ast.NewExpressionStatement(tok.Line, exp)
}

func (p *Parser) parseThrowStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	value := p.parseExpression(LOWEST)
	return ast.NewThrowStatement(tok.Line, value)
}

func (p *Parser) parseTryStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	try := p.parseBlockStatement()
	if !p.expectPeek(token.CATCH) {
		return nil
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	catchVar := p.curToken.Literal
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	catch := p.parseBlockStatement()
	return ast.NewTryStatement(tok.Line, try, catchVar, catch)
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	subject := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	var cases []ast.SwitchCase
	var def []ast.Statement
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
		case token.CASE:
			p.nextToken()
			var values []ast.Expression
			v := p.parseExpression(LOWEST)
			values = append(values, v)
			for p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				values = append(values, p.parseExpression(LOWEST))
			}
			if !p.expectPeek(token.COLON) {
				return nil
			}
			p.nextToken()
			body := p.parseCaseBody()
			cases = append(cases, ast.SwitchCase{Values: values, Body: body})
		case token.DEFAULT:
			if !p.expectPeek(token.COLON) {
				return nil
			}
			p.nextToken()
			def = p.parseCaseBody()
		default:
			p.errorf("unexpected token %s in switch body", p.curToken.Type)
			p.nextToken()
		}
	}
	return ast.NewSwitchStatement(tok.Line, subject, cases, def)
}

// parseCaseBody consumes statements until the next `case`, `default`,
// or the closing `}`, leaving curToken on that terminator.
func (p *Parser) parseCaseBody() []ast.Statement {
	var stmts []ast.Statement
	for !p.curTokenIs(token.CASE) && !p.curTokenIs(token.DEFAULT) &&
		!p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	return stmts
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	if p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return ast.NewReturnStatement(tok.Line, nil)
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	return ast.NewReturnStatement(tok.Line, value)
}

func (p *Parser) parseImportStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.STRING) {
		return nil
	}
	path := p.curToken.Literal
	alias := ""
	if p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "as" {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		alias = p.curToken.Literal
	}
	return ast.NewImportStatement(tok.Line, path, alias)
}
