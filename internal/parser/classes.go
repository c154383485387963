package parser

import (
	"github.com/aegis-lang/aegis/internal/ast"
	"github.com/aegis-lang/aegis/internal/token"
)

func (p *Parser) parseClassStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal

	var params []string
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken() // consume '('
		params = []string{}
		if !p.peekTokenIs(token.RPAREN) {
			p.nextToken()
			params = append(params, p.curToken.Literal)
			for p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				params = append(params, p.curToken.Literal)
			}
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}

	parent := ""
	if p.peekTokenIs(token.EXTENDS) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		parent = p.curToken.Literal
	}

	var implements []string
	if p.peekTokenIs(token.IMPLEMENTS) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		implements = append(implements, p.curToken.Literal)
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			implements = append(implements, p.curToken.Literal)
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	var fields []ast.FieldDecl
	var methods []ast.MethodDecl
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
		case token.STATIC, token.FINAL, token.PUBLIC, token.PRIVATE, token.PROTECTED:
			// Access/storage modifiers are accepted and ignored: the
			// runtime has no visibility enforcement.
			p.nextToken()
		case token.PROP:
			fields = append(fields, p.parseFieldDecl())
			p.nextToken()
		case token.FUNC:
			fn := p.parseFunctionLiteral()
			if lit, ok := fn.(*ast.FunctionLiteral); ok {
				methods = append(methods, ast.MethodDecl{Function: p.withImplicitThis(lit)})
			}
			p.nextToken()
		case token.IDENT:
			// Method shorthand: `name(params) [-> Type] { body }`,
			// the form used throughout the language's own class
			// examples (no `func` keyword inside a class body).
			lit := p.parseMethodShorthand()
			if lit != nil {
				methods = append(methods, ast.MethodDecl{Function: p.withImplicitThis(lit)})
			}
			p.nextToken()
		default:
			p.errorf("unexpected token %s in class body", p.curToken.Type)
			p.nextToken()
		}
	}
	return ast.NewClassStatement(tok.Line, name, params, parent, implements, fields, methods)
}

// withImplicitThis prepends the `this` parameter every method needs
// bound at local slot 0.
func (p *Parser) withImplicitThis(lit *ast.FunctionLiteral) *ast.FunctionLiteral {
	params := append([]ast.Param{{Name: "this"}}, lit.Params...)
	return ast.NewFunctionLiteral(lit.Line(), lit.Name, params, lit.ReturnType, lit.Body)
}

// parseMethodShorthand parses `name(params) [-> Type] { body }` with
// curToken on the method name.
func (p *Parser) parseMethodShorthand() *ast.FunctionLiteral {
	tok := p.curToken
	name := p.curToken.Literal
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

// parseFieldDecl parses `prop name [: type] [= expr]` with curToken on
// `prop`, leaving curToken on the last token consumed (the default
// expression, or the type, or the name).
func (p *Parser) parseFieldDecl() ast.FieldDecl {
	if !p.expectPeek(token.IDENT) {
		return ast.FieldDecl{}
	}
	name := p.curToken.Literal
	typ := ""
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return ast.FieldDecl{Name: name}
		}
		typ = p.curToken.Literal
	}
	var def ast.Expression
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		def = p.parseExpression(LOWEST)
	}
	return ast.FieldDecl{Name: name, Type: typ, Default: def}
}

func (p *Parser) parseInterfaceStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	var methods []string
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if p.curTokenIs(token.IDENT) {
			methods = append(methods, p.curToken.Literal)
		}
		p.nextToken()
		// allow an optional `(...)` signature to be skipped
		if p.curTokenIs(token.LPAREN) {
			depth := 1
			p.nextToken()
			for depth > 0 && !p.curTokenIs(token.EOF) {
				if p.curTokenIs(token.LPAREN) {
					depth++
				} else if p.curTokenIs(token.RPAREN) {
					depth--
				}
				p.nextToken()
			}
		}
	}
	return ast.NewInterfaceStatement(tok.Line, name, methods)
}

func (p *Parser) parseEnumStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	var members []ast.EnumMember
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(token.IDENT) {
			p.errorf("expected enum member name, got %s", p.curToken.Type)
			p.nextToken()
			continue
		}
		m := ast.EnumMember{Name: p.curToken.Literal}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			if !p.expectPeek(token.INT) {
				return nil
			}
			lit := p.parseIntegerLiteral()
			if il, ok := lit.(*ast.IntegerLiteral); ok {
				v := il.Value
				m.Value = &v
			}
		}
		members = append(members, m)
		p.nextToken()
	}
	return ast.NewEnumStatement(tok.Line, name, members)
}

func (p *Parser) parseNamespaceStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatements()
	return ast.NewNamespaceStatement(tok.Line, name, body)
}
