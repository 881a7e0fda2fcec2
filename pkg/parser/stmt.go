package parser

import (
	"tapecc/pkg/ast"
	"tapecc/pkg/lexer"
)

// parseBlock parses `{ stmt... }`.
func (p *Parser) parseBlock() (ast.Stmt, error) {
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.BlockStmt{Stmts: stmts}, nil
}

// parseStatement parses any single statement.
func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.peek().Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.KW_IF:
		return p.parseIf()
	case lexer.KW_WHILE:
		return p.parseWhile()
	case lexer.KW_DO:
		return p.parseDoWhile()
	case lexer.KW_FOR:
		return p.parseFor()
	case lexer.KW_SWITCH:
		return p.parseSwitch()
	case lexer.KW_CASE:
		return p.parseCase()
	case lexer.KW_DEFAULT:
		return p.parseDefault()
	case lexer.KW_RETURN:
		return p.parseReturn()
	case lexer.KW_GOTO:
		return p.parseGoto()
	case lexer.KW_CONTINUE:
		p.advance()
		_, err := p.expect(lexer.SEMICOLON)
		return &ast.ContinueStmt{}, err
	case lexer.KW_BREAK:
		p.advance()
		_, err := p.expect(lexer.SEMICOLON)
		return &ast.BreakStmt{}, err
	case lexer.KW_PRINT:
		return p.parsePrint()
	case lexer.SEMICOLON:
		p.advance()
		return &ast.ExprStmt{}, nil
	case lexer.IDENT:
		if p.peekAt(1).Type == lexer.COLON {
			label := p.advance()
			p.advance() // ':'
			inner, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			return &ast.LabeledStmt{Label: label.Lexeme, Stmt: inner}, nil
		}
		return p.parseDeclOrExprStmt()
	default:
		if isTypeStart(p.peek().Type) {
			return p.parseDeclOrExprStmt()
		}
		return p.parseDeclOrExprStmt()
	}
}

func (p *Parser) parseDeclOrExprStmt() (ast.Stmt, error) {
	if isTypeStart(p.peek().Type) {
		decl, err := p.parseLocalDecls()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMICOLON); err != nil {
			return nil, err
		}
		return decl, nil
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: e}, nil
}

// parseLocalDecls parses the body of a DeclStmt, without its trailing
// semicolon: `int a = 1, b, *c;`.
func (p *Parser) parseLocalDecls() (*ast.DeclStmt, error) {
	base, _, err := p.parseDeclSpecifiers()
	if err != nil {
		return nil, err
	}
	var decls []ast.LocalDecl
	for {
		d, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		name, ok := ast.Name(d)
		if !ok {
			return nil, p.fmtError(p.peek(), "local declaration missing a name")
		}
		ty := ast.SetType(d, base)

		var init ast.Expr
		if p.accept(lexer.ASSIGN) {
			if p.at(lexer.LBRACE) {
				init, err = p.parseInitList()
			} else {
				init, err = p.parseAssignExpr()
			}
			if err != nil {
				return nil, err
			}
		}
		decls = append(decls, ast.LocalDecl{Name: name, Type: ty, Init: init})
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	return &ast.DeclStmt{Decls: decls}, nil
}

func (p *Parser) parseInitList() (ast.Expr, error) {
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var elems []ast.Expr
	for !p.at(lexer.RBRACE) {
		e, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.InitList{Elements: elems}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseBody ast.Stmt
	if p.accept(lexer.KW_ELSE) {
		elseBody, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Cond: cond, Body: body, ElseBody: elseBody}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *Parser) parseDoWhile() (ast.Stmt, error) {
	p.advance()
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KW_WHILE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.DoWhileStmt{Body: body, Cond: cond}, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}

	var init ast.Stmt
	if !p.at(lexer.SEMICOLON) {
		var err error
		if isTypeStart(p.peek().Type) {
			init, err = p.parseLocalDecls()
		} else {
			var e ast.Expr
			e, err = p.parseExpression()
			if err == nil {
				init = &ast.ExprStmt{Expr: e}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.at(lexer.SEMICOLON) {
		var err error
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}

	var step ast.Expr
	if !p.at(lexer.RPAREN) {
		var err error
		step, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Init: init, Cond: cond, Step: step, Body: body}, nil
}

func (p *Parser) parseSwitch() (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	target, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.SwitchStmt{Target: target, Body: body}, nil
}

func (p *Parser) parseCase() (ast.Stmt, error) {
	p.advance()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	inner, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.CaseStmt{Value: value, Stmt: inner}, nil
}

func (p *Parser) parseDefault() (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	inner, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.DefaultStmt{Stmt: inner}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	p.advance()
	if p.accept(lexer.SEMICOLON) {
		return &ast.ReturnStmt{}, nil
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Expr: e}, nil
}

func (p *Parser) parseGoto() (ast.Stmt, error) {
	p.advance()
	label, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.GotoStmt{Label: label.Lexeme}, nil
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Expr: e}, nil
}
