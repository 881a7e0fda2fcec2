package parser

import (
	"tapecc/pkg/ast"
	"tapecc/pkg/lexer"
)

// parseExpression parses the comma operator: assignment (',' assignment)*
//.
func (p *Parser) parseExpression() (ast.Expr, error) {
	first, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.COMMA) {
		return first, nil
	}
	exprs := []ast.Expr{first}
	for p.accept(lexer.COMMA) {
		next, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	return &ast.SeqExpr{Exprs: exprs}, nil
}

var assignOps = map[lexer.TokenType]ast.AssignOp{
	lexer.ASSIGN:         ast.Assign,
	lexer.PLUS_ASSIGN:    ast.AddAssign,
	lexer.MINUS_ASSIGN:   ast.SubAssign,
	lexer.STAR_ASSIGN:    ast.MulAssign,
	lexer.SLASH_ASSIGN:   ast.DivAssign,
	lexer.PERCENT_ASSIGN: ast.ModAssign,
	lexer.AMP_ASSIGN:     ast.AndAssign,
	lexer.PIPE_ASSIGN:    ast.OrAssign,
	lexer.CARET_ASSIGN:   ast.XorAssign,
	lexer.SHL_ASSIGN:     ast.ShlAssign,
	lexer.SHR_ASSIGN:     ast.ShrAssign,
}

// parseAssignExpr parses `target op= value`, right-associative, falling
// through to the ternary level when no assignment operator follows.
func (p *Parser) parseAssignExpr() (ast.Expr, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if op, ok := assignOps[p.peek().Type]; ok {
		p.advance()
		value, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{Target: left, Op: op, Value: value}, nil
	}
	return left, nil
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.accept(lexer.QUESTION) {
		return cond, nil
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	els, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	return &ast.TernaryExpr{Cond: cond, Then: then, Else: els}, nil
}

// binaryLevel folds a left-associative chain of same-precedence binary
// operators into one ast.BinaryExpr.
func (p *Parser) binaryLevel(next func() (ast.Expr, error), ops map[lexer.TokenType]ast.BinOp) (ast.Expr, error) {
	head, err := next()
	if err != nil {
		return nil, err
	}
	var chainOps []ast.BinOp
	var chainOperands []ast.Expr
	for {
		op, ok := ops[p.peek().Type]
		if !ok {
			break
		}
		p.advance()
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		chainOps = append(chainOps, op)
		chainOperands = append(chainOperands, rhs)
	}
	if len(chainOps) == 0 {
		return head, nil
	}
	return &ast.BinaryExpr{Head: head, Op: chainOps, Operand: chainOperands}, nil
}

var logicalOrOps = map[lexer.TokenType]ast.BinOp{lexer.OR_OR: ast.LogOr}
var logicalAndOps = map[lexer.TokenType]ast.BinOp{lexer.AND_AND: ast.LogAnd}
var bitOrOps = map[lexer.TokenType]ast.BinOp{lexer.PIPE: ast.BitOr}
var bitXorOps = map[lexer.TokenType]ast.BinOp{lexer.CARET: ast.BitXor}
var bitAndOps = map[lexer.TokenType]ast.BinOp{lexer.AMP: ast.BitAnd}
var equalityOps = map[lexer.TokenType]ast.BinOp{lexer.EQ: ast.Eq, lexer.NEQ: ast.Neq}
var relationalOps = map[lexer.TokenType]ast.BinOp{
	lexer.LT: ast.Lt, lexer.GT: ast.Gr, lexer.LE: ast.LtEq, lexer.GE: ast.GrEq,
}
var shiftOps = map[lexer.TokenType]ast.BinOp{lexer.SHL: ast.LShift, lexer.SHR: ast.RShift}
var additiveOps = map[lexer.TokenType]ast.BinOp{lexer.PLUS: ast.Add, lexer.MINUS: ast.Sub}
var multiplicativeOps = map[lexer.TokenType]ast.BinOp{
	lexer.STAR: ast.Mul, lexer.SLASH: ast.Div, lexer.PERCENT: ast.Mod,
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.binaryLevel(p.parseLogicalAnd, logicalOrOps)
}
func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.binaryLevel(p.parseBitOr, logicalAndOps)
}
func (p *Parser) parseBitOr() (ast.Expr, error)  { return p.binaryLevel(p.parseBitXor, bitOrOps) }
func (p *Parser) parseBitXor() (ast.Expr, error) { return p.binaryLevel(p.parseBitAnd, bitXorOps) }
func (p *Parser) parseBitAnd() (ast.Expr, error) { return p.binaryLevel(p.parseEquality, bitAndOps) }
func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.binaryLevel(p.parseRelational, equalityOps)
}
func (p *Parser) parseRelational() (ast.Expr, error) {
	return p.binaryLevel(p.parseShift, relationalOps)
}
func (p *Parser) parseShift() (ast.Expr, error) { return p.binaryLevel(p.parseAdditive, shiftOps) }
func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.binaryLevel(p.parseMultiplicative, additiveOps)
}
func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.binaryLevel(p.parseUnary, multiplicativeOps)
}

// looksLikeTypeName reports whether the tokens starting at LPAREN form a
// cast `(type-name) expr` rather than a parenthesized expression.
func (p *Parser) looksLikeCast() bool {
	return isTypeStart(p.peekAt(1).Type)
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.peek().Type {
	case lexer.BANG:
		p.advance()
		r, err := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.LogNot, Right: r}, err
	case lexer.TILDE:
		p.advance()
		r, err := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.BitNot, Right: r}, err
	case lexer.MINUS:
		p.advance()
		r, err := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.Negate, Right: r}, err
	case lexer.AMP:
		p.advance()
		r, err := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.Addr, Right: r}, err
	case lexer.STAR:
		p.advance()
		r, err := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.Deref, Right: r}, err
	case lexer.PLUS_PLUS:
		p.advance()
		r, err := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.PreInc, Right: r}, err
	case lexer.MINUS_MINUS:
		p.advance()
		r, err := p.parseUnary()
		return &ast.UnaryExpr{Op: ast.PreDec, Right: r}, err
	case lexer.KW_SIZEOF:
		return p.parseSizeof()
	case lexer.LPAREN:
		if p.looksLikeCast() {
			return p.parseCast()
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parseSizeof() (ast.Expr, error) {
	p.advance()
	if p.at(lexer.LPAREN) && isTypeStart(p.peekAt(1).Type) {
		p.advance()
		base, _, err := p.parseDeclSpecifiers()
		if err != nil {
			return nil, err
		}
		decl, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return &ast.SizeofType{Type: ast.SetType(decl, base)}, nil
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.SizeofExpr{Expr: operand}, nil
}

func (p *Parser) parseCast() (ast.Expr, error) {
	p.advance() // '('
	base, _, err := p.parseDeclSpecifiers()
	if err != nil {
		return nil, err
	}
	decl, err := p.parseDeclarator()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.CastExpr{Type: ast.SetType(decl, base), Expr: operand}, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case lexer.LBRACKET:
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			e = &ast.IndexExpr{Left: e, Index: idx}
		case lexer.LPAREN:
			p.advance()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			e = &ast.CallExpr{Callee: e, Args: args}
		case lexer.DOT:
			p.advance()
			tok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			e = &ast.FieldExpr{Left: e, Member: tok.Lexeme}
		case lexer.ARROW:
			p.advance()
			tok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			e = &ast.FieldExpr{Left: e, Member: tok.Lexeme, Arrow: true}
		case lexer.PLUS_PLUS:
			p.advance()
			e = &ast.PostfixExpr{Op: ast.PostInc, Left: e}
		case lexer.MINUS_MINUS:
			p.advance()
			e = &ast.PostfixExpr{Op: ast.PostDec, Left: e}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.at(lexer.RPAREN) {
		return args, nil
	}
	for {
		a, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.accept(lexer.COMMA) {
			return args, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.INTEGER:
		p.advance()
		return &ast.Literal{Value: tok.IntVal}, nil
	case lexer.CHARLIT:
		p.advance()
		return &ast.Literal{Value: tok.IntVal}, nil
	case lexer.IDENT:
		p.advance()
		return &ast.VarRef{Name: tok.Lexeme}, nil
	case lexer.LPAREN:
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, p.fmtError(tok, "expected an expression, got %s (%q)", tok.Type, tok.Lexeme)
	}
}
