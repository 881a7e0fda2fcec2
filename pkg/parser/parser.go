// Package parser is a recursive-descent parser for a C-like language
// subset, producing pkg/ast trees from pkg/lexer tokens. It covers
// exactly the grammar the rest of the compiler needs and no more.
package parser

import (
	"fmt"
	"strings"

	"tapecc/pkg/ast"
	"tapecc/pkg/constfold"
	"tapecc/pkg/ctypes"
	"tapecc/pkg/lexer"
)

// Parser holds the token stream and parse position.
type Parser struct {
	tokens []lexer.Token
	pos    int
	lines  []string
}

// New creates a Parser over tokens, lexed from rawSource (kept around
// only to produce source-line snippets in error messages).
func New(tokens []lexer.Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, lines: strings.Split(rawSource, "\n")}
}

// Parse tokenizes and parses src into a Program.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	return New(toks, src).ParseProgram()
}

func (p *Parser) fmtError(tok lexer.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	idx := tok.Line - 1
	snippet := "<source unavailable>"
	if idx >= 0 && idx < len(p.lines) {
		snippet = strings.TrimSpace(p.lines[idx])
	}
	return fmt.Errorf("parse error: line %d: %s\n  |> %s", tok.Line, msg, snippet)
}

func (p *Parser) peek() lexer.Token { return p.peekAt(0) }

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.peek().Type == tt }

func (p *Parser) accept(tt lexer.TokenType) bool {
	if p.at(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// ParseProgram parses a sequence of top-level function and global
// variable declarations until EOF.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := ast.NewProgram()
	for !p.at(lexer.EOF) {
		if err := p.parseTopLevel(prog); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func isTypeStart(tt lexer.TokenType) bool {
	switch tt {
	case lexer.KW_INT, lexer.KW_CHAR, lexer.KW_SHORT, lexer.KW_LONG,
		lexer.KW_UNSIGNED, lexer.KW_SIGNED, lexer.KW_VOID, lexer.KW_STATIC:
		return true
	default:
		return false
	}
}

// parseDeclSpecifiers consumes the base-type keywords of a declaration
//, returning the resulting type and
// whether `static` appeared.
func (p *Parser) parseDeclSpecifiers() (ctypes.Type, bool, error) {
	isStatic := false
	signed := true
	sawSignedness := false
	long := false
	base := ctypes.IntT

	sawBase := false
	for {
		switch p.peek().Type {
		case lexer.KW_STATIC:
			p.advance()
			isStatic = true
		case lexer.KW_UNSIGNED:
			p.advance()
			signed, sawSignedness = false, true
		case lexer.KW_SIGNED:
			p.advance()
			signed, sawSignedness = true, true
		case lexer.KW_VOID:
			p.advance()
			base, sawBase = ctypes.VoidType(), true
		case lexer.KW_CHAR:
			p.advance()
			base, sawBase = ctypes.Char, true
		case lexer.KW_SHORT:
			p.advance()
			base, sawBase = ctypes.Short, true
		case lexer.KW_LONG:
			p.advance()
			long = true
			base, sawBase = ctypes.Long, true
		case lexer.KW_INT:
			p.advance()
			if !long {
				base = ctypes.IntT
			}
			sawBase = true
		default:
			if !sawBase && !sawSignedness {
				return ctypes.Type{}, false, p.fmtError(p.peek(), "expected a type, got %s", p.peek().Type)
			}
			if sawSignedness && base.Kind == ctypes.Int {
				base.Signed = signed
			}
			return base, isStatic, nil
		}
	}
}

// parseDeclarator parses the pointer/array/function shape around a
// named or abstract declarator.
func (p *Parser) parseDeclarator() (ast.Declarator, error) {
	levels := 0
	for p.accept(lexer.STAR) {
		levels++
	}
	base, err := p.parseDirectDeclarator()
	if err != nil {
		return nil, err
	}
	if levels > 0 {
		return ast.Deref{Levels: levels, Base: base}, nil
	}
	return base, nil
}

func (p *Parser) parseDirectDeclarator() (ast.Declarator, error) {
	var d ast.Declarator
	switch p.peek().Type {
	case lexer.LPAREN:
		p.advance()
		inner, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		d = inner
	case lexer.IDENT:
		tok := p.advance()
		d = ast.Named{Name: tok.Lexeme}
	default:
		d = ast.Abstract{}
	}

	for {
		switch p.peek().Type {
		case lexer.LBRACKET:
			p.advance()
			if p.accept(lexer.RBRACKET) {
				d = ast.Unsized{Base: d}
				continue
			}
			sizeExpr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			if extent, ok := constfold.Eval(sizeExpr); ok {
				d = ast.Index{Base: d, Extent: int(extent)}
			} else {
				// Non-foldable extent: a variable-length array decays
				// to a pointer at declarator time.
				d = ast.Unsized{Base: d}
			}
		case lexer.LPAREN:
			p.advance()
			params, err := p.parseParamList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			d = ast.Call{Base: d, Params: params}
		default:
			return d, nil
		}
	}
}

func (p *Parser) parseParamList() ([]ast.ParamDecl, error) {
	var params []ast.ParamDecl
	if p.at(lexer.RPAREN) {
		return params, nil
	}
	if p.at(lexer.KW_VOID) && p.peekAt(1).Type == lexer.RPAREN {
		p.advance()
		return params, nil
	}
	for {
		base, _, err := p.parseDeclSpecifiers()
		if err != nil {
			return nil, err
		}
		decl, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.ParamDecl{Type: base, Declarator: decl})
		if !p.accept(lexer.COMMA) {
			return params, nil
		}
	}
}

// parseTopLevel parses one function definition or one global-variable
// declaration group and records it in prog.
func (p *Parser) parseTopLevel(prog *ast.Program) error {
	base, isStatic, err := p.parseDeclSpecifiers()
	if err != nil {
		return err
	}

	decl, err := p.parseDeclarator()
	if err != nil {
		return err
	}

	if call, isFunc := decl.(ast.Call); isFunc && p.at(lexer.LBRACE) {
		name, ok := ast.Name(call.Base)
		if !ok {
			return p.fmtError(p.peek(), "function definition missing a name")
		}
		body, err := p.parseBlock()
		if err != nil {
			return err
		}
		var params []ast.Param
		for _, pd := range call.Params {
			pname, _ := ast.Name(pd.Declarator)
			params = append(params, ast.Param{Name: pname, Type: ast.SetType(pd.Declarator, pd.Type)})
		}
		prog.AddFunc(name, ast.FuncDef{Return: base, Params: params, Body: body})
		return nil
	}

	// One or more comma-separated global variable declarators.
	for {
		name, ok := ast.Name(decl)
		if !ok {
			return p.fmtError(p.peek(), "declaration missing a name")
		}
		ty := ast.SetType(decl, base)

		var init ast.Expr
		if p.accept(lexer.ASSIGN) {
			init, err = p.parseAssignExpr()
			if err != nil {
				return err
			}
		}
		prog.AddGlobal(name, ast.VarDef{Static: isStatic, Type: ty, Init: init})

		if !p.accept(lexer.COMMA) {
			break
		}
		decl, err = p.parseDeclarator()
		if err != nil {
			return err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return err
	}
	return nil
}
