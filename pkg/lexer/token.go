// Package lexer tokenizes the C-like subset tapecc accepts.
package lexer

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota

	IDENT
	INTEGER
	CHARLIT

	// Keywords
	KW_INT
	KW_CHAR
	KW_SHORT
	KW_LONG
	KW_UNSIGNED
	KW_SIGNED
	KW_VOID
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_DO
	KW_FOR
	KW_RETURN
	KW_GOTO
	KW_CONTINUE
	KW_BREAK
	KW_SWITCH
	KW_CASE
	KW_DEFAULT
	KW_SIZEOF
	KW_PRINT
	KW_STATIC

	// Delimiters
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	SEMICOLON
	COMMA
	COLON
	QUESTION

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AMP
	PIPE
	CARET
	TILDE
	BANG
	SHL
	SHR
	AND_AND
	OR_OR
	PLUS_PLUS
	MINUS_MINUS

	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	AMP_ASSIGN
	PIPE_ASSIGN
	CARET_ASSIGN
	SHL_ASSIGN
	SHR_ASSIGN

	EQ
	NEQ
	LT
	GT
	LE
	GE

	DOT
	ARROW
)

var tokenNames = map[TokenType]string{
	EOF: "EOF", IDENT: "IDENT", INTEGER: "INTEGER", CHARLIT: "CHARLIT",
	KW_INT: "int", KW_CHAR: "char", KW_SHORT: "short", KW_LONG: "long",
	KW_UNSIGNED: "unsigned", KW_SIGNED: "signed", KW_VOID: "void",
	KW_IF: "if", KW_ELSE: "else", KW_WHILE: "while", KW_DO: "do",
	KW_FOR: "for", KW_RETURN: "return", KW_GOTO: "goto",
	KW_CONTINUE: "continue", KW_BREAK: "break", KW_SWITCH: "switch",
	KW_CASE: "case", KW_DEFAULT: "default", KW_SIZEOF: "sizeof",
	KW_PRINT: "print", KW_STATIC: "static",
	LBRACE: "{", RBRACE: "}", LPAREN: "(", RPAREN: ")",
	LBRACKET: "[", RBRACKET: "]", SEMICOLON: ";", COMMA: ",",
	COLON: ":", QUESTION: "?",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	AMP: "&", PIPE: "|", CARET: "^", TILDE: "~", BANG: "!",
	SHL: "<<", SHR: ">>", AND_AND: "&&", OR_OR: "||",
	PLUS_PLUS: "++", MINUS_MINUS: "--",
	ASSIGN: "=", PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=",
	STAR_ASSIGN: "*=", SLASH_ASSIGN: "/=", PERCENT_ASSIGN: "%=",
	AMP_ASSIGN: "&=", PIPE_ASSIGN: "|=", CARET_ASSIGN: "^=",
	SHL_ASSIGN: "<<=", SHR_ASSIGN: ">>=",
	EQ: "==", NEQ: "!=", LT: "<", GT: ">", LE: "<=", GE: ">=",
	DOT: ".", ARROW: "->",
}

// Keywords maps reserved identifiers to their TokenType.
var Keywords = map[string]TokenType{
	"int": KW_INT, "char": KW_CHAR, "short": KW_SHORT, "long": KW_LONG,
	"unsigned": KW_UNSIGNED, "signed": KW_SIGNED, "void": KW_VOID,
	"if": KW_IF, "else": KW_ELSE, "while": KW_WHILE, "do": KW_DO,
	"for": KW_FOR, "return": KW_RETURN, "goto": KW_GOTO,
	"continue": KW_CONTINUE, "break": KW_BREAK, "switch": KW_SWITCH,
	"case": KW_CASE, "default": KW_DEFAULT, "sizeof": KW_SIZEOF,
	"print": KW_PRINT, "static": KW_STATIC,
}

func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string
	IntVal uint16
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("%-14s %-10q line %d", t.Type, t.Lexeme, t.Line)
}
