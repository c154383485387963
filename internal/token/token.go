// Package token defines the lexical tokens produced by the lexer and
// consumed by the parser.
package token

// Type identifies the lexical category of a Token.
type Type int

const (
	ILLEGAL Type = iota
	EOF

	// Literals & identifiers
	IDENT
	INT
	FLOAT
	STRING

	// Keywords
	VAR
	CONST
	IF
	ELSE
	WHILE
	FOR
	FOREACH
	IN
	FUNC
	RETURN
	PRINT
	INPUT
	CLASS
	NEW
	EXTENDS
	IMPLEMENTS
	INTERFACE
	ENUM
	NAMESPACE
	IMPORT
	BREAK
	CONTINUE
	SWITCH
	CASE
	DEFAULT
	TRY
	CATCH
	THROW
	TRUE
	FALSE
	NULL
	SUPER
	STATIC
	FINAL
	PUBLIC
	PRIVATE
	PROTECTED
	PROP

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT

	EQ
	NOT_EQ
	LT
	GT
	LTE
	GTE

	AND
	OR
	BANG

	BIT_AND
	BIT_OR
	BIT_XOR
	SHL
	SHR

	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	INCR
	DECR

	NULL_COALESCE
	QUESTION
	COLON

	DOT_DOT
	ARROW
	AT

	// Punctuation
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	LPAREN
	RPAREN
	DOT
	COMMA

	NEWLINE
)

var names = map[Type]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING",
	VAR: "var", CONST: "const", IF: "if", ELSE: "else", WHILE: "while",
	FOR: "for", FOREACH: "foreach", IN: "in", FUNC: "func", RETURN: "return",
	PRINT: "print", INPUT: "input", CLASS: "class", NEW: "new",
	EXTENDS: "extends", IMPLEMENTS: "implements", INTERFACE: "interface",
	ENUM: "enum", NAMESPACE: "namespace", IMPORT: "import", BREAK: "break",
	CONTINUE: "continue", SWITCH: "switch", CASE: "case", DEFAULT: "default",
	TRY: "try", CATCH: "catch", THROW: "throw", TRUE: "true", FALSE: "false",
	NULL: "null", SUPER: "super", STATIC: "static", FINAL: "final",
	PUBLIC: "public", PRIVATE: "private", PROTECTED: "protected", PROP: "prop",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	EQ: "==", NOT_EQ: "!=", LT: "<", GT: ">", LTE: "<=", GTE: ">=",
	AND: "&&", OR: "||", BANG: "!",
	BIT_AND: "&", BIT_OR: "|", BIT_XOR: "^", SHL: "<<", SHR: ">>",
	ASSIGN: "=", PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=",
	SLASH_ASSIGN: "/=", INCR: "++", DECR: "--",
	NULL_COALESCE: "??", QUESTION: "?", COLON: ":",
	DOT_DOT: "..", ARROW: "->", AT: "@",
	LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	LPAREN: "(", RPAREN: ")", DOT: ".", COMMA: ",",
	NEWLINE: "NEWLINE",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Keywords maps the reserved-word spelling to its Type.
var Keywords = map[string]Type{
	"var": VAR, "const": CONST, "if": IF, "else": ELSE, "while": WHILE,
	"for": FOR, "foreach": FOREACH, "in": IN, "func": FUNC, "return": RETURN,
	"print": PRINT, "input": INPUT, "class": CLASS, "new": NEW,
	"extends": EXTENDS, "implements": IMPLEMENTS, "interface": INTERFACE,
	"enum": ENUM, "namespace": NAMESPACE, "import": IMPORT, "break": BREAK,
	"continue": CONTINUE, "switch": SWITCH, "case": CASE, "default": DEFAULT,
	"try": TRY, "catch": CATCH, "throw": THROW, "true": TRUE, "false": FALSE,
	"null": NULL, "super": SUPER, "static": STATIC, "final": FINAL,
	"public": PUBLIC, "private": PRIVATE, "protected": PROTECTED, "prop": PROP,
}

// LookupIdent classifies ident as a keyword Type or plain IDENT.
func LookupIdent(ident string) Type {
	if t, ok := Keywords[ident]; ok {
		return t
	}
	return IDENT
}

// Token is a single lexeme with its source position.
type Token struct {
	Type    Type
	Literal string
	Line    int
}

func New(t Type, literal string, line int) Token {
	return Token{Type: t, Literal: literal, Line: line}
}
