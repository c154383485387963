// Package lexer turns aegis source text into a token stream.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aegis-lang/aegis/internal/token"
)

// Lexer scans one rune of lookahead at a time and tracks line numbers
// for diagnostics. Interpolated backtick strings are handled by pushing
// synthesized tokens onto a small pending queue (see scanBacktickString),
// so NextToken always drains the queue before reading more input.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int

	pending []token.Token
}

// New constructs a Lexer over input, skipping a leading shebang line.
func New(input string) *Lexer {
	if strings.HasPrefix(input, "#!") {
		if i := strings.IndexByte(input, '\n'); i >= 0 {
			input = input[i+1:]
		} else {
			input = ""
		}
	}
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if l.ch == '\n' {
		l.line++
	}
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// NextToken returns the next token in the stream, draining the
// interpolation queue first when non-empty.
func (l *Lexer) NextToken() (token.Token, error) {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t, nil
	}
	return l.scan()
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			startLine := l.line
			l.readChar()
			l.readChar()
			closed := false
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				return fmt.Errorf("line %d: unterminated block comment", startLine)
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) scan() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}

	line := l.line
	ch := l.ch

	switch {
	case ch == 0:
		return token.New(token.EOF, "", line), nil
	case ch == '\n':
		l.readChar()
		return token.New(token.NEWLINE, "\\n", line), nil
	case isLetter(ch):
		ident := l.readIdentifier()
		return token.New(token.LookupIdent(ident), ident, line), nil
	case isDigit(ch):
		return l.readNumber(), nil
	case ch == '"':
		return l.scanQuotedString()
	case ch == '`':
		return l.scanBacktickString()
	}

	// Punctuation and operators.
	switch ch {
	case '+':
		if l.peekChar() == '+' {
			l.readChar()
			l.readChar()
			return token.New(token.INCR, "++", line), nil
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New(token.PLUS_ASSIGN, "+=", line), nil
		}
		l.readChar()
		return token.New(token.PLUS, "+", line), nil
	case '-':
		if l.peekChar() == '-' {
			l.readChar()
			l.readChar()
			return token.New(token.DECR, "--", line), nil
		}
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New(token.MINUS_ASSIGN, "-=", line), nil
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return token.New(token.ARROW, "->", line), nil
		}
		l.readChar()
		return token.New(token.MINUS, "-", line), nil
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New(token.STAR_ASSIGN, "*=", line), nil
		}
		l.readChar()
		return token.New(token.STAR, "*", line), nil
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New(token.SLASH_ASSIGN, "/=", line), nil
		}
		l.readChar()
		return token.New(token.SLASH, "/", line), nil
	case '%':
		l.readChar()
		return token.New(token.PERCENT, "%", line), nil
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New(token.EQ, "==", line), nil
		}
		l.readChar()
		return token.New(token.ASSIGN, "=", line), nil
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New(token.NOT_EQ, "!=", line), nil
		}
		l.readChar()
		return token.New(token.BANG, "!", line), nil
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New(token.LTE, "<=", line), nil
		}
		if l.peekChar() == '<' {
			l.readChar()
			l.readChar()
			return token.New(token.SHL, "<<", line), nil
		}
		l.readChar()
		return token.New(token.LT, "<", line), nil
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.New(token.GTE, ">=", line), nil
		}
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return token.New(token.SHR, ">>", line), nil
		}
		l.readChar()
		return token.New(token.GT, ">", line), nil
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return token.New(token.AND, "&&", line), nil
		}
		return token.Token{}, fmt.Errorf("line %d: unexpected '&' (did you mean '&&'?)", line)
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return token.New(token.OR, "||", line), nil
		}
		l.readChar()
		return token.New(token.BIT_OR, "|", line), nil
	case '^':
		l.readChar()
		return token.New(token.BIT_XOR, "^", line), nil
	case '?':
		if l.peekChar() == '?' {
			l.readChar()
			l.readChar()
			return token.New(token.NULL_COALESCE, "??", line), nil
		}
		l.readChar()
		return token.New(token.QUESTION, "?", line), nil
	case ':':
		l.readChar()
		return token.New(token.COLON, ":", line), nil
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			l.readChar()
			return token.New(token.DOT_DOT, "..", line), nil
		}
		l.readChar()
		return token.New(token.DOT, ".", line), nil
	case '@':
		l.readChar()
		return token.New(token.AT, "@", line), nil
	case '{':
		l.readChar()
		return token.New(token.LBRACE, "{", line), nil
	case '}':
		l.readChar()
		return token.New(token.RBRACE, "}", line), nil
	case '[':
		l.readChar()
		return token.New(token.LBRACKET, "[", line), nil
	case ']':
		l.readChar()
		return token.New(token.RBRACKET, "]", line), nil
	case '(':
		l.readChar()
		return token.New(token.LPAREN, "(", line), nil
	case ')':
		l.readChar()
		return token.New(token.RPAREN, ")", line), nil
	case ',':
		l.readChar()
		return token.New(token.COMMA, ",", line), nil
	}

	l.readChar()
	return token.Token{}, fmt.Errorf("line %d: unexpected character %q", line, ch)
}

func isLetter(ch rune) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch > 127
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber disambiguates Integer vs Float on a single '.' inside the
// digit run; a ".." is left alone for the range operator.
func (l *Lexer) readNumber() token.Token {
	line := l.line
	start := l.position
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lit := l.input[start:l.position]
	if isFloat {
		return token.New(token.FLOAT, lit, line)
	}
	return token.New(token.INT, lit, line)
}

func (l *Lexer) scanQuotedString() (token.Token, error) {
	line := l.line
	l.readChar() // consume opening quote
	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == 0 {
			return token.Token{}, fmt.Errorf("line %d: unterminated string", line)
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				return token.Token{}, fmt.Errorf("line %d: unknown escape '\\%c'", l.line, l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	return token.New(token.STRING, sb.String(), line), nil
}

// scanBacktickString implements the interpolation protocol from the
// spec: the literal chunk is emitted as a STRING, followed by a PLUS,
// followed by the retokenized interpolated body, followed by a PLUS,
// repeated for every ${...} segment. All but the first token are
// pushed onto the pending queue; scan() returns the first one.
func (l *Lexer) scanBacktickString() (token.Token, error) {
	line := l.line
	l.readChar() // consume opening backtick

	var out []token.Token
	var sb strings.Builder
	flushLiteral := func() {
		out = append(out, token.New(token.STRING, sb.String(), line))
		sb.Reset()
	}

	for l.ch != '`' {
		if l.ch == 0 {
			return token.Token{}, fmt.Errorf("line %d: unterminated string", line)
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '`':
				sb.WriteByte('`')
			case '\\':
				sb.WriteByte('\\')
			case '$':
				sb.WriteByte('$')
			default:
				return token.Token{}, fmt.Errorf("line %d: unknown escape '\\%c'", l.line, l.ch)
			}
			l.readChar()
			continue
		}
		if l.ch == '$' && l.peekChar() == '{' {
			flushLiteral()
			out = append(out, token.New(token.PLUS, "+", l.line))
			l.readChar() // consume $
			l.readChar() // consume {

			depth := 1
			var body strings.Builder
			for depth > 0 {
				if l.ch == 0 {
					return token.Token{}, fmt.Errorf("line %d: unterminated interpolation", line)
				}
				if l.ch == '{' {
					depth++
				} else if l.ch == '}' {
					depth--
					if depth == 0 {
						l.readChar()
						break
					}
				}
				body.WriteRune(l.ch)
				l.readChar()
			}

			sub := New(body.String())
			for {
				t, err := sub.NextToken()
				if err != nil {
					return token.Token{}, err
				}
				if t.Type == token.EOF {
					break
				}
				out = append(out, t)
			}
			out = append(out, token.New(token.PLUS, "+", l.line))
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	flushLiteral()
	l.readChar() // consume closing backtick

	out = trimEmptyStringConcat(out)

	first := out[0]
	l.pending = append(l.pending, out[1:]...)
	return first, nil
}

// trimEmptyStringConcat removes `"" +` / `+ ""` pairs that the
// flush/emit logic above produces when a `${...}` segment is adjacent
// to the start or end of the backtick string.
func trimEmptyStringConcat(toks []token.Token) []token.Token {
	isEmptyStr := func(t token.Token) bool { return t.Type == token.STRING && t.Literal == "" }
	for len(toks) >= 2 && isEmptyStr(toks[0]) && toks[1].Type == token.PLUS {
		toks = toks[2:]
	}
	for len(toks) >= 2 && isEmptyStr(toks[len(toks)-1]) && toks[len(toks)-2].Type == token.PLUS {
		toks = toks[:len(toks)-2]
	}
	if len(toks) == 0 {
		return []token.Token{token.New(token.STRING, "", 0)}
	}
	return toks
}
