package lexer

import (
	"testing"

	"github.com/aegis-lang/aegis/internal/token"
)

func collect(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input)
	var out []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		out = append(out, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return out
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tk := range toks {
		out[i] = tk.Type
	}
	return out
}

func TestOperatorsAndPunctuation(t *testing.T) {
	toks := collect(t, "var x = 1 + 2 * 3 == 7 && !false")
	got := types(toks)
	want := []token.Type{
		token.VAR, token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.INT,
		token.STAR, token.INT, token.EQ, token.INT, token.AND, token.BANG,
		token.FALSE, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKeywords(t *testing.T) {
	toks := collect(t, "class extends super try catch throw")
	want := []token.Type{token.CLASS, token.EXTENDS, token.SUPER, token.TRY, token.CATCH, token.THROW, token.EOF}
	got := types(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFloatVsRange(t *testing.T) {
	toks := collect(t, "1.5 1..5")
	if toks[0].Type != token.FLOAT || toks[0].Literal != "1.5" {
		t.Errorf("expected float 1.5, got %v %q", toks[0].Type, toks[0].Literal)
	}
	if toks[1].Type != token.INT || toks[2].Type != token.DOT_DOT || toks[3].Type != token.INT {
		t.Errorf("expected INT DOT_DOT INT for '1..5', got %v", types(toks[1:4]))
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(t, `"a\nb\"c"`)
	if toks[0].Type != token.STRING || toks[0].Literal != "a\nb\"c" {
		t.Fatalf("got %q", toks[0].Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := New("/* abc")
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected error for unterminated block comment")
	}
}

func TestStrayAmpersand(t *testing.T) {
	l := New("a & b")
	l.NextToken() // a
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected error for stray '&'")
	}
}

// TestInterpolation exercises the lexer's documented lowering of
// `${...}` into a StringLiteral/Plus/retokenized-body/Plus sequence.
func TestInterpolation(t *testing.T) {
	toks := collect(t, "`hello ${name}!`")
	got := types(toks)
	want := []token.Type{
		token.STRING, // "hello "
		token.PLUS,
		token.IDENT, // name
		token.PLUS,
		token.STRING, // "!"
		token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[0].Literal != "hello " || toks[4].Literal != "!" {
		t.Errorf("unexpected literals: %q / %q", toks[0].Literal, toks[4].Literal)
	}
}

func TestInterpolationNestedBraces(t *testing.T) {
	toks := collect(t, "`x=${ {1:2}.get(1) }`")
	got := types(toks)
	if got[0] != token.STRING || got[len(got)-1] != token.EOF {
		t.Fatalf("unexpected shape: %v", got)
	}
	// The nested {1:2} must not terminate the interpolation early.
	foundRBrace := 0
	for _, ty := range got {
		if ty == token.RBRACE {
			foundRBrace++
		}
	}
	if foundRBrace != 1 {
		t.Fatalf("expected exactly 1 RBRACE from the dict literal, got %d", foundRBrace)
	}
}

func TestLeadingShebangIgnored(t *testing.T) {
	toks := collect(t, "#!/usr/bin/env aegis\nprint 1")
	if toks[0].Type != token.PRINT {
		t.Fatalf("expected shebang line to be skipped, got %v", toks[0].Type)
	}
}
