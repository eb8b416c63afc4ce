package interp

import "testing"

func tokenKinds(tokens []Token) []TokenKind {
	kinds := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		kinds[i] = t.Kind
	}
	return kinds
}

func TestLexerBasicTokens(t *testing.T) {
	tokens, err := NewLexer("<test>", "x = 1 + 2.5").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	got := tokenKinds(tokens)
	want := []TokenKind{IDENTIFIER, EQ, INT, PLUS, FLOAT, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerKeywordsVsIdentifiers(t *testing.T) {
	tokens, err := NewLexer("<test>", "if notaname").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if tokens[0].Kind != KEYWORD || tokens[0].Lit != "if" {
		t.Errorf("expected 'if' keyword, got %v", tokens[0])
	}
	if tokens[1].Kind != IDENTIFIER || tokens[1].Lit != "notaname" {
		t.Errorf("expected 'notaname' identifier, got %v", tokens[1])
	}
}

func TestLexerStringEscapes(t *testing.T) {
	tokens, err := NewLexer("<test>", `"a\nb\tc\"d"`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	want := "a\nb\tc\"d"
	if tokens[0].Lit != want {
		t.Errorf("got %q, want %q", tokens[0].Lit, want)
	}
}

func TestLexerHexAndUnicodeEscapes(t *testing.T) {
	tokens, err := NewLexer("<test>", `"\x41\u`+`00e9"`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	want := "Aé"
	if tokens[0].Lit != want {
		t.Errorf("got %q, want %q", tokens[0].Lit, want)
	}
}

func TestLexerUnicodeEscape(t *testing.T) {
	src := "\"\\u00e9\""
	tokens, err := NewLexer("<test>", src).Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	want := "\u00e9"
	if tokens[0].Lit != want {
		t.Errorf("got %q, want %q", tokens[0].Lit, want)
	}
}

func TestLexerHexEscapeShortFormDoesNotOverrun(t *testing.T) {
	tokens, err := NewLexer("<test>", `"\x41x"`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	want := "Ax"
	if tokens[0].Lit != want {
		t.Errorf("got %q, want %q", tokens[0].Lit, want)
	}
}

func TestLexerFStringPrefix(t *testing.T) {
	tokens, err := NewLexer("<test>", `f"hi {name}"`).Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if tokens[0].Kind != FSTRING {
		t.Fatalf("expected FSTRING, got %s", tokens[0].Kind)
	}
	if tokens[0].Lit != "hi {name}" {
		t.Errorf("got %q", tokens[0].Lit)
	}
}

func TestLexerComments(t *testing.T) {
	tokens, err := NewLexer("<test>", "x = 1 # trailing comment\ny = 2 #* block *# z = 3").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	// line comment eats to end-of-line but leaves the newline token; block
	// comment is fully elided inline.
	var idents []string
	for _, tok := range tokens {
		if tok.Kind == IDENTIFIER {
			idents = append(idents, tok.Lit.(string))
		}
	}
	want := []string{"x", "y", "z"}
	if len(idents) != len(want) {
		t.Fatalf("got idents %v, want %v", idents, want)
	}
}

func TestLexerIllegalCharacter(t *testing.T) {
	_, err := NewLexer("<test>", "x = 1 @ 2").Tokenize()
	if err == nil {
		t.Fatal("expected an illegal-character diagnostic")
	}
	if err.Kind != IllegalCharacter {
		t.Errorf("got kind %s, want IllegalCharacter", err.Kind)
	}
}

func TestLexerTwoCharOperators(t *testing.T) {
	tokens, err := NewLexer("<test>", "a == b != c <= d >= e -> f").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	kinds := tokenKinds(tokens)
	wantContains := []TokenKind{EE, NE, LTE, GTE, ARROW}
	for _, w := range wantContains {
		found := false
		for _, k := range kinds {
			if k == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected token kind %s in stream %v", w, kinds)
		}
	}
}

func TestLexerBangWithoutEqualsErrors(t *testing.T) {
	_, err := NewLexer("<test>", "a ! b").Tokenize()
	if err == nil {
		t.Fatal("expected an expected-character diagnostic for bare '!'")
	}
	if err.Kind != ExpectedCharacter {
		t.Errorf("got kind %s, want ExpectedCharacter", err.Kind)
	}
}
