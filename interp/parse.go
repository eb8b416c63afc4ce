package interp

// ParseSource lexes and parses a complete source file, producing its
// top-level Node (a *BlockNode) or the first diagnostic encountered.
func ParseSource(file, src string) (Node, *Diagnostic) {
	lex := NewLexer(file, src)
	tokens, err := lex.Tokenize()
	if err != nil {
		return nil, err
	}
	p := NewParser(tokens)
	return p.Parse()
}
