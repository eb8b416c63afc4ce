package interp

import "strings"

// evalFString scans the f-string's raw decoded text for "{...}" sections,
// treating "{{" and "}}" as literal braces. Each non-literal "{...}" is
// re-lexed and re-parsed as a standalone expression (per the design note:
// "re-enter the lexer/parser on the inner text"), evaluated in the current
// scope, stringified, and spliced into the result.
func (e *Evaluator) evalFString(n *FStringNode, scope *Scope, trace *TraceFrame) Signal {
	var out strings.Builder
	runes := []rune(n.Raw)
	i := 0

	for i < len(runes) {
		ch := runes[i]
		switch {
		case ch == '{' && i+1 < len(runes) && runes[i+1] == '{':
			out.WriteByte('{')
			i += 2
		case ch == '}' && i+1 < len(runes) && runes[i+1] == '}':
			out.WriteByte('}')
			i += 2
		case ch == '{':
			depth := 1
			j := i + 1
			for j < len(runes) && depth > 0 {
				if runes[j] == '{' {
					depth++
				} else if runes[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			if depth != 0 {
				return errSignal(runtimeErr(n.Span(), "Unclosed '{' in f-string", trace))
			}
			inner := strings.TrimSpace(string(runes[i+1 : j]))
			if inner == "" {
				return errSignal(runtimeErr(n.Span(), "Empty expression in f-string", trace))
			}
			val, err := e.evalFStringExpr(inner, n.Span(), scope, trace)
			if err != nil {
				return errSignal(err)
			}
			out.WriteString(val.String())
			i = j + 1
		case ch == '}':
			return errSignal(runtimeErr(n.Span(), "Unmatched '}' in f-string", trace))
		default:
			out.WriteRune(ch)
			i++
		}
	}

	return ok(String_{Value: out.String()})
}

func (e *Evaluator) evalFStringExpr(src string, outerSpan Span, scope *Scope, trace *TraceFrame) (Value, *Diagnostic) {
	lex := NewLexer("<fstring>", src)
	tokens, lexErr := lex.Tokenize()
	if lexErr != nil {
		return nil, lexErr
	}
	parser := NewParser(tokens)
	exprNode, parseErr := parser.expr()
	if parseErr != nil {
		return nil, parseErr
	}
	if parser.cur().Kind != EOF {
		return nil, invalidSyntaxErr(outerSpan, "f-string interior must be a single expression")
	}
	sig := e.Eval(exprNode, scope, trace)
	if sig.Err != nil {
		return nil, sig.Err
	}
	if sig.ShouldPropagate() {
		return nil, runtimeErr(outerSpan, "return/break/continue are not valid inside an f-string expression", trace)
	}
	return sig.Value, nil
}
