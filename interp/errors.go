package interp

import (
	"fmt"
	"strings"
)

// DiagnosticKind names the user-visible error taxonomy from the language
// reference: lexer/parser failures abort the pipeline, runtime failures
// propagate through Signal until a try/catch consumes them.
type DiagnosticKind int

const (
	IllegalCharacter DiagnosticKind = iota
	ExpectedCharacter
	InvalidSyntax
	RuntimeError
	TryError
)

func (k DiagnosticKind) String() string {
	switch k {
	case IllegalCharacter:
		return "Illegal Character"
	case ExpectedCharacter:
		return "Expected Character"
	case InvalidSyntax:
		return "Invalid Syntax"
	case RuntimeError:
		return "Runtime Error"
	case TryError:
		return "Try Error"
	default:
		return "Error"
	}
}

// TraceFrame is one entry in a runtime diagnostic's call-stack chain.
type TraceFrame struct {
	DisplayName    string
	ParentEntryPos Position
	Parent         *TraceFrame
}

// Diagnostic is the single error type covering every kind in the taxonomy.
// It implements error so it composes with the host boundary, but internal
// propagation always goes through the explicit Signal carrier, never a
// returned/panicking error.
type Diagnostic struct {
	Kind    DiagnosticKind
	Span    Span
	Details string
	Hint    string
	Trace   *TraceFrame
	Prev    *Diagnostic // the error being handled when a TryError occurred
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Details)
}

func newDiagnostic(kind DiagnosticKind, span Span, details string) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Details: details, Hint: makeHint(kind, details)}
}

func illegalCharErr(span Span, details string) *Diagnostic {
	return newDiagnostic(IllegalCharacter, span, details)
}

func expectedCharErr(span Span, details string) *Diagnostic {
	return newDiagnostic(ExpectedCharacter, span, details)
}

func invalidSyntaxErr(span Span, details string) *Diagnostic {
	if details == "" {
		details = "Invalid syntax"
	}
	return newDiagnostic(InvalidSyntax, span, details)
}

func runtimeErr(span Span, details string, trace *TraceFrame) *Diagnostic {
	d := newDiagnostic(RuntimeError, span, details)
	d.Trace = trace
	return d
}

func tryErr(span Span, details string, trace *TraceFrame, prev *Diagnostic) *Diagnostic {
	d := newDiagnostic(TryError, span, details)
	d.Trace = trace
	d.Prev = prev
	return d
}

// makeHint looks up a short remediation hint from a fixed pattern table
// keyed on error kind and detail substrings.
func makeHint(kind DiagnosticKind, details string) string {
	switch {
	case strings.Contains(details, "Token cannot appear after previous tokens"):
		return "You may be missing a newline or a '}'."
	case strings.Contains(details, "Expected"):
		expected := strings.TrimSpace(strings.Replace(details, "Expected", "", 1))
		if expected != "" {
			return fmt.Sprintf("Expected: %s. Check the syntax near the highlighted area.", expected)
		}
		return "Check the syntax near the highlighted area."
	case strings.Contains(details, "Illegal operation"):
		return "Check operand types and whether the operation is supported for them."
	case strings.Contains(details, "Division by zero"), strings.Contains(details, "Modulo by zero"):
		return "Make sure the divisor is not 0."
	case strings.Contains(details, "Unclosed '{' in f-string"):
		return "Add a closing '}' in the f-string."
	case strings.Contains(details, "Empty expression in f-string"):
		return "Put an expression between '{' and '}'."
	case strings.Contains(details, "Can't find module"), strings.Contains(details, "Can't find file"):
		return "Check the module name and the path in the .path file."
	case kind == IllegalCharacter:
		return "Remove the invalid character or escape it."
	default:
		return ""
	}
}

// AsString renders the full diagnostic, including caret underline,
// traceback (for runtime errors), and hint — the format described in the
// language reference's "Diagnostic format" section.
func (d *Diagnostic) AsString() string {
	var b strings.Builder

	if d.Kind == TryError && d.Prev != nil {
		b.WriteString(d.Prev.AsString())
		b.WriteString("\n\nDuring the handling of the above error, another error occurred:\n\n")
	}

	if d.Kind == RuntimeError || d.Kind == TryError {
		b.WriteString(generateTraceback(d.Trace, d.Span.Start))
	}

	line := d.Span.Start.Line + 1
	col := d.Span.Start.Col + 1
	fmt.Fprintf(&b, "%s: %s\n", d.Kind, d.Details)
	fmt.Fprintf(&b, "File %s, line %d, column %d\n\n", d.Span.Start.File, line, col)
	b.WriteString(stringWithArrows(d.Span.Start.Src, d.Span.Start, d.Span.End))

	if d.Hint != "" {
		fmt.Fprintf(&b, "\n\nHint: %s", d.Hint)
	}
	return b.String()
}

func generateTraceback(trace *TraceFrame, pos Position) string {
	var lines []string
	p := pos
	t := trace
	for t != nil {
		lines = append([]string{fmt.Sprintf("  File %s, line %d, in %s\n", p.File, p.Line+1, t.DisplayName)}, lines...)
		p = t.ParentEntryPos
		t = t.Parent
	}
	return "Traceback (most recent call last):\n" + strings.Join(lines, "")
}

const tabWidth = 4

// stringWithArrows renders one gutter/caret pair per line of the span,
// expanding tabs to four spaces so carets stay aligned.
func stringWithArrows(text string, start, end Position) string {
	var out strings.Builder

	idxStart := strings.LastIndexByte(text[:min(start.Offset, len(text))], '\n')
	if idxStart < 0 {
		idxStart = 0
	} else {
		idxStart++
	}
	idxEnd := indexByteFrom(text, '\n', idxStart+1)
	if idxEnd < 0 {
		idxEnd = len(text)
	}

	lineCount := end.Line - start.Line + 1
	if lineCount < 1 {
		lineCount = 1
	}

	for i := 0; i < lineCount; i++ {
		rawLine := text[idxStart:idxEnd]
		colStart := 0
		colEnd := len([]rune(rawLine))
		if i == 0 {
			colStart = start.Col
		}
		if i == lineCount-1 {
			colEnd = end.Col
		}

		lineNo := start.Line + i + 1
		gutter := fmt.Sprintf("%d | ", lineNo)
		expanded := strings.ReplaceAll(rawLine, "\t", strings.Repeat(" ", tabWidth))

		colStart = expandCol(colStart, rawLine)
		colEnd = expandCol(colEnd, rawLine)

		out.WriteString(gutter)
		out.WriteString(expanded)
		out.WriteByte('\n')

		if colEnd <= colStart {
			colEnd = colStart + 1
		}
		caretLen := colEnd - colStart
		if caretLen < 1 {
			caretLen = 1
		}
		out.WriteString(strings.Repeat(" ", len(gutter)+colStart))
		out.WriteString(strings.Repeat("^", caretLen))
		out.WriteByte('\n')

		idxStart = idxEnd
		idxEnd = indexByteFrom(text, '\n', idxStart+1)
		if idxEnd < 0 {
			idxEnd = len(text)
		}
	}

	return strings.TrimRight(out.String(), "\n")
}

func expandCol(col int, rawLine string) int {
	extra := 0
	runes := []rune(rawLine)
	limit := col
	if limit > len(runes) {
		limit = len(runes)
	}
	for _, ch := range runes[:limit] {
		if ch == '\t' {
			extra += tabWidth - 1
		}
	}
	return col + extra
}

func indexByteFrom(s string, b byte, from int) int {
	if from >= len(s) {
		return -1
	}
	if from < 0 {
		from = 0
	}
	idx := strings.IndexByte(s[from:], b)
	if idx < 0 {
		return -1
	}
	return from + idx
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
