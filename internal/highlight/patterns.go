package highlight

import "regexp"

// The pattern table is deliberately heuristic: the input is noisy OCR text
// in an unknown source language, so each category gets one independent
// regex instead of a per-language lexer. Misclassification is an accepted
// trade-off for language-agnosticism.
//
// Patterns are compiled once at package init and never mutated.
var patternTable = []struct {
	category Category
	re       *regexp.Regexp
}{
	// A block comment that opens but never closes on this line claims the
	// remainder of the line.
	{CategoryBlockComment, regexp.MustCompile(`/\*.*?\*/|/\*.*`)},
	{CategoryLineComment, regexp.MustCompile(`//.*|#.*`)},
	{CategoryString, regexp.MustCompile(`"[^"]*"|'[^']*'` + "|`[^`]*`")},
	{CategoryNumber, regexp.MustCompile(`\b0[xX][0-9a-fA-F]+\b|\b\d+(?:\.\d+)?\b`)},
	{CategoryKeyword, regexp.MustCompile(`\b(?:abstract|and|as|async|await|break|case|catch|class|const|continue|def|default|defer|del|do|elif|else|enum|except|extends|fallthrough|final|finally|fn|for|func|function|go|goto|if|impl|implements|import|in|instanceof|interface|is|lambda|let|match|mut|namespace|new|nil|not|null|or|override|package|pass|private|protected|pub|public|raise|range|return|select|self|static|struct|switch|this|throw|throws|trait|try|typedef|use|val|var|virtual|void|volatile|while|with|yield|true|false|None|True|False)\b`)},
	{CategoryType, regexp.MustCompile(`\b(?:bool|boolean|byte|char|double|float(?:32|64)?|u?int(?:8|16|32|64|ptr)?|long|rune|short|size_t|str|string|[A-Z][A-Za-z0-9_]*)\b`)},
}
