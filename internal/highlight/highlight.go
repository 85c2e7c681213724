// Package highlight colors recognized source code for display.
//
// It is not a lexer: every category is matched independently by a single
// regex over one line at a time, and overlaps are resolved by a sweep that
// keeps whichever match claimed an offset first. The result is a pure
// re-coloring transform — concatenating all emitted span texts always
// reproduces the input exactly.
package highlight

import (
	"sort"
	"strings"
)

// NoReadableText is the sentinel the OCR layer emits when the image
// contains no recognizable text. Highlight renders it (and any input
// containing it) as a single error-styled span instead of tokenizing.
const NoReadableText = "No readable text detected"

// Span is a contiguous substring of a line tagged with exactly one category.
type Span struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Line is the ordered span sequence for one input line. Concatenating the
// span texts reconstructs the line exactly.
type Line []Span

// Document is the highlighted form of a whole input, one Line per input
// line, in input order.
type Document struct {
	Lines []Line `json:"lines"`
}

// Text reconstructs the original input from the document.
func (d Document) Text() string {
	var sb strings.Builder
	for i, line := range d.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, span := range line {
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}

// match is one pattern hit on a line before merging.
type match struct {
	start    int
	end      int
	category Category
}

// Highlight colors text for display. It is total over all inputs: it never
// fails and has no side effects, so it is safe to call concurrently.
//
// Empty input and input carrying the OCR sentinel are emitted as a single
// error-styled span before any line splitting happens. Everything else is
// split on newlines and tokenized line by line; matches never span lines,
// so a block comment is only colored on the line where it opens and its
// continuation renders as plain text.
func Highlight(text string) Document {
	if text == "" || strings.Contains(text, NoReadableText) {
		return Document{Lines: []Line{{Span{Text: text, Category: CategoryError}}}}
	}

	rawLines := strings.Split(text, "\n")
	lines := make([]Line, len(rawLines))
	for i, raw := range rawLines {
		lines[i] = highlightLine(raw)
	}
	return Document{Lines: lines}
}

// highlightLine runs every category's matcher over the line, pools the
// matches, and sweeps left to right emitting plain spans for the gaps.
//
// Sort order is ascending start, then descending length, so at the same
// offset the longer match wins. The sweep keeps a cursor: a match starting
// before the cursor overlaps something already emitted and is discarded
// outright — first claimed wins, regardless of category.
func highlightLine(line string) Line {
	if line == "" {
		return nil
	}

	var matches []match
	for _, p := range patternTable {
		for _, loc := range p.re.FindAllStringIndex(line, -1) {
			if loc[1] > loc[0] {
				matches = append(matches, match{start: loc[0], end: loc[1], category: p.category})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end-matches[i].start > matches[j].end-matches[j].start
	})

	spans := make(Line, 0, len(matches)+2)
	cursor := 0
	for _, m := range matches {
		if m.start < cursor {
			continue
		}
		if m.start > cursor {
			spans = append(spans, Span{Text: line[cursor:m.start], Category: CategoryPlain})
		}
		spans = append(spans, Span{Text: line[m.start:m.end], Category: m.category})
		cursor = m.end
	}
	if cursor < len(line) {
		spans = append(spans, Span{Text: line[cursor:], Category: CategoryPlain})
	}
	return spans
}
