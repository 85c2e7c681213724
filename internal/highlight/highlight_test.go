package highlight

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHighlightReconstruction(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input")
		doc := Highlight(input)
		require.Equal(t, input, doc.Text())
	})
}

func TestHighlightDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input")
		require.Equal(t, Highlight(input), Highlight(input))
	})
}

func TestHighlightLineSpansContiguous(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.StringN(0, 200, -1).Draw(t, "input")
		doc := Highlight(input)
		if input == "" || strings.Contains(input, NoReadableText) {
			return
		}
		rawLines := strings.Split(input, "\n")
		require.Len(t, doc.Lines, len(rawLines))
		for i, line := range doc.Lines {
			var sb strings.Builder
			for _, span := range line {
				require.NotEmpty(t, span.Text)
				sb.WriteString(span.Text)
			}
			require.Equal(t, rawLines[i], sb.String())
		}
	})
}

func TestHighlightEmptyInput(t *testing.T) {
	doc := Highlight("")
	require.Len(t, doc.Lines, 1)
	require.Len(t, doc.Lines[0], 1)
	assert.Equal(t, "", doc.Lines[0][0].Text)
	assert.Equal(t, "", doc.Text())
}

func TestHighlightSentinel(t *testing.T) {
	doc := Highlight(NoReadableText)
	require.Len(t, doc.Lines, 1)
	require.Len(t, doc.Lines[0], 1)
	assert.Equal(t, NoReadableText, doc.Lines[0][0].Text)
	assert.Equal(t, CategoryError, doc.Lines[0][0].Category)
}

func TestHighlightSentinelEmbedded(t *testing.T) {
	input := "line one\n" + NoReadableText + "\nline three"
	doc := Highlight(input)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, CategoryError, doc.Lines[0][0].Category)
	assert.Equal(t, input, doc.Text())
}

func TestLineCommentClaimsEmbeddedBlockComment(t *testing.T) {
	doc := Highlight("// comment inside /* not a block */")
	require.Len(t, doc.Lines, 1)
	require.Len(t, doc.Lines[0], 1)
	span := doc.Lines[0][0]
	assert.Equal(t, CategoryLineComment, span.Category)
	assert.Equal(t, "// comment inside /* not a block */", span.Text)
}

func TestBlockCommentClaimsEmbeddedLineComment(t *testing.T) {
	doc := Highlight("/* has // inside */ rest")
	require.Len(t, doc.Lines, 1)
	require.GreaterOrEqual(t, len(doc.Lines[0]), 2)
	assert.Equal(t, CategoryBlockComment, doc.Lines[0][0].Category)
	assert.Equal(t, "/* has // inside */", doc.Lines[0][0].Text)
}

func TestKeywordAndTypeSpans(t *testing.T) {
	doc := Highlight("final String x = 5; // five")
	require.Len(t, doc.Lines, 1)

	expected := Line{
		{Text: "final", Category: CategoryKeyword},
		{Text: " ", Category: CategoryPlain},
		{Text: "String", Category: CategoryType},
		{Text: " x = ", Category: CategoryPlain},
		{Text: "5", Category: CategoryNumber},
		{Text: "; ", Category: CategoryPlain},
		{Text: "// five", Category: CategoryLineComment},
	}
	assert.Equal(t, expected, doc.Lines[0])
}

func TestStringClaimsEmbeddedNumber(t *testing.T) {
	doc := Highlight(`print("room 404 not found")`)
	require.Len(t, doc.Lines, 1)
	for _, span := range doc.Lines[0] {
		assert.NotEqual(t, CategoryNumber, span.Category)
		if span.Category == CategoryString {
			assert.Equal(t, `"room 404 not found"`, span.Text)
		}
	}
}

func TestUnterminatedBlockCommentClaimsRestOfLine(t *testing.T) {
	doc := Highlight("x = 1 /* started here\nstill inside")
	require.Len(t, doc.Lines, 2)

	last := doc.Lines[0][len(doc.Lines[0])-1]
	assert.Equal(t, CategoryBlockComment, last.Category)
	assert.Equal(t, "/* started here", last.Text)

	// Per-line matching: continuation lines of a block comment render as
	// ordinary text.
	for _, span := range doc.Lines[1] {
		assert.NotEqual(t, CategoryBlockComment, span.Category)
	}
}

func TestPlainLineSingleSpan(t *testing.T) {
	doc := Highlight("just some words without tokens")
	require.Len(t, doc.Lines, 1)
	require.Len(t, doc.Lines[0], 1)
	assert.Equal(t, CategoryPlain, doc.Lines[0][0].Category)
}

func TestEmptyLineYieldsNoSpans(t *testing.T) {
	doc := Highlight("a\n\nb")
	require.Len(t, doc.Lines, 3)
	assert.Empty(t, doc.Lines[1])
	assert.Equal(t, "a\n\nb", doc.Text())
}

func TestNoisyOCRInputIsTotal(t *testing.T) {
	// Half-recognized characters from a blurry photo must not panic or
	// lose text.
	inputs := []string{
		"pub1ic st@tic vo!d main(Str1ng[] args) {",
		`if (x "= 3.14 /* {`,
		"\t\t}};;'''\"\"",
		"日本語のコメント // コメント",
	}
	for _, input := range inputs {
		doc := Highlight(input)
		assert.Equal(t, input, doc.Text())
	}
}

func TestCategoryJSONNames(t *testing.T) {
	data, err := json.Marshal(Span{Text: "func", Category: CategoryKeyword})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"func","category":"keyword"}`, string(data))
}

func TestCategoryColors(t *testing.T) {
	assert.Equal(t, "", CategoryPlain.Color())
	for _, c := range []Category{
		CategoryBlockComment, CategoryLineComment, CategoryString,
		CategoryNumber, CategoryKeyword, CategoryType, CategoryError,
	} {
		assert.NotEmpty(t, c.Color(), c.String())
	}
}
