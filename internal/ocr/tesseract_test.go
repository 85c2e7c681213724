package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codelens/code-explain-service/internal/highlight"
)

func TestNormalizeOCRText(t *testing.T) {
	// An image with nothing readable is not an error, it becomes the
	// sentinel the highlighter renders as an error span
	assert.Equal(t, highlight.NoReadableText, normalizeOCRText(""))
	assert.Equal(t, highlight.NoReadableText, normalizeOCRText("\n\n"))
	assert.Equal(t, highlight.NoReadableText, normalizeOCRText("   \t \n  \n"))

	// Trailing newlines from tesseract are trimmed
	assert.Equal(t, "x := 1", normalizeOCRText("x := 1\n"))
	assert.Equal(t, "a\nb", normalizeOCRText("a\nb\n\n"))

	// Indentation is preserved
	assert.Equal(t, "    if x:", normalizeOCRText("    if x:\n"))
}

func TestTempImagePathUniquePerCall(t *testing.T) {
	a := tempImagePath("input")
	b := tempImagePath("input")

	// Concurrent requests each write their own temp files
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "input_")
	assert.True(t, strings.HasSuffix(a, ".jpg"))
}

func TestNewTesseractOCRDefaultLanguage(t *testing.T) {
	assert.Equal(t, "eng", NewTesseractOCR("").language)
	assert.Equal(t, "deu", NewTesseractOCR("deu").language)
}
