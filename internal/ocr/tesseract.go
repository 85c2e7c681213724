package ocr

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/codelens/code-explain-service/internal/highlight"
)

// TesseractOCR extracts text from code photos via the tesseract binary.
type TesseractOCR struct {
	language string
}

// NewTesseractOCR creates a new Tesseract OCR instance
func NewTesseractOCR(language string) *TesseractOCR {
	if language == "" {
		language = "eng" // Default to English
	}
	return &TesseractOCR{
		language: language,
	}
}

// ExtractText performs OCR on preprocessed image bytes and returns the
// recognized text plus the OCR duration in seconds.
//
// An image with no recognizable text is not an error: the result is the
// highlight.NoReadableText sentinel, which the highlighter renders as a
// single error-styled span.
func (t *TesseractOCR) ExtractText(imageBytes []byte) (string, float64, error) {
	startTime := time.Now()

	inputFile := tempImagePath("ocr_input")
	if err := os.WriteFile(inputFile, imageBytes, 0644); err != nil {
		return "", 0, fmt.Errorf("failed to write temp image: %w", err)
	}
	defer os.Remove(inputFile)

	// PSM 6 assumes a single uniform block of text, which fits a cropped
	// screenshot or photo of code better than tesseract's default page
	// segmentation. Interword spaces are preserved so indentation survives.
	cmd := exec.Command("tesseract", inputFile, "stdout",
		"-l", t.language,
		"--psm", "6",
		"-c", "preserve_interword_spaces=1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", 0, fmt.Errorf("tesseract failed: %w - %s", err, stderr.String())
	}

	duration := time.Since(startTime).Seconds()

	return normalizeOCRText(stdout.String()), duration, nil
}

// normalizeOCRText trims tesseract's trailing newlines and maps output with
// no visible characters to the sentinel. Leading whitespace stays intact so
// indentation survives.
func normalizeOCRText(raw string) string {
	text := strings.TrimRight(raw, "\n")
	if strings.TrimSpace(text) == "" {
		return highlight.NoReadableText
	}
	return text
}

// Available reports whether the tesseract binary can be executed, plus its
// version line for the health endpoint.
func (t *TesseractOCR) Available() (bool, string) {
	cmd := exec.Command("tesseract", "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return false, ""
	}
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		return true, strings.TrimSpace(lines[0])
	}
	return true, "unknown"
}
