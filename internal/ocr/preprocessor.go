package ocr

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// tempImagePath returns a unique temp file path for one processing call.
// Concurrent requests each get their own files, nothing is keyed on the pid.
func tempImagePath(prefix string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s_%s.jpg", prefix, uuid.New().String()[:8]))
}

// Preprocessor handles image preprocessing for optimal OCR results on
// photographed screens and printouts of code.
type Preprocessor struct{}

// NewPreprocessor creates a new image preprocessor
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// PreprocessImage reads and enhances an image file for better OCR reading
func (p *Preprocessor) PreprocessImage(imagePath string) ([]byte, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}
	return p.PreprocessImageFromBytes(imageData)
}

// PreprocessImageFromBytes applies image enhancement filters
// Uses ImageMagick for: grayscale, contrast, denoise, sharpen
func (p *Preprocessor) PreprocessImageFromBytes(imageData []byte) ([]byte, error) {
	// Create temp files
	inputFile := tempImagePath("input")
	outputFile := tempImagePath("output")

	// Write input image
	if err := os.WriteFile(inputFile, imageData, 0644); err != nil {
		return imageData, nil // Fallback to original
	}
	defer os.Remove(inputFile)
	defer os.Remove(outputFile)

	// Try ImageMagick processing
	// Pipeline: resize (if too large) -> grayscale -> contrast -> denoise -> sharpen
	args := []string{
		inputFile,
		// Resize if larger than 2400px (keeps aspect ratio; monospaced
		// glyphs need a bit more resolution than prose)
		"-resize", "2400x2400>",
		// Convert to grayscale for better text contrast
		"-colorspace", "Gray",
		// Normalize histogram (auto-contrast)
		"-normalize",
		// Increase contrast
		"-contrast-stretch", "2%x1%",
		// Light denoise
		"-despeckle",
		// Sharpen text edges
		"-sharpen", "0x1",
		// Slight unsharp mask for glyph clarity
		"-unsharp", "0x0.5+0.5+0",
		// High quality output
		"-quality", "95",
		outputFile,
	}

	// Try 'magick' first (ImageMagick 7), fallback to 'convert' (ImageMagick 6)
	var cmd *exec.Cmd
	if _, err := exec.LookPath("magick"); err == nil {
		cmd = exec.Command("magick", args...)
	} else {
		cmd = exec.Command("convert", args...)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// If ImageMagick fails, return original image
		fmt.Printf("[Preprocessor] ImageMagick failed: %v - %s\n", err, stderr.String())
		return imageData, nil
	}

	// Read processed image
	processed, err := os.ReadFile(outputFile)
	if err != nil {
		return imageData, nil // Fallback to original
	}

	fmt.Printf("[Preprocessor] Image enhanced: %d bytes -> %d bytes\n", len(imageData), len(processed))
	return processed, nil
}

// PreprocessForDarkTheme applies special processing for photos of dark
// editor themes: invert first so tesseract sees dark glyphs on light
// background, then the standard contrast pipeline.
func (p *Preprocessor) PreprocessForDarkTheme(imageData []byte) ([]byte, error) {
	inputFile := tempImagePath("dark_in")
	outputFile := tempImagePath("dark_out")

	if err := os.WriteFile(inputFile, imageData, 0644); err != nil {
		return imageData, nil
	}
	defer os.Remove(inputFile)
	defer os.Remove(outputFile)

	args := []string{
		inputFile,
		"-resize", "2400x2400>",
		"-colorspace", "Gray",
		"-negate",
		"-normalize",
		"-contrast-stretch", "2%x1%",
		"-despeckle",
		"-sharpen", "0x1",
		"-quality", "95",
		outputFile,
	}

	var cmd *exec.Cmd
	if _, err := exec.LookPath("magick"); err == nil {
		cmd = exec.Command("magick", args...)
	} else {
		cmd = exec.Command("convert", args...)
	}

	if err := cmd.Run(); err != nil {
		// Fallback to standard preprocessing
		return p.PreprocessImageFromBytes(imageData)
	}

	processed, err := os.ReadFile(outputFile)
	if err != nil {
		return p.PreprocessImageFromBytes(imageData)
	}

	fmt.Printf("[Preprocessor] Dark-theme enhanced: %d bytes -> %d bytes\n", len(imageData), len(processed))
	return processed, nil
}
