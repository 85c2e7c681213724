package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Explainer handles AI-based explanation of OCR'd source code
type Explainer struct {
	provider Provider
}

// NewExplainer creates a new AI explainer
func NewExplainer(provider Provider) *Explainer {
	return &Explainer{
		provider: provider,
	}
}

// Explain produces a plain-language explanation of the recognized code and
// returns it with the AI duration in seconds.
//
// Text mode sends the OCR output; vision mode sends the image and lets the
// model read the code itself (imageBase64 set, code empty).
func (e *Explainer) Explain(ctx context.Context, code string, imageBase64 string) (string, float64, error) {
	startTime := time.Now()

	isVisionMode := imageBase64 != "" && strings.TrimSpace(code) == ""

	var prompt string
	if isVisionMode {
		prompt = buildPromptVision()
	} else {
		prompt = buildPromptText(code)
	}

	response, err := e.provider.Explain(ctx, prompt, imageBase64)
	if err != nil {
		return "", 0, fmt.Errorf("AI explanation failed: %w", err)
	}

	duration := time.Since(startTime).Seconds()

	fmt.Printf("[AI Response] Vision mode: %v, Response length: %d\n", isVisionMode, len(response))

	explanation := cleanResponse(response)
	if explanation == "" {
		return "", duration, fmt.Errorf("AI returned an empty explanation")
	}

	return explanation, duration, nil
}

// buildPromptText creates the explanation prompt for OCR'd code
func buildPromptText(code string) string {
	return fmt.Sprintf(`You are an expert software engineer explaining code to a learner.

The following code was extracted from a photo via OCR, so it may contain
recognition errors (swapped characters, broken indentation, cut-off lines).
Do your best to read through the noise.

## INSTRUCTIONS

1. Identify the probable programming language.
2. Explain what the code does, step by step, in plain language.
3. Point out anything notable: bugs, edge cases, idioms.
4. If parts look garbled by OCR, say what you assume they were.
5. Answer in prose. Do NOT wrap your answer in markdown code fences.
6. Keep the explanation under 300 words.

Code:
%s`, code)
}

// buildPromptVision creates the prompt for direct image analysis
func buildPromptVision() string {
	return `You are an expert software engineer explaining code to a learner.

The image is a photo or screenshot of source code. Read the code carefully,
character by character where the image is blurry.

## INSTRUCTIONS

1. Identify the probable programming language.
2. Explain what the code does, step by step, in plain language.
3. Point out anything notable: bugs, edge cases, idioms.
4. Answer in prose. Do NOT wrap your answer in markdown code fences.
5. Keep the explanation under 300 words.

ANALYZE THE IMAGE NOW.`
}

// cleanResponse strips markdown code fences models add despite the prompt
func cleanResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	backticks := "```"
	if strings.HasPrefix(cleaned, backticks) {
		cleaned = strings.TrimPrefix(cleaned, backticks)
		// Drop a language tag left on the opening fence ("```text\n...")
		if idx := strings.Index(cleaned, "\n"); idx >= 0 && idx < 20 {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), backticks)
	}
	return strings.TrimSpace(cleaned)
}

// Language hint heuristics: one telltale pattern per language, evaluated
// in order. This feeds a display badge only, never behavior.
var languageHints = []struct {
	name string
	re   *regexp.Regexp
}{
	{"go", regexp.MustCompile(`\bfunc \w+\(|\bpackage \w+|:=`)},
	{"python", regexp.MustCompile(`\bdef \w+\(|\bimport \w+\n|\belif\b`)},
	{"rust", regexp.MustCompile(`\bfn \w+\(|\blet mut\b|::<`)},
	{"java", regexp.MustCompile(`\bpublic (?:static )?(?:void|class)\b|System\.out\.`)},
	{"javascript", regexp.MustCompile(`\bconst \w+ = |=>|\bconsole\.log\(`)},
	{"c", regexp.MustCompile(`#include\s*<|\bprintf\(|\bint main\(`)},
	{"ruby", regexp.MustCompile(`\bdef \w+\n|\bend\b\n|\bputs\b`)},
	{"shell", regexp.MustCompile(`^#!/bin/|\becho \$|\bfi\b`)},
}

// GuessLanguage returns a best-effort language name for the recognized
// code, or "" when nothing matches.
func GuessLanguage(code string) string {
	for _, hint := range languageHints {
		if hint.re.MatchString(code) {
			return hint.name
		}
	}
	return ""
}
