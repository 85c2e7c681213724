package ai

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider explains code via Google Gemini. In vision mode the image
// bytes go straight to the model, which reads code off screenshots well.
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
	}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Explain(ctx context.Context, prompt string, imageBase64 string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return "", serviceErr("gemini", "failed to create client: "+err.Error(), err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)

	parts := []genai.Part{genai.Text(prompt)}
	if imageBase64 != "" {
		imageData, mimeType, decodeErr := decodeDataURL(imageBase64)
		if decodeErr != nil {
			return "", serviceErr("gemini", "invalid image data: "+decodeErr.Error(), decodeErr)
		}
		parts = append(parts, genai.ImageData(mimeType, imageData))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", serviceErr("gemini", "generation failed: "+err.Error(), err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", serviceErr("gemini", "empty response from model", nil)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return sb.String(), nil
}

// decodeDataURL splits a "data:image/jpeg;base64,..." URL into raw bytes
// and the bare image subtype genai expects ("jpeg", "png").
func decodeDataURL(dataURL string) ([]byte, string, error) {
	mimeType := "jpeg"
	payload := dataURL

	if strings.HasPrefix(dataURL, "data:") {
		header, rest, found := strings.Cut(dataURL, ",")
		if found {
			payload = rest
			header = strings.TrimPrefix(header, "data:")
			header = strings.TrimSuffix(header, ";base64")
			if sub, ok := strings.CutPrefix(header, "image/"); ok && sub != "" {
				mimeType = sub
			}
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}
