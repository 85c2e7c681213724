package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OllamaProvider explains code via a local Ollama instance. Useful for
// development without API keys and for fully offline deployments.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaProvider creates an Ollama provider
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Images []string `json:"images,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (p *OllamaProvider) Explain(ctx context.Context, prompt string, imageBase64 string) (string, error) {
	reqBody := ollamaRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
	}
	if imageBase64 != "" {
		// Ollama wants bare base64, not a data URL
		if _, rest, found := strings.Cut(imageBase64, ","); found {
			imageBase64 = rest
		}
		reqBody.Images = []string{imageBase64}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", serviceErr("ollama", "failed to encode request: "+err.Error(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", serviceErr("ollama", "failed to build request: "+err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", serviceErr("ollama", "request failed: "+err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", serviceErr("ollama", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var decoded ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", serviceErr("ollama", "failed to decode response: "+err.Error(), err)
	}
	if decoded.Error != "" {
		return "", serviceErr("ollama", decoded.Error, nil)
	}

	return decoded.Response, nil
}
