package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens/code-explain-service/internal/models"
)

func testHandler() *Handler {
	return NewHandler(&models.Config{
		OCR: models.OCRConfig{Engine: "tesseract", Language: "eng"},
		AI: models.AIConfig{
			DefaultProvider: "gemini",
			Gemini:          models.GeminiConfig{Model: "gemini-1.5-flash"},
		},
	})
}

func TestHighlightCodeEndpoint(t *testing.T) {
	h := testHandler()

	body := `{"text":"x = 42 // answer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/highlight", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HighlightCode(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success  bool `json:"success"`
		Document struct {
			Lines [][]struct {
				Text     string `json:"text"`
				Category string `json:"category"`
			} `json:"lines"`
		} `json:"document"`
		Palette map[string]string `json:"palette"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	require.Len(t, resp.Document.Lines, 1)

	// Spans must reassemble into the input line
	var rebuilt strings.Builder
	categories := make([]string, 0, len(resp.Document.Lines[0]))
	for _, span := range resp.Document.Lines[0] {
		rebuilt.WriteString(span.Text)
		categories = append(categories, span.Category)
	}
	assert.Equal(t, "x = 42 // answer", rebuilt.String())
	assert.Contains(t, categories, "number")
	assert.Contains(t, categories, "lineComment")
	assert.Equal(t, "#b5cea8", resp.Palette["number"])
	assert.Equal(t, "#6a9955", resp.Palette["lineComment"])
}

func TestHighlightCodeEndpointRejectsBadBody(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/highlight", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	h.HighlightCode(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestCreateProviderSelection(t *testing.T) {
	h := testHandler()

	provider, model, err := h.createProvider("gemini", "")
	require.NoError(t, err)
	assert.Equal(t, "gemini", provider.Name())
	assert.Equal(t, "gemini-1.5-flash", model)

	provider, model, err = h.createProvider("ollama", "codellama")
	require.NoError(t, err)
	assert.Equal(t, "ollama", provider.Name())
	assert.Equal(t, "codellama", model)

	_, _, err = h.createProvider("claude", "")
	assert.Error(t, err)
}

func TestHealthShape(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Contains(t, []string{"healthy", "degraded"}, resp.Status)
	assert.Equal(t, Version, resp.Version)
	assert.NotEmpty(t, resp.Timestamp)
	assert.NotEmpty(t, resp.Uptime)
	assert.NotEmpty(t, resp.Memory.Allocated)
	assert.Equal(t, "gemini", resp.AI["defaultProvider"])
	assert.Equal(t, "tesseract", resp.AI["ocrEngine"])

	// No pool or storage client is initialized in tests
	assert.False(t, resp.Database.Available)
	assert.NotEmpty(t, resp.Database.Error)
	assert.False(t, resp.Storage.Available)
	assert.NotEmpty(t, resp.Storage.Error)

	// Degraded only when the OCR binaries are missing, and then the
	// status code follows suit
	if resp.Status == "degraded" {
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	} else {
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// Field names the mobile app depends on
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"status", "version", "memory", "tesseract", "imageMagick", "database", "storage", "ai"} {
		assert.Contains(t, raw, key)
	}
}

func TestExplainCodeRequiresAuth(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/explain-code", nil)
	rec := httptest.NewRecorder()

	h.ExplainCode(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
