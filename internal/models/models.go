package models

import (
	"time"

	"github.com/codelens/code-explain-service/internal/highlight"
)

// Snippet is the result of processing one captured code image: the
// recognized text, its highlighted form, and the AI explanation.
type Snippet struct {
	ID string `json:"id,omitempty"` // set once persisted

	// Recognized code
	Code         string `json:"code"`
	LanguageHint string `json:"languageHint,omitempty"` // best-effort guess, display only

	// AI explanation
	Explanation string `json:"explanation"`
	Provider    string `json:"provider,omitempty"`
	Model       string `json:"model,omitempty"`

	// Rendering payload for the app
	Highlighted highlight.Document `json:"highlighted"`

	// Metadata
	ImageURL    string    `json:"imageUrl,omitempty"`
	ProcessedAt time.Time `json:"processedAt"`
}

// ProcessRequest represents the input for code image processing
type ProcessRequest struct {
	// Image data (raw bytes sent as multipart)
	ImageData []byte `json:"-"`

	// Configuration (optional)
	UseVisionModel bool   `json:"useVisionModel"` // let a vision AI read the image instead of the OCR text
	AIProvider     string `json:"aiProvider"`     // "openai", "gemini", "ollama"
	Model          string `json:"model"`          // specific model name
	Language       string `json:"language"`       // OCR language (default: "eng")
}

// ProcessResponse represents the output of code image processing
type ProcessResponse struct {
	Success bool     `json:"success"`
	Snippet *Snippet `json:"snippet,omitempty"`
	Error   string   `json:"error,omitempty"`

	// Processing metadata
	OCRDuration   float64 `json:"ocrDuration,omitempty"` // OCR time in seconds
	AIDuration    float64 `json:"aiDuration,omitempty"`  // AI explanation time in seconds
	TotalDuration float64 `json:"totalDuration"`         // total processing time
}

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// OCR config
	OCR OCRConfig `yaml:"ocr"`

	// AI config
	AI AIConfig `yaml:"ai"`
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	Engine   string `yaml:"engine"`   // "tesseract"
	Language string `yaml:"language"` // OCR language (default: "eng")
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	// OpenAI
	OpenAI OpenAIConfig `yaml:"openai"`

	// Gemini
	Gemini GeminiConfig `yaml:"gemini"`

	// Ollama (local)
	Ollama OllamaConfig `yaml:"ollama"`

	// Default provider
	DefaultProvider string `yaml:"default_provider"` // "openai", "gemini", "ollama"
}

// OpenAIConfig for OpenAI/Azure OpenAI
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // for custom endpoints
	Model   string `yaml:"model"`              // default: "gpt-4o-mini"
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // default: "gemini-1.5-flash"
}

// OllamaConfig for local Ollama
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // default: "http://localhost:11434"
	Model   string `yaml:"model"`    // e.g., "mistral", "llama3"
}
