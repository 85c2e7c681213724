package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/codelens/code-explain-service/internal/ai"
	"github.com/codelens/code-explain-service/internal/auth"
	"github.com/codelens/code-explain-service/internal/db"
	"github.com/codelens/code-explain-service/internal/highlight"
	"github.com/codelens/code-explain-service/internal/models"
	"github.com/codelens/code-explain-service/internal/ocr"
	"github.com/codelens/code-explain-service/internal/storage"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.3.0"
)

// Handler handles HTTP requests for code capture processing
type Handler struct {
	config *models.Config
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config) *Handler {
	return &Handler{
		config: config,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Auth
	router.HandleFunc("/api/login", auth.LoginHandler).Methods("POST")

	// Main endpoints
	router.HandleFunc("/api/explain-code", h.ExplainCode).Methods("POST")
	router.HandleFunc("/api/highlight", h.HighlightCode).Methods("POST")

	// Snippet history
	router.HandleFunc("/api/snippets", h.GetSnippets).Methods("GET")
	router.HandleFunc("/api/snippet/{id}", h.GetSnippet).Methods("GET")
	router.HandleFunc("/api/snippet/{id}", h.DeleteSnippet).Methods("DELETE")
	router.HandleFunc("/api/snippet/{id}/image", h.GetSnippetImage).Methods("GET")

	// Statistics
	router.HandleFunc("/api/stats", h.GetStats).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Timestamp   string            `json:"timestamp"`
	Uptime      string            `json:"uptime"`
	Memory      MemoryStats       `json:"memory"`
	Tesseract   ServiceStatus     `json:"tesseract"`
	ImageMagick ServiceStatus     `json:"imageMagick"`
	Database    ServiceStatus     `json:"database"`
	Storage     ServiceStatus     `json:"storage"`
	AI          map[string]string `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Memory statistics
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// Check services
	tesseractStatus := h.checkTesseract()
	imageMagickStatus := h.checkImageMagick()
	databaseStatus := h.checkDatabase()
	storageStatus := h.checkStorage()

	// Build response
	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Tesseract:   tesseractStatus,
		ImageMagick: imageMagickStatus,
		Database:    databaseStatus,
		Storage:     storageStatus,
		AI: map[string]string{
			"defaultProvider": h.config.AI.DefaultProvider,
			"ocrEngine":       h.config.OCR.Engine,
		},
	}

	// If critical dependencies are down, mark as degraded
	if !tesseractStatus.Available || !imageMagickStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkTesseract verifies Tesseract OCR is available
func (h *Handler) checkTesseract() ServiceStatus {
	available, version := ocr.NewTesseractOCR(h.config.OCR.Language).Available()
	if !available {
		return ServiceStatus{
			Available: false,
			Error:     "tesseract not found or not executable",
		}
	}
	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkImageMagick verifies ImageMagick is available
func (h *Handler) checkImageMagick() ServiceStatus {
	cmd := exec.Command("convert", "-version")
	output, err := cmd.CombinedOutput()

	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     "imagemagick not found or not executable",
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkDatabase verifies PostgreSQL connection
func (h *Handler) checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL",
	}
}

// checkStorage verifies MinIO connection
func (h *Handler) checkStorage() ServiceStatus {
	if storage.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// ExplainCode accepts a photographed code image, runs OCR and the AI
// explanation, and returns the explanation plus the highlighted code.
func (h *Handler) ExplainCode(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	requestStart := time.Now()

	// Get claims from JWT
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized: "+err.Error())
		return
	}

	// Parse multipart form
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	err = r.ParseMultipartForm(MaxUploadSize)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	// Get file - accept both "file" and "image" field names
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("image")
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' or 'image' field)")
			return
		}
	}
	defer file.Close()

	// Read file bytes
	imageData, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	// Get optional parameters
	aiProvider := r.FormValue("aiProvider")
	if aiProvider == "" {
		aiProvider = h.config.AI.DefaultProvider
	}

	// Default to vision mode for providers that read images well
	useVisionModelParam := r.FormValue("useVisionModel")
	useVisionModel := useVisionModelParam == "true" || (useVisionModelParam == "" && (aiProvider == "gemini" || aiProvider == "openai"))

	modelName := r.FormValue("model")
	language := r.FormValue("language")
	if language == "" {
		language = h.config.OCR.Language
	}

	darkTheme := r.FormValue("darkTheme") == "true"

	// Generate unique filename
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	filename := fmt.Sprintf("%s_%s%s",
		time.Now().Format("20060102_150405"),
		uuid.New().String()[:8],
		storage.GetFileExtension(contentType),
	)

	// Upload to MinIO (if configured)
	var imageURL string
	if storage.Client != nil {
		imageReader := bytes.NewReader(imageData)
		imageURL, err = storage.UploadCaptureImage(
			ctx,
			claims.UserID,
			filename,
			imageReader,
			int64(len(imageData)),
			contentType,
		)
		if err != nil {
			// Log but don't fail - image storage is optional
			fmt.Printf("Warning: failed to upload image to MinIO: %v\n", err)
		}
	}

	code, explanation, resolvedModel, ocrDuration, aiDuration, err := h.processImage(
		r.Context(),
		imageData,
		useVisionModel,
		darkTheme,
		aiProvider,
		modelName,
		language,
	)

	totalDuration := time.Since(requestStart).Seconds()

	if err != nil {
		response := models.ProcessResponse{
			Success:       false,
			Error:         err.Error(),
			OCRDuration:   ocrDuration,
			TotalDuration: totalDuration,
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
		return
	}

	snippet := &models.Snippet{
		Code:         code,
		LanguageHint: ai.GuessLanguage(code),
		Explanation:  explanation,
		Provider:     aiProvider,
		Model:        resolvedModel,
		Highlighted:  highlight.Highlight(code),
		ImageURL:     imageURL,
		ProcessedAt:  time.Now(),
	}

	// Persist to history (best effort)
	savedToDB := false
	if db.Pool != nil {
		userID, parseErr := uuid.Parse(claims.UserID)
		if parseErr != nil {
			fmt.Printf("Warning: invalid user id in claims: %v\n", parseErr)
		} else {
			record := &db.Snippet{
				UserID:       userID,
				Code:         snippet.Code,
				LanguageHint: snippet.LanguageHint,
				Explanation:  snippet.Explanation,
				Provider:     snippet.Provider,
				Model:        snippet.Model,
				ImageURL:     imageURL,
				OCRDuration:  ocrDuration,
				AIDuration:   aiDuration,
			}
			if err := db.SaveSnippet(ctx, record); err != nil {
				fmt.Printf("Warning: failed to save snippet to DB: %v\n", err)
			} else {
				savedToDB = true
				snippet.ID = record.ID.String()
				// Use proxy URL so the mobile app can fetch the image
				snippet.ImageURL = fmt.Sprintf("/api/snippet/%s/image", record.ID)
			}
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":       true,
		"snippet":       snippet,
		"palette":       highlight.Palette,
		"saved_to_db":   savedToDB,
		"ocrDuration":   ocrDuration,
		"aiDuration":    aiDuration,
		"totalDuration": totalDuration,
	})
}

// HighlightRequest is the body of POST /api/highlight
type HighlightRequest struct {
	Text string `json:"text"`
}

// HighlightCode runs the syntax highlighter over already-recognized text.
// The client uses it to re-render history entries without reprocessing.
func (h *Handler) HighlightCode(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req HighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc := highlight.Highlight(req.Text)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"document": doc,
		"palette":  highlight.Palette,
	})
}

// GetSnippets returns the authenticated user's snippet history
func (h *Handler) GetSnippets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	snippets, err := db.GetSnippets(ctx, claims.UserID, 100)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get snippets: %v", err))
		return
	}

	// Generate presigned URLs for images
	for i := range snippets {
		if snippets[i].ImageURL != "" && storage.Client != nil {
			if presignedURL, err := storage.GetPresignedURL(ctx, snippets[i].ImageURL); err == nil {
				snippets[i].ImageURL = presignedURL
			}
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"snippets": snippets,
		"count":    len(snippets),
	})
}

// GetSnippet returns a single snippet with its highlighted document
func (h *Handler) GetSnippet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	vars := mux.Vars(r)
	snippetID := vars["id"]

	snippet, err := db.GetSnippetByID(ctx, claims.UserID, snippetID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "snippet not found")
		return
	}

	// Generate presigned URL for image
	if snippet.ImageURL != "" && storage.Client != nil {
		if presignedURL, err := storage.GetPresignedURL(ctx, snippet.ImageURL); err == nil {
			snippet.ImageURL = presignedURL
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"snippet":     snippet,
		"highlighted": highlight.Highlight(snippet.Code),
		"palette":     highlight.Palette,
	})
}

// DeleteSnippet removes a snippet and its stored image
func (h *Handler) DeleteSnippet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	vars := mux.Vars(r)
	snippetID := vars["id"]

	// Optionally: delete image from MinIO
	if storage.Client != nil {
		snippet, err := db.GetSnippetByID(ctx, claims.UserID, snippetID)
		if err == nil && snippet.ImageURL != "" {
			// Delete image (ignore errors)
			_ = storage.DeleteImage(ctx, snippet.ImageURL)
		}
	}

	if err := db.DeleteSnippet(ctx, claims.UserID, snippetID); err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to delete snippet")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "snippet deleted",
	})
}

// GetSnippetImage streams the stored capture image through the API so the
// mobile app never talks to MinIO directly.
func (h *Handler) GetSnippetImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil || storage.Client == nil {
		h.sendError(w, http.StatusServiceUnavailable, "image storage not available")
		return
	}

	vars := mux.Vars(r)
	snippetID := vars["id"]

	snippet, err := db.GetSnippetByID(ctx, claims.UserID, snippetID)
	if err != nil || snippet.ImageURL == "" {
		h.sendError(w, http.StatusNotFound, "image not found")
		return
	}

	presignedURL, err := storage.GetPresignedURL(ctx, snippet.ImageURL)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to resolve image")
		return
	}

	http.Redirect(w, r, presignedURL, http.StatusTemporaryRedirect)
}

// GetStats returns monthly usage statistics
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	claims, err := auth.GetClaimsFromContext(ctx)
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	stats, err := db.GetMonthlyStats(ctx, claims.UserID)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// processImage runs OCR and the AI explanation for a captured image.
// The OCR text always feeds the highlighter; in vision mode the AI reads
// the original image instead of the OCR output.
func (h *Handler) processImage(
	ctx context.Context,
	imageData []byte,
	useVisionModel bool,
	darkTheme bool,
	providerName string,
	modelName string,
	language string,
) (string, string, string, float64, float64, error) {
	// OCR always runs so the client gets highlightable text
	preprocessor := ocr.NewPreprocessor()
	var processedImage []byte
	var err error
	if darkTheme {
		processedImage, err = preprocessor.PreprocessForDarkTheme(imageData)
	} else {
		processedImage, err = preprocessor.PreprocessImageFromBytes(imageData)
	}
	if err != nil {
		return "", "", "", 0, 0, fmt.Errorf("image preprocessing failed: %w", err)
	}

	tesseract := ocr.NewTesseractOCR(language)
	ocrText, ocrDuration, err := tesseract.ExtractText(processedImage)
	if err != nil {
		return "", "", "", 0, 0, fmt.Errorf("OCR failed: %w", err)
	}

	// Nothing readable and no vision model to fall back on: return the
	// sentinel so the highlighter renders it as an error span. Not a
	// failure, the user just retries with a better shot.
	if ocrText == highlight.NoReadableText && !useVisionModel {
		return ocrText, "", "", ocrDuration, 0, nil
	}

	var imageBase64 string
	var explainerCode string
	if useVisionModel {
		// Vision models read the ORIGINAL color image better than the
		// grayscale preprocessed one
		imageBase64 = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData)
		fmt.Printf("[Process] Using original image for vision model (%d bytes)\n", len(imageData))
	} else {
		explainerCode = ocrText
	}

	provider, resolvedModel, err := h.createProvider(providerName, modelName)
	if err != nil {
		return ocrText, "", "", ocrDuration, 0, err
	}

	explainer := ai.NewExplainer(provider)
	explanation, aiDuration, err := explainer.Explain(ctx, explainerCode, imageBase64)
	if err != nil {
		return ocrText, "", resolvedModel, ocrDuration, 0, err
	}

	return ocrText, explanation, resolvedModel, ocrDuration, aiDuration, nil
}

// createProvider creates the appropriate AI provider
func (h *Handler) createProvider(providerName, modelName string) (ai.Provider, string, error) {
	switch providerName {
	case "openai":
		model := modelName
		if model == "" {
			model = h.config.AI.OpenAI.Model
		}
		return ai.NewOpenAIProvider(
			h.config.AI.OpenAI.APIKey,
			h.config.AI.OpenAI.BaseURL,
			model,
		), model, nil

	case "gemini":
		model := modelName
		if model == "" {
			model = h.config.AI.Gemini.Model
		}
		return ai.NewGeminiProvider(
			h.config.AI.Gemini.APIKey,
			model,
		), model, nil

	case "ollama":
		model := modelName
		if model == "" {
			model = h.config.AI.Ollama.Model
		}
		return ai.NewOllamaProvider(
			h.config.AI.Ollama.BaseURL,
			model,
		), model, nil

	default:
		return nil, "", fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
