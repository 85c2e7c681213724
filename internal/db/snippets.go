package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Snippet is a processed code capture: the OCR'd code, the AI explanation
// and the metadata needed to show it again in the history view.
type Snippet struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Code         string     `json:"code"`
	LanguageHint string     `json:"language_hint"`
	Explanation  string     `json:"explanation"`
	Provider     string     `json:"provider"`
	Model        string     `json:"model"`
	ImageURL     string     `json:"image_url"`
	OCRDuration  float64    `json:"ocr_duration_seconds"`
	AIDuration   float64    `json:"ai_duration_seconds"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

func SaveSnippet(ctx context.Context, s *Snippet) error {
	query := `
		INSERT INTO snippets (
			user_id, code, language_hint, explanation,
			provider, model, image_url, ocr_duration, ai_duration
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := Pool.QueryRow(ctx, query,
		s.UserID, s.Code, s.LanguageHint, s.Explanation,
		s.Provider, s.Model, s.ImageURL, s.OCRDuration, s.AIDuration,
	).Scan(&s.ID, &s.CreatedAt)

	return err
}

// GetSnippets lists a user's most recent snippets, newest first. The code
// and explanation come back in full so the client can render history
// entries without a second round trip.
func GetSnippets(ctx context.Context, userID string, limit int) ([]Snippet, error) {
	query := `
		SELECT id, user_id, COALESCE(code, ''), COALESCE(language_hint, ''),
		       COALESCE(explanation, ''), COALESCE(provider, ''), COALESCE(model, ''),
		       COALESCE(image_url, ''), COALESCE(ocr_duration, 0), COALESCE(ai_duration, 0),
		       created_at
		FROM snippets
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snippets []Snippet
	for rows.Next() {
		var s Snippet
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Code, &s.LanguageHint,
			&s.Explanation, &s.Provider, &s.Model,
			&s.ImageURL, &s.OCRDuration, &s.AIDuration,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, s)
	}

	return snippets, nil
}

// GetSnippetByID retrieves a single snippet, scoped to its owner
func GetSnippetByID(ctx context.Context, userID string, snippetID string) (*Snippet, error) {
	query := `
		SELECT id, user_id, COALESCE(code, ''), COALESCE(language_hint, ''),
		       COALESCE(explanation, ''), COALESCE(provider, ''), COALESCE(model, ''),
		       COALESCE(image_url, ''), COALESCE(ocr_duration, 0), COALESCE(ai_duration, 0),
		       created_at, updated_at
		FROM snippets
		WHERE id = $1 AND user_id = $2
	`

	var s Snippet
	err := Pool.QueryRow(ctx, query, snippetID, userID).Scan(
		&s.ID, &s.UserID, &s.Code, &s.LanguageHint,
		&s.Explanation, &s.Provider, &s.Model,
		&s.ImageURL, &s.OCRDuration, &s.AIDuration,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSnippet removes a snippet, scoped to its owner
func DeleteSnippet(ctx context.Context, userID string, snippetID string) error {
	query := `DELETE FROM snippets WHERE id = $1 AND user_id = $2`
	_, err := Pool.Exec(ctx, query, snippetID, userID)
	return err
}

// MonthlyStats represents a user's usage for the current month
type MonthlyStats struct {
	Month            string  `json:"month"`
	TotalSnippets    int     `json:"total_snippets"`
	TotalOCRSeconds  float64 `json:"total_ocr_seconds"`
	TotalAISeconds   float64 `json:"total_ai_seconds"`
	LanguagesSpotted int     `json:"languages_spotted"`
}

// GetMonthlyStats returns usage statistics for the current month
func GetMonthlyStats(ctx context.Context, userID string) (*MonthlyStats, error) {
	query := `
		SELECT
			COUNT(*) as total_snippets,
			COALESCE(SUM(ocr_duration), 0) as total_ocr_seconds,
			COALESCE(SUM(ai_duration), 0) as total_ai_seconds,
			COUNT(DISTINCT NULLIF(language_hint, '')) as languages_spotted
		FROM snippets
		WHERE user_id = $1
		  AND DATE_TRUNC('month', created_at) = DATE_TRUNC('month', CURRENT_DATE)
	`

	stats := &MonthlyStats{
		Month: time.Now().Format("2006-01"),
	}

	err := Pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalSnippets,
		&stats.TotalOCRSeconds,
		&stats.TotalAISeconds,
		&stats.LanguagesSpotted,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
