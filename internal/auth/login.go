package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/codelens/code-explain-service/internal/db"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginHandler authenticates a user against the users table and returns a JWT
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if db.Pool == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "authentication unavailable: no database connection")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		userID       string
		email        string
		name         string
		role         string
		passwordHash string
		active       bool
	)
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, COALESCE(name, ''), COALESCE(role, 'user'), password_hash, active
		FROM users
		WHERE email = $1
	`, req.Email).Scan(&userID, &email, &name, &role, &passwordHash, &active)
	if err != nil {
		// Same message for unknown user and bad password
		writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !active {
		writeJSONError(w, http.StatusForbidden, "account is disabled")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := GenerateToken(userID, email, name, role)
	if err != nil {
		log.Printf("[Login] Failed to generate token for %s: %v", email, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	// Best effort, the login already succeeded
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := db.Pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, userID); err != nil {
			log.Printf("[Login] Failed to update last_login for %s: %v", email, err)
		}
	}()

	log.Printf("[Login] User %s authenticated", email)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		Token: token,
		User: UserInfo{
			ID:    userID,
			Email: email,
			Name:  name,
			Role:  role,
		},
	})
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
