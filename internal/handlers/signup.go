package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	applog "farmstead/internal/log"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	FarmName string `json:"farm_name"`
}

type sessionResponse struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	FarmID string `json:"farm_id"`
}

// Signup registers a new account together with its farm and opens a
// session for it.
func Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	var payload signupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid signup payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.TrimSpace(payload.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeJSONError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(payload.Password) < 8 {
		writeJSONError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if strings.TrimSpace(payload.FarmName) == "" {
		writeJSONError(w, http.StatusBadRequest, "farm name is required")
		return
	}

	if _, err := findUserByEmail(r, email); err == nil {
		writeJSONError(w, http.StatusConflict, "an account with this email already exists")
		return
	}

	user, err := createUser(r, email, payload.Name, payload.Password, payload.FarmName)
	if err != nil {
		applog.Error(r.Context(), "failed to create user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create account")
		return
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session after signup", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		FarmID: user.FarmID,
	})
}
