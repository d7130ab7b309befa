// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/blesslab/bless-server/auth"
	"github.com/blesslab/bless-server/cliparse"
	"github.com/blesslab/bless-server/middleware"
	"github.com/blesslab/bless-server/models"
)

type AuthHandler struct {
	db  *sql.DB
	cfg cliparse.Config

	// now is swappable for calendar-sensitive tests
	now func() time.Time
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, now: time.Now}
}

// Login handles POST /api/login
// Checks credentials and records an immutable session row.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var user models.User
	err := h.db.QueryRow(`
		SELECT id, userid, password, COALESCE(group_label, '')
		FROM users
		WHERE userid = $1
	`, req.Username).Scan(&user.ID, &user.UserID, &user.Password, &user.GroupLabel)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckCredential(user.Password, req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	sessionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate session ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	loginTime := h.now().In(h.cfg.Location())
	period := periodOf(loginTime)

	_, err = h.db.Exec(`
		INSERT INTO sessions (id, user_id, login_time, period)
		VALUES ($1, $2, $3, $4)
	`, sessionID, user.ID, loginTime, period)

	if err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("login", "userid", user.UserID, "session_id", sessionID, "period", period)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		UserID:    user.UserID,
		SessionID: sessionID,
		LoginTime: loginTime.Format(time.RFC3339),
		Period:    period,
		Group:     user.GroupLabel,
	})
}

// Logout handles POST /api/logout
// Sessions are immutable, so this only marks the event in the log.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.DailyCheckRequest
	if err := middleware.ParseJSONBody(r, &req); err == nil && req.UserID != "" {
		slog.Info("logout", "userid", req.UserID)
	}
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// periodOf buckets a local time into morning/afternoon/evening.
func periodOf(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 12:
		return models.PeriodMorning
	case hour < 18:
		return models.PeriodAfternoon
	default:
		return models.PeriodEvening
	}
}
