// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/blesslab/bless-server/cliparse"
	"github.com/blesslab/bless-server/middleware"
	"github.com/blesslab/bless-server/models"
)

type ProgressHandler struct {
	db  *sql.DB
	cfg cliparse.Config

	now func() time.Time
}

func NewProgressHandler(db *sql.DB, cfg cliparse.Config) *ProgressHandler {
	return &ProgressHandler{db: db, cfg: cfg, now: time.Now}
}

// Get handles GET /api/progress?userId=
// Returns the current trial number, initializing it to 1 on first read.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}

	realID, err := lookupUserID(h.db, userID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// First-ever read creates the row; a lost race here is harmless since
	// both writers insert trial 1.
	_, err = h.db.Exec(`
		INSERT INTO user_progress (user_id, trial, updated_at)
		VALUES ($1, 1, $2)
		ON CONFLICT DO NOTHING
	`, realID, h.now().In(h.cfg.Location()))
	if err != nil {
		slog.Error("failed to initialize progress", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var trial int
	err = h.db.QueryRow(`SELECT trial FROM user_progress WHERE user_id = $1`, realID).Scan(&trial)
	if err != nil {
		slog.Error("failed to read progress", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProgressResponse{Trial: trial})
}

// Update handles POST /api/progress/update
// Unconditionally overwrites the stored trial number. Legacy path: the
// transactional /api/daily/complete is the supported way to advance.
func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ProgressUpdateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.NewTrial < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "newTrial must be >= 1")
		return
	}

	realID, err := lookupUserID(h.db, req.UserID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO user_progress (user_id, trial, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET trial = EXCLUDED.trial, updated_at = EXCLUDED.updated_at
	`, realID, req.NewTrial, h.now().In(h.cfg.Location()))
	if err != nil {
		slog.Error("failed to update progress", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("progress updated", "userid", req.UserID, "trial", req.NewTrial)

	middleware.JSONResponse(w, http.StatusOK, models.ProgressResponse{Trial: req.NewTrial})
}

// GetTask handles GET /api/getTask?subject=&trial=
// Pure lookup in the static assignment table. A missing row is a 404 the
// caller must treat as fatal for the session, never guessing a default task.
func (h *ProgressHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	trialStr := r.URL.Query().Get("trial")
	if subject == "" || trialStr == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing subject or trial")
		return
	}

	trial, err := strconv.Atoi(trialStr)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "trial must be an integer")
		return
	}

	var task string
	err = h.db.QueryRow(`
		SELECT task FROM task_sequence
		WHERE subject_id = $1 AND trial = $2
	`, subject, trial).Scan(&task)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		slog.Error("failed to query task", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TaskResponse{Task: task})
}
