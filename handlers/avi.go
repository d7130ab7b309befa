// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/blesslab/bless-server/auth"
	"github.com/blesslab/bless-server/cliparse"
	"github.com/blesslab/bless-server/middleware"
	"github.com/blesslab/bless-server/models"
)

// minSectionRunes is the per-section floor for reflective writing,
// counted in runes since most participants write in Chinese.
const minSectionRunes = 20

// AssessmentHandler persists append-only study artifacts: AVI questionnaire
// submissions, reflective-writing records, and mood coordinates.
type AssessmentHandler struct {
	db  *sql.DB
	cfg cliparse.Config

	now func() time.Time
}

func NewAssessmentHandler(db *sql.DB, cfg cliparse.Config) *AssessmentHandler {
	return &AssessmentHandler{db: db, cfg: cfg, now: time.Now}
}

// SaveAVI handles POST /api/avi/save
// Appends a questionnaire submission. There is deliberately no coupling to
// an in-progress daily_usage row: a post-test for a never-started cycle
// still persists.
func (h *AssessmentHandler) SaveAVI(w http.ResponseWriter, r *http.Request) {
	var req models.AVISaveRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Phase != models.PhasePre && req.Phase != models.PhasePost {
		middleware.ErrorResponse(w, http.StatusBadRequest, "phase must be pre or post")
		return
	}
	if len(req.Responses) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "responses cannot be empty")
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

	responses, err := json.Marshal(req.Responses)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "responses not serializable")
		return
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate AVI ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save responses")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO avi_results (id, user_id, phase, feature_type, responses, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, realID, req.Phase, req.FeatureType, string(responses), h.now().In(h.cfg.Location()))
	if err != nil {
		slog.Error("failed to insert AVI result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save responses")
		return
	}

	slog.Info("AVI saved", "userid", req.UserID, "phase", req.Phase, "feature", req.FeatureType)

	middleware.JSONResponse(w, http.StatusCreated, models.OKResponse{OK: true})
}

// SaveWriting handles POST /api/writing/save
// Each of the five sections must carry at least minSectionRunes runes; the
// client enforces the same floor before submitting.
func (h *AssessmentHandler) SaveWriting(w http.ResponseWriter, r *http.Request) {
	var req models.WritingSaveRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}

	sections := map[string]string{
		"self":    req.Self,
		"you":     req.You,
		"he":      req.He,
		"back":    req.Back,
		"reflect": req.Reflect,
	}
	for name, text := range sections {
		if utf8.RuneCountInString(text) < minSectionRunes {
			middleware.ErrorResponse(w, http.StatusBadRequest, "section '"+name+"' is too short")
			return
		}
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

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate writing ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save writing")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO writings (id, user_id, feature_type, self_text, you_text, he_text, back_text, reflect_text, duration_sec, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, realID, req.FeatureType, req.Self, req.You, req.He, req.Back, req.Reflect,
		req.DurationSec, h.now().In(h.cfg.Location()))
	if err != nil {
		slog.Error("failed to insert writing", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save writing")
		return
	}

	slog.Info("writing saved", "userid", req.UserID, "feature", req.FeatureType)

	middleware.JSONResponse(w, http.StatusCreated, models.OKResponse{OK: true})
}

// SaveMood handles POST /api/mood/save
// Appends a 2-D affect coordinate from the mood picker.
func (h *AssessmentHandler) SaveMood(w http.ResponseWriter, r *http.Request) {
	var req models.MoodSaveRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Valence < -1 || req.Valence > 1 || req.Arousal < -1 || req.Arousal > 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "valence and arousal must be between -1 and 1")
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

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate mood ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save mood")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO moods (id, user_id, phase, valence, arousal, duration_sec, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, realID, req.Phase, req.Valence, req.Arousal, req.DurationSec, h.now().In(h.cfg.Location()))
	if err != nil {
		slog.Error("failed to insert mood", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save mood")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.OKResponse{OK: true})
}
