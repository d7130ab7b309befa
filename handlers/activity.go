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

type ActivityHandler struct {
	db  *sql.DB
	cfg cliparse.Config

	now func() time.Time
}

func NewActivityHandler(db *sql.DB, cfg cliparse.Config) *ActivityHandler {
	return &ActivityHandler{db: db, cfg: cfg, now: time.Now}
}

// Start handles POST /api/activity/start
func (h *ActivityHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.ActivityStartRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
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

	activityID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate activity ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start activity")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO activities (id, user_id, type, start_time)
		VALUES ($1, $2, $3, $4)
	`, activityID, realID, req.FeatureType, h.now().In(h.cfg.Location()))
	if err != nil {
		slog.Error("failed to insert activity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start activity")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.ActivityStartResponse{ActivityID: activityID})
}

// End handles POST /api/activity/end
// Sets the end timestamp and computes the duration in minutes. Duration is
// computed in Go rather than SQL so the same code runs on both drivers.
func (h *ActivityHandler) End(w http.ResponseWriter, r *http.Request) {
	var req models.ActivityEndRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ActivityID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "activityId is required")
		return
	}

	var startTime time.Time
	err := h.db.QueryRow(`
		SELECT start_time FROM activities WHERE id = $1
	`, req.ActivityID).Scan(&startTime)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Activity not found")
		return
	}
	if err != nil {
		slog.Error("failed to query activity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	endTime := h.now().In(h.cfg.Location())
	durationMin := endTime.Sub(startTime).Minutes()

	_, err = h.db.Exec(`
		UPDATE activities
		SET end_time = $1, duration_min = $2
		WHERE id = $3
	`, endTime, durationMin, req.ActivityID)
	if err != nil {
		slog.Error("failed to end activity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to end activity")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}
