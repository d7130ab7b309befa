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

// DailyHandler owns the once-per-day gate: a participant may start the daily
// flow any number of times, but once a finished row exists for today the
// gate blocks until the next calendar day.
type DailyHandler struct {
	db  *sql.DB
	cfg cliparse.Config

	// now is swappable for calendar-sensitive tests
	now func() time.Time
}

func NewDailyHandler(db *sql.DB, cfg cliparse.Config) *DailyHandler {
	return &DailyHandler{db: db, cfg: cfg, now: time.Now}
}

func (h *DailyHandler) today() string {
	return h.now().In(h.cfg.Location()).Format("2006-01-02")
}

// Check handles POST /api/daily/check
// Pure read: blocked iff a finished daily_usage row exists for (user, today).
func (h *DailyHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req models.DailyCheckRequest
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
		// Unknown participants are never blocked; provisioning races must
		// not lock anyone out of a wellbeing tool.
		middleware.JSONResponse(w, http.StatusOK, models.DailyCheckResponse{Blocked: false})
		return
	}
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var finished int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM daily_usage
		WHERE user_id = $1 AND day = $2 AND is_finished = $3
	`, realID, h.today(), true).Scan(&finished)

	if err != nil {
		slog.Error("failed to query daily usage", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DailyCheckResponse{Blocked: finished > 0})
}

// Start handles POST /api/daily/start
// Legacy entry point: inserts a started row without a feature type.
func (h *DailyHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.DailyStartRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.markStarted(req.UserID, ""); err != nil {
		h.usageError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// Status handles POST /api/daily/status
// isFinished=false records a start, isFinished=true marks the most recent
// unfinished start for today as complete.
func (h *DailyHandler) Status(w http.ResponseWriter, r *http.Request) {
	var req models.DailyStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}

	var err error
	if req.IsFinished {
		err = h.markCompleted(req.UserID, req.FeatureType)
	} else {
		err = h.markStarted(req.UserID, req.FeatureType)
	}
	if err != nil {
		h.usageError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

func (h *DailyHandler) markStarted(userID, featureType string) error {
	realID, err := lookupUserID(h.db, userID)
	if err != nil {
		return err
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		return err
	}

	// Duplicate starts for the same day are allowed (two tabs); the stale
	// row simply never gets finished.
	_, err = h.db.Exec(`
		INSERT INTO daily_usage (id, user_id, day, feature_type, started_at, is_finished)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, realID, h.today(), featureType, h.now().In(h.cfg.Location()), false)
	if err != nil {
		return err
	}

	slog.Info("daily flow started", "userid", userID, "feature", featureType)
	return nil
}

// markCompleted finishes the most recently started unfinished row matching
// (user, today, featureType). A no-op when no such row exists.
func (h *DailyHandler) markCompleted(userID, featureType string) error {
	realID, err := lookupUserID(h.db, userID)
	if err != nil {
		return err
	}

	res, err := h.db.Exec(`
		UPDATE daily_usage
		SET is_finished = $1, finished_at = $2
		WHERE id = (
			SELECT id FROM daily_usage
			WHERE user_id = $3 AND day = $4 AND feature_type = $5 AND is_finished = $6
			ORDER BY started_at DESC
			LIMIT 1
		)
	`, true, h.now().In(h.cfg.Location()), realID, h.today(), featureType, false)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		slog.Warn("completion without a matching started row", "userid", userID, "feature", featureType)
	} else {
		slog.Info("daily flow completed", "userid", userID, "feature", featureType)
	}
	return nil
}

// Complete handles POST /api/daily/complete
// Single-transaction replacement for the mark-complete + advance-progress
// pair. Idempotent on cycleId: a retried request that already applied
// returns the stored trial without advancing again.
func (h *DailyHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteCycleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" || req.CycleID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId and cycleId are required")
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

	now := h.now().In(h.cfg.Location())
	today := h.today()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Replay of an already-applied cycle: report current state, change nothing.
	var applied int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM daily_usage
		WHERE cycle_id = $1 AND is_finished = $2
	`, req.CycleID, true).Scan(&applied)
	if err != nil {
		slog.Error("failed to query cycle", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if applied > 0 {
		var trial int
		err = tx.QueryRow(`SELECT trial FROM user_progress WHERE user_id = $1`, realID).Scan(&trial)
		if err != nil {
			slog.Error("failed to read progress for replayed cycle", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if err := tx.Commit(); err != nil {
			slog.Error("failed to commit", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.CompleteCycleResponse{
			Trial:          trial,
			AlreadyApplied: true,
		})
		return
	}

	res, err := tx.Exec(`
		UPDATE daily_usage
		SET is_finished = $1, finished_at = $2, cycle_id = $3
		WHERE id = (
			SELECT id FROM daily_usage
			WHERE user_id = $4 AND day = $5 AND feature_type = $6 AND is_finished = $7
			ORDER BY started_at DESC
			LIMIT 1
		)
	`, true, now, req.CycleID, realID, today, req.FeatureType, false)
	if err != nil {
		slog.Error("failed to mark cycle complete", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// A lost markStarted intent leaves no row to finish. Record the
	// completion anyway so the gate closes for today.
	if n, _ := res.RowsAffected(); n == 0 {
		id, err := auth.GenerateID(16)
		if err != nil {
			slog.Error("failed to generate usage ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		_, err = tx.Exec(`
			INSERT INTO daily_usage (id, user_id, day, feature_type, cycle_id, started_at, is_finished, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, realID, today, req.FeatureType, req.CycleID, now, true, now)
		if err != nil {
			slog.Error("failed to insert completion row", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	_, err = tx.Exec(`
		INSERT INTO user_progress (user_id, trial, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET trial = EXCLUDED.trial, updated_at = EXCLUDED.updated_at
	`, realID, req.NewTrial, now)
	if err != nil {
		slog.Error("failed to advance progress", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit cycle completion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("cycle completed", "userid", req.UserID, "cycle_id", req.CycleID, "trial", req.NewTrial)

	middleware.JSONResponse(w, http.StatusOK, models.CompleteCycleResponse{Trial: req.NewTrial})
}

func (h *DailyHandler) usageError(w http.ResponseWriter, err error) {
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	slog.Error("daily usage write failed", "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
}
