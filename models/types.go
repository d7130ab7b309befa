package models

import "time"

// Assessment phase constants
const (
	PhasePre  = "pre"
	PhasePost = "post"
)

// Time-of-day bucket constants
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodEvening   = "evening"
)

// Request types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type DailyCheckRequest struct {
	UserID string `json:"userId"`
}

type DailyStartRequest struct {
	UserID string `json:"userId"`
}

type DailyStatusRequest struct {
	UserID      string `json:"userId"`
	IsFinished  bool   `json:"isFinished"`
	FeatureType string `json:"featureType"`
}

type CompleteCycleRequest struct {
	UserID      string `json:"userId"`
	CycleID     string `json:"cycleId"`
	FeatureType string `json:"featureType"`
	NewTrial    int    `json:"newTrial"`
}

type ProgressUpdateRequest struct {
	UserID   string `json:"userId"`
	NewTrial int    `json:"newTrial"`
}

// Responses holds the raw question -> answer map from the AVI form
type AVISaveRequest struct {
	UserID      string            `json:"userId"`
	Phase       string            `json:"phase"`
	FeatureType string            `json:"featureType"`
	Responses   map[string]string `json:"responses"`
}

type WritingSaveRequest struct {
	UserID      string  `json:"userId"`
	FeatureType string  `json:"featureType"`
	Self        string  `json:"self"`
	You         string  `json:"you"`
	He          string  `json:"he"`
	Back        string  `json:"back"`
	Reflect     string  `json:"reflect"`
	DurationSec float64 `json:"durationSec"`
}

type MoodSaveRequest struct {
	UserID      string  `json:"userId"`
	Phase       string  `json:"phase"`
	Valence     float64 `json:"valence"`
	Arousal     float64 `json:"arousal"`
	DurationSec float64 `json:"durationSec"`
}

type ActivityStartRequest struct {
	UserID      string `json:"userId"`
	FeatureType string `json:"featureType"`
}

type ActivityEndRequest struct {
	ActivityID string `json:"activityId"`
}

type FeedbackRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// Response types

type LoginResponse struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	LoginTime string `json:"loginTime"`
	Period    string `json:"period"`
	Group     string `json:"group,omitempty"`
}

type DailyCheckResponse struct {
	Blocked bool `json:"blocked"`
}

type CompleteCycleResponse struct {
	Trial          int  `json:"trial"`
	AlreadyApplied bool `json:"alreadyApplied"`
}

type ProgressResponse struct {
	Trial int `json:"trial"`
}

type TaskResponse struct {
	Task string `json:"task"`
}

type ActivityStartResponse struct {
	ActivityID string `json:"activityId"`
}

type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}

type ContentResponse struct {
	Day int    `json:"day"`
	URL string `json:"url"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// Domain types

type User struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Password   string    `json:"-"` // Never expose in JSON
	GroupLabel string    `json:"group,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	LoginTime time.Time `json:"login_time"`
	Period    string    `json:"period"`
}

type DailyUsageRecord struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Day         string     `json:"day"`
	FeatureType string     `json:"feature_type"`
	CycleID     string     `json:"cycle_id,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	IsFinished  bool       `json:"is_finished"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

type Activity struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Type        string     `json:"type"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	DurationMin *float64   `json:"duration_min,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
