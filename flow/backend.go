package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/blesslab/bless-server/models"
)

// ErrTaskNotFound reports a missing (subject, trial) assignment. Fatal for
// the session: the flow must not guess a default task.
var ErrTaskNotFound = errors.New("no task assigned for this trial")

// Backend is what the flow controller needs from the server. The production
// implementation is HTTPBackend; tests use in-memory fakes.
type Backend interface {
	CheckDailyUsage(ctx context.Context, userID string) (bool, error)
	MarkStarted(ctx context.Context, userID, featureType string) error
	GetProgress(ctx context.Context, userID string) (int, error)
	GetTask(ctx context.Context, subject string, trial int) (string, error)
	SaveAssessment(ctx context.Context, userID, phase, featureType string, responses map[string]string) error
	CompleteCycle(ctx context.Context, userID, cycleID, featureType string, newTrial int) error
}

// HTTPBackend talks to the BLESS REST API.
type HTTPBackend struct {
	base string
	hc   *http.Client
}

// NewHTTPBackend creates a backend client for the API at baseURL.
// A nil client means http.DefaultClient.
func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{base: baseURL, hc: client}
}

func (b *HTTPBackend) CheckDailyUsage(ctx context.Context, userID string) (bool, error) {
	var resp models.DailyCheckResponse
	err := b.postJSON(ctx, "/api/daily/check", models.DailyCheckRequest{UserID: userID}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Blocked, nil
}

func (b *HTTPBackend) MarkStarted(ctx context.Context, userID, featureType string) error {
	return b.postJSON(ctx, "/api/daily/status", models.DailyStatusRequest{
		UserID:      userID,
		IsFinished:  false,
		FeatureType: featureType,
	}, nil)
}

func (b *HTTPBackend) GetProgress(ctx context.Context, userID string) (int, error) {
	var resp models.ProgressResponse
	err := b.getJSON(ctx, "/api/progress?userId="+url.QueryEscape(userID), &resp)
	if err != nil {
		return 0, err
	}
	return resp.Trial, nil
}

func (b *HTTPBackend) GetTask(ctx context.Context, subject string, trial int) (string, error) {
	path := "/api/getTask?subject=" + url.QueryEscape(subject) + "&trial=" + strconv.Itoa(trial)
	var resp models.TaskResponse
	err := b.getJSON(ctx, path, &resp)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return "", ErrTaskNotFound
		}
		return "", err
	}
	return resp.Task, nil
}

func (b *HTTPBackend) SaveAssessment(ctx context.Context, userID, phase, featureType string, responses map[string]string) error {
	return b.postJSON(ctx, "/api/avi/save", models.AVISaveRequest{
		UserID:      userID,
		Phase:       phase,
		FeatureType: featureType,
		Responses:   responses,
	}, nil)
}

func (b *HTTPBackend) CompleteCycle(ctx context.Context, userID, cycleID, featureType string, newTrial int) error {
	return b.postJSON(ctx, "/api/daily/complete", models.CompleteCycleRequest{
		UserID:      userID,
		CycleID:     cycleID,
		FeatureType: featureType,
		NewTrial:    newTrial,
	}, nil)
}

// HTTPError is a non-2xx API response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (b *HTTPBackend) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return b.do(req, out)
}

func (b *HTTPBackend) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base+path, nil)
	if err != nil {
		return err
	}
	return b.do(req, out)
}

func (b *HTTPBackend) do(req *http.Request, out any) error {
	resp, err := b.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &HTTPError{Status: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
