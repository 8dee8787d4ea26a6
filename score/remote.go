package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	internalstrings "github.com/mselway/triage/internal/strings"
	"github.com/mselway/triage/task"
)

// GuestUserID is the userId sent to the scoring endpoint for sessions
// without an account. The endpoint skips server-side persistence for
// it.
const GuestUserID = "guest"

const defaultRemoteTimeout = 10 * time.Second

// RemoteScorer calls the optional scoring HTTP endpoint, which applies
// a model-driven calibration. Callers must treat its errors as
// non-fatal: when the call fails, the locally computed score stands.
type RemoteScorer struct {
	baseURL string
	client  *http.Client
}

type scoreRequest struct {
	Tasks  []task.Task `json:"tasks"`
	UserID string      `json:"userId"`
}

type scoreResponse struct {
	AIScores map[string]int `json:"aiScores"`
}

// NewRemoteScorer creates a scorer for the endpoint at baseURL.
func NewRemoteScorer(baseURL string) *RemoteScorer {
	return &RemoteScorer{
		baseURL: internalstrings.TrimTrailingSlash(baseURL),
		client:  &http.Client{Timeout: defaultRemoteTimeout},
	}
}

// Score posts the tasks to the endpoint and returns scores keyed by
// task id. userID is a real account id or GuestUserID; for real
// accounts the endpoint additionally persists the scores server-side.
func (s *RemoteScorer) Score(ctx context.Context, tasks []task.Task, userID string) (map[string]int, error) {
	if userID == "" {
		userID = GuestUserID
	}

	body, err := json.Marshal(scoreRequest{Tasks: tasks, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/scores", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call scoring endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("scoring endpoint returned %d: %s", resp.StatusCode, payload)
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode score response: %w", err)
	}
	return parsed.AIScores, nil
}
