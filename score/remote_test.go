package score

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mselway/triage/task"
)

func TestRemoteScorer_Score(t *testing.T) {
	var gotUserID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scores" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		gotUserID = req.UserID
		scores := make(map[string]int, len(req.Tasks))
		for _, tk := range req.Tasks {
			scores[tk.ID] = 42
		}
		json.NewEncoder(w).Encode(scoreResponse{AIScores: scores})
	}))
	defer server.Close()

	scorer := NewRemoteScorer(server.URL)
	scores, err := scorer.Score(context.Background(), []task.Task{{ID: "t1", Title: "x"}}, "user-1")
	if err != nil {
		t.Fatalf("failed to score: %v", err)
	}
	if scores["t1"] != 42 {
		t.Errorf("expected score 42, got %d", scores["t1"])
	}
	if gotUserID != "user-1" {
		t.Errorf("expected userId 'user-1', got %q", gotUserID)
	}
}

func TestRemoteScorer_DefaultsToGuest(t *testing.T) {
	var gotUserID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotUserID = req.UserID
		json.NewEncoder(w).Encode(scoreResponse{AIScores: map[string]int{}})
	}))
	defer server.Close()

	if _, err := NewRemoteScorer(server.URL).Score(context.Background(), nil, ""); err != nil {
		t.Fatalf("failed to score: %v", err)
	}
	if gotUserID != GuestUserID {
		t.Errorf("expected guest userId, got %q", gotUserID)
	}
}

func TestRemoteScorer_SurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewRemoteScorer(server.URL).Score(context.Background(), nil, "user-1"); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestRemoteScorer_Unreachable(t *testing.T) {
	// A dead endpoint must return an error, not panic; the caller
	// falls back to the local score.
	scorer := NewRemoteScorer("http://127.0.0.1:1")
	if _, err := scorer.Score(context.Background(), nil, "user-1"); err == nil {
		t.Error("expected error for unreachable endpoint")
	}
}
