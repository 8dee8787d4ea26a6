// Package web serves the scoring HTTP endpoint. It rescores submitted
// tasks with the model calibration and, for real account ids, persists
// the scores back to the store so other devices pick them up.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/mselway/triage/remote"
	"github.com/mselway/triage/score"
	"github.com/mselway/triage/task"
)

// Options configures the scoring handler.
type Options struct {
	// Store persists scores for authenticated owners. Nil disables
	// persistence; scores are still computed and returned.
	Store *remote.Store

	// Logger receives persistence failures. Nil uses the stdlib
	// default logger.
	Logger *log.Logger
}

// Handler serves POST /api/scores.
type Handler struct {
	store    *remote.Store
	strategy score.Strategy
	logger   *log.Logger
	mux      *http.ServeMux
	now      func() time.Time
}

// NewHandler creates the scoring handler.
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	handler := &Handler{
		store:    opts.Store,
		strategy: Model{},
		logger:   logger,
		now:      time.Now,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scores", handler.handleScores)
	handler.mux = mux
	return handler
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type scoresRequest struct {
	Tasks  []task.Task `json:"tasks"`
	UserID string      `json:"userId"`
}

type scoresResponse struct {
	AIScores map[string]int `json:"aiScores"`
}

func (h *Handler) handleScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req scoresRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	// Tag context only exists for real owners; guest submissions are
	// scored without tag terms.
	var tags []task.Tag
	if h.store != nil && req.UserID != score.GuestUserID {
		loaded, err := h.store.ListTags(r.Context(), req.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		tags = loaded
	}

	now := h.now()
	scores := make(map[string]int, len(req.Tasks))
	for _, t := range req.Tasks {
		if t.ID == "" {
			continue
		}
		scores[t.ID] = h.strategy.Score(t, tags, now)
	}

	if h.store != nil && req.UserID != score.GuestUserID {
		h.persist(r.Context(), req.UserID, scores)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(scoresResponse{AIScores: scores})
}

// persist writes the computed scores back to the store. Persistence
// failure never fails the request; the caller already has the scores.
func (h *Handler) persist(ctx context.Context, userID string, scores map[string]int) {
	for id, s := range scores {
		if err := h.store.SetScore(ctx, userID, id, s); err != nil {
			h.logger.Printf("web: persist score for %s: %v", id, err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
