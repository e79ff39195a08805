package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brk3/arena/internal/logger"
	"github.com/brk3/arena/internal/stats"
	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/pkg/arena"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const casRetries = 3

type recordCompletionRequest struct {
	Value       string     `json:"value"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (s *Server) recordCompletion(w http.ResponseWriter, r *http.Request) {
	arenaID := chi.URLParam(r, "arena_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || arenaID == "" {
		http.Error(w, `{"error":"user id and arena id are required"}`, http.StatusBadRequest)
		return
	}

	a, err := s.store.GetArena(r.Context(), arenaID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, `{"error":"arena not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("Failed to get arena", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	var req recordCompletionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("Invalid JSON in completion request", "error", err)
			http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
			return
		}
	}
	if a.RequiresInput && req.Value == "" {
		http.Error(w, `{"error":"this arena requires a value"}`, http.StatusBadRequest)
		return
	}

	if req.Value == "" && a.UnitType == arena.UnitBoolean {
		// completing a boolean arena without input counts as done
		req.Value = "done"
	}

	completedAt := s.now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}
	c := &arena.Completion{
		ID:          uuid.NewString(),
		ArenaID:     arenaID,
		UserID:      userID,
		CompletedAt: completedAt,
	}
	// the value is optional unless the arena demands it; only parse what
	// was actually supplied
	if req.Value != "" {
		val, err := arena.ParseValue(a.UnitType, req.Value)
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":"%s"}`, err.Error()), http.StatusBadRequest)
			return
		}
		c.Value = val.Raw()
		c.DisplayValue = val.Display(a.UnitLabel)
	}

	logger.Info("Recording completion", "user_id", userID, "arena_id", arenaID, "value", c.Value)
	if err := s.store.PutCompletion(r.Context(), c); err != nil {
		logger.Error("Failed to store completion", "arena_id", arenaID, "user_id", userID, "error", err)
		http.Error(w, `{"error":"database write failed"}`, http.StatusInternalServerError)
		return
	}

	resp := CompletionResponse{Completion: *c}

	// counter updates ride on an active participation; the completion
	// itself is already durable either way
	p, err := s.bumpCounters(r.Context(), arenaID, userID, completedAt)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Warn("Completion recorded without active participation",
			"user_id", userID, "arena_id", arenaID)
		resp.Warning = "no active participation: streak counters were not updated"
	case err != nil:
		logger.Error("Failed to update participant counters", "arena_id", arenaID, "user_id", userID, "error", err)
		resp.Warning = "streak counters could not be updated"
	default:
		resp.CountersUpdated = true
		resp.Participant = p
	}
	completionsRecorded.WithLabelValues(fmt.Sprintf("%t", resp.CountersUpdated)).Inc()

	s.invalidateArena(r, arenaID)

	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		logger.Error("Failed to serialize completion response", "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

// bumpCounters applies one completion to the caller's participant counters
// under optimistic concurrency. Returns ErrNotFound when the user has no
// active participation in the arena.
func (s *Server) bumpCounters(ctx context.Context, arenaID, userID string, completedAt time.Time) (*arena.Participant, error) {
	var p *arena.Participant
	err := s.updateParticipantWithRetry(ctx, arenaID, userID, func(cur *arena.Participant) {
		stats.ApplyCompletion(cur, completedAt)
		p = cur
	})
	return p, err
}

// updateParticipantWithRetry reloads the active participation, applies
// mutate and writes it back, retrying a bounded number of times when a
// concurrent writer bumped the version first.
func (s *Server) updateParticipantWithRetry(ctx context.Context, arenaID, userID string,
	mutate func(*arena.Participant)) error {

	var err error
	for attempt := 0; attempt < casRetries; attempt++ {
		var existing []arena.Participant
		existing, err = s.store.ListParticipants(ctx, storage.ParticipantFilter{
			ArenaID:    arenaID,
			UserID:     userID,
			ActiveOnly: true,
		})
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			return storage.ErrNotFound
		}

		p := existing[0]
		mutate(&p)
		err = s.store.UpdateParticipant(ctx, &p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return err
		}
		logger.Debug("Participant version conflict, retrying",
			"arena_id", arenaID, "user_id", userID, "attempt", attempt+1)
	}
	return err
}

// invalidateArena drops every cached aggregation for the arena.
func (s *Server) invalidateArena(r *http.Request, arenaID string) {
	if err := s.cache.DeletePrefix(r.Context(), cacheKeyPrefix(arenaID)); err != nil {
		logger.Warn("Failed to invalidate cache", "arena_id", arenaID, "error", err)
	}
}
