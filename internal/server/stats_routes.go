package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brk3/arena/internal/cache"
	"github.com/brk3/arena/internal/logger"
	"github.com/brk3/arena/internal/stats"
	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/pkg/arena"
	"github.com/go-chi/chi/v5"
)

const statsCacheTTL = 30 * time.Second

func cacheKeyPrefix(arenaID string) string {
	return "arena:" + arenaID + ":"
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	arenaID := chi.URLParam(r, "arena_id")
	if arenaID == "" {
		http.Error(w, `{"error":"arena id is required"}`, http.StatusBadRequest)
		return
	}
	window, err := stats.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"%s"}`, err.Error()), http.StatusBadRequest)
		return
	}
	loc, err := s.viewerLocation(r)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"%s"}`, err.Error()), http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("%sleaderboard:%s:%s", cacheKeyPrefix(arenaID), window, loc)
	var cached LeaderboardResponse
	if s.cacheGet(r.Context(), key, &cached) {
		writeJSON(w, http.StatusOK, cached)
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

	now := s.now()
	completions, truncated, err := s.store.ListCompletions(r.Context(), storage.CompletionFilter{
		ArenaID: arenaID,
		Since:   window.Start(now, loc),
	})
	if err != nil {
		logger.Error("Failed to list completions", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	if truncated {
		logger.Warn("Leaderboard built from truncated completion history",
			"arena_id", arenaID, "window", window, "limit", storage.QueryLimit)
	}

	names, err := s.displayNames(r.Context(), completions)
	if err != nil {
		logger.Error("Failed to load user names", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	resp := LeaderboardResponse{
		ArenaID:   arenaID,
		Window:    string(window),
		Entries:   stats.RankUsers(a, completions, names),
		Truncated: truncated,
	}
	s.cacheSet(r.Context(), key, resp)

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize leaderboard response", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	arenaID := chi.URLParam(r, "arena_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if arenaID == "" {
		http.Error(w, `{"error":"arena id is required"}`, http.StatusBadRequest)
		return
	}
	window, err := stats.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"%s"}`, err.Error()), http.StatusBadRequest)
		return
	}
	loc, err := s.viewerLocation(r)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"%s"}`, err.Error()), http.StatusBadRequest)
		return
	}

	// the viewer id is part of the key: the "you" row marker differs
	key := fmt.Sprintf("%shistory:%s:%s:%s", cacheKeyPrefix(arenaID), window, loc, userID)
	var cached HistoryResponse
	if s.cacheGet(r.Context(), key, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	if _, err := s.store.GetArena(r.Context(), arenaID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, `{"error":"arena not found"}`, http.StatusNotFound)
			return
		}
		logger.Error("Failed to get arena", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	now := s.now()
	completions, truncated, err := s.store.ListCompletions(r.Context(), storage.CompletionFilter{
		ArenaID: arenaID,
		Since:   window.Start(now, loc),
	})
	if err != nil {
		logger.Error("Failed to list completions", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	names, err := s.displayNames(r.Context(), completions)
	if err != nil {
		logger.Error("Failed to load user names", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	table := stats.BuildHistory(window, completions, names, userID, now, loc)
	table.Truncated = truncated
	resp := HistoryResponse{
		ArenaID: arenaID,
		Window:  string(window),
		Table:   table,
	}
	s.cacheSet(r.Context(), key, resp)

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize history response", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) getParticipants(w http.ResponseWriter, r *http.Request) {
	arenaID := chi.URLParam(r, "arena_id")
	if arenaID == "" {
		http.Error(w, `{"error":"arena id is required"}`, http.StatusBadRequest)
		return
	}

	if _, err := s.store.GetArena(r.Context(), arenaID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, `{"error":"arena not found"}`, http.StatusNotFound)
			return
		}
		logger.Error("Failed to get arena", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	participants, err := s.store.ListParticipants(r.Context(), storage.ParticipantFilter{
		ArenaID:    arenaID,
		ActiveOnly: true,
	})
	if err != nil {
		logger.Error("Failed to list participants", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	users, err := s.store.ListUsers(r.Context(), ids)
	if err != nil {
		logger.Error("Failed to load user names", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	views := make([]ParticipantView, 0, len(participants))
	for _, p := range participants {
		views = append(views, ParticipantView{
			UserID:           p.UserID,
			Name:             names[p.UserID],
			JoinedAt:         p.JoinedAt,
			CurrentStreak:    p.CurrentStreak,
			LongestStreak:    p.LongestStreak,
			TotalCompletions: p.TotalCompletions,
			LastCompletedAt:  p.LastCompletedAt,
		})
	}

	resp := ParticipantListResponse{ArenaID: arenaID, Participants: views}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize participant response", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

// displayNames resolves user ids appearing in completions to profile names.
func (s *Server) displayNames(ctx context.Context, completions []arena.Completion) (map[string]string, error) {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, c := range completions {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		ids = append(ids, c.UserID)
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	users, err := s.store.ListUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

func (s *Server) cacheGet(ctx context.Context, key string, v any) bool {
	data, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return false
	}
	if err != nil {
		logger.Warn("Cache read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("Discarding malformed cache entry", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Server) cacheSet(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, statsCacheTTL); err != nil {
		logger.Warn("Cache write failed", "key", key, "error", err)
	}
}
