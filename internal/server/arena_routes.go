package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/brk3/arena/internal/logger"
	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/pkg/arena"
	"github.com/brk3/arena/pkg/versioninfo"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) getVersionInfo(w http.ResponseWriter, _ *http.Request) {
	info := versioninfo.VersionInfo{
		Version:   versioninfo.Version,
		BuildDate: versioninfo.BuildDate,
	}
	if err := writeJSON(w, http.StatusOK, info); err != nil {
		logger.Error("Failed to serialize version info response", "error", err)
		http.Error(w, `{"error":"failed to serialize version info"}`, http.StatusInternalServerError)
		return
	}
}

type createArenaRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Frequency     arena.Frequency `json:"frequency"`
	Public        *bool           `json:"is_public"`
	UnitType      arena.UnitType  `json:"unit_type"`
	UnitLabel     string          `json:"unit_label"`
	TargetValue   string          `json:"target_value"`
	RequiresInput bool            `json:"requires_input"`
}

func validateArenaRequest(req createArenaRequest) error {
	const maxTitleLength = 100
	const maxDescriptionLength = 1024

	if len(req.Title) == 0 || len(req.Title) > maxTitleLength {
		return fmt.Errorf("bad title: must be 1-%d characters", maxTitleLength)
	}
	if len(req.Description) > maxDescriptionLength {
		return fmt.Errorf("bad description: must be 0-%d characters", maxDescriptionLength)
	}
	switch req.Frequency {
	case arena.FrequencyDaily, arena.FrequencyWeekly, arena.FrequencyMonthly:
	default:
		return fmt.Errorf("bad frequency: must be daily, weekly or monthly")
	}
	switch req.UnitType {
	case arena.UnitNumber, arena.UnitTime, arena.UnitBoolean, arena.UnitText, "":
	default:
		return fmt.Errorf("bad unit type: must be number, time, boolean or text")
	}
	return nil
}

func (s *Server) createArena(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" {
		http.Error(w, `{"error":"user id is required"}`, http.StatusBadRequest)
		return
	}

	var req createArenaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid JSON in create arena request", "error", err)
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if err := validateArenaRequest(req); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"%s"}`, err.Error()), http.StatusBadRequest)
		return
	}

	now := s.now()
	public := true
	if req.Public != nil {
		public = *req.Public
	}
	a := &arena.Arena{
		ID:               uuid.NewString(),
		CreatedBy:        userID,
		Title:            req.Title,
		Description:      req.Description,
		Frequency:        req.Frequency,
		CreatedAt:        now,
		Public:           public,
		ParticipantCount: 1,
		UnitType:         req.UnitType,
		UnitLabel:        req.UnitLabel,
		TargetValue:      req.TargetValue,
		RequiresInput:    req.RequiresInput,
	}

	logger.Info("Creating arena", "user_id", userID, "title", a.Title)
	if err := s.store.PutArena(r.Context(), a); err != nil {
		logger.Error("Failed to store arena", "user_id", userID, "error", err)
		http.Error(w, `{"error":"database write failed"}`, http.StatusInternalServerError)
		return
	}

	// the creator joins their own arena with fresh counters
	p := &arena.Participant{
		ID:       uuid.NewString(),
		ArenaID:  a.ID,
		UserID:   userID,
		JoinedAt: now,
		Active:   true,
	}
	if err := s.store.PutParticipant(r.Context(), p); err != nil {
		logger.Error("Failed to auto-join creator", "user_id", userID, "arena_id", a.ID, "error", err)
		http.Error(w, `{"error":"database write failed"}`, http.StatusInternalServerError)
		return
	}
	s.ensureUser(r, userID)

	arenasCreated.Inc()
	if err := writeJSON(w, http.StatusCreated, a); err != nil {
		logger.Error("Failed to serialize create arena response", "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) listArenas(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" {
		http.Error(w, `{"error":"user id is required"}`, http.StatusBadRequest)
		return
	}
	browse := r.URL.Query().Get("browse") != ""

	// live counts come from active participations, not the stored field
	allActive, err := s.store.ListParticipants(r.Context(), storage.ParticipantFilter{ActiveOnly: true})
	if err != nil {
		logger.Error("Failed to list participants", "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	counts := map[string]int{}
	mine := map[string]*arena.Participant{}
	for i := range allActive {
		p := &allActive[i]
		counts[p.ArenaID]++
		if p.UserID == userID {
			mine[p.ArenaID] = p
		}
	}

	var filter storage.ArenaFilter
	if browse {
		filter = storage.ArenaFilter{PublicOnly: true}
	} else {
		ids := make([]string, 0, len(mine))
		for id := range mine {
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			writeJSON(w, http.StatusOK, ArenaListResponse{Arenas: []ArenaSummary{}})
			return
		}
		filter = storage.ArenaFilter{IDs: ids}
	}

	arenas, err := s.store.ListArenas(r.Context(), filter)
	if err != nil {
		logger.Error("Failed to list arenas", "user_id", userID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	summaries := make([]ArenaSummary, 0, len(arenas))
	for _, a := range arenas {
		a.ParticipantCount = counts[a.ID]
		activeParticipants.WithLabelValues(a.ID).Set(float64(a.ParticipantCount))
		sum := ArenaSummary{
			Arena:           a,
			IsCreatedByUser: a.CreatedBy == userID,
			IsJoinedByUser:  mine[a.ID] != nil,
		}
		sum.CanJoin = !sum.IsCreatedByUser && !sum.IsJoinedByUser
		if p := mine[a.ID]; p != nil {
			sum.UserStreak = p.CurrentStreak
			sum.UserLastDone = p.LastCompletedAt
		}
		summaries = append(summaries, sum)
	}

	if err := writeJSON(w, http.StatusOK, ArenaListResponse{Arenas: summaries}); err != nil {
		logger.Error("Failed to serialize arena list response", "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) getArena(w http.ResponseWriter, r *http.Request) {
	arenaID := chi.URLParam(r, "arena_id")
	if arenaID == "" {
		http.Error(w, `{"error":"arena id is required"}`, http.StatusBadRequest)
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

	active, err := s.store.ListParticipants(r.Context(), storage.ParticipantFilter{ArenaID: arenaID, ActiveOnly: true})
	if err != nil {
		logger.Error("Failed to count participants", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	a.ParticipantCount = len(active)

	if err := writeJSON(w, http.StatusOK, a); err != nil {
		logger.Error("Failed to serialize arena response", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) deleteArena(w http.ResponseWriter, r *http.Request) {
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
	if a.CreatedBy != userID {
		http.Error(w, `{"error":"only the creator can delete an arena"}`, http.StatusForbidden)
		return
	}

	logger.Info("Deleting arena", "user_id", userID, "arena_id", arenaID)
	if err := s.store.DeleteArena(r.Context(), arenaID); err != nil {
		logger.Error("Failed to delete arena", "arena_id", arenaID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}

	s.invalidateArena(r, arenaID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) joinArena(w http.ResponseWriter, r *http.Request) {
	arenaID := chi.URLParam(r, "arena_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || arenaID == "" {
		http.Error(w, `{"error":"user id and arena id are required"}`, http.StatusBadRequest)
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

	existing, err := s.store.ListParticipants(r.Context(), storage.ParticipantFilter{
		ArenaID:    arenaID,
		UserID:     userID,
		ActiveOnly: true,
	})
	if err != nil {
		logger.Error("Failed to check participation", "arena_id", arenaID, "user_id", userID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	if len(existing) > 0 {
		http.Error(w, `{"error":"already joined"}`, http.StatusConflict)
		return
	}

	var req struct {
		ReminderTime string `json:"reminder_time"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
			return
		}
	}

	p := &arena.Participant{
		ID:           uuid.NewString(),
		ArenaID:      arenaID,
		UserID:       userID,
		JoinedAt:     s.now(),
		Active:       true,
		ReminderTime: req.ReminderTime,
	}
	logger.Info("User joining arena", "user_id", userID, "arena_id", arenaID)
	if err := s.store.PutParticipant(r.Context(), p); err != nil {
		logger.Error("Failed to store participant", "arena_id", arenaID, "user_id", userID, "error", err)
		http.Error(w, `{"error":"database write failed"}`, http.StatusInternalServerError)
		return
	}
	s.ensureUser(r, userID)

	if err := writeJSON(w, http.StatusCreated, p); err != nil {
		logger.Error("Failed to serialize join response", "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) leaveArena(w http.ResponseWriter, r *http.Request) {
	arenaID := chi.URLParam(r, "arena_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if userID == "" || arenaID == "" {
		http.Error(w, `{"error":"user id and arena id are required"}`, http.StatusBadRequest)
		return
	}

	existing, err := s.store.ListParticipants(r.Context(), storage.ParticipantFilter{
		ArenaID:    arenaID,
		UserID:     userID,
		ActiveOnly: true,
	})
	if err != nil {
		logger.Error("Failed to check participation", "arena_id", arenaID, "user_id", userID, "error", err)
		http.Error(w, `{"error":"storage error"}`, http.StatusInternalServerError)
		return
	}
	if len(existing) == 0 {
		http.Error(w, `{"error":"not a participant"}`, http.StatusNotFound)
		return
	}

	// soft delete: deactivate, keep counters and history
	logger.Info("User leaving arena", "user_id", userID, "arena_id", arenaID)
	if err := s.updateParticipantWithRetry(r.Context(), arenaID, userID, func(cur *arena.Participant) {
		cur.Active = false
	}); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			http.Error(w, `{"error":"concurrent update, try again"}`, http.StatusConflict)
			return
		}
		logger.Error("Failed to deactivate participant", "arena_id", arenaID, "user_id", userID, "error", err)
		http.Error(w, `{"error":"database write failed"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ensureUser creates a minimal profile document the first time an
// identity shows up, so leaderboards have a display name to use.
func (s *Server) ensureUser(r *http.Request, userID string) {
	ctx := r.Context()
	if _, err := s.store.GetUser(ctx, userID); err == nil {
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("Failed to look up user profile", "user_id", userID, "error", err)
		return
	}

	u := &arena.User{ID: userID, Name: userID, JoinedAt: s.now()}
	if authUser, ok := r.Context().Value(userCtxKey{}).(*User); ok {
		if authUser.Email != "" {
			u.Email = authUser.Email
		}
		if authUser.Name != "" {
			u.Name = authUser.Name
		}
	}
	if err := s.store.PutUser(ctx, u); err != nil {
		logger.Warn("Failed to create user profile", "user_id", userID, "error", err)
	}
}
