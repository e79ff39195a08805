package server

import (
	"time"

	"github.com/brk3/arena/internal/stats"
	"github.com/brk3/arena/pkg/arena"
)

// ArenaSummary is an arena plus the caller's relationship to it. The
// participant count is always the live count of active participations.
type ArenaSummary struct {
	arena.Arena
	CanJoin         bool      `json:"can_join"`
	IsCreatedByUser bool      `json:"is_created_by_user"`
	IsJoinedByUser  bool      `json:"is_joined_by_user"`
	UserStreak      int       `json:"user_streak,omitempty"`
	UserLastDone    time.Time `json:"user_last_completed,omitempty"`
}

type ArenaListResponse struct {
	Arenas []ArenaSummary `json:"arenas"`
}

// CompletionResponse reports the recorded completion and whether the
// participant counters were updated along with it. CountersUpdated is
// false when the caller has no active participation; the completion is
// still recorded.
type CompletionResponse struct {
	Completion      arena.Completion   `json:"completion"`
	CountersUpdated bool               `json:"counters_updated"`
	Warning         string             `json:"warning,omitempty"`
	Participant     *arena.Participant `json:"participant,omitempty"`
}

type LeaderboardResponse struct {
	ArenaID   string                   `json:"arena_id"`
	Window    string                   `json:"window"`
	Entries   []stats.LeaderboardEntry `json:"entries"`
	Truncated bool                     `json:"truncated"`
}

type HistoryResponse struct {
	ArenaID string             `json:"arena_id"`
	Window  string             `json:"window"`
	Table   stats.HistoryTable `json:"table"`
}

type ParticipantView struct {
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	JoinedAt         time.Time `json:"joined_at"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	TotalCompletions int       `json:"total_completions"`
	LastCompletedAt  time.Time `json:"last_completed_at,omitempty"`
}

type ParticipantListResponse struct {
	ArenaID      string            `json:"arena_id"`
	Participants []ParticipantView `json:"participants"`
}
