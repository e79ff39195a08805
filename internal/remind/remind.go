package remind

import (
	"context"
	"time"

	"github.com/brk3/arena/internal/logger"
	"github.com/brk3/arena/internal/storage"
)

// Notifier delivers one reminder listing the arenas whose streaks are
// about to lapse.
type Notifier interface {
	SendReminder(email string, arenas []string, hoursTillExpiry int) error
}

// Expiring lists, per user email, the arena titles whose streak lapses
// within the given duration. A streak lapses when a whole day passes
// without a completion, so anything last completed more than 24h-within
// ago qualifies.
func Expiring(ctx context.Context, q Querier, within time.Duration, now time.Time) (map[string][]string, error) {
	participants, err := q.ListParticipants(ctx, storage.ParticipantFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	out := map[string][]string{}
	for _, p := range participants {
		if p.CurrentStreak == 0 || p.LastCompletedAt.IsZero() {
			continue
		}
		if now.Add(within).Sub(p.LastCompletedAt) < 24*time.Hour {
			continue
		}

		u, err := q.GetUser(ctx, p.UserID)
		if err != nil {
			logger.Warn("Skipping reminder, no user profile", "user_id", p.UserID, "error", err)
			continue
		}
		if u.Email == "" {
			continue
		}
		a, err := q.GetArena(ctx, p.ArenaID)
		if err != nil {
			logger.Warn("Skipping reminder, arena lookup failed", "arena_id", p.ArenaID, "error", err)
			continue
		}
		out[u.Email] = append(out[u.Email], a.Title)
	}
	return out, nil
}

// Run sends one reminder per user for streaks expiring within the given
// duration.
func Run(ctx context.Context, q Querier, n Notifier, within time.Duration) error {
	expiring, err := Expiring(ctx, q, within, time.Now())
	if err != nil {
		return err
	}

	hours := int(within / time.Hour)
	for email, arenas := range expiring {
		logger.Info("Sending streak reminder", "email", email, "arenas", len(arenas))
		if err := n.SendReminder(email, arenas, hours); err != nil {
			return err
		}
	}
	return nil
}
