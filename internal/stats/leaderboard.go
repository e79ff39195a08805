package stats

import (
	"sort"

	"github.com/brk3/arena/pkg/arena"
)

type LeaderboardEntry struct {
	Rank           int               `json:"rank"`
	UserID         string            `json:"user_id"`
	Name           string            `json:"name"`
	TotalCount     int               `json:"total_count"`
	AverageValue   *float64          `json:"average_value,omitempty"`
	LastCompletion *arena.Completion `json:"last_completion,omitempty"`
}

// RankUsers groups an arena's completions by user and assigns 1-based dense
// ranks. Number-type arenas rank by average recorded value descending, with
// unparseable values coerced to 0; every other unit type ranks by total
// completion count descending. Ties break by display name ascending so the
// ordering is deterministic. Equal metrics still get distinct ranks.
//
// Completions must be ordered by CompletedAt descending so the first
// completion seen per user is their most recent.
func RankUsers(a *arena.Arena, completions []arena.Completion, names map[string]string) []LeaderboardEntry {
	byNumber := a.UnitType == arena.UnitNumber

	type agg struct {
		entry LeaderboardEntry
		sum   float64
	}
	byUser := map[string]*agg{}
	order := []string{}

	for i := range completions {
		c := completions[i]
		g, ok := byUser[c.UserID]
		if !ok {
			g = &agg{entry: LeaderboardEntry{
				UserID:         c.UserID,
				Name:           displayName(names, c.UserID),
				LastCompletion: &completions[i],
			}}
			byUser[c.UserID] = g
			order = append(order, c.UserID)
		}
		g.entry.TotalCount++
		g.sum += arena.NumericValue(c.Value)
	}

	entries := make([]LeaderboardEntry, 0, len(order))
	for _, id := range order {
		g := byUser[id]
		if byNumber && g.entry.TotalCount > 0 {
			avg := g.sum / float64(g.entry.TotalCount)
			g.entry.AverageValue = &avg
		}
		entries = append(entries, g.entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if byNumber {
			av, bv := deref(a.AverageValue), deref(b.AverageValue)
			if av != bv {
				return av > bv
			}
		} else if a.TotalCount != b.TotalCount {
			return a.TotalCount > b.TotalCount
		}
		return a.Name < b.Name
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
