package stats

import (
	"time"

	"github.com/brk3/arena/pkg/arena"
)

// ApplyCompletion updates a participant's counters for one new completion
// without rescanning history. The current streak is monotonically
// non-decreasing here; drift from missed days is repaired by Recompute.
func ApplyCompletion(p *arena.Participant, completedAt time.Time) {
	p.TotalCompletions++
	p.CurrentStreak++
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastCompletedAt = completedAt
}

// Recompute derives total completions and streak counters from the full
// completion history of one (user, arena) pair. Completions must be sorted
// by CompletedAt descending. prevLongest acts as a floor so a previously
// recorded longest streak never decreases.
//
// The scan walks from most recent to oldest keeping a running streak. A
// whole-day gap of more than one breaks the run; the current streak is
// pinned on the first extension of the scan.
func Recompute(completions []arena.Completion, now time.Time, prevLongest int) (total, current, longest int) {
	total = len(completions)
	longest = 0

	temp := 0
	pinned := false
	last := now
	for _, c := range completions {
		gap := int(last.Sub(c.CompletedAt) / (24 * time.Hour))
		if gap <= 1 {
			temp++
			if !pinned {
				current = temp
				pinned = true
			}
		} else {
			if temp > longest {
				longest = temp
			}
			temp = 0
		}
		last = c.CompletedAt
	}
	if temp > longest {
		longest = temp
	}
	if prevLongest > longest {
		longest = prevLongest
	}
	return total, current, longest
}
