package stats

import (
	"testing"
	"time"

	"github.com/brk3/arena/pkg/arena"
	"github.com/stretchr/testify/assert"
)

func day(d int, hour int) time.Time {
	return time.Date(2024, 1, d, hour, 0, 0, 0, time.UTC)
}

func completionsOnDays(days ...int) []arena.Completion {
	// most recent first, as stores return them
	out := make([]arena.Completion, 0, len(days))
	for _, d := range days {
		out = append(out, arena.Completion{CompletedAt: day(d, 9)})
	}
	return out
}

func TestApplyCompletion(t *testing.T) {
	p := &arena.Participant{CurrentStreak: 2, LongestStreak: 5, TotalCompletions: 7}
	ts := day(10, 12)

	ApplyCompletion(p, ts)

	assert.Equal(t, 8, p.TotalCompletions)
	assert.Equal(t, 3, p.CurrentStreak)
	assert.Equal(t, 5, p.LongestStreak)
	assert.Equal(t, ts, p.LastCompletedAt)
}

func TestApplyCompletion_ExtendsLongest(t *testing.T) {
	p := &arena.Participant{CurrentStreak: 5, LongestStreak: 5}
	ApplyCompletion(p, day(10, 12))
	assert.Equal(t, 6, p.CurrentStreak)
	assert.Equal(t, 6, p.LongestStreak)
}

func TestRecompute_UnbrokenRun(t *testing.T) {
	total, current, longest := Recompute(completionsOnDays(3, 2, 1), day(3, 12), 0)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, current)
	assert.Equal(t, 3, longest)
}

func TestRecompute_BrokenRun(t *testing.T) {
	// a recent two-day run, a gap, then an older two-day run; the gap
	// flushes the first run into longest and resets the scan
	total, current, longest := Recompute(completionsOnDays(10, 9, 5, 4), day(10, 12), 0)
	assert.Equal(t, 4, total)
	assert.Equal(t, 1, current)
	assert.Equal(t, 2, longest)
}

func TestRecompute_StaleHistory(t *testing.T) {
	// the gap-breaking completion never extends a run, and current pins
	// on the scan's first extension even when history is stale
	_, current, longest := Recompute(completionsOnDays(2, 1), day(10, 12), 0)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
}

func TestRecompute_Empty(t *testing.T) {
	total, current, longest := Recompute(nil, day(10, 12), 0)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestRecompute_LongestNeverDecreases(t *testing.T) {
	cases := [][]int{
		nil,
		{10},
		{10, 9, 8},
		{10, 5, 4, 3},
	}
	for _, days := range cases {
		_, _, longest := Recompute(completionsOnDays(days...), day(10, 12), 9)
		assert.GreaterOrEqual(t, longest, 9, "days=%v", days)
	}
}
