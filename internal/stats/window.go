package stats

import (
	"fmt"
	"time"
)

// Window selects the time span of a history table or leaderboard.
type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowToday, WindowWeek, WindowMonth, WindowYear:
		return Window(s), nil
	case "":
		return WindowWeek, nil
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Days returns the number of local calendar days the window covers,
// counting today.
func (w Window) Days() int {
	switch w {
	case WindowToday:
		return 1
	case WindowWeek:
		return 7
	case WindowMonth:
		return 30
	case WindowYear:
		return 365
	}
	return 7
}

// Start returns the instant the window opens: local midnight of the oldest
// covered day in the given timezone.
func (w Window) Start(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, -(w.Days() - 1))
}

// localDay renders the viewer-local calendar day key for an instant.
// Bucketing uses local date components, not UTC truncation, so a late-night
// completion lands on the day the viewer experienced it.
func localDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
