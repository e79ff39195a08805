package stats

import (
	"sort"
	"time"

	"github.com/brk3/arena/pkg/arena"
)

// HistoryTable is a date × user pivot of an arena's completions. Dates are
// ordered newest first so today's column is immediately visible.
type HistoryTable struct {
	Dates     []string     `json:"dates"`
	Rows      []HistoryRow `json:"rows"`
	Truncated bool         `json:"truncated"`
}

type HistoryRow struct {
	UserID string                 `json:"user_id"`
	Name   string                 `json:"name"`
	You    bool                   `json:"is_you,omitempty"`
	Cells  map[string]HistoryCell `json:"cells"`
}

type HistoryCell struct {
	CompletedAt time.Time `json:"completed_at"`
	Display     string    `json:"display_value,omitempty"`
}

// BuildHistory pivots completions into per-day cells for the chosen window.
// Bucket keys are viewer-local calendar days. When a user logs twice on the
// same local day, the earliest completion wins the cell. Rows list users who
// completed today first, ordered by time of that completion, then everyone
// else by display name. viewerID marks the "you" row and may be empty.
func BuildHistory(w Window, completions []arena.Completion, names map[string]string,
	viewerID string, now time.Time, loc *time.Location) HistoryTable {

	start := w.Start(now, loc)
	today := localDay(now, loc)

	// oldest→newest, reversed below
	dates := make([]string, 0, w.Days())
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		dates = append(dates, localDay(d, loc))
	}
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}

	inWindow := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		inWindow[d] = struct{}{}
	}

	type rowState struct {
		row      HistoryRow
		todayAt  time.Time
		hasToday bool
	}
	byUser := map[string]*rowState{}
	order := []string{}

	for _, c := range completions {
		day := localDay(c.CompletedAt, loc)
		if _, ok := inWindow[day]; !ok {
			continue
		}
		rs, ok := byUser[c.UserID]
		if !ok {
			rs = &rowState{row: HistoryRow{
				UserID: c.UserID,
				Name:   displayName(names, c.UserID),
				You:    viewerID != "" && c.UserID == viewerID,
				Cells:  map[string]HistoryCell{},
			}}
			byUser[c.UserID] = rs
			order = append(order, c.UserID)
		}
		cell, exists := rs.row.Cells[day]
		if !exists || c.CompletedAt.Before(cell.CompletedAt) {
			rs.row.Cells[day] = HistoryCell{
				CompletedAt: c.CompletedAt,
				Display:     c.DisplayValue,
			}
		}
		if day == today {
			t := rs.row.Cells[day].CompletedAt
			rs.todayAt = t
			rs.hasToday = true
		}
	}

	rows := make([]HistoryRow, 0, len(order))
	states := make([]*rowState, 0, len(order))
	for _, id := range order {
		states = append(states, byUser[id])
	}
	sort.SliceStable(states, func(i, j int) bool {
		a, b := states[i], states[j]
		if a.hasToday != b.hasToday {
			return a.hasToday
		}
		if a.hasToday && !a.todayAt.Equal(b.todayAt) {
			return a.todayAt.Before(b.todayAt)
		}
		return a.row.Name < b.row.Name
	})
	for _, rs := range states {
		rows = append(rows, rs.row)
	}

	return HistoryTable{Dates: dates, Rows: rows}
}

func displayName(names map[string]string, userID string) string {
	if n, ok := names[userID]; ok && n != "" {
		return n
	}
	if len(userID) > 4 {
		return "User " + userID[len(userID)-4:]
	}
	return "User " + userID
}
