package stats

import (
	"testing"
	"time"

	"github.com/brk3/arena/pkg/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plusTwo = time.FixedZone("UTC+2", 2*60*60)

func TestBuildHistory_TodayWindowSingleDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, plusTwo)
	table := BuildHistory(WindowToday, nil, nil, "", now, plusTwo)
	require.Len(t, table.Dates, 1)
	assert.Equal(t, "2024-03-15", table.Dates[0])
}

func TestBuildHistory_DatesDescending(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, plusTwo)
	table := BuildHistory(WindowWeek, nil, nil, "", now, plusTwo)
	require.Len(t, table.Dates, 7)
	assert.Equal(t, "2024-03-15", table.Dates[0])
	assert.Equal(t, "2024-03-09", table.Dates[6])
}

func TestBuildHistory_LocalDateBucketing(t *testing.T) {
	// 23:50 and 00:10 local on consecutive days share a UTC date but must
	// land in different buckets
	c1 := time.Date(2024, 3, 14, 23, 50, 0, 0, plusTwo) // 21:50 UTC Mar 14
	c2 := time.Date(2024, 3, 15, 0, 10, 0, 0, plusTwo)  // 22:10 UTC Mar 14
	require.Equal(t, c1.UTC().Day(), c2.UTC().Day())

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, plusTwo)
	completions := []arena.Completion{
		{UserID: "u1", CompletedAt: c2},
		{UserID: "u1", CompletedAt: c1},
	}
	table := BuildHistory(WindowWeek, completions, nil, "", now, plusTwo)
	require.Len(t, table.Rows, 1)
	cells := table.Rows[0].Cells
	assert.Contains(t, cells, "2024-03-14")
	assert.Contains(t, cells, "2024-03-15")
}

func TestBuildHistory_SameDayCollapsesToEarliest(t *testing.T) {
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, plusTwo)
	early := time.Date(2024, 3, 15, 7, 0, 0, 0, plusTwo)
	late := time.Date(2024, 3, 15, 18, 0, 0, 0, plusTwo)
	completions := []arena.Completion{
		{UserID: "u1", CompletedAt: late, DisplayValue: "late"},
		{UserID: "u1", CompletedAt: early, DisplayValue: "early"},
	}
	table := BuildHistory(WindowToday, completions, nil, "", now, plusTwo)
	require.Len(t, table.Rows, 1)
	cell, ok := table.Rows[0].Cells["2024-03-15"]
	require.True(t, ok)
	assert.Equal(t, "early", cell.Display)
	assert.Equal(t, early, cell.CompletedAt)
}

func TestBuildHistory_RowOrdering(t *testing.T) {
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, plusTwo)
	names := map[string]string{
		"anna": "Anna", "bert": "Bert", "carl": "Carl", "dina": "Dina",
	}
	completions := []arena.Completion{
		// today: bert at 09:00, anna at 14:00
		{UserID: "anna", CompletedAt: time.Date(2024, 3, 15, 14, 0, 0, 0, plusTwo)},
		{UserID: "bert", CompletedAt: time.Date(2024, 3, 15, 9, 0, 0, 0, plusTwo)},
		// yesterday only: dina then carl
		{UserID: "dina", CompletedAt: time.Date(2024, 3, 14, 9, 0, 0, 0, plusTwo)},
		{UserID: "carl", CompletedAt: time.Date(2024, 3, 14, 8, 0, 0, 0, plusTwo)},
	}
	table := BuildHistory(WindowWeek, completions, names, "anna", now, plusTwo)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, "Bert", table.Rows[0].Name) // earliest today
	assert.Equal(t, "Anna", table.Rows[1].Name)
	assert.True(t, table.Rows[1].You)
	assert.Equal(t, "Carl", table.Rows[2].Name) // no completion today, by name
	assert.Equal(t, "Dina", table.Rows[3].Name)
}

func TestBuildHistory_NameFallback(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, plusTwo)
	completions := []arena.Completion{
		{UserID: "user-1234abcd", CompletedAt: now.Add(-time.Hour)},
	}
	table := BuildHistory(WindowToday, completions, nil, "", now, plusTwo)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "User abcd", table.Rows[0].Name)
	assert.False(t, table.Rows[0].You)
}

func TestBuildHistory_OutsideWindowDropped(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, plusTwo)
	completions := []arena.Completion{
		{UserID: "u1", CompletedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, plusTwo)},
	}
	table := BuildHistory(WindowWeek, completions, nil, "", now, plusTwo)
	assert.Empty(t, table.Rows)
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, WindowWeek, w)

	for s, days := range map[string]int{"today": 1, "week": 7, "month": 30, "year": 365} {
		w, err := ParseWindow(s)
		require.NoError(t, err)
		assert.Equal(t, days, w.Days())
	}

	_, err = ParseWindow("fortnight")
	assert.Error(t, err)
}
