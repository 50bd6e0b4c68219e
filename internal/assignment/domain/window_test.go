package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	orgTime := NewOrgTime(480)

	d, err := orgTime.ParseDate("2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, 15, d.Day())
	assert.Equal(t, orgTime.Location(), d.Location())

	tests := []string{"", "15-06-2024", "2024/06/15", "2024-13-01", "yesterday"}
	for _, input := range tests {
		_, err := orgTime.ParseDate(input)
		assert.Error(t, err, "input %q", input)
		assert.True(t, IsValidation(err), "input %q", input)
	}
}

func TestDayWindow(t *testing.T) {
	// Midnight June 15 at UTC+8 is 16:00 June 14 UTC
	orgTime := NewOrgTime(480)
	date, err := orgTime.ParseDate("2024-06-15")
	require.NoError(t, err)

	w := orgTime.DayWindow(date)

	assert.Equal(t, time.Date(2024, 6, 14, 16, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 6, 15, 16, 0, 0, 0, time.UTC), w.End)

	assert.True(t, w.Contains(w.Start), "window start is inclusive")
	assert.False(t, w.Contains(w.End), "window end is exclusive")
	assert.True(t, w.Contains(w.End.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
}

func TestDayWindow_NegativeOffset(t *testing.T) {
	orgTime := NewOrgTime(-300) // UTC-5
	date, err := orgTime.ParseDate("2024-06-15")
	require.NoError(t, err)

	w := orgTime.DayWindow(date)

	assert.Equal(t, time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 6, 16, 5, 0, 0, 0, time.UTC), w.End)
}

func TestRangeWindow(t *testing.T) {
	orgTime := NewOrgTime(480)
	start, err := orgTime.ParseDate("2024-06-01")
	require.NoError(t, err)
	end, err := orgTime.ParseDate("2024-06-07")
	require.NoError(t, err)

	w, err := orgTime.RangeWindow(start, end)
	require.NoError(t, err)

	// End date is inclusive, so the window spans seven whole days
	assert.Equal(t, 7*24*time.Hour, w.End.Sub(w.Start))
	assert.Equal(t, orgTime.DayStart(start), w.Start)

	// A single-day range is valid
	single, err := orgTime.RangeWindow(start, start)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, single.End.Sub(single.Start))

	// Reversed bounds are rejected
	_, err = orgTime.RangeWindow(end, start)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestDayOfCrossesUTCBoundary(t *testing.T) {
	orgTime := NewOrgTime(480)

	// 20:00 UTC June 14 is already 04:00 June 15 at UTC+8
	instant := time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)

	day := orgTime.DayOf(instant)
	assert.Equal(t, 15, day.Day())
	assert.Equal(t, "2024-06-15", orgTime.FormatDate(instant))
}

func TestAssignmentIsLate(t *testing.T) {
	due := time.Date(2024, 6, 15, 16, 0, 0, 0, time.UTC)

	completedBefore := due.Add(-time.Hour)
	completedAfter := due.Add(time.Hour)

	tests := []struct {
		name       string
		assignment Assignment
		late       bool
	}{
		{
			name:       "completed before due time",
			assignment: Assignment{Status: StatusCompleted, DueTime: due, CompletedAt: &completedBefore},
			late:       false,
		},
		{
			name:       "completed exactly at due time",
			assignment: Assignment{Status: StatusCompleted, DueTime: due, CompletedAt: &due},
			late:       false,
		},
		{
			name:       "completed after due time",
			assignment: Assignment{Status: StatusCompleted, DueTime: due, CompletedAt: &completedAfter},
			late:       true,
		},
		{
			name:       "not completed",
			assignment: Assignment{Status: StatusPending, DueTime: due},
			late:       false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.late, tc.assignment.IsLate())
		})
	}
}
