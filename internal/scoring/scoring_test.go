package scoring

import (
	"testing"

	"github.com/giodelapiedra/backend-sub011/internal/assignment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScore_Breakdown(t *testing.T) {
	// 10 assignments: 8 completed (6 on time, 2 late), 1 overdue, 1 pending.
	// Fair denominator is 9; completion rate 8/9 = 88.9% lands in the 85% band.
	current := domain.StatusPartition{
		Total:     10,
		Completed: 8,
		OnTime:    6,
		Late:      2,
		Overdue:   1,
		Pending:   1,
	}

	score, err := ComputeScore(current, nil)
	require.NoError(t, err)

	b := score.Breakdown
	assert.Equal(t, 9, b.Decided)
	assert.InDelta(t, 88.888, b.FairCompletionRate, 0.001)
	assert.InDelta(t, 66.666, b.FairOnTimeRate, 0.001)
	assert.InDelta(t, 11.111, b.LateRate, 0.001)

	assert.Equal(t, 31, b.CompletionPoints)
	// The on-time component follows the fair completion rate band, not
	// FairOnTimeRate.
	assert.Equal(t, 21, b.OnTimePoints)
	assert.Equal(t, 10, b.LatePoints)
	assert.Equal(t, 0, b.VolumeBonus)
	assert.Equal(t, 0, b.ImprovementBonus)
	assert.Equal(t, 5, b.GraceBonus)

	assert.Equal(t, 67, score.Score)
	assert.Equal(t, "D", score.Grade)
}

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name      string
		current   domain.StatusPartition
		previous  *domain.StatusPartition
		wantScore int
		wantGrade string
	}{
		{
			name:      "empty window keeps only the grace bonus",
			current:   domain.StatusPartition{},
			wantScore: 5,
			wantGrade: "F",
		},
		{
			name: "perfect small team",
			current: domain.StatusPartition{
				Total: 10, Completed: 10, OnTime: 10,
			},
			// 35 + 25 + 15 + 0 volume + 5 grace
			wantScore: 80,
			wantGrade: "B",
		},
		{
			name: "perfect large team earns volume instead of grace",
			current: domain.StatusPartition{
				Total: 120, Completed: 120, OnTime: 120,
			},
			// 35 + 25 + 15 + 10 volume
			wantScore: 85,
			wantGrade: "B+",
		},
		{
			name: "all pending contributes nothing but grace",
			current: domain.StatusPartition{
				Total: 10, Pending: 10,
			},
			wantScore: 5,
			wantGrade: "F",
		},
		{
			name: "chronic lateness clamps at zero",
			current: domain.StatusPartition{
				Total: 20, Overdue: 20,
			},
			// 0 + 0 - 5 + 2 volume + 5 grace = 2
			wantScore: 2,
			wantGrade: "F",
		},
		{
			name: "improvement bonus for large gain",
			current: domain.StatusPartition{
				Total: 10, Completed: 8, OnTime: 8, Overdue: 2,
			},
			previous: &domain.StatusPartition{
				Total: 10, Completed: 5, OnTime: 5, Overdue: 5,
			},
			// completion 80% -> 28, on-time 19, late 20% -> 8,
			// improvement 80-50=30 -> 10, grace 5
			wantScore: 70,
			wantGrade: "C",
		},
		{
			name: "no improvement bonus on decline",
			current: domain.StatusPartition{
				Total: 10, Completed: 5, OnTime: 5, Overdue: 5,
			},
			previous: &domain.StatusPartition{
				Total: 10, Completed: 8, OnTime: 8, Overdue: 2,
			},
			// completion 50% -> 14, on-time 9, late 50% -> -5, grace 5
			wantScore: 23,
			wantGrade: "F",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := ComputeScore(tt.current, tt.previous)
			require.NoError(t, err)

			assert.Equal(t, tt.wantScore, score.Score)
			assert.Equal(t, tt.wantGrade, score.Grade)
			assert.GreaterOrEqual(t, score.Score, 0)
			assert.LessOrEqual(t, score.Score, 100)
		})
	}
}

func TestComputeScore_MonotonicInCompletionRate(t *testing.T) {
	// With total and pending fixed, a higher completed count (and thus a
	// higher fair completion rate) must never lower the score.
	prev := -1
	for completed := 0; completed <= 20; completed++ {
		current := domain.StatusPartition{
			Total:     20,
			Completed: completed,
			OnTime:    completed,
			Overdue:   20 - completed,
		}

		score, err := ComputeScore(current, nil)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, score.Score, prev,
			"score decreased at completed=%d", completed)
		assert.GreaterOrEqual(t, score.Score, 0)
		assert.LessOrEqual(t, score.Score, 100)
		prev = score.Score
	}
}

func TestComputeScore_Invariants(t *testing.T) {
	tests := []struct {
		name      string
		partition domain.StatusPartition
	}{
		{
			name:      "negative count",
			partition: domain.StatusPartition{Total: -1},
		},
		{
			name:      "completed exceeds total",
			partition: domain.StatusPartition{Total: 2, Completed: 3, OnTime: 3},
		},
		{
			name:      "on-time and late do not sum to completed",
			partition: domain.StatusPartition{Total: 4, Completed: 3, OnTime: 1, Late: 1, Pending: 1},
		},
		{
			name:      "statuses do not sum to total",
			partition: domain.StatusPartition{Total: 10, Completed: 3, OnTime: 3, Overdue: 2, Pending: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeScore(tt.partition, nil)
			require.Error(t, err)

			var ie *InvariantError
			assert.ErrorAs(t, err, &ie)
		})
	}
}

func TestComputeScore_InvalidPrevious(t *testing.T) {
	current := domain.StatusPartition{Total: 5, Completed: 5, OnTime: 5}
	previous := domain.StatusPartition{Total: 1, Completed: 2, OnTime: 2}

	_, err := ComputeScore(current, &previous)
	require.Error(t, err)

	var ie *InvariantError
	assert.ErrorAs(t, err, &ie)
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		grade string
	}{
		{100, "A+"},
		{95, "A+"},
		{94, "A"},
		{90, "A"},
		{89, "B+"},
		{85, "B+"},
		{84, "B"},
		{80, "B"},
		{79, "C+"},
		{75, "C+"},
		{74, "C"},
		{70, "C"},
		{69, "D"},
		{60, "D"},
		{59, "E"},
		{50, "E"},
		{49, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.grade, GradeFor(tt.score), "score %d", tt.score)
	}
}

func TestSteppedThresholds(t *testing.T) {
	// Each documented threshold maps to its fixed point value, and points
	// decrease monotonically with the rate.
	tests := []struct {
		rate       float64
		completion int
		onTime     int
	}{
		{100, 35, 25},
		{95, 35, 25},
		{94.9, 33, 23},
		{90, 33, 23},
		{85, 31, 21},
		{80, 28, 19},
		{75, 25, 17},
		{70, 22, 15},
		{60, 18, 12},
		{50, 14, 9},
		{40, 10, 6},
		{30, 7, 4},
		{20, 4, 2},
		{19.9, 0, 0},
		{0, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.completion, stepped(tt.rate, completionPoints), "completion at %.1f%%", tt.rate)
		assert.Equal(t, tt.onTime, stepped(tt.rate, onTimePoints), "on-time at %.1f%%", tt.rate)
	}
}

func TestLatePointsFor(t *testing.T) {
	tests := []struct {
		rate   float64
		points int
	}{
		{0, 15},
		{5, 15},
		{10, 12},
		{15, 10},
		{20, 8},
		{25, 6},
		{30, 4},
		{40, 2},
		{40.1, -5},
		{100, -5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.points, latePointsFor(tt.rate), "late rate %.1f%%", tt.rate)
	}
}
