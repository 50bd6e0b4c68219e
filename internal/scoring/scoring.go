package scoring

import (
	"fmt"

	"github.com/giodelapiedra/backend-sub011/internal/assignment/domain"
)

// Component budgets
const (
	MaxCompletionPoints = 35
	MaxOnTimePoints     = 25
	MaxLatePoints       = 15
	MaxVolumeBonus      = 10
	MaxImprovementBonus = 10
	GraceBonus          = 5

	// ChronicLatePenalty is applied instead of 0 beyond a 40% late rate
	ChronicLatePenalty = -5

	// GraceTeamSize is the total below which a team gets the small-team bonus
	GraceTeamSize = 50
)

// rateThresholds are the stepped percentage bands shared by the completion
// and on-time components, highest first
var rateThresholds = []float64{95, 90, 85, 80, 75, 70, 60, 50, 40, 30, 20}

var completionPoints = []int{35, 33, 31, 28, 25, 22, 18, 14, 10, 7, 4}
var onTimePoints = []int{25, 23, 21, 19, 17, 15, 12, 9, 6, 4, 2}

// lateBands map late rate (overdue over decided) to the late component,
// lowest rate first. Anything beyond the last band costs ChronicLatePenalty.
var lateBands = []struct {
	maxRate float64
	points  int
}{
	{5, 15},
	{10, 12},
	{15, 10},
	{20, 8},
	{25, 6},
	{30, 4},
	{40, 2},
}

// volumeBands map decided sample size to the volume bonus, largest first
var volumeBands = []struct {
	minDecided int
	bonus      int
}{
	{100, 10},
	{75, 8},
	{50, 6},
	{30, 4},
	{15, 2},
}

// improvementBands map the gain in fair completion rate over the previous
// window (percentage points) to the improvement bonus, largest first
var improvementBands = []struct {
	minDelta float64
	bonus    int
}{
	{20, 10},
	{15, 8},
	{10, 6},
	{5, 4},
}

// InvariantError marks malformed score input: upstream data corruption is
// surfaced at this boundary instead of being clamped into a plausible grade.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "score invariant violated: " + e.Reason
}

// Breakdown exposes every component's contribution and the fair-rate inputs
// so the arithmetic can be verified independently of the final letter.
type Breakdown struct {
	Total   int `json:"total"`
	Decided int `json:"decided"`
	Pending int `json:"pending"`
	OnTime  int `json:"on_time"`
	Late    int `json:"late"`

	FairCompletionRate float64 `json:"fair_completion_rate"`
	FairOnTimeRate     float64 `json:"fair_on_time_rate"`
	LateRate           float64 `json:"late_rate"`

	CompletionPoints int `json:"completion_points"`
	OnTimePoints     int `json:"on_time_points"`
	LatePoints       int `json:"late_points"`
	VolumeBonus      int `json:"volume_bonus"`
	ImprovementBonus int `json:"improvement_bonus"`
	GraceBonus       int `json:"grace_bonus"`
}

// Score is the derived compliance result for one team over one window
type Score struct {
	Score     int       `json:"score"`
	Grade     string    `json:"grade"`
	Breakdown Breakdown `json:"breakdown"`
}

// ComputeScore converts a window's status partition into the weighted
// compliance score. Rates use the fair denominator decided = total - pending
// so still-undecided assignments neither help nor hurt. previous, when
// non-nil, is the immediately preceding window of equal length and feeds the
// improvement bonus.
func ComputeScore(current domain.StatusPartition, previous *domain.StatusPartition) (*Score, error) {
	if err := validate(current); err != nil {
		return nil, err
	}
	if previous != nil {
		if err := validate(*previous); err != nil {
			return nil, err
		}
	}

	decided := current.Total - current.Pending

	b := Breakdown{
		Total:   current.Total,
		Decided: decided,
		Pending: current.Pending,
		OnTime:  current.OnTime,
		Late:    current.Late,
	}

	if decided > 0 {
		b.FairCompletionRate = percent(current.Completed, decided)
		b.FairOnTimeRate = percent(current.OnTime, decided)
		b.LateRate = percent(current.Overdue, decided)

		b.CompletionPoints = stepped(b.FairCompletionRate, completionPoints)
		// The on-time component is derived from the fair completion rate,
		// not FairOnTimeRate; the latter is reported for visibility only.
		b.OnTimePoints = stepped(b.FairCompletionRate, onTimePoints)
		b.LatePoints = latePointsFor(b.LateRate)
		b.VolumeBonus = volumeBonusFor(decided)
	}

	if previous != nil {
		prevDecided := previous.Total - previous.Pending
		if decided > 0 && prevDecided > 0 {
			delta := b.FairCompletionRate - percent(previous.Completed, prevDecided)
			b.ImprovementBonus = improvementBonusFor(delta)
		}
	}

	if current.Total < GraceTeamSize {
		b.GraceBonus = GraceBonus
	}

	total := b.CompletionPoints + b.OnTimePoints + b.LatePoints +
		b.VolumeBonus + b.ImprovementBonus + b.GraceBonus

	score := clamp(total, 0, 100)

	return &Score{
		Score:     score,
		Grade:     GradeFor(score),
		Breakdown: b,
	}, nil
}

// GradeFor maps a clamped score to its letter band
func GradeFor(score int) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 85:
		return "B+"
	case score >= 80:
		return "B"
	case score >= 75:
		return "C+"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	case score >= 50:
		return "E"
	default:
		return "F"
	}
}

func validate(p domain.StatusPartition) error {
	if p.Total < 0 || p.Completed < 0 || p.OnTime < 0 || p.Late < 0 || p.Overdue < 0 || p.Pending < 0 {
		return &InvariantError{Reason: "negative count"}
	}
	if p.Completed > p.Total {
		return &InvariantError{Reason: fmt.Sprintf("completed %d exceeds total %d", p.Completed, p.Total)}
	}
	if p.OnTime+p.Late != p.Completed {
		return &InvariantError{Reason: fmt.Sprintf("on-time %d + late %d != completed %d", p.OnTime, p.Late, p.Completed)}
	}
	if p.Completed+p.Overdue+p.Pending != p.Total {
		return &InvariantError{Reason: fmt.Sprintf("completed %d + overdue %d + pending %d != total %d", p.Completed, p.Overdue, p.Pending, p.Total)}
	}
	return nil
}

func percent(n, d int) float64 {
	return float64(n) / float64(d) * 100
}

func stepped(rate float64, points []int) int {
	for i, threshold := range rateThresholds {
		if rate >= threshold {
			return points[i]
		}
	}
	return 0
}

func latePointsFor(rate float64) int {
	for _, band := range lateBands {
		if rate <= band.maxRate {
			return band.points
		}
	}
	return ChronicLatePenalty
}

func volumeBonusFor(decided int) int {
	for _, band := range volumeBands {
		if decided >= band.minDecided {
			return band.bonus
		}
	}
	return 0
}

func improvementBonusFor(delta float64) int {
	for _, band := range improvementBands {
		if delta >= band.minDelta {
			return band.bonus
		}
	}
	if delta > 0 {
		return 2
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
