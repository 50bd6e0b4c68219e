package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/giodelapiedra/backend-sub011/internal/assignment/domain"
)

// InvariantError marks an internally inconsistent trend report, a
// programming error rather than bad caller input.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "trend invariant violated: " + e.Reason
}

// Bucket is one day's readiness-level counts. Days without submissions get
// no bucket at all; zero-filling would flatten charts misleadingly.
type Bucket struct {
	Date   string `json:"date"`
	NotFit int    `json:"not_fit"`
	Minor  int    `json:"minor"`
	Fit    int    `json:"fit"`
	Total  int    `json:"total"`
}

// Trend is the per-day readiness history for one team over one window
type Trend struct {
	Team    string   `json:"team"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Buckets []Bucket `json:"buckets"`
}

// Aggregator buckets submissions by org-timezone calendar day
type Aggregator struct {
	orgTime *domain.OrgTime
}

// NewAggregator creates a new Aggregator instance
func NewAggregator(orgTime *domain.OrgTime) *Aggregator {
	return &Aggregator{orgTime: orgTime}
}

// ComputeTrend builds the per-day trend from a window's submissions. The
// result is self-validated before being returned: every bucket date must
// fall inside the window and every bucket's level counts must sum to its
// total.
func (g *Aggregator) ComputeTrend(team string, window domain.Window, submissions []domain.Submission) (*Trend, error) {
	byDay := make(map[string]*Bucket)

	for i := range submissions {
		sub := &submissions[i]
		day := g.orgTime.FormatDate(sub.SubmittedAt)

		bucket, ok := byDay[day]
		if !ok {
			bucket = &Bucket{Date: day}
			byDay[day] = bucket
		}

		switch sub.ReadinessLevel {
		case domain.ReadinessNotFit:
			bucket.NotFit++
		case domain.ReadinessMinor:
			bucket.Minor++
		case domain.ReadinessFit:
			bucket.Fit++
		default:
			return nil, &InvariantError{Reason: fmt.Sprintf("unknown readiness level %q in submission %s", sub.ReadinessLevel, sub.ID)}
		}
		bucket.Total++
	}

	buckets := make([]Bucket, 0, len(byDay))
	for _, bucket := range byDay {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})

	trend := &Trend{
		Team:    team,
		Start:   g.orgTime.FormatDate(window.Start),
		End:     g.orgTime.FormatDate(window.End.Add(-time.Nanosecond)),
		Buckets: buckets,
	}

	if err := g.validate(trend, window); err != nil {
		return nil, err
	}

	return trend, nil
}

func (g *Aggregator) validate(trend *Trend, window domain.Window) error {
	for _, bucket := range trend.Buckets {
		if bucket.NotFit+bucket.Minor+bucket.Fit != bucket.Total {
			return &InvariantError{Reason: fmt.Sprintf("bucket %s level counts do not sum to total %d", bucket.Date, bucket.Total)}
		}
		if bucket.Total == 0 {
			return &InvariantError{Reason: fmt.Sprintf("empty bucket emitted for %s", bucket.Date)}
		}

		day, err := g.orgTime.ParseDate(bucket.Date)
		if err != nil {
			return &InvariantError{Reason: fmt.Sprintf("unparseable bucket date %q", bucket.Date)}
		}
		if !window.Contains(g.orgTime.DayStart(day)) {
			return &InvariantError{Reason: fmt.Sprintf("bucket date %s outside window", bucket.Date)}
		}
	}
	return nil
}
