package domain

import "time"

// Assignment status constants
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

// Readiness levels reported in a Submission
const (
	ReadinessNotFit = "not_fit"
	ReadinessMinor  = "minor"
	ReadinessFit    = "fit"
)

// Assignment is one unit of required work for one worker on one calendar day.
// DueTime is fixed at creation and never changes; CompletedAt is set if and
// only if Status is completed.
type Assignment struct {
	ID                 string     `db:"id"`
	WorkerID           string     `db:"worker_id"`
	TeamLeaderID       string     `db:"team_leader_id"`
	Team               string     `db:"team"`
	AssignedDate       time.Time  `db:"assigned_date"` // calendar day, midnight org time
	DueTime            time.Time  `db:"due_time"`      // absolute UTC instant
	Status             string     `db:"status"`
	Notes              string     `db:"notes"`
	CompletedAt        *time.Time `db:"completed_at"`
	LinkedSubmissionID *string    `db:"linked_submission_id"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// IsLate reports whether a completed assignment was completed after its due
// time. False for anything not yet completed.
func (a *Assignment) IsLate() bool {
	return a.CompletedAt != nil && a.CompletedAt.After(a.DueTime)
}

// Submission is a worker's readiness self-assessment for one day. Immutable
// after creation.
type Submission struct {
	ID             string    `db:"id"`
	WorkerID       string    `db:"worker_id"`
	Team           string    `db:"team"`
	ReadinessLevel string    `db:"readiness_level"`
	FatigueLevel   int       `db:"fatigue_level"`
	PainFlag       bool      `db:"pain_flag"`
	Mood           string    `db:"mood"`
	Notes          string    `db:"notes"`
	SubmittedAt    time.Time `db:"submitted_at"`
}

// JobRun statuses
const (
	JobRunRunning   = "running"
	JobRunCompleted = "completed"
	JobRunFailed    = "failed"
)

// JobRun is the idempotency and audit record for one sweep execution. The
// job_id carries a uniqueness constraint; a second insert with the same id is
// how a duplicate run detects itself.
type JobRun struct {
	JobID          string     `db:"job_id"`
	ProcessedCount int        `db:"processed_count"`
	Status         string     `db:"status"`
	StartedAt      time.Time  `db:"started_at"`
	FinishedAt     *time.Time `db:"finished_at"`
}

// StatusPartition are the per-status counts for one team over one window,
// the raw input to compliance scoring.
type StatusPartition struct {
	Total     int
	Completed int
	OnTime    int
	Late      int
	Overdue   int
	Pending   int
}
