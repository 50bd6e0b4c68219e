package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giodelapiedra/backend-sub011/internal/assignment/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Storage is the typed adapter over the assignment, submission and job_runs
// tables. It is the single source of truth for assignment state; every
// transition goes through the conditional update in Transition.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

const assignmentColumns = `
	id, worker_id, team_leader_id, team, assigned_date, due_time,
	status, notes, completed_at, linked_submission_id, created_at, updated_at
`

// CreateAssignments inserts all rows in one transaction. A unique partial
// index on (worker_id, assigned_date) over non-cancelled rows enforces the
// one-assignment-per-worker-per-day rule; hitting it rolls the whole batch
// back and returns ErrDuplicateAssignment.
func (s *Storage) CreateAssignments(ctx context.Context, assignments []domain.Assignment) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewStoreUnavailableError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	query := `
		INSERT INTO work_readiness_assignments (
			id, worker_id, team_leader_id, team, assigned_date, due_time,
			status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, a := range assignments {
		_, err := tx.ExecContext(ctx, query,
			a.ID,
			a.WorkerID,
			a.TeamLeaderID,
			a.Team,
			a.AssignedDate,
			a.DueTime,
			a.Status,
			a.Notes,
			a.CreatedAt,
			a.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				s.logger.Warn("Duplicate assignment rejected",
					slog.String("worker_id", a.WorkerID),
					slog.Time("assigned_date", a.AssignedDate),
				)
				return fmt.Errorf("%w: worker %s", domain.ErrDuplicateAssignment, a.WorkerID)
			}
			return domain.NewStoreUnavailableError(fmt.Errorf("failed to insert assignment: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreUnavailableError(fmt.Errorf("failed to commit assignments: %w", err))
	}

	s.logger.Info("Assignments created",
		slog.Int("count", len(assignments)),
	)

	return nil
}

// GetAssignment retrieves one assignment by id
func (s *Storage) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM work_readiness_assignments WHERE id = $1`

	var a domain.Assignment
	err := s.db.GetContext(ctx, &a, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, domain.NewStoreUnavailableError(fmt.Errorf("failed to get assignment: %w", err))
	}

	return &a, nil
}

// GetWorkerAssignment retrieves the worker's non-cancelled assignment for one
// calendar day, if any
func (s *Storage) GetWorkerAssignment(ctx context.Context, workerID string, date time.Time) (*domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM work_readiness_assignments
		WHERE worker_id = $1 AND assigned_date = $2 AND status != $3
	`

	var a domain.Assignment
	err := s.db.GetContext(ctx, &a, query, workerID, date, domain.StatusCancelled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, domain.NewStoreUnavailableError(fmt.Errorf("failed to get worker assignment: %w", err))
	}

	return &a, nil
}

// ListByWorker lists a worker's assignments with assigned_date inside the window
func (s *Storage) ListByWorker(ctx context.Context, workerID string, window domain.Window) ([]domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM work_readiness_assignments
		WHERE worker_id = $1 AND assigned_date >= $2 AND assigned_date < $3
		ORDER BY assigned_date DESC
	`

	var assignments []domain.Assignment
	err := s.db.SelectContext(ctx, &assignments, query, workerID, window.Start, window.End)
	if err != nil {
		return nil, domain.NewStoreUnavailableError(fmt.Errorf("failed to list worker assignments: %w", err))
	}

	return assignments, nil
}

// Filter narrows a team leader's assignment listing
type Filter struct {
	TeamLeaderID string
	WorkerID     string
	Status       string
	PageSize     int
	Cursor       *Cursor
}

// Cursor is a keyset pagination position over (created_at, id)
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// ListByTeamLeader lists assignments for a team leader's dashboard with
// optional filters and keyset pagination. One extra row is fetched so the
// caller can tell whether more pages exist.
func (s *Storage) ListByTeamLeader(ctx context.Context, filter Filter) ([]domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM work_readiness_assignments
		WHERE team_leader_id = $1
	`
	args := []interface{}{filter.TeamLeaderID}
	argIdx := 2

	if filter.WorkerID != "" {
		query += fmt.Sprintf(" AND worker_id = $%d", argIdx)
		args = append(args, filter.WorkerID)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.ID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var assignments []domain.Assignment
	err := s.db.SelectContext(ctx, &assignments, query, args...)
	if err != nil {
		return nil, domain.NewStoreUnavailableError(fmt.Errorf("failed to list assignments: %w", err))
	}

	return assignments, nil
}

// ListPendingPastDue returns every pending assignment whose due time has
// already passed, the sweep's work list
func (s *Storage) ListPendingPastDue(ctx context.Context, now time.Time) ([]domain.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM work_readiness_assignments
		WHERE status = $1 AND due_time < $2
		ORDER BY due_time ASC
	`

	var assignments []domain.Assignment
	err := s.db.SelectContext(ctx, &assignments, query, domain.StatusPending, now)
	if err != nil {
		return nil, domain.NewStoreUnavailableError(fmt.Errorf("failed to list past-due assignments: %w", err))
	}

	return assignments, nil
}

// TransitionExtra carries the columns set alongside a status change
type TransitionExtra struct {
	CompletedAt        *time.Time
	LinkedSubmissionID *string
}

// Transition performs the compare-and-swap status update. The WHERE clause
// matches the expected current status; zero rows means either the row is
// gone or someone else transitioned it first, distinguished by a follow-up
// read so losers of a race get ErrTransitionConflict and bad ids get
// ErrAssignmentNotFound.
func (s *Storage) Transition(ctx context.Context, id, from, to string, extra TransitionExtra) (*domain.Assignment, error) {
	query := `
		UPDATE work_readiness_assignments
		SET status = $1,
		    completed_at = $2,
		    linked_submission_id = COALESCE($3, linked_submission_id),
		    updated_at = NOW()
		WHERE id = $4
		  AND status = $5
		RETURNING ` + assignmentColumns

	var a domain.Assignment
	err := s.db.QueryRowxContext(ctx, query, to, extra.CompletedAt, extra.LinkedSubmissionID, id, from).StructScan(&a)
	if err == nil {
		s.logger.Info("Assignment transitioned",
			slog.String("assignment_id", id),
			slog.String("from", from),
			slog.String("to", to),
		)
		return &a, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewStoreUnavailableError(fmt.Errorf("failed to transition assignment: %w", err))
	}

	if _, getErr := s.GetAssignment(ctx, id); getErr != nil {
		return nil, getErr
	}

	s.logger.Warn("Assignment transition lost compare-and-swap race",
		slog.String("assignment_id", id),
		slog.String("expected_status", from),
	)
	return nil, fmt.Errorf("%w: expected %s", domain.ErrTransitionConflict, from)
}

// CountPartition aggregates one team's assignments over a window into the
// per-status counts scoring consumes
func (s *Storage) CountPartition(ctx context.Context, team string, window domain.Window) (*domain.StatusPartition, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = $1) AS completed,
			COUNT(*) FILTER (WHERE status = $1 AND completed_at <= due_time) AS on_time,
			COUNT(*) FILTER (WHERE status = $1 AND completed_at > due_time) AS late,
			COUNT(*) FILTER (WHERE status = $2) AS overdue,
			COUNT(*) FILTER (WHERE status = $3) AS pending
		FROM work_readiness_assignments
		WHERE team = $4
		  AND status != $5
		  AND assigned_date >= $6 AND assigned_date < $7
	`

	var p struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
		OnTime    int `db:"on_time"`
		Late      int `db:"late"`
		Overdue   int `db:"overdue"`
		Pending   int `db:"pending"`
	}

	err := s.db.GetContext(ctx, &p, query,
		domain.StatusCompleted,
		domain.StatusOverdue,
		domain.StatusPending,
		team,
		domain.StatusCancelled,
		window.Start,
		window.End,
	)
	if err != nil {
		return nil, domain.NewStoreUnavailableError(fmt.Errorf("failed to count assignments: %w", err))
	}

	return &domain.StatusPartition{
		Total:     p.Total,
		Completed: p.Completed,
		OnTime:    p.OnTime,
		Late:      p.Late,
		Overdue:   p.Overdue,
		Pending:   p.Pending,
	}, nil
}

// CreateSubmission inserts one readiness submission. A unique index on
// (worker_id, submitted_date) enforces one submission per worker per day.
func (s *Storage) CreateSubmission(ctx context.Context, sub *domain.Submission, submittedDate time.Time) error {
	query := `
		INSERT INTO work_readiness_submissions (
			id, worker_id, team, readiness_level, fatigue_level,
			pain_flag, mood, notes, submitted_at, submitted_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		sub.ID,
		sub.WorkerID,
		sub.Team,
		sub.ReadinessLevel,
		sub.FatigueLevel,
		sub.PainFlag,
		sub.Mood,
		sub.Notes,
		sub.SubmittedAt,
		submittedDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: worker %s", domain.ErrDuplicateSubmission, sub.WorkerID)
		}
		return domain.NewStoreUnavailableError(fmt.Errorf("failed to insert submission: %w", err))
	}

	return nil
}

// ListSubmissionsByTeam lists a team's submissions inside the window,
// oldest first, for trend aggregation
func (s *Storage) ListSubmissionsByTeam(ctx context.Context, team string, window domain.Window) ([]domain.Submission, error) {
	query := `
		SELECT id, worker_id, team, readiness_level, fatigue_level,
		       pain_flag, mood, notes, submitted_at
		FROM work_readiness_submissions
		WHERE team = $1 AND submitted_at >= $2 AND submitted_at < $3
		ORDER BY submitted_at ASC
	`

	var subs []domain.Submission
	err := s.db.SelectContext(ctx, &subs, query, team, window.Start, window.End)
	if err != nil {
		return nil, domain.NewStoreUnavailableError(fmt.Errorf("failed to list submissions: %w", err))
	}

	return subs, nil
}

// ClaimJobRun inserts the idempotency row for a sweep run. The insert is
// conditional on the job_id uniqueness constraint rather than a
// check-then-insert, so two concurrent runs cannot both claim it. Returns
// false when the id was already taken.
func (s *Storage) ClaimJobRun(ctx context.Context, jobID string, startedAt time.Time) (bool, error) {
	query := `
		INSERT INTO sweep_job_runs (job_id, processed_count, status, started_at)
		VALUES ($1, 0, $2, $3)
		ON CONFLICT (job_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query, jobID, domain.JobRunRunning, startedAt)
	if err != nil {
		return false, domain.NewStoreUnavailableError(fmt.Errorf("failed to claim job run: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, domain.NewStoreUnavailableError(fmt.Errorf("failed to get rows affected: %w", err))
	}

	return rows == 1, nil
}

// FinishJobRun records the outcome of a claimed sweep run
func (s *Storage) FinishJobRun(ctx context.Context, jobID string, processed int, status string) error {
	query := `
		UPDATE sweep_job_runs
		SET processed_count = $1, status = $2, finished_at = NOW()
		WHERE job_id = $3
	`

	_, err := s.db.ExecContext(ctx, query, processed, status, jobID)
	if err != nil {
		return domain.NewStoreUnavailableError(fmt.Errorf("failed to finish job run: %w", err))
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
