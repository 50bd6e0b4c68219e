package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giodelapiedra/backend-sub011/internal/assignment/domain"
	"github.com/giodelapiedra/backend-sub011/internal/assignment/storage"
	"github.com/giodelapiedra/backend-sub011/internal/notification"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 200 * time.Millisecond
)

// Store is the slice of the storage adapter the sweep needs
type Store interface {
	ClaimJobRun(ctx context.Context, jobID string, startedAt time.Time) (bool, error)
	ListPendingPastDue(ctx context.Context, now time.Time) ([]domain.Assignment, error)
	Transition(ctx context.Context, id, from, to string, extra storage.TransitionExtra) (*domain.Assignment, error)
	FinishJobRun(ctx context.Context, jobID string, processed int, status string) error
}

// Dispatcher sends one notification payload to the messaging collaborator
type Dispatcher interface {
	Dispatch(ctx context.Context, n notification.Notification) error
}

// Config holds sweeper configuration
type Config struct {
	Store         Store
	Dispatcher    Dispatcher
	OrgTime       *domain.OrgTime
	Logger        *slog.Logger
	JobSalt       string
	RetryAttempts int
	RetryBackoff  time.Duration
	Now           func() time.Time
}

// Result summarizes one sweep execution
type Result struct {
	JobID     string `json:"job_id"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Skipped   bool   `json:"skipped"`
}

// Sweeper finds pending assignments past their due time and flips them to
// overdue. Each run claims a deterministic job-run row first, so a
// duplicate trigger for the same hour is a detectable no-op.
type Sweeper struct {
	store         Store
	dispatcher    Dispatcher
	orgTime       *domain.OrgTime
	logger        *slog.Logger
	jobSalt       string
	retryAttempts int
	retryBackoff  time.Duration
	now           func() time.Time
}

// NewSweeper creates a new Sweeper instance
func NewSweeper(cfg *Config) *Sweeper {
	retryAttempts := cfg.RetryAttempts
	if retryAttempts <= 0 {
		retryAttempts = defaultRetryAttempts
	}

	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Sweeper{
		store:         cfg.Store,
		dispatcher:    cfg.Dispatcher,
		orgTime:       cfg.OrgTime,
		logger:        cfg.Logger,
		jobSalt:       cfg.JobSalt,
		retryAttempts: retryAttempts,
		retryBackoff:  retryBackoff,
		now:           now,
	}
}

// jobID derives the idempotency key for the run covering this instant.
// Two triggers inside the same org-timezone hour share an id and only the
// first does any work.
func (s *Sweeper) jobID(now time.Time) string {
	return fmt.Sprintf("overdue-sweep-%s-%02d-%s", s.orgTime.FormatDate(now), now.In(s.orgTime.Location()).Hour(), s.jobSalt)
}

// RunOnce executes one sweep. Steps: claim the job-run row (abort as a
// no-op if already claimed), list pending assignments past due, flip each
// one pending to overdue with bounded retries, record the outcome. One bad
// row never blocks the rest of the cohort.
func (s *Sweeper) RunOnce(ctx context.Context) (*Result, error) {
	now := s.now().UTC()
	jobID := s.jobID(now)

	claimed, err := s.store.ClaimJobRun(ctx, jobID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to claim sweep run: %w", err)
	}
	if !claimed {
		s.logger.Info("Sweep run already recorded, skipping",
			slog.String("job_id", jobID),
		)
		return &Result{JobID: jobID, Skipped: true}, nil
	}

	assignments, err := s.store.ListPendingPastDue(ctx, now)
	if err != nil {
		if finishErr := s.store.FinishJobRun(ctx, jobID, 0, domain.JobRunFailed); finishErr != nil {
			s.logger.Error("Failed to record failed sweep run",
				slog.String("job_id", jobID),
				slog.String("error", finishErr.Error()),
			)
		}
		return nil, fmt.Errorf("failed to list past-due assignments: %w", err)
	}

	result := &Result{JobID: jobID}
	for i := range assignments {
		a := &assignments[i]

		switch err := s.markOverdue(ctx, a); {
		case err == nil:
			result.Processed++
			s.notifyOverdue(ctx, a)
		case errors.Is(err, domain.ErrTransitionConflict):
			// Someone completed or cancelled it while we were sweeping.
			// Their transition wins; no notification, no failure.
			s.logger.Debug("Assignment transitioned concurrently, skipping",
				slog.String("assignment_id", a.ID),
			)
		default:
			result.Failed++
			s.logger.Error("Failed to mark assignment overdue",
				slog.String("assignment_id", a.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	status := domain.JobRunCompleted
	if result.Failed > 0 {
		status = domain.JobRunFailed
	}
	if err := s.store.FinishJobRun(ctx, jobID, result.Processed, status); err != nil {
		s.logger.Error("Failed to record sweep run outcome",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("Sweep run finished",
		slog.String("job_id", jobID),
		slog.Int("processed", result.Processed),
		slog.Int("failed", result.Failed),
		slog.Int("candidates", len(assignments)),
	)

	return result, nil
}

// markOverdue flips one assignment pending to overdue, retrying transient
// store failures with exponential backoff. Conflicts are returned as-is and
// never retried.
func (s *Sweeper) markOverdue(ctx context.Context, a *domain.Assignment) error {
	var lastErr error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(float64(s.retryBackoff) * float64(uint(1)<<uint(attempt-1)))
			s.logger.Warn("Retrying overdue transition",
				slog.String("assignment_id", a.ID),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			time.Sleep(backoff)
		}

		_, err := s.store.Transition(ctx, a.ID, domain.StatusPending, domain.StatusOverdue, storage.TransitionExtra{})
		if err == nil {
			return nil
		}
		if !domain.IsStoreUnavailable(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("overdue transition failed after %d attempts: %w", s.retryAttempts, lastErr)
}

func (s *Sweeper) notifyOverdue(ctx context.Context, a *domain.Assignment) {
	if err := s.dispatcher.Dispatch(ctx, notification.AssignmentOverdue(a)); err != nil {
		s.logger.Warn("Failed to dispatch overdue notification",
			slog.String("assignment_id", a.ID),
			slog.String("error", err.Error()),
		)
	}
}
