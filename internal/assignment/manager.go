package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giodelapiedra/backend-sub011/internal/assignment/domain"
	"github.com/giodelapiedra/backend-sub011/internal/assignment/storage"
	"github.com/giodelapiedra/backend-sub011/internal/notification"
	"github.com/google/uuid"
)

// DefaultDueOffset is how long a worker has to complete an assignment after
// it is created
const DefaultDueOffset = 24 * time.Hour

// Store is the slice of the storage adapter the lifecycle manager needs
type Store interface {
	CreateAssignments(ctx context.Context, assignments []domain.Assignment) error
	GetAssignment(ctx context.Context, id string) (*domain.Assignment, error)
	GetWorkerAssignment(ctx context.Context, workerID string, date time.Time) (*domain.Assignment, error)
	Transition(ctx context.Context, id, from, to string, extra storage.TransitionExtra) (*domain.Assignment, error)
	CreateSubmission(ctx context.Context, sub *domain.Submission, submittedDate time.Time) error
}

// Dispatcher sends one notification payload to the messaging collaborator
type Dispatcher interface {
	Dispatch(ctx context.Context, n notification.Notification) error
}

// Config holds lifecycle manager configuration
type Config struct {
	Store      Store
	Dispatcher Dispatcher
	OrgTime    *domain.OrgTime
	DueOffset  time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

// Manager owns the assignment state machine: bulk creation with the
// duplicate guard, completion (on time or late), and administrative
// cancellation. The sweep owns the only other transition, pending to
// overdue.
type Manager struct {
	store      Store
	dispatcher Dispatcher
	orgTime    *domain.OrgTime
	dueOffset  time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewManager creates a new Manager instance
func NewManager(cfg *Config) *Manager {
	dueOffset := cfg.DueOffset
	if dueOffset <= 0 {
		dueOffset = DefaultDueOffset
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		orgTime:    cfg.OrgTime,
		dueOffset:  dueOffset,
		logger:     cfg.Logger,
		now:        now,
	}
}

// CreateRequest describes one bulk assignment creation for a worker cohort
type CreateRequest struct {
	WorkerIDs    []string
	TeamLeaderID string
	Team         string
	Date         time.Time
	Notes        string
}

// CreateAssignments creates one pending assignment per worker for the given
// calendar day. Due time is the creation instant plus the configured offset
// and never changes afterwards. Exactly one notification is sent per created
// assignment; none when the batch is rejected.
func (m *Manager) CreateAssignments(ctx context.Context, req CreateRequest) ([]domain.Assignment, error) {
	if len(req.WorkerIDs) == 0 {
		return nil, domain.NewValidationError("worker list is empty")
	}
	if req.TeamLeaderID == "" {
		return nil, domain.NewValidationError("team leader id is required")
	}
	if req.Date.IsZero() {
		return nil, domain.NewValidationError("assignment date is required")
	}

	seen := make(map[string]struct{}, len(req.WorkerIDs))
	for _, workerID := range req.WorkerIDs {
		if workerID == "" {
			return nil, domain.NewValidationError("worker id is empty")
		}
		if _, ok := seen[workerID]; ok {
			return nil, domain.NewValidationError(fmt.Sprintf("worker %s listed twice", workerID))
		}
		seen[workerID] = struct{}{}
	}

	now := m.now().UTC()
	assignedDate := m.orgTime.DayStart(req.Date)
	dueTime := now.Add(m.dueOffset)

	assignments := make([]domain.Assignment, len(req.WorkerIDs))
	for i, workerID := range req.WorkerIDs {
		assignments[i] = domain.Assignment{
			ID:           uuid.New().String(),
			WorkerID:     workerID,
			TeamLeaderID: req.TeamLeaderID,
			Team:         req.Team,
			AssignedDate: assignedDate,
			DueTime:      dueTime,
			Status:       domain.StatusPending,
			Notes:        req.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	if err := m.store.CreateAssignments(ctx, assignments); err != nil {
		if errors.Is(err, domain.ErrDuplicateAssignment) {
			return nil, domain.NewValidationError(err.Error())
		}
		return nil, err
	}

	dateLabel := m.orgTime.FormatDate(assignedDate)
	for i := range assignments {
		m.notify(ctx, notification.AssignmentAssigned(&assignments[i], dateLabel))
	}

	m.logger.Info("Daily assignments created",
		slog.String("team", req.Team),
		slog.String("date", dateLabel),
		slog.Int("count", len(assignments)),
	)

	return assignments, nil
}

// Complete records a worker's submission against an assignment. Accepted
// while the assignment is pending or overdue; late completions are kept and
// flagged through completed_at > due_time rather than rejected. Loses at
// most one race with the sweep before surfacing a conflict.
func (m *Manager) Complete(ctx context.Context, id, submissionID string) (*domain.Assignment, error) {
	a, err := m.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		switch a.Status {
		case domain.StatusPending, domain.StatusOverdue:
		case domain.StatusCompleted:
			return nil, domain.NewValidationError("assignment is already completed")
		default:
			return nil, domain.NewValidationError("assignment is cancelled")
		}

		completedAt := m.now().UTC()
		updated, err := m.store.Transition(ctx, id, a.Status, domain.StatusCompleted, storage.TransitionExtra{
			CompletedAt:        &completedAt,
			LinkedSubmissionID: &submissionID,
		})
		if err == nil {
			if updated.IsLate() {
				m.logger.Info("Assignment completed late",
					slog.String("assignment_id", id),
					slog.Duration("past_due", completedAt.Sub(updated.DueTime)),
				)
			}
			return updated, nil
		}

		if !errors.Is(err, domain.ErrTransitionConflict) {
			return nil, err
		}

		// The sweep may have flipped pending to overdue under us; re-read
		// and try once from the new status.
		a, err = m.store.GetAssignment(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: assignment %s", domain.ErrTransitionConflict, id)
}

// SubmissionInput is an inline readiness assessment submitted together with
// an assignment completion
type SubmissionInput struct {
	ReadinessLevel string
	FatigueLevel   int
	PainFlag       bool
	Mood           string
	Notes          string
}

// SubmitAndComplete creates the worker's readiness submission for the day
// and completes the assignment with it in one call
func (m *Manager) SubmitAndComplete(ctx context.Context, id string, input SubmissionInput) (*domain.Assignment, error) {
	switch input.ReadinessLevel {
	case domain.ReadinessNotFit, domain.ReadinessMinor, domain.ReadinessFit:
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unknown readiness level %q", input.ReadinessLevel))
	}

	a, err := m.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	sub := &domain.Submission{
		ID:             uuid.New().String(),
		WorkerID:       a.WorkerID,
		Team:           a.Team,
		ReadinessLevel: input.ReadinessLevel,
		FatigueLevel:   input.FatigueLevel,
		PainFlag:       input.PainFlag,
		Mood:           input.Mood,
		Notes:          input.Notes,
		SubmittedAt:    now,
	}

	if err := m.store.CreateSubmission(ctx, sub, m.orgTime.DayStart(now)); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			return nil, domain.NewValidationError(err.Error())
		}
		return nil, err
	}

	return m.Complete(ctx, id, sub.ID)
}

// Cancel administratively cancels an assignment. Allowed from pending or
// overdue only; cancelled rows are kept for audit, never deleted. A conflict
// here is surfaced to the caller since they explicitly requested the
// transition.
func (m *Manager) Cancel(ctx context.Context, id string) (*domain.Assignment, error) {
	a, err := m.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	switch a.Status {
	case domain.StatusPending, domain.StatusOverdue:
	case domain.StatusCompleted:
		return nil, domain.NewValidationError("cannot cancel a completed assignment")
	default:
		return nil, domain.NewValidationError("assignment is already cancelled")
	}

	return m.store.Transition(ctx, id, a.Status, domain.StatusCancelled, storage.TransitionExtra{})
}

// GetWorkerAssignment returns the worker's non-cancelled assignment for one
// calendar day
func (m *Manager) GetWorkerAssignment(ctx context.Context, workerID string, date time.Time) (*domain.Assignment, error) {
	if workerID == "" {
		return nil, domain.NewValidationError("worker id is required")
	}
	return m.store.GetWorkerAssignment(ctx, workerID, m.orgTime.DayStart(date))
}

// notify sends one notification, logging and continuing on failure.
// Assignment state never depends on delivery.
func (m *Manager) notify(ctx context.Context, n notification.Notification) {
	if err := m.dispatcher.Dispatch(ctx, n); err != nil {
		m.logger.Warn("Failed to dispatch notification",
			slog.String("type", n.Type),
			slog.String("recipient_id", n.RecipientID),
			slog.String("error", err.Error()),
		)
	}
}
