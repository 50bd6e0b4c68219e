package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/giodelapiedra/backend-sub011/internal/assignment/domain"
)

// Notification types published to the messaging collaborator
const (
	TypeAssignmentAssigned = "work_readiness_assignment"
	TypeAssignmentOverdue  = "work_readiness_overdue"
)

// Priorities
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Notification is the payload shape the notification collaborator accepts
type Notification struct {
	RecipientID string            `json:"recipient_id"`
	SenderID    string            `json:"sender_id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Priority    string            `json:"priority"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Publisher is the outbound messaging client the dispatcher writes to
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// Dispatcher constructs notification payloads and publishes them. Delivery
// is fire-and-forget from the core's perspective: callers log and continue
// on NotificationDeliveryError, never roll back state.
type Dispatcher struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewDispatcher creates a new Dispatcher instance
func NewDispatcher(publisher Publisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		logger:    logger,
	}
}

// Dispatch publishes one notification as a JSON message
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return domain.NewNotificationDeliveryError(fmt.Errorf("failed to marshal notification: %w", err))
	}

	if err := d.publisher.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return domain.NewNotificationDeliveryError(err)
	}

	d.logger.Debug("Notification dispatched",
		slog.String("type", n.Type),
		slog.String("recipient_id", n.RecipientID),
	)

	return nil
}

// AssignmentAssigned builds the payload for a newly created assignment
func AssignmentAssigned(a *domain.Assignment, dateLabel string) Notification {
	return Notification{
		RecipientID: a.WorkerID,
		SenderID:    a.TeamLeaderID,
		Type:        TypeAssignmentAssigned,
		Title:       "Work Readiness Assessment Assigned",
		Message:     fmt.Sprintf("Please complete your work readiness assessment for %s before %s.", dateLabel, a.DueTime.Format("15:04 MST")),
		Priority:    PriorityNormal,
		Metadata: map[string]string{
			"assignment_id": a.ID,
			"team":          a.Team,
			"due_time":      a.DueTime.Format("2006-01-02T15:04:05Z07:00"),
		},
	}
}

// AssignmentOverdue builds the payload for an assignment the sweep just
// flipped to overdue
func AssignmentOverdue(a *domain.Assignment) Notification {
	return Notification{
		RecipientID: a.WorkerID,
		SenderID:    a.TeamLeaderID,
		Type:        TypeAssignmentOverdue,
		Title:       "Work Readiness Assessment Overdue",
		Message:     "Your work readiness assessment is overdue. Please complete it as soon as possible.",
		Priority:    PriorityHigh,
		Metadata: map[string]string{
			"assignment_id": a.ID,
			"team":          a.Team,
		},
	}
}
