package domain

import "errors"

var (
	// ErrAssignmentNotFound is returned when an assignment id does not exist
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrDuplicateAssignment is returned when a worker already has a
	// non-cancelled assignment for the requested day
	ErrDuplicateAssignment = errors.New("worker already has an assignment for this date")

	// ErrDuplicateSubmission is returned when a worker already submitted a
	// readiness assessment for the requested day
	ErrDuplicateSubmission = errors.New("worker already has a submission for this date")

	// ErrTransitionConflict is returned when a compare-and-swap status update
	// finds the stored status no longer matches the expected one
	ErrTransitionConflict = errors.New("assignment status changed concurrently")

	// ErrDuplicateJobRun is returned when a job run with the same id was
	// already recorded
	ErrDuplicateJobRun = errors.New("job run already recorded for this id")
)

// ValidationError marks caller mistakes (bad window, empty worker list,
// disallowed transition). Never retried, surfaced directly.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError creates a ValidationError with the given reason
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreUnavailableError wraps transient storage failures. Retried with
// bounded backoff inside the sweep's per-item loop only; surfaced immediately
// everywhere else.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return "store unavailable: " + e.Err.Error()
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// NewStoreUnavailableError wraps err as a StoreUnavailableError
func NewStoreUnavailableError(err error) error {
	return &StoreUnavailableError{Err: err}
}

// IsStoreUnavailable reports whether err is (or wraps) a StoreUnavailableError
func IsStoreUnavailable(err error) bool {
	var se *StoreUnavailableError
	return errors.As(err, &se)
}

// NotificationDeliveryError wraps a failed publish to the notification
// collaborator. Always swallowed and logged; assignment state never depends
// on delivery.
type NotificationDeliveryError struct {
	Err error
}

func (e *NotificationDeliveryError) Error() string {
	return "notification delivery failed: " + e.Err.Error()
}

func (e *NotificationDeliveryError) Unwrap() error {
	return e.Err
}

// NewNotificationDeliveryError wraps err as a NotificationDeliveryError
func NewNotificationDeliveryError(err error) error {
	return &NotificationDeliveryError{Err: err}
}
