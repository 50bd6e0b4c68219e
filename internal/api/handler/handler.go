package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/giodelapiedra/backend-sub011/internal/analytics"
	"github.com/giodelapiedra/backend-sub011/internal/assignment"
	"github.com/giodelapiedra/backend-sub011/internal/assignment/domain"
	"github.com/giodelapiedra/backend-sub011/internal/assignment/storage"
	"github.com/giodelapiedra/backend-sub011/internal/api/dto"
	"github.com/giodelapiedra/backend-sub011/internal/scoring"
	"github.com/giodelapiedra/backend-sub011/internal/sweep"
	"github.com/giodelapiedra/backend-sub011/shared/postgresql"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger     *slog.Logger
	DBClient   *postgresql.Client
	Manager    *assignment.Manager
	Storage    *storage.Storage
	Sweeper    *sweep.Sweeper
	Aggregator *analytics.Aggregator
	OrgTime    *domain.OrgTime
}

// AssignmentHandler handles assignment, compliance and trend HTTP requests
type AssignmentHandler struct {
	logger     *slog.Logger
	manager    *assignment.Manager
	storage    *storage.Storage
	sweeper    *sweep.Sweeper
	aggregator *analytics.Aggregator
	orgTime    *domain.OrgTime
}

// NewAssignmentHandler creates a new AssignmentHandler instance
func NewAssignmentHandler(deps *Dependencies) *AssignmentHandler {
	return &AssignmentHandler{
		logger:     deps.Logger,
		manager:    deps.Manager,
		storage:    deps.Storage,
		sweeper:    deps.Sweeper,
		aggregator: deps.Aggregator,
		orgTime:    deps.OrgTime,
	}
}

// respondError maps domain errors to HTTP statuses
func (h *AssignmentHandler) respondError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	var se *scoring.InvariantError
	var ae *analytics.InvariantError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Reason})
	case errors.Is(err, domain.ErrAssignmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
	case errors.Is(err, domain.ErrTransitionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "assignment status changed concurrently"})
	case domain.IsStoreUnavailable(err):
		h.logger.Error("Store unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable"})
	case errors.As(err, &se), errors.As(err, &ae):
		h.logger.Error("Report invariant violated", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal data inconsistency"})
	default:
		h.logger.Error("Unhandled error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// toDTO renders an assignment for the wire
func (h *AssignmentHandler) toDTO(a *domain.Assignment) dto.AssignmentDTO {
	out := dto.AssignmentDTO{
		ID:                 a.ID,
		WorkerID:           a.WorkerID,
		TeamLeaderID:       a.TeamLeaderID,
		Team:               a.Team,
		AssignedDate:       h.orgTime.FormatDate(a.AssignedDate),
		DueTime:            a.DueTime.Format(time.RFC3339),
		Status:             a.Status,
		Notes:              a.Notes,
		LinkedSubmissionID: a.LinkedSubmissionID,
		Late:               a.IsLate(),
		CreatedAt:          a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          a.UpdatedAt.Format(time.RFC3339),
	}

	if a.CompletedAt != nil {
		completedAt := a.CompletedAt.Format(time.RFC3339)
		out.CompletedAt = &completedAt
	}

	return out
}

// parseWindow normalizes a start/end calendar date pair into absolute instants
func (h *AssignmentHandler) parseWindow(req dto.WindowRequest) (domain.Window, error) {
	start, err := h.orgTime.ParseDate(req.Start)
	if err != nil {
		return domain.Window{}, err
	}

	end, err := h.orgTime.ParseDate(req.End)
	if err != nil {
		return domain.Window{}, err
	}

	return h.orgTime.RangeWindow(start, end)
}
