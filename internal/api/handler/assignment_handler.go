package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/giodelapiedra/backend-sub011/internal/api/dto"
	"github.com/giodelapiedra/backend-sub011/internal/assignment"
	"github.com/giodelapiedra/backend-sub011/internal/assignment/storage"
	"github.com/google/uuid"
)

// CreateAssignments handles POST /api/v1/assignments
// Creates the day's pending assignments for a worker cohort
func (h *AssignmentHandler) CreateAssignments(c *gin.Context) {
	var req dto.CreateAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	date, err := h.orgTime.ParseDate(req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	created, err := h.manager.CreateAssignments(c.Request.Context(), assignment.CreateRequest{
		WorkerIDs:    req.WorkerIDs,
		TeamLeaderID: req.TeamLeaderID,
		Team:         req.Team,
		Date:         date,
		Notes:        req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]dto.AssignmentDTO, len(created))
	for i := range created {
		out[i] = h.toDTO(&created[i])
	}

	c.JSON(http.StatusCreated, gin.H{
		"assignments": out,
	})
}

// GetWorkerAssignment handles GET /api/v1/assignments/worker/:worker_id
// Returns the worker's non-cancelled assignment for one calendar day
func (h *AssignmentHandler) GetWorkerAssignment(c *gin.Context) {
	workerID := c.Param("worker_id")

	date, err := h.orgTime.ParseDate(c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	a, err := h.manager.GetWorkerAssignment(c.Request.Context(), workerID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toDTO(a))
}

// ListWorkerAssignments handles GET /api/v1/assignments/worker/:worker_id/history
// Lists the worker's assignments across a date window, newest first
func (h *AssignmentHandler) ListWorkerAssignments(c *gin.Context) {
	workerID := c.Param("worker_id")

	var req dto.WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "start and end dates are required",
		})
		return
	}

	window, err := h.parseWindow(req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	assignments, err := h.storage.ListByWorker(c.Request.Context(), workerID, window)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]dto.AssignmentDTO, len(assignments))
	for i := range assignments {
		out[i] = h.toDTO(&assignments[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": out,
	})
}

// ListAssignments handles GET /api/v1/assignments
// Lists a team leader's assignments with filtering and cursor pagination
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	var req dto.ListAssignmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeAssignmentCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	assignments, err := h.storage.ListByTeamLeader(c.Request.Context(), storage.Filter{
		TeamLeaderID: req.TeamLeaderID,
		WorkerID:     req.WorkerID,
		Status:       req.Status,
		PageSize:     req.PageSize,
		Cursor:       cursor,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	hasMore := len(assignments) > req.PageSize
	if hasMore {
		assignments = assignments[:req.PageSize]
	}

	out := make([]dto.AssignmentDTO, len(assignments))
	for i := range assignments {
		out[i] = h.toDTO(&assignments[i])
	}

	var nextCursor string
	if hasMore {
		last := assignments[len(assignments)-1]
		nextCursor = EncodeAssignmentCursor(&storage.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	c.JSON(http.StatusOK, dto.ListAssignmentsResponse{
		Assignments: out,
		NextCursor:  nextCursor,
	})
}

// CompleteAssignment handles POST /api/v1/assignments/:assignment_id/complete
// Records the worker's readiness submission against the assignment. Accepted
// while pending or overdue; late completions are flagged, not rejected.
func (h *AssignmentHandler) CompleteAssignment(c *gin.Context) {
	assignmentID := c.Param("assignment_id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "assignment_id must be a valid UUID",
		})
		return
	}

	var req dto.CompleteAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	ctx := c.Request.Context()
	if req.SubmissionID != "" {
		updated, err := h.manager.Complete(ctx, assignmentID, req.SubmissionID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.toDTO(updated))
		return
	}

	updated, err := h.manager.SubmitAndComplete(ctx, assignmentID, assignment.SubmissionInput{
		ReadinessLevel: req.ReadinessLevel,
		FatigueLevel:   req.FatigueLevel,
		PainFlag:       req.PainFlag,
		Mood:           req.Mood,
		Notes:          req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toDTO(updated))
}

// CancelAssignment handles POST /api/v1/assignments/:assignment_id/cancel
// Administratively cancels a pending or overdue assignment
func (h *AssignmentHandler) CancelAssignment(c *gin.Context) {
	assignmentID := c.Param("assignment_id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "assignment_id must be a valid UUID",
		})
		return
	}

	cancelled, err := h.manager.Cancel(c.Request.Context(), assignmentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toDTO(cancelled))
}

// RunSweep handles POST /api/v1/sweep/run
// Manually triggers one sweep; shares the timer path's idempotency, so a
// trigger inside an already-swept hour reports a skip.
func (h *AssignmentHandler) RunSweep(c *gin.Context) {
	result, err := h.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
