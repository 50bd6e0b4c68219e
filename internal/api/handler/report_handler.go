package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/giodelapiedra/backend-sub011/internal/api/dto"
	"github.com/giodelapiedra/backend-sub011/internal/assignment/domain"
	"github.com/giodelapiedra/backend-sub011/internal/scoring"
)

// GetComplianceScore handles GET /api/v1/teams/:team/compliance
// Computes the weighted compliance score for a team over a date window. The
// window immediately preceding the requested one, of equal length, feeds the
// improvement bonus.
func (h *AssignmentHandler) GetComplianceScore(c *gin.Context) {
	team := c.Param("team")

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

	ctx := c.Request.Context()
	current, err := h.storage.CountPartition(ctx, team, window)
	if err != nil {
		h.respondError(c, err)
		return
	}

	previousWindow := domain.Window{
		Start: window.Start.Add(-window.End.Sub(window.Start)),
		End:   window.Start,
	}
	previous, err := h.storage.CountPartition(ctx, team, previousWindow)
	if err != nil {
		h.respondError(c, err)
		return
	}

	score, err := scoring.ComputeScore(*current, previous)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team":  team,
		"start": req.Start,
		"end":   req.End,
		"score": score,
	})
}

// GetTrend handles GET /api/v1/teams/:team/trend
// Buckets the team's submissions by day and readiness level for charting
func (h *AssignmentHandler) GetTrend(c *gin.Context) {
	team := c.Param("team")

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

	submissions, err := h.storage.ListSubmissionsByTeam(c.Request.Context(), team, window)
	if err != nil {
		h.respondError(c, err)
		return
	}

	trend, err := h.aggregator.ComputeTrend(team, window, submissions)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trend)
}
