package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/giodelapiedra/backend-sub011/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if deps.DBClient != nil {
			if err := deps.DBClient.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "work-readiness-api",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "work-readiness-api",
		})
	})

	assignmentHandler := handler.NewAssignmentHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		assignments := v1.Group("/assignments")
		{
			// POST /api/v1/assignments - Create the day's assignments for a cohort
			assignments.POST("", assignmentHandler.CreateAssignments)

			// GET /api/v1/assignments - Team leader listing with pagination
			assignments.GET("", assignmentHandler.ListAssignments)

			// GET /api/v1/assignments/worker/:worker_id - Worker's assignment for a day
			assignments.GET("/worker/:worker_id", assignmentHandler.GetWorkerAssignment)

			// GET /api/v1/assignments/worker/:worker_id/history - Worker's assignments over a window
			assignments.GET("/worker/:worker_id/history", assignmentHandler.ListWorkerAssignments)

			// POST /api/v1/assignments/:assignment_id/complete - Record a completion
			assignments.POST("/:assignment_id/complete", assignmentHandler.CompleteAssignment)

			// POST /api/v1/assignments/:assignment_id/cancel - Administrative cancel
			assignments.POST("/:assignment_id/cancel", assignmentHandler.CancelAssignment)
		}

		teams := v1.Group("/teams")
		{
			// GET /api/v1/teams/:team/compliance - Weighted compliance score
			teams.GET("/:team/compliance", assignmentHandler.GetComplianceScore)

			// GET /api/v1/teams/:team/trend - Per-day readiness trend
			teams.GET("/:team/trend", assignmentHandler.GetTrend)
		}

		// POST /api/v1/sweep/run - Manual idempotent sweep trigger
		v1.POST("/sweep/run", assignmentHandler.RunSweep)
	}

	return r
}
