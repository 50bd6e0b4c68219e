package dto

// CreateAssignmentsRequest creates one pending assignment per worker for a day
type CreateAssignmentsRequest struct {
	WorkerIDs    []string `json:"worker_ids" binding:"required"`
	TeamLeaderID string   `json:"team_leader_id" binding:"required"`
	Team         string   `json:"team" binding:"required"`
	Date         string   `json:"date" binding:"required"`
	Notes        string   `json:"notes"`
}

// CompleteAssignmentRequest completes an assignment, either linking an
// existing submission or creating one inline from the readiness fields
type CompleteAssignmentRequest struct {
	SubmissionID   string `json:"submission_id"`
	ReadinessLevel string `json:"readiness_level"`
	FatigueLevel   int    `json:"fatigue_level"`
	PainFlag       bool   `json:"pain_flag"`
	Mood           string `json:"mood"`
	Notes          string `json:"notes"`
}

// ListAssignmentsRequest filters a team leader's assignment listing
type ListAssignmentsRequest struct {
	TeamLeaderID string `form:"team_leader_id" binding:"required"`
	WorkerID     string `form:"worker_id"`
	Status       string `form:"status"`
	PageSize     int    `form:"page_size"`
	Cursor       string `form:"cursor"`
}

// ListAssignmentsResponse is one page of assignments
type ListAssignmentsResponse struct {
	Assignments []AssignmentDTO `json:"assignments"`
	NextCursor  string          `json:"next_cursor,omitempty"`
}

// AssignmentDTO is the wire shape of one assignment
type AssignmentDTO struct {
	ID                 string  `json:"id"`
	WorkerID           string  `json:"worker_id"`
	TeamLeaderID       string  `json:"team_leader_id"`
	Team               string  `json:"team"`
	AssignedDate       string  `json:"assigned_date"`
	DueTime            string  `json:"due_time"`
	Status             string  `json:"status"`
	Notes              string  `json:"notes,omitempty"`
	CompletedAt        *string `json:"completed_at,omitempty"`
	LinkedSubmissionID *string `json:"linked_submission_id,omitempty"`
	Late               bool    `json:"late,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// WindowRequest is a calendar date range in the org timezone
type WindowRequest struct {
	Start string `form:"start" binding:"required"`
	End   string `form:"end" binding:"required"`
}
