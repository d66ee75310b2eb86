package controllers

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"cert-management-api/config"
	"cert-management-api/middleware"
	"cert-management-api/models"
	"cert-management-api/services"

	"github.com/gin-gonic/gin"
)

func workflowService() *services.Workflow {
	return services.NewWorkflow(config.DB, services.NewNotifier(config.DB))
}

// GetSubmissions lists submissions visible to the caller.
// GET /api/v1/submissions?status=&personnel_id=&page=&per_page=
func GetSubmissions(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	filter := services.SubmissionFilter{
		Status: strings.TrimSpace(c.Query("status")),
	}
	if v, err := strconv.Atoi(c.Query("personnel_id")); err == nil && v > 0 {
		filter.PersonnelID = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
		filter.Page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("per_page", "20")); err == nil && v > 0 {
		filter.PerPage = v
	}

	submissions, total, err := workflowService().List(actor, filter)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"pagination": gin.H{
			"page":        filter.Page,
			"per_page":    perPage,
			"total":       total,
			"total_pages": int(math.Ceil(float64(total) / float64(perPage))),
		},
	})
}

// GetSubmission returns one submission if the caller may see it.
// GET /api/v1/submissions/:id
func GetSubmission(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	submission, err := workflowService().Get(actor, id)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// CreateSubmission files a new certification request for one personnel
// record of the contractor's company.
// POST /api/v1/submissions
func CreateSubmission(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		PersonnelID    int    `json:"personnel_id" binding:"required"`
		SubmissionType string `json:"submission_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	submission, err := workflowService().Create(actor, req.PersonnelID, req.SubmissionType)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// ApproveSubmission approves a pending submission. Notes are optional.
// POST /api/v1/submissions/:id/approve
func ApproveSubmission(c *gin.Context) {
	reviewSubmission(c, true)
}

// RejectSubmission rejects a pending submission. Notes are required.
// POST /api/v1/submissions/:id/reject
func RejectSubmission(c *gin.Context) {
	reviewSubmission(c, false)
}

func reviewSubmission(c *gin.Context, approve bool) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req struct {
		ReviewNotes string `json:"review_notes"`
	}
	// An empty body is fine for approvals.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	engine := workflowService()
	var (
		submission *models.Submission
		reviewErr  error
		message    string
	)
	if approve {
		submission, reviewErr = engine.Approve(id, actor, req.ReviewNotes)
		message = "Submission approved"
	} else {
		submission, reviewErr = engine.Reject(id, actor, req.ReviewNotes)
		message = "Submission rejected"
	}
	if reviewErr != nil {
		respondWorkflowError(c, reviewErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    message,
		"submission": submission,
	})
}

// respondWorkflowError maps workflow sentinel errors onto HTTP codes.
func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	case errors.Is(err, services.ErrPersonnelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Personnel not found"})
	case errors.Is(err, services.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
	case errors.Is(err, services.ErrNotesRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"fields": gin.H{"review_notes": "Review notes are required when rejecting"},
		})
	case errors.Is(err, services.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": "Submission has already been reviewed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
