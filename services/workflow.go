package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cert-management-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrForbidden          = errors.New("principal is not allowed to perform this action")
	ErrPersonnelNotFound  = errors.New("personnel record not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotesRequired      = errors.New("review notes are required")
	ErrAlreadyReviewed    = errors.New("submission has already been reviewed")
)

// NotificationSink receives workflow events. Delivery is the sink's
// concern; the workflow never fails a transition because a notification
// could not be sent.
type NotificationSink interface {
	Emit(n models.Notification)
}

// Workflow drives the submission lifecycle: contractors create pending
// submissions, admin roles approve or reject them exactly once. Every
// operation takes the acting principal explicitly.
type Workflow struct {
	db    *gorm.DB
	guard Guard
	sink  NotificationSink
}

func NewWorkflow(db *gorm.DB, sink NotificationSink) *Workflow {
	return &Workflow{db: db, sink: sink}
}

// SubmissionFilter narrows List results.
type SubmissionFilter struct {
	Status      string
	PersonnelID int
	Page        int
	PerPage     int
}

// Create files a new pending submission for one personnel record owned
// by the contractor's company and notifies every admin account.
func (w *Workflow) Create(actor *models.User, personnelID int, submissionType string) (*models.Submission, error) {
	if !w.guard.CanCreate(actor) {
		return nil, ErrForbidden
	}

	var person models.Personnel
	if err := w.db.Where("personnel_id = ? AND delete_at IS NULL", personnelID).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonnelNotFound
		}
		return nil, err
	}

	if !w.guard.CanManageCompany(actor, person.CompanyID) {
		return nil, ErrForbidden
	}

	submission := models.Submission{
		SubmissionCode: uuid.NewString(),
		PersonnelID:    person.PersonnelID,
		SubmittedBy:    actor.UserID,
		SubmissionType: strings.TrimSpace(submissionType),
		Status:         models.SubmissionPending,
		SubmissionDate: time.Now(),
	}
	if err := w.db.Create(&submission).Error; err != nil {
		return nil, err
	}
	submission.Personnel = &person

	w.notifyReviewers(submission, person)

	return &submission, nil
}

// Approve moves a pending submission to approved. Notes are optional.
func (w *Workflow) Approve(submissionID int, reviewer *models.User, notes string) (*models.Submission, error) {
	return w.review(submissionID, reviewer, models.SubmissionApproved, notes)
}

// Reject moves a pending submission to rejected. Notes are mandatory so
// the submitter knows what to fix.
func (w *Workflow) Reject(submissionID int, reviewer *models.User, notes string) (*models.Submission, error) {
	if !w.guard.CanReview(reviewer) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(notes) == "" {
		return nil, ErrNotesRequired
	}
	return w.review(submissionID, reviewer, models.SubmissionRejected, notes)
}

// review performs the pending -> terminal transition. The status check
// and the write are a single conditional UPDATE so that two concurrent
// reviews cannot both succeed: whichever one loses the race sees zero
// affected rows and reports ErrAlreadyReviewed.
func (w *Workflow) review(submissionID int, reviewer *models.User, target models.SubmissionStatus, notes string) (*models.Submission, error) {
	if !w.guard.CanReview(reviewer) {
		return nil, ErrForbidden
	}

	var submission models.Submission
	if err := w.db.Preload("Personnel").
		Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	now := time.Now()
	trimmed := strings.TrimSpace(notes)
	updates := map[string]interface{}{
		"status":      target,
		"reviewed_by": reviewer.UserID,
		"reviewed_at": now,
	}
	if trimmed != "" {
		updates["review_notes"] = trimmed
	}

	res := w.db.Model(&models.Submission{}).
		Where("submission_id = ? AND status = ?", submissionID, models.SubmissionPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyReviewed
	}

	submission.Status = target
	submission.ReviewedBy = &reviewer.UserID
	submission.ReviewedAt = &now
	if trimmed != "" {
		submission.ReviewNotes = &trimmed
	}

	w.notifySubmitter(submission, target, trimmed)

	return &submission, nil
}

// Get loads one submission visible to the principal.
func (w *Workflow) Get(actor *models.User, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	if err := w.db.Preload("Personnel").Preload("Submitter").Preload("Reviewer").
		Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	if !w.guard.CanView(actor, &submission) {
		// Scoped-out records read as absent, not forbidden.
		return nil, ErrSubmissionNotFound
	}
	return &submission, nil
}

// List returns submissions visible to the principal, newest first.
// Contractors only see their own company's personnel.
func (w *Workflow) List(actor *models.User, filter SubmissionFilter) ([]models.Submission, int64, error) {
	if actor == nil {
		return nil, 0, ErrForbidden
	}

	query := w.db.Model(&models.Submission{}).
		Preload("Personnel").Preload("Submitter").Preload("Reviewer")

	switch actor.Role {
	case models.RoleAdmin, models.RoleSuperadmin:
		// unrestricted
	case models.RoleContractor:
		if actor.CompanyID == nil {
			return []models.Submission{}, 0, nil
		}
		query = query.Where("personnel_id IN (?)",
			w.db.Model(&models.Personnel{}).Select("personnel_id").Where("company_id = ?", *actor.CompanyID))
	default:
		return nil, 0, ErrForbidden
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PersonnelID > 0 {
		query = query.Where("personnel_id = ?", filter.PersonnelID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var submissions []models.Submission
	if err := query.Order("submission_date DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (w *Workflow) notifyReviewers(submission models.Submission, person models.Personnel) {
	if w.sink == nil {
		return
	}

	var reviewers []models.User
	if err := w.db.Where("role IN ? AND delete_at IS NULL",
		[]models.Role{models.RoleAdmin, models.RoleSuperadmin}).
		Find(&reviewers).Error; err != nil {
		return
	}

	related := uint(submission.SubmissionID)
	for _, reviewer := range reviewers {
		w.sink.Emit(models.Notification{
			UserID:              uint(reviewer.UserID),
			Title:               "New submission awaiting review",
			Message:             fmt.Sprintf("A %s submission for %s is waiting for your decision.", submission.SubmissionType, person.FullName),
			Type:                models.NotificationInfo,
			RelatedSubmissionID: &related,
			CreateAt:            time.Now(),
		})
	}
}

func (w *Workflow) notifySubmitter(submission models.Submission, target models.SubmissionStatus, notes string) {
	if w.sink == nil || submission.SubmittedBy == 0 {
		return
	}

	var title, message string
	var kind models.NotificationType
	switch target {
	case models.SubmissionApproved:
		title = "Your submission was approved"
		message = fmt.Sprintf("Submission %s has been approved.", submission.SubmissionCode)
		kind = models.NotificationSuccess
	case models.SubmissionRejected:
		title = "Your submission was rejected"
		message = fmt.Sprintf("Submission %s has been rejected.", submission.SubmissionCode)
		kind = models.NotificationError
	default:
		return
	}
	if notes != "" {
		message = fmt.Sprintf("%s\nNotes: %s", message, notes)
	}

	related := uint(submission.SubmissionID)
	w.sink.Emit(models.Notification{
		UserID:              uint(submission.SubmittedBy),
		Title:               title,
		Message:             message,
		Type:                kind,
		RelatedSubmissionID: &related,
		CreateAt:            time.Now(),
	})
}
