package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"cert-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingSink captures emitted notifications for assertions.
type recordingSink struct {
	mu    sync.Mutex
	items []models.Notification
}

func (s *recordingSink) Emit(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, n)
}

func (s *recordingSink) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *recordingSink) forUser(userID uint) []models.Notification {
	var out []models.Notification
	for _, n := range s.all() {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func setupWorkflowTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Company{}, &models.User{}, &models.Personnel{}, &models.Certificate{}, &models.Submission{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// sqlite only tolerates one writer; serialize at the pool.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return db
}

type workflowFixtures struct {
	companyA   models.Company
	companyB   models.Company
	contractor models.User // company A
	outsider   models.User // contractor, company B
	admin      models.User
	superadmin models.User
	person     models.Personnel // "Jane Doe", company A
}

func seedWorkflowFixtures(t *testing.T, db *gorm.DB) workflowFixtures {
	t.Helper()

	var f workflowFixtures
	f.companyA = models.Company{CompanyName: "Acme Industrial"}
	f.companyB = models.Company{CompanyName: "Borealis Contracting"}
	require.NoError(t, db.Create(&f.companyA).Error)
	require.NoError(t, db.Create(&f.companyB).Error)

	f.contractor = models.User{FullName: "Carl Contractor", Email: "carl@acme.test", Role: models.RoleContractor, CompanyID: &f.companyA.CompanyID}
	f.outsider = models.User{FullName: "Olga Outsider", Email: "olga@borealis.test", Role: models.RoleContractor, CompanyID: &f.companyB.CompanyID}
	f.admin = models.User{FullName: "Amy Admin", Email: "amy@cert.test", Role: models.RoleAdmin}
	f.superadmin = models.User{FullName: "Sam Super", Email: "sam@cert.test", Role: models.RoleSuperadmin}
	for _, u := range []*models.User{&f.contractor, &f.outsider, &f.admin, &f.superadmin} {
		require.NoError(t, db.Create(u).Error)
	}

	f.person = models.Personnel{CompanyID: f.companyA.CompanyID, FullName: "Jane Doe", Position: "Welder"}
	require.NoError(t, db.Create(&f.person).Error)

	return f
}

func TestWorkflowCreate(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixtures(t, db)
	sink := &recordingSink{}
	w := NewWorkflow(db, sink)

	submission, err := w.Create(&f.contractor, f.person.PersonnelID, "certification")
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionPending, submission.Status)
	assert.Equal(t, f.contractor.UserID, submission.SubmittedBy)
	assert.NotEmpty(t, submission.SubmissionCode)
	assert.Nil(t, submission.ReviewedBy)
	assert.False(t, submission.SubmissionDate.IsZero())

	// One notification per admin-role account, naming the personnel.
	notifications := sink.all()
	require.Len(t, notifications, 2)
	recipients := map[uint]bool{}
	for _, n := range notifications {
		recipients[n.UserID] = true
		assert.Contains(t, n.Message, "Jane Doe")
		assert.Equal(t, models.NotificationInfo, n.Type)
		require.NotNil(t, n.RelatedSubmissionID)
		assert.Equal(t, uint(submission.SubmissionID), *n.RelatedSubmissionID)
	}
	assert.True(t, recipients[uint(f.admin.UserID)])
	assert.True(t, recipients[uint(f.superadmin.UserID)])
}

func TestWorkflowCreateAuthorization(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixtures(t, db)
	w := NewWorkflow(db, &recordingSink{})

	// Admin roles do not file submissions.
	_, err := w.Create(&f.admin, f.person.PersonnelID, "certification")
	assert.ErrorIs(t, err, ErrForbidden)

	// A contractor cannot submit for another company's personnel.
	_, err = w.Create(&f.outsider, f.person.PersonnelID, "certification")
	assert.ErrorIs(t, err, ErrForbidden)

	// Unknown personnel.
	_, err = w.Create(&f.contractor, 99999, "certification")
	assert.ErrorIs(t, err, ErrPersonnelNotFound)
}

func TestWorkflowApprove(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixtures(t, db)
	sink := &recordingSink{}
	w := NewWorkflow(db, sink)

	submission, err := w.Create(&f.contractor, f.person.PersonnelID, "certification")
	require.NoError(t, err)

	// Approving with empty notes is allowed.
	approved, err := w.Approve(submission.SubmissionID, &f.admin, "")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, f.admin.UserID, *approved.ReviewedBy)
	assert.NotNil(t, approved.ReviewedAt)
	assert.Nil(t, approved.ReviewNotes)

	// The submitter got a success notification.
	got := sink.forUser(uint(f.contractor.UserID))
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationSuccess, got[0].Type)

	// Terminal states are frozen.
	_, err = w.Approve(submission.SubmissionID, &f.admin, "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	_, err = w.Reject(submission.SubmissionID, &f.admin, "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.SubmissionID).Error)
	assert.Equal(t, models.SubmissionApproved, stored.Status)
}

func TestWorkflowReject(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixtures(t, db)
	sink := &recordingSink{}
	w := NewWorkflow(db, sink)

	submission, err := w.Create(&f.contractor, f.person.PersonnelID, "certification")
	require.NoError(t, err)

	// Rejection always needs notes.
	_, err = w.Reject(submission.SubmissionID, &f.admin, "   ")
	assert.ErrorIs(t, err, ErrNotesRequired)

	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.SubmissionID).Error)
	assert.Equal(t, models.SubmissionPending, stored.Status, "failed rejection must not change state")

	rejected, err := w.Reject(submission.SubmissionID, &f.admin, "Missing document")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, rejected.Status)
	require.NotNil(t, rejected.ReviewNotes)
	assert.Equal(t, "Missing document", *rejected.ReviewNotes)
	require.NotNil(t, rejected.ReviewedBy)
	assert.Equal(t, f.admin.UserID, *rejected.ReviewedBy)

	got := sink.forUser(uint(f.contractor.UserID))
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationError, got[0].Type)
	assert.Contains(t, got[0].Message, "Missing document")
}

func TestWorkflowReviewAuthorization(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixtures(t, db)
	w := NewWorkflow(db, &recordingSink{})

	submission, err := w.Create(&f.contractor, f.person.PersonnelID, "certification")
	require.NoError(t, err)

	_, err = w.Approve(submission.SubmissionID, &f.contractor, "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = w.Reject(submission.SubmissionID, &f.contractor, "no")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = w.Approve(submission.SubmissionID, nil, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = w.Approve(99999, &f.admin, "")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestWorkflowConcurrentReview(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixtures(t, db)
	w := NewWorkflow(db, &recordingSink{})

	submission, err := w.Create(&f.contractor, f.person.PersonnelID, "certification")
	require.NoError(t, err)

	start := make(chan struct{})
	results := make(chan error, 2)

	go func() {
		<-start
		_, err := w.Approve(submission.SubmissionID, &f.admin, "")
		results <- err
	}()
	go func() {
		<-start
		_, err := w.Reject(submission.SubmissionID, &f.superadmin, "not acceptable")
		results <- err
	}()
	close(start)

	var succeeded, conflicted int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrAlreadyReviewed):
			conflicted++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one review must win")
	assert.Equal(t, 1, conflicted, "the loser must observe the conflict")

	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.SubmissionID).Error)
	assert.True(t, stored.Status.Terminal())
}

func TestWorkflowGetScoping(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixtures(t, db)
	w := NewWorkflow(db, &recordingSink{})

	submission, err := w.Create(&f.contractor, f.person.PersonnelID, "certification")
	require.NoError(t, err)

	// Owner and admin roles can read it.
	got, err := w.Get(&f.contractor, submission.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, submission.SubmissionID, got.SubmissionID)
	_, err = w.Get(&f.admin, submission.SubmissionID)
	require.NoError(t, err)

	// Another company's contractor sees nothing, not a permission hint.
	_, err = w.Get(&f.outsider, submission.SubmissionID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestWorkflowList(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixtures(t, db)
	w := NewWorkflow(db, &recordingSink{})

	personB := models.Personnel{CompanyID: f.companyB.CompanyID, FullName: "Bob Builder"}
	require.NoError(t, db.Create(&personB).Error)

	first, err := w.Create(&f.contractor, f.person.PersonnelID, "certification")
	require.NoError(t, err)
	// Ensure a strictly later submission_date for ordering.
	require.NoError(t, db.Model(&models.Submission{}).
		Where("submission_id = ?", first.SubmissionID).
		Update("submission_date", time.Now().Add(-time.Hour)).Error)

	second, err := w.Create(&f.contractor, f.person.PersonnelID, "renewal")
	require.NoError(t, err)
	other, err := w.Create(&f.outsider, personB.PersonnelID, "certification")
	require.NoError(t, err)

	_, err = w.Approve(second.SubmissionID, &f.admin, "")
	require.NoError(t, err)

	// Admin sees everything, newest first.
	all, total, err := w.List(&f.admin, SubmissionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, first.SubmissionID, all[len(all)-1].SubmissionID)

	// Contractor only sees their company.
	mine, total, err := w.List(&f.contractor, SubmissionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, s := range mine {
		assert.NotEqual(t, other.SubmissionID, s.SubmissionID)
	}

	// Status filter.
	pending, total, err := w.List(&f.contractor, SubmissionFilter{Status: string(models.SubmissionPending)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, first.SubmissionID, pending[0].SubmissionID)
}

func TestWorkflowNotesAreTrimmed(t *testing.T) {
	db := setupWorkflowTestDB(t)
	f := seedWorkflowFixtures(t, db)
	w := NewWorkflow(db, &recordingSink{})

	submission, err := w.Create(&f.contractor, f.person.PersonnelID, "certification")
	require.NoError(t, err)

	rejected, err := w.Reject(submission.SubmissionID, &f.admin, "  needs the welding cert scan  ")
	require.NoError(t, err)
	require.NotNil(t, rejected.ReviewNotes)
	assert.Equal(t, "needs the welding cert scan", *rejected.ReviewNotes)
	assert.False(t, strings.HasPrefix(*rejected.ReviewNotes, " "))
}
