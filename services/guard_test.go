package services

import (
	"testing"

	"cert-management-api/models"

	"github.com/stretchr/testify/assert"
)

func companyPtr(id int) *int { return &id }

func TestGuardCanCreate(t *testing.T) {
	var guard Guard

	tests := []struct {
		name      string
		principal *models.User
		want      bool
	}{
		{"nil principal", nil, false},
		{"contractor", &models.User{Role: models.RoleContractor, CompanyID: companyPtr(1)}, true},
		{"admin", &models.User{Role: models.RoleAdmin}, false},
		{"superadmin", &models.User{Role: models.RoleSuperadmin}, false},
		{"unknown role", &models.User{Role: "manager"}, false},
		{"empty role", &models.User{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.CanCreate(tt.principal))
		})
	}
}

func TestGuardCanReview(t *testing.T) {
	var guard Guard

	assert.False(t, guard.CanReview(nil))
	assert.True(t, guard.CanReview(&models.User{Role: models.RoleAdmin}))
	assert.True(t, guard.CanReview(&models.User{Role: models.RoleSuperadmin}))
	assert.False(t, guard.CanReview(&models.User{Role: models.RoleContractor}))
	assert.False(t, guard.CanReview(&models.User{Role: "reviewer"}))
}

func TestGuardCanView(t *testing.T) {
	var guard Guard

	submission := &models.Submission{
		Personnel: &models.Personnel{CompanyID: 7},
	}

	tests := []struct {
		name      string
		principal *models.User
		sub       *models.Submission
		want      bool
	}{
		{"nil principal", nil, submission, false},
		{"nil submission", &models.User{Role: models.RoleAdmin}, nil, false},
		{"admin sees all", &models.User{Role: models.RoleAdmin}, submission, true},
		{"superadmin sees all", &models.User{Role: models.RoleSuperadmin}, submission, true},
		{"contractor same company", &models.User{Role: models.RoleContractor, CompanyID: companyPtr(7)}, submission, true},
		{"contractor other company", &models.User{Role: models.RoleContractor, CompanyID: companyPtr(8)}, submission, false},
		{"contractor without company", &models.User{Role: models.RoleContractor}, submission, false},
		{"contractor, personnel not loaded", &models.User{Role: models.RoleContractor, CompanyID: companyPtr(7)}, &models.Submission{}, false},
		{"unknown role", &models.User{Role: "auditor", CompanyID: companyPtr(7)}, submission, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.CanView(tt.principal, tt.sub))
		})
	}
}

func TestGuardCanManageCompany(t *testing.T) {
	var guard Guard

	assert.False(t, guard.CanManageCompany(nil, 7))
	assert.True(t, guard.CanManageCompany(&models.User{Role: models.RoleAdmin}, 7))
	assert.True(t, guard.CanManageCompany(&models.User{Role: models.RoleSuperadmin}, 7))
	assert.True(t, guard.CanManageCompany(&models.User{Role: models.RoleContractor, CompanyID: companyPtr(7)}, 7))
	assert.False(t, guard.CanManageCompany(&models.User{Role: models.RoleContractor, CompanyID: companyPtr(8)}, 7))
	assert.False(t, guard.CanManageCompany(&models.User{Role: models.RoleContractor}, 7))
}
