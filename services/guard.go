package services

import (
	"cert-management-api/models"
)

// Guard answers capability questions for an acting principal. It has no
// side effects and fails closed: a nil principal or an unknown role is
// always denied.
type Guard struct{}

// CanCreate reports whether the principal may file new submissions.
// Only contractors submit; admins manage personnel and certificates
// directly instead.
func (Guard) CanCreate(principal *models.User) bool {
	if principal == nil {
		return false
	}
	return principal.Role == models.RoleContractor
}

// CanReview reports whether the principal may approve or reject
// submissions.
func (Guard) CanReview(principal *models.User) bool {
	if principal == nil {
		return false
	}
	return principal.Role == models.RoleAdmin || principal.Role == models.RoleSuperadmin
}

// CanView reports whether the principal may see the given submission.
// Admin roles see everything; contractors only see submissions whose
// personnel belongs to their own company. The submission must carry its
// Personnel relation, otherwise contractors are denied.
func (g Guard) CanView(principal *models.User, submission *models.Submission) bool {
	if principal == nil || submission == nil {
		return false
	}
	switch principal.Role {
	case models.RoleAdmin, models.RoleSuperadmin:
		return true
	case models.RoleContractor:
		if principal.CompanyID == nil || submission.Personnel == nil {
			return false
		}
		return submission.Personnel.CompanyID == *principal.CompanyID
	}
	return false
}

// CanManageCompany reports whether the principal may act on records
// (personnel, certificates) scoped to the given company.
func (Guard) CanManageCompany(principal *models.User, companyID int) bool {
	if principal == nil {
		return false
	}
	switch principal.Role {
	case models.RoleAdmin, models.RoleSuperadmin:
		return true
	case models.RoleContractor:
		return principal.CompanyID != nil && *principal.CompanyID == companyID
	}
	return false
}
