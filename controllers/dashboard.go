package controllers

import (
	"net/http"
	"time"

	"cert-management-api/config"
	"cert-management-api/middleware"
	"cert-management-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetDashboardStats returns dashboard statistics scoped to the caller's
// role: admin roles see totals across all companies, contractors see
// only their own company.
func GetDashboardStats(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication context missing",
		})
		return
	}

	var stats map[string]interface{}
	switch actor.Role {
	case models.RoleAdmin, models.RoleSuperadmin:
		stats = getAdminDashboard()
	case models.RoleContractor:
		stats = getContractorDashboard(actor)
	default:
		stats = make(map[string]interface{})
	}

	stats["current_date"] = time.Now().Format("2006-01-02")

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

func getAdminDashboard() map[string]interface{} {
	stats := make(map[string]interface{})

	var companies, personnel, certificates int64
	config.DB.Model(&models.Company{}).Where("delete_at IS NULL").Count(&companies)
	config.DB.Model(&models.Personnel{}).Where("delete_at IS NULL").Count(&personnel)
	config.DB.Model(&models.Certificate{}).Where("delete_at IS NULL").Count(&certificates)

	stats["companies"] = companies
	stats["personnel"] = personnel
	stats["certificates"] = certificates
	stats["submissions"] = submissionCounts(nil)
	stats["expiring_certificates"] = expiringCertificateCount(nil)

	return stats
}

func getContractorDashboard(actor *models.User) map[string]interface{} {
	stats := make(map[string]interface{})

	if actor.CompanyID == nil {
		stats["personnel"] = 0
		stats["certificates"] = 0
		stats["submissions"] = submissionCounts(ptrInt(-1))
		return stats
	}

	var personnel, certificates int64
	config.DB.Model(&models.Personnel{}).
		Where("company_id = ? AND delete_at IS NULL", *actor.CompanyID).
		Count(&personnel)
	config.DB.Model(&models.Certificate{}).
		Where("delete_at IS NULL AND personnel_id IN (?)", companyPersonnelIDs(*actor.CompanyID)).
		Count(&certificates)

	stats["personnel"] = personnel
	stats["certificates"] = certificates
	stats["submissions"] = submissionCounts(actor.CompanyID)
	stats["expiring_certificates"] = expiringCertificateCount(actor.CompanyID)

	return stats
}

// submissionCounts tallies submissions per status, optionally scoped to
// one company's personnel.
func submissionCounts(companyID *int) map[string]int64 {
	counts := make(map[string]int64)
	for _, status := range []models.SubmissionStatus{
		models.SubmissionPending,
		models.SubmissionApproved,
		models.SubmissionRejected,
	} {
		query := config.DB.Model(&models.Submission{}).Where("status = ?", status)
		if companyID != nil {
			query = query.Where("personnel_id IN (?)", companyPersonnelIDs(*companyID))
		}
		var n int64
		query.Count(&n)
		counts[string(status)] = n
	}
	return counts
}

// expiringCertificateCount counts certificates expiring within 90 days.
func expiringCertificateCount(companyID *int) int64 {
	now := time.Now()
	query := config.DB.Model(&models.Certificate{}).
		Where("delete_at IS NULL AND expiry_date > ? AND expiry_date < ?", now, now.AddDate(0, 0, 90))
	if companyID != nil {
		query = query.Where("personnel_id IN (?)", companyPersonnelIDs(*companyID))
	}
	var n int64
	query.Count(&n)
	return n
}

func companyPersonnelIDs(companyID int) *gorm.DB {
	return config.DB.Model(&models.Personnel{}).
		Select("personnel_id").
		Where("company_id = ?", companyID)
}

func ptrInt(v int) *int { return &v }
