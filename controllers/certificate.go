package controllers

import (
	"net/http"
	"strconv"
	"time"

	"cert-management-api/config"
	"cert-management-api/middleware"
	"cert-management-api/models"
	"cert-management-api/services"
	"cert-management-api/utils"

	"github.com/gin-gonic/gin"
)

// ===== CERTIFICATE CONTROLLERS =====

// GetCertificates lists certificates visible to the caller. Contractors
// only see certificates of their own company's personnel.
func GetCertificates(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	query := config.DB.Model(&models.Certificate{}).
		Preload("Personnel").
		Where("delete_at IS NULL")

	if actor.Role == models.RoleContractor {
		if actor.CompanyID == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "certificates": []models.Certificate{}, "count": 0})
			return
		}
		query = query.Where("personnel_id IN (?)",
			config.DB.Model(&models.Personnel{}).Select("personnel_id").Where("company_id = ?", *actor.CompanyID))
	}

	if personnelID := c.Query("personnel_id"); personnelID != "" {
		query = query.Where("personnel_id = ?", personnelID)
	}
	if certType := c.Query("certificate_type"); certType != "" {
		query = query.Where("certificate_type = ?", certType)
	}

	var certificates []models.Certificate
	if err := query.Order("expiry_date ASC").Find(&certificates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch certificates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"certificates": certificates,
		"count":        len(certificates),
	})
}

// GetCertificate returns one certificate
func GetCertificate(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id := c.Param("id")

	var certificate models.Certificate
	if err := config.DB.Preload("Personnel").
		Where("certificate_id = ? AND delete_at IS NULL", id).
		First(&certificate).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
		return
	}

	var guard services.Guard
	if certificate.Personnel == nil || !guard.CanManageCompany(actor, certificate.Personnel.CompanyID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"certificate": certificate,
	})
}

type certificateRequest struct {
	PersonnelID       int        `json:"personnel_id" binding:"required"`
	CertificateType   string     `json:"certificate_type" binding:"required"`
	CertificateNumber string     `json:"certificate_number"`
	IssuedBy          string     `json:"issued_by"`
	IssuedDate        *time.Time `json:"issued_date"`
	ExpiryDate        *time.Time `json:"expiry_date"`
}

// CreateCertificate records a certificate for a personnel (admin only, routed)
func CreateCertificate(c *gin.Context) {
	var req certificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	var person models.Personnel
	if err := config.DB.Where("personnel_id = ? AND delete_at IS NULL", req.PersonnelID).
		First(&person).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Personnel not found"})
		return
	}

	if req.IssuedDate != nil && req.ExpiryDate != nil && req.ExpiryDate.Before(*req.IssuedDate) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Expiry date is before issue date"})
		return
	}

	now := time.Now()
	certificate := models.Certificate{
		PersonnelID:       req.PersonnelID,
		CertificateType:   utils.SanitizeInput(req.CertificateType),
		CertificateNumber: utils.SanitizeInput(req.CertificateNumber),
		IssuedBy:          utils.SanitizeInput(req.IssuedBy),
		IssuedDate:        req.IssuedDate,
		ExpiryDate:        req.ExpiryDate,
		CreateAt:          &now,
		UpdateAt:          &now,
	}

	if err := config.DB.Create(&certificate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create certificate"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"certificate": certificate,
	})
}

// UpdateCertificate updates a certificate (admin only, routed)
func UpdateCertificate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid certificate ID"})
		return
	}

	var certificate models.Certificate
	if err := config.DB.Where("certificate_id = ? AND delete_at IS NULL", id).
		First(&certificate).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
		return
	}

	var req certificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if req.IssuedDate != nil && req.ExpiryDate != nil && req.ExpiryDate.Before(*req.IssuedDate) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Expiry date is before issue date"})
		return
	}

	now := time.Now()
	certificate.PersonnelID = req.PersonnelID
	certificate.CertificateType = utils.SanitizeInput(req.CertificateType)
	certificate.CertificateNumber = utils.SanitizeInput(req.CertificateNumber)
	certificate.IssuedBy = utils.SanitizeInput(req.IssuedBy)
	certificate.IssuedDate = req.IssuedDate
	certificate.ExpiryDate = req.ExpiryDate
	certificate.UpdateAt = &now

	if err := config.DB.Save(&certificate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update certificate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"certificate": certificate,
	})
}

// DeleteCertificate soft deletes a certificate (admin only, routed)
func DeleteCertificate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid certificate ID"})
		return
	}

	var certificate models.Certificate
	if err := config.DB.Where("certificate_id = ? AND delete_at IS NULL", id).
		First(&certificate).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
		return
	}

	now := time.Now()
	certificate.DeleteAt = &now
	if err := config.DB.Save(&certificate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete certificate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Certificate deleted",
	})
}
