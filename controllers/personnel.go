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

// ===== PERSONNEL CONTROLLERS =====

// GetPersonnelList lists personnel visible to the caller. Contractors
// only see their own company.
func GetPersonnelList(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	query := config.DB.Model(&models.Personnel{}).
		Preload("Company").
		Where("delete_at IS NULL")

	if actor.Role == models.RoleContractor {
		if actor.CompanyID == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "personnel": []models.Personnel{}, "count": 0})
			return
		}
		query = query.Where("company_id = ?", *actor.CompanyID)
	} else if companyID := c.Query("company_id"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("full_name LIKE ?", "%"+utils.SanitizeInput(search)+"%")
	}

	var personnel []models.Personnel
	if err := query.Order("full_name ASC").Find(&personnel).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch personnel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"personnel": personnel,
		"count":     len(personnel),
	})
}

// GetPersonnel returns one personnel record with certificates
func GetPersonnel(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id := c.Param("id")

	var person models.Personnel
	if err := config.DB.Preload("Company").Preload("Certificates").
		Where("personnel_id = ? AND delete_at IS NULL", id).
		First(&person).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Personnel not found"})
		return
	}

	var guard services.Guard
	if !guard.CanManageCompany(actor, person.CompanyID) {
		// Other companies' personnel read as absent for contractors.
		c.JSON(http.StatusNotFound, gin.H{"error": "Personnel not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"personnel": person,
	})
}

type personnelRequest struct {
	CompanyID int    `json:"company_id" binding:"required"`
	FullName  string `json:"full_name" binding:"required"`
	Position  string `json:"position"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// CreatePersonnel creates a personnel record. Contractors may only add
// people to their own company.
func CreatePersonnel(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req personnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if req.Email != "" && !utils.ValidateEmail(req.Email) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid email"})
		return
	}

	var guard services.Guard
	if !guard.CanManageCompany(actor, req.CompanyID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	var company models.Company
	if err := config.DB.Where("company_id = ? AND delete_at IS NULL", req.CompanyID).
		First(&company).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	now := time.Now()
	person := models.Personnel{
		CompanyID: req.CompanyID,
		FullName:  utils.SanitizeInput(req.FullName),
		Position:  utils.SanitizeInput(req.Position),
		Email:     req.Email,
		Phone:     utils.SanitizeInput(req.Phone),
		CreateAt:  &now,
		UpdateAt:  &now,
	}

	if err := config.DB.Create(&person).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create personnel"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"personnel": person,
	})
}

// UpdatePersonnel updates a personnel record
func UpdatePersonnel(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid personnel ID"})
		return
	}

	var person models.Personnel
	if err := config.DB.Where("personnel_id = ? AND delete_at IS NULL", id).
		First(&person).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Personnel not found"})
		return
	}

	var guard services.Guard
	if !guard.CanManageCompany(actor, person.CompanyID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	var req personnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	// Moving personnel between companies stays an admin operation.
	if req.CompanyID != person.CompanyID && !guard.CanManageCompany(actor, req.CompanyID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	now := time.Now()
	person.CompanyID = req.CompanyID
	person.FullName = utils.SanitizeInput(req.FullName)
	person.Position = utils.SanitizeInput(req.Position)
	person.Email = req.Email
	person.Phone = utils.SanitizeInput(req.Phone)
	person.UpdateAt = &now

	if err := config.DB.Save(&person).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update personnel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"personnel": person,
	})
}

// DeletePersonnel soft deletes a personnel record (admin only, routed)
func DeletePersonnel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid personnel ID"})
		return
	}

	var person models.Personnel
	if err := config.DB.Where("personnel_id = ? AND delete_at IS NULL", id).
		First(&person).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Personnel not found"})
		return
	}

	var pendingCount int64
	config.DB.Model(&models.Submission{}).
		Where("personnel_id = ? AND status = ?", id, models.SubmissionPending).
		Count(&pendingCount)
	if pendingCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Personnel has pending submissions"})
		return
	}

	now := time.Now()
	person.DeleteAt = &now
	if err := config.DB.Save(&person).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete personnel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Personnel deleted",
	})
}
