package controllers

import (
	"net/http"
	"strconv"
	"time"

	"cert-management-api/config"
	"cert-management-api/models"
	"cert-management-api/utils"

	"github.com/gin-gonic/gin"
)

// ===== COMPANY CONTROLLERS =====

// GetCompanies lists all companies (admin surface)
func GetCompanies(c *gin.Context) {
	query := config.DB.Model(&models.Company{}).Where("delete_at IS NULL")

	if search := c.Query("search"); search != "" {
		query = query.Where("company_name LIKE ?", "%"+utils.SanitizeInput(search)+"%")
	}

	var companies []models.Company
	if err := query.Order("company_name ASC").Find(&companies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch companies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"companies": companies,
		"count":     len(companies),
	})
}

// GetCompany returns a company by ID
func GetCompany(c *gin.Context) {
	id := c.Param("id")

	var company models.Company
	if err := config.DB.Where("company_id = ? AND delete_at IS NULL", id).
		First(&company).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"company": company,
	})
}

type companyRequest struct {
	CompanyName  string `json:"company_name" binding:"required"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`
}

// CreateCompany creates a new company
func CreateCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if req.ContactEmail != "" && !utils.ValidateEmail(req.ContactEmail) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid contact email"})
		return
	}

	now := time.Now()
	company := models.Company{
		CompanyName:  utils.SanitizeInput(req.CompanyName),
		ContactEmail: req.ContactEmail,
		ContactPhone: utils.SanitizeInput(req.ContactPhone),
		Address:      utils.SanitizeInput(req.Address),
		CreateAt:     &now,
		UpdateAt:     &now,
	}

	if err := config.DB.Create(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"company": company,
	})
}

// UpdateCompany updates an existing company
func UpdateCompany(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid company ID"})
		return
	}

	var company models.Company
	if err := config.DB.Where("company_id = ? AND delete_at IS NULL", id).
		First(&company).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	company.CompanyName = utils.SanitizeInput(req.CompanyName)
	company.ContactEmail = req.ContactEmail
	company.ContactPhone = utils.SanitizeInput(req.ContactPhone)
	company.Address = utils.SanitizeInput(req.Address)
	company.UpdateAt = &now

	if err := config.DB.Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update company"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"company": company,
	})
}

// DeleteCompany soft deletes a company
func DeleteCompany(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid company ID"})
		return
	}

	var company models.Company
	if err := config.DB.Where("company_id = ? AND delete_at IS NULL", id).
		First(&company).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	// Refuse deletion while personnel still reference the company.
	var personnelCount int64
	config.DB.Model(&models.Personnel{}).
		Where("company_id = ? AND delete_at IS NULL", id).
		Count(&personnelCount)
	if personnelCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Company still has active personnel"})
		return
	}

	now := time.Now()
	company.DeleteAt = &now
	if err := config.DB.Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete company"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Company deleted",
	})
}
