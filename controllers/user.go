package controllers

import (
	"net/http"
	"strconv"
	"time"

	"cert-management-api/config"
	"cert-management-api/models"
	"cert-management-api/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ===== USER ADMIN CONTROLLERS (superadmin surface) =====

// GetUsers lists user accounts
func GetUsers(c *gin.Context) {
	query := config.DB.Model(&models.User{}).
		Preload("Company").
		Where("delete_at IS NULL")

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if companyID := c.Query("company_id"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	var users []models.User
	if err := query.Order("full_name ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"count":   len(users),
	})
}

// GetUser returns one user account
func GetUser(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	if err := config.DB.Preload("Company").
		Where("user_id = ? AND delete_at IS NULL", id).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

type userCreateRequest struct {
	FullName  string      `json:"full_name" binding:"required"`
	Email     string      `json:"email" binding:"required,email"`
	Password  string      `json:"password" binding:"required,min=8"`
	Role      models.Role `json:"role" binding:"required"`
	CompanyID *int        `json:"company_id"`
}

// CreateUser creates a user account
func CreateUser(c *gin.Context) {
	var req userCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if !req.Role.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unknown role"})
		return
	}

	// Contractors are always scoped to a company; admin roles never are.
	if req.Role == models.RoleContractor {
		if req.CompanyID == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Contractor accounts require a company"})
			return
		}
		var company models.Company
		if err := config.DB.Where("company_id = ? AND delete_at IS NULL", *req.CompanyID).
			First(&company).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
	} else {
		req.CompanyID = nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	user := models.User{
		FullName:  utils.SanitizeInput(req.FullName),
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		CompanyID: req.CompanyID,
		CreateAt:  &now,
		UpdateAt:  &now,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
	})
}

type userUpdateRequest struct {
	FullName  string      `json:"full_name" binding:"required"`
	Role      models.Role `json:"role" binding:"required"`
	CompanyID *int        `json:"company_id"`
}

// UpdateUser updates a user account
func UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", id).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if !req.Role.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unknown role"})
		return
	}
	if req.Role == models.RoleContractor && req.CompanyID == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Contractor accounts require a company"})
		return
	}
	if req.Role != models.RoleContractor {
		req.CompanyID = nil
	}

	now := time.Now()
	user.FullName = utils.SanitizeInput(req.FullName)
	user.Role = req.Role
	user.CompanyID = req.CompanyID
	user.UpdateAt = &now

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// DeleteUser soft deletes a user account
func DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	actorID, _ := c.Get("userID")
	if current, ok := actorID.(int); ok && current == id {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete your own account"})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", id).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	now := time.Now()
	user.DeleteAt = &now
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted",
	})
}
