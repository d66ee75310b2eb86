package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cert-management-api/config"
	"cert-management-api/models"
	"cert-management-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	passwordResetTokenTTL  = 10 * time.Minute
	passwordResetTokenType = "password_reset"
)

// Seams for tests; production always uses the defaults.
var (
	passwordResetTokenGenerator = generateResetToken
	sendMailFunc                = config.SendMail
)

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func resetFailure(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// ForgotPassword issues a reset token and mails the reset link. The
// response is the same whether or not the address belongs to an account.
func ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resetFailure(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	req.Email = utils.SanitizeInput(req.Email)
	if !utils.ValidateEmail(req.Email) {
		resetFailure(c, http.StatusBadRequest, "Invalid email format")
		return
	}

	neutralOK := gin.H{
		"success": true,
		"message": "If the email exists, a reset link has been sent.",
	}

	var user models.User
	if err := config.DB.Where("email = ? AND delete_at IS NULL", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, neutralOK)
			return
		}
		resetFailure(c, http.StatusInternalServerError, "Failed to process request")
		return
	}

	rawToken, err := passwordResetTokenGenerator()
	if err != nil {
		resetFailure(c, http.StatusInternalServerError, "Failed to create reset token")
		return
	}

	// Only a bcrypt hash of the token is stored; the raw value lives in
	// the email alone.
	hashedToken, err := utils.HashPassword(rawToken)
	if err != nil {
		resetFailure(c, http.StatusInternalServerError, "Failed to secure reset token")
		return
	}

	now := time.Now()
	if err := revokeResetTokens(user.UserID, now); err != nil {
		resetFailure(c, http.StatusInternalServerError, "Failed to prepare reset token")
		return
	}

	token := models.UserToken{
		UserID:    user.UserID,
		TokenType: passwordResetTokenType,
		Token:     hashedToken,
		ExpiresAt: now.Add(passwordResetTokenTTL),
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := config.DB.Create(&token).Error; err != nil {
		resetFailure(c, http.StatusInternalServerError, "Failed to store reset token")
		return
	}

	if err := sendPasswordResetEmail(user, rawToken); err != nil {
		resetFailure(c, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	c.JSON(http.StatusOK, neutralOK)
}

// ResetPassword consumes a token from the reset email and sets the new
// password. Tokens are single use.
func ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resetFailure(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	req.Token = utils.SanitizeInput(req.Token)
	req.NewPassword = utils.SanitizeInput(req.NewPassword)
	req.ConfirmPassword = utils.SanitizeInput(req.ConfirmPassword)

	switch {
	case req.Token == "":
		resetFailure(c, http.StatusBadRequest, "Token is required")
		return
	case req.NewPassword != req.ConfirmPassword:
		resetFailure(c, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if ok, msg := utils.ValidatePassword(req.NewPassword); !ok {
		resetFailure(c, http.StatusBadRequest, msg)
		return
	}

	now := time.Now()
	record, err := matchResetToken(req.Token, now)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			resetFailure(c, http.StatusBadRequest, "Invalid or expired token")
			return
		}
		resetFailure(c, http.StatusInternalServerError, "Failed to verify token")
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		resetFailure(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	err = config.DB.Model(&models.User{}).
		Where("user_id = ?", record.UserID).
		Updates(map[string]interface{}{
			"password":  hashed,
			"update_at": now,
		}).Error
	if err != nil {
		resetFailure(c, http.StatusInternalServerError, "Failed to update password")
		return
	}

	if err := revokeResetTokens(record.UserID, now); err != nil {
		resetFailure(c, http.StatusInternalServerError, "Failed to finalize reset")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated successfully",
	})
}

// revokeResetTokens expires every outstanding reset token for the user.
func revokeResetTokens(userID int, now time.Time) error {
	return config.DB.Model(&models.UserToken{}).
		Where("user_id = ? AND token_type = ? AND is_revoked = ?", userID, passwordResetTokenType, false).
		Updates(map[string]interface{}{
			"is_revoked": true,
			"expires_at": now,
			"updated_at": now,
		}).Error
}

// matchResetToken finds the live token whose stored hash matches rawToken.
// The table holds hashes, so every candidate has to be checked.
func matchResetToken(rawToken string, now time.Time) (*models.UserToken, error) {
	var candidates []models.UserToken
	err := config.DB.
		Where("token_type = ? AND is_revoked = ? AND expires_at > ?", passwordResetTokenType, false, now).
		Order("created_at DESC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if utils.CheckPasswordHash(rawToken, candidates[i].Token) {
			return &candidates[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func sendPasswordResetEmail(user models.User, rawToken string) error {
	baseURL := strings.TrimSpace(os.Getenv("APP_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	resetURL, err := buildResetURL(baseURL, rawToken)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(user.FullName)
	if name == "" {
		name = "there"
	}

	link := template.HTMLEscapeString(resetURL)
	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We received a request to reset the password for your certification management account.</p>
<p><a href="%s">Reset your password</a></p>
<p>The link expires in %d minutes. If you did not request this, you can ignore this email.</p>
<p>If the link does not work, copy this URL into your browser:<br />%s</p>`,
		template.HTMLEscapeString(name), link, int(passwordResetTokenTTL.Minutes()), link,
	)

	return sendMailFunc([]string{user.Email}, "Password reset instructions", html)
}

func buildResetURL(baseURL, token string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/reset-password"
	q := parsed.Query()
	q.Set("token", token)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
