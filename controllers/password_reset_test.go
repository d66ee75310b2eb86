package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cert-management-api/config"
	"cert-management-api/models"
	"cert-management-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPasswordResetTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.UserToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db

	router := gin.New()
	router.POST("/forgot-password", ForgotPassword)
	router.POST("/reset-password", ResetPassword)
	return router
}

func TestPasswordResetFlow(t *testing.T) {
	router := setupPasswordResetTest(t)

	var sentTo []string
	var sentBody string
	origSend := sendMailFunc
	origGen := passwordResetTokenGenerator
	sendMailFunc = func(to []string, subject, html string) error {
		sentTo = to
		sentBody = html
		return nil
	}
	passwordResetTokenGenerator = func() (string, error) {
		return "fixed-test-token", nil
	}
	defer func() {
		sendMailFunc = origSend
		passwordResetTokenGenerator = origGen
	}()

	hashed, err := utils.HashPassword("old-password")
	require.NoError(t, err)
	user := models.User{FullName: "Carl Contractor", Email: "carl@acme.test", Password: hashed, Role: models.RoleContractor}
	require.NoError(t, config.DB.Create(&user).Error)

	// Request a reset link.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/forgot-password", strings.NewReader(`{"email":"carl@acme.test"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, []string{"carl@acme.test"}, sentTo)
	assert.Contains(t, sentBody, "fixed-test-token")

	// The stored token is hashed, never the raw value.
	var token models.UserToken
	require.NoError(t, config.DB.First(&token).Error)
	assert.NotEqual(t, "fixed-test-token", token.Token)
	assert.True(t, utils.CheckPasswordHash("fixed-test-token", token.Token))

	// Use the token.
	w = httptest.NewRecorder()
	body := `{"token":"fixed-test-token","new_password":"brand-new-pass","confirm_password":"brand-new-pass"}`
	req = httptest.NewRequest(http.MethodPost, "/reset-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.User
	require.NoError(t, config.DB.First(&updated, user.UserID).Error)
	assert.True(t, utils.CheckPasswordHash("brand-new-pass", updated.Password))

	// Tokens are single use.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/reset-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForgotPasswordUnknownEmailDoesNotLeak(t *testing.T) {
	router := setupPasswordResetTest(t)

	called := false
	origSend := sendMailFunc
	sendMailFunc = func(to []string, subject, html string) error {
		called = true
		return nil
	}
	defer func() { sendMailFunc = origSend }()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/forgot-password", strings.NewReader(`{"email":"nobody@nowhere.test"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, called, "no email for unknown accounts")
}

func TestResetPasswordValidation(t *testing.T) {
	router := setupPasswordResetTest(t)

	// Mismatched confirmation.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reset-password", strings.NewReader(`{"token":"t","new_password":"abcdefgh","confirm_password":"different"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Too-short password.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/reset-password", strings.NewReader(`{"token":"t","new_password":"short","confirm_password":"short"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
