package routes

import (
	"cert-management-api/controllers"
	"cert-management-api/middleware"
	"cert-management-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)
			public.POST("/forgot-password", controllers.ForgotPassword)
			public.POST("/reset-password", controllers.ResetPassword)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Cert Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Companies (admin surface)
			companies := protected.Group("/companies")
			companies.Use(middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin))
			{
				companies.GET("", controllers.GetCompanies)
				companies.GET("/:id", controllers.GetCompany)
				companies.POST("", controllers.CreateCompany)
				companies.PUT("/:id", controllers.UpdateCompany)
				companies.DELETE("/:id", controllers.DeleteCompany)
			}

			// Personnel: contractors see and manage only their own company
			personnel := protected.Group("/personnel")
			{
				personnel.GET("", controllers.GetPersonnelList)
				personnel.GET("/:id", controllers.GetPersonnel)
				personnel.POST("", controllers.CreatePersonnel)
				personnel.PUT("/:id", controllers.UpdatePersonnel)
				personnel.DELETE("/:id",
					middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin),
					controllers.DeletePersonnel)
			}

			// Certificates: issuing is an admin operation
			certificates := protected.Group("/certificates")
			{
				certificates.GET("", controllers.GetCertificates)
				certificates.GET("/:id", controllers.GetCertificate)
				certificates.POST("",
					middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin),
					controllers.CreateCertificate)
				certificates.PUT("/:id",
					middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin),
					controllers.UpdateCertificate)
				certificates.DELETE("/:id",
					middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin),
					controllers.DeleteCertificate)
			}

			// User accounts (superadmin surface; admins may list)
			users := protected.Group("/users")
			{
				users.GET("",
					middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin),
					controllers.GetUsers)
				users.GET("/:id",
					middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin),
					controllers.GetUser)
				users.POST("", middleware.RequireRole(models.RoleSuperadmin), controllers.CreateUser)
				users.PUT("/:id", middleware.RequireRole(models.RoleSuperadmin), controllers.UpdateUser)
				users.DELETE("/:id", middleware.RequireRole(models.RoleSuperadmin), controllers.DeleteUser)
			}

			// Submissions: the review workflow
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)

				// Only contractors file submissions
				submissions.POST("",
					middleware.RequireRole(models.RoleContractor),
					controllers.CreateSubmission)

				// Only admin roles decide them
				submissions.POST("/:id/approve",
					middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin),
					controllers.ApproveSubmission)
				submissions.POST("/:id/reject",
					middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin),
					controllers.RejectSubmission)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetMyNotifications)
				notifications.GET("/unread-count", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", controllers.GetDashboardStats)
			}
		}
	}
}
