package routes

import (
	"net/http"
	"os"

	"student-application-api/controllers"
	"student-application-api/middleware"
	"student-application-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Student Application API is running",
				})
			})
		}

		// Internal worker callbacks, authenticated by service token rather
		// than a user JWT.
		internal := v1.Group("/internal")
		internal.Use(serviceTokenMiddleware())
		{
			internal.PATCH("/documents/:document_id/ocr", controllers.RecordOCRResult)
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Reference data
			protected.GET("/course-offerings", controllers.GetCourseOfferings)
			protected.GET("/document-types", controllers.GetDocumentTypes)
			protected.GET("/steps", controllers.GetStepCatalog)

			// Applications
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.GET("/:id/timeline", controllers.GetTimeline)

				applications.POST("", controllers.CreateApplication)
				applications.PATCH("/:id/steps/:step/:name", controllers.UpdateStep)
				applications.POST("/:id/submit", controllers.SubmitApplication)
				applications.POST("/:id/withdraw", controllers.WithdrawApplication)
				applications.POST("/:id/offer/sign", controllers.SignOffer)

				// Documents
				applications.POST("/:id/documents", controllers.UploadDocument)
				applications.GET("/:id/documents", controllers.GetDocuments)
			}

			protected.GET("/documents/:document_id/download", controllers.DownloadDocument)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Staff review pipeline
			staff := protected.Group("/staff")
			staff.Use(middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
			{
				staff.PATCH("/applications/:id/transition", controllers.TransitionApplication)
				staff.POST("/applications/:id/assign", controllers.AssignApplication)
				staff.POST("/applications/:id/request-documents", controllers.RequestDocuments)
				staff.POST("/applications/:id/approve", controllers.ApproveApplication)
				staff.POST("/applications/:id/reject", controllers.RejectApplication)
				staff.POST("/applications/:id/gs-assessment", controllers.RecordGSAssessment)
				staff.POST("/applications/:id/enroll", controllers.EnrollApplication)
				staff.POST("/applications/:id/comments", controllers.AddComment)

				staff.PATCH("/documents/:document_id/verify", controllers.VerifyDocument)

				staff.GET("/dashboard/stats", controllers.GetDashboardStats)
			}
		}
	}
}

// serviceTokenMiddleware gates worker callbacks with a shared secret.
func serviceTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := os.Getenv("SERVICE_TOKEN")
		if token == "" || c.GetHeader("X-Service-Token") != token {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
