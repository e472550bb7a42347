package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/studenthub/backend/internal/app/controllers"
	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	approvalController *controllers.ApprovalController,
	reportController *controllers.ReportController,
	studentController *controllers.StudentController,
	fileController *controllers.FileController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
	}

	// --- File routes ---
	// Downloads stay public so presigned-style URLs work without a token;
	// uploads go to keys issued by the presign step.
	files := v1.Group("/files")
	{
		files.GET("/*key", fileController.Download)
		files.PUT("/*key", fileController.Upload)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Review workflow routes, restricted to reviewers
		approvals := authenticated.Group("/approvals")
		approvals.Use(authMiddleware.RoleRequired(string(models.RoleFaculty), string(models.RoleAdmin)))
		{
			approvals.GET("/pending", approvalController.GetPending)
			approvals.GET("/:activityId", approvalController.GetActivity)
			approvals.POST("/:activityId/approve", approvalController.Approve)
			approvals.POST("/:activityId/reject", approvalController.Reject)
			approvals.POST("/:activityId/request-changes", approvalController.RequestChanges)
		}

		// Reporting routes, restricted to reviewers
		reports := authenticated.Group("/reports")
		reports.Use(authMiddleware.RoleRequired(string(models.RoleFaculty), string(models.RoleAdmin)))
		{
			reports.GET("/overview", reportController.GetOverview)
			reports.GET("/naac", reportController.GetNaac)
			reports.GET("/export", reportController.Export)
			reports.GET("/student/:id", reportController.GetStudentSummary)
		}

		// Student routes; per-record access is enforced in the controller
		students := authenticated.Group("/students")
		{
			students.GET("/:id", studentController.GetProfile)
			students.GET("/:id/activities", studentController.GetActivities)
			students.POST("/:id/activities", studentController.PostActivity)
			students.POST("/:id/portfolio", studentController.GeneratePortfolio)
			students.GET("/:id/notifications", studentController.GetNotifications)
		}
	}
}
