package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/controllers"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models/dto"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/websocket"
)

// Controllers groups every controller the router needs
type Controllers struct {
	Hierarchy        *controllers.HierarchyController
	Achievement      *controllers.AchievementController
	Analytics        *controllers.AnalyticsController
	Audit            *controllers.AuditController
	InstituteRequest *controllers.InstituteRequestController
	Import           *controllers.ImportController
	WebSocket        *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/institute-requests", c.InstituteRequest.Submit)
	v1.GET("/achievements/categories", c.Achievement.Categories)
	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewStructuredResponse(gin.H{"status": "ok"}, "Service is healthy"))
	})

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	superAdmin := authMiddleware.RoleRequired(auth.RoleSuperAdmin)
	admins := authMiddleware.RoleRequired(auth.RoleSuperAdmin, auth.RoleInstitute)

	// Institute registration review
	requests := authenticated.Group("/institute-requests", superAdmin)
	{
		requests.GET("", c.InstituteRequest.List)
		requests.GET("/:id", c.InstituteRequest.Get)
		requests.POST("/:id/approve", c.InstituteRequest.Approve)
		requests.POST("/:id/reject", c.InstituteRequest.Reject)
	}

	// Hierarchy
	institutes := authenticated.Group("/institutes")
	{
		institutes.GET("", superAdmin, c.Hierarchy.ListInstitutes)
		institutes.GET("/:id", c.Hierarchy.GetInstitute())
		institutes.GET("/:id/colleges", c.Hierarchy.ListColleges())
		institutes.DELETE("/:id", superAdmin, c.Hierarchy.Deactivate(models.KindInstitute))
	}

	colleges := authenticated.Group("/colleges")
	{
		colleges.POST("", admins, c.Hierarchy.CreateCollege)
		colleges.GET("/:id", c.Hierarchy.GetCollege())
		colleges.GET("/:id/departments", c.Hierarchy.ListDepartments())
		colleges.DELETE("/:id", admins, c.Hierarchy.Deactivate(models.KindCollege))
	}

	departments := authenticated.Group("/departments")
	{
		departments.POST("", admins, c.Hierarchy.CreateDepartment)
		departments.GET("/:id", c.Hierarchy.GetDepartment())
		departments.GET("/:id/faculties", c.Hierarchy.ListFaculties())
		departments.GET("/:id/students", c.Hierarchy.ListStudents())
		departments.PUT("/:id/hod", admins, c.Hierarchy.AssignHOD)
		departments.DELETE("/:id", admins, c.Hierarchy.Deactivate(models.KindDepartment))
	}

	faculties := authenticated.Group("/faculties")
	{
		faculties.POST("", admins, c.Hierarchy.CreateFaculty)
		faculties.GET("/:id", c.Hierarchy.GetFaculty())
		faculties.DELETE("/:id", admins, c.Hierarchy.Deactivate(models.KindFaculty))
	}

	students := authenticated.Group("/students")
	{
		students.POST("", admins, c.Hierarchy.CreateStudent)
		students.GET("/:id", c.Hierarchy.GetStudent())
		students.PATCH("/:id/academics", admins, c.Hierarchy.UpdateAcademics)
		students.DELETE("/:id", admins, c.Hierarchy.Deactivate(models.KindStudent))

		students.GET("/:id/achievements", c.Achievement.ListForStudent)
		students.POST("/:id/achievements/:achievementId/review",
			authMiddleware.RoleRequired(auth.RoleFaculty), c.Achievement.Review)
	}

	hierarchy := authenticated.Group("/hierarchy", admins)
	{
		hierarchy.POST("/attach", c.Hierarchy.AttachChild)
		hierarchy.POST("/detach", c.Hierarchy.DetachChild)
		hierarchy.POST("/reassign", c.Hierarchy.Reassign)
	}

	authenticated.POST("/import", admins, c.Import.Import)

	audit := authenticated.Group("/audit", admins)
	{
		audit.POST("/verify", c.Audit.Verify)
		audit.POST("/repair", c.Audit.Repair)
	}

	// Achievements
	authenticated.POST("/achievements", authMiddleware.RoleRequired(auth.RoleStudent), c.Achievement.Submit)
	authenticated.GET("/reviews/pending", authMiddleware.RoleRequired(auth.RoleFaculty), c.Achievement.PendingQueue)

	// Analytics
	analytics := authenticated.Group("/analytics")
	{
		analytics.GET("/students/:id", c.Analytics.StudentStats())
		analytics.GET("/faculties/:id", c.Analytics.FacultyStats())
		analytics.GET("/departments/:id", c.Analytics.DepartmentStats())
		analytics.GET("/institutes/:id", c.Analytics.InstituteStats())
		analytics.GET("/platform", superAdmin, c.Analytics.PlatformStats)
		analytics.GET("/platform/growth", superAdmin, c.Analytics.PlatformGrowth)
		analytics.GET("/trend", c.Analytics.SubmissionTrend)
	}

	// Live review feed
	authenticated.GET("/ws/feed", c.WebSocket.HandleConnection)
}
