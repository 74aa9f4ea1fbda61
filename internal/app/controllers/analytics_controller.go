package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	appAuth "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
)

// AnalyticsController serves read-only rollups.
type AnalyticsController struct {
	analytics *services.AnalyticsService
	authz     *appAuth.AuthorizationService
}

// NewAnalyticsController creates a new AnalyticsController
func NewAnalyticsController(analytics *services.AnalyticsService, authz *appAuth.AuthorizationService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics, authz: authz}
}

func stats[T any](c *AnalyticsController, kind models.EntityKind, compute func(*gin.Context, string) (*T, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := mustClaims(ctx)
		if !ok {
			return
		}
		id := ctx.Param("id")
		if err := c.authz.RequireView(ctx, claims, models.Ref{Kind: kind, ID: id}); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		out, err := compute(ctx, id)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		respondOK(ctx, out, "Statistics retrieved successfully")
	}
}

// StudentStats godoc
// @Summary Student dashboard statistics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} dto.StructuredResponse{data=services.StudentStats}
// @Router /analytics/students/{id} [get]
func (c *AnalyticsController) StudentStats() gin.HandlerFunc {
	return stats(c, models.KindStudent, func(ctx *gin.Context, id string) (*services.StudentStats, error) {
		return c.analytics.StudentStats(ctx, id)
	})
}

// FacultyStats godoc
// @Summary Faculty dashboard statistics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Success 200 {object} dto.StructuredResponse{data=services.FacultyStats}
// @Router /analytics/faculties/{id} [get]
func (c *AnalyticsController) FacultyStats() gin.HandlerFunc {
	return stats(c, models.KindFaculty, func(ctx *gin.Context, id string) (*services.FacultyStats, error) {
		return c.analytics.FacultyStats(ctx, id)
	})
}

// DepartmentStats godoc
// @Summary Department statistics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Success 200 {object} dto.StructuredResponse{data=services.DepartmentStats}
// @Router /analytics/departments/{id} [get]
func (c *AnalyticsController) DepartmentStats() gin.HandlerFunc {
	return stats(c, models.KindDepartment, func(ctx *gin.Context, id string) (*services.DepartmentStats, error) {
		return c.analytics.DepartmentStats(ctx, id)
	})
}

// InstituteStats godoc
// @Summary Institute dashboard statistics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institute ID"
// @Success 200 {object} dto.StructuredResponse{data=services.InstituteStats}
// @Router /analytics/institutes/{id} [get]
func (c *AnalyticsController) InstituteStats() gin.HandlerFunc {
	return stats(c, models.KindInstitute, func(ctx *gin.Context, id string) (*services.InstituteStats, error) {
		return c.analytics.InstituteStats(ctx, id)
	})
}

// PlatformStats godoc
// @Summary Platform-wide statistics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=services.PlatformStats}
// @Router /analytics/platform [get]
func (c *AnalyticsController) PlatformStats(ctx *gin.Context) {
	out, err := c.analytics.PlatformStats(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, out, "Statistics retrieved successfully")
}

// PlatformGrowth godoc
// @Summary Platform growth series
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param window query string false "Window" Enums(7d, 30d, 90d, 1y)
// @Param cumulative query bool false "Running totals"
// @Success 200 {object} dto.StructuredResponse{data=services.PlatformGrowth}
// @Router /analytics/platform/growth [get]
func (c *AnalyticsController) PlatformGrowth(ctx *gin.Context) {
	window, cumulative, ok := windowParams(ctx)
	if !ok {
		return
	}
	out, err := c.analytics.PlatformGrowth(ctx, window, cumulative)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, out, "Growth retrieved successfully")
}

// SubmissionTrend godoc
// @Summary Submission trend for a scope
// @Description Without scopeKind the trend covers the whole platform and needs the superadmin role.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param scopeKind query string false "Scope kind" Enums(institute, department, faculty, student)
// @Param scopeId query string false "Scope ID"
// @Param window query string false "Window" Enums(7d, 30d, 90d, 1y)
// @Param status query string false "Only this status" Enums(Pending, Approved, Rejected)
// @Param cumulative query bool false "Running totals"
// @Success 200 {object} dto.StructuredResponse{data=services.TrendSeries}
// @Router /analytics/trend [get]
func (c *AnalyticsController) SubmissionTrend(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	window, cumulative, ok := windowParams(ctx)
	if !ok {
		return
	}

	scope := models.Ref{Kind: models.EntityKind(ctx.Query("scopeKind")), ID: ctx.Query("scopeId")}
	if scope.Kind == "" {
		if claims.Role != auth.RoleSuperAdmin {
			middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("platform trend requires the superadmin role"))
			return
		}
	} else if err := c.authz.RequireView(ctx, claims, scope); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out, err := c.analytics.SubmissionTrend(ctx, services.TrendQuery{
		Scope:      scope,
		Window:     window,
		Status:     models.AchievementStatus(ctx.Query("status")),
		Cumulative: cumulative,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, out, "Trend retrieved successfully")
}

func windowParams(ctx *gin.Context) (services.Window, bool, bool) {
	window, err := services.ParseWindow(ctx.Query("window"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false, false
	}
	cumulative := false
	if v := ctx.Query("cumulative"); v != "" {
		if cumulative, err = strconv.ParseBool(v); err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("cumulative must be a boolean"))
			return 0, false, false
		}
	}
	return window, cumulative, true
}
