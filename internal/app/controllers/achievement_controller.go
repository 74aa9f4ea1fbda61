package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appAuth "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models/dto"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/helpers"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
)

// AchievementController handles achievement submission and review.
type AchievementController struct {
	achievements *services.AchievementService
	authz        *appAuth.AuthorizationService
}

// NewAchievementController creates a new AchievementController
func NewAchievementController(achievements *services.AchievementService, authz *appAuth.AuthorizationService) *AchievementController {
	return &AchievementController{achievements: achievements, authz: authz}
}

// Submit godoc
// @Summary Submit an achievement
// @Description Records a Pending achievement for the authenticated student with an optional certificate.
// @Tags achievements
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param category formData string true "Category" Enums(Workshop, Conference, Hackathon, Internship, Course, Competition, CommunityService, Leadership, Clubs, Volunteering)
// @Param organization formData string false "Organization"
// @Param description formData string false "Description"
// @Param dateCompleted formData string false "Completion date (YYYY-MM-DD)"
// @Param certificate formData file false "Certificate"
// @Success 201 {object} dto.StructuredResponse{data=models.Achievement}
// @Failure 400 {object} dto.ErrorResponse "Invalid category or form"
// @Router /achievements [post]
func (c *AchievementController) Submit(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var form dto.SubmitAchievementForm
	if !middleware.BindForm(ctx, &form) {
		return
	}
	completed, err := helpers.ParseOptionalDate(form.DateCompleted)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("dateCompleted must be YYYY-MM-DD"))
		return
	}

	in := services.AchievementInput{
		Title:         form.Title,
		Category:      models.Category(form.Category),
		Organization:  form.Organization,
		Description:   form.Description,
		DateCompleted: completed,
	}

	var cert *services.Certificate
	header, err := ctx.FormFile("certificate")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrBadRequest, "Invalid certificate upload"))
		return
	default:
		file, err := header.Open()
		if err != nil {
			logger.Error().Err(err).Str("filename", header.Filename).Msg("Error opening uploaded certificate")
			middleware.HandleAPIError(ctx, err)
			return
		}
		defer file.Close()
		cert = &services.Certificate{Filename: header.Filename, Content: file}
	}

	achievement, err := c.achievements.Submit(ctx, claims.SubjectID, in, cert)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, achievement, "Achievement submitted for review")
}

// ListForStudent godoc
// @Summary List a student's achievements
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param status query string false "Filter by status" Enums(Pending, Approved, Rejected)
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse}
// @Router /students/{id}/achievements [get]
func (c *AchievementController) ListForStudent(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	studentID := ctx.Param("id")
	if err := c.authz.RequireView(ctx, claims, models.Ref{Kind: models.KindStudent, ID: studentID}); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := models.AchievementStatus(ctx.Query("status"))
	switch status {
	case "", models.AchievementPending, models.AchievementApproved, models.AchievementRejected:
	default:
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("status must be Pending, Approved or Rejected"))
		return
	}

	items, err := c.achievements.StudentAchievements(ctx, studentID, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, "Achievements retrieved successfully")
}

// Review godoc
// @Summary Approve or reject an achievement
// @Description Exactly one review succeeds per achievement; later attempts fail with ACH_001.
// @Tags achievements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param achievementId path string true "Achievement ID"
// @Param request body dto.ReviewAchievementRequest true "Decision"
// @Success 200 {object} dto.StructuredResponse{data=models.Achievement}
// @Failure 403 {object} dto.ErrorResponse "Faculty may not review this student"
// @Failure 409 {object} dto.ErrorResponse "Already reviewed"
// @Router /students/{id}/achievements/{achievementId}/review [post]
func (c *AchievementController) Review(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var req dto.ReviewAchievementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	achievement, err := c.achievements.Review(ctx, services.ReviewInput{
		FacultyID:     claims.SubjectID,
		StudentID:     ctx.Param("id"),
		AchievementID: ctx.Param("achievementId"),
		Decision:      req.Decision,
		Comment:       req.Comment,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, achievement, "Achievement "+string(achievement.Status))
}

// PendingQueue godoc
// @Summary List achievements waiting for the caller's review
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse}
// @Router /reviews/pending [get]
func (c *AchievementController) PendingQueue(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	items, err := c.achievements.PendingQueue(ctx, claims.SubjectID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, "Pending reviews retrieved successfully")
}

// Categories godoc
// @Summary List achievement categories
// @Tags achievements
// @Produce json
// @Success 200 {object} dto.StructuredResponse{data=[]models.Category}
// @Router /achievements/categories [get]
func (c *AchievementController) Categories(ctx *gin.Context) {
	respondOK(ctx, models.Categories, "Categories retrieved successfully")
}
