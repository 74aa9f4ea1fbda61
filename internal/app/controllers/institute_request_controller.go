package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models/dto"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
)

// InstituteRequestController handles institute registration requests.
type InstituteRequestController struct {
	requests  *services.InstituteRequestService
	analytics *services.AnalyticsService
}

// NewInstituteRequestController creates a new InstituteRequestController
func NewInstituteRequestController(requests *services.InstituteRequestService, analytics *services.AnalyticsService) *InstituteRequestController {
	return &InstituteRequestController{requests: requests, analytics: analytics}
}

// Submit godoc
// @Summary Apply for institute registration
// @Tags institute-requests
// @Accept json
// @Produce json
// @Param request body services.InstituteRequestInput true "Application"
// @Success 201 {object} dto.StructuredResponse{data=models.InstituteRequest}
// @Failure 409 {object} dto.ErrorResponse "Email or AISHE code already registered"
// @Router /institute-requests [post]
func (c *InstituteRequestController) Submit(ctx *gin.Context) {
	var in services.InstituteRequestInput
	if !middleware.BindJSON(ctx, &in) {
		return
	}
	req, err := c.requests.Submit(ctx, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, req, "Institute request submitted")
}

// List godoc
// @Summary List institute requests
// @Tags institute-requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(Pending, Approved, Rejected)
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse}
// @Router /institute-requests [get]
func (c *InstituteRequestController) List(ctx *gin.Context) {
	items, err := c.requests.List(ctx, models.ApprovalStatus(ctx.Query("status")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, "Institute requests retrieved successfully")
}

// Get godoc
// @Summary Get an institute request
// @Tags institute-requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} dto.StructuredResponse{data=models.InstituteRequest}
// @Failure 404 {object} dto.ErrorResponse
// @Router /institute-requests/{id} [get]
func (c *InstituteRequestController) Get(ctx *gin.Context) {
	req, err := c.requests.Get(ctx, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, req, "Institute request retrieved successfully")
}

// Approve godoc
// @Summary Approve an institute request
// @Description Creates the institute and mails its login code and temporary password.
// @Tags institute-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body dto.ReviewInstituteRequest false "Comment"
// @Success 200 {object} dto.StructuredResponse{data=models.Institute}
// @Failure 409 {object} dto.ErrorResponse "Request already reviewed"
// @Router /institute-requests/{id}/approve [post]
func (c *InstituteRequestController) Approve(ctx *gin.Context) {
	var req dto.ReviewInstituteRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return
	}
	institute, err := c.requests.Approve(ctx, ctx.Param("id"), req.Comment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.analytics.Invalidate(ctx)
	respondOK(ctx, institute, "Institute request approved")
}

// Reject godoc
// @Summary Reject an institute request
// @Tags institute-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body dto.ReviewInstituteRequest true "Comment"
// @Success 200 {object} dto.StructuredResponse{data=models.InstituteRequest}
// @Failure 400 {object} dto.ErrorResponse "Comment missing"
// @Router /institute-requests/{id}/reject [post]
func (c *InstituteRequestController) Reject(ctx *gin.Context) {
	var req dto.ReviewInstituteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	rejected, err := c.requests.Reject(ctx, ctx.Param("id"), req.Comment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rejected, "Institute request rejected")
}
