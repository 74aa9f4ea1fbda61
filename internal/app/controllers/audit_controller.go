package controllers

import (
	"github.com/gin-gonic/gin"
	appAuth "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models/dto"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
)

// AuditController runs the hierarchy consistency audit.
type AuditController struct {
	hierarchy *services.HierarchyService
	analytics *services.AnalyticsService
	authz     *appAuth.AuthorizationService
}

// NewAuditController creates a new AuditController
func NewAuditController(hierarchy *services.HierarchyService, analytics *services.AnalyticsService, authz *appAuth.AuthorizationService) *AuditController {
	return &AuditController{hierarchy: hierarchy, analytics: analytics, authz: authz}
}

// scope resolves the audit scope. Institute accounts are pinned to their own
// institute; only the superadmin may audit everything.
func (c *AuditController) scope(ctx *gin.Context) (services.AuditScope, bool) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return services.AuditScope{}, false
	}
	var req dto.AuditRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return services.AuditScope{}, false
	}
	if q := ctx.Query("instituteId"); q != "" {
		req.InstituteID = q
	}

	if claims.Role == auth.RoleInstitute {
		if req.InstituteID == "" {
			req.InstituteID = claims.SubjectID
		}
		if req.InstituteID != claims.SubjectID {
			middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("institutes can only audit themselves"))
			return services.AuditScope{}, false
		}
	}
	return services.AuditScope{InstituteID: req.InstituteID}, true
}

// Verify godoc
// @Summary Verify hierarchy consistency
// @Description Walks every edge in scope and reports invariant violations without writing.
// @Tags audit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AuditRequest false "Scope"
// @Success 200 {object} dto.StructuredResponse{data=services.ConsistencyReport}
// @Failure 403 {object} dto.ErrorResponse
// @Router /audit/verify [post]
func (c *AuditController) Verify(ctx *gin.Context) {
	scope, ok := c.scope(ctx)
	if !ok {
		return
	}
	report, err := c.hierarchy.VerifyConsistency(ctx, scope)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, report, "Consistency check completed")
}

// Repair godoc
// @Summary Repair hierarchy consistency
// @Description Applies the deterministic fixes for reported violations and lists the ones left for an operator.
// @Tags audit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AuditRequest false "Scope"
// @Success 200 {object} dto.StructuredResponse{data=services.RepairResult}
// @Router /audit/repair [post]
func (c *AuditController) Repair(ctx *gin.Context) {
	scope, ok := c.scope(ctx)
	if !ok {
		return
	}
	result, err := c.hierarchy.Repair(ctx, scope)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if len(result.Applied) > 0 {
		logger.Info().Str("scope", result.Scope).Int("applied", len(result.Applied)).Int("skipped", len(result.Skipped)).Msg("Hierarchy repaired")
		refs := make([]models.Ref, 0, len(result.Applied))
		for _, v := range result.Applied {
			refs = append(refs, v.Subject)
		}
		c.analytics.Invalidate(ctx, refs...)
	}
	respondOK(ctx, result, "Repair completed")
}
