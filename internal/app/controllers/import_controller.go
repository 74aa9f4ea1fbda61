package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	appAuth "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
)

// ImportController accepts bulk faculty and student imports.
type ImportController struct {
	importer  *services.BulkImportService
	analytics *services.AnalyticsService
	authz     *appAuth.AuthorizationService
}

// NewImportController creates a new ImportController
func NewImportController(importer *services.BulkImportService, analytics *services.AnalyticsService, authz *appAuth.AuthorizationService) *ImportController {
	return &ImportController{importer: importer, analytics: analytics, authz: authz}
}

// Import godoc
// @Summary Bulk import faculty and students
// @Description Body is newline-delimited JSON, one record per line: {"kind":"faculty","faculty":{...}} or {"kind":"student","student":{...},"coordinatorCode":"..."}. Failing records are reported and skipped.
// @Tags hierarchy
// @Accept application/x-ndjson
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=services.ImportResult}
// @Router /import [post]
func (c *ImportController) Import(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}

	touched := map[string]bool{}
	guard := func(gctx context.Context, departmentID string) error {
		ref := models.Ref{Kind: models.KindDepartment, ID: departmentID}
		if err := c.authz.RequireManage(gctx, claims, ref); err != nil {
			return err
		}
		touched[departmentID] = true
		return nil
	}

	result, err := c.importer.ImportGuarded(ctx, services.DecodeRecords(ctx, ctx.Request.Body), guard)

	refs := make([]models.Ref, 0, len(touched))
	for id := range touched {
		refs = append(refs, models.Ref{Kind: models.KindDepartment, ID: id})
	}
	if claims.Role == auth.RoleInstitute {
		refs = append(refs, models.Ref{Kind: models.KindInstitute, ID: claims.SubjectID})
	}
	c.analytics.Invalidate(ctx, refs...)

	if err != nil {
		logger.Warn().Err(err).Int("students", len(result.Students)).Msg("Bulk import interrupted")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Import finished")
}
