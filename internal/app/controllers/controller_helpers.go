package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models/dto"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/helpers"
)

// mustClaims returns the caller's claims or writes a 401 and returns false.
func mustClaims(ctx *gin.Context) (*auth.Claims, bool) {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenNotFound)
		return nil, false
	}
	return claims, true
}

func respondOK(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(data, message))
}

func respondCreated(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(data, message))
}

func respondPage[T any](ctx *gin.Context, items []T, message string) {
	page, size := helpers.ParsePaginationParams(ctx)
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(helpers.Paginate(items, page, size), message))
}
