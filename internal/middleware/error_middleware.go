package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models/dto"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/validation"
)

type errorMapping struct {
	sentinel error
	status   int
	code     dto.ErrorCode
	message  string
}

// errorMappings is checked in order; the first sentinel in the chain wins
var errorMappings = []errorMapping{
	{apperrors.ErrParentNotFound, http.StatusUnprocessableEntity, dto.ErrorCodeParentNotFound, "Parent not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflictingParent, http.StatusConflict, dto.ErrorCodeConflictingParent, "Conflicting parent"},
	{apperrors.ErrDepartmentMismatch, http.StatusUnprocessableEntity, dto.ErrorCodeDepartmentMismatch, "Department mismatch"},
	{apperrors.ErrInvalidEdge, http.StatusBadRequest, dto.ErrorCodeInvalidEdge, "Invalid edge"},
	{apperrors.ErrAlreadyReviewed, http.StatusConflict, dto.ErrorCodeAlreadyReviewed, "Achievement already reviewed"},
	{apperrors.ErrInvalidDecision, http.StatusBadRequest, dto.ErrorCodeInvalidDecision, "Invalid decision"},
	{apperrors.ErrInvalidCategory, http.StatusBadRequest, dto.ErrorCodeInvalidCategory, "Invalid category"},
	{apperrors.ErrUnauthorized, http.StatusForbidden, dto.ErrorCodeReviewerUnauthorized, "Reviewer not authorized"},
	{apperrors.ErrRequestProcessed, http.StatusConflict, dto.ErrorCodeRequestProcessed, "Request already processed"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Authentication required"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, dto.ErrorCodeTimeout, "Request timed out"},
}

// HandleAPIError writes the error response for err. Domain errors keep their
// message and details; anything unrecognized is logged and reported as 500.
func HandleAPIError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		err = validation.FromFieldErrors(fieldErrs)
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)
		var ce *apperrors.CustomError
		if errors.As(err, &ce) {
			if ce.Message != "" {
				detail.Message = ce.Message
			}
			if len(ce.Details) > 0 {
				detail = detail.WithDetails(ce.Details)
			}
		}
		if m.status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		}
		c.JSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").WithSeverity(dto.ErrorSeverityCritical),
	))
}
