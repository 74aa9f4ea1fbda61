package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
)

// BindJSON decodes the request body into obj. On failure the error response
// is written and false is returned. Unknown fields are rejected when
// binding.EnableDecoderDisallowUnknownFields is set.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleAPIError(c, bindError(err))
		return false
	}
	return true
}

// BindForm decodes a form or multipart body into obj.
func BindForm(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		HandleAPIError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	// validator errors are translated by HandleAPIError
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return err
	}
	return apperrors.NewCustomError(apperrors.ErrBadRequest, "Invalid request format").
		WithDetails(map[string]interface{}{"error": err.Error()})
}
