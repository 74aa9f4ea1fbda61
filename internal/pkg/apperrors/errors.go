package apperrors

import "errors"

// Resource errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrParentNotFound        = errors.New("parent not found")
	ErrConflictingParent     = errors.New("child already belongs to a different parent")
	ErrDepartmentMismatch    = errors.New("faculty and student belong to different departments")
	ErrInvalidEdge           = errors.New("invalid hierarchy edge")
)

// Achievement lifecycle errors
var (
	ErrAlreadyReviewed  = errors.New("achievement already reviewed")
	ErrInvalidDecision  = errors.New("invalid review decision")
	ErrInvalidCategory  = errors.New("invalid achievement category")
	ErrUnauthorized     = errors.New("reviewer is not authorized for this student")
	ErrRequestProcessed = errors.New("institute request already processed")
)

// Authentication and request errors
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenNotFound    = errors.New("token not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// NewResourceNotFoundError creates a NotFound error naming the missing entity.
func NewResourceNotFoundError(kind, id string) *CustomError {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: kind + " " + id + " not found",
		Details: map[string]interface{}{"kind": kind, "id": id},
	}
}

// NewParentNotFoundError is returned when a required parent is missing or soft-deleted.
func NewParentNotFoundError(kind, id string) *CustomError {
	return &CustomError{
		Err:     ErrParentNotFound,
		Message: "parent " + kind + " " + id + " not found or inactive",
		Details: map[string]interface{}{"kind": kind, "id": id},
	}
}

// NewConflictingParentError reports an attach that would overwrite another parent link.
func NewConflictingParentError(childID, currentParentID, attemptedParentID string) *CustomError {
	return &CustomError{
		Err:     ErrConflictingParent,
		Message: "child " + childID + " already belongs to " + currentParentID,
		Details: map[string]interface{}{
			"childId":           childID,
			"currentParentId":   currentParentID,
			"attemptedParentId": attemptedParentID,
		},
	}
}

// NewTransitionError reports a rejected achievement state change.
func NewTransitionError(err error, achievementID, from, to string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: err.Error() + ": " + achievementID,
		Details: map[string]interface{}{
			"achievementId": achievementID,
			"from":          from,
			"to":            to,
		},
	}
}

// NewValidationError wraps ErrValidationFailed with a message.
func NewValidationError(message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) *CustomError {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList.
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails merges context details into the error.
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	if e.Details == nil {
		e.Details = make(map[string]interface{}, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// DetailsOf returns the details attached to the first CustomError in err's chain.
func DetailsOf(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}
