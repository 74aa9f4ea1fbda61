package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models/dto"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestHandleAPIErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.NewParentNotFoundError("department", "d1"), http.StatusUnprocessableEntity, dto.ErrorCodeParentNotFound},
		{apperrors.NewResourceNotFoundError("student", "s1"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.NewConflictingParentError("s1", "f1", "f2"), http.StatusConflict, dto.ErrorCodeConflictingParent},
		{apperrors.ErrDepartmentMismatch, http.StatusUnprocessableEntity, dto.ErrorCodeDepartmentMismatch},
		{apperrors.NewTransitionError(apperrors.ErrAlreadyReviewed, "a1", "Approved", "Rejected"), http.StatusConflict, dto.ErrorCodeAlreadyReviewed},
		{apperrors.ErrInvalidDecision, http.StatusBadRequest, dto.ErrorCodeInvalidDecision},
		{apperrors.ErrUnauthorized, http.StatusForbidden, dto.ErrorCodeReviewerUnauthorized},
		{apperrors.NewValidationError("name is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleAPIError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.code, decodeError(t, w).Error.Code, tc.err.Error())
	}
}

func TestHandleAPIErrorKeepsDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.NewConflictingParentError("s1", "f1", "f2"))

	resp := decodeError(t, w)
	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "f1", details["currentParentId"])
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	m := NewAuthMiddleware(jwtService)

	router := gin.New()
	router.GET("/me", m.JWTAuth(), m.RoleRequired(auth.RoleFaculty), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.SubjectID)
	})
	return router, jwtService
}

func TestJWTAuth(t *testing.T) {
	router, jwtService := newAuthRouter(t)

	facultyToken, _, err := jwtService.GenerateToken("f1", "f1@test.edu", auth.RoleFaculty)
	require.NoError(t, err)
	studentToken, _, err := jwtService.GenerateToken("s1", "s1@test.edu", auth.RoleStudent)
	require.NoError(t, err)

	do := func(header, query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me"+query, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do("Bearer "+facultyToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "f1", w.Body.String())

	assert.Equal(t, http.StatusOK, do("", "?token="+facultyToken).Code)

	w = do("", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeTokenNotFound, decodeError(t, w).Error.Code)

	w = do("Bearer not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)

	w = do("Bearer "+studentToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: -time.Minute})
	m := NewAuthMiddleware(jwtService)
	router := gin.New()
	router.GET("/me", m.JWTAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	token, _, err := jwtService.GenerateToken("f1", "f1@test.edu", auth.RoleFaculty)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Error.Code)
}
