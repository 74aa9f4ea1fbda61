package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
)

type sample struct {
	Code  string  `validate:"required,code,max=10"`
	Email string  `validate:"required,email"`
	GPA   float64 `validate:"gte=0,lte=10"`
}

func TestStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, Struct(sample{Code: "CSE01", Email: "a@b.edu", GPA: 8.2}))
}

func TestStructReportsEveryField(t *testing.T) {
	err := Struct(sample{Code: "cse", Email: "nope", GPA: 11})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	details := apperrors.DetailsOf(err)
	assert.Equal(t, "Code must contain only uppercase letters and digits", details["Code"])
	assert.Equal(t, "Email must be a valid email address", details["Email"])
	assert.Equal(t, "GPA must be at most 10", details["GPA"])
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "CSE", NormalizeCode("  cse "))
	assert.Equal(t, "a@b.edu", NormalizeEmail(" A@B.edu "))
}
