package email

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredSMTPOnlyLogs(t *testing.T) {
	svc := NewEmailService(SMTPConfig{Host: "smtp.invalid", Port: 587}, zerolog.Nop())

	assert.NoError(t, svc.SendInstituteApproval("admin@inst.edu", "Head", "ABC1231234", "tmp"))
	assert.NoError(t, svc.SendInstituteRejection("admin@inst.edu", "Head", "incomplete"))
}
