package services

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
)

type sentMail struct {
	to, name, code, password, reason string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) SendInstituteApproval(toEmail, toName, instituteCode, tempPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: toEmail, name: toName, code: instituteCode, password: tempPassword})
	return nil
}

func (m *recordingMailer) SendInstituteRejection(toEmail, toName, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: toEmail, name: toName, reason: reason})
	return nil
}

func newRequestService(t *testing.T) (*InstituteRequestService, *repositories.MemoryStore, *recordingMailer) {
	t.Helper()
	store := repositories.NewMemoryStore()
	mailer := &recordingMailer{}
	clock := func() time.Time { return time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC) }
	return NewInstituteRequestService(store, mailer, clock), store, mailer
}

func validRequest() InstituteRequestInput {
	return InstituteRequestInput{
		Name:      "Government Engineering College",
		AisheCode: "c-12345",
		Type:      "College",
		Email:     "Principal@GEC.edu.in ",
		HeadName:  "Dr. Rao",
	}
}

func TestInstituteCodeFormat(t *testing.T) {
	code, err := InstituteCode("Government Engineering College", "c-12345")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^GOVC12[1-9][0-9]{3}$`), code)

	code, err = InstituteCode("St. Xavier's", "u-0042")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "STXU00"))
}

func TestSubmitInstituteRequest(t *testing.T) {
	svc, _, _ := newRequestService(t)
	ctx := context.Background()

	req, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, req.Status)
	assert.Equal(t, "principal@gec.edu.in", req.Email)
	assert.Equal(t, "C-12345", req.AisheCode)

	dup := validRequest()
	dup.Email = "other@gec.edu.in"
	_, err = svc.Submit(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	bad := validRequest()
	bad.Email = "nope"
	_, err = svc.Submit(ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	pending, err := svc.List(ctx, models.ApprovalPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.List(ctx, models.ApprovalStatus("Unknown"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestApproveCreatesExactlyOneInstitute(t *testing.T) {
	svc, store, mailer := newRequestService(t)
	ctx := context.Background()
	req, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	inst, err := svc.Approve(ctx, req.ID, "verified")
	require.NoError(t, err)
	assert.True(t, inst.IsActive())
	assert.Equal(t, "principal@gec.edu.in", inst.Email)
	require.NotNil(t, inst.ApprovedAt)

	_, err = svc.Approve(ctx, req.ID, "again")
	assert.ErrorIs(t, err, apperrors.ErrRequestProcessed)

	institutes, err := store.ListInstitutes(ctx)
	require.NoError(t, err)
	require.Len(t, institutes, 1)

	stored, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, stored.Status)
	assert.Equal(t, inst.ID, stored.InstituteID)
	assert.NotNil(t, stored.ReviewedAt)

	require.Len(t, mailer.sent, 1)
	mail := mailer.sent[0]
	assert.Equal(t, inst.Code, mail.code)
	assert.Equal(t, "Dr. Rao", mail.name)
	assert.True(t, auth.CheckPassword(institutes[0].TempPasswordHash, mail.password))
	assert.NotEqual(t, mail.password, institutes[0].TempPasswordHash)
}

func TestRejectRequiresCommentAndPending(t *testing.T) {
	svc, store, mailer := newRequestService(t)
	ctx := context.Background()
	req, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	_, err = svc.Reject(ctx, req.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	rejected, err := svc.Reject(ctx, req.ID, "AISHE code could not be verified")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, rejected.Status)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "AISHE code could not be verified", mailer.sent[0].reason)

	_, err = svc.Approve(ctx, req.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrRequestProcessed)
	_, err = svc.Reject(ctx, "missing", "reason")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	institutes, err := store.ListInstitutes(ctx)
	require.NoError(t, err)
	assert.Empty(t, institutes)

	// a rejected applicant may apply again
	_, err = svc.Submit(ctx, validRequest())
	assert.NoError(t, err)
}

// countingStore counts transactions run against the wrapped store.
type countingStore struct {
	*repositories.MemoryStore
	mu           sync.Mutex
	transactions int
}

func (s *countingStore) Atomically(ctx context.Context, fn func(tx repositories.EntityStore) error) error {
	s.mu.Lock()
	s.transactions++
	s.mu.Unlock()
	return s.MemoryStore.Atomically(ctx, fn)
}

func TestApproveDoesNotRetryDuplicateEmail(t *testing.T) {
	store := &countingStore{MemoryStore: repositories.NewMemoryStore()}
	svc := NewInstituteRequestService(store, nil, nil)
	ctx := context.Background()
	req, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, store.CreateInstitute(ctx, &models.Institute{
		ID:     "existing",
		Code:   "EXISTING01",
		Email:  req.Email,
		Status: models.StatusActive,
	}))

	_, err = svc.Approve(ctx, req.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)
	assert.Equal(t, 1, store.transactions)

	stored, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, stored.Status)
}
