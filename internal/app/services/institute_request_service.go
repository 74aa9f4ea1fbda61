package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/email"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/validation"
)

const (
	tempPasswordLength = 12
	codeAttempts       = 5
)

// InstituteRequestInput is a registration application.
type InstituteRequestInput struct {
	Name      string `json:"name" validate:"required,min=3,max=200"`
	AisheCode string `json:"aisheCode" validate:"required,min=3,max=20"`
	Type      string `json:"type" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Address   string `json:"address" validate:"max=300"`
	State     string `json:"state" validate:"max=100"`
	District  string `json:"district" validate:"max=100"`
	HeadName  string `json:"headName" validate:"max=100"`
}

// InstituteRequestService handles institute registration. Approval is the
// only way an Institute comes into existence.
type InstituteRequestService struct {
	store  repositories.EntityStore
	mailer email.EmailService
	now    Clock
}

// NewInstituteRequestService creates a new institute request service
func NewInstituteRequestService(store repositories.EntityStore, mailer email.EmailService, clock Clock) *InstituteRequestService {
	return &InstituteRequestService{store: store, mailer: mailer, now: clockOrDefault(clock)}
}

// Submit records a pending request. An email or AISHE code already used by a
// pending or approved request is rejected.
func (s *InstituteRequestService) Submit(ctx context.Context, in InstituteRequestInput) (*models.InstituteRequest, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	in.AisheCode = validation.NormalizeCode(in.AisheCode)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.store.ListInstituteRequests(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.Status == models.ApprovalRejected {
			continue
		}
		if r.Email == in.Email || r.AisheCode == in.AisheCode {
			return nil, apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists,
				"an institute with this email or AISHE code is already registered").
				WithDetails(map[string]interface{}{"requestId": r.ID})
		}
	}

	req := &models.InstituteRequest{
		ID:        newID(),
		Name:      in.Name,
		AisheCode: in.AisheCode,
		Type:      in.Type,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		State:     in.State,
		District:  in.District,
		HeadName:  in.HeadName,
		Status:    models.ApprovalPending,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateInstituteRequest(ctx, req); err != nil {
		return nil, storeError(err, "institute request", req.ID)
	}

	logger.Info().Str("requestID", req.ID).Str("aisheCode", req.AisheCode).Msg("Institute request submitted")
	return req, nil
}

// Get returns one request.
func (s *InstituteRequestService) Get(ctx context.Context, id string) (*models.InstituteRequest, error) {
	req, err := s.store.GetInstituteRequest(ctx, id)
	if err != nil {
		return nil, storeError(err, "institute request", id)
	}
	return req, nil
}

// List returns requests, filtered by status when set.
func (s *InstituteRequestService) List(ctx context.Context, status models.ApprovalStatus) ([]*models.InstituteRequest, error) {
	if status != "" && status != models.ApprovalPending && status != models.ApprovalApproved && status != models.ApprovalRejected {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}
	return s.store.ListInstituteRequests(ctx, status)
}

// Approve creates the institute for a pending request. The login code and a
// bcrypt-hashed temporary password are generated, and the plaintext is only
// sent by mail.
func (s *InstituteRequestService) Approve(ctx context.Context, requestID, comment string) (*models.Institute, error) {
	if _, err := s.pendingRequest(ctx, s.store, requestID); err != nil {
		return nil, err
	}

	tempPassword, err := auth.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash temporary password: %w", err)
	}

	var (
		institute *models.Institute
		req       *models.InstituteRequest
	)
	for attempt := 0; attempt < codeAttempts; attempt++ {
		err = s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
			var err error
			req, err = s.pendingRequest(ctx, tx, requestID)
			if err != nil {
				return err
			}

			code, err := InstituteCode(req.Name, req.AisheCode)
			if err != nil {
				return err
			}
			now := s.now()
			institute = &models.Institute{
				ID:               newID(),
				Name:             req.Name,
				Code:             code,
				Email:            req.Email,
				Type:             req.Type,
				ApprovalStatus:   models.ApprovalApproved,
				Status:           models.StatusActive,
				Colleges:         models.IDSet{},
				ApprovedAt:       &now,
				ReviewComment:    comment,
				TempPasswordHash: hash,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := tx.CreateInstitute(ctx, institute); err != nil {
				return err
			}

			req.Status = models.ApprovalApproved
			req.ReviewComment = comment
			req.ReviewedAt = &now
			req.InstituteID = institute.ID
			return tx.UpdateInstituteRequest(ctx, req)
		})
		// a code collision is retried with a fresh random suffix
		if !repositories.IsDuplicateKey(err, repositories.KeyInstituteCode) {
			break
		}
	}
	if err != nil {
		return nil, storeError(err, models.KindInstitute, requestID)
	}

	logger.Info().Str("requestID", requestID).Str("instituteID", institute.ID).Str("code", institute.Code).Msg("Institute approved")

	if s.mailer != nil {
		if err := s.mailer.SendInstituteApproval(institute.Email, req.HeadName, institute.Code, tempPassword); err != nil {
			logger.Error().Err(err).Str("instituteID", institute.ID).Msg("Failed to send approval email")
		}
	}
	return institute, nil
}

// Reject declines a pending request. A comment is required.
func (s *InstituteRequestService) Reject(ctx context.Context, requestID, comment string) (*models.InstituteRequest, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.NewValidationError("comment is required for rejection")
	}

	var req *models.InstituteRequest
	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		var err error
		req, err = s.pendingRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		now := s.now()
		req.Status = models.ApprovalRejected
		req.ReviewComment = comment
		req.ReviewedAt = &now
		return tx.UpdateInstituteRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("requestID", requestID).Msg("Institute request rejected")

	if s.mailer != nil {
		if err := s.mailer.SendInstituteRejection(req.Email, req.HeadName, comment); err != nil {
			logger.Error().Err(err).Str("requestID", requestID).Msg("Failed to send rejection email")
		}
	}
	return req, nil
}

func (s *InstituteRequestService) pendingRequest(ctx context.Context, tx repositories.Reader, id string) (*models.InstituteRequest, error) {
	req, err := tx.GetInstituteRequest(ctx, id)
	if err != nil {
		return nil, storeError(err, "institute request", id)
	}
	if req.Status != models.ApprovalPending {
		return nil, apperrors.NewCustomError(apperrors.ErrRequestProcessed, "request has already been reviewed").
			WithDetails(map[string]interface{}{"requestId": id, "status": string(req.Status)})
	}
	return req, nil
}

// InstituteCode builds a login code from the first three letters of the
// name, the first three characters of the AISHE code and four random digits.
func InstituteCode(name, aisheCode string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate institute code: %w", err)
	}
	return fmt.Sprintf("%s%s%d", prefix3(name), prefix3(aisheCode), 1000+n.Int64()), nil
}

func prefix3(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) && r < unicode.MaxASCII || unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	return b.String()
}
