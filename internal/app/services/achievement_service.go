package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/filestorage"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/validation"
)

// AchievementInput is a student's achievement submission.
type AchievementInput struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Category      models.Category `json:"category" validate:"required"`
	Organization  string          `json:"organization" validate:"max=200"`
	Description   string          `json:"description" validate:"max=2000"`
	DateCompleted *time.Time      `json:"dateCompleted"`
}

// Certificate is an optional proof file attached to a submission.
type Certificate struct {
	Filename string
	Content  io.Reader
}

// ReviewInput is a faculty decision on a pending achievement.
type ReviewInput struct {
	FacultyID     string                   `json:"facultyId"`
	StudentID     string                   `json:"studentId"`
	AchievementID string                   `json:"achievementId"`
	Decision      models.AchievementStatus `json:"decision"`
	Comment       string                   `json:"comment"`
}

// PendingItem is one entry of a faculty review queue.
type PendingItem struct {
	StudentID   string             `json:"studentId"`
	StudentName string             `json:"studentName"`
	StudentCode string             `json:"studentCode"`
	Achievement models.Achievement `json:"achievement"`
}

// ReviewPolicy decides which faculty may review a student's achievements.
// By default only the student's coordinator may; DepartmentWide extends it
// to every active faculty member of the student's department.
type ReviewPolicy struct {
	DepartmentWide bool
}

// EventPublisher receives lifecycle events after they are committed.
type EventPublisher interface {
	PublishReviewEvent(ctx context.Context, event models.ReviewEvent)
}

type noopPublisher struct{}

func (noopPublisher) PublishReviewEvent(context.Context, models.ReviewEvent) {}

// AchievementService drives the Pending → Approved/Rejected lifecycle.
type AchievementService struct {
	store     repositories.EntityStore
	storage   filestorage.FileStorage
	publisher EventPublisher
	policy    ReviewPolicy
	now       Clock
}

// NewAchievementService creates a new achievement service. storage and
// publisher may be nil.
func NewAchievementService(store repositories.EntityStore, storage filestorage.FileStorage, publisher EventPublisher, policy ReviewPolicy, clock Clock) *AchievementService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &AchievementService{
		store:     store,
		storage:   storage,
		publisher: publisher,
		policy:    policy,
		now:       clockOrDefault(clock),
	}
}

// Submit appends a Pending achievement to the student.
func (s *AchievementService) Submit(ctx context.Context, studentID string, in AchievementInput, cert *Certificate) (*models.Achievement, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !in.Category.IsValid() {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCategory, fmt.Sprintf("unknown category %q", in.Category)).
			WithDetails(map[string]interface{}{"category": string(in.Category), "allowed": models.Categories})
	}

	now := s.now()
	if in.DateCompleted != nil && in.DateCompleted.After(now) {
		return nil, apperrors.NewValidationError("dateCompleted cannot be in the future")
	}

	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, models.KindStudent, studentID)
	}
	if student.Status != models.StatusActive {
		return nil, apperrors.NewResourceNotFoundError(string(models.KindStudent), studentID)
	}

	achievement := models.Achievement{
		ID:            newID(),
		Title:         in.Title,
		Category:      in.Category,
		Organization:  in.Organization,
		Description:   in.Description,
		DateCompleted: in.DateCompleted,
		UploadedAt:    now,
		Status:        models.AchievementPending,
	}

	if cert != nil && cert.Content != nil {
		if s.storage == nil {
			return nil, apperrors.NewValidationError("certificate uploads are not configured")
		}
		url, err := s.storage.Save(ctx, studentID, cert.Filename, cert.Content)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		achievement.CertificateURL = url
	}

	if err := s.store.AppendAchievement(ctx, studentID, achievement); err != nil {
		if achievement.CertificateURL != "" {
			_ = s.storage.Delete(achievement.CertificateURL)
		}
		logger.Error().Err(err).Str("studentID", studentID).Msg("Error appending achievement")
		return nil, storeError(err, models.KindStudent, studentID)
	}

	logger.Info().
		Str("studentID", studentID).
		Str("achievementID", achievement.ID).
		Str("category", string(achievement.Category)).
		Msg("Achievement submitted")

	s.publish(ctx, models.EventAchievementSubmitted, student, "", achievement)
	return &achievement, nil
}

// Review applies a decision to a pending achievement. The achievement status
// and the reviewer's log change together, guarded by a compare-and-set on
// Pending, so at most one review ever succeeds.
func (s *AchievementService) Review(ctx context.Context, in ReviewInput) (*models.Achievement, error) {
	if !in.Decision.IsDecision() {
		return nil, apperrors.NewTransitionError(apperrors.ErrInvalidDecision, in.AchievementID,
			string(models.AchievementPending), string(in.Decision))
	}

	faculty, err := s.store.GetFaculty(ctx, in.FacultyID)
	if err != nil {
		return nil, storeError(err, models.KindFaculty, in.FacultyID)
	}
	if faculty.Status != models.StatusActive {
		return nil, apperrors.NewResourceNotFoundError(string(models.KindFaculty), in.FacultyID)
	}
	student, err := s.store.GetStudent(ctx, in.StudentID)
	if err != nil {
		return nil, storeError(err, models.KindStudent, in.StudentID)
	}
	if student.Status != models.StatusActive {
		return nil, apperrors.NewResourceNotFoundError(string(models.KindStudent), in.StudentID)
	}
	achievement, ok := student.Achievement(in.AchievementID)
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("achievement", in.AchievementID)
	}

	if !s.mayReview(faculty, student) {
		return nil, apperrors.NewCustomError(apperrors.ErrUnauthorized, "faculty is not authorized to review this student's achievements").
			WithDetails(map[string]interface{}{
				"facultyId":     faculty.ID,
				"studentId":     student.ID,
				"coordinatorId": student.CoordinatorID,
				"achievementId": achievement.ID,
			})
	}
	if achievement.Status != models.AchievementPending {
		return nil, apperrors.NewTransitionError(apperrors.ErrAlreadyReviewed, achievement.ID,
			string(achievement.Status), string(in.Decision))
	}

	now := s.now()
	err = s.store.RecordReview(ctx, repositories.ReviewRecord{
		StudentID:     student.ID,
		AchievementID: achievement.ID,
		FacultyID:     faculty.ID,
		Decision:      in.Decision,
		Comment:       in.Comment,
		ReviewedAt:    now,
	})
	switch {
	case errors.Is(err, repositories.ErrNotPending):
		// lost the race to a concurrent reviewer
		return nil, apperrors.NewTransitionError(apperrors.ErrAlreadyReviewed, achievement.ID,
			"reviewed", string(in.Decision))
	case errors.Is(err, repositories.ErrNotFound):
		return nil, apperrors.NewResourceNotFoundError("achievement", in.AchievementID)
	case err != nil:
		logger.Error().Err(err).Str("achievementID", achievement.ID).Msg("Error recording review")
		return nil, err
	}

	achievement.Status = in.Decision
	achievement.ReviewedAt = &now
	achievement.Comment = in.Comment
	achievement.ReviewedBy = faculty.ID

	logger.Info().
		Str("achievementID", achievement.ID).
		Str("studentID", student.ID).
		Str("facultyID", faculty.ID).
		Str("decision", string(in.Decision)).
		Msg("Achievement reviewed")

	s.publish(ctx, models.EventAchievementReviewed, student, faculty.ID, *achievement)
	return achievement, nil
}

func (s *AchievementService) mayReview(faculty *models.Faculty, student *models.Student) bool {
	if student.CoordinatorID != "" && student.CoordinatorID == faculty.ID {
		return true
	}
	return s.policy.DepartmentWide && faculty.DepartmentID == student.DepartmentID
}

// PendingQueue lists the pending achievements a faculty member may review,
// oldest submission first.
func (s *AchievementService) PendingQueue(ctx context.Context, facultyID string) ([]PendingItem, error) {
	faculty, err := s.store.GetFaculty(ctx, facultyID)
	if err != nil {
		return nil, storeError(err, models.KindFaculty, facultyID)
	}

	filter := repositories.StudentFilter{CoordinatorID: faculty.ID, ActiveOnly: true}
	if s.policy.DepartmentWide {
		filter = repositories.StudentFilter{DepartmentIDs: []string{faculty.DepartmentID}, ActiveOnly: true}
	}
	students, err := s.store.ListStudents(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := []PendingItem{}
	for _, st := range students {
		for _, a := range st.Achievements {
			if a.Status != models.AchievementPending {
				continue
			}
			items = append(items, PendingItem{
				StudentID:   st.ID,
				StudentName: st.FullName(),
				StudentCode: st.StudentCode,
				Achievement: a,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Achievement, items[j].Achievement
		if !a.UploadedAt.Equal(b.UploadedAt) {
			return a.UploadedAt.Before(b.UploadedAt)
		}
		return a.ID < b.ID
	})
	return items, nil
}

// StudentAchievements returns a student's achievements, optionally filtered
// by status.
func (s *AchievementService) StudentAchievements(ctx context.Context, studentID string, status models.AchievementStatus) ([]models.Achievement, error) {
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, storeError(err, models.KindStudent, studentID)
	}
	out := []models.Achievement{}
	for _, a := range student.Achievements {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *AchievementService) publish(ctx context.Context, typ models.ReviewEventType, student *models.Student, facultyID string, a models.Achievement) {
	recipients := []string{student.ID}
	if student.CoordinatorID != "" {
		recipients = append(recipients, student.CoordinatorID)
	}
	if facultyID != "" && facultyID != student.CoordinatorID {
		recipients = append(recipients, facultyID)
	}

	s.publisher.PublishReviewEvent(ctx, models.ReviewEvent{
		Type:          typ,
		Recipients:    recipients,
		StudentID:     student.ID,
		DepartmentID:  student.DepartmentID,
		FacultyID:     facultyID,
		AchievementID: a.ID,
		Title:         a.Title,
		Category:      a.Category,
		Status:        a.Status,
		Comment:       a.Comment,
		OccurredAt:    s.now(),
	})
}
