package services

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/filestorage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ReviewEvent
}

func (p *recordingPublisher) PublishReviewEvent(_ context.Context, e models.ReviewEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) last() models.ReviewEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func newAchievementService(fx *fixture, policy ReviewPolicy) (*AchievementService, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewAchievementService(fx.store, nil, pub, policy, fx.clock.Now), pub
}

func submitHackathon(t *testing.T, fx *fixture, svc *AchievementService, studentID string) *models.Achievement {
	t.Helper()
	a, err := svc.Submit(fx.ctx, studentID, AchievementInput{Title: "Smart India Hackathon", Category: models.CategoryHackathon}, nil)
	require.NoError(t, err)
	return a
}

func TestSubmitAndReviewByCoordinator(t *testing.T) {
	fx := newFixture(t)
	svc, pub := newAchievementService(fx, ReviewPolicy{})

	a := submitHackathon(t, fx, svc, fx.s1.ID)
	assert.Equal(t, models.AchievementPending, a.Status)
	assert.Nil(t, a.ReviewedAt)
	assert.Equal(t, fx.clock.Now(), a.UploadedAt)
	assert.Equal(t, models.EventAchievementSubmitted, pub.last().Type)
	assert.Equal(t, []string{fx.s1.ID, fx.f1.ID}, pub.last().Recipients)

	fx.clock.Advance(time.Hour)
	reviewed, err := svc.Review(fx.ctx, ReviewInput{
		FacultyID:     fx.f1.ID,
		StudentID:     fx.s1.ID,
		AchievementID: a.ID,
		Decision:      models.AchievementApproved,
		Comment:       "good work",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AchievementApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, fx.clock.Now(), *reviewed.ReviewedAt)
	assert.Equal(t, "good work", reviewed.Comment)

	stored, ok := fx.reloadStudent(t, fx.s1.ID).Achievement(a.ID)
	require.True(t, ok)
	assert.Equal(t, models.AchievementApproved, stored.Status)
	assert.Equal(t, fx.f1.ID, stored.ReviewedBy)

	log := fx.reloadFaculty(t, fx.f1.ID).ReviewLog
	require.Len(t, log, 1)
	assert.Equal(t, a.ID, log[0].AchievementID)
	assert.Equal(t, models.AchievementApproved, log[0].Decision)

	assert.Equal(t, models.EventAchievementReviewed, pub.last().Type)
	fx.requireClean(t)
}

func TestReviewTwiceFailsWithAlreadyReviewed(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newAchievementService(fx, ReviewPolicy{})
	a := submitHackathon(t, fx, svc, fx.s1.ID)

	in := ReviewInput{FacultyID: fx.f1.ID, StudentID: fx.s1.ID, AchievementID: a.ID, Decision: models.AchievementApproved}
	_, err := svc.Review(fx.ctx, in)
	require.NoError(t, err)

	in.Decision = models.AchievementRejected
	_, err = svc.Review(fx.ctx, in)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)

	stored, _ := fx.reloadStudent(t, fx.s1.ID).Achievement(a.ID)
	assert.Equal(t, models.AchievementApproved, stored.Status)
	assert.Len(t, fx.reloadFaculty(t, fx.f1.ID).ReviewLog, 1)
}

func TestReviewByNonCoordinatorIsUnauthorized(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newAchievementService(fx, ReviewPolicy{})
	a := submitHackathon(t, fx, svc, fx.s1.ID)

	_, err := svc.Review(fx.ctx, ReviewInput{FacultyID: fx.f2.ID, StudentID: fx.s1.ID, AchievementID: a.ID, Decision: models.AchievementApproved})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	stored, _ := fx.reloadStudent(t, fx.s1.ID).Achievement(a.ID)
	assert.Equal(t, models.AchievementPending, stored.Status)
	assert.Nil(t, stored.ReviewedAt)
}

func TestReviewDepartmentWidePolicy(t *testing.T) {
	fx := newFixture(t)
	svc, pub := newAchievementService(fx, ReviewPolicy{DepartmentWide: true})
	a := submitHackathon(t, fx, svc, fx.s1.ID)

	_, err := svc.Review(fx.ctx, ReviewInput{FacultyID: fx.f3.ID, StudentID: fx.s1.ID, AchievementID: a.ID, Decision: models.AchievementApproved})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Review(fx.ctx, ReviewInput{FacultyID: fx.f2.ID, StudentID: fx.s1.ID, AchievementID: a.ID, Decision: models.AchievementRejected, Comment: "missing proof"})
	require.NoError(t, err)
	assert.Equal(t, []string{fx.s1.ID, fx.f1.ID, fx.f2.ID}, pub.last().Recipients)
}

func TestReviewErrorPrecedence(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newAchievementService(fx, ReviewPolicy{})
	a := submitHackathon(t, fx, svc, fx.s1.ID)

	_, err := svc.Review(fx.ctx, ReviewInput{FacultyID: "missing", StudentID: fx.s1.ID, AchievementID: a.ID, Decision: models.AchievementStatus("Maybe")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidDecision)

	_, err = svc.Review(fx.ctx, ReviewInput{FacultyID: fx.f1.ID, StudentID: fx.s1.ID, AchievementID: a.ID, Decision: models.AchievementPending})
	assert.ErrorIs(t, err, apperrors.ErrInvalidDecision)

	_, err = svc.Review(fx.ctx, ReviewInput{FacultyID: "missing", StudentID: fx.s1.ID, AchievementID: a.ID, Decision: models.AchievementApproved})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = svc.Review(fx.ctx, ReviewInput{FacultyID: fx.f2.ID, StudentID: fx.s1.ID, AchievementID: "missing", Decision: models.AchievementApproved})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestReviewOfDeactivatedStudentIsNotFound(t *testing.T) {
	fx := newFixture(t)
	for _, policy := range []ReviewPolicy{{}, {DepartmentWide: true}} {
		svc, _ := newAchievementService(fx, policy)
		a := submitHackathon(t, fx, svc, fx.s1.ID)
		require.NoError(t, fx.store.UpdateStudent(fx.ctx, deactivated(fx.reloadStudent(t, fx.s1.ID))))

		_, err := svc.Review(fx.ctx, ReviewInput{FacultyID: fx.f2.ID, StudentID: fx.s1.ID, AchievementID: a.ID, Decision: models.AchievementApproved})
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

		stored, _ := fx.reloadStudent(t, fx.s1.ID).Achievement(a.ID)
		assert.Equal(t, models.AchievementPending, stored.Status)
		assert.Empty(t, fx.reloadFaculty(t, fx.f2.ID).ReviewLog)

		reactivated := fx.reloadStudent(t, fx.s1.ID)
		reactivated.Status = models.StatusActive
		require.NoError(t, fx.store.UpdateStudent(fx.ctx, reactivated))
	}
}

func deactivated(st *models.Student) *models.Student {
	st.Status = models.StatusInactive
	return st
}

func TestReviewIsExactlyOnceUnderConcurrency(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newAchievementService(fx, ReviewPolicy{})
	a := submitHackathon(t, fx, svc, fx.s1.ID)

	const reviewers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < reviewers; i++ {
		decision := models.AchievementApproved
		if i%2 == 1 {
			decision = models.AchievementRejected
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Review(fx.ctx, ReviewInput{FacultyID: fx.f1.ID, StudentID: fx.s1.ID, AchievementID: a.ID, Decision: decision})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if apperrors.Is(err, apperrors.ErrAlreadyReviewed) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, reviewers-1, conflicts)
	assert.Len(t, fx.reloadFaculty(t, fx.f1.ID).ReviewLog, 1)
}

func TestSubmitValidation(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newAchievementService(fx, ReviewPolicy{})

	_, err := svc.Submit(fx.ctx, fx.s1.ID, AchievementInput{Title: "Chess", Category: models.Category("Sports")}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)

	future := fx.clock.Now().Add(48 * time.Hour)
	_, err = svc.Submit(fx.ctx, fx.s1.ID, AchievementInput{Title: "Later", Category: models.CategoryCourse, DateCompleted: &future}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Submit(fx.ctx, "missing", AchievementInput{Title: "Nobody", Category: models.CategoryCourse}, nil)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	require.NoError(t, fx.hierarchy.Deactivate(fx.ctx, studentRef(fx.s1.ID)))
	_, err = svc.Submit(fx.ctx, fx.s1.ID, AchievementInput{Title: "Gone", Category: models.CategoryCourse}, nil)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestSubmitStoresCertificate(t *testing.T) {
	fx := newFixture(t)
	dir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(dir, "")
	require.NoError(t, err)
	svc := NewAchievementService(fx.store, storage, nil, ReviewPolicy{}, fx.clock.Now)

	a, err := svc.Submit(fx.ctx, fx.s1.ID,
		AchievementInput{Title: "AWS Course", Category: models.CategoryCourse},
		&Certificate{Filename: "cert.pdf", Content: strings.NewReader("%PDF-1.4")})
	require.NoError(t, err)
	require.NotEmpty(t, a.CertificateURL)
	assert.True(t, strings.HasPrefix(a.CertificateURL, "uploads/"+fx.s1.ID+"/"))

	data, err := os.ReadFile(storage.GetFullPath(a.CertificateURL))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	_, err = svc.Submit(fx.ctx, fx.s1.ID,
		AchievementInput{Title: "Script", Category: models.CategoryCourse},
		&Certificate{Filename: "run.exe", Content: strings.NewReader("MZ")})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Len(t, fx.reloadStudent(t, fx.s1.ID).Achievements, 1)
}

func TestPendingQueueOldestFirst(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newAchievementService(fx, ReviewPolicy{})
	s2 := fx.student(t, fx.d1.ID, fx.f1.ID, "S002")

	first := submitHackathon(t, fx, svc, s2.ID)
	fx.clock.Advance(time.Minute)
	second := submitHackathon(t, fx, svc, fx.s1.ID)
	fx.clock.Advance(time.Minute)
	third := submitHackathon(t, fx, svc, s2.ID)

	_, err := svc.Review(fx.ctx, ReviewInput{FacultyID: fx.f1.ID, StudentID: fx.s1.ID, AchievementID: second.ID, Decision: models.AchievementApproved})
	require.NoError(t, err)

	queue, err := svc.PendingQueue(fx.ctx, fx.f1.ID)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, first.ID, queue[0].Achievement.ID)
	assert.Equal(t, third.ID, queue[1].Achievement.ID)
	assert.Equal(t, "S002", queue[0].StudentCode)

	empty, err := svc.PendingQueue(fx.ctx, fx.f2.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	pending, err := svc.StudentAchievements(fx.ctx, s2.ID, models.AchievementPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
