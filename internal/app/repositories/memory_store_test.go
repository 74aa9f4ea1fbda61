package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
)

func seedDepartment(t *testing.T, s *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.CreateInstitute(ctx, &models.Institute{ID: "i1", Code: "INS1", Email: "i1@x.edu", Status: models.StatusActive, ApprovalStatus: models.ApprovalApproved}))
	require.NoError(t, s.CreateCollege(ctx, &models.College{ID: "c1", Code: "COL1", InstituteID: "i1", Status: models.StatusActive}))
	require.NoError(t, s.CreateDepartment(ctx, &models.Department{ID: "d1", Code: "CSE", CollegeID: "c1", InstituteID: "i1", Status: models.StatusActive}))
}

func TestMemoryStoreMembershipIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedDepartment(t, s)

	require.NoError(t, s.AddMember(ctx, models.EdgeCollegeDepartment, "c1", "d1"))
	require.NoError(t, s.AddMember(ctx, models.EdgeCollegeDepartment, "c1", "d1"))

	college, err := s.GetCollege(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.IDSet{"d1"}, college.Departments)

	require.NoError(t, s.RemoveMember(ctx, models.EdgeCollegeDepartment, "c1", "d1"))
	require.NoError(t, s.RemoveMember(ctx, models.EdgeCollegeDepartment, "c1", "d1"))

	college, err = s.GetCollege(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, college.Departments)

	err = s.AddMember(ctx, models.EdgeCollegeDepartment, "missing", "d1")
	assert.ErrorIs(t, err, ErrNotFound)
	err = s.AddMember(ctx, models.EdgeDepartmentStudent, "d1", "s1")
	assert.Error(t, err)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedDepartment(t, s)

	dept, err := s.GetDepartment(ctx, "d1")
	require.NoError(t, err)
	dept.Faculties.Add("f1")
	dept.Name = "changed"

	again, err := s.GetDepartment(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, again.Faculties)
	assert.Empty(t, again.Name)
}

func TestMemoryStoreUpdateKeepsMembershipSets(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedDepartment(t, s)
	require.NoError(t, s.AddMember(ctx, models.EdgeInstituteCollege, "i1", "c1"))

	inst, err := s.GetInstitute(ctx, "i1")
	require.NoError(t, err)
	inst.Colleges = nil
	inst.Name = "Renamed"
	require.NoError(t, s.UpdateInstitute(ctx, inst))

	inst, err = s.GetInstitute(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", inst.Name)
	assert.Equal(t, models.IDSet{"c1"}, inst.Colleges)
}

func TestMemoryStoreUniqueCodes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedDepartment(t, s)

	err := s.CreateDepartment(ctx, &models.Department{ID: "d2", Code: "CSE", CollegeID: "c1", InstituteID: "i1"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	require.NoError(t, s.CreateStudent(ctx, &models.Student{ID: "s1", StudentCode: "S1", Email: "a@x.edu", DepartmentID: "d1"}))
	err = s.CreateStudent(ctx, &models.Student{ID: "s2", StudentCode: "S2", Email: "a@x.edu", DepartmentID: "d1"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryStoreDuplicateKeyNamesTheKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedDepartment(t, s)

	err := s.CreateInstitute(ctx, &models.Institute{ID: "i2", Code: "INS1", Email: "i2@x.edu"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, IsDuplicateKey(err, KeyInstituteCode))

	err = s.CreateInstitute(ctx, &models.Institute{ID: "i2", Code: "INS2", Email: "i1@x.edu"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.False(t, IsDuplicateKey(err, KeyInstituteCode))
	assert.True(t, IsDuplicateKey(err, "institute.email"))
}

func TestMemoryStoreAtomicallyRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedDepartment(t, s)

	boom := errors.New("boom")
	err := s.Atomically(ctx, func(tx EntityStore) error {
		require.NoError(t, tx.AddMember(ctx, models.EdgeInstituteCollege, "i1", "c1"))
		require.NoError(t, tx.AddMember(ctx, models.EdgeCollegeDepartment, "c1", "d1"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	inst, err := s.GetInstitute(ctx, "i1")
	require.NoError(t, err)
	assert.Empty(t, inst.Colleges)

	err = s.Atomically(ctx, func(tx EntityStore) error {
		return tx.AddMember(ctx, models.EdgeInstituteCollege, "i1", "c1")
	})
	require.NoError(t, err)

	inst, err = s.GetInstitute(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, models.IDSet{"c1"}, inst.Colleges)
}

func TestMemoryStoreRecordReviewIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedDepartment(t, s)
	require.NoError(t, s.CreateFaculty(ctx, &models.Faculty{ID: "f1", FacultyCode: "F1", Email: "f@x.edu", DepartmentID: "d1"}))
	require.NoError(t, s.CreateStudent(ctx, &models.Student{ID: "s1", StudentCode: "S1", Email: "s@x.edu", DepartmentID: "d1"}))
	require.NoError(t, s.AppendAchievement(ctx, "s1", models.Achievement{ID: "a1", Title: "Hack", Category: models.CategoryHackathon, Status: models.AchievementPending}))

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	record := ReviewRecord{StudentID: "s1", AchievementID: "a1", FacultyID: "f1", Decision: models.AchievementApproved, Comment: "ok", ReviewedAt: now}
	require.NoError(t, s.RecordReview(ctx, record))

	record.Decision = models.AchievementRejected
	assert.ErrorIs(t, s.RecordReview(ctx, record), ErrNotPending)

	record.AchievementID = "nope"
	assert.ErrorIs(t, s.RecordReview(ctx, record), ErrNotFound)

	student, err := s.GetStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, student.Achievements, 1)
	assert.Equal(t, models.AchievementApproved, student.Achievements[0].Status)
	require.NotNil(t, student.Achievements[0].ReviewedAt)
	assert.True(t, now.Equal(*student.Achievements[0].ReviewedAt))

	faculty, err := s.GetFaculty(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, faculty.ReviewLog, 1)
	assert.Equal(t, "a1", faculty.ReviewLog[0].AchievementID)
}

func TestMemoryStoreListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedDepartment(t, s)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateStudent(ctx, &models.Student{ID: "s2", StudentCode: "S2", Email: "2@x.edu", DepartmentID: "d1", CoordinatorID: "f1", Status: models.StatusActive, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.CreateStudent(ctx, &models.Student{ID: "s1", StudentCode: "S1", Email: "1@x.edu", DepartmentID: "d1", Status: models.StatusActive, CreatedAt: base}))
	require.NoError(t, s.CreateStudent(ctx, &models.Student{ID: "s3", StudentCode: "S3", Email: "3@x.edu", DepartmentID: "d9", Status: models.StatusInactive, CreatedAt: base}))

	all, err := s.ListStudents(ctx, StudentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s1", all[0].ID)

	inDept, err := s.ListStudents(ctx, StudentFilter{DepartmentIDs: []string{"d1"}})
	require.NoError(t, err)
	assert.Len(t, inDept, 2)

	none, err := s.ListStudents(ctx, StudentFilter{DepartmentIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	coordinated, err := s.ListStudents(ctx, StudentFilter{CoordinatorID: "f1"})
	require.NoError(t, err)
	require.Len(t, coordinated, 1)
	assert.Equal(t, "s2", coordinated[0].ID)

	active, err := s.ListStudents(ctx, StudentFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
