package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
)

// testClock is a settable clock.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fixture is an institute with one college, two departments (D1, D2), two
// faculty in D1 (F1 coordinator, F2), one in D2 (F3) and student S1 in D1
// coordinated by F1.
type fixture struct {
	ctx       context.Context
	store     *repositories.MemoryStore
	clock     *testClock
	hierarchy *HierarchyService

	institute *models.Institute
	college   *models.College
	d1, d2    *models.Department
	f1, f2    *models.Faculty
	f3        *models.Faculty
	s1        *models.Student
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		ctx:   context.Background(),
		store: repositories.NewMemoryStore(),
		clock: &testClock{t: time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)},
	}
	fx.hierarchy = NewHierarchyService(fx.store, fx.clock.Now)

	now := fx.clock.Now()
	fx.institute = &models.Institute{
		ID:             "inst-1",
		Name:           "Test Institute",
		Code:           "TESAIS1234",
		Email:          "admin@test.edu",
		ApprovalStatus: models.ApprovalApproved,
		Status:         models.StatusActive,
		Colleges:       models.IDSet{},
		ApprovedAt:     &now,
		CreatedAt:      now,
	}
	require.NoError(t, fx.store.CreateInstitute(fx.ctx, fx.institute))

	var err error
	fx.college, err = fx.hierarchy.CreateCollege(fx.ctx, CreateCollegeInput{InstituteID: fx.institute.ID, Name: "Engineering", Code: "eng"})
	require.NoError(t, err)
	fx.d1 = fx.department(t, "Computer Science", "CSE")
	fx.d2 = fx.department(t, "Electronics", "ECE")

	fx.f1 = fx.faculty(t, fx.d1.ID, "F001", true)
	fx.f2 = fx.faculty(t, fx.d1.ID, "F002", false)
	fx.f3 = fx.faculty(t, fx.d2.ID, "F003", true)
	fx.s1 = fx.student(t, fx.d1.ID, fx.f1.ID, "S001")
	return fx
}

func (fx *fixture) department(t *testing.T, name, code string) *models.Department {
	t.Helper()
	d, err := fx.hierarchy.CreateDepartment(fx.ctx, CreateDepartmentInput{CollegeID: fx.college.ID, Name: name, Code: code})
	require.NoError(t, err)
	return d
}

func (fx *fixture) faculty(t *testing.T, departmentID, code string, coordinator bool) *models.Faculty {
	t.Helper()
	f, err := fx.hierarchy.CreateFaculty(fx.ctx, CreateFacultyInput{
		DepartmentID:  departmentID,
		FirstName:     "Fac",
		LastName:      code,
		FacultyCode:   code,
		Email:         code + "@test.edu",
		IsCoordinator: coordinator,
	})
	require.NoError(t, err)
	return f
}

func (fx *fixture) student(t *testing.T, departmentID, coordinatorID, code string) *models.Student {
	t.Helper()
	s, err := fx.hierarchy.CreateStudent(fx.ctx, CreateStudentInput{
		DepartmentID:  departmentID,
		CoordinatorID: coordinatorID,
		FirstName:     "Stu",
		LastName:      code,
		StudentCode:   code,
		Email:         code + "@student.test.edu",
	})
	require.NoError(t, err)
	return s
}

func (fx *fixture) reloadStudent(t *testing.T, id string) *models.Student {
	t.Helper()
	s, err := fx.store.GetStudent(fx.ctx, id)
	require.NoError(t, err)
	return s
}

func (fx *fixture) reloadFaculty(t *testing.T, id string) *models.Faculty {
	t.Helper()
	f, err := fx.store.GetFaculty(fx.ctx, id)
	require.NoError(t, err)
	return f
}

func (fx *fixture) reloadDepartment(t *testing.T, id string) *models.Department {
	t.Helper()
	d, err := fx.store.GetDepartment(fx.ctx, id)
	require.NoError(t, err)
	return d
}

func (fx *fixture) reloadInstitute(t *testing.T) *models.Institute {
	t.Helper()
	i, err := fx.store.GetInstitute(fx.ctx, fx.institute.ID)
	require.NoError(t, err)
	return i
}

func (fx *fixture) requireClean(t *testing.T) {
	t.Helper()
	report, err := fx.hierarchy.VerifyConsistency(fx.ctx, AuditScope{InstituteID: fx.institute.ID})
	require.NoError(t, err)
	require.Empty(t, report.Violations)
}

func ptr[T any](v T) *T {
	return &v
}

func studentRef(id string) models.Ref    { return models.Ref{Kind: models.KindStudent, ID: id} }
func facultyRef(id string) models.Ref    { return models.Ref{Kind: models.KindFaculty, ID: id} }
func departmentRef(id string) models.Ref { return models.Ref{Kind: models.KindDepartment, ID: id} }
func instituteRef(id string) models.Ref  { return models.Ref{Kind: models.KindInstitute, ID: id} }
