package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
)

func TestBulkImportResolvesCoordinatorCodes(t *testing.T) {
	fx := newFixture(t)
	svc := NewBulkImportService(fx.hierarchy, fx.store)

	records := make(chan ImportRecord, 4)
	records <- ImportRecord{Line: 1, Kind: models.KindFaculty, Faculty: &CreateFacultyInput{
		DepartmentID: fx.d2.ID, FirstName: "New", LastName: "Mentor", FacultyCode: "F100", Email: "f100@test.edu",
	}}
	records <- ImportRecord{Line: 2, Kind: models.KindStudent, CoordinatorCode: "f100", Student: &CreateStudentInput{
		DepartmentID: fx.d2.ID, FirstName: "A", LastName: "One", StudentCode: "S101", Email: "s101@student.test.edu",
	}}
	records <- ImportRecord{Line: 3, Kind: models.KindStudent, CoordinatorCode: "F002", Student: &CreateStudentInput{
		DepartmentID: fx.d1.ID, FirstName: "B", LastName: "Two", StudentCode: "S102", Email: "s102@student.test.edu",
	}}
	records <- ImportRecord{Line: 4, Kind: models.KindStudent, CoordinatorCode: "F100", Student: &CreateStudentInput{
		DepartmentID: fx.d1.ID, FirstName: "C", LastName: "Three", StudentCode: "S103", Email: "s103@student.test.edu",
	}}
	close(records)

	result, err := svc.Import(fx.ctx, records)
	require.NoError(t, err)
	assert.Len(t, result.Faculties, 1)
	assert.Len(t, result.Students, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 4, result.Failed[0].Line)
	assert.ErrorIs(t, result.Failed[0].Err, apperrors.ErrDepartmentMismatch)

	mentor := fx.reloadFaculty(t, result.Faculties[0])
	assert.Len(t, mentor.Students, 1)
	assert.Len(t, fx.reloadFaculty(t, fx.f2.ID).Students, 1)
	assert.Equal(t, 3, fx.reloadInstitute(t).StudentCount)
	fx.requireClean(t)
}

func TestBulkImportCollectsInvalidRecords(t *testing.T) {
	fx := newFixture(t)
	svc := NewBulkImportService(fx.hierarchy, fx.store)

	input := strings.Join([]string{
		`{"kind":"student","student":{"departmentId":"` + fx.d1.ID + `","firstName":"Ok","lastName":"Student","studentCode":"S201","email":"s201@student.test.edu"}}`,
		`not json`,
		``,
		`{"kind":"college"}`,
		`{"kind":"faculty","faculty":{"departmentId":"missing","firstName":"No","lastName":"Dept","facultyCode":"F201","email":"f201@test.edu"}}`,
	}, "\n")

	result, err := svc.Import(fx.ctx, DecodeRecords(fx.ctx, strings.NewReader(input)))
	require.NoError(t, err)
	assert.Len(t, result.Students, 1)
	require.Len(t, result.Failed, 3)
	assert.Equal(t, []int{2, 4, 5}, []int{result.Failed[0].Line, result.Failed[1].Line, result.Failed[2].Line})
	assert.ErrorIs(t, result.Failed[2].Err, apperrors.ErrParentNotFound)
}

func TestBulkImportStopsOnCancel(t *testing.T) {
	fx := newFixture(t)
	svc := NewBulkImportService(fx.hierarchy, fx.store)

	ctx, cancel := context.WithCancel(fx.ctx)
	cancel()
	records := make(chan ImportRecord)

	_, err := svc.Import(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBulkImportGuardRejectsDepartment(t *testing.T) {
	fx := newFixture(t)
	svc := NewBulkImportService(fx.hierarchy, fx.store)

	records := make(chan ImportRecord, 2)
	records <- ImportRecord{Line: 1, Kind: models.KindStudent, Student: &CreateStudentInput{
		DepartmentID: fx.d1.ID, FirstName: "A", LastName: "One", StudentCode: "S301", Email: "s301@student.test.edu",
	}}
	records <- ImportRecord{Line: 2, Kind: models.KindStudent, Student: &CreateStudentInput{
		DepartmentID: fx.d2.ID, FirstName: "B", LastName: "Two", StudentCode: "S302", Email: "s302@student.test.edu",
	}}
	close(records)

	guard := func(_ context.Context, departmentID string) error {
		if departmentID != fx.d1.ID {
			return apperrors.NewForbiddenError("not yours")
		}
		return nil
	}
	result, err := svc.ImportGuarded(fx.ctx, records, guard)
	require.NoError(t, err)
	assert.Len(t, result.Students, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 2, result.Failed[0].Line)
	assert.ErrorIs(t, result.Failed[0].Err, apperrors.ErrPermissionDenied)
}
