package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/validation"
)

// CreateCollegeInput is the payload for CreateCollege.
type CreateCollegeInput struct {
	InstituteID string `json:"instituteId" validate:"required"`
	Name        string `json:"name" validate:"required,max=200"`
	Code        string `json:"code" validate:"required,code,max=20"`
}

// CreateDepartmentInput is the payload for CreateDepartment.
type CreateDepartmentInput struct {
	CollegeID string `json:"collegeId" validate:"required"`
	Name      string `json:"name" validate:"required,max=200"`
	Code      string `json:"code" validate:"required,code,max=20"`
}

// CreateFacultyInput is the payload for CreateFaculty.
type CreateFacultyInput struct {
	DepartmentID  string `json:"departmentId" validate:"required"`
	FirstName     string `json:"firstName" validate:"required,max=100"`
	LastName      string `json:"lastName" validate:"required,max=100"`
	FacultyCode   string `json:"facultyCode" validate:"required,code,max=30"`
	Email         string `json:"email" validate:"required,email"`
	Designation   string `json:"designation" validate:"max=100"`
	IsCoordinator bool   `json:"isCoordinator"`
}

// CreateStudentInput is the payload for CreateStudent. CoordinatorID is
// optional but must name a faculty of the same department.
type CreateStudentInput struct {
	DepartmentID   string   `json:"departmentId" validate:"required"`
	CoordinatorID  string   `json:"coordinatorId"`
	FirstName      string   `json:"firstName" validate:"required,max=100"`
	LastName       string   `json:"lastName" validate:"required,max=100"`
	StudentCode    string   `json:"studentCode" validate:"required,code,max=30"`
	Email          string   `json:"email" validate:"required,email"`
	EnrollmentYear int      `json:"enrollmentYear" validate:"omitempty,gte=1950,lte=2100"`
	Batch          string   `json:"batch" validate:"max=20"`
	GPA            *float64 `json:"gpa" validate:"omitempty,gte=0,lte=10"`
	Attendance     *float64 `json:"attendance" validate:"omitempty,gte=0,lte=100"`
}

// AcademicsInput updates a student's academic metrics. Nil leaves a value
// unchanged.
type AcademicsInput struct {
	GPA        *float64 `json:"gpa" validate:"omitempty,gte=0,lte=10"`
	Attendance *float64 `json:"attendance" validate:"omitempty,gte=0,lte=100"`
}

// HierarchyService is the only writer of hierarchy pointers and membership
// sets. Every structural operation runs inside EntityStore.Atomically.
type HierarchyService struct {
	store repositories.EntityStore
	now   Clock
}

// NewHierarchyService creates a new hierarchy service
func NewHierarchyService(store repositories.EntityStore, clock Clock) *HierarchyService {
	return &HierarchyService{store: store, now: clockOrDefault(clock)}
}

// CreateCollege creates a college under an approved, active institute.
func (s *HierarchyService) CreateCollege(ctx context.Context, in CreateCollegeInput) (*models.College, error) {
	in.Code = validation.NormalizeCode(in.Code)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	college := &models.College{
		ID:          newID(),
		Name:        in.Name,
		Code:        in.Code,
		InstituteID: in.InstituteID,
		Departments: models.IDSet{},
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		if err := requireActiveParent(ctx, tx, models.EdgeInstituteCollege, in.InstituteID); err != nil {
			return err
		}
		if err := tx.CreateCollege(ctx, college); err != nil {
			return storeError(err, models.KindCollege, college.ID)
		}
		return tx.AddMember(ctx, models.EdgeInstituteCollege, in.InstituteID, college.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("collegeID", college.ID).Str("instituteID", college.InstituteID).Msg("College created")
	return college, nil
}

// CreateDepartment creates a department under an active college. The
// department's institute is copied from the college.
func (s *HierarchyService) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*models.Department, error) {
	in.Code = validation.NormalizeCode(in.Code)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	dept := &models.Department{
		ID:        newID(),
		Name:      in.Name,
		Code:      in.Code,
		CollegeID: in.CollegeID,
		Faculties: models.IDSet{},
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		if err := requireActiveParent(ctx, tx, models.EdgeCollegeDepartment, in.CollegeID); err != nil {
			return err
		}
		college, err := tx.GetCollege(ctx, in.CollegeID)
		if err != nil {
			return parentError(err, models.KindCollege, in.CollegeID)
		}
		dept.InstituteID = college.InstituteID

		if err := tx.CreateDepartment(ctx, dept); err != nil {
			return storeError(err, models.KindDepartment, dept.ID)
		}
		return tx.AddMember(ctx, models.EdgeCollegeDepartment, in.CollegeID, dept.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("departmentID", dept.ID).Str("collegeID", dept.CollegeID).Msg("Department created")
	return dept, nil
}

// CreateFaculty creates a faculty member in an active department.
func (s *HierarchyService) CreateFaculty(ctx context.Context, in CreateFacultyInput) (*models.Faculty, error) {
	in.FacultyCode = validation.NormalizeCode(in.FacultyCode)
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	faculty := &models.Faculty{
		ID:            newID(),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		FacultyCode:   in.FacultyCode,
		Email:         in.Email,
		Designation:   in.Designation,
		DepartmentID:  in.DepartmentID,
		IsCoordinator: in.IsCoordinator,
		Students:      models.IDSet{},
		ReviewLog:     []models.ReviewLogEntry{},
		Status:        models.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		if err := requireActiveParent(ctx, tx, models.EdgeDepartmentFaculty, in.DepartmentID); err != nil {
			return err
		}
		if err := tx.CreateFaculty(ctx, faculty); err != nil {
			return storeError(err, models.KindFaculty, faculty.ID)
		}
		return tx.AddMember(ctx, models.EdgeDepartmentFaculty, in.DepartmentID, faculty.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("facultyID", faculty.ID).Str("departmentID", faculty.DepartmentID).Msg("Faculty created")
	return faculty, nil
}

// CreateStudent creates a student in an active department, optionally
// assigning a coordinator from the same department.
func (s *HierarchyService) CreateStudent(ctx context.Context, in CreateStudentInput) (*models.Student, error) {
	in.StudentCode = validation.NormalizeCode(in.StudentCode)
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	student := &models.Student{
		ID:             newID(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		StudentCode:    in.StudentCode,
		Email:          in.Email,
		DepartmentID:   in.DepartmentID,
		CoordinatorID:  in.CoordinatorID,
		EnrollmentYear: in.EnrollmentYear,
		Batch:          in.Batch,
		GPA:            in.GPA,
		Attendance:     in.Attendance,
		Achievements:   []models.Achievement{},
		Status:         models.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		if err := requireActiveParent(ctx, tx, models.EdgeDepartmentStudent, in.DepartmentID); err != nil {
			return err
		}
		if in.CoordinatorID != "" {
			if err := requireActiveParent(ctx, tx, models.EdgeFacultyStudent, in.CoordinatorID); err != nil {
				return err
			}
			if err := requireSameDepartment(ctx, tx, in.CoordinatorID, in.DepartmentID); err != nil {
				return err
			}
		}
		if err := tx.CreateStudent(ctx, student); err != nil {
			return storeError(err, models.KindStudent, student.ID)
		}
		if in.CoordinatorID != "" {
			if err := tx.AddMember(ctx, models.EdgeFacultyStudent, in.CoordinatorID, student.ID); err != nil {
				return err
			}
		}
		return s.recountForDepartments(ctx, tx, in.DepartmentID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("studentID", student.ID).Str("departmentID", student.DepartmentID).Msg("Student created")
	return student, nil
}

// UpdateStudentAcademics sets GPA and attendance.
func (s *HierarchyService) UpdateStudentAcademics(ctx context.Context, studentID string, in AcademicsInput) (*models.Student, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var student *models.Student
	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		var err error
		student, err = tx.GetStudent(ctx, studentID)
		if err != nil {
			return storeError(err, models.KindStudent, studentID)
		}
		if in.GPA != nil {
			student.GPA = in.GPA
		}
		if in.Attendance != nil {
			student.Attendance = in.Attendance
		}
		student.UpdatedAt = s.now()
		return storeError(tx.UpdateStudent(ctx, student), models.KindStudent, studentID)
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// AssignHOD designates facultyID as head of department. An empty facultyID
// clears the designation.
func (s *HierarchyService) AssignHOD(ctx context.Context, departmentID, facultyID string) (*models.Department, error) {
	var dept *models.Department
	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		var err error
		dept, err = tx.GetDepartment(ctx, departmentID)
		if err != nil {
			return storeError(err, models.KindDepartment, departmentID)
		}
		if dept.Status != models.StatusActive {
			return apperrors.NewResourceNotFoundError(string(models.KindDepartment), departmentID)
		}

		if facultyID != "" {
			faculty, err := tx.GetFaculty(ctx, facultyID)
			if err != nil {
				return storeError(err, models.KindFaculty, facultyID)
			}
			if faculty.Status != models.StatusActive {
				return apperrors.NewResourceNotFoundError(string(models.KindFaculty), facultyID)
			}
			if faculty.DepartmentID != departmentID || !dept.Faculties.Has(facultyID) {
				return apperrors.NewCustomError(apperrors.ErrDepartmentMismatch, "head of department must belong to the department").
					WithDetails(map[string]interface{}{"departmentId": departmentID, "facultyId": facultyID})
			}
		}

		dept.HODID = facultyID
		dept.UpdatedAt = s.now()
		return storeError(tx.UpdateDepartment(ctx, dept), models.KindDepartment, departmentID)
	})
	if err != nil {
		return nil, err
	}
	return dept, nil
}

// AttachChild adds child to parent's membership set for edge and points the
// child at parent. It is idempotent. A child already pointing at a different
// parent is rejected with ErrConflictingParent; use Reassign instead.
func (s *HierarchyService) AttachChild(ctx context.Context, parent, child models.Ref, edge models.EdgeKind) error {
	if err := checkEdge(edge, parent, child); err != nil {
		return err
	}

	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		if err := requireActiveParent(ctx, tx, edge, parent.ID); err != nil {
			return err
		}
		current, err := currentParent(ctx, tx, edge, child.ID)
		if err != nil {
			return err
		}
		if err := requireActiveChild(ctx, tx, edge, child.ID); err != nil {
			return err
		}
		if current != "" && current != parent.ID {
			return apperrors.NewConflictingParentError(child.ID, current, parent.ID).
				WithDetails(map[string]interface{}{"edge": string(edge)})
		}
		if edge == models.EdgeFacultyStudent {
			student, err := tx.GetStudent(ctx, child.ID)
			if err != nil {
				return storeError(err, models.KindStudent, child.ID)
			}
			if err := requireSameDepartment(ctx, tx, parent.ID, student.DepartmentID); err != nil {
				return err
			}
		}

		if edge.HasMembershipSet() {
			if err := tx.AddMember(ctx, edge, parent.ID, child.ID); err != nil {
				return storeError(err, parent.Kind, parent.ID)
			}
		}
		if current == parent.ID {
			return nil
		}
		return s.writePointer(ctx, tx, edge, child.ID, parent.ID)
	})
	if err != nil {
		return err
	}

	logger.Debug().Str("edge", string(edge)).Str("parent", parent.ID).Str("child", child.ID).Msg("Child attached")
	return nil
}

// Reassign moves child from oldParent to newParent along edge. Both
// membership sets and the child pointer change together, then dependent
// links (department institute, coordinator, HOD) are re-derived. The
// returned refs name every entity whose rollups changed: the child, both
// parents, any coordinator or students released along the way and the
// institutes involved.
func (s *HierarchyService) Reassign(ctx context.Context, child, oldParent, newParent models.Ref, edge models.EdgeKind) ([]models.Ref, error) {
	if err := checkEdge(edge, newParent, child); err != nil {
		return nil, err
	}
	if oldParent.ID != "" && oldParent.Kind != newParent.Kind {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidEdge, "old and new parent must be the same kind")
	}

	var touched affectedRefs
	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		touched = affectedRefs{}
		touched.add(child.Kind, child.ID)
		touched.add(oldParent.Kind, oldParent.ID)
		touched.add(newParent.Kind, newParent.ID)

		if err := requireActiveParent(ctx, tx, edge, newParent.ID); err != nil {
			return err
		}
		current, err := currentParent(ctx, tx, edge, child.ID)
		if err != nil {
			return err
		}
		if err := requireActiveChild(ctx, tx, edge, child.ID); err != nil {
			return err
		}
		if current != oldParent.ID {
			return apperrors.NewConflictingParentError(child.ID, current, newParent.ID).
				WithDetails(map[string]interface{}{"edge": string(edge), "expectedParentId": oldParent.ID})
		}
		if edge == models.EdgeFacultyStudent {
			student, err := tx.GetStudent(ctx, child.ID)
			if err != nil {
				return storeError(err, models.KindStudent, child.ID)
			}
			if err := requireSameDepartment(ctx, tx, newParent.ID, student.DepartmentID); err != nil {
				return err
			}
		}

		if edge.HasMembershipSet() {
			if current != "" && current != newParent.ID {
				if err := tx.RemoveMember(ctx, edge, current, child.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
					return err
				}
			}
			if err := tx.AddMember(ctx, edge, newParent.ID, child.ID); err != nil {
				return storeError(err, newParent.Kind, newParent.ID)
			}
		}
		if current == newParent.ID {
			return nil
		}
		if err := s.writePointer(ctx, tx, edge, child.ID, newParent.ID); err != nil {
			return err
		}
		return s.rederive(ctx, tx, edge, child.ID, current, newParent.ID, &touched)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("edge", string(edge)).
		Str("child", child.ID).
		Str("from", oldParent.ID).
		Str("to", newParent.ID).
		Msg("Child reassigned")
	return touched.refs, nil
}

// DetachChild removes child from parent's membership set. For the
// coordinator edge the student's coordinator pointer is cleared as well.
// The child record is never deleted.
func (s *HierarchyService) DetachChild(ctx context.Context, parent, child models.Ref) error {
	edge, ok := models.EdgeBetween(parent.Kind, child.Kind)
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrInvalidEdge, fmt.Sprintf("%s cannot own %s", parent.Kind, child.Kind))
	}

	return s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		return s.detach(ctx, tx, edge, parent.ID, child.ID)
	})
}

func (s *HierarchyService) detach(ctx context.Context, tx repositories.EntityStore, edge models.EdgeKind, parentID, childID string) error {
	if parentID == "" {
		return nil
	}
	if edge.HasMembershipSet() {
		pk, _, _ := edge.Kinds()
		if err := tx.RemoveMember(ctx, edge, parentID, childID); err != nil {
			return storeError(err, pk, parentID)
		}
	}
	if edge != models.EdgeFacultyStudent {
		return nil
	}

	student, err := tx.GetStudent(ctx, childID)
	if err != nil {
		return storeError(err, models.KindStudent, childID)
	}
	if student.CoordinatorID != parentID {
		return nil
	}
	student.CoordinatorID = ""
	student.UpdatedAt = s.now()
	return storeError(tx.UpdateStudent(ctx, student), models.KindStudent, childID)
}

// Deactivate soft-deletes an entity: it becomes Inactive and is detached
// from its parent. A deactivated faculty also releases its students and any
// head-of-department designation.
func (s *HierarchyService) Deactivate(ctx context.Context, ref models.Ref) error {
	err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
		now := s.now()
		switch ref.Kind {
		case models.KindInstitute:
			inst, err := tx.GetInstitute(ctx, ref.ID)
			if err != nil {
				return storeError(err, ref.Kind, ref.ID)
			}
			inst.Status, inst.UpdatedAt = models.StatusInactive, now
			return tx.UpdateInstitute(ctx, inst)

		case models.KindCollege:
			college, err := tx.GetCollege(ctx, ref.ID)
			if err != nil {
				return storeError(err, ref.Kind, ref.ID)
			}
			college.Status, college.UpdatedAt = models.StatusInactive, now
			if err := tx.UpdateCollege(ctx, college); err != nil {
				return err
			}
			if err := s.detach(ctx, tx, models.EdgeInstituteCollege, college.InstituteID, college.ID); err != nil {
				return err
			}
			return s.recountInstitutes(ctx, tx, college.InstituteID)

		case models.KindDepartment:
			dept, err := tx.GetDepartment(ctx, ref.ID)
			if err != nil {
				return storeError(err, ref.Kind, ref.ID)
			}
			dept.Status, dept.UpdatedAt = models.StatusInactive, now
			if err := tx.UpdateDepartment(ctx, dept); err != nil {
				return err
			}
			if err := s.detach(ctx, tx, models.EdgeCollegeDepartment, dept.CollegeID, dept.ID); err != nil {
				return err
			}
			return s.recountForDepartments(ctx, tx, dept.ID)

		case models.KindFaculty:
			return s.deactivateFaculty(ctx, tx, ref.ID)

		case models.KindStudent:
			student, err := tx.GetStudent(ctx, ref.ID)
			if err != nil {
				return storeError(err, ref.Kind, ref.ID)
			}
			if err := s.detach(ctx, tx, models.EdgeFacultyStudent, student.CoordinatorID, student.ID); err != nil {
				return err
			}
			student, err = tx.GetStudent(ctx, ref.ID)
			if err != nil {
				return err
			}
			student.Status, student.UpdatedAt = models.StatusInactive, now
			if err := tx.UpdateStudent(ctx, student); err != nil {
				return err
			}
			return s.recountForDepartments(ctx, tx, student.DepartmentID)
		}
		return apperrors.NewValidationError(fmt.Sprintf("unknown entity kind %q", ref.Kind))
	})
	if err != nil {
		return err
	}

	logger.Info().Str("kind", string(ref.Kind)).Str("id", ref.ID).Msg("Entity deactivated")
	return nil
}

func (s *HierarchyService) deactivateFaculty(ctx context.Context, tx repositories.EntityStore, facultyID string) error {
	faculty, err := tx.GetFaculty(ctx, facultyID)
	if err != nil {
		return storeError(err, models.KindFaculty, facultyID)
	}

	students, err := tx.ListStudents(ctx, repositories.StudentFilter{CoordinatorID: facultyID})
	if err != nil {
		return err
	}
	for _, st := range students {
		if err := s.detach(ctx, tx, models.EdgeFacultyStudent, facultyID, st.ID); err != nil {
			return err
		}
	}
	for _, id := range faculty.Students {
		if err := tx.RemoveMember(ctx, models.EdgeFacultyStudent, facultyID, id); err != nil {
			return err
		}
	}

	if err := s.releaseHOD(ctx, tx, faculty.DepartmentID, facultyID); err != nil {
		return err
	}

	faculty.Status, faculty.UpdatedAt = models.StatusInactive, s.now()
	if err := tx.UpdateFaculty(ctx, faculty); err != nil {
		return err
	}
	return s.detach(ctx, tx, models.EdgeDepartmentFaculty, faculty.DepartmentID, faculty.ID)
}

// Reads

// GetInstitute returns an institute by id.
func (s *HierarchyService) GetInstitute(ctx context.Context, id string) (*models.Institute, error) {
	v, err := s.store.GetInstitute(ctx, id)
	return v, storeError(err, models.KindInstitute, id)
}

// GetCollege returns a college by id.
func (s *HierarchyService) GetCollege(ctx context.Context, id string) (*models.College, error) {
	v, err := s.store.GetCollege(ctx, id)
	return v, storeError(err, models.KindCollege, id)
}

// GetDepartment returns a department by id.
func (s *HierarchyService) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	v, err := s.store.GetDepartment(ctx, id)
	return v, storeError(err, models.KindDepartment, id)
}

// GetFaculty returns a faculty member by id.
func (s *HierarchyService) GetFaculty(ctx context.Context, id string) (*models.Faculty, error) {
	v, err := s.store.GetFaculty(ctx, id)
	return v, storeError(err, models.KindFaculty, id)
}

// GetStudent returns a student by id.
func (s *HierarchyService) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	v, err := s.store.GetStudent(ctx, id)
	return v, storeError(err, models.KindStudent, id)
}

// ListInstitutes returns every institute.
func (s *HierarchyService) ListInstitutes(ctx context.Context) ([]*models.Institute, error) {
	return s.store.ListInstitutes(ctx)
}

// ListColleges returns the colleges of an institute.
func (s *HierarchyService) ListColleges(ctx context.Context, instituteID string) ([]*models.College, error) {
	return s.store.ListColleges(ctx, instituteID)
}

// ListDepartments returns the departments of a college.
func (s *HierarchyService) ListDepartments(ctx context.Context, collegeID string) ([]*models.Department, error) {
	return s.store.ListDepartments(ctx, repositories.DepartmentFilter{CollegeID: collegeID})
}

// ListFaculties returns the faculty of a department.
func (s *HierarchyService) ListFaculties(ctx context.Context, departmentID string) ([]*models.Faculty, error) {
	return s.store.ListFaculties(ctx, repositories.FacultyFilter{DepartmentIDs: []string{departmentID}})
}

// ListStudents returns the students of a department, or those coordinated
// by coordinatorID when it is set.
func (s *HierarchyService) ListStudents(ctx context.Context, departmentID, coordinatorID string) ([]*models.Student, error) {
	filter := repositories.StudentFilter{CoordinatorID: coordinatorID}
	if departmentID != "" {
		filter.DepartmentIDs = []string{departmentID}
	}
	return s.store.ListStudents(ctx, filter)
}
