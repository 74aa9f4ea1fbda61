package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
)

func checkEdge(edge models.EdgeKind, parent, child models.Ref) error {
	pk, ck, ok := edge.Kinds()
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrInvalidEdge, fmt.Sprintf("unknown edge %q", edge))
	}
	if parent.Kind != pk || child.Kind != ck {
		return apperrors.NewCustomError(apperrors.ErrInvalidEdge,
			fmt.Sprintf("edge %s joins %s to %s, got %s and %s", edge, pk, ck, parent.Kind, child.Kind))
	}
	return nil
}

// requireActiveParent fails with ErrParentNotFound unless the parent side of
// edge exists and is active.
func requireActiveParent(ctx context.Context, tx repositories.Reader, edge models.EdgeKind, parentID string) error {
	pk, _, _ := edge.Kinds()
	if parentID == "" {
		return apperrors.NewParentNotFoundError(string(pk), parentID)
	}

	var active bool
	switch pk {
	case models.KindInstitute:
		v, err := tx.GetInstitute(ctx, parentID)
		if err != nil {
			return parentError(err, pk, parentID)
		}
		active = v.IsActive()
	case models.KindCollege:
		v, err := tx.GetCollege(ctx, parentID)
		if err != nil {
			return parentError(err, pk, parentID)
		}
		active = v.Status == models.StatusActive
	case models.KindDepartment:
		v, err := tx.GetDepartment(ctx, parentID)
		if err != nil {
			return parentError(err, pk, parentID)
		}
		active = v.Status == models.StatusActive
	case models.KindFaculty:
		v, err := tx.GetFaculty(ctx, parentID)
		if err != nil {
			return parentError(err, pk, parentID)
		}
		active = v.Status == models.StatusActive
	}
	if !active {
		return apperrors.NewParentNotFoundError(string(pk), parentID).
			WithDetails(map[string]interface{}{"reason": "inactive"})
	}
	return nil
}

// requireActiveChild fails with ErrResourceNotFound when the child side of
// edge does not exist or has been deactivated.
func requireActiveChild(ctx context.Context, tx repositories.Reader, edge models.EdgeKind, childID string) error {
	_, ck, _ := edge.Kinds()

	var status models.EntityStatus
	switch ck {
	case models.KindCollege:
		v, err := tx.GetCollege(ctx, childID)
		if err != nil {
			return storeError(err, ck, childID)
		}
		status = v.Status
	case models.KindDepartment:
		v, err := tx.GetDepartment(ctx, childID)
		if err != nil {
			return storeError(err, ck, childID)
		}
		status = v.Status
	case models.KindFaculty:
		v, err := tx.GetFaculty(ctx, childID)
		if err != nil {
			return storeError(err, ck, childID)
		}
		status = v.Status
	case models.KindStudent:
		v, err := tx.GetStudent(ctx, childID)
		if err != nil {
			return storeError(err, ck, childID)
		}
		status = v.Status
	}
	if status != models.StatusActive {
		return apperrors.NewResourceNotFoundError(string(ck), childID).
			WithDetails(map[string]interface{}{"reason": "inactive"})
	}
	return nil
}

// affectedRefs collects the entities whose rollups a write changed, in the
// order they were first seen.
type affectedRefs struct {
	refs []models.Ref
	seen map[models.Ref]bool
}

func (a *affectedRefs) add(kind models.EntityKind, id string) {
	if id == "" {
		return
	}
	ref := models.Ref{Kind: kind, ID: id}
	if a.seen == nil {
		a.seen = map[models.Ref]bool{}
	}
	if a.seen[ref] {
		return
	}
	a.seen[ref] = true
	a.refs = append(a.refs, ref)
}

// addInstitutesOfDepartments records the institutes owning the given
// departments. Missing departments are skipped.
func (a *affectedRefs) addInstitutesOfDepartments(ctx context.Context, r repositories.Reader, departmentIDs ...string) error {
	for _, id := range departmentIDs {
		instituteID, err := instituteOfDepartment(ctx, r, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return err
		}
		a.add(models.KindInstitute, instituteID)
	}
	return nil
}

// requireSameDepartment enforces that a coordinator belongs to the student's
// department.
func requireSameDepartment(ctx context.Context, tx repositories.Reader, facultyID, departmentID string) error {
	faculty, err := tx.GetFaculty(ctx, facultyID)
	if err != nil {
		return parentError(err, models.KindFaculty, facultyID)
	}
	if faculty.DepartmentID != departmentID {
		return apperrors.NewCustomError(apperrors.ErrDepartmentMismatch, "coordinator must belong to the student's department").
			WithDetails(map[string]interface{}{
				"facultyId":             facultyID,
				"facultyDepartmentId":   faculty.DepartmentID,
				"requestedDepartmentId": departmentID,
			})
	}
	return nil
}

// currentParent reads the child's pointer for edge.
func currentParent(ctx context.Context, tx repositories.Reader, edge models.EdgeKind, childID string) (string, error) {
	_, ck, _ := edge.Kinds()
	switch edge {
	case models.EdgeInstituteCollege:
		v, err := tx.GetCollege(ctx, childID)
		if err != nil {
			return "", storeError(err, ck, childID)
		}
		return v.InstituteID, nil
	case models.EdgeCollegeDepartment:
		v, err := tx.GetDepartment(ctx, childID)
		if err != nil {
			return "", storeError(err, ck, childID)
		}
		return v.CollegeID, nil
	case models.EdgeDepartmentFaculty:
		v, err := tx.GetFaculty(ctx, childID)
		if err != nil {
			return "", storeError(err, ck, childID)
		}
		return v.DepartmentID, nil
	case models.EdgeDepartmentStudent, models.EdgeFacultyStudent:
		v, err := tx.GetStudent(ctx, childID)
		if err != nil {
			return "", storeError(err, ck, childID)
		}
		if edge == models.EdgeFacultyStudent {
			return v.CoordinatorID, nil
		}
		return v.DepartmentID, nil
	}
	return "", apperrors.NewCustomError(apperrors.ErrInvalidEdge, fmt.Sprintf("unknown edge %q", edge))
}

// writePointer points the child at parentID. Moving a college also moves the
// denormalized institute of its departments; moving a department copies the
// new college's institute.
func (s *HierarchyService) writePointer(ctx context.Context, tx repositories.EntityStore, edge models.EdgeKind, childID, parentID string) error {
	now := s.now()
	switch edge {
	case models.EdgeInstituteCollege:
		college, err := tx.GetCollege(ctx, childID)
		if err != nil {
			return storeError(err, models.KindCollege, childID)
		}
		college.InstituteID, college.UpdatedAt = parentID, now
		if err := tx.UpdateCollege(ctx, college); err != nil {
			return err
		}
		depts, err := tx.ListDepartments(ctx, repositories.DepartmentFilter{CollegeID: childID})
		if err != nil {
			return err
		}
		for _, d := range depts {
			d.InstituteID, d.UpdatedAt = parentID, now
			if err := tx.UpdateDepartment(ctx, d); err != nil {
				return err
			}
		}
		return nil

	case models.EdgeCollegeDepartment:
		college, err := tx.GetCollege(ctx, parentID)
		if err != nil {
			return parentError(err, models.KindCollege, parentID)
		}
		dept, err := tx.GetDepartment(ctx, childID)
		if err != nil {
			return storeError(err, models.KindDepartment, childID)
		}
		dept.CollegeID, dept.InstituteID, dept.UpdatedAt = parentID, college.InstituteID, now
		return tx.UpdateDepartment(ctx, dept)

	case models.EdgeDepartmentFaculty:
		faculty, err := tx.GetFaculty(ctx, childID)
		if err != nil {
			return storeError(err, models.KindFaculty, childID)
		}
		faculty.DepartmentID, faculty.UpdatedAt = parentID, now
		return tx.UpdateFaculty(ctx, faculty)

	case models.EdgeDepartmentStudent, models.EdgeFacultyStudent:
		student, err := tx.GetStudent(ctx, childID)
		if err != nil {
			return storeError(err, models.KindStudent, childID)
		}
		if edge == models.EdgeFacultyStudent {
			student.CoordinatorID = parentID
		} else {
			student.DepartmentID = parentID
		}
		student.UpdatedAt = now
		return tx.UpdateStudent(ctx, student)
	}
	return apperrors.NewCustomError(apperrors.ErrInvalidEdge, fmt.Sprintf("unknown edge %q", edge))
}

// rederive restores dependent links after a pointer moved from oldParent to
// newParent. Every entity whose rollups change is recorded in touched.
func (s *HierarchyService) rederive(ctx context.Context, tx repositories.EntityStore, edge models.EdgeKind, childID, oldParent, newParent string, touched *affectedRefs) error {
	switch edge {
	case models.EdgeInstituteCollege:
		return s.recountInstitutes(ctx, tx, oldParent, newParent)

	case models.EdgeCollegeDepartment:
		var institutes []string
		for _, collegeID := range []string{oldParent, newParent} {
			college, err := tx.GetCollege(ctx, collegeID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					continue
				}
				return err
			}
			institutes = append(institutes, college.InstituteID)
			touched.add(models.KindInstitute, college.InstituteID)
		}
		return s.recountInstitutes(ctx, tx, institutes...)

	case models.EdgeDepartmentFaculty:
		students, err := tx.ListStudents(ctx, repositories.StudentFilter{CoordinatorID: childID})
		if err != nil {
			return err
		}
		for _, st := range students {
			if st.DepartmentID == newParent {
				continue
			}
			if err := s.detach(ctx, tx, models.EdgeFacultyStudent, childID, st.ID); err != nil {
				return err
			}
			touched.add(models.KindStudent, st.ID)
		}
		if err := touched.addInstitutesOfDepartments(ctx, tx, oldParent, newParent); err != nil {
			return err
		}
		return s.releaseHOD(ctx, tx, oldParent, childID)

	case models.EdgeDepartmentStudent:
		student, err := tx.GetStudent(ctx, childID)
		if err != nil {
			return storeError(err, models.KindStudent, childID)
		}
		if student.CoordinatorID != "" {
			dept, err := tx.GetDepartment(ctx, newParent)
			if err != nil {
				return parentError(err, models.KindDepartment, newParent)
			}
			if !dept.Faculties.Has(student.CoordinatorID) {
				if err := s.detach(ctx, tx, models.EdgeFacultyStudent, student.CoordinatorID, childID); err != nil {
					return err
				}
				touched.add(models.KindFaculty, student.CoordinatorID)
			}
		}
		if err := touched.addInstitutesOfDepartments(ctx, tx, oldParent, newParent); err != nil {
			return err
		}
		return s.recountForDepartments(ctx, tx, oldParent, newParent)
	}
	return nil
}

func (s *HierarchyService) releaseHOD(ctx context.Context, tx repositories.EntityStore, departmentID, facultyID string) error {
	if departmentID == "" {
		return nil
	}
	dept, err := tx.GetDepartment(ctx, departmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	if dept.HODID != facultyID {
		return nil
	}
	dept.HODID, dept.UpdatedAt = "", s.now()
	return tx.UpdateDepartment(ctx, dept)
}

// recountForDepartments refreshes the cached student count of the institutes
// owning the given departments.
func (s *HierarchyService) recountForDepartments(ctx context.Context, tx repositories.EntityStore, departmentIDs ...string) error {
	var institutes []string
	for _, id := range departmentIDs {
		instituteID, err := instituteOfDepartment(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return err
		}
		institutes = append(institutes, instituteID)
	}
	return s.recountInstitutes(ctx, tx, institutes...)
}

func (s *HierarchyService) recountInstitutes(ctx context.Context, tx repositories.EntityStore, instituteIDs ...string) error {
	seen := make(map[string]bool, len(instituteIDs))
	for _, id := range instituteIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		inst, err := tx.GetInstitute(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return err
		}
		n, err := CountInstituteStudents(ctx, tx, id)
		if err != nil {
			return err
		}
		if inst.StudentCount == n {
			continue
		}
		inst.StudentCount, inst.UpdatedAt = n, s.now()
		if err := tx.UpdateInstitute(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

// instituteOfDepartment follows department → college → institute through the
// authoritative child pointers.
func instituteOfDepartment(ctx context.Context, r repositories.Reader, departmentID string) (string, error) {
	if departmentID == "" {
		return "", repositories.ErrNotFound
	}
	dept, err := r.GetDepartment(ctx, departmentID)
	if err != nil {
		return "", err
	}
	college, err := r.GetCollege(ctx, dept.CollegeID)
	if err != nil {
		return "", err
	}
	return college.InstituteID, nil
}

// CountInstituteStudents derives the number of active students reachable
// from an institute through active colleges and departments, walking the
// child pointers. It is the source of truth for Institute.StudentCount.
func CountInstituteStudents(ctx context.Context, r repositories.Reader, instituteID string) (int, error) {
	ids, err := departmentsOfInstitute(ctx, r, instituteID)
	if err != nil {
		return 0, err
	}
	students, err := r.ListStudents(ctx, repositories.StudentFilter{DepartmentIDs: ids, ActiveOnly: true})
	if err != nil {
		return 0, err
	}
	return len(students), nil
}

func departmentsOfInstitute(ctx context.Context, r repositories.Reader, instituteID string) ([]string, error) {
	colleges, err := r.ListColleges(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, c := range colleges {
		if c.Status != models.StatusActive {
			continue
		}
		depts, err := r.ListDepartments(ctx, repositories.DepartmentFilter{CollegeID: c.ID})
		if err != nil {
			return nil, err
		}
		for _, d := range depts {
			if d.Status == models.StatusActive {
				ids = append(ids, d.ID)
			}
		}
	}
	return ids, nil
}
