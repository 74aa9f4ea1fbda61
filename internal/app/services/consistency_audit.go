package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
)

// ViolationKind classifies a consistency violation.
type ViolationKind string

const (
	ViolationDepartmentInstitute   ViolationKind = "department_institute_mismatch"
	ViolationMissingMembership     ViolationKind = "missing_membership"
	ViolationOrphanMembership      ViolationKind = "orphan_membership"
	ViolationInactiveMember        ViolationKind = "inactive_member"
	ViolationDanglingParent        ViolationKind = "dangling_parent"
	ViolationCoordinatorDepartment ViolationKind = "coordinator_department_mismatch"
	ViolationInvalidHOD            ViolationKind = "invalid_hod"
	ViolationReviewTimestamp       ViolationKind = "review_timestamp"
	ViolationDuplicateCode         ViolationKind = "duplicate_code"
	ViolationStaleStudentCount     ViolationKind = "stale_student_count"
)

// Violation is one broken invariant. For membership violations Subject is
// the side holding the bad reference and Related is its counterpart.
type Violation struct {
	Kind      ViolationKind   `json:"kind"`
	Invariant int             `json:"invariant,omitempty"`
	Edge      models.EdgeKind `json:"edge,omitempty"`
	Subject   models.Ref      `json:"subject"`
	Related   *models.Ref     `json:"related,omitempty"`
	Message   string          `json:"message"`
}

func (v Violation) sortKey() string {
	related := ""
	if v.Related != nil {
		related = v.Related.String()
	}
	return strings.Join([]string{string(v.Kind), string(v.Edge), v.Subject.String(), related, v.Message}, "|")
}

// AuditScope limits an audit to one institute. The zero value audits the
// whole store.
type AuditScope struct {
	InstituteID string `json:"instituteId,omitempty"`
}

func (s AuditScope) String() string {
	if s.InstituteID == "" {
		return "all"
	}
	return "institute/" + s.InstituteID
}

// ConsistencyReport is the sorted result of VerifyConsistency. Two runs over
// unchanged data produce equal reports.
type ConsistencyReport struct {
	Scope      string      `json:"scope"`
	Checked    int         `json:"checked"`
	Violations []Violation `json:"violations"`
}

// Clean reports whether no violations were found.
func (r *ConsistencyReport) Clean() bool {
	return len(r.Violations) == 0
}

// RepairResult lists what Repair fixed and what it left for an operator.
type RepairResult struct {
	Scope   string      `json:"scope"`
	Applied []Violation `json:"applied"`
	Skipped []Violation `json:"skipped"`
}

// VerifyConsistency walks every edge in scope and reports invariant
// violations. It never writes and only fails when the store does.
func (s *HierarchyService) VerifyConsistency(ctx context.Context, scope AuditScope) (*ConsistencyReport, error) {
	snap, err := loadSnapshot(ctx, s.store, scope)
	if err != nil {
		return nil, err
	}

	a := &auditor{snap: snap}
	if err := a.run(ctx); err != nil {
		return nil, err
	}

	sort.Slice(a.violations, func(i, j int) bool {
		return a.violations[i].sortKey() < a.violations[j].sortKey()
	})
	report := &ConsistencyReport{
		Scope:      scope.String(),
		Checked:    snap.size(),
		Violations: a.violations,
	}
	if report.Violations == nil {
		report.Violations = []Violation{}
	}

	for _, v := range report.Violations {
		logger.Warn().
			Str("kind", string(v.Kind)).
			Str("subject", v.Subject.String()).
			Msg(v.Message)
	}
	return report, nil
}

// Repair verifies scope and applies the idempotent fixes. Child pointers are
// authoritative for membership sets. Violations needing a human decision
// (dangling required parents, review timestamps, duplicate codes) are
// returned as skipped.
func (s *HierarchyService) Repair(ctx context.Context, scope AuditScope) (*RepairResult, error) {
	report, err := s.VerifyConsistency(ctx, scope)
	if err != nil {
		return nil, err
	}

	result := &RepairResult{Scope: report.Scope, Applied: []Violation{}, Skipped: []Violation{}}
	for _, v := range report.Violations {
		var applied bool
		err := s.store.Atomically(ctx, func(tx repositories.EntityStore) error {
			var err error
			applied, err = s.fix(ctx, tx, v)
			return err
		})
		if err != nil {
			return result, fmt.Errorf("error repairing %s on %s: %w", v.Kind, v.Subject, err)
		}
		if applied {
			result.Applied = append(result.Applied, v)
		} else {
			result.Skipped = append(result.Skipped, v)
		}
	}

	logger.Info().
		Str("scope", result.Scope).
		Int("applied", len(result.Applied)).
		Int("skipped", len(result.Skipped)).
		Msg("Consistency repair finished")
	return result, nil
}

func (s *HierarchyService) fix(ctx context.Context, tx repositories.EntityStore, v Violation) (bool, error) {
	switch v.Kind {
	case ViolationMissingMembership:
		current, err := currentParent(ctx, tx, v.Edge, v.Subject.ID)
		if err != nil {
			return false, err
		}
		if current != v.Related.ID {
			// an earlier fix already moved the pointer
			return true, nil
		}
		return true, tx.AddMember(ctx, v.Edge, v.Related.ID, v.Subject.ID)

	case ViolationOrphanMembership, ViolationInactiveMember:
		return true, tx.RemoveMember(ctx, v.Edge, v.Subject.ID, v.Related.ID)

	case ViolationDepartmentInstitute:
		dept, err := tx.GetDepartment(ctx, v.Subject.ID)
		if err != nil {
			return false, err
		}
		college, err := tx.GetCollege(ctx, dept.CollegeID)
		if err != nil {
			return false, err
		}
		dept.InstituteID, dept.UpdatedAt = college.InstituteID, s.now()
		return true, tx.UpdateDepartment(ctx, dept)

	case ViolationCoordinatorDepartment:
		return true, s.detach(ctx, tx, models.EdgeFacultyStudent, v.Related.ID, v.Subject.ID)

	case ViolationDanglingParent:
		if v.Edge != models.EdgeFacultyStudent {
			return false, nil
		}
		student, err := tx.GetStudent(ctx, v.Subject.ID)
		if err != nil {
			return false, err
		}
		student.CoordinatorID, student.UpdatedAt = "", s.now()
		return true, tx.UpdateStudent(ctx, student)

	case ViolationInvalidHOD:
		return true, s.releaseHOD(ctx, tx, v.Subject.ID, v.Related.ID)

	case ViolationStaleStudentCount:
		return true, s.recountInstitutes(ctx, tx, v.Subject.ID)
	}
	return false, nil
}

// snapshot holds the entities of one audit. The ordered slices are the
// entities in scope; the maps also cache out-of-scope lookups, with nil
// marking a missing record.
type snapshot struct {
	r repositories.Reader

	institutes  []*models.Institute
	colleges    []*models.College
	departments []*models.Department
	faculties   []*models.Faculty
	students    []*models.Student

	instituteByID  map[string]*models.Institute
	collegeByID    map[string]*models.College
	departmentByID map[string]*models.Department
	facultyByID    map[string]*models.Faculty
	studentByID    map[string]*models.Student
}

func (s *snapshot) size() int {
	return len(s.institutes) + len(s.colleges) + len(s.departments) + len(s.faculties) + len(s.students)
}

func loadSnapshot(ctx context.Context, r repositories.Reader, scope AuditScope) (*snapshot, error) {
	snap := &snapshot{
		r:              r,
		instituteByID:  map[string]*models.Institute{},
		collegeByID:    map[string]*models.College{},
		departmentByID: map[string]*models.Department{},
		facultyByID:    map[string]*models.Faculty{},
		studentByID:    map[string]*models.Student{},
	}

	var err error
	if scope.InstituteID == "" {
		if snap.institutes, err = r.ListInstitutes(ctx); err != nil {
			return nil, err
		}
		if snap.colleges, err = r.ListColleges(ctx, ""); err != nil {
			return nil, err
		}
		if snap.departments, err = r.ListDepartments(ctx, repositories.DepartmentFilter{}); err != nil {
			return nil, err
		}
		if snap.faculties, err = r.ListFaculties(ctx, repositories.FacultyFilter{}); err != nil {
			return nil, err
		}
		if snap.students, err = r.ListStudents(ctx, repositories.StudentFilter{}); err != nil {
			return nil, err
		}
	} else {
		inst, err := r.GetInstitute(ctx, scope.InstituteID)
		if err != nil {
			return nil, storeError(err, models.KindInstitute, scope.InstituteID)
		}
		snap.institutes = []*models.Institute{inst}
		if snap.colleges, err = r.ListColleges(ctx, inst.ID); err != nil {
			return nil, err
		}

		seen := map[string]bool{}
		addDepartments := func(filter repositories.DepartmentFilter) error {
			depts, err := r.ListDepartments(ctx, filter)
			if err != nil {
				return err
			}
			for _, d := range depts {
				if !seen[d.ID] {
					seen[d.ID] = true
					snap.departments = append(snap.departments, d)
				}
			}
			return nil
		}
		for _, c := range snap.colleges {
			if err := addDepartments(repositories.DepartmentFilter{CollegeID: c.ID}); err != nil {
				return nil, err
			}
		}
		if err := addDepartments(repositories.DepartmentFilter{InstituteID: inst.ID}); err != nil {
			return nil, err
		}

		ids := make([]string, 0, len(snap.departments))
		for _, d := range snap.departments {
			ids = append(ids, d.ID)
		}
		if snap.faculties, err = r.ListFaculties(ctx, repositories.FacultyFilter{DepartmentIDs: ids}); err != nil {
			return nil, err
		}
		if snap.students, err = r.ListStudents(ctx, repositories.StudentFilter{DepartmentIDs: ids}); err != nil {
			return nil, err
		}
	}

	for _, v := range snap.institutes {
		snap.instituteByID[v.ID] = v
	}
	for _, v := range snap.colleges {
		snap.collegeByID[v.ID] = v
	}
	for _, v := range snap.departments {
		snap.departmentByID[v.ID] = v
	}
	for _, v := range snap.faculties {
		snap.facultyByID[v.ID] = v
	}
	for _, v := range snap.students {
		snap.studentByID[v.ID] = v
	}
	return snap, nil
}

// lookup returns the cached entity or fetches it. A missing entity is
// (nil, nil).
func lookup[T any](ctx context.Context, cache map[string]*T, id string, get func(context.Context, string) (*T, error)) (*T, error) {
	if v, ok := cache[id]; ok {
		return v, nil
	}
	v, err := get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		cache[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cache[id] = v
	return v, nil
}

type auditor struct {
	snap       *snapshot
	violations []Violation
}

func (a *auditor) add(v Violation) {
	a.violations = append(a.violations, v)
}

func ref(kind models.EntityKind, id string) *models.Ref {
	return &models.Ref{Kind: kind, ID: id}
}

func (a *auditor) run(ctx context.Context) error {
	steps := []func(context.Context) error{
		a.checkInstitutes,
		a.checkColleges,
		a.checkDepartments,
		a.checkFaculties,
		a.checkStudents,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	a.checkUniqueCodes()
	return nil
}

// memberState is what a parent's set entry resolves to.
type memberState struct {
	found   bool
	pointer string
	active  bool
}

// checkMembers flags set entries whose child is missing, points elsewhere or
// is inactive.
func (a *auditor) checkMembers(ctx context.Context, edge models.EdgeKind, parent models.Ref, members models.IDSet,
	resolve func(context.Context, string) (memberState, error)) error {
	_, ck, _ := edge.Kinds()
	invariant := edgeInvariant(edge)
	for _, id := range members {
		st, err := resolve(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case !st.found:
			a.add(Violation{Kind: ViolationOrphanMembership, Invariant: invariant, Edge: edge, Subject: parent, Related: ref(ck, id),
				Message: fmt.Sprintf("%s lists missing %s %s", parent, ck, id)})
		case st.pointer != parent.ID:
			a.add(Violation{Kind: ViolationOrphanMembership, Invariant: invariant, Edge: edge, Subject: parent, Related: ref(ck, id),
				Message: fmt.Sprintf("%s lists %s %s which points to %q", parent, ck, id, st.pointer)})
		case !st.active:
			a.add(Violation{Kind: ViolationInactiveMember, Invariant: invariant, Edge: edge, Subject: parent, Related: ref(ck, id),
				Message: fmt.Sprintf("%s lists inactive %s %s", parent, ck, id)})
		}
	}
	return nil
}

// checkPointer flags an active child whose parent is missing or does not
// list it.
func (a *auditor) checkPointer(edge models.EdgeKind, child models.Ref, parentID string, parentFound bool, parentSet models.IDSet) {
	pk, _, _ := edge.Kinds()
	if !parentFound {
		a.add(Violation{Kind: ViolationDanglingParent, Edge: edge, Subject: child, Related: ref(pk, parentID),
			Message: fmt.Sprintf("%s points to missing %s %q", child, pk, parentID)})
		return
	}
	if !parentSet.Has(child.ID) {
		a.add(Violation{Kind: ViolationMissingMembership, Invariant: edgeInvariant(edge), Edge: edge, Subject: child, Related: ref(pk, parentID),
			Message: fmt.Sprintf("%s %s does not list %s", pk, parentID, child)})
	}
}

func edgeInvariant(edge models.EdgeKind) int {
	switch edge {
	case models.EdgeDepartmentFaculty:
		return 2
	case models.EdgeFacultyStudent:
		return 4
	}
	return 0
}

func (a *auditor) checkInstitutes(ctx context.Context) error {
	for _, inst := range a.snap.institutes {
		parent := models.Ref{Kind: models.KindInstitute, ID: inst.ID}
		err := a.checkMembers(ctx, models.EdgeInstituteCollege, parent, inst.Colleges, func(ctx context.Context, id string) (memberState, error) {
			c, err := lookup(ctx, a.snap.collegeByID, id, a.snap.r.GetCollege)
			if err != nil || c == nil {
				return memberState{}, err
			}
			return memberState{found: true, pointer: c.InstituteID, active: c.Status == models.StatusActive}, nil
		})
		if err != nil {
			return err
		}

		n, err := CountInstituteStudents(ctx, a.snap.r, inst.ID)
		if err != nil {
			return err
		}
		if n != inst.StudentCount {
			a.add(Violation{Kind: ViolationStaleStudentCount, Subject: parent,
				Message: fmt.Sprintf("%s caches %d students, derived count is %d", parent, inst.StudentCount, n)})
		}
	}
	return nil
}

func (a *auditor) checkColleges(ctx context.Context) error {
	for _, c := range a.snap.colleges {
		self := models.Ref{Kind: models.KindCollege, ID: c.ID}
		if c.Status == models.StatusActive {
			inst, err := lookup(ctx, a.snap.instituteByID, c.InstituteID, a.snap.r.GetInstitute)
			if err != nil {
				return err
			}
			var set models.IDSet
			if inst != nil {
				set = inst.Colleges
			}
			a.checkPointer(models.EdgeInstituteCollege, self, c.InstituteID, inst != nil, set)
		}

		err := a.checkMembers(ctx, models.EdgeCollegeDepartment, self, c.Departments, func(ctx context.Context, id string) (memberState, error) {
			d, err := lookup(ctx, a.snap.departmentByID, id, a.snap.r.GetDepartment)
			if err != nil || d == nil {
				return memberState{}, err
			}
			return memberState{found: true, pointer: d.CollegeID, active: d.Status == models.StatusActive}, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *auditor) checkDepartments(ctx context.Context) error {
	for _, d := range a.snap.departments {
		self := models.Ref{Kind: models.KindDepartment, ID: d.ID}
		college, err := lookup(ctx, a.snap.collegeByID, d.CollegeID, a.snap.r.GetCollege)
		if err != nil {
			return err
		}
		if college != nil && college.InstituteID != d.InstituteID {
			a.add(Violation{Kind: ViolationDepartmentInstitute, Invariant: 1, Subject: self, Related: ref(models.KindCollege, college.ID),
				Message: fmt.Sprintf("%s has institute %q, its college has %q", self, d.InstituteID, college.InstituteID)})
		}
		if d.Status == models.StatusActive {
			var set models.IDSet
			if college != nil {
				set = college.Departments
			}
			a.checkPointer(models.EdgeCollegeDepartment, self, d.CollegeID, college != nil, set)
		}

		if d.HODID != "" {
			hod, err := lookup(ctx, a.snap.facultyByID, d.HODID, a.snap.r.GetFaculty)
			if err != nil {
				return err
			}
			if hod == nil || hod.DepartmentID != d.ID || hod.Status != models.StatusActive {
				a.add(Violation{Kind: ViolationInvalidHOD, Subject: self, Related: ref(models.KindFaculty, d.HODID),
					Message: fmt.Sprintf("%s head %s is not an active member", self, d.HODID)})
			}
		}

		err = a.checkMembers(ctx, models.EdgeDepartmentFaculty, self, d.Faculties, func(ctx context.Context, id string) (memberState, error) {
			f, err := lookup(ctx, a.snap.facultyByID, id, a.snap.r.GetFaculty)
			if err != nil || f == nil {
				return memberState{}, err
			}
			return memberState{found: true, pointer: f.DepartmentID, active: f.Status == models.StatusActive}, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *auditor) checkFaculties(ctx context.Context) error {
	for _, f := range a.snap.faculties {
		self := models.Ref{Kind: models.KindFaculty, ID: f.ID}
		if f.Status == models.StatusActive {
			dept, err := lookup(ctx, a.snap.departmentByID, f.DepartmentID, a.snap.r.GetDepartment)
			if err != nil {
				return err
			}
			var set models.IDSet
			if dept != nil {
				set = dept.Faculties
			}
			a.checkPointer(models.EdgeDepartmentFaculty, self, f.DepartmentID, dept != nil, set)
		}

		err := a.checkMembers(ctx, models.EdgeFacultyStudent, self, f.Students, func(ctx context.Context, id string) (memberState, error) {
			st, err := lookup(ctx, a.snap.studentByID, id, a.snap.r.GetStudent)
			if err != nil || st == nil {
				return memberState{}, err
			}
			return memberState{found: true, pointer: st.CoordinatorID, active: st.Status == models.StatusActive}, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *auditor) checkStudents(ctx context.Context) error {
	for _, st := range a.snap.students {
		self := models.Ref{Kind: models.KindStudent, ID: st.ID}

		for _, ach := range st.Achievements {
			pending := ach.Status == models.AchievementPending
			if pending == (ach.ReviewedAt != nil) {
				a.add(Violation{Kind: ViolationReviewTimestamp, Invariant: 5, Subject: self,
					Message: fmt.Sprintf("achievement %s is %s with reviewedAt set=%t", ach.ID, ach.Status, ach.ReviewedAt != nil)})
			}
		}

		if st.Status != models.StatusActive {
			continue
		}
		dept, err := lookup(ctx, a.snap.departmentByID, st.DepartmentID, a.snap.r.GetDepartment)
		if err != nil {
			return err
		}
		if dept == nil {
			a.add(Violation{Kind: ViolationDanglingParent, Edge: models.EdgeDepartmentStudent, Subject: self, Related: ref(models.KindDepartment, st.DepartmentID),
				Message: fmt.Sprintf("%s points to missing department %q", self, st.DepartmentID)})
		}

		if st.CoordinatorID == "" {
			continue
		}
		coord, err := lookup(ctx, a.snap.facultyByID, st.CoordinatorID, a.snap.r.GetFaculty)
		if err != nil {
			return err
		}
		var set models.IDSet
		if coord != nil {
			set = coord.Students
			if coord.DepartmentID != st.DepartmentID {
				a.add(Violation{Kind: ViolationCoordinatorDepartment, Invariant: 3, Subject: self, Related: ref(models.KindFaculty, coord.ID),
					Message: fmt.Sprintf("%s is in department %q, coordinator %s is in %q", self, st.DepartmentID, coord.ID, coord.DepartmentID)})
			}
		}
		a.checkPointer(models.EdgeFacultyStudent, self, st.CoordinatorID, coord != nil, set)
	}
	return nil
}

func (a *auditor) checkUniqueCodes() {
	type key struct {
		field string
		value string
	}
	owners := map[key][]models.Ref{}
	note := func(field, value string, r models.Ref) {
		if value == "" {
			return
		}
		k := key{field, strings.ToLower(value)}
		owners[k] = append(owners[k], r)
	}

	for _, v := range a.snap.institutes {
		note("institute.code", v.Code, models.Ref{Kind: models.KindInstitute, ID: v.ID})
	}
	for _, v := range a.snap.colleges {
		note("college.code", v.Code, models.Ref{Kind: models.KindCollege, ID: v.ID})
	}
	for _, v := range a.snap.departments {
		note("department.code", v.Code, models.Ref{Kind: models.KindDepartment, ID: v.ID})
	}
	for _, v := range a.snap.faculties {
		r := models.Ref{Kind: models.KindFaculty, ID: v.ID}
		note("faculty.code", v.FacultyCode, r)
		note("faculty.email", v.Email, r)
	}
	for _, v := range a.snap.students {
		r := models.Ref{Kind: models.KindStudent, ID: v.ID}
		note("student.code", v.StudentCode, r)
		note("student.email", v.Email, r)
	}

	for k, refs := range owners {
		for i := 1; i < len(refs); i++ {
			first := refs[0]
			a.add(Violation{Kind: ViolationDuplicateCode, Invariant: 6, Subject: refs[i], Related: &first,
				Message: fmt.Sprintf("%s %q is shared with %s", k.field, k.value, first)})
		}
	}
}
