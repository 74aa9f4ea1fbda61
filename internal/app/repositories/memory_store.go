package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
)

type memoryState struct {
	institutes  map[string]*models.Institute
	colleges    map[string]*models.College
	departments map[string]*models.Department
	faculties   map[string]*models.Faculty
	students    map[string]*models.Student
	requests    map[string]*models.InstituteRequest
}

func newMemoryState() *memoryState {
	return &memoryState{
		institutes:  map[string]*models.Institute{},
		colleges:    map[string]*models.College{},
		departments: map[string]*models.Department{},
		faculties:   map[string]*models.Faculty{},
		students:    map[string]*models.Student{},
		requests:    map[string]*models.InstituteRequest{},
	}
}

func (st *memoryState) clone() *memoryState {
	out := newMemoryState()
	for k, v := range st.institutes {
		out.institutes[k] = cloneInstitute(v)
	}
	for k, v := range st.colleges {
		out.colleges[k] = cloneCollege(v)
	}
	for k, v := range st.departments {
		out.departments[k] = cloneDepartment(v)
	}
	for k, v := range st.faculties {
		out.faculties[k] = cloneFaculty(v)
	}
	for k, v := range st.students {
		out.students[k] = cloneStudent(v)
	}
	for k, v := range st.requests {
		r := *v
		out.requests[k] = &r
	}
	return out
}

// MemoryStore is an EntityStore held entirely in memory. Atomically works on
// a copy of the state and swaps it in only when fn succeeds.
type MemoryStore struct {
	mu    *sync.RWMutex
	state *memoryState
	inTx  bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.RWMutex{}, state: newMemoryState()}
}

func (s *MemoryStore) read(fn func(st *memoryState) error) error {
	if !s.inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.state)
}

func (s *MemoryStore) write(fn func(st *memoryState) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.state)
}

// Atomically implements EntityStore.
func (s *MemoryStore) Atomically(ctx context.Context, fn func(tx EntityStore) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&MemoryStore{mu: s.mu, state: working, inTx: true}); err != nil {
		return err
	}
	*s.state = *working
	return nil
}

// Ping implements EntityStore.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func notFound(kind models.EntityKind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

func duplicate(key, value string) error {
	return &DuplicateKeyError{Key: key, Value: value}
}

// --- reads ---

func (s *MemoryStore) GetInstitute(ctx context.Context, id string) (*models.Institute, error) {
	var out *models.Institute
	err := s.read(func(st *memoryState) error {
		v, ok := st.institutes[id]
		if !ok {
			return notFound(models.KindInstitute, id)
		}
		out = cloneInstitute(v)
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetCollege(ctx context.Context, id string) (*models.College, error) {
	var out *models.College
	err := s.read(func(st *memoryState) error {
		v, ok := st.colleges[id]
		if !ok {
			return notFound(models.KindCollege, id)
		}
		out = cloneCollege(v)
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	var out *models.Department
	err := s.read(func(st *memoryState) error {
		v, ok := st.departments[id]
		if !ok {
			return notFound(models.KindDepartment, id)
		}
		out = cloneDepartment(v)
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetFaculty(ctx context.Context, id string) (*models.Faculty, error) {
	var out *models.Faculty
	err := s.read(func(st *memoryState) error {
		v, ok := st.faculties[id]
		if !ok {
			return notFound(models.KindFaculty, id)
		}
		out = cloneFaculty(v)
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	var out *models.Student
	err := s.read(func(st *memoryState) error {
		v, ok := st.students[id]
		if !ok {
			return notFound(models.KindStudent, id)
		}
		out = cloneStudent(v)
		return nil
	})
	return out, err
}

func (s *MemoryStore) GetInstituteRequest(ctx context.Context, id string) (*models.InstituteRequest, error) {
	var out *models.InstituteRequest
	err := s.read(func(st *memoryState) error {
		v, ok := st.requests[id]
		if !ok {
			return fmt.Errorf("%w: institute request %s", ErrNotFound, id)
		}
		r := *v
		out = &r
		return nil
	})
	return out, err
}

func (s *MemoryStore) ListInstitutes(ctx context.Context) ([]*models.Institute, error) {
	var out []*models.Institute
	err := s.read(func(st *memoryState) error {
		for _, v := range st.institutes {
			out = append(out, cloneInstitute(v))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return createdBefore(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, err
}

func (s *MemoryStore) ListColleges(ctx context.Context, instituteID string) ([]*models.College, error) {
	var out []*models.College
	err := s.read(func(st *memoryState) error {
		for _, v := range st.colleges {
			if instituteID == "" || v.InstituteID == instituteID {
				out = append(out, cloneCollege(v))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return createdBefore(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, err
}

func (s *MemoryStore) ListDepartments(ctx context.Context, filter DepartmentFilter) ([]*models.Department, error) {
	var out []*models.Department
	err := s.read(func(st *memoryState) error {
		for _, v := range st.departments {
			if filter.InstituteID != "" && v.InstituteID != filter.InstituteID {
				continue
			}
			if filter.CollegeID != "" && v.CollegeID != filter.CollegeID {
				continue
			}
			out = append(out, cloneDepartment(v))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return createdBefore(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, err
}

func (s *MemoryStore) ListFaculties(ctx context.Context, filter FacultyFilter) ([]*models.Faculty, error) {
	var out []*models.Faculty
	err := s.read(func(st *memoryState) error {
		for _, v := range st.faculties {
			if filter.DepartmentIDs != nil && !contains(filter.DepartmentIDs, v.DepartmentID) {
				continue
			}
			if filter.ActiveOnly && v.Status != models.StatusActive {
				continue
			}
			out = append(out, cloneFaculty(v))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return createdBefore(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, err
}

func (s *MemoryStore) ListStudents(ctx context.Context, filter StudentFilter) ([]*models.Student, error) {
	var out []*models.Student
	err := s.read(func(st *memoryState) error {
		for _, v := range st.students {
			if filter.DepartmentIDs != nil && !contains(filter.DepartmentIDs, v.DepartmentID) {
				continue
			}
			if filter.CoordinatorID != "" && v.CoordinatorID != filter.CoordinatorID {
				continue
			}
			if filter.ActiveOnly && v.Status != models.StatusActive {
				continue
			}
			out = append(out, cloneStudent(v))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return createdBefore(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, err
}

func (s *MemoryStore) ListInstituteRequests(ctx context.Context, status models.ApprovalStatus) ([]*models.InstituteRequest, error) {
	var out []*models.InstituteRequest
	err := s.read(func(st *memoryState) error {
		for _, v := range st.requests {
			if status == "" || v.Status == status {
				r := *v
				out = append(out, &r)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return createdBefore(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, err
}

// --- creates ---

func (s *MemoryStore) CreateInstitute(ctx context.Context, institute *models.Institute) error {
	return s.write(func(st *memoryState) error {
		if _, ok := st.institutes[institute.ID]; ok {
			return duplicate("institute.id", institute.ID)
		}
		if err := st.checkInstituteUnique(institute); err != nil {
			return err
		}
		st.institutes[institute.ID] = cloneInstitute(institute)
		return nil
	})
}

func (s *MemoryStore) CreateCollege(ctx context.Context, college *models.College) error {
	return s.write(func(st *memoryState) error {
		if _, ok := st.colleges[college.ID]; ok {
			return duplicate("college.id", college.ID)
		}
		if err := st.checkCollegeUnique(college); err != nil {
			return err
		}
		st.colleges[college.ID] = cloneCollege(college)
		return nil
	})
}

func (s *MemoryStore) CreateDepartment(ctx context.Context, department *models.Department) error {
	return s.write(func(st *memoryState) error {
		if _, ok := st.departments[department.ID]; ok {
			return duplicate("department.id", department.ID)
		}
		if err := st.checkDepartmentUnique(department); err != nil {
			return err
		}
		st.departments[department.ID] = cloneDepartment(department)
		return nil
	})
}

func (s *MemoryStore) CreateFaculty(ctx context.Context, faculty *models.Faculty) error {
	return s.write(func(st *memoryState) error {
		if _, ok := st.faculties[faculty.ID]; ok {
			return duplicate("faculty.id", faculty.ID)
		}
		if err := st.checkFacultyUnique(faculty); err != nil {
			return err
		}
		st.faculties[faculty.ID] = cloneFaculty(faculty)
		return nil
	})
}

func (s *MemoryStore) CreateStudent(ctx context.Context, student *models.Student) error {
	return s.write(func(st *memoryState) error {
		if _, ok := st.students[student.ID]; ok {
			return duplicate("student.id", student.ID)
		}
		if err := st.checkStudentUnique(student); err != nil {
			return err
		}
		st.students[student.ID] = cloneStudent(student)
		return nil
	})
}

func (s *MemoryStore) CreateInstituteRequest(ctx context.Context, request *models.InstituteRequest) error {
	return s.write(func(st *memoryState) error {
		if _, ok := st.requests[request.ID]; ok {
			return duplicate("institute_request.id", request.ID)
		}
		r := *request
		st.requests[request.ID] = &r
		return nil
	})
}

// --- updates ---

func (s *MemoryStore) UpdateInstitute(ctx context.Context, institute *models.Institute) error {
	return s.write(func(st *memoryState) error {
		cur, ok := st.institutes[institute.ID]
		if !ok {
			return notFound(models.KindInstitute, institute.ID)
		}
		if err := st.checkInstituteUnique(institute); err != nil {
			return err
		}
		next := cloneInstitute(institute)
		next.Colleges = cur.Colleges
		st.institutes[institute.ID] = next
		return nil
	})
}

func (s *MemoryStore) UpdateCollege(ctx context.Context, college *models.College) error {
	return s.write(func(st *memoryState) error {
		cur, ok := st.colleges[college.ID]
		if !ok {
			return notFound(models.KindCollege, college.ID)
		}
		if err := st.checkCollegeUnique(college); err != nil {
			return err
		}
		next := cloneCollege(college)
		next.Departments = cur.Departments
		st.colleges[college.ID] = next
		return nil
	})
}

func (s *MemoryStore) UpdateDepartment(ctx context.Context, department *models.Department) error {
	return s.write(func(st *memoryState) error {
		cur, ok := st.departments[department.ID]
		if !ok {
			return notFound(models.KindDepartment, department.ID)
		}
		if err := st.checkDepartmentUnique(department); err != nil {
			return err
		}
		next := cloneDepartment(department)
		next.Faculties = cur.Faculties
		st.departments[department.ID] = next
		return nil
	})
}

func (s *MemoryStore) UpdateFaculty(ctx context.Context, faculty *models.Faculty) error {
	return s.write(func(st *memoryState) error {
		cur, ok := st.faculties[faculty.ID]
		if !ok {
			return notFound(models.KindFaculty, faculty.ID)
		}
		if err := st.checkFacultyUnique(faculty); err != nil {
			return err
		}
		next := cloneFaculty(faculty)
		next.Students = cur.Students
		next.ReviewLog = cur.ReviewLog
		st.faculties[faculty.ID] = next
		return nil
	})
}

func (s *MemoryStore) UpdateStudent(ctx context.Context, student *models.Student) error {
	return s.write(func(st *memoryState) error {
		cur, ok := st.students[student.ID]
		if !ok {
			return notFound(models.KindStudent, student.ID)
		}
		if err := st.checkStudentUnique(student); err != nil {
			return err
		}
		next := cloneStudent(student)
		next.Achievements = cur.Achievements
		st.students[student.ID] = next
		return nil
	})
}

func (s *MemoryStore) UpdateInstituteRequest(ctx context.Context, request *models.InstituteRequest) error {
	return s.write(func(st *memoryState) error {
		if _, ok := st.requests[request.ID]; !ok {
			return fmt.Errorf("%w: institute request %s", ErrNotFound, request.ID)
		}
		r := *request
		st.requests[request.ID] = &r
		return nil
	})
}

// --- membership ---

func (s *MemoryStore) AddMember(ctx context.Context, edge models.EdgeKind, parentID, childID string) error {
	return s.write(func(st *memoryState) error {
		set, err := st.membershipSet(edge, parentID)
		if err != nil {
			return err
		}
		set.Add(childID)
		return nil
	})
}

func (s *MemoryStore) RemoveMember(ctx context.Context, edge models.EdgeKind, parentID, childID string) error {
	return s.write(func(st *memoryState) error {
		set, err := st.membershipSet(edge, parentID)
		if err != nil {
			return err
		}
		set.Remove(childID)
		return nil
	})
}

func (st *memoryState) membershipSet(edge models.EdgeKind, parentID string) (*models.IDSet, error) {
	switch edge {
	case models.EdgeInstituteCollege:
		if p, ok := st.institutes[parentID]; ok {
			return &p.Colleges, nil
		}
		return nil, notFound(models.KindInstitute, parentID)
	case models.EdgeCollegeDepartment:
		if p, ok := st.colleges[parentID]; ok {
			return &p.Departments, nil
		}
		return nil, notFound(models.KindCollege, parentID)
	case models.EdgeDepartmentFaculty:
		if p, ok := st.departments[parentID]; ok {
			return &p.Faculties, nil
		}
		return nil, notFound(models.KindDepartment, parentID)
	case models.EdgeFacultyStudent:
		if p, ok := st.faculties[parentID]; ok {
			return &p.Students, nil
		}
		return nil, notFound(models.KindFaculty, parentID)
	}
	return nil, fmt.Errorf("edge %s has no membership set", edge)
}

// --- achievements ---

func (s *MemoryStore) AppendAchievement(ctx context.Context, studentID string, achievement models.Achievement) error {
	return s.write(func(st *memoryState) error {
		student, ok := st.students[studentID]
		if !ok {
			return notFound(models.KindStudent, studentID)
		}
		student.Achievements = append(student.Achievements, cloneAchievement(achievement))
		return nil
	})
}

func (s *MemoryStore) RecordReview(ctx context.Context, record ReviewRecord) error {
	return s.write(func(st *memoryState) error {
		student, ok := st.students[record.StudentID]
		if !ok {
			return notFound(models.KindStudent, record.StudentID)
		}
		faculty, ok := st.faculties[record.FacultyID]
		if !ok {
			return notFound(models.KindFaculty, record.FacultyID)
		}
		achievement, ok := student.Achievement(record.AchievementID)
		if !ok {
			return fmt.Errorf("%w: achievement %s", ErrNotFound, record.AchievementID)
		}
		if achievement.Status != models.AchievementPending {
			return ErrNotPending
		}

		reviewedAt := record.ReviewedAt
		achievement.Status = record.Decision
		achievement.ReviewedAt = &reviewedAt
		achievement.Comment = record.Comment
		achievement.ReviewedBy = record.FacultyID
		faculty.ReviewLog = append(faculty.ReviewLog, models.ReviewLogEntry{
			AchievementID: record.AchievementID,
			StudentID:     record.StudentID,
			Decision:      record.Decision,
			Comment:       record.Comment,
			ReviewedAt:    record.ReviewedAt,
		})
		return nil
	})
}

// --- unique indexes ---

func (st *memoryState) checkInstituteUnique(v *models.Institute) error {
	for _, o := range st.institutes {
		if o.ID == v.ID {
			continue
		}
		if o.Code == v.Code {
			return duplicate(KeyInstituteCode, v.Code)
		}
		if v.Email != "" && o.Email == v.Email {
			return duplicate("institute.email", v.Email)
		}
	}
	return nil
}

func (st *memoryState) checkCollegeUnique(v *models.College) error {
	for _, o := range st.colleges {
		if o.ID != v.ID && o.Code == v.Code {
			return duplicate("college.code", v.Code)
		}
	}
	return nil
}

func (st *memoryState) checkDepartmentUnique(v *models.Department) error {
	for _, o := range st.departments {
		if o.ID != v.ID && o.Code == v.Code {
			return duplicate("department.code", v.Code)
		}
	}
	return nil
}

func (st *memoryState) checkFacultyUnique(v *models.Faculty) error {
	for _, o := range st.faculties {
		if o.ID == v.ID {
			continue
		}
		if o.FacultyCode == v.FacultyCode {
			return duplicate("faculty.faculty_code", v.FacultyCode)
		}
		if o.Email == v.Email {
			return duplicate("faculty.email", v.Email)
		}
	}
	return nil
}

func (st *memoryState) checkStudentUnique(v *models.Student) error {
	for _, o := range st.students {
		if o.ID == v.ID {
			continue
		}
		if o.StudentCode == v.StudentCode {
			return duplicate("student.student_code", v.StudentCode)
		}
		if o.Email == v.Email {
			return duplicate("student.email", v.Email)
		}
	}
	return nil
}

// --- helpers ---

func createdBefore(a time.Time, aID string, b time.Time, bID string) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return aID < bID
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneInstitute(v *models.Institute) *models.Institute {
	out := *v
	out.Colleges = v.Colleges.Clone()
	out.ApprovedAt = cloneTime(v.ApprovedAt)
	return &out
}

func cloneCollege(v *models.College) *models.College {
	out := *v
	out.Departments = v.Departments.Clone()
	return &out
}

func cloneDepartment(v *models.Department) *models.Department {
	out := *v
	out.Faculties = v.Faculties.Clone()
	return &out
}

func cloneFaculty(v *models.Faculty) *models.Faculty {
	out := *v
	out.Students = v.Students.Clone()
	out.ReviewLog = make([]models.ReviewLogEntry, len(v.ReviewLog))
	copy(out.ReviewLog, v.ReviewLog)
	return &out
}

func cloneStudent(v *models.Student) *models.Student {
	out := *v
	out.GPA = cloneFloat(v.GPA)
	out.Attendance = cloneFloat(v.Attendance)
	out.Achievements = make([]models.Achievement, len(v.Achievements))
	for i, a := range v.Achievements {
		out.Achievements[i] = cloneAchievement(a)
	}
	return &out
}

func cloneAchievement(a models.Achievement) models.Achievement {
	a.DateCompleted = cloneTime(a.DateCompleted)
	a.ReviewedAt = cloneTime(a.ReviewedAt)
	return a
}
