package services

import (
	"context"
	"errors"
	"time"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/cache"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
)

// StudentStats is the dashboard rollup of one student.
type StudentStats struct {
	StudentID    string          `json:"studentId"`
	Name         string          `json:"name"`
	DepartmentID string          `json:"departmentId"`
	Counts       StatusCounts    `json:"counts"`
	ApprovalRate int             `json:"approvalRate"`
	Distribution Distribution    `json:"distribution"`
	Categories   []CategoryCount `json:"categories"`
	GPA          *float64        `json:"gpa,omitempty"`
	Attendance   *float64        `json:"attendance,omitempty"`
	Timeline     []TrendPoint    `json:"timeline"`
	Growth       Growth          `json:"growth"`
	MonthlyGoal  MonthlyGoal     `json:"monthlyGoal"`
}

// FacultyStats is the rollup of a faculty member's coordinated roster.
type FacultyStats struct {
	FacultyID      string          `json:"facultyId"`
	Name           string          `json:"name"`
	DepartmentID   string          `json:"departmentId"`
	RosterSize     int             `json:"rosterSize"`
	Counts         StatusCounts    `json:"counts"`
	ApprovalRate   int             `json:"approvalRate"`
	Distribution   Distribution    `json:"distribution"`
	ActiveStudents int             `json:"activeStudents"`
	Categories     []CategoryCount `json:"categories"`
	ReviewsLogged  int             `json:"reviewsLogged"`
	TopPerformers  []Performer     `json:"topPerformers"`
}

// FacultySummary is a faculty line of a department rollup.
type FacultySummary struct {
	FacultyID    string       `json:"facultyId"`
	Name         string       `json:"name"`
	RosterSize   int          `json:"rosterSize"`
	Counts       StatusCounts `json:"counts"`
	ApprovalRate int          `json:"approvalRate"`
}

// DepartmentStats is the rollup of one department.
type DepartmentStats struct {
	DepartmentID      string           `json:"departmentId"`
	Name              string           `json:"name"`
	FacultyCount      int              `json:"facultyCount"`
	StudentCount      int              `json:"studentCount"`
	Counts            StatusCounts     `json:"counts"`
	ApprovalRate      int              `json:"approvalRate"`
	Distribution      Distribution     `json:"distribution"`
	AverageGPA        float64          `json:"averageGpa"`
	AverageAttendance float64          `json:"averageAttendance"`
	Faculty           []FacultySummary `json:"faculty"`
}

// DepartmentSummary is a department line of an institute rollup.
type DepartmentSummary struct {
	DepartmentID string       `json:"departmentId"`
	Name         string       `json:"name"`
	StudentCount int          `json:"studentCount"`
	Counts       StatusCounts `json:"counts"`
	ApprovalRate int          `json:"approvalRate"`
}

// InstituteStats is the rollup of one institute.
type InstituteStats struct {
	InstituteID     string              `json:"instituteId"`
	Name            string              `json:"name"`
	CollegeCount    int                 `json:"collegeCount"`
	DepartmentCount int                 `json:"departmentCount"`
	FacultyCount    int                 `json:"facultyCount"`
	StudentCount    int                 `json:"studentCount"`
	Counts          StatusCounts        `json:"counts"`
	ApprovalRate    int                 `json:"approvalRate"`
	Distribution    Distribution        `json:"distribution"`
	Categories      []CategoryCount     `json:"categories"`
	Departments     []DepartmentSummary `json:"departments"`
}

// PlatformStats is the super-admin rollup.
type PlatformStats struct {
	ApprovedInstitutes int          `json:"approvedInstitutes"`
	PendingRequests    int          `json:"pendingRequests"`
	ActiveStudents     int          `json:"activeStudents"`
	FacultyCount       int          `json:"facultyCount"`
	Counts             StatusCounts `json:"counts"`
	ApprovalRate       int          `json:"approvalRate"`
	Distribution       Distribution `json:"distribution"`
}

// TrendQuery selects the submissions counted by SubmissionTrend. A zero
// Scope covers the whole platform; a faculty scope covers its roster.
type TrendQuery struct {
	Scope      models.Ref
	Window     Window
	Status     models.AchievementStatus
	Cumulative bool
}

// TrendSeries is a bucketed series with its bucket size.
type TrendSeries struct {
	Window      Window       `json:"window"`
	Granularity Granularity  `json:"granularity"`
	Points      []TrendPoint `json:"points"`
}

// PlatformGrowth holds the platform growth series.
type PlatformGrowth struct {
	Window       Window       `json:"window"`
	Granularity  Granularity  `json:"granularity"`
	Students     []TrendPoint `json:"students"`
	Achievements []TrendPoint `json:"achievements"`
	Institutes   []TrendPoint `json:"institutes"`
}

// AnalyticsService computes read-only rollups. Results may be served from an
// advisory cache for up to ttl.
type AnalyticsService struct {
	store repositories.Reader
	cache cache.Cache
	ttl   time.Duration
	now   Clock
}

// NewAnalyticsService creates a new analytics service. A nil cache disables
// caching.
func NewAnalyticsService(store repositories.Reader, c cache.Cache, ttl time.Duration, clock Clock) *AnalyticsService {
	if c == nil {
		c = cache.Noop{}
	}
	return &AnalyticsService{store: store, cache: c, ttl: ttl, now: clockOrDefault(clock)}
}

func cachedStats[T any](ctx context.Context, s *AnalyticsService, key string, compute func(context.Context) (*T, error)) (*T, error) {
	var hit T
	err := s.cache.Get(ctx, key, &hit)
	if err == nil {
		return &hit, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn().Err(err).Str("key", key).Msg("Analytics cache read failed")
	}

	out, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Analytics cache write failed")
	}
	return out, nil
}

// Invalidate drops cached rollups of the given entities and the platform.
func (s *AnalyticsService) Invalidate(ctx context.Context, refs ...models.Ref) {
	keys := []string{cache.PrefixPlatformStats}
	for _, r := range refs {
		if r.ID == "" {
			continue
		}
		switch r.Kind {
		case models.KindStudent:
			keys = append(keys, cache.PrefixStudentStats+r.ID)
		case models.KindFaculty:
			keys = append(keys, cache.PrefixFacultyStats+r.ID)
		case models.KindDepartment:
			keys = append(keys, cache.PrefixDepartmentStats+r.ID)
		case models.KindInstitute:
			keys = append(keys, cache.PrefixInstituteStats+r.ID)
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("Analytics cache invalidation failed")
	}
}

// InvalidateEvent drops every rollup a review event can change: the
// student, the faculty involved, the department and its institute.
func (s *AnalyticsService) InvalidateEvent(ctx context.Context, event models.ReviewEvent) {
	refs := []models.Ref{
		{Kind: models.KindStudent, ID: event.StudentID},
		{Kind: models.KindDepartment, ID: event.DepartmentID},
	}
	for _, id := range event.Recipients {
		if id != event.StudentID {
			refs = append(refs, models.Ref{Kind: models.KindFaculty, ID: id})
		}
	}
	if instituteID, err := instituteOfDepartment(ctx, s.store, event.DepartmentID); err == nil {
		refs = append(refs, models.Ref{Kind: models.KindInstitute, ID: instituteID})
	}
	s.Invalidate(ctx, refs...)
}

// StudentStats returns the rollup of one student.
func (s *AnalyticsService) StudentStats(ctx context.Context, studentID string) (*StudentStats, error) {
	return cachedStats(ctx, s, cache.PrefixStudentStats+studentID, func(ctx context.Context) (*StudentStats, error) {
		st, err := s.store.GetStudent(ctx, studentID)
		if err != nil {
			return nil, storeError(err, models.KindStudent, studentID)
		}
		now := s.now()
		one := []*models.Student{st}
		counts := countStatuses(one)
		return &StudentStats{
			StudentID:    st.ID,
			Name:         st.FullName(),
			DepartmentID: st.DepartmentID,
			Counts:       counts,
			ApprovalRate: counts.ApprovalRate(),
			Distribution: counts.Distribution(),
			Categories:   categoryBreakdown(one),
			GPA:          st.GPA,
			Attendance:   st.Attendance,
			Timeline:     Trend(Window365, now, uploadTimes(one), false),
			Growth:       growthOf(st.Achievements, now),
			MonthlyGoal:  monthlyGoalOf(st.Achievements, now),
		}, nil
	})
}

// FacultyStats returns the rollup of the students a faculty member
// coordinates.
func (s *AnalyticsService) FacultyStats(ctx context.Context, facultyID string) (*FacultyStats, error) {
	return cachedStats(ctx, s, cache.PrefixFacultyStats+facultyID, func(ctx context.Context) (*FacultyStats, error) {
		f, err := s.store.GetFaculty(ctx, facultyID)
		if err != nil {
			return nil, storeError(err, models.KindFaculty, facultyID)
		}
		roster, err := s.store.ListStudents(ctx, repositories.StudentFilter{CoordinatorID: f.ID, ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		counts := countStatuses(roster)
		return &FacultyStats{
			FacultyID:      f.ID,
			Name:           f.FullName(),
			DepartmentID:   f.DepartmentID,
			RosterSize:     len(roster),
			Counts:         counts,
			ApprovalRate:   counts.ApprovalRate(),
			Distribution:   counts.Distribution(),
			ActiveStudents: activeStudents(roster, s.now()),
			Categories:     categoryBreakdown(roster),
			ReviewsLogged:  len(f.ReviewLog),
			TopPerformers:  topPerformers(roster, topPerformerLimit),
		}, nil
	})
}

// DepartmentStats returns the rollup of one department. The student count is
// the effective population: active students whose department is this one.
func (s *AnalyticsService) DepartmentStats(ctx context.Context, departmentID string) (*DepartmentStats, error) {
	return cachedStats(ctx, s, cache.PrefixDepartmentStats+departmentID, func(ctx context.Context) (*DepartmentStats, error) {
		d, err := s.store.GetDepartment(ctx, departmentID)
		if err != nil {
			return nil, storeError(err, models.KindDepartment, departmentID)
		}
		ids := []string{d.ID}
		faculties, err := s.store.ListFaculties(ctx, repositories.FacultyFilter{DepartmentIDs: ids, ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		students, err := s.store.ListStudents(ctx, repositories.StudentFilter{DepartmentIDs: ids, ActiveOnly: true})
		if err != nil {
			return nil, err
		}

		rosters := map[string][]*models.Student{}
		gpas := make([]*float64, 0, len(students))
		attendance := make([]*float64, 0, len(students))
		for _, st := range students {
			if st.CoordinatorID != "" {
				rosters[st.CoordinatorID] = append(rosters[st.CoordinatorID], st)
			}
			gpas = append(gpas, st.GPA)
			attendance = append(attendance, st.Attendance)
		}

		summaries := make([]FacultySummary, 0, len(faculties))
		for _, f := range faculties {
			fc := countStatuses(rosters[f.ID])
			summaries = append(summaries, FacultySummary{
				FacultyID:    f.ID,
				Name:         f.FullName(),
				RosterSize:   len(rosters[f.ID]),
				Counts:       fc,
				ApprovalRate: fc.ApprovalRate(),
			})
		}

		counts := countStatuses(students)
		return &DepartmentStats{
			DepartmentID:      d.ID,
			Name:              d.Name,
			FacultyCount:      len(faculties),
			StudentCount:      len(students),
			Counts:            counts,
			ApprovalRate:      counts.ApprovalRate(),
			Distribution:      counts.Distribution(),
			AverageGPA:        average(gpas),
			AverageAttendance: average(attendance),
			Faculty:           summaries,
		}, nil
	})
}

// InstituteStats sums the department rollups under an institute.
func (s *AnalyticsService) InstituteStats(ctx context.Context, instituteID string) (*InstituteStats, error) {
	return cachedStats(ctx, s, cache.PrefixInstituteStats+instituteID, func(ctx context.Context) (*InstituteStats, error) {
		inst, err := s.store.GetInstitute(ctx, instituteID)
		if err != nil {
			return nil, storeError(err, models.KindInstitute, instituteID)
		}
		colleges, err := s.store.ListColleges(ctx, inst.ID)
		if err != nil {
			return nil, err
		}
		deptIDs, err := departmentsOfInstitute(ctx, s.store, inst.ID)
		if err != nil {
			return nil, err
		}
		students, err := s.store.ListStudents(ctx, repositories.StudentFilter{DepartmentIDs: deptIDs, ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		faculties, err := s.store.ListFaculties(ctx, repositories.FacultyFilter{DepartmentIDs: deptIDs, ActiveOnly: true})
		if err != nil {
			return nil, err
		}

		byDept := map[string][]*models.Student{}
		for _, st := range students {
			byDept[st.DepartmentID] = append(byDept[st.DepartmentID], st)
		}

		out := &InstituteStats{
			InstituteID:     inst.ID,
			Name:            inst.Name,
			DepartmentCount: len(deptIDs),
			FacultyCount:    len(faculties),
			StudentCount:    len(students),
			Categories:      categoryBreakdown(students),
			Departments:     make([]DepartmentSummary, 0, len(deptIDs)),
		}
		for _, c := range colleges {
			if c.Status == models.StatusActive {
				out.CollegeCount++
			}
		}
		for _, id := range deptIDs {
			d, err := s.store.GetDepartment(ctx, id)
			if err != nil {
				return nil, storeError(err, models.KindDepartment, id)
			}
			dc := countStatuses(byDept[id])
			out.Counts.merge(dc)
			out.Departments = append(out.Departments, DepartmentSummary{
				DepartmentID: d.ID,
				Name:         d.Name,
				StudentCount: len(byDept[id]),
				Counts:       dc,
				ApprovalRate: dc.ApprovalRate(),
			})
		}
		out.ApprovalRate = out.Counts.ApprovalRate()
		out.Distribution = out.Counts.Distribution()
		return out, nil
	})
}

// PlatformStats returns platform-wide totals.
func (s *AnalyticsService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	return cachedStats(ctx, s, cache.PrefixPlatformStats, func(ctx context.Context) (*PlatformStats, error) {
		institutes, err := s.store.ListInstitutes(ctx)
		if err != nil {
			return nil, err
		}
		requests, err := s.store.ListInstituteRequests(ctx, models.ApprovalPending)
		if err != nil {
			return nil, err
		}
		students, err := s.store.ListStudents(ctx, repositories.StudentFilter{ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		faculties, err := s.store.ListFaculties(ctx, repositories.FacultyFilter{ActiveOnly: true})
		if err != nil {
			return nil, err
		}

		out := &PlatformStats{
			PendingRequests: len(requests),
			ActiveStudents:  len(students),
			FacultyCount:    len(faculties),
			Counts:          countStatuses(students),
		}
		for _, inst := range institutes {
			if inst.IsActive() {
				out.ApprovedInstitutes++
			}
		}
		out.ApprovalRate = out.Counts.ApprovalRate()
		out.Distribution = out.Counts.Distribution()
		return out, nil
	})
}

// SubmissionTrend buckets achievement submissions of a scope over a window.
func (s *AnalyticsService) SubmissionTrend(ctx context.Context, q TrendQuery) (*TrendSeries, error) {
	if q.Window == 0 {
		q.Window = Window30
	}
	students, err := s.studentsOf(ctx, q.Scope)
	if err != nil {
		return nil, err
	}

	var events []time.Time
	for _, st := range students {
		for _, a := range st.Achievements {
			if q.Status == "" || a.Status == q.Status {
				events = append(events, a.UploadedAt)
			}
		}
	}
	return &TrendSeries{
		Window:      q.Window,
		Granularity: q.Window.Granularity(),
		Points:      Trend(q.Window, s.now(), events, q.Cumulative),
	}, nil
}

// PlatformGrowth buckets new students, submissions and institute approvals.
func (s *AnalyticsService) PlatformGrowth(ctx context.Context, w Window, cumulative bool) (*PlatformGrowth, error) {
	students, err := s.store.ListStudents(ctx, repositories.StudentFilter{})
	if err != nil {
		return nil, err
	}
	institutes, err := s.store.ListInstitutes(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	joined := make([]time.Time, 0, len(students))
	for _, st := range students {
		joined = append(joined, st.CreatedAt)
	}
	var approved []time.Time
	for _, inst := range institutes {
		if inst.ApprovedAt != nil {
			approved = append(approved, *inst.ApprovedAt)
		}
	}

	return &PlatformGrowth{
		Window:       w,
		Granularity:  w.Granularity(),
		Students:     Trend(w, now, joined, cumulative),
		Achievements: Trend(w, now, uploadTimes(students), cumulative),
		Institutes:   Trend(w, now, approved, cumulative),
	}, nil
}

func (s *AnalyticsService) studentsOf(ctx context.Context, scope models.Ref) ([]*models.Student, error) {
	switch scope.Kind {
	case "":
		return s.store.ListStudents(ctx, repositories.StudentFilter{ActiveOnly: true})
	case models.KindStudent:
		st, err := s.store.GetStudent(ctx, scope.ID)
		if err != nil {
			return nil, storeError(err, models.KindStudent, scope.ID)
		}
		return []*models.Student{st}, nil
	case models.KindFaculty:
		if _, err := s.store.GetFaculty(ctx, scope.ID); err != nil {
			return nil, storeError(err, models.KindFaculty, scope.ID)
		}
		return s.store.ListStudents(ctx, repositories.StudentFilter{CoordinatorID: scope.ID, ActiveOnly: true})
	case models.KindDepartment:
		if _, err := s.store.GetDepartment(ctx, scope.ID); err != nil {
			return nil, storeError(err, models.KindDepartment, scope.ID)
		}
		return s.store.ListStudents(ctx, repositories.StudentFilter{DepartmentIDs: []string{scope.ID}, ActiveOnly: true})
	case models.KindInstitute:
		if _, err := s.store.GetInstitute(ctx, scope.ID); err != nil {
			return nil, storeError(err, models.KindInstitute, scope.ID)
		}
		ids, err := departmentsOfInstitute(ctx, s.store, scope.ID)
		if err != nil {
			return nil, err
		}
		return s.store.ListStudents(ctx, repositories.StudentFilter{DepartmentIDs: ids, ActiveOnly: true})
	}
	return nil, apperrors.NewValidationError("unsupported trend scope " + string(scope.Kind))
}
