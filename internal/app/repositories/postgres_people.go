package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
)

var (
	facultyColumns = []string{
		"id", "first_name", "last_name", "faculty_code", "email", "designation", "department_id",
		"is_coordinator", "student_ids", "status", "created_at", "updated_at",
	}
	studentColumns = []string{
		"id", "first_name", "last_name", "student_code", "email", "department_id", "coordinator_id",
		"enrollment_year", "batch", "gpa", "attendance", "status", "created_at", "updated_at",
	}
	achievementColumns = []string{
		"id", "student_id", "title", "category", "organization", "description", "date_completed",
		"uploaded_at", "status", "reviewed_at", "comment", "reviewed_by", "certificate_url",
	}
)

func scanFaculty(row pgx.Row) (*models.Faculty, error) {
	var v models.Faculty
	var students []string
	err := row.Scan(&v.ID, &v.FirstName, &v.LastName, &v.FacultyCode, &v.Email, &v.Designation, &v.DepartmentID,
		&v.IsCoordinator, &students, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Students = models.IDSet(students).Clone()
	v.ReviewLog = []models.ReviewLogEntry{}
	return &v, nil
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var v models.Student
	err := row.Scan(&v.ID, &v.FirstName, &v.LastName, &v.StudentCode, &v.Email, &v.DepartmentID, &v.CoordinatorID,
		&v.EnrollmentYear, &v.Batch, &v.GPA, &v.Attendance, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Achievements = []models.Achievement{}
	return &v, nil
}

type studentAchievement struct {
	studentID string
	models.Achievement
}

func scanAchievement(row pgx.Row) (*studentAchievement, error) {
	var v studentAchievement
	err := row.Scan(&v.ID, &v.studentID, &v.Title, &v.Category, &v.Organization, &v.Description, &v.DateCompleted,
		&v.UploadedAt, &v.Status, &v.ReviewedAt, &v.Comment, &v.ReviewedBy, &v.CertificateURL)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type facultyReview struct {
	facultyID string
	models.ReviewLogEntry
}

func scanReview(row pgx.Row) (*facultyReview, error) {
	var v facultyReview
	if err := row.Scan(&v.facultyID, &v.AchievementID, &v.StudentID, &v.Decision, &v.Comment, &v.ReviewedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// attachAchievements loads the embedded achievement collections in position order.
func (s *PostgresStore) attachAchievements(ctx context.Context, students []*models.Student) error {
	if len(students) == 0 {
		return nil
	}
	byID := make(map[string]*models.Student, len(students))
	ids := make([]string, 0, len(students))
	for _, st := range students {
		byID[st.ID] = st
		ids = append(ids, st.ID)
	}

	rows, err := queryAll(ctx, s, s.sb.Select(achievementColumns...).From("achievements").
		Where(squirrel.Eq{"student_id": ids}).OrderBy("student_id", "position"), scanAchievement)
	if err != nil {
		return err
	}
	for _, a := range rows {
		st := byID[a.studentID]
		st.Achievements = append(st.Achievements, a.Achievement)
	}
	return nil
}

// attachReviewLogs loads the embedded review logs in insertion order.
func (s *PostgresStore) attachReviewLogs(ctx context.Context, faculties []*models.Faculty) error {
	if len(faculties) == 0 {
		return nil
	}
	byID := make(map[string]*models.Faculty, len(faculties))
	ids := make([]string, 0, len(faculties))
	for _, f := range faculties {
		byID[f.ID] = f
		ids = append(ids, f.ID)
	}

	rows, err := queryAll(ctx, s, s.sb.Select("faculty_id", "achievement_id", "student_id", "decision", "comment", "reviewed_at").
		From("faculty_reviews").Where(squirrel.Eq{"faculty_id": ids}).OrderBy("faculty_id", "id"), scanReview)
	if err != nil {
		return err
	}
	for _, r := range rows {
		f := byID[r.facultyID]
		f.ReviewLog = append(f.ReviewLog, r.ReviewLogEntry)
	}
	return nil
}

// GetFaculty implements Reader.
func (s *PostgresStore) GetFaculty(ctx context.Context, id string) (*models.Faculty, error) {
	row, err := s.queryOne(ctx, s.sb.Select(facultyColumns...).From("faculties").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	v, err := scanFaculty(row)
	if err != nil {
		return nil, mapReadError(err, models.KindFaculty, id)
	}
	if err := s.attachReviewLogs(ctx, []*models.Faculty{v}); err != nil {
		return nil, err
	}
	return v, nil
}

// GetStudent implements Reader.
func (s *PostgresStore) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	row, err := s.queryOne(ctx, s.sb.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	v, err := scanStudent(row)
	if err != nil {
		return nil, mapReadError(err, models.KindStudent, id)
	}
	if err := s.attachAchievements(ctx, []*models.Student{v}); err != nil {
		return nil, err
	}
	return v, nil
}

// ListFaculties implements Reader.
func (s *PostgresStore) ListFaculties(ctx context.Context, filter FacultyFilter) ([]*models.Faculty, error) {
	q := s.sb.Select(facultyColumns...).From("faculties").OrderBy("created_at", "id")
	if filter.DepartmentIDs != nil {
		q = q.Where(squirrel.Eq{"department_id": filter.DepartmentIDs})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"status": models.StatusActive})
	}
	out, err := queryAll(ctx, s, q, scanFaculty)
	if err != nil {
		return nil, err
	}
	return out, s.attachReviewLogs(ctx, out)
}

// ListStudents implements Reader.
func (s *PostgresStore) ListStudents(ctx context.Context, filter StudentFilter) ([]*models.Student, error) {
	q := s.sb.Select(studentColumns...).From("students").OrderBy("created_at", "id")
	if filter.DepartmentIDs != nil {
		q = q.Where(squirrel.Eq{"department_id": filter.DepartmentIDs})
	}
	if filter.CoordinatorID != "" {
		q = q.Where(squirrel.Eq{"coordinator_id": filter.CoordinatorID})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"status": models.StatusActive})
	}
	out, err := queryAll(ctx, s, q, scanStudent)
	if err != nil {
		return nil, err
	}
	return out, s.attachAchievements(ctx, out)
}

// CreateFaculty implements Writer. The review log starts empty.
func (s *PostgresStore) CreateFaculty(ctx context.Context, v *models.Faculty) error {
	return s.exec(ctx, s.sb.Insert("faculties").Columns(facultyColumns...).Values(
		v.ID, v.FirstName, v.LastName, v.FacultyCode, v.Email, v.Designation, v.DepartmentID,
		v.IsCoordinator, []string(v.Students.Clone()), v.Status, v.CreatedAt, v.UpdatedAt,
	), models.KindFaculty, v.ID, false)
}

// CreateStudent implements Writer. Achievements are appended separately.
func (s *PostgresStore) CreateStudent(ctx context.Context, v *models.Student) error {
	return s.exec(ctx, s.sb.Insert("students").Columns(studentColumns...).Values(
		v.ID, v.FirstName, v.LastName, v.StudentCode, v.Email, v.DepartmentID, v.CoordinatorID,
		v.EnrollmentYear, v.Batch, v.GPA, v.Attendance, v.Status, v.CreatedAt, v.UpdatedAt,
	), models.KindStudent, v.ID, false)
}

// UpdateFaculty implements Writer.
func (s *PostgresStore) UpdateFaculty(ctx context.Context, v *models.Faculty) error {
	return s.exec(ctx, s.sb.Update("faculties").SetMap(map[string]interface{}{
		"first_name":     v.FirstName,
		"last_name":      v.LastName,
		"faculty_code":   v.FacultyCode,
		"email":          v.Email,
		"designation":    v.Designation,
		"department_id":  v.DepartmentID,
		"is_coordinator": v.IsCoordinator,
		"status":         v.Status,
		"updated_at":     v.UpdatedAt,
	}).Where(squirrel.Eq{"id": v.ID}), models.KindFaculty, v.ID, true)
}

// UpdateStudent implements Writer.
func (s *PostgresStore) UpdateStudent(ctx context.Context, v *models.Student) error {
	return s.exec(ctx, s.sb.Update("students").SetMap(map[string]interface{}{
		"first_name":      v.FirstName,
		"last_name":       v.LastName,
		"student_code":    v.StudentCode,
		"email":           v.Email,
		"department_id":   v.DepartmentID,
		"coordinator_id":  v.CoordinatorID,
		"enrollment_year": v.EnrollmentYear,
		"batch":           v.Batch,
		"gpa":             v.GPA,
		"attendance":      v.Attendance,
		"status":          v.Status,
		"updated_at":      v.UpdatedAt,
	}).Where(squirrel.Eq{"id": v.ID}), models.KindStudent, v.ID, true)
}

// AppendAchievement implements Writer. Position is one past the student's
// current last achievement.
func (s *PostgresStore) AppendAchievement(ctx context.Context, studentID string, a models.Achievement) error {
	if err := s.ensureExists(ctx, "students", models.KindStudent, studentID); err != nil {
		return err
	}

	columns := append([]string{"position"}, achievementColumns...)
	return s.exec(ctx, s.sb.Insert("achievements").Columns(columns...).Values(
		squirrel.Expr("(SELECT COALESCE(MAX(position), -1) + 1 FROM achievements WHERE student_id = ?)", studentID),
		a.ID, studentID, a.Title, a.Category, a.Organization, a.Description, a.DateCompleted,
		a.UploadedAt, a.Status, a.ReviewedAt, a.Comment, a.ReviewedBy, a.CertificateURL,
	), models.KindStudent, studentID, false)
}

// RecordReview implements Writer. The status guard in the UPDATE is the
// compare-and-set; the log insert shares its transaction.
func (s *PostgresStore) RecordReview(ctx context.Context, record ReviewRecord) error {
	return s.Atomically(ctx, func(tx EntityStore) error {
		pg := tx.(*PostgresStore)

		query, args, err := pg.sb.Update("achievements").SetMap(map[string]interface{}{
			"status":      record.Decision,
			"reviewed_at": record.ReviewedAt,
			"comment":     record.Comment,
			"reviewed_by": record.FacultyID,
		}).Where(squirrel.Eq{
			"id":         record.AchievementID,
			"student_id": record.StudentID,
			"status":     models.AchievementPending,
		}).ToSql()
		if err != nil {
			return fmt.Errorf("error building review query: %w", err)
		}

		tag, err := pg.q.Exec(ctx, query, args...)
		if err != nil {
			return mapWriteError(err, models.KindStudent, record.StudentID)
		}
		if tag.RowsAffected() == 0 {
			return pg.reviewMissReason(ctx, record)
		}

		return pg.exec(ctx, pg.sb.Insert("faculty_reviews").
			Columns("faculty_id", "achievement_id", "student_id", "decision", "comment", "reviewed_at").
			Values(record.FacultyID, record.AchievementID, record.StudentID, record.Decision, record.Comment, record.ReviewedAt),
			models.KindFaculty, record.FacultyID, false)
	})
}

// reviewMissReason distinguishes a missing achievement from one that has
// already left Pending.
func (s *PostgresStore) reviewMissReason(ctx context.Context, record ReviewRecord) error {
	row, err := s.queryOne(ctx, s.sb.Select("status").From("achievements").Where(squirrel.Eq{
		"id":         record.AchievementID,
		"student_id": record.StudentID,
	}))
	if err != nil {
		return err
	}
	var status models.AchievementStatus
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: achievement %s", ErrNotFound, record.AchievementID)
		}
		return fmt.Errorf("error checking achievement status: %w", err)
	}
	return ErrNotPending
}
