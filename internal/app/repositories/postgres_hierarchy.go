package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
)

var (
	instituteColumns = []string{
		"id", "name", "code", "email", "institute_type", "approval_status", "status",
		"college_ids", "student_count", "approved_at", "review_comment", "temp_password_hash",
		"created_at", "updated_at",
	}
	collegeColumns = []string{
		"id", "name", "code", "institute_id", "department_ids", "status", "created_at", "updated_at",
	}
	departmentColumns = []string{
		"id", "name", "code", "college_id", "institute_id", "hod_id", "faculty_ids", "status",
		"created_at", "updated_at",
	}
	requestColumns = []string{
		"id", "name", "aishe_code", "institute_type", "email", "phone", "address", "state",
		"district", "head_name", "status", "review_comment", "reviewed_at", "institute_id", "created_at",
	}
)

func scanInstitute(row pgx.Row) (*models.Institute, error) {
	var v models.Institute
	var colleges []string
	err := row.Scan(&v.ID, &v.Name, &v.Code, &v.Email, &v.Type, &v.ApprovalStatus, &v.Status,
		&colleges, &v.StudentCount, &v.ApprovedAt, &v.ReviewComment, &v.TempPasswordHash,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Colleges = models.IDSet(colleges).Clone()
	return &v, nil
}

func scanCollege(row pgx.Row) (*models.College, error) {
	var v models.College
	var departments []string
	if err := row.Scan(&v.ID, &v.Name, &v.Code, &v.InstituteID, &departments, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.Departments = models.IDSet(departments).Clone()
	return &v, nil
}

func scanDepartment(row pgx.Row) (*models.Department, error) {
	var v models.Department
	var faculties []string
	err := row.Scan(&v.ID, &v.Name, &v.Code, &v.CollegeID, &v.InstituteID, &v.HODID, &faculties, &v.Status,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Faculties = models.IDSet(faculties).Clone()
	return &v, nil
}

func scanRequest(row pgx.Row) (*models.InstituteRequest, error) {
	var v models.InstituteRequest
	err := row.Scan(&v.ID, &v.Name, &v.AisheCode, &v.Type, &v.Email, &v.Phone, &v.Address, &v.State,
		&v.District, &v.HeadName, &v.Status, &v.ReviewComment, &v.ReviewedAt, &v.InstituteID, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// queryAll runs a select and scans every row with scan.
func queryAll[T any](ctx context.Context, s *PostgresStore, builder squirrel.SelectBuilder, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building list query: %w", err)
	}
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing list query: %w", err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) queryOne(ctx context.Context, builder squirrel.SelectBuilder) (pgx.Row, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building select query: %w", err)
	}
	return s.q.QueryRow(ctx, query, args...), nil
}

// GetInstitute implements Reader.
func (s *PostgresStore) GetInstitute(ctx context.Context, id string) (*models.Institute, error) {
	row, err := s.queryOne(ctx, s.sb.Select(instituteColumns...).From("institutes").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	v, err := scanInstitute(row)
	if err != nil {
		return nil, mapReadError(err, models.KindInstitute, id)
	}
	return v, nil
}

// GetCollege implements Reader.
func (s *PostgresStore) GetCollege(ctx context.Context, id string) (*models.College, error) {
	row, err := s.queryOne(ctx, s.sb.Select(collegeColumns...).From("colleges").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	v, err := scanCollege(row)
	if err != nil {
		return nil, mapReadError(err, models.KindCollege, id)
	}
	return v, nil
}

// GetDepartment implements Reader.
func (s *PostgresStore) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	row, err := s.queryOne(ctx, s.sb.Select(departmentColumns...).From("departments").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	v, err := scanDepartment(row)
	if err != nil {
		return nil, mapReadError(err, models.KindDepartment, id)
	}
	return v, nil
}

// GetInstituteRequest implements Reader.
func (s *PostgresStore) GetInstituteRequest(ctx context.Context, id string) (*models.InstituteRequest, error) {
	row, err := s.queryOne(ctx, s.sb.Select(requestColumns...).From("institute_requests").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	v, err := scanRequest(row)
	if err != nil {
		return nil, mapReadError(err, "institute request", id)
	}
	return v, nil
}

// ListInstitutes implements Reader.
func (s *PostgresStore) ListInstitutes(ctx context.Context) ([]*models.Institute, error) {
	return queryAll(ctx, s, s.sb.Select(instituteColumns...).From("institutes").OrderBy("created_at", "id"), scanInstitute)
}

// ListColleges implements Reader.
func (s *PostgresStore) ListColleges(ctx context.Context, instituteID string) ([]*models.College, error) {
	q := s.sb.Select(collegeColumns...).From("colleges").OrderBy("created_at", "id")
	if instituteID != "" {
		q = q.Where(squirrel.Eq{"institute_id": instituteID})
	}
	return queryAll(ctx, s, q, scanCollege)
}

// ListDepartments implements Reader.
func (s *PostgresStore) ListDepartments(ctx context.Context, filter DepartmentFilter) ([]*models.Department, error) {
	q := s.sb.Select(departmentColumns...).From("departments").OrderBy("created_at", "id")
	if filter.InstituteID != "" {
		q = q.Where(squirrel.Eq{"institute_id": filter.InstituteID})
	}
	if filter.CollegeID != "" {
		q = q.Where(squirrel.Eq{"college_id": filter.CollegeID})
	}
	return queryAll(ctx, s, q, scanDepartment)
}

// ListInstituteRequests implements Reader.
func (s *PostgresStore) ListInstituteRequests(ctx context.Context, status models.ApprovalStatus) ([]*models.InstituteRequest, error) {
	q := s.sb.Select(requestColumns...).From("institute_requests").OrderBy("created_at", "id")
	if status != "" {
		q = q.Where(squirrel.Eq{"status": status})
	}
	return queryAll(ctx, s, q, scanRequest)
}

// CreateInstitute implements Writer.
func (s *PostgresStore) CreateInstitute(ctx context.Context, v *models.Institute) error {
	return s.exec(ctx, s.sb.Insert("institutes").Columns(instituteColumns...).Values(
		v.ID, v.Name, v.Code, v.Email, v.Type, v.ApprovalStatus, v.Status,
		[]string(v.Colleges.Clone()), v.StudentCount, v.ApprovedAt, v.ReviewComment, v.TempPasswordHash,
		v.CreatedAt, v.UpdatedAt,
	), models.KindInstitute, v.ID, false)
}

// CreateCollege implements Writer.
func (s *PostgresStore) CreateCollege(ctx context.Context, v *models.College) error {
	return s.exec(ctx, s.sb.Insert("colleges").Columns(collegeColumns...).Values(
		v.ID, v.Name, v.Code, v.InstituteID, []string(v.Departments.Clone()), v.Status, v.CreatedAt, v.UpdatedAt,
	), models.KindCollege, v.ID, false)
}

// CreateDepartment implements Writer.
func (s *PostgresStore) CreateDepartment(ctx context.Context, v *models.Department) error {
	return s.exec(ctx, s.sb.Insert("departments").Columns(departmentColumns...).Values(
		v.ID, v.Name, v.Code, v.CollegeID, v.InstituteID, v.HODID, []string(v.Faculties.Clone()), v.Status,
		v.CreatedAt, v.UpdatedAt,
	), models.KindDepartment, v.ID, false)
}

// CreateInstituteRequest implements Writer.
func (s *PostgresStore) CreateInstituteRequest(ctx context.Context, v *models.InstituteRequest) error {
	return s.exec(ctx, s.sb.Insert("institute_requests").Columns(requestColumns...).Values(
		v.ID, v.Name, v.AisheCode, v.Type, v.Email, v.Phone, v.Address, v.State,
		v.District, v.HeadName, v.Status, v.ReviewComment, v.ReviewedAt, v.InstituteID, v.CreatedAt,
	), "institute request", v.ID, false)
}

// UpdateInstitute implements Writer.
func (s *PostgresStore) UpdateInstitute(ctx context.Context, v *models.Institute) error {
	return s.exec(ctx, s.sb.Update("institutes").SetMap(map[string]interface{}{
		"name":               v.Name,
		"code":               v.Code,
		"email":              v.Email,
		"institute_type":     v.Type,
		"approval_status":    v.ApprovalStatus,
		"status":             v.Status,
		"student_count":      v.StudentCount,
		"approved_at":        v.ApprovedAt,
		"review_comment":     v.ReviewComment,
		"temp_password_hash": v.TempPasswordHash,
		"updated_at":         v.UpdatedAt,
	}).Where(squirrel.Eq{"id": v.ID}), models.KindInstitute, v.ID, true)
}

// UpdateCollege implements Writer.
func (s *PostgresStore) UpdateCollege(ctx context.Context, v *models.College) error {
	return s.exec(ctx, s.sb.Update("colleges").SetMap(map[string]interface{}{
		"name":         v.Name,
		"code":         v.Code,
		"institute_id": v.InstituteID,
		"status":       v.Status,
		"updated_at":   v.UpdatedAt,
	}).Where(squirrel.Eq{"id": v.ID}), models.KindCollege, v.ID, true)
}

// UpdateDepartment implements Writer.
func (s *PostgresStore) UpdateDepartment(ctx context.Context, v *models.Department) error {
	return s.exec(ctx, s.sb.Update("departments").SetMap(map[string]interface{}{
		"name":         v.Name,
		"code":         v.Code,
		"college_id":   v.CollegeID,
		"institute_id": v.InstituteID,
		"hod_id":       v.HODID,
		"status":       v.Status,
		"updated_at":   v.UpdatedAt,
	}).Where(squirrel.Eq{"id": v.ID}), models.KindDepartment, v.ID, true)
}

// UpdateInstituteRequest implements Writer.
func (s *PostgresStore) UpdateInstituteRequest(ctx context.Context, v *models.InstituteRequest) error {
	return s.exec(ctx, s.sb.Update("institute_requests").SetMap(map[string]interface{}{
		"status":         v.Status,
		"review_comment": v.ReviewComment,
		"reviewed_at":    v.ReviewedAt,
		"institute_id":   v.InstituteID,
	}).Where(squirrel.Eq{"id": v.ID}), "institute request", v.ID, true)
}
