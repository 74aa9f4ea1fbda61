package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/db"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/dberrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
)

// PostgresStore is the EntityStore backed by PostgreSQL. Membership sets are
// TEXT[] columns on the parent row.
type PostgresStore struct {
	db   *db.PostgresDB
	q    db.Querier
	sb   squirrel.StatementBuilderType
	inTx bool
}

// NewPostgresStore creates a store on top of an open pool.
func NewPostgresStore(pg *db.PostgresDB) *PostgresStore {
	return &PostgresStore{
		db: pg,
		q:  pg.Pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Atomically implements EntityStore with a single database transaction.
func (s *PostgresStore) Atomically(ctx context.Context, fn func(tx EntityStore) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(&PostgresStore{db: s.db, q: tx, sb: s.sb, inTx: true})
	})
}

// Ping implements EntityStore.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Pool.Ping(ctx)
}

type membershipColumn struct {
	table  string
	column string
	kind   models.EntityKind
}

var membershipColumns = map[models.EdgeKind]membershipColumn{
	models.EdgeInstituteCollege:  {"institutes", "college_ids", models.KindInstitute},
	models.EdgeCollegeDepartment: {"colleges", "department_ids", models.KindCollege},
	models.EdgeDepartmentFaculty: {"departments", "faculty_ids", models.KindDepartment},
	models.EdgeFacultyStudent:    {"faculties", "student_ids", models.KindFaculty},
}

// AddMember implements Writer. The NOT ANY guard keeps the array a set.
func (s *PostgresStore) AddMember(ctx context.Context, edge models.EdgeKind, parentID, childID string) error {
	mc, ok := membershipColumns[edge]
	if !ok {
		return fmt.Errorf("edge %s has no membership set", edge)
	}

	query, args, err := s.sb.Update(mc.table).
		Set(mc.column, squirrel.Expr("array_append("+mc.column+", ?::text)", childID)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": parentID}).
		Where(squirrel.Expr("NOT (?::text = ANY("+mc.column+"))", childID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building add member query: %w", err)
	}

	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("edge", string(edge)).Str("parentID", parentID).Msg("Error adding member")
		return fmt.Errorf("error adding member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.ensureExists(ctx, mc.table, mc.kind, parentID)
	}
	return nil
}

// RemoveMember implements Writer.
func (s *PostgresStore) RemoveMember(ctx context.Context, edge models.EdgeKind, parentID, childID string) error {
	mc, ok := membershipColumns[edge]
	if !ok {
		return fmt.Errorf("edge %s has no membership set", edge)
	}

	query, args, err := s.sb.Update(mc.table).
		Set(mc.column, squirrel.Expr("array_remove("+mc.column+", ?::text)", childID)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": parentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building remove member query: %w", err)
	}

	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("edge", string(edge)).Str("parentID", parentID).Msg("Error removing member")
		return fmt.Errorf("error removing member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(mc.kind, parentID)
	}
	return nil
}

func (s *PostgresStore) ensureExists(ctx context.Context, table string, kind models.EntityKind, id string) error {
	query, args, err := s.sb.Select("1").Prefix("SELECT EXISTS(").From(table).Where(squirrel.Eq{"id": id}).Suffix(")").ToSql()
	if err != nil {
		return fmt.Errorf("error building exists query: %w", err)
	}
	var exists bool
	if err := s.q.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return fmt.Errorf("error checking %s existence: %w", kind, err)
	}
	if !exists {
		return notFound(kind, id)
	}
	return nil
}

// exec runs a write and maps driver errors onto store errors.
func (s *PostgresStore) exec(ctx context.Context, builder squirrel.Sqlizer, kind models.EntityKind, id string, requireRow bool) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("error building %s query: %w", kind, err)
	}
	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, kind, id)
	}
	if requireRow && tag.RowsAffected() == 0 {
		return notFound(kind, id)
	}
	return nil
}

// constraintKeys maps unique constraints onto DuplicateKeyError keys.
var constraintKeys = map[string]string{
	"institutes_code_key":  KeyInstituteCode,
	"institutes_email_key": "institute.email",
	"colleges_code_key":    "college.code",
	"departments_code_key": "department.code",
	"faculties_code_key":   "faculty.faculty_code",
	"faculties_email_key":  "faculty.email",
	"students_code_key":    "student.student_code",
	"students_email_key":   "student.email",
}

func mapWriteError(err error, kind models.EntityKind, id string) error {
	if constraint, ok := dberrors.UniqueViolation(err); ok {
		key, known := constraintKeys[constraint]
		if !known {
			key = constraint
		}
		return &DuplicateKeyError{Key: key}
	}
	logger.Error().Err(err).Str("kind", string(kind)).Str("id", id).Msg("Error writing entity")
	return fmt.Errorf("error writing %s %s: %w", kind, id, err)
}

func mapReadError(err error, kind models.EntityKind, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(kind, id)
	}
	logger.Error().Err(err).Str("kind", string(kind)).Str("id", id).Msg("Error reading entity")
	return fmt.Errorf("error retrieving %s %s: %w", kind, id, err)
}
