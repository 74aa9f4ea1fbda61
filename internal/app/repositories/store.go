package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
)

// Store error types
var (
	ErrNotFound     = errors.New("entity not found")
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotPending is returned by RecordReview when the achievement has
	// already left the Pending state.
	ErrNotPending = errors.New("achievement is no longer pending")
)

// KeyInstituteCode is the unique key on Institute.Code.
const KeyInstituteCode = "institute.code"

// DuplicateKeyError names the unique key a write collided on, as
// "<entity>.<field>". It matches ErrDuplicateKey under errors.Is.
type DuplicateKeyError struct {
	Key   string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", ErrDuplicateKey, e.Key)
	}
	return fmt.Sprintf("%s: %s %q", ErrDuplicateKey, e.Key, e.Value)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// IsDuplicateKey reports whether err is a unique violation on key.
func IsDuplicateKey(err error, key string) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup) && dup.Key == key
}

// DepartmentFilter narrows ListDepartments. Empty fields match everything.
type DepartmentFilter struct {
	InstituteID string
	CollegeID   string
}

// FacultyFilter narrows ListFaculties.
type FacultyFilter struct {
	DepartmentIDs []string
	ActiveOnly    bool
}

// StudentFilter narrows ListStudents.
type StudentFilter struct {
	DepartmentIDs []string
	CoordinatorID string
	ActiveOnly    bool
}

// ReviewRecord is the unit written by RecordReview: the achievement's new
// state plus the reviewer's log entry.
type ReviewRecord struct {
	StudentID     string
	AchievementID string
	FacultyID     string
	Decision      models.AchievementStatus
	Comment       string
	ReviewedAt    time.Time
}

// Reader is the read side of the entity store. Returned entities are copies
// owned by the caller.
type Reader interface {
	GetInstitute(ctx context.Context, id string) (*models.Institute, error)
	GetCollege(ctx context.Context, id string) (*models.College, error)
	GetDepartment(ctx context.Context, id string) (*models.Department, error)
	GetFaculty(ctx context.Context, id string) (*models.Faculty, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	GetInstituteRequest(ctx context.Context, id string) (*models.InstituteRequest, error)

	ListInstitutes(ctx context.Context) ([]*models.Institute, error)
	ListColleges(ctx context.Context, instituteID string) ([]*models.College, error)
	ListDepartments(ctx context.Context, filter DepartmentFilter) ([]*models.Department, error)
	ListFaculties(ctx context.Context, filter FacultyFilter) ([]*models.Faculty, error)
	ListStudents(ctx context.Context, filter StudentFilter) ([]*models.Student, error)
	ListInstituteRequests(ctx context.Context, status models.ApprovalStatus) ([]*models.InstituteRequest, error)
}

// Writer is the write side of the entity store.
//
// Update methods persist scalar fields and parent pointers only. Membership
// sets, achievements and review logs change exclusively through AddMember,
// RemoveMember, AppendAchievement and RecordReview.
type Writer interface {
	CreateInstitute(ctx context.Context, institute *models.Institute) error
	CreateCollege(ctx context.Context, college *models.College) error
	CreateDepartment(ctx context.Context, department *models.Department) error
	CreateFaculty(ctx context.Context, faculty *models.Faculty) error
	CreateStudent(ctx context.Context, student *models.Student) error
	CreateInstituteRequest(ctx context.Context, request *models.InstituteRequest) error

	UpdateInstitute(ctx context.Context, institute *models.Institute) error
	UpdateCollege(ctx context.Context, college *models.College) error
	UpdateDepartment(ctx context.Context, department *models.Department) error
	UpdateFaculty(ctx context.Context, faculty *models.Faculty) error
	UpdateStudent(ctx context.Context, student *models.Student) error
	UpdateInstituteRequest(ctx context.Context, request *models.InstituteRequest) error

	// AddMember inserts childID into the parent's membership set for edge.
	// Adding an existing member is a no-op.
	AddMember(ctx context.Context, edge models.EdgeKind, parentID, childID string) error
	// RemoveMember deletes childID from the parent's membership set for edge.
	// Removing an absent member is a no-op.
	RemoveMember(ctx context.Context, edge models.EdgeKind, parentID, childID string) error

	AppendAchievement(ctx context.Context, studentID string, achievement models.Achievement) error
	// RecordReview moves a Pending achievement to the record's decision and
	// appends the faculty review log entry in one step. It returns
	// ErrNotPending when the achievement was already reviewed.
	RecordReview(ctx context.Context, record ReviewRecord) error
}

// EntityStore is the persistence boundary of the hierarchy core.
type EntityStore interface {
	Reader
	Writer
	// Atomically runs fn so that all of its writes apply together or not at
	// all. Nested calls join the outer unit.
	Atomically(ctx context.Context, fn func(tx EntityStore) error) error
	Ping(ctx context.Context) error
}
