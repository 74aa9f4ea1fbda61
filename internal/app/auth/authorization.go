package auth

import (
	"context"
	"errors"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
)

// AuthorizationService decides whether a caller may act on an entity. An
// institute account manages everything under its institute; faculty and
// students see their own department.
type AuthorizationService struct {
	store repositories.Reader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(store repositories.Reader) *AuthorizationService {
	return &AuthorizationService{store: store}
}

// InstituteOf resolves the institute an entity belongs to by following the
// child pointers upwards.
func (s *AuthorizationService) InstituteOf(ctx context.Context, ref models.Ref) (string, error) {
	id := ref.ID
	kind := ref.Kind
	for {
		var err error
		switch kind {
		case models.KindInstitute:
			if _, err = s.store.GetInstitute(ctx, id); err != nil {
				return "", s.lookupError(err, kind, id)
			}
			return id, nil
		case models.KindCollege:
			var c *models.College
			if c, err = s.store.GetCollege(ctx, id); err == nil {
				kind, id = models.KindInstitute, c.InstituteID
			}
		case models.KindDepartment:
			var d *models.Department
			if d, err = s.store.GetDepartment(ctx, id); err == nil {
				kind, id = models.KindCollege, d.CollegeID
			}
		case models.KindFaculty:
			var f *models.Faculty
			if f, err = s.store.GetFaculty(ctx, id); err == nil {
				kind, id = models.KindDepartment, f.DepartmentID
			}
		case models.KindStudent:
			var st *models.Student
			if st, err = s.store.GetStudent(ctx, id); err == nil {
				kind, id = models.KindDepartment, st.DepartmentID
			}
		default:
			return "", apperrors.NewValidationError("unknown entity kind " + string(kind))
		}
		if err != nil {
			return "", s.lookupError(err, kind, id)
		}
	}
}

func (s *AuthorizationService) lookupError(err error, kind models.EntityKind, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NewResourceNotFoundError(string(kind), id)
	}
	logger.Error().Err(err).Str("kind", string(kind)).Str("id", id).Msg("Error resolving institute in authorization")
	return err
}

// RequireManage allows the superadmin and the institute owning ref.
func (s *AuthorizationService) RequireManage(ctx context.Context, claims *auth.Claims, refs ...models.Ref) error {
	if claims.Role == auth.RoleSuperAdmin {
		return nil
	}
	if claims.Role != auth.RoleInstitute {
		return apperrors.NewForbiddenError("only the institute can change its hierarchy")
	}
	for _, ref := range refs {
		instituteID, err := s.InstituteOf(ctx, ref)
		if err != nil {
			return err
		}
		if instituteID != claims.SubjectID {
			return apperrors.NewForbiddenError(string(ref.Kind) + " " + ref.ID + " belongs to another institute")
		}
	}
	return nil
}

// RequireView allows the superadmin, the owning institute, members of the
// entity's department and the entity itself.
func (s *AuthorizationService) RequireView(ctx context.Context, claims *auth.Claims, ref models.Ref) error {
	switch claims.Role {
	case auth.RoleSuperAdmin:
		return nil
	case auth.RoleInstitute:
		return s.RequireManage(ctx, claims, ref)
	}

	if claims.SubjectID == ref.ID {
		return nil
	}
	if claims.Role == auth.RoleStudent {
		return apperrors.NewForbiddenError("students can only view their own records")
	}

	faculty, err := s.store.GetFaculty(ctx, claims.SubjectID)
	if err != nil {
		return s.lookupError(err, models.KindFaculty, claims.SubjectID)
	}
	departmentID, err := s.departmentOf(ctx, ref)
	if err != nil {
		return err
	}
	if departmentID != faculty.DepartmentID {
		return apperrors.NewForbiddenError("faculty can only view their own department")
	}
	return nil
}

func (s *AuthorizationService) departmentOf(ctx context.Context, ref models.Ref) (string, error) {
	switch ref.Kind {
	case models.KindDepartment:
		return ref.ID, nil
	case models.KindFaculty:
		f, err := s.store.GetFaculty(ctx, ref.ID)
		if err != nil {
			return "", s.lookupError(err, ref.Kind, ref.ID)
		}
		return f.DepartmentID, nil
	case models.KindStudent:
		st, err := s.store.GetStudent(ctx, ref.ID)
		if err != nil {
			return "", s.lookupError(err, ref.Kind, ref.ID)
		}
		return st.DepartmentID, nil
	}
	return "", apperrors.NewForbiddenError("faculty cannot view " + string(ref.Kind) + " records")
}
