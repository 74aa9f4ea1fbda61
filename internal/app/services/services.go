package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
)

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

// SystemClock is the production clock.
func SystemClock() time.Time {
	return time.Now().UTC()
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}

func newID() string {
	return uuid.NewString()
}

// storeError translates entity store errors into the apperrors taxonomy.
// Anything else (timeouts, unavailability) is returned unchanged.
func storeError(err error, kind models.EntityKind, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NewResourceNotFoundError(string(kind), id)
	case errors.Is(err, repositories.ErrDuplicateKey):
		return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, err.Error()).
			WithDetails(map[string]interface{}{"kind": string(kind), "id": id})
	}
	return err
}

// parentError is storeError for a lookup of a required parent.
func parentError(err error, kind models.EntityKind, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NewParentNotFoundError(string(kind), id)
	}
	return storeError(err, kind, id)
}
