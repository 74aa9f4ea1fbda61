package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/repositories"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/validation"
)

// ImportRecord is one line of a bulk import. Exactly one of Faculty or
// Student is set. A student may name its coordinator by faculty code; the
// code is resolved against faculty created earlier in the same import and
// then against the department roster.
type ImportRecord struct {
	Line            int                 `json:"-"`
	Kind            models.EntityKind   `json:"kind"`
	Faculty         *CreateFacultyInput `json:"faculty,omitempty"`
	Student         *CreateStudentInput `json:"student,omitempty"`
	CoordinatorCode string              `json:"coordinatorCode,omitempty"`
}

// ImportFailure describes a record that was not created.
type ImportFailure struct {
	Line    int    `json:"line"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Faculties []string        `json:"faculties"`
	Students  []string        `json:"students"`
	Failed    []ImportFailure `json:"failed"`
}

// BulkImportService creates faculty and students from a record stream
// through the HierarchyService, so every record gets the same checks as a
// single create.
type BulkImportService struct {
	hierarchy *HierarchyService
	store     repositories.Reader
}

// NewBulkImportService creates a new bulk import service
func NewBulkImportService(hierarchy *HierarchyService, store repositories.Reader) *BulkImportService {
	return &BulkImportService{hierarchy: hierarchy, store: store}
}

// Import consumes records until the channel is closed. A failing record is
// collected and the import moves on. Cancelling ctx stops the import and
// returns what was done so far along with the context error.
func (s *BulkImportService) Import(ctx context.Context, records <-chan ImportRecord) (*ImportResult, error) {
	return s.ImportGuarded(ctx, records, nil)
}

// DepartmentGuard vets the target department of a record before it is
// created. A non-nil error fails the record.
type DepartmentGuard func(ctx context.Context, departmentID string) error

// ImportGuarded is Import with every record's department checked by guard.
func (s *BulkImportService) ImportGuarded(ctx context.Context, records <-chan ImportRecord, guard DepartmentGuard) (*ImportResult, error) {
	result := &ImportResult{Faculties: []string{}, Students: []string{}, Failed: []ImportFailure{}}
	codes := map[string]string{}

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case rec, ok := <-records:
			if !ok {
				logger.Info().
					Int("faculties", len(result.Faculties)).
					Int("students", len(result.Students)).
					Int("failed", len(result.Failed)).
					Msg("Bulk import finished")
				return result, nil
			}
			if err := s.importOne(ctx, rec, guard, codes, result); err != nil {
				logger.Warn().Err(err).Int("line", rec.Line).Msg("Bulk import record failed")
				result.Failed = append(result.Failed, ImportFailure{
					Line:    rec.Line,
					Kind:    string(rec.Kind),
					Message: err.Error(),
					Err:     err,
				})
			}
		}
	}
}

func (s *BulkImportService) importOne(ctx context.Context, rec ImportRecord, guard DepartmentGuard, codes map[string]string, result *ImportResult) error {
	switch rec.Kind {
	case models.KindFaculty:
		if rec.Faculty == nil || rec.Student != nil {
			return apperrors.NewValidationError("faculty record must carry only a faculty payload")
		}
		if guard != nil {
			if err := guard(ctx, rec.Faculty.DepartmentID); err != nil {
				return err
			}
		}
		f, err := s.hierarchy.CreateFaculty(ctx, *rec.Faculty)
		if err != nil {
			return err
		}
		codes[f.FacultyCode] = f.ID
		result.Faculties = append(result.Faculties, f.ID)
		return nil

	case models.KindStudent:
		if rec.Student == nil || rec.Faculty != nil {
			return apperrors.NewValidationError("student record must carry only a student payload")
		}
		in := *rec.Student
		if guard != nil {
			if err := guard(ctx, in.DepartmentID); err != nil {
				return err
			}
		}
		if rec.CoordinatorCode != "" {
			id, err := s.resolveCoordinator(ctx, in.DepartmentID, rec.CoordinatorCode, codes)
			if err != nil {
				return err
			}
			in.CoordinatorID = id
		}
		st, err := s.hierarchy.CreateStudent(ctx, in)
		if err != nil {
			return err
		}
		result.Students = append(result.Students, st.ID)
		return nil
	}
	return apperrors.NewValidationError(fmt.Sprintf("unsupported record kind %q", rec.Kind))
}

func (s *BulkImportService) resolveCoordinator(ctx context.Context, departmentID, code string, codes map[string]string) (string, error) {
	code = validation.NormalizeCode(code)
	if id, ok := codes[code]; ok {
		return id, nil
	}
	roster, err := s.store.ListFaculties(ctx, repositories.FacultyFilter{DepartmentIDs: []string{departmentID}, ActiveOnly: true})
	if err != nil {
		return "", err
	}
	for _, f := range roster {
		if f.FacultyCode == code {
			codes[code] = f.ID
			return f.ID, nil
		}
	}
	return "", apperrors.NewParentNotFoundError(string(models.KindFaculty), code)
}

// DecodeRecords streams newline-delimited JSON records from r. The returned
// channel is closed at EOF, on a read error or when ctx is done. Lines that
// fail to decode are delivered with an unknown kind so Import reports them.
func DecodeRecords(ctx context.Context, r io.Reader) <-chan ImportRecord {
	out := make(chan ImportRecord)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}
			var rec ImportRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				rec = ImportRecord{Kind: models.EntityKind("invalid")}
			}
			rec.Line = line
			select {
			case out <- rec:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Error().Err(err).Int("line", line).Msg("Failed to read import stream")
		}
	}()
	return out
}
