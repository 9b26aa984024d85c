package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/internal/repository"
	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
)

// ── mapping module errors ──

var (
	ErrInvalidMode     = errors.New("mode must be append or replace")
	ErrScopeRequired   = errors.New("a department or semester scope is required")
	ErrMappingExists   = errors.New("mapping already exists")
	ErrMappingNotFound = errors.New("mapping not found")
)

// ReconcileMode how a batch merges into the stored mappings
type ReconcileMode string

const (
	// ModeAppend inserts rows whose natural key is absent
	ModeAppend ReconcileMode = "append"
	// ModeReplace clears the scope first, then appends
	ModeReplace ReconcileMode = "replace"
)

// Scope a department, a semester or both; empty fields match any value
type Scope struct {
	Department string
	Semester   string
}

// IsEmpty reports whether the scope matches everything
func (s Scope) IsEmpty() bool {
	return s.Department == "" && s.Semester == ""
}

// Contains reports whether a row falls inside the scope
func (s Scope) Contains(row MappingRow) bool {
	if s.Department != "" && row.Department != s.Department {
		return false
	}
	if s.Semester != "" && row.Semester != s.Semester {
		return false
	}
	return true
}

// MappingRow one mapping of an import batch. Row is the 1-based source row
// number used in error reports; zero means the batch position.
type MappingRow struct {
	Row        int    `json:"-"`
	Department string `json:"department" validate:"notblank,max=150"`
	Semester   string `json:"semester"   validate:"notblank,max=50"`
	Staff      string `json:"staff"      validate:"notblank,max=150"`
	Subject    string `json:"subject"    validate:"notblank,max=150"`
}

func (r MappingRow) key() [4]string {
	return [4]string{r.Department, r.Semester, r.Staff, r.Subject}
}

// MappingService mapping business interface
type MappingService interface {
	// Reconcile merges a batch into the store in one transaction
	Reconcile(ctx context.Context, rows []MappingRow, mode ReconcileMode, scope Scope, caller string) (*dto.ReconcileResponse, error)
	Create(ctx context.Context, req *dto.CreateMappingRequest, caller string) (*dto.MappingResponse, error)
	List(ctx context.Context, req *dto.MappingListRequest) ([]dto.MappingResponse, error)
	Delete(ctx context.Context, id string) error
	DeleteScope(ctx context.Context, scope Scope) (int64, error)
}

type mappingService struct {
	repo      *repository.Repository
	retries   int
	validator *rowValidator
	logger    *zap.Logger
}

// NewMappingService creates a MappingService
func NewMappingService(repo *repository.Repository, retries int, logger *zap.Logger) MappingService {
	return &mappingService{
		repo:      repo,
		retries:   retries,
		validator: newRowValidator(),
		logger:    logger,
	}
}

// ────────────────────── Reconcile ──────────────────────

func (s *mappingService) Reconcile(ctx context.Context, rows []MappingRow, mode ReconcileMode, scope Scope, caller string) (*dto.ReconcileResponse, error) {
	if mode != ModeAppend && mode != ModeReplace {
		return nil, ErrInvalidMode
	}
	scope = Scope{Department: strings.TrimSpace(scope.Department), Semester: strings.TrimSpace(scope.Semester)}
	if mode == ModeReplace && scope.IsEmpty() {
		return nil, ErrScopeRequired
	}

	resp := &dto.ReconcileResponse{Mode: string(mode), Errors: []dto.RowError{}}

	// phase 1: validation and intra-batch dedup, no store access
	seen := make(map[[4]string]struct{}, len(rows))
	var valid []MappingRow
	for i, row := range rows {
		if row.Row == 0 {
			row.Row = i + 1
		}
		row.Department = strings.TrimSpace(row.Department)
		row.Semester = strings.TrimSpace(row.Semester)
		row.Staff = strings.TrimSpace(row.Staff)
		row.Subject = strings.TrimSpace(row.Subject)

		if errs := s.validator.rowErrors(row.Row, row); len(errs) > 0 {
			resp.Errors = append(resp.Errors, errs...)
			continue
		}
		if mode == ModeReplace && !scope.Contains(row) {
			resp.Errors = append(resp.Errors, outOfScopeError(row, scope))
			continue
		}

		k := row.key()
		if _, dup := seen[k]; dup {
			resp.SkippedDuplicates++
			continue
		}
		seen[k] = struct{}{}
		valid = append(valid, row)
	}
	batchDuplicates := resp.SkippedDuplicates

	// phase 2: one transaction, replayed whole on contention
	var createdBy *string
	if caller != "" {
		createdBy = &caller
	}
	err := withRetry(ctx, s.retries, s.logger, "reconcile", func() error {
		resp.Inserted, resp.SkippedDuplicates, resp.Deleted = 0, batchDuplicates, 0

		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			if mode == ModeReplace {
				n, err := tx.Mapping.DeleteScope(ctx, scope.Department, scope.Semester)
				if err != nil {
					return fmt.Errorf("delete scope: %w", err)
				}
				resp.Deleted = n
			}

			if err := ensureMappingNames(ctx, tx, valid); err != nil {
				return err
			}

			for _, row := range valid {
				added, err := tx.Mapping.CreateIfAbsent(ctx, &model.Mapping{
					Department: row.Department,
					Semester:   row.Semester,
					Staff:      row.Staff,
					Subject:    row.Subject,
					CreatedBy:  createdBy,
				})
				if err != nil {
					return fmt.Errorf("insert row %d: %w", row.Row, err)
				}
				if added {
					resp.Inserted++
				} else {
					resp.SkippedDuplicates++
				}
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrStoreUnavailable) {
			s.logger.Error("reconcile aborted, store unavailable", zap.Error(err))
			return nil, pkgerrors.ErrStoreUnavailable
		}
		s.logger.Error("reconcile failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("mappings reconciled",
		zap.String("mode", string(mode)),
		zap.String("department", scope.Department),
		zap.String("semester", scope.Semester),
		zap.Int("rows", len(rows)),
		zap.Int("inserted", resp.Inserted),
		zap.Int("skipped_duplicates", resp.SkippedDuplicates),
		zap.Int64("deleted", resp.Deleted),
		zap.Int("errors", len(resp.Errors)),
	)

	return resp, nil
}

func outOfScopeError(row MappingRow, scope Scope) dto.RowError {
	if scope.Department != "" && row.Department != scope.Department {
		return dto.RowError{
			Row:    row.Row,
			Field:  "department",
			Reason: fmt.Sprintf("department %q is outside the replace scope %q", row.Department, scope.Department),
		}
	}
	return dto.RowError{
		Row:    row.Row,
		Field:  "semester",
		Reason: fmt.Sprintf("semester %q is outside the replace scope %q", row.Semester, scope.Semester),
	}
}

// ensureMappingNames adds the catalog names a batch refers to
func ensureMappingNames(ctx context.Context, tx *repository.Repository, rows []MappingRow) error {
	names := map[model.CatalogKind]map[string]struct{}{}
	add := func(kind model.CatalogKind, name string) {
		if names[kind] == nil {
			names[kind] = map[string]struct{}{}
		}
		names[kind][name] = struct{}{}
	}
	for _, row := range rows {
		add(model.KindDepartment, row.Department)
		add(model.KindSemester, row.Semester)
		add(model.KindStaff, row.Staff)
		add(model.KindSubject, row.Subject)
	}

	for _, kind := range model.CatalogKinds {
		list := sortedKeys(names[kind])
		if len(list) == 0 {
			continue
		}
		if _, err := tx.Catalog.EnsureNames(ctx, kind, list); err != nil {
			return fmt.Errorf("ensure %s names: %w", kind, err)
		}
	}
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ────────────────────── Create ──────────────────────

func (s *mappingService) Create(ctx context.Context, req *dto.CreateMappingRequest, caller string) (*dto.MappingResponse, error) {
	row := MappingRow{
		Row:        1,
		Department: strings.TrimSpace(req.Department),
		Semester:   strings.TrimSpace(req.Semester),
		Staff:      strings.TrimSpace(req.Staff),
		Subject:    strings.TrimSpace(req.Subject),
	}
	if errs := s.validator.rowErrors(row.Row, row); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	m := &model.Mapping{
		Department: row.Department,
		Semester:   row.Semester,
		Staff:      row.Staff,
		Subject:    row.Subject,
	}
	if caller != "" {
		m.CreatedBy = &caller
	}

	err := withRetry(ctx, s.retries, s.logger, "create mapping", func() error {
		m.MappingID = ""
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			if err := ensureMappingNames(ctx, tx, []MappingRow{row}); err != nil {
				return err
			}
			return tx.Mapping.Create(ctx, m)
		})
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrMappingExists
		}
		s.logger.Error("create mapping failed", zap.Error(err))
		return nil, err
	}

	return toMappingResponse(m), nil
}

// ────────────────────── List / Delete ──────────────────────

func (s *mappingService) List(ctx context.Context, req *dto.MappingListRequest) ([]dto.MappingResponse, error) {
	mappings, err := s.repo.Mapping.List(ctx, repository.MappingFilter{
		Department: strings.TrimSpace(req.Department),
		Semester:   strings.TrimSpace(req.Semester),
		Staff:      strings.TrimSpace(req.Staff),
		Subject:    strings.TrimSpace(req.Subject),
	})
	if err != nil {
		s.logger.Error("list mappings failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.MappingResponse, 0, len(mappings))
	for i := range mappings {
		result = append(result, *toMappingResponse(&mappings[i]))
	}
	return result, nil
}

func (s *mappingService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Mapping.DeleteByID(ctx, id)
	if err != nil {
		s.logger.Error("delete mapping failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrMappingNotFound
	}
	return nil
}

func (s *mappingService) DeleteScope(ctx context.Context, scope Scope) (int64, error) {
	scope = Scope{Department: strings.TrimSpace(scope.Department), Semester: strings.TrimSpace(scope.Semester)}
	if scope.IsEmpty() {
		return 0, ErrScopeRequired
	}

	n, err := s.repo.Mapping.DeleteScope(ctx, scope.Department, scope.Semester)
	if err != nil {
		s.logger.Error("delete mapping scope failed", zap.Error(err))
		return 0, err
	}

	s.logger.Info("mapping scope cleared",
		zap.String("department", scope.Department),
		zap.String("semester", scope.Semester),
		zap.Int64("deleted", n),
	)
	return n, nil
}

// ── helpers ──

func toMappingResponse(m *model.Mapping) *dto.MappingResponse {
	return &dto.MappingResponse{
		ID:         m.MappingID,
		Department: m.Department,
		Semester:   m.Semester,
		Staff:      m.Staff,
		Subject:    m.Subject,
		CreatedAt:  formatTime(m.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
