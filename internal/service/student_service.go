package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/internal/repository"
	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
)

// ── student module errors ──

var (
	ErrStudentExists  = errors.New("register number already exists")
	ErrRangeTooLarge  = errors.New("register number range is too large")
	ErrNothingToApply = errors.New("no fields to update")
)

// maxListedDuplicates caps the duplicate register numbers echoed back by an import
const maxListedDuplicates = 20

// StudentRow one student of an import batch
type StudentRow struct {
	Row        int    `json:"-"`
	RegisterNo string `json:"register_no" validate:"notblank,max=32"`
	Department string `json:"department"  validate:"notblank,max=150"`
	Semester   string `json:"semester"    validate:"notblank,max=50"`
}

// StudentService student administration
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, caller string) (*dto.StudentResponse, error)
	Import(ctx context.Context, rows []StudentRow, caller string) (*dto.ImportStudentResponse, error)
	AddRange(ctx context.Context, req *dto.AddStudentRangeRequest, caller string) (*dto.ImportStudentResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) (*dto.PageResponse, error)
	Update(ctx context.Context, registerNo string, req *dto.UpdateStudentRequest, caller string) (*dto.StudentResponse, error)
	Delete(ctx context.Context, registerNo string) error
	Groups(ctx context.Context) ([]dto.GroupResponse, error)
}

type studentService struct {
	repo      *repository.Repository
	retries   int
	maxRange  int
	validator *rowValidator
	logger    *zap.Logger
}

// NewStudentService creates a StudentService
func NewStudentService(repo *repository.Repository, retries, maxRange int, logger *zap.Logger) StudentService {
	return &studentService{
		repo:      repo,
		retries:   retries,
		maxRange:  maxRange,
		validator: newRowValidator(),
		logger:    logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, caller string) (*dto.StudentResponse, error) {
	resp, err := s.Import(ctx, []StudentRow{{
		Row:        1,
		RegisterNo: req.RegisterNo,
		Department: req.Department,
		Semester:   req.Semester,
	}}, caller)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, &ValidationError{Errors: resp.Errors}
	}
	if resp.Added == 0 {
		return nil, ErrStudentExists
	}

	student, err := s.repo.Student.GetByRegisterNo(ctx, NormalizeRegisterNo(req.RegisterNo))
	if err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── Import ──────────────────────

func (s *studentService) Import(ctx context.Context, rows []StudentRow, caller string) (*dto.ImportStudentResponse, error) {
	resp := &dto.ImportStudentResponse{Total: len(rows), Errors: []dto.RowError{}}

	// phase 1: validation, no store writes
	seen := make(map[string]struct{}, len(rows))
	var valid []StudentRow
	var batchDups []string
	for i, row := range rows {
		if row.Row == 0 {
			row.Row = i + 1
		}
		row.RegisterNo = NormalizeRegisterNo(row.RegisterNo)
		row.Department = strings.TrimSpace(row.Department)
		row.Semester = strings.TrimSpace(row.Semester)

		if errs := s.validator.rowErrors(row.Row, row); len(errs) > 0 {
			resp.Errors = append(resp.Errors, errs...)
			continue
		}
		if _, dup := seen[row.RegisterNo]; dup {
			batchDups = append(batchDups, row.RegisterNo)
			continue
		}
		seen[row.RegisterNo] = struct{}{}
		valid = append(valid, row)
	}

	// phase 2: insert all valid rows in one transaction
	var createdBy *string
	if caller != "" {
		createdBy = &caller
	}
	var storeDups []string
	err := withRetry(ctx, s.retries, s.logger, "import students", func() error {
		resp.Added, storeDups = 0, nil
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			if err := ensureGroupNames(ctx, tx, valid); err != nil {
				return err
			}
			for _, row := range valid {
				added, err := tx.Student.CreateIfAbsent(ctx, &model.Student{
					RegisterNo: row.RegisterNo,
					Department: row.Department,
					Semester:   row.Semester,
					BaseModel:  model.BaseModel{CreatedBy: createdBy, UpdatedBy: createdBy},
				})
				if err != nil {
					return fmt.Errorf("insert row %d: %w", row.Row, err)
				}
				if added {
					resp.Added++
				} else {
					storeDups = append(storeDups, row.RegisterNo)
				}
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrStoreUnavailable) {
			s.logger.Error("student import aborted, store unavailable", zap.Error(err))
			return nil, pkgerrors.ErrStoreUnavailable
		}
		s.logger.Error("student import failed", zap.Error(err))
		return nil, err
	}

	dups := append(batchDups, storeDups...)
	resp.Duplicates = len(dups)
	if len(dups) > maxListedDuplicates {
		dups = dups[:maxListedDuplicates]
	}
	resp.DuplicateRegisterNos = dups

	s.logger.Info("students imported",
		zap.Int("rows", resp.Total),
		zap.Int("added", resp.Added),
		zap.Int("duplicates", resp.Duplicates),
		zap.Int("errors", len(resp.Errors)),
	)
	return resp, nil
}

func ensureGroupNames(ctx context.Context, tx *repository.Repository, rows []StudentRow) error {
	depts := map[string]struct{}{}
	sems := map[string]struct{}{}
	for _, r := range rows {
		depts[r.Department] = struct{}{}
		sems[r.Semester] = struct{}{}
	}
	if len(depts) > 0 {
		if _, err := tx.Catalog.EnsureNames(ctx, model.KindDepartment, sortedKeys(depts)); err != nil {
			return fmt.Errorf("ensure department names: %w", err)
		}
	}
	if len(sems) > 0 {
		if _, err := tx.Catalog.EnsureNames(ctx, model.KindSemester, sortedKeys(sems)); err != nil {
			return fmt.Errorf("ensure semester names: %w", err)
		}
	}
	return nil
}

// ────────────────────── AddRange ──────────────────────

func (s *studentService) AddRange(ctx context.Context, req *dto.AddStudentRangeRequest, caller string) (*dto.ImportStudentResponse, error) {
	if req.End < req.Start {
		return nil, &ValidationError{Errors: []dto.RowError{{Field: "end", Reason: "end must not be less than start"}}}
	}
	if count := req.End - req.Start + 1; s.maxRange > 0 && count > int64(s.maxRange) {
		return nil, fmt.Errorf("%w: %d students requested, at most %d allowed", ErrRangeTooLarge, count, s.maxRange)
	}

	rows := make([]StudentRow, 0, req.End-req.Start+1)
	for n := req.Start; n <= req.End; n++ {
		rows = append(rows, StudentRow{
			Row:        len(rows) + 1,
			RegisterNo: strconv.FormatInt(n, 10),
			Department: req.Department,
			Semester:   req.Semester,
		})
	}
	return s.Import(ctx, rows, caller)
}

// ────────────────────── List / Update / Delete ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) (*dto.PageResponse, error) {
	students, total, err := s.repo.Student.List(ctx, repository.StudentFilter{
		Department: strings.TrimSpace(req.Department),
		Semester:   strings.TrimSpace(req.Semester),
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		return nil, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, *toStudentResponse(&students[i]))
	}
	return &dto.PageResponse{
		Items:    items,
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	}, nil
}

func (s *studentService) Update(ctx context.Context, registerNo string, req *dto.UpdateStudentRequest, caller string) (*dto.StudentResponse, error) {
	if req.Department == nil && req.Semester == nil {
		return nil, ErrNothingToApply
	}
	regNo := NormalizeRegisterNo(registerNo)

	var updated *model.Student
	err := withRetry(ctx, s.retries, s.logger, "update student", func() error {
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			student, err := tx.Student.GetForUpdate(ctx, regNo)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrStudentNotFound
				}
				return err
			}
			if req.Department != nil {
				student.Department = strings.TrimSpace(*req.Department)
			}
			if req.Semester != nil {
				student.Semester = strings.TrimSpace(*req.Semester)
			}
			if errs := s.validator.rowErrors(1, StudentRow{
				RegisterNo: student.RegisterNo,
				Department: student.Department,
				Semester:   student.Semester,
			}); len(errs) > 0 {
				return &ValidationError{Errors: errs}
			}
			if caller != "" {
				student.UpdatedBy = &caller
			}

			if err := ensureGroupNames(ctx, tx, []StudentRow{{
				Department: student.Department,
				Semester:   student.Semester,
			}}); err != nil {
				return err
			}
			if err := tx.Student.Update(ctx, student); err != nil {
				return err
			}
			updated = student
			return nil
		})
	})
	if err != nil {
		var verr *ValidationError
		if !errors.Is(err, ErrStudentNotFound) && !errors.As(err, &verr) {
			s.logger.Error("update student failed", zap.String("register_no", regNo), zap.Error(err))
		}
		return nil, err
	}
	return toStudentResponse(updated), nil
}

func (s *studentService) Delete(ctx context.Context, registerNo string) error {
	regNo := NormalizeRegisterNo(registerNo)
	n, err := s.repo.Student.Delete(ctx, regNo)
	if err != nil {
		s.logger.Error("delete student failed", zap.String("register_no", regNo), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (s *studentService) Groups(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Student.ListGroups(ctx)
	if err != nil {
		s.logger.Error("list student groups failed", zap.Error(err))
		return nil, err
	}
	out := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.GroupResponse{Department: g.Department, Semester: g.Semester})
	}
	return out, nil
}

func toStudentResponse(s *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:         s.StudentID,
		RegisterNo: s.RegisterNo,
		Department: s.Department,
		Semester:   s.Semester,
	}
}
