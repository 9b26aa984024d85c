package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/internal/repository"
)

var ErrStudentNotFound = errors.New("student not found")

// Resolution what a student must rate and whether they already did
type Resolution struct {
	Student     *model.Student
	Assignments []model.Assignment
	Submitted   bool
}

// Response renders the resolution with S1..Sn reference labels
func (r *Resolution) Response() *dto.ResolveResponse {
	assignments := make([]dto.AssignmentResponse, 0, len(r.Assignments))
	for i, p := range r.Assignments {
		assignments = append(assignments, dto.AssignmentResponse{
			Reference: referenceLabel(i),
			Staff:     p.Staff,
			Subject:   p.Subject,
		})
	}
	return &dto.ResolveResponse{
		Student:     *toStudentResponse(r.Student),
		Assignments: assignments,
		Submitted:   r.Submitted,
	}
}

// ResolverService computes the (staff, subject) pairs a student must rate
type ResolverService interface {
	// ExpectedAssignments distinct pairs mapped to the group, ordered by staff then subject
	ExpectedAssignments(ctx context.Context, department, semester string) ([]model.Assignment, error)
	// HasStudentCompletedAll reports whether a submission record exists
	HasStudentCompletedAll(ctx context.Context, registerNo string) (bool, error)
	Resolve(ctx context.Context, registerNo string) (*Resolution, error)
}

type resolverService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewResolverService creates a ResolverService
func NewResolverService(repo *repository.Repository, logger *zap.Logger) ResolverService {
	return &resolverService{repo: repo, logger: logger}
}

func (s *resolverService) ExpectedAssignments(ctx context.Context, department, semester string) ([]model.Assignment, error) {
	pairs, err := expectedAssignments(ctx, s.repo.Mapping, department, semester)
	if err != nil {
		s.logger.Error("load expected assignments failed",
			zap.String("department", department),
			zap.String("semester", semester),
			zap.Error(err),
		)
		return nil, err
	}
	return pairs, nil
}

func (s *resolverService) HasStudentCompletedAll(ctx context.Context, registerNo string) (bool, error) {
	return s.repo.Submission.Exists(ctx, NormalizeRegisterNo(registerNo))
}

func (s *resolverService) Resolve(ctx context.Context, registerNo string) (*Resolution, error) {
	regNo := NormalizeRegisterNo(registerNo)
	if regNo == "" {
		return nil, ErrStudentNotFound
	}

	student, err := s.repo.Student.GetByRegisterNo(ctx, regNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("lookup student failed", zap.String("register_no", regNo), zap.Error(err))
		return nil, err
	}

	pairs, err := s.ExpectedAssignments(ctx, student.Department, student.Semester)
	if err != nil {
		return nil, err
	}

	submitted, err := s.repo.Submission.Exists(ctx, regNo)
	if err != nil {
		s.logger.Error("check submission failed", zap.String("register_no", regNo), zap.Error(err))
		return nil, err
	}

	return &Resolution{Student: student, Assignments: pairs, Submitted: submitted}, nil
}

// expectedAssignments loads the group's pairs through any (possibly tx-bound) mapping repository.
// Names match case-sensitively; the result is deduplicated and ordered byte-wise.
func expectedAssignments(ctx context.Context, mappings repository.MappingRepository, department, semester string) ([]model.Assignment, error) {
	department = strings.TrimSpace(department)
	semester = strings.TrimSpace(semester)
	if department == "" || semester == "" {
		return []model.Assignment{}, nil
	}

	pairs, err := mappings.ListPairs(ctx, department, semester)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Staff != pairs[j].Staff {
			return pairs[i].Staff < pairs[j].Staff
		}
		return pairs[i].Subject < pairs[j].Subject
	})

	out := make([]model.Assignment, 0, len(pairs))
	for i, p := range pairs {
		if i > 0 && p == pairs[i-1] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// referenceLabel S1, S2, ... for the i-th (0-based) expected assignment
func referenceLabel(i int) string {
	return fmt.Sprintf("S%d", i+1)
}
