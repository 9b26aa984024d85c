package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/internal/repository"
)

// ReportService aggregates ratings and submission state.
// An average is nil whenever no rating contributes to it.
type ReportService interface {
	StaffReport(ctx context.Context, req *dto.StaffReportRequest) (*dto.StaffReportResponse, error)
	// DepartmentReport one entry per expected assignment, labelled S1..Sn
	DepartmentReport(ctx context.Context, department, semester string) (*dto.DepartmentReportResponse, error)
	// NonSubmitters students of the group without a submission record;
	// groups with no expected assignments are excluded
	NonSubmitters(ctx context.Context, department, semester string) (*dto.NonSubmittersResponse, error)
	NonSubmissionSummary(ctx context.Context, req *dto.NonSubmissionSummaryRequest) (*dto.NonSubmissionSummaryResponse, error)
}

type reportService struct {
	repo      *repository.Repository
	questions []string
	logger    *zap.Logger
}

// NewReportService creates a ReportService
func NewReportService(repo *repository.Repository, questions []string, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, questions: questions, logger: logger}
}

// ────────────────────── StaffReport ──────────────────────

func (s *reportService) StaffReport(ctx context.Context, req *dto.StaffReportRequest) (*dto.StaffReportResponse, error) {
	filter := repository.RatingFilter{
		Staff:      strings.TrimSpace(req.Staff),
		Subject:    strings.TrimSpace(req.Subject),
		Department: strings.TrimSpace(req.Department),
		Semester:   strings.TrimSpace(req.Semester),
	}
	if filter.Staff == "" {
		return nil, &ValidationError{Errors: []dto.RowError{{Field: "staff", Reason: "staff must not be empty"}}}
	}

	sums, err := s.repo.Rating.Sum(ctx, filter)
	if err != nil {
		s.logger.Error("staff report failed", zap.String("staff", filter.Staff), zap.Error(err))
		return nil, err
	}

	avg, perQ := averages(sums)
	return &dto.StaffReportResponse{
		Staff:               filter.Staff,
		Subject:             filter.Subject,
		Department:          filter.Department,
		Semester:            filter.Semester,
		Count:               sums.Count,
		Average:             avg,
		PerQuestionAverages: perQ,
	}, nil
}

// ────────────────────── DepartmentReport ──────────────────────

func (s *reportService) DepartmentReport(ctx context.Context, department, semester string) (*dto.DepartmentReportResponse, error) {
	department = strings.TrimSpace(department)
	semester = strings.TrimSpace(semester)

	expected, err := expectedAssignments(ctx, s.repo.Mapping, department, semester)
	if err != nil {
		s.logger.Error("department report: load assignments failed", zap.Error(err))
		return nil, err
	}

	pairSums, err := s.repo.Rating.SumByPair(ctx, department, semester)
	if err != nil {
		s.logger.Error("department report: sum ratings failed", zap.Error(err))
		return nil, err
	}
	byPair := make(map[model.Assignment]repository.RatingSums, len(pairSums))
	for _, ps := range pairSums {
		byPair[ps.Assignment] = ps.RatingSums
	}

	entries := make([]dto.DepartmentReportEntry, 0, len(expected))
	for i, p := range expected {
		sums := byPair[p]
		avg, perQ := averages(sums)
		entry := dto.DepartmentReportEntry{
			Reference:           referenceLabel(i),
			Staff:               p.Staff,
			Subject:             p.Subject,
			Count:               sums.Count,
			Average:             avg,
			PerQuestionAverages: perQ,
		}
		if avg != nil {
			total := *avg * 10
			entry.TotalScore = &total
		}
		entries = append(entries, entry)
	}

	return &dto.DepartmentReportResponse{
		Department: department,
		Semester:   semester,
		Questions:  s.questions,
		Entries:    entries,
	}, nil
}

// ────────────────────── NonSubmitters ──────────────────────

func (s *reportService) NonSubmitters(ctx context.Context, department, semester string) (*dto.NonSubmittersResponse, error) {
	department = strings.TrimSpace(department)
	semester = strings.TrimSpace(semester)
	resp := &dto.NonSubmittersResponse{
		Department:  department,
		Semester:    semester,
		RegisterNos: []string{},
	}

	expected, err := expectedAssignments(ctx, s.repo.Mapping, department, semester)
	if err != nil {
		s.logger.Error("non-submitters: load assignments failed", zap.Error(err))
		return nil, err
	}
	if len(expected) == 0 {
		resp.Excluded = true
		return resp, nil
	}

	regNos, err := s.repo.Student.ListRegisterNos(ctx, department, semester)
	if err != nil {
		s.logger.Error("non-submitters: list students failed", zap.Error(err))
		return nil, err
	}
	submitted, err := s.repo.Submission.FilterSubmitted(ctx, regNos)
	if err != nil {
		s.logger.Error("non-submitters: load submissions failed", zap.Error(err))
		return nil, err
	}

	done := make(map[string]struct{}, len(submitted))
	for _, r := range submitted {
		done[r] = struct{}{}
	}
	for _, r := range regNos {
		if _, ok := done[r]; !ok {
			resp.RegisterNos = append(resp.RegisterNos, r)
		}
	}
	sort.Strings(resp.RegisterNos)

	resp.Total = len(regNos)
	resp.NotSubmitted = len(resp.RegisterNos)
	resp.Submitted = resp.Total - resp.NotSubmitted
	return resp, nil
}

func (s *reportService) NonSubmissionSummary(ctx context.Context, req *dto.NonSubmissionSummaryRequest) (*dto.NonSubmissionSummaryResponse, error) {
	dept := strings.TrimSpace(req.Department)
	sem := strings.TrimSpace(req.Semester)

	groups, err := s.repo.Student.ListGroups(ctx)
	if err != nil {
		s.logger.Error("non-submission summary: list groups failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.NonSubmissionSummaryResponse{Groups: []dto.NonSubmittersResponse{}}
	for _, g := range groups {
		if dept != "" && g.Department != dept {
			continue
		}
		if sem != "" && g.Semester != sem {
			continue
		}
		ns, err := s.NonSubmitters(ctx, g.Department, g.Semester)
		if err != nil {
			return nil, err
		}
		resp.Groups = append(resp.Groups, *ns)
		resp.Total += ns.Total
		resp.Submitted += ns.Submitted
		resp.NotSubmitted += ns.NotSubmitted
	}
	return resp, nil
}

// ── helpers ──

// averages divides the sums by their count; nil when nothing was rated
func averages(sums repository.RatingSums) (*float64, []*float64) {
	perQ := make([]*float64, model.QuestionCount)
	if sums.Count == 0 {
		return nil, perQ
	}

	n := float64(sums.Count)
	avg := sums.AverageSum / n
	for i, qs := range sums.QuestionSums {
		v := qs / n
		perQ[i] = &v
	}
	return &avg, perQ
}
