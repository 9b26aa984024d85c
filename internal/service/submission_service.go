package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/internal/repository"
	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
)

// Outcome result of a submit call
type Outcome string

const (
	OutcomeSuccess          Outcome = "SUCCESS"
	OutcomeAlreadySubmitted Outcome = "ALREADY_SUBMITTED"
	OutcomeInvalidInput     Outcome = "INVALID_INPUT"
	OutcomePartialMismatch  Outcome = "PARTIAL_MISMATCH"
)

const (
	minScore = 1
	maxScore = 10
)

// SubmissionService records a student's feedback at most once
type SubmissionService interface {
	Submit(ctx context.Context, registerNo string, req *dto.SubmitRequest) (*dto.SubmitResponse, error)
	Questions() []dto.QuestionResponse
}

type submissionService struct {
	repo      *repository.Repository
	questions []string
	retries   int
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubmissionService creates a SubmissionService
func NewSubmissionService(repo *repository.Repository, questions []string, retries int, logger *zap.Logger) SubmissionService {
	return &submissionService{
		repo:      repo,
		questions: questions,
		retries:   retries,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *submissionService) Questions() []dto.QuestionResponse {
	out := make([]dto.QuestionResponse, 0, len(s.questions))
	for i, q := range s.questions {
		out = append(out, dto.QuestionResponse{Number: i + 1, Text: q})
	}
	return out
}

// ────────────────────── Submit ──────────────────────
//
// Inside one transaction:
//  1. an existing submission record ends with ALREADY_SUBMITTED and no writes
//  2. malformed entries end with INVALID_INPUT
//  3. a pair set different from the expected assignments ends with PARTIAL_MISMATCH
//  4. one rating per pair plus the submission record are inserted with the same timestamp
//
// A unique violation means a concurrent submit for the same student committed first.

func (s *submissionService) Submit(ctx context.Context, registerNo string, req *dto.SubmitRequest) (*dto.SubmitResponse, error) {
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

	entries, issues := normalizeRatings(req)
	issues = append(issues, groupEchoIssues(student, req)...)

	var resp *dto.SubmitResponse
	err = withRetry(ctx, s.retries, s.logger, "submit", func() error {
		resp = nil
		txErr := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			r, err := s.submitTx(ctx, tx, student, entries, issues)
			resp = r
			return err
		})
		if errors.Is(txErr, pkgerrors.ErrDuplicate) {
			resp = &dto.SubmitResponse{Outcome: string(OutcomeAlreadySubmitted)}
			return nil
		}
		return txErr
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrStoreUnavailable) {
			s.logger.Error("submit aborted, store unavailable", zap.String("register_no", regNo), zap.Error(err))
			return nil, pkgerrors.ErrStoreUnavailable
		}
		s.logger.Error("submit failed", zap.String("register_no", regNo), zap.Error(err))
		return nil, err
	}

	switch Outcome(resp.Outcome) {
	case OutcomeSuccess:
		s.logger.Info("feedback submitted",
			zap.String("register_no", regNo),
			zap.Int("ratings", len(entries)),
		)
	default:
		s.logger.Info("feedback rejected",
			zap.String("register_no", regNo),
			zap.String("outcome", resp.Outcome),
		)
	}
	return resp, nil
}

func (s *submissionService) submitTx(
	ctx context.Context,
	tx *repository.Repository,
	student *model.Student,
	entries []ratingEntry,
	issues []dto.RowError,
) (*dto.SubmitResponse, error) {
	// serialize concurrent submits for the same student on the row lock
	if _, err := tx.Student.GetForUpdate(ctx, student.RegisterNo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	exists, err := tx.Submission.Exists(ctx, student.RegisterNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return &dto.SubmitResponse{Outcome: string(OutcomeAlreadySubmitted)}, nil
	}

	if len(issues) > 0 {
		return &dto.SubmitResponse{Outcome: string(OutcomeInvalidInput), Issues: issues}, nil
	}

	expected, err := expectedAssignments(ctx, tx.Mapping, student.Department, student.Semester)
	if err != nil {
		return nil, err
	}
	missing, unexpected := diffAssignments(expected, entries)
	if len(expected) == 0 || len(missing) > 0 || len(unexpected) > 0 {
		return &dto.SubmitResponse{
			Outcome:    string(OutcomePartialMismatch),
			Missing:    missing,
			Unexpected: unexpected,
		}, nil
	}

	now := s.now().UTC()
	ratings := make([]model.Rating, 0, len(entries))
	for _, e := range entries {
		r := model.Rating{
			RegisterNo: student.RegisterNo,
			Department: student.Department,
			Semester:   student.Semester,
			Staff:      e.pair.Staff,
			Subject:    e.pair.Subject,
			CreatedAt:  now,
		}
		r.SetScores(e.scores)
		ratings = append(ratings, r)
	}

	if err := tx.Rating.CreateBatch(ctx, ratings); err != nil {
		return nil, fmt.Errorf("insert ratings: %w", err)
	}
	if err := tx.Submission.Create(ctx, &model.SubmissionRecord{
		RegisterNo:  student.RegisterNo,
		SubmittedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("insert submission record: %w", err)
	}

	return &dto.SubmitResponse{
		Outcome:     string(OutcomeSuccess),
		SubmittedAt: now.Format(time.RFC3339Nano),
	}, nil
}

// ── validation ──

type ratingEntry struct {
	pair   model.Assignment
	scores [model.QuestionCount]float64
}

// normalizeRatings trims names and checks every entry; entries with issues are dropped
func normalizeRatings(req *dto.SubmitRequest) ([]ratingEntry, []dto.RowError) {
	var issues []dto.RowError
	entries := make([]ratingEntry, 0, len(req.Ratings))
	seen := make(map[model.Assignment]int, len(req.Ratings))

	for i, r := range req.Ratings {
		row := i + 1
		pair := model.Assignment{Staff: strings.TrimSpace(r.Staff), Subject: strings.TrimSpace(r.Subject)}
		ok := true

		if pair.Staff == "" {
			issues = append(issues, dto.RowError{Row: row, Field: "staff", Reason: "staff must not be empty"})
			ok = false
		}
		if pair.Subject == "" {
			issues = append(issues, dto.RowError{Row: row, Field: "subject", Reason: "subject must not be empty"})
			ok = false
		}

		if len(r.Scores) != model.QuestionCount {
			issues = append(issues, dto.RowError{
				Row:    row,
				Field:  "scores",
				Reason: fmt.Sprintf("expected %d scores, got %d", model.QuestionCount, len(r.Scores)),
			})
			ok = false
		}

		var scores [model.QuestionCount]float64
		for q, v := range r.Scores {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < minScore || v > maxScore {
				issues = append(issues, dto.RowError{
					Row:    row,
					Field:  fmt.Sprintf("scores[%d]", q),
					Reason: fmt.Sprintf("score must be between %d and %d", minScore, maxScore),
				})
				ok = false
				continue
			}
			if q < model.QuestionCount {
				scores[q] = v
			}
		}

		if ok {
			if first, dup := seen[pair]; dup {
				issues = append(issues, dto.RowError{
					Row:    row,
					Field:  "staff",
					Reason: fmt.Sprintf("duplicate rating for %s / %s (first at entry %d)", pair.Staff, pair.Subject, first),
				})
				continue
			}
			seen[pair] = row
			entries = append(entries, ratingEntry{pair: pair, scores: scores})
		}
	}
	return entries, issues
}

// groupEchoIssues the optional department/semester echo must match the stored student
func groupEchoIssues(student *model.Student, req *dto.SubmitRequest) []dto.RowError {
	var issues []dto.RowError
	if d := strings.TrimSpace(req.Department); d != "" && d != student.Department {
		issues = append(issues, dto.RowError{Field: "department", Reason: "department does not match the student record"})
	}
	if sem := strings.TrimSpace(req.Semester); sem != "" && sem != student.Semester {
		issues = append(issues, dto.RowError{Field: "semester", Reason: "semester does not match the student record"})
	}
	return issues
}

// diffAssignments expected pairs not rated, and rated pairs not expected
func diffAssignments(expected []model.Assignment, entries []ratingEntry) (missing, unexpected []dto.AssignmentResponse) {
	want := make(map[model.Assignment]int, len(expected))
	for i, p := range expected {
		want[p] = i
	}
	got := make(map[model.Assignment]struct{}, len(entries))
	for _, e := range entries {
		got[e.pair] = struct{}{}
		if _, ok := want[e.pair]; !ok {
			unexpected = append(unexpected, dto.AssignmentResponse{Staff: e.pair.Staff, Subject: e.pair.Subject})
		}
	}
	for i, p := range expected {
		if _, ok := got[p]; !ok {
			missing = append(missing, dto.AssignmentResponse{Reference: referenceLabel(i), Staff: p.Staff, Subject: p.Subject})
		}
	}
	return missing, unexpected
}
