package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/internal/repository"
	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
)

var ErrUnknownCatalog = errors.New("unknown catalog")

// CatalogService name catalogs and the end-of-term archive
type CatalogService interface {
	AddNames(ctx context.Context, kind model.CatalogKind, names []string) (*dto.BulkAddNamesResponse, error)
	List(ctx context.Context) (*dto.CatalogResponse, error)
	// Archive clears ratings, submissions, mappings and students in one
	// transaction; the catalogs are kept for the next term
	Archive(ctx context.Context, caller string) (*dto.ArchiveResponse, error)
}

type catalogService struct {
	repo    *repository.Repository
	retries int
	logger  *zap.Logger
}

// NewCatalogService creates a CatalogService
func NewCatalogService(repo *repository.Repository, retries int, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, retries: retries, logger: logger}
}

func (s *catalogService) AddNames(ctx context.Context, kind model.CatalogKind, names []string) (*dto.BulkAddNamesResponse, error) {
	if !kind.Valid() {
		return nil, ErrUnknownCatalog
	}

	seen := make(map[string]struct{}, len(names))
	var submitted int64
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		submitted++
		seen[n] = struct{}{}
	}

	added, err := s.repo.Catalog.EnsureNames(ctx, kind, sortedKeys(seen))
	if err != nil {
		s.logger.Error("add catalog names failed", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	return &dto.BulkAddNamesResponse{
		Kind:       string(kind),
		Added:      added,
		Duplicates: submitted - added,
	}, nil
}

func (s *catalogService) List(ctx context.Context) (*dto.CatalogResponse, error) {
	lists := make(map[model.CatalogKind][]string, len(model.CatalogKinds))
	for _, kind := range model.CatalogKinds {
		names, err := s.repo.Catalog.Names(ctx, kind)
		if err != nil {
			s.logger.Error("list catalog failed", zap.String("kind", string(kind)), zap.Error(err))
			return nil, err
		}
		if names == nil {
			names = []string{}
		}
		lists[kind] = names
	}

	return &dto.CatalogResponse{
		Departments: lists[model.KindDepartment],
		Semesters:   lists[model.KindSemester],
		Staff:       lists[model.KindStaff],
		Subjects:    lists[model.KindSubject],
	}, nil
}

func (s *catalogService) Archive(ctx context.Context, caller string) (*dto.ArchiveResponse, error) {
	resp := &dto.ArchiveResponse{}
	err := withRetry(ctx, s.retries, s.logger, "archive", func() error {
		*resp = dto.ArchiveResponse{}
		return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			var err error
			if resp.Ratings, err = tx.Rating.DeleteAll(ctx); err != nil {
				return fmt.Errorf("clear ratings: %w", err)
			}
			if resp.Submissions, err = tx.Submission.DeleteAll(ctx); err != nil {
				return fmt.Errorf("clear submissions: %w", err)
			}
			if resp.Mappings, err = tx.Mapping.DeleteAll(ctx); err != nil {
				return fmt.Errorf("clear mappings: %w", err)
			}
			if resp.Students, err = tx.Student.DeleteAll(ctx); err != nil {
				return fmt.Errorf("clear students: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		s.logger.Error("archive failed", zap.Error(err))
		if errors.Is(err, pkgerrors.ErrStoreUnavailable) {
			return nil, pkgerrors.ErrStoreUnavailable
		}
		return nil, err
	}

	s.logger.Info("feedback data archived",
		zap.String("by", caller),
		zap.Int64("ratings", resp.Ratings),
		zap.Int64("submissions", resp.Submissions),
		zap.Int64("mappings", resp.Mappings),
		zap.Int64("students", resp.Students),
	)
	return resp, nil
}
