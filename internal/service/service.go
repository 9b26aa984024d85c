package service

import (
	"go.uber.org/zap"

	"github.com/Suryaprasath-41/Feedback-System/config"
	"github.com/Suryaprasath-41/Feedback-System/internal/repository"
	"github.com/Suryaprasath-41/Feedback-System/pkg/jwt"
)

// Service aggregate entry point for every service
type Service struct {
	Auth       AuthService
	Mapping    MappingService
	Resolver   ResolverService
	Submission SubmissionService
	Report     ReportService
	Student    StudentService
	Catalog    CatalogService
	Export     ExportService
}

// NewService wires the services; blacklist may be nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	fb := cfg.Feedback
	report := NewReportService(repo, fb.Questions, logger.Named("report"))

	return &Service{
		Auth:       NewAuthService(cfg, jwtMgr, blacklist, logger.Named("auth")),
		Mapping:    NewMappingService(repo, fb.SubmitMaxRetries, logger.Named("mapping")),
		Resolver:   NewResolverService(repo, logger.Named("resolver")),
		Submission: NewSubmissionService(repo, fb.Questions, fb.SubmitMaxRetries, logger.Named("submission")),
		Report:     report,
		Student:    NewStudentService(repo, fb.SubmitMaxRetries, fb.MaxStudentRange, logger.Named("student")),
		Catalog:    NewCatalogService(repo, fb.SubmitMaxRetries, logger.Named("catalog")),
		Export:     NewExportService(report, logger.Named("export")),
	}
}
