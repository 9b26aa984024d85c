package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/pkg/database"
)

// SubmissionRepository submission record data access
type SubmissionRepository interface {
	Exists(ctx context.Context, registerNo string) (bool, error)
	// Create inserts the record; an existing one yields pkgerrors.ErrDuplicate
	Create(ctx context.Context, rec *model.SubmissionRecord) error
	// FilterSubmitted returns the subset of registerNos that have a record
	FilterSubmitted(ctx context.Context, registerNos []string) ([]string, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// submissionRepo GORM implementation of SubmissionRepository
type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo creates a SubmissionRepository
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Exists(ctx context.Context, registerNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SubmissionRecord{}).
		Where("register_no = ?", registerNo).
		Count(&count).Error
	if err != nil {
		return false, database.Classify(err)
	}
	return count > 0, nil
}

func (r *submissionRepo) Create(ctx context.Context, rec *model.SubmissionRecord) error {
	return database.Classify(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *submissionRepo) FilterSubmitted(ctx context.Context, registerNos []string) ([]string, error) {
	if len(registerNos) == 0 {
		return nil, nil
	}
	var submitted []string
	err := r.db.WithContext(ctx).
		Model(&model.SubmissionRecord{}).
		Where("register_no IN ?", registerNos).
		Pluck("register_no", &submitted).Error
	return submitted, err
}

func (r *submissionRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.SubmissionRecord{})
	return res.RowsAffected, res.Error
}
