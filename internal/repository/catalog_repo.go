package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/pkg/database"
)

// CatalogRepository access to the department, semester, staff and subject name tables
type CatalogRepository interface {
	// EnsureNames inserts the names not yet present; returns how many were added
	EnsureNames(ctx context.Context, kind model.CatalogKind, names []string) (int64, error)
	Names(ctx context.Context, kind model.CatalogKind) ([]string, error)
}

// catalogRepo GORM implementation of CatalogRepository
type catalogRepo struct {
	db *gorm.DB
}

// NewCatalogRepo creates a CatalogRepository
func NewCatalogRepo(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) EnsureNames(ctx context.Context, kind model.CatalogKind, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}

	entries := make([]model.CatalogEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, model.CatalogEntry{Name: n})
	}

	res := r.db.WithContext(ctx).
		Table(kind.Table()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&entries)
	if res.Error != nil {
		return 0, database.Classify(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *catalogRepo) Names(ctx context.Context, kind model.CatalogKind) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table(kind.Table()).
		Order("name ASC").
		Pluck("name", &names).Error
	return names, err
}
