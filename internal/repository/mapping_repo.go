package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/pkg/database"
)

// MappingFilter empty fields match everything
type MappingFilter struct {
	Department string
	Semester   string
	Staff      string
	Subject    string
}

// MappingRepository mapping data access
type MappingRepository interface {
	// Create inserts one mapping; an existing natural key yields pkgerrors.ErrDuplicate
	Create(ctx context.Context, m *model.Mapping) error
	// CreateIfAbsent inserts unless the natural key exists; reports whether a row was added
	CreateIfAbsent(ctx context.Context, m *model.Mapping) (bool, error)
	// DeleteScope removes the mappings of a department, a semester or both; empty means any
	DeleteScope(ctx context.Context, department, semester string) (int64, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	List(ctx context.Context, filter MappingFilter) ([]model.Mapping, error)
	// ListPairs distinct (staff, subject) pairs of one group ordered by staff then subject
	ListPairs(ctx context.Context, department, semester string) ([]model.Assignment, error)
}

// mappingRepo GORM implementation of MappingRepository
type mappingRepo struct {
	db *gorm.DB
}

// NewMappingRepo creates a MappingRepository
func NewMappingRepo(db *gorm.DB) MappingRepository {
	return &mappingRepo{db: db}
}

func (r *mappingRepo) Create(ctx context.Context, m *model.Mapping) error {
	return database.Classify(r.db.WithContext(ctx).Create(m).Error)
}

func (r *mappingRepo) CreateIfAbsent(ctx context.Context, m *model.Mapping) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "department"}, {Name: "semester"}, {Name: "staff"}, {Name: "subject"},
			},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, database.Classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *mappingRepo) DeleteScope(ctx context.Context, department, semester string) (int64, error) {
	db := r.db.WithContext(ctx)
	if department != "" {
		db = db.Where("department = ?", department)
	}
	if semester != "" {
		db = db.Where("semester = ?", semester)
	}
	if department == "" && semester == "" {
		db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	res := db.Delete(&model.Mapping{})
	return res.RowsAffected, res.Error
}

func (r *mappingRepo) DeleteByID(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("mapping_id = ?", id).
		Delete(&model.Mapping{})
	return res.RowsAffected, res.Error
}

func (r *mappingRepo) DeleteAll(ctx context.Context) (int64, error) {
	return r.DeleteScope(ctx, "", "")
}

func (r *mappingRepo) List(ctx context.Context, filter MappingFilter) ([]model.Mapping, error) {
	var mappings []model.Mapping
	db := r.db.WithContext(ctx)
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Semester != "" {
		db = db.Where("semester = ?", filter.Semester)
	}
	if filter.Staff != "" {
		db = db.Where("staff = ?", filter.Staff)
	}
	if filter.Subject != "" {
		db = db.Where("subject = ?", filter.Subject)
	}
	err := db.Order("department ASC, semester ASC, staff ASC, subject ASC").
		Find(&mappings).Error
	return mappings, err
}

func (r *mappingRepo) ListPairs(ctx context.Context, department, semester string) ([]model.Assignment, error) {
	var pairs []model.Assignment
	err := r.db.WithContext(ctx).
		Model(&model.Mapping{}).
		Distinct("staff", "subject").
		Where("department = ? AND semester = ?", department, semester).
		Order("staff ASC, subject ASC").
		Scan(&pairs).Error
	return pairs, err
}

