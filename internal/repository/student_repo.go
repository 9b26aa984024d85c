package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/pkg/database"
)

// StudentFilter empty fields match everything
type StudentFilter struct {
	Department string
	Semester   string
}

// StudentRepository student data access
type StudentRepository interface {
	Create(ctx context.Context, s *model.Student) error
	// CreateIfAbsent inserts unless the register number exists; reports whether a row was added
	CreateIfAbsent(ctx context.Context, s *model.Student) (bool, error)
	GetByRegisterNo(ctx context.Context, registerNo string) (*model.Student, error)
	// GetForUpdate locks the student row until the transaction ends
	GetForUpdate(ctx context.Context, registerNo string) (*model.Student, error)
	List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error)
	ListRegisterNos(ctx context.Context, department, semester string) ([]string, error)
	ListGroups(ctx context.Context) ([]Group, error)
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, registerNo string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// studentRepo GORM implementation of StudentRepository
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, s *model.Student) error {
	return database.Classify(r.db.WithContext(ctx).Create(s).Error)
}

func (r *studentRepo) CreateIfAbsent(ctx context.Context, s *model.Student) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "register_no"}},
			DoNothing: true,
		}).
		Create(s)
	if res.Error != nil {
		return false, database.Classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *studentRepo) GetByRegisterNo(ctx context.Context, registerNo string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Where("register_no = ?", registerNo).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetForUpdate(ctx context.Context, registerNo string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("register_no = ?", registerNo).
		First(&s).Error
	if err != nil {
		return nil, database.Classify(err)
	}
	return &s, nil
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Semester != "" {
		db = db.Where("semester = ?", filter.Semester)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("department ASC, semester ASC, register_no ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepo) ListRegisterNos(ctx context.Context, department, semester string) ([]string, error) {
	var regNos []string
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("department = ? AND semester = ?", department, semester).
		Order("register_no ASC").
		Pluck("register_no", &regNos).Error
	return regNos, err
}

func (r *studentRepo) ListGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Distinct("department", "semester").
		Order("department ASC, semester ASC").
		Scan(&groups).Error
	return groups, err
}

func (r *studentRepo) Update(ctx context.Context, s *model.Student) error {
	return database.Classify(r.db.WithContext(ctx).Save(s).Error)
}

func (r *studentRepo) Delete(ctx context.Context, registerNo string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("register_no = ?", registerNo).
		Delete(&model.Student{})
	return res.RowsAffected, res.Error
}

func (r *studentRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Student{})
	return res.RowsAffected, res.Error
}
