package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/pkg/database"
)

// RatingFilter empty fields match everything
type RatingFilter struct {
	Staff      string
	Subject    string
	Department string
	Semester   string
}

// RatingSums raw sums over a set of ratings; callers divide by Count
type RatingSums struct {
	Count        int64
	AverageSum   float64
	QuestionSums [model.QuestionCount]float64
}

// PairSums sums for one (staff, subject) pair
type PairSums struct {
	model.Assignment
	RatingSums
}

// RatingRepository rating data access
type RatingRepository interface {
	CreateBatch(ctx context.Context, ratings []model.Rating) error
	Sum(ctx context.Context, filter RatingFilter) (RatingSums, error)
	// SumByPair sums per (staff, subject) for one group; pairs without ratings are absent
	SumByPair(ctx context.Context, department, semester string) ([]PairSums, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ratingRepo GORM implementation of RatingRepository
type ratingRepo struct {
	db *gorm.DB
}

// NewRatingRepo creates a RatingRepository
func NewRatingRepo(db *gorm.DB) RatingRepository {
	return &ratingRepo{db: db}
}

const sumColumns = `COUNT(*) AS count,
	COALESCE(SUM(average), 0) AS average_sum,
	COALESCE(SUM(q1), 0) AS q1_sum, COALESCE(SUM(q2), 0) AS q2_sum,
	COALESCE(SUM(q3), 0) AS q3_sum, COALESCE(SUM(q4), 0) AS q4_sum,
	COALESCE(SUM(q5), 0) AS q5_sum, COALESCE(SUM(q6), 0) AS q6_sum,
	COALESCE(SUM(q7), 0) AS q7_sum, COALESCE(SUM(q8), 0) AS q8_sum,
	COALESCE(SUM(q9), 0) AS q9_sum, COALESCE(SUM(q10), 0) AS q10_sum`

// sumRow scan target for sumColumns
type sumRow struct {
	Staff      string
	Subject    string
	Count      int64
	AverageSum float64
	Q1Sum      float64 `gorm:"column:q1_sum"`
	Q2Sum      float64 `gorm:"column:q2_sum"`
	Q3Sum      float64 `gorm:"column:q3_sum"`
	Q4Sum      float64 `gorm:"column:q4_sum"`
	Q5Sum      float64 `gorm:"column:q5_sum"`
	Q6Sum      float64 `gorm:"column:q6_sum"`
	Q7Sum      float64 `gorm:"column:q7_sum"`
	Q8Sum      float64 `gorm:"column:q8_sum"`
	Q9Sum      float64 `gorm:"column:q9_sum"`
	Q10Sum     float64 `gorm:"column:q10_sum"`
}

func (s sumRow) sums() RatingSums {
	return RatingSums{
		Count:      s.Count,
		AverageSum: s.AverageSum,
		QuestionSums: [model.QuestionCount]float64{
			s.Q1Sum, s.Q2Sum, s.Q3Sum, s.Q4Sum, s.Q5Sum,
			s.Q6Sum, s.Q7Sum, s.Q8Sum, s.Q9Sum, s.Q10Sum,
		},
	}
}

func (r *ratingRepo) CreateBatch(ctx context.Context, ratings []model.Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	return database.Classify(r.db.WithContext(ctx).Create(&ratings).Error)
}

func (r *ratingRepo) Sum(ctx context.Context, filter RatingFilter) (RatingSums, error) {
	db := r.db.WithContext(ctx).Model(&model.Rating{}).Select(sumColumns)
	if filter.Staff != "" {
		db = db.Where("staff = ?", filter.Staff)
	}
	if filter.Subject != "" {
		db = db.Where("subject = ?", filter.Subject)
	}
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Semester != "" {
		db = db.Where("semester = ?", filter.Semester)
	}

	var row sumRow
	if err := db.Scan(&row).Error; err != nil {
		return RatingSums{}, err
	}
	return row.sums(), nil
}

func (r *ratingRepo) SumByPair(ctx context.Context, department, semester string) ([]PairSums, error) {
	var rows []sumRow
	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Select("staff, subject, "+sumColumns).
		Where("department = ? AND semester = ?", department, semester).
		Group("staff, subject").
		Order("staff ASC, subject ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]PairSums, 0, len(rows))
	for _, row := range rows {
		out = append(out, PairSums{
			Assignment: model.Assignment{Staff: row.Staff, Subject: row.Subject},
			RatingSums: row.sums(),
		})
	}
	return out, nil
}

func (r *ratingRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Rating{})
	return res.RowsAffected, res.Error
}
