package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Suryaprasath-41/Feedback-System/pkg/database"
)

// Repository aggregate entry point for every repository
type Repository struct {
	Student    StudentRepository
	Catalog    CatalogRepository
	Mapping    MappingRepository
	Rating     RatingRepository
	Submission SubmissionRepository
	Tx         Transactor
}

// Transactor runs fn against a repository aggregate bound to one transaction.
// fn returning an error rolls everything back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Repository) error) error
}

// Transaction shorthand for r.Tx.Transaction
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.Tx.Transaction(ctx, fn)
}

// NewRepository creates the repository aggregate.
// lockTimeout bounds lock waits inside transactions; zero leaves the server default.
func NewRepository(db *gorm.DB, lockTimeout time.Duration) *Repository {
	return newRepository(db, &gormTransactor{db: db, lockTimeout: lockTimeout})
}

func newRepository(db *gorm.DB, tx Transactor) *Repository {
	return &Repository{
		Student:    NewStudentRepo(db),
		Catalog:    NewCatalogRepo(db),
		Mapping:    NewMappingRepo(db),
		Rating:     NewRatingRepo(db),
		Submission: NewSubmissionRepo(db),
		Tx:         tx,
	}
}

// gormTransactor SERIALIZABLE transactions with a bounded lock wait
type gormTransactor struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", t.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		txRepo := newRepository(tx, nil)
		txRepo.Tx = joinedTransactor{repo: txRepo}
		return fn(txRepo)
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	return database.Classify(err)
}

// joinedTransactor nested calls run inside the outer transaction
type joinedTransactor struct {
	repo *Repository
}

func (j joinedTransactor) Transaction(_ context.Context, fn func(tx *Repository) error) error {
	return fn(j.repo)
}

// Group a (department, semester) pair
type Group struct {
	Department string `json:"department"`
	Semester   string `json:"semester"`
}
