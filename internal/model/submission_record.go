package model

import "time"

// SubmissionRecord marks a student as having submitted; the primary key
// guarantees at most one per register number.
type SubmissionRecord struct {
	RegisterNo  string    `gorm:"type:varchar(32);primaryKey" json:"register_no"`
	SubmittedAt time.Time `gorm:"not null"                    json:"submitted_at"`
}

// TableName table name
func (SubmissionRecord) TableName() string { return "submission_records" }
