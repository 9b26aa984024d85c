package model

import "time"

// Mapping a staff member teaching a subject to one (department, semester) group.
// The four name columns form the natural key.
type Mapping struct {
	MappingID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"             json:"mapping_id"`
	Department string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_mappings_natural_key" json:"department"`
	Semester   string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_mappings_natural_key"  json:"semester"`
	Staff      string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_mappings_natural_key" json:"staff"`
	Subject    string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_mappings_natural_key" json:"subject"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                          json:"created_at"`
	CreatedBy  *string   `gorm:"type:varchar(50)"                                            json:"created_by,omitempty"`
}

// TableName table name
func (Mapping) TableName() string { return "mappings" }

// Assignment a (staff, subject) pair a student is expected to rate
type Assignment struct {
	Staff   string `json:"staff"`
	Subject string `json:"subject"`
}
