package model

// Student students table
type Student struct {
	StudentID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	RegisterNo string `gorm:"type:varchar(32);not null;uniqueIndex"          json:"register_no"`
	Department string `gorm:"type:varchar(150);not null;index:idx_students_group" json:"department"`
	Semester   string `gorm:"type:varchar(50);not null;index:idx_students_group"  json:"semester"`
	BaseModel
}

// TableName table name
func (Student) TableName() string { return "students" }
