package model

import "time"

// CatalogKind one of the four name catalogs
type CatalogKind string

const (
	KindDepartment CatalogKind = "department"
	KindSemester   CatalogKind = "semester"
	KindStaff      CatalogKind = "staff"
	KindSubject    CatalogKind = "subject"
)

// CatalogKinds every kind, in display order
var CatalogKinds = []CatalogKind{KindDepartment, KindSemester, KindStaff, KindSubject}

// Valid reports whether k names a known catalog
func (k CatalogKind) Valid() bool {
	switch k {
	case KindDepartment, KindSemester, KindStaff, KindSubject:
		return true
	}
	return false
}

// Table backing table of the catalog
func (k CatalogKind) Table() string {
	switch k {
	case KindDepartment:
		return "departments"
	case KindSemester:
		return "semesters"
	case KindStaff:
		return "staff"
	case KindSubject:
		return "subjects"
	}
	return ""
}

// CatalogEntry a named entity: department, semester, staff member or subject.
// Names are matched case-sensitively and never auto-deleted.
type CatalogEntry struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null;uniqueIndex"         json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}
