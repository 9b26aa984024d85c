package dto

// ── mapping module ──

// MappingRowRequest one row of a reconcile batch
type MappingRowRequest struct {
	Department string `json:"department"`
	Semester   string `json:"semester"`
	Staff      string `json:"staff"`
	Subject    string `json:"subject"`
}

// ReconcileRequest JSON bulk import.
// Department and Semester form the scope required by replace mode.
type ReconcileRequest struct {
	Mode       string              `json:"mode"       binding:"required,oneof=append replace"`
	Department string              `json:"department" binding:"omitempty,max=150"`
	Semester   string              `json:"semester"   binding:"omitempty,max=50"`
	Rows       []MappingRowRequest `json:"rows"       binding:"required"`
}

// UploadMappingRequest form fields sent alongside an xlsx mapping file
type UploadMappingRequest struct {
	Mode       string `form:"mode"       binding:"required,oneof=append replace"`
	Department string `form:"department" binding:"omitempty,max=150"`
	Semester   string `form:"semester"   binding:"omitempty,max=50"`
}

// ReconcileResponse outcome of one reconcile call
type ReconcileResponse struct {
	Mode              string     `json:"mode"`
	Inserted          int        `json:"inserted"`
	SkippedDuplicates int        `json:"skipped_duplicates"`
	Deleted           int64      `json:"deleted"`
	Errors            []RowError `json:"errors"`
}

// CreateMappingRequest single mapping
type CreateMappingRequest struct {
	Department string `json:"department" binding:"required,max=150"`
	Semester   string `json:"semester"   binding:"required,max=50"`
	Staff      string `json:"staff"      binding:"required,max=150"`
	Subject    string `json:"subject"    binding:"required,max=150"`
}

// MappingListRequest optional filters
type MappingListRequest struct {
	Department string `form:"department"`
	Semester   string `form:"semester"`
	Staff      string `form:"staff"`
	Subject    string `form:"subject"`
}

// DeleteMappingScopeRequest deletes every mapping in a department, semester or both
type DeleteMappingScopeRequest struct {
	Department string `form:"department"`
	Semester   string `form:"semester"`
}

// MappingResponse one mapping row
type MappingResponse struct {
	ID         string `json:"id"`
	Department string `json:"department"`
	Semester   string `json:"semester"`
	Staff      string `json:"staff"`
	Subject    string `json:"subject"`
	CreatedAt  string `json:"created_at"`
}

// AssignmentResponse a (staff, subject) pair to rate
type AssignmentResponse struct {
	Reference string `json:"reference"`
	Staff     string `json:"staff"`
	Subject   string `json:"subject"`
}
