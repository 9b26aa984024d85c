package dto

// ── student module ──

// ResolveRequest student lookup by register number
type ResolveRequest struct {
	RegisterNo string `json:"register_no" binding:"required,max=32"`
}

// ResolveResponse the student, the pairs they must rate and a token to submit with
type ResolveResponse struct {
	Student     StudentResponse      `json:"student"`
	Assignments []AssignmentResponse `json:"assignments"`
	Submitted   bool                 `json:"submitted"`
	Token       string               `json:"token,omitempty"`
	ExpiresIn   int                  `json:"expires_in,omitempty"`
}

// StudentResponse one student
type StudentResponse struct {
	ID         string `json:"id"`
	RegisterNo string `json:"register_no"`
	Department string `json:"department"`
	Semester   string `json:"semester"`
}

// StudentListRequest list filters
type StudentListRequest struct {
	PaginationRequest
	Department string `form:"department"`
	Semester   string `form:"semester"`
}

// CreateStudentRequest single student
type CreateStudentRequest struct {
	RegisterNo string `json:"register_no" binding:"required,max=32"`
	Department string `json:"department"  binding:"required,max=150"`
	Semester   string `json:"semester"    binding:"required,max=50"`
}

// UpdateStudentRequest moves a student to another group
type UpdateStudentRequest struct {
	Department *string `json:"department" binding:"omitempty,min=1,max=150"`
	Semester   *string `json:"semester"   binding:"omitempty,min=1,max=50"`
}

// AddStudentRangeRequest creates students for every register number from Start to End inclusive
type AddStudentRangeRequest struct {
	Start      int64  `json:"start"      binding:"required,min=1"`
	End        int64  `json:"end"        binding:"required,min=1,gtefield=Start"`
	Department string `json:"department" binding:"required,max=150"`
	Semester   string `json:"semester"   binding:"required,max=50"`
}

// ImportStudentResponse bulk student import outcome
type ImportStudentResponse struct {
	Total                int        `json:"total"`
	Added                int        `json:"added"`
	Duplicates           int        `json:"duplicates"`
	DuplicateRegisterNos []string   `json:"duplicate_register_nos,omitempty"` // first few only
	Errors               []RowError `json:"errors"`
}

// GroupResponse a (department, semester) group
type GroupResponse struct {
	Department string `json:"department"`
	Semester   string `json:"semester"`
}
