package dto

// ── report module ──
//
// Averages are pointers: nil (JSON null) means no ratings exist, never a zero score.

// StaffReportRequest filters for one staff member
type StaffReportRequest struct {
	Staff      string `form:"staff"      binding:"required"`
	Subject    string `form:"subject"`
	Department string `form:"department"`
	Semester   string `form:"semester"`
}

// StaffReportResponse aggregate of one staff member's ratings
type StaffReportResponse struct {
	Staff               string     `json:"staff"`
	Subject             string     `json:"subject,omitempty"`
	Department          string     `json:"department,omitempty"`
	Semester            string     `json:"semester,omitempty"`
	Count               int64      `json:"count"`
	Average             *float64   `json:"average"`
	PerQuestionAverages []*float64 `json:"per_question_averages"`
}

// GroupRequest a required (department, semester) pair
type GroupRequest struct {
	Department string `form:"department" binding:"required"`
	Semester   string `form:"semester"   binding:"required"`
}

// DepartmentReportEntry one expected assignment of the group
type DepartmentReportEntry struct {
	Reference           string     `json:"reference"`
	Staff               string     `json:"staff"`
	Subject             string     `json:"subject"`
	Count               int64      `json:"count"`
	Average             *float64   `json:"average"`
	TotalScore          *float64   `json:"total_score"` // average scaled to 100
	PerQuestionAverages []*float64 `json:"per_question_averages"`
}

// DepartmentReportResponse per-assignment aggregates for a group
type DepartmentReportResponse struct {
	Department string                  `json:"department"`
	Semester   string                  `json:"semester"`
	Questions  []string                `json:"questions"`
	Entries    []DepartmentReportEntry `json:"entries"`
}

// NonSubmittersResponse submission status of one group.
// Excluded groups have no expected assignments and report nobody as pending.
type NonSubmittersResponse struct {
	Department   string   `json:"department"`
	Semester     string   `json:"semester"`
	Excluded     bool     `json:"excluded"`
	Total        int      `json:"total"`
	Submitted    int      `json:"submitted"`
	NotSubmitted int      `json:"not_submitted"`
	RegisterNos  []string `json:"register_nos"`
}

// NonSubmissionSummaryRequest optional filters
type NonSubmissionSummaryRequest struct {
	Department string `form:"department"`
	Semester   string `form:"semester"`
}

// NonSubmissionSummaryResponse every matching group plus overall totals
type NonSubmissionSummaryResponse struct {
	Groups       []NonSubmittersResponse `json:"groups"`
	Total        int                     `json:"total"`
	Submitted    int                     `json:"submitted"`
	NotSubmitted int                     `json:"not_submitted"`
}
