package dto

// ── feedback module ──

// RatingRequest scores for one (staff, subject) pair, in question order
type RatingRequest struct {
	Staff   string    `json:"staff"`
	Subject string    `json:"subject"`
	Scores  []float64 `json:"scores"`
}

// SubmitRequest a student's full feedback.
// Department and Semester are optional; when present they must match the student's record.
type SubmitRequest struct {
	Department string          `json:"department" binding:"omitempty,max=150"`
	Semester   string          `json:"semester"   binding:"omitempty,max=50"`
	Ratings    []RatingRequest `json:"ratings"`
}

// SubmitResponse submission outcome
type SubmitResponse struct {
	Outcome     string     `json:"outcome"`
	SubmittedAt string     `json:"submitted_at,omitempty"`
	Issues      []RowError `json:"issues,omitempty"`
	// Missing and Unexpected explain a partial mismatch
	Missing    []AssignmentResponse `json:"missing,omitempty"`
	Unexpected []AssignmentResponse `json:"unexpected,omitempty"`
}

// QuestionResponse one feedback question
type QuestionResponse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}
