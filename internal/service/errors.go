package service

import "github.com/Suryaprasath-41/Feedback-System/internal/dto"

// ValidationError input rejected before touching the store
type ValidationError struct {
	Errors []dto.RowError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid input"
	}
	return "invalid input: " + e.Errors[0].Reason
}
