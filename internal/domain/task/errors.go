package task

import "errors"

var (
	ErrNotFound       = errors.New("task not found")
	ErrMentorNotFound = errors.New("mentor not found")
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid task"
}
