package mentor

import "errors"

var (
	ErrNotFound    = errors.New("mentor not found")
	ErrEmailTaken  = errors.New("mentor email already in use")
	ErrUnknownTeam = errors.New("unknown team")
)

// ValidationError lists field problems found in an Input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid mentor"
}
