package resumes

import "errors"

var (
	ErrNotFound     = errors.New("resume not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("resume was modified by another session")
)
