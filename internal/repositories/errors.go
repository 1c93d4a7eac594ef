package repositories

import "errors"

// Error taxonomy shared by every store and engine operation. Callers branch
// with errors.Is; the HTTP layer maps them onto 404/400/409.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflict")
)
