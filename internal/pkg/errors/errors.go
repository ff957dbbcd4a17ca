package errors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalid           = errors.New("invalid")
	ErrConflict          = errors.New("conflict")
	ErrTooMany           = errors.New("too many requests")
	ErrInternal          = errors.New("internal")
	ErrInvalidFile       = errors.New("invalid file")
	ErrDocumentNotReady  = errors.New("document not ready")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrAIUnavailable     = errors.New("ai provider unavailable")
	ErrQueueFull         = errors.New("task queue full")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDimensionMismatch(err error) bool {
	return errors.Is(err, ErrDimensionMismatch)
}
