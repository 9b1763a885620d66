package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrConflict              = errors.New("state conflict")
	ErrInternalInconsistency = errors.New("internal inconsistency")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
