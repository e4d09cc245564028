package kb

import "errors"

var (
	// ErrRepositoryRequired is returned when an entry repository is not provided.
	ErrRepositoryRequired = errors.New("entry repository required")
)
