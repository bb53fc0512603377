package indexing

import "github.com/pkg/errors"

var (
	ErrInvalidRange   = errors.New("range begin is after end")
	ErrHeightMismatch = errors.New("height is not the index tail")
)
