package gpu

import "errors"

var (
	ErrAllocationFailed = errors.New("gpu: buffer allocation failed")
	ErrWriteFailed      = errors.New("gpu: buffer write failed")
	ErrInvalidBuffer    = errors.New("gpu: invalid buffer")
)
