package domain

import "errors"

var (
	ErrValidation  = errors.New("invalid request")
	ErrNotFound    = errors.New("not found")
	ErrUpstream    = errors.New("upstream service failure")
	ErrUpload      = errors.New("asset upload failure")
	ErrPersistence = errors.New("persistence failure")
)
