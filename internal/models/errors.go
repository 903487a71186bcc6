package models

import "errors"

var (
	ErrMissingName     = errors.New("name is required")
	ErrInvalidName     = errors.New("invalid name")
	ErrMissingFile     = errors.New("file not uploaded")
	ErrInvalidFileType = errors.New("only images are allowed")
	ErrFileTooLarge    = errors.New("file too large")
	ErrNotFound        = errors.New("image not found")
	ErrStorageFailure  = errors.New("storage failure")
)
