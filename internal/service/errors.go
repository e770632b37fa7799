package service

import "errors"

var (
	ErrNotFound                = errors.New("practice not found")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrAlreadyAssigned         = errors.New("practice already assigned")
	ErrNotAssignedReviewer     = errors.New("caller is not the assigned reviewer")
	ErrMissingReceipt          = errors.New("receipt document missing")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)
