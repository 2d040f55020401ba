package errors

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrNotEligible            = errors.New("not eligible")
	ErrAlreadyClaimed         = errors.New("already claimed")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUnavailable            = errors.New("unavailable")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrValidation             = errors.New("validation failed")
)
