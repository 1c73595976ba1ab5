package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
	ErrValidation         = errors.New("validation_failed")
	ErrNotFound           = errors.New("not_found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrBadTransition      = errors.New("invalid_status_transition")
	ErrSlotTaken          = errors.New("slot_taken")
	ErrAlreadyApplied     = errors.New("already_applied")
	ErrAlreadyReviewed    = errors.New("already_reviewed")
	ErrNotReviewable      = errors.New("not_reviewable")
	ErrLawyerNotVerified  = errors.New("lawyer_not_verified")
)

// validationError wraps a human-readable reason so handlers can surface it
// while callers still match on ErrValidation.
type validationError struct {
	reason string
}

func (e *validationError) Error() string { return e.reason }
func (e *validationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(reason string) error {
	return &validationError{reason: reason}
}
