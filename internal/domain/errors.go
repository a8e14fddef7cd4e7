package domain

import "errors"

// Domain errors
var (
	// Validation errors
	ErrCategoryMissing       = errors.New("event category is required")
	ErrInvalidDateRange      = errors.New("start date must be before end date")
	ErrInvalidDepositAmount  = errors.New("deposit amount must be positive when deposit is set")
	ErrNoPriceDetails        = errors.New("event requires at least one price detail")
	ErrInvalidNIP            = errors.New("invalid nip number")
	ErrInvalidPhone          = errors.New("invalid phone number")
	ErrInvalidEventStatus    = errors.New("invalid event status")
	ErrInvalidBookingStatus  = errors.New("invalid booking status")

	// Policy violations
	ErrCancellationWindowExpired = errors.New("cancellation window has expired")
	ErrAlreadyCanceled           = errors.New("event is already canceled")
	ErrEventClosed               = errors.New("event is closed")
	ErrInvalidStatusTransition   = errors.New("invalid booking status transition")

	// Not found errors
	ErrEventNotFound    = errors.New("event not found")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrFileNotFound     = errors.New("file not found")

	// Conflict errors
	ErrStatusConflict = errors.New("event status changed concurrently")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrFileNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrCategoryMissing) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidDepositAmount) ||
		errors.Is(err, ErrNoPriceDetails) ||
		errors.Is(err, ErrInvalidNIP) ||
		errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrInvalidEventStatus) ||
		errors.Is(err, ErrInvalidBookingStatus)
}

// IsPolicyViolation checks if the error is a rejected policy decision
func IsPolicyViolation(err error) bool {
	return errors.Is(err, ErrCancellationWindowExpired) ||
		errors.Is(err, ErrAlreadyCanceled) ||
		errors.Is(err, ErrEventClosed) ||
		errors.Is(err, ErrInvalidStatusTransition)
}

// IsConflictError checks if the error is a concurrency conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrStatusConflict)
}
