package leads

import "errors"

// ValidationError is a rejected user submission. The HTTP layer maps it to a
// 400 with the message as-is; it is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	// ErrNameEmailRequired is returned when name or email is missing.
	ErrNameEmailRequired = &ValidationError{Reason: "name and email required"}

	// ErrInvalidEmail is returned when the email fails the address pattern.
	ErrInvalidEmail = &ValidationError{Reason: "invalid email"}

	// ErrDeliveryFailed is returned when the notification sink reports
	// failure; the lead must not be treated as captured.
	ErrDeliveryFailed = errors.New("failed to send lead notification")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)

// IsValidation reports whether err is a rejected-submission error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
