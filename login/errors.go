package login

import (
	"errors"
	"strings"
)

var (
	// ErrValidation is matched by *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrAuthenticationFailed wraps every gateway rejection or failure.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrSubmitInProgress is returned when a submit arrives while another
	// is still waiting on the gateway.
	ErrSubmitInProgress = errors.New("login already in progress")
)

// User-facing messages. Authentication failures share one message so the
// form does not reveal whether the account, the password or the gateway
// was at fault.
const (
	MessageMissingFields = "Please enter your email and password."
	MessageFailed        = "Login failed. Please check your email and password."
)

// ValidationError lists the credential fields that were empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
