// Package apperror holds the client-facing error kinds returned by services.
// Anything that is not one of these is reported to the caller as a 500.
package apperror

// ErrInvalidInput matches any InvalidInputError via errors.Is.
var ErrInvalidInput = &InvalidInputError{}

type InvalidInputError struct {
	Field   string
	Message string
}

func NewInvalidInput(field, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Message: message}
}

func (e *InvalidInputError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Invalid input"
}

func (e *InvalidInputError) Is(target error) bool {
	_, ok := target.(*InvalidInputError)
	return ok
}

// ErrNotFound matches any NotFoundError via errors.Is.
var ErrNotFound = &NotFoundError{}

type NotFoundError struct {
	Resource string
	Message  string
}

func NewNotFound(resource, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: message}
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Resource != "" {
		return e.Resource + " not found"
	}
	return "resource not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ErrUnauthorized covers both a missing identity and a caller that does not
// own the target record.
var ErrUnauthorized = &UnauthorizedError{}

type UnauthorizedError struct {
	Message string
}

func NewUnauthorized(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Unauthorized"
}

func (e *UnauthorizedError) Is(target error) bool {
	_, ok := target.(*UnauthorizedError)
	return ok
}
