package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	if e.ID != 0 {
		return fmt.Sprintf("%s not found: %d", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// RemoteUnavailableError is returned when a remote service could not be
// reached after the retry budget was spent.
type RemoteUnavailableError struct {
	Service  string
	Attempts int
	Err      error
}

func (e RemoteUnavailableError) Error() string {
	if e.Service == "" {
		return "remote unavailable"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s unavailable", e.Service)
	}
	return fmt.Sprintf("%s unavailable after %d attempts: %v", e.Service, e.Attempts, e.Err)
}

func (e RemoteUnavailableError) Unwrap() error {
	return e.Err
}

func (e RemoteUnavailableError) Is(target error) bool {
	_, ok := target.(RemoteUnavailableError)
	if ok {
		return true
	}
	_, ok = target.(*RemoteUnavailableError)
	return ok
}

var ErrRemoteUnavailable = RemoteUnavailableError{}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid argument"
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

var ErrValidation = ValidationError{}

// DuplicateEmailError is returned when an email already belongs to
// another user.
type DuplicateEmailError struct {
	Email string
}

func (e DuplicateEmailError) Error() string {
	if e.Email == "" {
		return "email already exists"
	}
	return fmt.Sprintf("email already exists: %s", e.Email)
}

func (e DuplicateEmailError) Is(target error) bool {
	_, ok := target.(DuplicateEmailError)
	if ok {
		return true
	}
	_, ok = target.(*DuplicateEmailError)
	return ok
}

var ErrDuplicateEmail = DuplicateEmailError{}
