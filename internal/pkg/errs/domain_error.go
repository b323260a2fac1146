package errs

import (
	"errors"
	"fmt"
)

// Kind groups errors by how callers are expected to react to them.
type Kind int

const (
	KindInfrastructure Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "infrastructure"
	}
}

// DomainError is a business rule violation with a stable machine readable code.
//
// Two DomainErrors are considered equal by errors.Is when their codes match,
// so a package level sentinel still matches a copy carrying a detailed message
// produced by WithMessage.
type DomainError struct {
	Code    string
	Message string
	Kind    Kind
}

func NewDomainError(code, message string, kind Kind) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: kind}
}

func NewValidationError(code, message string) *DomainError {
	return NewDomainError(code, message, KindValidation)
}

func NewConflictError(code, message string) *DomainError {
	return NewDomainError(code, message, KindConflict)
}

func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(code, message, KindNotFound)
}

func NewUnavailableError(code, message string) *DomainError {
	return NewDomainError(code, message, KindUnavailable)
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error with the same code and kind.
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...), Kind: e.Kind}
}

// KindOf classifies err. Errors that carry no domain meaning are infrastructure errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindInfrastructure
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsOutOfRange):
		return KindValidation
	default:
		return KindInfrastructure
	}
}

// CodeOf returns the stable code of err, or a generic code derived from its kind.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	switch KindOf(err) {
	case KindNotFound:
		return "object.not.found"
	case KindValidation:
		return "value.is.invalid"
	default:
		return "internal.error"
	}
}
