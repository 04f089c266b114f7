package apperror

import "errors"

// Kind classifies an error for the API boundary.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindAuthorization     Kind = "authorization"
	KindNotFound          Kind = "not_found"
	KindDuplicate         Kind = "duplicate"
	KindState             Kind = "state"
	KindCapacity          Kind = "capacity"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindUnavailable       Kind = "unavailable"
)

// Error is a classified domain error.
// Sentinels are declared per domain and compared with errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error

	base *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel a detailed error was derived from
func (e *Error) Is(target error) bool {
	return e.base != nil && target == e.base
}

// New creates a classified error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithDetails returns a validation error carrying per-field messages.
// errors.Is still matches the receiver.
func (e *Error) WithDetails(details map[string]string) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: details, base: e}
}

func Validation(message string) *Error        { return New(KindValidation, message) }
func Authorization(message string) *Error     { return New(KindAuthorization, message) }
func NotFound(message string) *Error          { return New(KindNotFound, message) }
func Duplicate(message string) *Error         { return New(KindDuplicate, message) }
func State(message string) *Error             { return New(KindState, message) }
func Capacity(message string) *Error          { return New(KindCapacity, message) }
func InsufficientFunds(message string) *Error { return New(KindInsufficientFunds, message) }
func Unavailable(message string) *Error       { return New(KindUnavailable, message) }

// As returns the outermost classified error in the chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err or an empty kind for unclassified errors
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err is classified as kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
