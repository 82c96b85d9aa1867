package invite

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes invitation failures.
type ErrorCode string

const (
	// CodeInvalidArgument indicates missing identity or key fields.
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// CodeDuplicate indicates an equivalent pending record already exists.
	CodeDuplicate ErrorCode = "DUPLICATE"

	// CodePolicyDenied indicates an extension point vetoed the operation.
	CodePolicyDenied ErrorCode = "POLICY_DENIED"

	// CodeNotFound indicates a lookup by id matched no row.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeStorage indicates the backing store failed.
	CodeStorage ErrorCode = "STORAGE"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its Code.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDuplicate       = errors.New("duplicate invitation")
	ErrPolicyDenied    = errors.New("denied by policy")
	ErrNotFound        = errors.New("invitation not found")
	ErrStorage         = errors.New("storage failure")
)

// Error is the failure type returned by every layer of the core.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed (e.g. "add_invitation").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's code.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeInvalidArgument:
		return target == ErrInvalidArgument
	case CodeDuplicate:
		return target == ErrDuplicate
	case CodePolicyDenied:
		return target == ErrPolicyDenied
	case CodeNotFound:
		return target == ErrNotFound
	case CodeStorage:
		return target == ErrStorage
	}
	return false
}

// WithOp returns a copy of the error attributed to op, keeping the code.
func (e *Error) WithOp(op string) *Error {
	c := *e
	c.Op = op
	return &c
}

// InvalidArgument creates an INVALID_ARGUMENT error.
func InvalidArgument(op, message string) *Error {
	return &Error{Code: CodeInvalidArgument, Op: op, Message: message}
}

// Duplicate creates a DUPLICATE error for the given key.
func Duplicate(op string, key Key) *Error {
	return &Error{Code: CodeDuplicate, Op: op, Message: "pending record exists for " + key.String()}
}

// PolicyDenied creates a POLICY_DENIED error naming the extension point.
func PolicyDenied(op, point string) *Error {
	return &Error{Code: CodePolicyDenied, Op: op, Message: point + " denied"}
}

// NotFound creates a NOT_FOUND error for id.
func NotFound(op string, id int64) *Error {
	return &Error{Code: CodeNotFound, Op: op, Message: fmt.Sprintf("no record with id %d", id)}
}

// Storage wraps a backend failure.
func Storage(op string, err error) *Error {
	return &Error{Code: CodeStorage, Op: op, Err: err}
}

// CodeOf returns the code of err, or "" when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidArgument reports whether err is an INVALID_ARGUMENT error.
func IsInvalidArgument(err error) bool { return CodeOf(err) == CodeInvalidArgument }

// IsDuplicate reports whether err is a DUPLICATE error.
func IsDuplicate(err error) bool { return CodeOf(err) == CodeDuplicate }

// IsPolicyDenied reports whether err is a POLICY_DENIED error.
func IsPolicyDenied(err error) bool { return CodeOf(err) == CodePolicyDenied }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }
