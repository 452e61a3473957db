// Package errors defines the coded errors blockreg reports. The codes are
// stable and double as diagnostic kinds, so tests and JSON output can match
// on them.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies one kind of failure or diagnostic.
type ErrorCode string

const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Block type rejections. A definition carrying one of these is not stored.
	ErrMalformedDefinition     ErrorCode = "MALFORMED_DEFINITION"
	ErrMissingRequiredCallable ErrorCode = "MISSING_REQUIRED_CALLABLE"
	ErrInvalidOptionalCallable ErrorCode = "INVALID_OPTIONAL_CALLABLE"
	ErrMissingTitle            ErrorCode = "MISSING_TITLE"
	ErrInvalidTitleType        ErrorCode = "INVALID_TITLE_TYPE"
	ErrInvalidIcon             ErrorCode = "INVALID_ICON"
	ErrInvalidName             ErrorCode = "INVALID_NAME"

	// Block type corrections and notices. These never block registration.
	ErrInvalidCategory        ErrorCode = "INVALID_CATEGORY"
	ErrLegacyDescriptionShape ErrorCode = "LEGACY_DESCRIPTION_SHAPE"
	ErrAlreadyRegistered      ErrorCode = "ALREADY_REGISTERED"
	ErrNotRegistered          ErrorCode = "NOT_REGISTERED"

	// Hook errors
	ErrInvalidHookName  ErrorCode = "INVALID_HOOK_NAME"
	ErrInvalidNamespace ErrorCode = "INVALID_NAMESPACE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Definition file errors
	ErrDefinitionLoad  ErrorCode = "DEFINITION_LOAD"
	ErrDefinitionParse ErrorCode = "DEFINITION_PARSE"

	// Server errors
	ErrServer ErrorCode = "SERVER"
)

// Class groups codes by what they mean for the block type they concern.
type Class string

const (
	// ClassRejection codes keep a definition out of the registry.
	ClassRejection Class = "rejection"
	// ClassNotice codes report a correction or a misuse. The block is kept.
	ClassNotice Class = "notice"
	// ClassFailure codes are faults of the surrounding tool.
	ClassFailure Class = "failure"
)

// Class returns the group c belongs to.
func (c ErrorCode) Class() Class {
	switch c {
	case ErrMalformedDefinition, ErrMissingRequiredCallable, ErrInvalidOptionalCallable,
		ErrMissingTitle, ErrInvalidTitleType, ErrInvalidIcon, ErrInvalidName:
		return ClassRejection
	case ErrInvalidCategory, ErrLegacyDescriptionShape, ErrAlreadyRegistered, ErrNotRegistered:
		return ClassNotice
	}
	return ClassFailure
}

// Detail keys shared by the packages that build errors.
const (
	DetailBlock       = "block"
	DetailPath        = "path"
	DetailType        = "type"
	DetailDeprecation = "deprecation"
	DetailAddr        = "addr"
)

// Error is a coded error with optional details and cause.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

func build(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: map[string]any{}, Wrapped: cause}
}

// New returns an Error with code and message.
func New(code ErrorCode, message string) *Error {
	return build(nil, code, message)
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return build(nil, code, fmt.Sprintf(format, args...))
}

// Wrap returns an Error caused by err, or nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return build(err, code, message)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return build(err, code, fmt.Sprintf(format, args...))
}

// Reject returns the rejection of the named block. An empty name leaves the
// block detail unset.
func Reject(code ErrorCode, block, message string) *Error {
	e := New(code, message)
	if block != "" {
		e.Details[DetailBlock] = block
	}
	return e
}

// WithDetail sets one detail and returns e.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// WithDetails sets every detail in details and returns e.
func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// Block returns the block e is about, or "" when it names none.
func (e *Error) Block() string {
	name, _ := e.Details[DetailBlock].(string)
	return name
}

func asError(err error) (*Error, bool) {
	var coded *Error
	ok := errors.As(err, &coded)
	return coded, ok
}

// IsErrorCode reports whether err is an *Error with code.
func IsErrorCode(err error, code ErrorCode) bool {
	coded, ok := asError(err)
	return ok && coded.Code == code
}

// GetErrorCode returns the code of err, or ErrUnknown when it has none.
func GetErrorCode(err error) ErrorCode {
	if coded, ok := asError(err); ok {
		return coded.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details of err, or nil when it has none.
func GetErrorDetails(err error) map[string]any {
	if coded, ok := asError(err); ok {
		return coded.Details
	}
	return nil
}

// IsRejection reports whether err kept a block type out of the registry.
func IsRejection(err error) bool {
	return GetErrorCode(err).Class() == ClassRejection
}

// BlockName returns the block err is about, or "" when it names none.
func BlockName(err error) string {
	if coded, ok := asError(err); ok {
		return coded.Block()
	}
	return ""
}
