package donation

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes record and storage failures.
type ErrorCode string

const (
	// ErrCodeInvalidDate indicates a birth date that is not YYYY-MM-DD.
	ErrCodeInvalidDate ErrorCode = "INVALID_DATE_FORMAT"

	// ErrCodeDuplicateCode indicates an insert whose code is already stored.
	ErrCodeDuplicateCode ErrorCode = "DUPLICATE_CODE"

	// ErrCodeStorageRead indicates the store could not be opened or read.
	ErrCodeStorageRead ErrorCode = "STORAGE_READ"

	// ErrCodeStorageWrite indicates the store could not be (re)created or written.
	ErrCodeStorageWrite ErrorCode = "STORAGE_WRITE"

	// ErrCodeRecordParse indicates a stored row with the wrong shape.
	ErrCodeRecordParse ErrorCode = "RECORD_PARSE"

	// ErrCodeInvalidField indicates a free-text field the text format cannot hold.
	ErrCodeInvalidField ErrorCode = "INVALID_FIELD"
)

// Error is the single error type surfaced by the record layer.
//
// Line is the 1-based line of the store file for parse failures and zero
// otherwise. Path names the storage location when one is involved.
type Error struct {
	Code    ErrorCode
	Message string
	Line    int
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Path != "" && e.Line > 0:
		msg = fmt.Sprintf("%s (%s:%d)", msg, e.Path, e.Line)
	case e.Line > 0:
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	case e.Path != "":
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode carried by err, or "" when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsInvalidDate reports whether err is an invalid birth date failure.
func IsInvalidDate(err error) bool { return CodeOf(err) == ErrCodeInvalidDate }

// IsDuplicateCode reports whether err is a code collision on insert.
func IsDuplicateCode(err error) bool { return CodeOf(err) == ErrCodeDuplicateCode }

// IsStorageRead reports whether err is a storage read failure.
func IsStorageRead(err error) bool { return CodeOf(err) == ErrCodeStorageRead }

// IsStorageWrite reports whether err is a storage write failure.
func IsStorageWrite(err error) bool { return CodeOf(err) == ErrCodeStorageWrite }

// IsRecordParse reports whether err is a malformed stored row.
func IsRecordParse(err error) bool { return CodeOf(err) == ErrCodeRecordParse }

// IsInvalidField reports whether err is a rejected free-text field.
func IsInvalidField(err error) bool { return CodeOf(err) == ErrCodeInvalidField }

// NewInvalidDateError reports a birth date that does not match DateLayout.
func NewInvalidDateError(text string) *Error {
	return &Error{
		Code:    ErrCodeInvalidDate,
		Message: fmt.Sprintf("invalid birth date %q, use the format YYYY-MM-DD", text),
	}
}

// NewDuplicateCodeError reports an insert that collides with a stored code.
func NewDuplicateCodeError(code int) *Error {
	return &Error{
		Code:    ErrCodeDuplicateCode,
		Message: fmt.Sprintf("code %d already exists", code),
	}
}

// NewStorageReadError wraps a failure to open or read the store at path.
func NewStorageReadError(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeStorageRead,
		Message: "cannot read store",
		Path:    path,
		Err:     err,
	}
}

// NewStorageWriteError wraps a failure to write the store at path.
func NewStorageWriteError(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeStorageWrite,
		Message: "cannot write store",
		Path:    path,
		Err:     err,
	}
}

// NewRecordParseError reports a malformed row.
func NewRecordParseError(message string, err error) *Error {
	return &Error{
		Code:    ErrCodeRecordParse,
		Message: message,
		Err:     err,
	}
}

// NewInvalidFieldError reports a free-text field that cannot be stored.
func NewInvalidFieldError(field, value string) *Error {
	return &Error{
		Code:    ErrCodeInvalidField,
		Message: fmt.Sprintf("%s %q must not contain commas or line breaks", field, value),
	}
}

// AtLine returns a copy of err located at line of path. Errors that are not
// an *Error are wrapped as RECORD_PARSE failures.
func AtLine(err error, path string, line int) *Error {
	var de *Error
	if !errors.As(err, &de) {
		de = NewRecordParseError("malformed row", err)
	}
	located := *de
	located.Path = path
	located.Line = line
	return &located
}
