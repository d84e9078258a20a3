// Package apperr carries the structured failure results every mutating
// operation can return. Services detect these conditions before partial
// writes happen (or rely on transaction rollback); handlers translate the
// codes into HTTP statuses.
package apperr

import "errors"

const (
	CodeValidation        = "VALIDATION"
	CodeDuplicateName     = "DUPLICATE_NAME"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeUnitConflict      = "UNIT_CONFLICT"
	CodeLinkedRecord      = "LINKED_RECORD"
	CodeNoChange          = "NO_CHANGE"
	CodeTrashedParent     = "TRASHED_PARENT"
	CodeTxFailure         = "TX_FAILURE"
)

type Error struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`

	// Set only for UNIT_CONFLICT: the unit of the active item the caller
	// may merge into by retrying with forceMatch.
	ExistingUnit string `json:"existing_unit,omitempty"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Validation(message string, fields map[string][]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// Field is a one-field validation failure.
func Field(field, message string) *Error {
	return Validation(message, map[string][]string{field: {message}})
}

func DuplicateName(message string, field string) *Error {
	e := New(CodeDuplicateName, message)
	if field != "" {
		e.Fields = map[string][]string{field: {message}}
	}
	return e
}

func InsufficientStock(message string) *Error { return New(CodeInsufficientStock, message) }
func NotFound(message string) *Error          { return New(CodeNotFound, message) }
func Unauthorized(message string) *Error      { return New(CodeUnauthorized, message) }
func LinkedRecord(message string) *Error      { return New(CodeLinkedRecord, message) }
func NoChange(message string) *Error          { return New(CodeNoChange, message) }
func TrashedParent(message string) *Error     { return New(CodeTrashedParent, message) }

func UnitConflict(message, existingUnit string) *Error {
	e := New(CodeUnitConflict, message)
	e.ExistingUnit = existingUnit
	return e
}

// Wrap converts storage-layer errors into a generic transaction failure,
// passing through errors that already carry a code.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(CodeTxFailure, message)
}

// CodeOf extracts the taxonomy code, defaulting to TX_FAILURE.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeTxFailure
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return CodeOf(err) == code
}
