package spec

import "errors"

// ErrorCode categorizes spec errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	InvalidDocument ErrorCode = "InvalidDocument"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// ErrInvalidDocument matches any SpecError with Code InvalidDocument.
var ErrInvalidDocument = errors.New("invalid OpenAPI/Swagger document")

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/info/title"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

func (e *SpecError) Is(target error) bool {
	return target == ErrInvalidDocument && e.Code == InvalidDocument
}

func invalidDocument(pointer, msg string) *SpecError {
	return &SpecError{Code: InvalidDocument, Message: msg, JSONPointer: pointer}
}
