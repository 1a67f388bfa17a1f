package parsing

import "fmt"

// ExtractionError indicates the raw document could not be turned into text.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("text extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("text extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ParseError indicates extracted text could not be structured into the
// target type.
type ParseError struct {
	Target string
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Target, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
