package research

import "fmt"

// BatchError indicates the research batch could not run at all. Per-prospect failures
// are not batch errors; they are recorded on the individual records.
type BatchError struct {
	Message string
	Cause   error
}

func (e *BatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("research batch failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("research batch failed: %s", e.Message)
}

func (e *BatchError) Unwrap() error {
	return e.Cause
}
