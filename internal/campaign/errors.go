package campaign

import "fmt"

// NotReadyError indicates an operation that requires a stage's completion predicate
// to hold before it can proceed. Recoverable by completing the stage first.
type NotReadyError struct {
	Stage  StageID
	Reason string
}

func (e *NotReadyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("stage %s is not ready: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("stage %s is not ready", e.Stage)
}

// InvalidArtifactError indicates a store write whose value does not match the stage's
// expected shape. This is a contract violation by the caller, not a user error.
type InvalidArtifactError struct {
	Stage   StageID
	Message string
	Cause   error
}

func (e *InvalidArtifactError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid artifact for stage %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid artifact for stage %s: %s", e.Stage, e.Message)
}

func (e *InvalidArtifactError) Unwrap() error {
	return e.Cause
}

// UnknownSegmentError indicates a pitch upsert referencing a segment id that does not
// exist in the current segment plan. Recoverable by re-reading state and retrying.
type UnknownSegmentError struct {
	SegmentID string
}

func (e *UnknownSegmentError) Error() string {
	return fmt.Sprintf("unknown segment: %s", e.SegmentID)
}

// IndexOutOfRangeError indicates a segment patch with a stale index.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("segment index %d out of range (have %d segments)", e.Index, e.Length)
}

// UnknownStageError indicates an operation naming a stage id outside the catalog.
type UnknownStageError struct {
	Stage StageID
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage: %s", e.Stage)
}

// ExecutionFailedError indicates a stage executor call that failed. The prior artifact
// for the stage is untouched; the caller may retry the same RunStage call.
type ExecutionFailedError struct {
	Stage   StageID
	Message string
	Cause   error
}

func (e *ExecutionFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stage %s execution failed: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("stage %s execution failed: %s", e.Stage, e.Message)
}

func (e *ExecutionFailedError) Unwrap() error {
	return e.Cause
}
