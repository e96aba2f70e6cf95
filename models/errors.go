package models

import "errors"

// Named error kinds, surfaced verbatim in logs and to callers per the
// error handling contract: each is a distinct sentinel so callers can
// distinguish failure modes with errors.Is rather than string matching.
var (
	// ErrConcurrentEncodeNumIsZero is raised at Enqueue when the
	// configured concurrency cap disables encoding entirely.
	ErrConcurrentEncodeNumIsZero = errors.New("ConcurrentEncodeNumIsZero")

	// ErrGetExecutionTimeout is raised when Execution Gate acquisition
	// exceeds its 60 second timeout.
	ErrGetExecutionTimeout = errors.New("GetExecutionTimeout")

	// Resolution failures at promotion (§4.6 step 1-3).
	ErrVideoFileIDIsNotFound   = errors.New("VideoFileIdIsNotFound")
	ErrRecordedIsNotFound      = errors.New("RecordedIsNotFound")
	ErrVideoPathIsNotFound     = errors.New("VideoPathIsNotFound")
	ErrEncodeCommandIsNotFound = errors.New("EncodeCommandIsNotFound")
	ErrParentDirIsNotFound     = errors.New("ParentDirIsNotFound")

	// ErrGetFilePathError marks the unreachable exit of the
	// filename-collision retry loop (§9: capped, not the source's
	// unbounded while(1)).
	ErrGetFilePathError = errors.New("GetFilePathError")

	// ErrStopEncodeError aggregates sub-cancel failures from
	// CancelByRecordedID.
	ErrStopEncodeError = errors.New("StopEncodeError")
)
