package models

// JobRequest is the input to Enqueue: a request to re-encode one source
// video file into one output artifact under one named encoder profile.
type JobRequest struct {
	RecordedID        int64
	SourceVideoFileID int64
	Mode              string
	ParentDir         string
	Directory         string // optional; empty means "no subdirectory"
	RemoveOriginal    bool
}

// WaitEntry is a JobRequest augmented with its assigned Job Identifier.
// Wait Entries live in the Wait Queue's FIFO ordered sequence.
type WaitEntry struct {
	ID      int64
	Request JobRequest
}
