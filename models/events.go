package models

// FinishEncode is the payload of a successful job completion event.
type FinishEncode struct {
	RecordedID     int64
	VideoFileID    int64
	ParentDirName  string
	FilePath       string // directory/basename, or just basename when Directory is empty
	FullOutputPath string
	Mode           string
	RemoveOriginal bool
}

// EventEmitter is the consumed collaborator that publishes job lifecycle
// events to subscribers. Implementations must not block the caller for
// long; the manager calls these synchronously from Enqueue, the
// scheduler, and exit handlers, after releasing any gate ticket.
type EventEmitter interface {
	EmitAddEncode(jobID int64)
	EmitFinishEncode(record FinishEncode)
	EmitErrorEncode()

	// EmitProgress is a supplemented hook, not part of the original
	// event contract: it streams ffmpeg progress samples for a running
	// job so consumers are not limited to inferring liveness from the
	// silence of a cancelled job (§9's open question on I5).
	EmitProgress(jobID int64, progress *EncodingProgress)
}
