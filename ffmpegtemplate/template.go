// Package ffmpegtemplate builds encoder-profile command templates.
//
// Unlike a one-shot transcoding tool that builds a command against a
// concrete input/output pair, an Encode Manager's EncodeProfile.Cmd is a
// template shared across every job that selects it: it references its
// input and output through the environment variables the Process
// Supervisor exports ($INPUT, $OUTPUT, $FFMPEG, ...) rather than literal
// paths. These builders produce that template string; they never execute
// anything themselves.
package ffmpegtemplate

// Priority levels mirrored from the profile-building side of the pipeline.
// ENCODE is the OS scheduling niceness priority passed to the spawned
// process (spec §4.6 step 4), distinct from the Execution Gate's ticket
// priorities.
const (
	PriorityLow    = 0
	PriorityNormal = 5
	PriorityHigh   = 10
	ENCODE         = 10
)

// Builder produces an ffmpeg command template for one encoder profile.
type Builder interface {
	// Template returns the shell command string, e.g. "$FFMPEG -i $INPUT ... $OUTPUT".
	Template() string
	// Priority returns the OS niceness priority set on the builder.
	// EncodeProfile does not carry it, so spawning does not consult it.
	Priority() int
}
