// Package store defines the recording-metadata and video-file lookup
// collaborators the Encode Manager consumes, plus the filesystem and
// path-resolution ports promotion needs. It is read-only with respect
// to queue state: the manager's Wait Queue and Running Set stay
// in-memory and are never persisted here.
package store

import (
	"context"
	"errors"
	"os"
)

// ErrNotFound is returned by RecordedStore.FindID and VideoFileStore.FindID
// when no record matches the given identifier.
var ErrNotFound = errors.New("store: not found")

// Record is the recording metadata the Process Supervisor folds into the
// spawned encoder's environment (§4.6 step 4) and into FinishEncode.
type Record struct {
	ID                 int64
	Name               string
	Description        string
	Extended           string
	VideoType          string
	VideoResolution    string
	VideoStreamContent string
	VideoComponentType string
	AudioSamplingRate  string
	AudioComponentType string
	ChannelID          string
	Genre1             string
	Genre2             string
	Genre3             string
	SubGenre1          string
	SubGenre2          string
	SubGenre3          string
	DurationSeconds    float64
}

// Video is a source video file record.
type Video struct {
	ID   int64
	Path string
}

// RecordedStore looks up recording metadata by identifier.
type RecordedStore interface {
	FindID(ctx context.Context, recordedID int64) (*Record, error)
}

// VideoFileStore looks up source video file records by identifier.
type VideoFileStore interface {
	FindID(ctx context.Context, videoFileID int64) (*Video, error)
}

// VideoUtil resolves the filesystem locations promotion needs: the
// absolute path of a source video file, and the base directory assigned
// to a named parent directory (configuration's ParentDirs).
type VideoUtil interface {
	GetFullFilePath(ctx context.Context, videoFileID int64) (string, error)
	GetParentDirPath(ctx context.Context, parentDir string) (string, error)
}

// FileSystem is the stat/mkdir/unlink collaborator. A thin interface
// over os so promotion and cleanup can be exercised without touching a
// real disk.
type FileSystem interface {
	Stat(path string) (os.FileInfo, error)
	MkdirAll(path string) error
	Remove(path string) error
}

// OSFileSystem is the default FileSystem, backed by the os package.
type OSFileSystem struct{}

func (OSFileSystem) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }
func (OSFileSystem) MkdirAll(path string) error            { return os.MkdirAll(path, 0o755) }
func (OSFileSystem) Remove(path string) error              { return os.Remove(path) }
