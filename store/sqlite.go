package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore is a gorm-backed RecordedStore and VideoFileStore over a
// SQLite database of recording metadata. It persists recording
// metadata only; the manager's Wait Queue and Running Set remain
// in-memory regardless of which store backs lookups.
type SQLiteStore struct {
	db         *gorm.DB
	parentDirs map[string]string
}

// NewSQLiteStore opens dsn (a file path, or ":memory:") and applies
// pending goose migrations before returning.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: underlying sql.DB: %w", err)
	}

	if err := migrate(sqlDB); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db, parentDirs: map[string]string{}}, nil
}

// WithParentDirs registers the named parent directories (configuration's
// ParentDirs) that GetParentDirPath resolves against. Recording metadata
// and output locations live in different places: the former in this
// database, the latter in configuration, so this is a plain setter
// rather than a migration-backed table.
func (s *SQLiteStore) WithParentDirs(parentDirs map[string]string) *SQLiteStore {
	dirs := make(map[string]string, len(parentDirs))
	for k, v := range parentDirs {
		dirs[k] = v
	}
	s.parentDirs = dirs
	return s
}

// GetFullFilePath resolves a source video file's absolute path, per the
// VideoUtil port.
func (s *SQLiteStore) GetFullFilePath(ctx context.Context, videoFileID int64) (string, error) {
	v, err := s.AsVideoFileStore().FindID(ctx, videoFileID)
	if err != nil {
		return "", err
	}
	return v.Path, nil
}

// GetParentDirPath resolves a named parent directory to its configured
// base path, per the VideoUtil port.
func (s *SQLiteStore) GetParentDirPath(_ context.Context, parentDir string) (string, error) {
	path, ok := s.parentDirs[parentDir]
	if !ok {
		return "", ErrNotFound
	}
	return path, nil
}

// AsVideoUtil exposes s through the VideoUtil port.
func (s *SQLiteStore) AsVideoUtil() VideoUtil {
	return s
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PutRecord upserts a recording metadata row, for seeding tests and
// fixtures against a real SQLite file.
func (s *SQLiteStore) PutRecord(ctx context.Context, r *Record) error {
	row := recordedRow{
		ID: r.ID, Name: r.Name, Description: r.Description, Extended: r.Extended,
		VideoType: r.VideoType, VideoResolution: r.VideoResolution,
		VideoStreamContent: r.VideoStreamContent, VideoComponentType: r.VideoComponentType,
		AudioSamplingRate: r.AudioSamplingRate, AudioComponentType: r.AudioComponentType,
		ChannelID: r.ChannelID, Genre1: r.Genre1, Genre2: r.Genre2, Genre3: r.Genre3,
		SubGenre1: r.SubGenre1, SubGenre2: r.SubGenre2, SubGenre3: r.SubGenre3,
		DurationSeconds: r.DurationSeconds,
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

// PutVideo upserts a source video file row.
func (s *SQLiteStore) PutVideo(ctx context.Context, v *Video) error {
	row := videoFileRow{ID: v.ID, Path: v.Path}
	return s.db.WithContext(ctx).Save(&row).Error
}

func (s *SQLiteStore) FindID(ctx context.Context, recordedID int64) (*Record, error) {
	var row recordedRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", recordedID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toRecord(), nil
}

// AsVideoFileStore exposes s through the VideoFileStore interface: its
// FindID looks up video_file rather than recorded rows.
func (s *SQLiteStore) AsVideoFileStore() VideoFileStore {
	return sqliteVideoFileStore{s}
}

type sqliteVideoFileStore struct{ s *SQLiteStore }

func (v sqliteVideoFileStore) FindID(ctx context.Context, videoFileID int64) (*Video, error) {
	var row videoFileRow
	err := v.s.db.WithContext(ctx).First(&row, "id = ?", videoFileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toVideo(), nil
}
