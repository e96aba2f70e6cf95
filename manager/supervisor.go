package manager

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"encodemgr/config"
	"encodemgr/ffmpeg"
	"encodemgr/models"
	"encodemgr/process"
	"encodemgr/store"
)

// maxFilenameCollisionAttempts bounds the "(1)", "(2)", ... retry loop
// spec §9 flags as a latent unbounded bug in the source. Capping it
// turns an unreachable-in-practice infinite loop into a named,
// surfaceable error (ErrGetFilePathError) instead.
const maxFilenameCollisionAttempts = 1000

// promote runs the Process Supervisor's seven-step promotion algorithm
// (spec §4.6) for a single Wait Entry popped off the Wait Queue. On
// success it returns a RunningEntry whose deadline timer is armed, that
// is already in the Running Set, and whose exit is being supervised in a
// background goroutine started only after the entry was added, so an
// early exit always finds it.
func (m *Manager) promote(ctx context.Context, job models.WaitEntry) (*RunningEntry, error) {
	record, inputPath, err := m.resolveInputs(ctx, job.Request)
	if err != nil {
		return nil, err
	}

	profile, ok := m.cfg.FindProfile(job.Request.Mode)
	if !ok {
		return nil, fmt.Errorf("manager: promote %d: mode %q: %w", job.ID, job.Request.Mode, models.ErrEncodeCommandIsNotFound)
	}

	outputPath, err := m.resolveOutputPath(ctx, job.Request, inputPath, profile)
	if err != nil {
		return nil, err
	}

	if m.verifier != nil {
		if verr := m.verifier.Verify(ctx, inputPath, record.DurationSeconds); verr != nil {
			m.logger.Warn("promote: input verification mismatch", "jobId", job.ID, "error", verr)
		}
	}

	env := buildEnv(m.cfg.FFmpeg, job.Request, record, inputPath, outputPath)
	child, err := m.processManager.Create(process.Spec{
		Input:    inputPath,
		Output:   outputPath,
		Cmd:      profile.Cmd,
		Priority: models.PriorityEncode,
		Env:      env,
	})
	if err != nil {
		return nil, fmt.Errorf("manager: promote %d: spawn: %w", job.ID, err)
	}

	entry := &RunningEntry{Job: job, Process: child}

	deadline := time.Duration(record.DurationSeconds*profile.EffectiveRate()) * time.Second
	entry.DeadlineTimer = time.AfterFunc(deadline, func() {
		_ = m.Cancel(context.Background(), job.ID)
	})

	m.stateMu.Lock()
	m.running.Put(entry)
	m.stateMu.Unlock()

	go m.superviseExit(entry, outputPath, job.Request)

	return entry, nil
}

// resolveInputs is promotion step 1: look up the source video record
// and the recording metadata, resolve the absolute input path, and
// verify the input file exists.
func (m *Manager) resolveInputs(ctx context.Context, req models.JobRequest) (*store.Record, string, error) {
	if _, err := m.videoFileStore.FindID(ctx, req.SourceVideoFileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", fmt.Errorf("manager: resolve inputs: %w", models.ErrVideoFileIDIsNotFound)
		}
		return nil, "", fmt.Errorf("manager: resolve inputs: %w", err)
	}

	record, err := m.recordedStore.FindID(ctx, req.RecordedID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", fmt.Errorf("manager: resolve inputs: %w", models.ErrRecordedIsNotFound)
		}
		return nil, "", fmt.Errorf("manager: resolve inputs: %w", err)
	}

	inputPath, err := m.videoUtil.GetFullFilePath(ctx, req.SourceVideoFileID)
	if err != nil || inputPath == "" {
		return nil, "", fmt.Errorf("manager: resolve inputs: %w", models.ErrVideoPathIsNotFound)
	}

	if _, err := m.fs.Stat(inputPath); err != nil {
		return nil, "", err
	}

	return record, inputPath, nil
}

// resolveOutputPath is promotion step 3. A profile with no Suffix
// produces a null output path: the encoder writes somewhere the
// manager does not track.
func (m *Manager) resolveOutputPath(ctx context.Context, req models.JobRequest, inputPath string, profile config.EncodeProfile) (string, error) {
	if profile.Suffix == "" {
		return "", nil
	}

	parentDir, err := m.videoUtil.GetParentDirPath(ctx, req.ParentDir)
	if err != nil || parentDir == "" {
		return "", fmt.Errorf("manager: resolve output path: %w", models.ErrParentDirIsNotFound)
	}

	outputDir := parentDir
	if req.Directory != "" {
		outputDir = filepath.Join(parentDir, req.Directory)
	}
	if _, err := m.fs.Stat(outputDir); err != nil {
		if err := m.fs.MkdirAll(outputDir); err != nil {
			return "", fmt.Errorf("manager: resolve output path: mkdir: %w", err)
		}
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	candidate := filepath.Join(outputDir, base+profile.Suffix)

	for attempt := 1; attempt <= maxFilenameCollisionAttempts; attempt++ {
		if _, err := m.fs.Stat(candidate); err != nil {
			// Racy by design (spec §4.6 step 3): the spawn follows
			// immediately, with no atomic create-exclusive guard
			// between this stat and the child writing to candidate.
			return candidate, nil
		}
		candidate = filepath.Join(outputDir, fmt.Sprintf("%s(%d)%s", base, attempt, profile.Suffix))
	}

	return "", fmt.Errorf("manager: resolve output path: %w", models.ErrGetFilePathError)
}

// buildEnv constructs the exact environment variable contract of spec
// §4.6 step 4. Numeric fields are base-10 strings; absent optional
// values (numeric or string) become empty strings.
func buildEnv(ffmpegPath string, req models.JobRequest, record *store.Record, inputPath, outputPath string) map[string]string {
	dir := req.Directory
	return map[string]string{
		"RECORDEDID":           strconv.FormatInt(req.RecordedID, 10),
		"INPUT":                inputPath,
		"OUTPUT":               outputPath,
		"DIR":                  dir,
		"FFMPEG":               ffmpegPath,
		"NAME":                 record.Name,
		"DESCRIPTION":          record.Description,
		"EXTENDED":             record.Extended,
		"VIDEOTYPE":            record.VideoType,
		"VIDEORESOLUTION":      record.VideoResolution,
		"VIDEOSTREAMCONTENT":   record.VideoStreamContent,
		"VIDEOCOMPONENTTYPE":   record.VideoComponentType,
		"AUDIOSAMPLINGRATE":    record.AudioSamplingRate,
		"AUDIOCOMPONENTTYPE":   record.AudioComponentType,
		"CHANNELID":            record.ChannelID,
		"GENRE1":               record.Genre1,
		"GENRE2":               record.Genre2,
		"GENRE3":               record.Genre3,
		"SUBGENRE1":            record.SubGenre1,
		"SUBGENRE2":            record.SubGenre2,
		"SUBGENRE3":            record.SubGenre3,
	}
}

// superviseExit is promotion step 6: it drains stderr for debug logging
// and progress events, then reacts to process exit.
func (m *Manager) superviseExit(entry *RunningEntry, outputPath string, req models.JobRequest) {
	jobID := entry.Job.ID

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		parser := ffmpeg.NewProgressParser()
		progress := models.NewEncodingProgress(0)
		_ = parser.StreamProgress(entry.Process.Stderr(), progress, func(p *models.EncodingProgress) {
			m.logger.Debug("encoder progress", "jobId", jobID, "frame", p.Frame, "speed", p.Speed)
			m.emitter.EmitProgress(jobID, p)
		})
	}()

	result := <-entry.Process.Exit()
	<-progressDone

	m.stateMu.Lock()
	_, stillPresent := m.running.Get(jobID)
	cancelled := entry.Cancelled
	m.stateMu.Unlock()

	if !stillPresent {
		m.logger.Fatal("superviseExit: running entry missing at exit", "jobId", jobID)
		return
	}

	switch {
	case cancelled:
		m.logger.Info("job cancelled", "jobId", jobID)
		m.cleanupOutput(outputPath)

	case result.Code != 0:
		m.logger.Error("job failed", "jobId", jobID, "code", result.Code, "signal", result.Signal)
		m.cleanupOutput(outputPath)
		m.emitter.EmitErrorEncode()

	default:
		m.emitFinishEncode(jobID, outputPath, req)
	}

	m.finalize(jobID)
}

// cleanupOutput implements the cleanup branch of step 6: on failure or
// cancellation, wait briefly for the encoder to release its file
// handle, then delete the output if present. Deletion errors are
// logged, never propagated (spec §7).
func (m *Manager) cleanupOutput(outputPath string) {
	if outputPath == "" {
		return
	}
	time.Sleep(time.Second)
	if err := m.fs.Remove(outputPath); err != nil {
		m.logger.Warn("cleanup: remove output failed", "path", outputPath, "error", err)
	}
}

// emitFinishEncode is the success branch of step 6, including the
// duplicate-source interlock (P5): removeOriginal is coerced to false
// if another queued or running job still references the same source
// video file.
func (m *Manager) emitFinishEncode(jobID int64, outputPath string, req models.JobRequest) {
	removeOriginal := req.RemoveOriginal
	if removeOriginal {
		m.stateMu.Lock()
		shared := m.wait.ContainsSourceVideoFileID(req.SourceVideoFileID, jobID) ||
			m.running.ContainsSourceVideoFileID(req.SourceVideoFileID, jobID)
		m.stateMu.Unlock()
		if shared {
			removeOriginal = false
		}
	}

	var filePath, fullOutputPath string
	if outputPath != "" {
		fullOutputPath = outputPath
		basename := filepath.Base(outputPath)
		if req.Directory != "" {
			filePath = filepath.Join(req.Directory, basename)
		} else {
			filePath = basename
		}
	}

	m.emitter.EmitFinishEncode(models.FinishEncode{
		RecordedID:     req.RecordedID,
		VideoFileID:    req.SourceVideoFileID,
		ParentDirName:  req.ParentDir,
		FilePath:       filePath,
		FullOutputPath: fullOutputPath,
		Mode:           req.Mode,
		RemoveOriginal: removeOriginal,
	})
}
