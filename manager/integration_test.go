package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encodemgr/config"
	"encodemgr/models"
	"encodemgr/process"
	"encodemgr/store"
)

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func seededMemoryStore(parentDirs map[string]string) *store.MemoryStore {
	return store.NewMemoryStore(parentDirs)
}

// TestHappyPath_EnqueueRunsAndEmitsFinish covers end-to-end scenario 1:
// a single job is admitted, promoted, and completes successfully.
func TestHappyPath_EnqueueRunsAndEmitsFinish(t *testing.T) {
	cfg := baseConfig()
	mem := seededMemoryStore(map[string]string{"out": "/out"})
	mem.PutVideo(&store.Video{ID: 1, Path: "/in/a.ts"})
	mem.PutRecord(&store.Record{ID: 1, DurationSeconds: 10, Name: "Show"})
	fs := newFakeFileSystem()
	fs.seedFile("/in/a.ts")
	fs.dirs["/out"] = true

	success := process.ExitResult{Code: 0}
	fpm := &fakeProcessManager{autoFinish: &success}
	emitter := &fakeEmitter{}
	m := newTestManager(cfg, fpm, fs, mem, emitter)
	m.Start()
	defer m.Close()

	id, err := m.Enqueue(context.Background(), models.JobRequest{
		RecordedID: 1, SourceVideoFileID: 1, Mode: "h264", ParentDir: "out", RemoveOriginal: true,
	})
	require.NoError(t, err)

	waitUntil(t, time.Second, func() bool { return emitter.finishedCount() == 1 })

	_, _, ok := m.GetJob(id)
	assert.False(t, ok, "finished job must be gone from both collections (I2/I3)")

	require.Len(t, emitter.finished, 1)
	assert.Equal(t, int64(1), emitter.finished[0].RecordedID)
	assert.True(t, emitter.finished[0].RemoveOriginal, "sole job referencing the source may remove it")
	assert.Equal(t, "/out/a.mp4", emitter.finished[0].FullOutputPath)
}

// TestConcurrencyCap_RunningSetNeverExceedsLimit covers I1: three jobs,
// concurrency 1, none ever overlap.
func TestConcurrencyCap_RunningSetNeverExceedsLimit(t *testing.T) {
	cfg := baseConfig() // ConcurrentEncodeNum: 1
	mem := seededMemoryStore(map[string]string{"out": "/out"})
	for i := int64(1); i <= 3; i++ {
		mem.PutVideo(&store.Video{ID: i, Path: "/in/a.ts"})
		mem.PutRecord(&store.Record{ID: i, DurationSeconds: 1})
	}
	fs := newFakeFileSystem()
	fs.seedFile("/in/a.ts")

	success := process.ExitResult{Code: 0}
	fpm := &fakeProcessManager{autoFinish: &success}
	emitter := &fakeEmitter{}
	m := newTestManager(cfg, fpm, fs, mem, emitter)
	m.Start()
	defer m.Close()

	for i := int64(1); i <= 3; i++ {
		_, err := m.Enqueue(context.Background(), models.JobRequest{RecordedID: i, SourceVideoFileID: i, Mode: "h264", ParentDir: "out"})
		require.NoError(t, err)
		assert.LessOrEqual(t, m.Stats().Running, 1)
	}

	waitUntil(t, 2*time.Second, func() bool { return emitter.finishedCount() == 3 })
}

// TestCancelRunningJob_NoFinishOrErrorEvent covers end-to-end scenario 3
// and invariant I5: a cancelled running job is killed and finalized
// without ever emitting FinishEncode or ErrorEncode.
func TestCancelRunningJob_NoFinishOrErrorEvent(t *testing.T) {
	cfg := baseConfig()
	mem := seededMemoryStore(map[string]string{"out": "/out"})
	mem.PutVideo(&store.Video{ID: 1, Path: "/in/a.ts"})
	mem.PutRecord(&store.Record{ID: 1, DurationSeconds: 600})
	fs := newFakeFileSystem()
	fs.seedFile("/in/a.ts")
	fs.dirs["/out"] = true

	fpm := &fakeProcessManager{} // no autoFinish: stays running until killed
	emitter := &fakeEmitter{}
	m := newTestManager(cfg, fpm, fs, mem, emitter)
	m.Start()
	defer m.Close()

	id, err := m.Enqueue(context.Background(), models.JobRequest{RecordedID: 1, SourceVideoFileID: 1, Mode: "h264", ParentDir: "out"})
	require.NoError(t, err)

	waitUntil(t, time.Second, func() bool {
		state, _, ok := m.GetJob(id)
		return ok && state == JobStateRunning
	})

	require.NoError(t, m.Cancel(context.Background(), id))

	// Cleanup waits about a second before removing output and finalizing.
	waitUntil(t, 2*time.Second, func() bool {
		_, _, ok := m.GetJob(id)
		return !ok
	})

	assert.Equal(t, 0, emitter.finishedCount())
	assert.Equal(t, 0, emitter.errorCount())
}

// TestDeadlineExpiry_CancelsStalledJob covers end-to-end scenario 4: a
// job whose deadline has already elapsed by the time it is promoted is
// cancelled by its own timer rather than running forever.
func TestDeadlineExpiry_CancelsStalledJob(t *testing.T) {
	cfg := baseConfig()
	cfg.Encode = []config.EncodeProfile{{Name: "h264", Cmd: "encode", Suffix: ".mp4", Rate: 4.0}}
	mem := seededMemoryStore(map[string]string{"out": "/out"})
	mem.PutVideo(&store.Video{ID: 1, Path: "/in/a.ts"})
	// A zero duration makes sourceDurationSeconds*rate a deadline of 0,
	// so the timer fires as soon as it is armed.
	mem.PutRecord(&store.Record{ID: 1, DurationSeconds: 0})
	fs := newFakeFileSystem()
	fs.seedFile("/in/a.ts")
	fs.dirs["/out"] = true

	fpm := &fakeProcessManager{} // never exits on its own
	emitter := &fakeEmitter{}
	m := newTestManager(cfg, fpm, fs, mem, emitter)
	m.Start()
	defer m.Close()

	id, err := m.Enqueue(context.Background(), models.JobRequest{RecordedID: 1, SourceVideoFileID: 1, Mode: "h264", ParentDir: "out"})
	require.NoError(t, err)

	waitUntil(t, 2*time.Second, func() bool {
		_, _, ok := m.GetJob(id)
		return !ok
	})

	assert.Equal(t, 0, emitter.finishedCount(), "deadline cancellation must not emit FinishEncode")
}

// TestDuplicateSourceInterlock_CoercesRemoveOriginal covers end-to-end
// scenario 5 and P5: while a second job referencing the same source
// video is still queued, the first job's completion must not carry
// removeOriginal through.
func TestDuplicateSourceInterlock_CoercesRemoveOriginal(t *testing.T) {
	cfg := baseConfig()
	cfg.ConcurrentEncodeNum = 1
	mem := seededMemoryStore(map[string]string{"out": "/out"})
	mem.PutVideo(&store.Video{ID: 1, Path: "/in/shared.ts"})
	mem.PutRecord(&store.Record{ID: 1, DurationSeconds: 10})
	mem.PutRecord(&store.Record{ID: 2, DurationSeconds: 10})
	fs := newFakeFileSystem()
	fs.seedFile("/in/shared.ts")
	fs.dirs["/out"] = true

	fpm := &fakeProcessManager{} // manual control over which child finishes when
	emitter := &fakeEmitter{}
	m := newTestManager(cfg, fpm, fs, mem, emitter)
	m.Start()
	defer m.Close()

	_, err := m.Enqueue(context.Background(), models.JobRequest{
		RecordedID: 1, SourceVideoFileID: 1, Mode: "h264", ParentDir: "out", RemoveOriginal: true,
	})
	require.NoError(t, err)
	_, err = m.Enqueue(context.Background(), models.JobRequest{
		RecordedID: 2, SourceVideoFileID: 1, Mode: "h264", ParentDir: "out", RemoveOriginal: true,
	})
	require.NoError(t, err)

	waitUntil(t, time.Second, func() bool { return fpm.count() == 1 })
	fpm.last().Finish(process.ExitResult{Code: 0})

	waitUntil(t, time.Second, func() bool { return emitter.finishedCount() == 1 })
	assert.False(t, emitter.finished[0].RemoveOriginal, "second job still references the same source")

	waitUntil(t, time.Second, func() bool { return fpm.count() == 2 })
	fpm.last().Finish(process.ExitResult{Code: 0})

	waitUntil(t, time.Second, func() bool { return emitter.finishedCount() == 2 })
	assert.True(t, emitter.finished[1].RemoveOriginal, "no job references the source any longer")
}

// TestFailedJob_EmitsErrorAndCleansUpOutput covers the failure branch of
// step 6: a non-zero exit publishes ErrorEncode and removes any output
// the encoder had started writing.
func TestFailedJob_EmitsErrorAndCleansUpOutput(t *testing.T) {
	cfg := baseConfig()
	mem := seededMemoryStore(map[string]string{"out": "/out"})
	mem.PutVideo(&store.Video{ID: 1, Path: "/in/a.ts"})
	mem.PutRecord(&store.Record{ID: 1, DurationSeconds: 10})
	fs := newFakeFileSystem()
	fs.seedFile("/in/a.ts")
	fs.dirs["/out"] = true

	fpm := &fakeProcessManager{}
	emitter := &fakeEmitter{}
	m := newTestManager(cfg, fpm, fs, mem, emitter)
	m.Start()
	defer m.Close()

	_, err := m.Enqueue(context.Background(), models.JobRequest{RecordedID: 1, SourceVideoFileID: 1, Mode: "h264", ParentDir: "out"})
	require.NoError(t, err)

	waitUntil(t, time.Second, func() bool { return fpm.count() == 1 })
	fs.markOutputWritten("/out/a.mp4")
	fpm.last().Finish(process.ExitResult{Code: 1})

	// ErrorEncode follows the cleanup branch's one-second wait.
	waitUntil(t, 2*time.Second, func() bool { return emitter.errorCount() == 1 })
	waitUntil(t, 2*time.Second, func() bool { return fs.wasRemoved("/out/a.mp4") })
	assert.Equal(t, 0, emitter.finishedCount())
}
