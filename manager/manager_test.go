package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encodemgr/config"
	"encodemgr/models"
	"encodemgr/store"
)

func newTestManager(cfg *config.Config, fpm *fakeProcessManager, fs *fakeFileSystem, mem *store.MemoryStore, emitter *fakeEmitter) *Manager {
	return New(cfg, Deps{
		RecordedStore:  mem,
		VideoFileStore: mem.AsVideoFileStore(),
		VideoUtil:      mem,
		FileSystem:     fs,
		ProcessManager: fpm,
		Emitter:        emitter,
		Logger:         testLogger{},
	})
}

func baseConfig() *config.Config {
	return &config.Config{
		ConcurrentEncodeNum: 1,
		FFmpeg:              "ffmpeg",
		Encode: []config.EncodeProfile{
			{Name: "h264", Cmd: "encode", Suffix: ".mp4", Rate: 4.0},
		},
		ParentDirs: map[string]string{"out": "/out"},
	}
}

func TestEnqueue_ZeroConcurrencyRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.ConcurrentEncodeNum = 0
	m := newTestManager(cfg, &fakeProcessManager{}, newFakeFileSystem(), store.NewMemoryStore(nil), &fakeEmitter{})

	_, err := m.Enqueue(context.Background(), models.JobRequest{})
	require.ErrorIs(t, err, models.ErrConcurrentEncodeNumIsZero)
}

func TestEnqueue_AssignsIncreasingIDsAndEmitsAddEncode(t *testing.T) {
	cfg := baseConfig()
	emitter := &fakeEmitter{}
	fpm := &fakeProcessManager{} // no autoFinish: jobs stay running, queue fills
	m := newTestManager(cfg, fpm, newFakeFileSystem(), store.NewMemoryStore(nil), emitter)
	m.Start()
	defer m.Close()

	id1, err := m.Enqueue(context.Background(), models.JobRequest{RecordedID: 1, SourceVideoFileID: 1, Mode: "h264"})
	require.NoError(t, err)
	id2, err := m.Enqueue(context.Background(), models.JobRequest{RecordedID: 2, SourceVideoFileID: 2, Mode: "h264"})
	require.NoError(t, err)

	assert.Equal(t, id1+1, id2)
	assert.ElementsMatch(t, []int64{id1, id2}, emitter.added)
}

func TestCancel_UnknownIDIsNoop(t *testing.T) {
	cfg := baseConfig()
	m := newTestManager(cfg, &fakeProcessManager{}, newFakeFileSystem(), store.NewMemoryStore(nil), &fakeEmitter{})
	assert.NoError(t, m.Cancel(context.Background(), 999))
}

func TestCancel_RemovesQueuedJob(t *testing.T) {
	cfg := baseConfig()
	cfg.ConcurrentEncodeNum = 0 // keep everything in the Wait Queue; no promotion attempted
	m := newTestManager(cfg, &fakeProcessManager{}, newFakeFileSystem(), store.NewMemoryStore(nil), &fakeEmitter{})

	// Bypass the ConcurrentEncodeNum==0 guard directly to seed the queue
	// without a working scheduler.
	m.stateMu.Lock()
	id := m.ids.Next()
	m.wait.PushBack(models.WaitEntry{ID: id, Request: models.JobRequest{RecordedID: 1}})
	m.stateMu.Unlock()

	state, _, ok := m.GetJob(id)
	require.True(t, ok)
	assert.Equal(t, JobStateWaiting, state)

	require.NoError(t, m.Cancel(context.Background(), id))

	_, _, ok = m.GetJob(id)
	assert.False(t, ok)
}

func TestGetRecordedIndex_GroupsByRecordedID(t *testing.T) {
	cfg := baseConfig()
	cfg.ConcurrentEncodeNum = 0
	m := newTestManager(cfg, &fakeProcessManager{}, newFakeFileSystem(), store.NewMemoryStore(nil), &fakeEmitter{})

	m.stateMu.Lock()
	id1 := m.ids.Next()
	m.wait.PushBack(models.WaitEntry{ID: id1, Request: models.JobRequest{RecordedID: 42, Mode: "h264"}})
	id2 := m.ids.Next()
	m.wait.PushBack(models.WaitEntry{ID: id2, Request: models.JobRequest{RecordedID: 42, Mode: "audio-only"}})
	m.stateMu.Unlock()

	index := m.GetRecordedIndex()
	assert.Len(t, index[42], 2)
}

func TestStats_ReportsQueueDepths(t *testing.T) {
	cfg := baseConfig()
	cfg.ConcurrentEncodeNum = 0
	m := newTestManager(cfg, &fakeProcessManager{}, newFakeFileSystem(), store.NewMemoryStore(nil), &fakeEmitter{})

	m.stateMu.Lock()
	m.wait.PushBack(models.WaitEntry{ID: m.ids.Next(), Request: models.JobRequest{}})
	m.stateMu.Unlock()

	stats := m.Stats()
	assert.Equal(t, 1, stats.Waiting)
	assert.Equal(t, 0, stats.Running)
}
