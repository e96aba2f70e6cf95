// Package manager implements the Encode Manager: the priority-ordered
// Execution Gate, the Wait Queue → Running Set job pipeline, the
// Scheduler Loop, and the Process Supervisor described in spec.md,
// wired together behind the four public operations Enqueue, Cancel,
// CancelByRecordedID, and GetRecordedIndex.
package manager

import (
	"context"
	"fmt"
	"sync"

	"encodemgr/config"
	"encodemgr/gate"
	"encodemgr/logging"
	"encodemgr/models"
	"encodemgr/process"
	"encodemgr/store"
)

// Manager is the long-lived Encode Manager component. Construct with
// New, then Start before calling Enqueue.
type Manager struct {
	cfg *config.Config

	gate    *gate.Gate
	ids     *idGenerator
	wait    waitQueue
	running *runningSet
	// stateMu guards wait/running/ids: everything the Execution Gate is
	// meant to serialize. Holding a gate ticket is the discipline the
	// spec describes; stateMu is the mechanical lock that makes that
	// discipline safe under Go's memory model, since goroutines (unlike
	// the source's single event loop) do not get mutual exclusion for
	// free just because they took a ticket.
	stateMu sync.Mutex

	recordedStore  store.RecordedStore
	videoFileStore store.VideoFileStore
	videoUtil      store.VideoUtil
	fs             store.FileSystem
	processManager process.Manager
	emitter        models.EventEmitter
	logger         logging.Logger
	verifier       InputVerifier // optional, may be nil

	trigger  chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// Deps bundles the collaborators consumed per spec §6.
type Deps struct {
	RecordedStore  store.RecordedStore
	VideoFileStore store.VideoFileStore
	VideoUtil      store.VideoUtil
	FileSystem     store.FileSystem
	ProcessManager process.Manager
	Emitter        models.EventEmitter
	Logger         logging.Logger

	// Verifier is a supplemented, optional collaborator (SPEC_FULL.md
	// §4): a best-effort ffprobe check run before spawn. Nil disables
	// it.
	Verifier InputVerifier

	// IDWrap overrides DefaultIDWrap; zero means "use the default".
	// Tests use small values to exercise P8 without seeding billions
	// of ids.
	IDWrap int64
}

// InputVerifier best-effort checks a resolved input path against the
// recording's expected duration before spawn. A mismatch is logged, not
// fatal (SPEC_FULL.md §4).
type InputVerifier interface {
	Verify(ctx context.Context, inputPath string, expectedDurationSeconds float64) error
}

// New constructs a Manager. It does not start the scheduler goroutine;
// call Start before Enqueue.
func New(cfg *config.Config, deps Deps) *Manager {
	if deps.FileSystem == nil {
		deps.FileSystem = store.OSFileSystem{}
	}
	return &Manager{
		cfg:            cfg,
		gate:           gate.New(),
		ids:            newIDGenerator(deps.IDWrap),
		running:        newRunningSet(),
		recordedStore:  deps.RecordedStore,
		videoFileStore: deps.VideoFileStore,
		videoUtil:      deps.VideoUtil,
		fs:             deps.FileSystem,
		processManager: deps.ProcessManager,
		emitter:        deps.Emitter,
		logger:         deps.Logger,
		verifier:       deps.Verifier,
		trigger:        make(chan struct{}, 1),
		stopped:        make(chan struct{}),
	}
}

// Start launches the dedicated worker that drains scheduler triggers.
// Deferring checkQueue onto this worker, rather than calling it
// re-entrantly, is what spec §9's Design Notes ask for in place of the
// source's next-tick hook: a bounded queue and a single drainer prevent
// unbounded recursion when a burst of completions arrives together.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.schedulerWorker()
}

// Close stops the scheduler worker and waits for it to exit. It does
// not cancel running jobs.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stopped) })
	m.wg.Wait()
}

func (m *Manager) schedulerWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.trigger:
			m.checkQueue()
		case <-m.stopped:
			return
		}
	}
}

// triggerScheduler schedules a checkQueue pass on the next worker tick.
// Non-blocking: a pending trigger already covers any additional
// callers, since checkQueue always re-evaluates full current state.
func (m *Manager) triggerScheduler() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// Enqueue admits a new job request, per spec §4.7.
func (m *Manager) Enqueue(ctx context.Context, req models.JobRequest) (int64, error) {
	if m.cfg.ConcurrentEncodeNum <= 0 {
		return 0, fmt.Errorf("manager: enqueue: %w", models.ErrConcurrentEncodeNumIsZero)
	}

	ticket, err := m.gate.Acquire(ctx, models.PriorityAddEncode)
	if err != nil {
		return 0, fmt.Errorf("manager: enqueue: %w", err)
	}

	m.stateMu.Lock()
	id := m.ids.Next()
	entry := models.WaitEntry{ID: id, Request: req}
	m.wait.PushBack(entry)
	m.stateMu.Unlock()

	m.gate.Release(ticket)

	m.triggerScheduler()
	m.emitter.EmitAddEncode(id)
	return id, nil
}

// Cancel terminates a running job or removes a queued one, per spec
// §4.7. Unknown ids are a no-op (P6).
func (m *Manager) Cancel(ctx context.Context, jobID int64) error {
	ticket, err := m.gate.Acquire(ctx, models.PriorityCancel)
	if err != nil {
		return fmt.Errorf("manager: cancel: %w", err)
	}
	defer m.gate.Release(ticket)

	m.stateMu.Lock()
	entry, isRunning := m.running.Get(jobID)
	if isRunning {
		entry.Cancelled = true
	}
	m.stateMu.Unlock()

	if isRunning {
		if err := entry.Process.Kill(); err != nil {
			m.logger.Warn("cancel: kill failed", "jobId", jobID, "error", err)
		}
		return nil
	}

	m.stateMu.Lock()
	removed := m.wait.Remove(jobID)
	m.stateMu.Unlock()

	if removed {
		m.triggerScheduler()
	}
	return nil
}

// CancelByRecordedID cancels every job (queued or running) whose
// RecordedID matches, per spec §4.7.
func (m *Manager) CancelByRecordedID(ctx context.Context, recordedID int64) error {
	ids := m.jobIDsForRecordedID(recordedID)

	var failed bool
	for _, id := range ids {
		if err := m.Cancel(ctx, id); err != nil {
			m.logger.Error("cancelByRecordedId: sub-cancel failed", "jobId", id, "error", err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("manager: cancelByRecordedId: %w", models.ErrStopEncodeError)
	}
	return nil
}

func (m *Manager) jobIDsForRecordedID(recordedID int64) []int64 {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	var ids []int64
	for _, e := range m.running.Snapshot() {
		if e.Job.Request.RecordedID == recordedID {
			ids = append(ids, e.Job.ID)
		}
	}
	for _, e := range m.wait.Snapshot() {
		if e.Request.RecordedID == recordedID {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// RecordedIndexEntry is one element of GetRecordedIndex's result.
type RecordedIndexEntry struct {
	JobID int64
	Mode  string
}

// GetRecordedIndex snapshots Running Set then Wait Queue, in that order,
// per spec §4.7. Callers must treat the result as immutable.
func (m *Manager) GetRecordedIndex() map[int64][]RecordedIndexEntry {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	index := make(map[int64][]RecordedIndexEntry)
	for _, e := range m.running.Snapshot() {
		rid := e.Job.Request.RecordedID
		index[rid] = append(index[rid], RecordedIndexEntry{JobID: e.Job.ID, Mode: e.Job.Request.Mode})
	}
	for _, e := range m.wait.Snapshot() {
		rid := e.Request.RecordedID
		index[rid] = append(index[rid], RecordedIndexEntry{JobID: e.ID, Mode: e.Request.Mode})
	}
	return index
}

// JobState reports which collection GetJob found an id in.
type JobState int

const (
	JobStateNotFound JobState = iota
	JobStateWaiting
	JobStateRunning
)

// GetJob is a supplemented point lookup (SPEC_FULL.md §4) alongside
// GetRecordedIndex.
func (m *Manager) GetJob(jobID int64) (JobState, models.JobRequest, bool) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	if e, ok := m.running.Get(jobID); ok {
		return JobStateRunning, e.Job.Request, true
	}
	if e, ok := m.wait.Get(jobID); ok {
		return JobStateWaiting, e.Request, true
	}
	return JobStateNotFound, models.JobRequest{}, false
}

// Stats is a supplemented queue/gate metrics snapshot (SPEC_FULL.md §4),
// consumed by cmd/encodemgrtop.
type Stats struct {
	Waiting        int
	Running        int
	GateQueueDepth int
	GateHeld       bool
}

func (m *Manager) Stats() Stats {
	m.stateMu.Lock()
	waiting := m.wait.Len()
	running := m.running.Len()
	m.stateMu.Unlock()

	return Stats{
		Waiting:        waiting,
		Running:        running,
		GateQueueDepth: m.gate.Len(),
		GateHeld:       m.gate.Held(),
	}
}
