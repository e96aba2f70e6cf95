package manager

import (
	"io"
	"os"
	"strings"
	"sync"

	"encodemgr/logging"
	"encodemgr/models"
	"encodemgr/process"
)

// fakeChild is a manually-driven process.Child: tests call Finish or
// rely on Kill to decide when the supervised process "exits".
type fakeChild struct {
	stderr *strings.Reader
	exit   chan process.ExitResult

	mu     sync.Mutex
	killed bool
}

func newFakeChild() *fakeChild {
	return &fakeChild{stderr: strings.NewReader(""), exit: make(chan process.ExitResult, 1)}
}

func (c *fakeChild) Stderr() io.Reader               { return c.stderr }
func (c *fakeChild) Exit() <-chan process.ExitResult { return c.exit }

func (c *fakeChild) Kill() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.killed {
		return nil
	}
	c.killed = true
	select {
	case c.exit <- process.ExitResult{Code: -1, Signal: "SIGKILL"}:
	default:
	}
	return nil
}

// Finish delivers a terminal exit result, as if the child exited on its
// own (success or failure), distinct from Kill's cancellation path.
func (c *fakeChild) Finish(result process.ExitResult) {
	select {
	case c.exit <- result:
	default:
	}
}

// fakeProcessManager records every Spec it was asked to run and hands
// back a fakeChild per Create call for the test to drive.
type fakeProcessManager struct {
	mu         sync.Mutex
	specs      []process.Spec
	children   []*fakeChild
	createErr  error
	autoFinish *process.ExitResult
}

func (f *fakeProcessManager) Create(spec process.Spec) (process.Child, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := newFakeChild()
	f.specs = append(f.specs, spec)
	f.children = append(f.children, c)
	if f.autoFinish != nil {
		result := *f.autoFinish
		go c.Finish(result)
	}
	return c, nil
}

func (f *fakeProcessManager) last() *fakeChild {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.children[len(f.children)-1]
}

func (f *fakeProcessManager) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.children)
}

func (f *fakeProcessManager) lastSpec() process.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.specs[len(f.specs)-1]
}

// fakeEmitter records every event published, for assertions on ordering
// and payload content without wiring a real subscriber.
type fakeEmitter struct {
	mu       sync.Mutex
	added    []int64
	finished []models.FinishEncode
	errors   int
	progress []int64
}

func (e *fakeEmitter) EmitAddEncode(jobID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.added = append(e.added, jobID)
}

func (e *fakeEmitter) EmitFinishEncode(record models.FinishEncode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished = append(e.finished, record)
}

func (e *fakeEmitter) EmitErrorEncode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors++
}

func (e *fakeEmitter) EmitProgress(jobID int64, _ *models.EncodingProgress) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress = append(e.progress, jobID)
}

func (e *fakeEmitter) finishedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.finished)
}

func (e *fakeEmitter) errorCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errors
}

// fakeFileSystem is an in-memory store.FileSystem: existing tracks
// files, dirs tracks directories created or seeded ahead of time.
type fakeFileSystem struct {
	mu       sync.Mutex
	existing map[string]bool
	dirs     map[string]bool
	removed  []string
}

func newFakeFileSystem() *fakeFileSystem {
	return &fakeFileSystem{existing: map[string]bool{}, dirs: map[string]bool{}}
}

func (f *fakeFileSystem) Stat(path string) (os.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existing[path] || f.dirs[path] {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

func (f *fakeFileSystem) MkdirAll(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs[path] = true
	return nil
}

func (f *fakeFileSystem) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.existing[path] {
		return os.ErrNotExist
	}
	delete(f.existing, path)
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeFileSystem) seedFile(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existing[path] = true
}

func (f *fakeFileSystem) markOutputWritten(path string) {
	f.seedFile(path)
}

func (f *fakeFileSystem) wasRemoved(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.removed {
		if p == path {
			return true
		}
	}
	return false
}

// testLogger is logging.NopLogger by another name, kept distinct so test
// files can add assertions later without touching production code.
type testLogger = logging.NopLogger
