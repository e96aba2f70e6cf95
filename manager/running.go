package manager

import (
	"time"

	"encodemgr/models"
	"encodemgr/process"
)

// RunningEntry is a promoted job under active supervision (spec §3).
// Cancelled distinguishes operator-initiated termination from process
// failure; DeadlineTimer fires after sourceDurationSeconds × rate.
type RunningEntry struct {
	Job           models.WaitEntry
	Process       process.Child
	Cancelled     bool
	DeadlineTimer *time.Timer
}

// runningSet is the unordered, Job-Identifier-keyed collection of
// Running Entries described in spec §4.3. All mutations happen under a
// gate ticket; the map itself is not concurrency-safe on its own.
type runningSet struct {
	entries map[int64]*RunningEntry
}

func newRunningSet() *runningSet {
	return &runningSet{entries: make(map[int64]*RunningEntry)}
}

func (s *runningSet) Put(entry *RunningEntry) {
	s.entries[entry.Job.ID] = entry
}

func (s *runningSet) Get(id int64) (*RunningEntry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

func (s *runningSet) Remove(id int64) {
	delete(s.entries, id)
}

func (s *runningSet) Len() int { return len(s.entries) }

// Snapshot returns the running entries in unspecified order, safe for
// the caller to retain without racing further mutation of the set
// itself (the *RunningEntry pointers are still shared and must not be
// mutated by the caller).
func (s *runningSet) Snapshot() []*RunningEntry {
	out := make([]*RunningEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

// ContainsSourceVideoFileID reports whether any entry other than
// excludeID shares sourceVideoFileID, for the duplicate-source
// interlock (spec §4.6 step 6, P5).
func (s *runningSet) ContainsSourceVideoFileID(sourceVideoFileID int64, excludeID int64) bool {
	for id, e := range s.entries {
		if id != excludeID && e.Job.Request.SourceVideoFileID == sourceVideoFileID {
			return true
		}
	}
	return false
}
