package manager

import "encodemgr/models"

// waitQueue is the ordered sequence of Wait Entries described in spec
// §4.2: FIFO, appended at the tail by Enqueue, popped at the head by the
// Scheduler Loop. Not safe for concurrent use on its own; all access is
// serialized by the Execution Gate.
type waitQueue struct {
	entries []models.WaitEntry
}

func (q *waitQueue) PushBack(entry models.WaitEntry) {
	q.entries = append(q.entries, entry)
}

// PopFront removes and returns the head entry. The second return value
// is false if the queue is empty.
func (q *waitQueue) PopFront() (models.WaitEntry, bool) {
	if len(q.entries) == 0 {
		return models.WaitEntry{}, false
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head, true
}

// Remove deletes the entry with the given id, reporting whether it was
// present. Used by Cancel to remove a not-yet-running job (spec §4.7).
func (q *waitQueue) Remove(id int64) bool {
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (q *waitQueue) Len() int { return len(q.entries) }

// Snapshot returns a copy of the current entries, safe for the caller
// to retain without racing further mutation.
func (q *waitQueue) Snapshot() []models.WaitEntry {
	out := make([]models.WaitEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

// ContainsSourceVideoFileID reports whether any entry other than
// excludeID shares sourceVideoFileID, for the duplicate-source
// interlock (spec §4.6 step 6, P5).
func (q *waitQueue) ContainsSourceVideoFileID(sourceVideoFileID int64, excludeID int64) bool {
	for _, e := range q.entries {
		if e.ID != excludeID && e.Request.SourceVideoFileID == sourceVideoFileID {
			return true
		}
	}
	return false
}

// Get returns the entry with the given id, if present.
func (q *waitQueue) Get(id int64) (models.WaitEntry, bool) {
	for _, e := range q.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.WaitEntry{}, false
}
