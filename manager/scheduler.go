package manager

import (
	"context"

	"encodemgr/models"
)

// checkQueue is the Scheduler Loop's body (spec §4.4): a re-entrant,
// idempotent procedure invoked whenever queue state may have changed.
// It only ever runs on the single scheduler worker goroutine (see
// Start), so concurrent checkQueue calls cannot race each other
// directly; it still takes tickets because Enqueue/Cancel/exit handlers
// mutate the same state concurrently with it.
func (m *Manager) checkQueue() {
	m.stateMu.Lock()
	saturated := m.running.Len() >= m.cfg.ConcurrentEncodeNum
	empty := m.wait.Len() == 0
	m.stateMu.Unlock()

	if saturated || empty {
		return
	}

	ctx := context.Background()
	ticket, err := m.gate.Acquire(ctx, models.PriorityCreateProcess)
	if err != nil {
		m.logger.Error("checkQueue: gate acquire failed", "error", err)
		return
	}

	m.stateMu.Lock()
	entry, ok := m.wait.PopFront()
	m.stateMu.Unlock()

	if !ok {
		// Lost the race: another checkQueue pass already drained the
		// queue between our length check and PopFront.
		m.gate.Release(ticket)
		return
	}

	running, err := m.promote(ctx, entry)
	if err != nil {
		m.gate.Release(ticket)
		m.logger.Error("checkQueue: promotion failed", "jobId", entry.ID, "error", err)
		m.emitter.EmitErrorEncode()
		m.finalize(entry.ID)
		return
	}

	m.stateMu.Lock()
	m.running.Put(running)
	m.stateMu.Unlock()

	m.gate.Release(ticket)
}
