package manager

import (
	"context"

	"encodemgr/models"
)

// finalize removes jobId's Running Entry, per spec §4.5. It acquires at
// CLEAR_QUEUE — strictly higher than ADD_ENCODE/CREATE_PROCESS — so
// completing jobs make room for pending ones without being preempted by
// new arrivals. A no-op (beyond the trigger) if the entry is already
// gone, since checkQueue's promotion-failure path calls finalize on a
// jobId that was never added to the Running Set.
func (m *Manager) finalize(jobID int64) {
	ctx := context.Background()
	ticket, err := m.gate.Acquire(ctx, models.PriorityClearQueue)
	if err != nil {
		m.logger.Error("finalize: gate acquire failed", "jobId", jobID, "error", err)
		return
	}

	m.stateMu.Lock()
	if entry, ok := m.running.Get(jobID); ok {
		if entry.DeadlineTimer != nil {
			entry.DeadlineTimer.Stop()
		}
		m.running.Remove(jobID)
	}
	m.stateMu.Unlock()

	m.gate.Release(ticket)

	m.triggerScheduler()
}
