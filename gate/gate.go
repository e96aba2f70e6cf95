// Package gate implements the Execution Gate: a priority-ordered,
// single-holder mutual-exclusion mechanism that serializes all mutations
// of the Encode Manager's Wait Queue, Running Set, and its own ticket
// queue.
//
// Unlike the source's broadcast-and-filter emitter (every waiter woken on
// every unlock, each self-filtering by id), each waiter here owns a
// dedicated buffered channel that the gate signals directly when its
// turn comes. This avoids waking every waiter on every handoff.
package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"encodemgr/models"
)

// AcquireTimeout is the duration a waiter may sit in the ticket queue
// before acquisition fails with models.ErrGetExecutionTimeout. A var,
// not a const, so tests can shrink it instead of waiting out the real
// 60 seconds.
var AcquireTimeout = 60 * time.Second

type waiter struct {
	ticket models.ExecutionTicket
	grant  chan struct{}
}

// Gate is the Execution Gate described in §4.1. The zero value is not
// usable; construct with New.
type Gate struct {
	mu     sync.Mutex
	queue  []*waiter
	holder *waiter
}

// New returns an unheld gate.
func New() *Gate {
	return &Gate{}
}

// Acquire blocks until the caller holds the gate at the given priority,
// or until AcquireTimeout elapses, whichever comes first. The returned
// ticket must be passed to Release exactly once.
func (g *Gate) Acquire(ctx context.Context, priority int) (models.ExecutionTicket, error) {
	w := &waiter{
		ticket: models.ExecutionTicket{ID: uuid.NewString(), Priority: priority},
		grant:  make(chan struct{}, 1),
	}

	g.mu.Lock()
	g.insert(w)
	g.handoffLocked()
	g.mu.Unlock()

	timer := time.NewTimer(AcquireTimeout)
	defer timer.Stop()

	select {
	case <-w.grant:
		return w.ticket, nil
	case <-timer.C:
		if g.abandon(w) {
			return models.ExecutionTicket{}, fmt.Errorf("gate: acquire priority %d: %w", priority, models.ErrGetExecutionTimeout)
		}
		// Lost the race: handoff granted the ticket concurrently with
		// the timer firing. Honor the grant rather than report a
		// timeout for a ticket the caller now holds.
		<-w.grant
		return w.ticket, nil
	case <-ctx.Done():
		if g.abandon(w) {
			return models.ExecutionTicket{}, ctx.Err()
		}
		<-w.grant
		return w.ticket, nil
	}
}

// insert places w after every ticket of strictly higher-or-equal
// priority, preserving FIFO order within a priority level. Must be
// called with g.mu held.
func (g *Gate) insert(w *waiter) {
	pos := len(g.queue)
	for i, other := range g.queue {
		if other.ticket.Priority < w.ticket.Priority {
			pos = i
			break
		}
	}
	g.queue = append(g.queue, nil)
	copy(g.queue[pos+1:], g.queue[pos:])
	g.queue[pos] = w
}

// handoffLocked grants the gate to the head of the queue if nobody
// currently holds it. Must be called with g.mu held.
func (g *Gate) handoffLocked() {
	if g.holder != nil || len(g.queue) == 0 {
		return
	}
	g.holder = g.queue[0]
	g.queue = g.queue[1:]
	g.holder.grant <- struct{}{}
}

// abandon removes w from the queue if it is still waiting, reporting
// whether it did so. If w is no longer in the queue, a concurrent
// handoff has already granted it the gate.
func (g *Gate) abandon(w *waiter) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, q := range g.queue {
		if q == w {
			g.queue = append(g.queue[:i], g.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Release relinquishes the gate if ticket is the current holder, then
// hands off to the next waiter. Releasing a ticket that is not the
// current holder is a no-op.
func (g *Gate) Release(ticket models.ExecutionTicket) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.holder == nil || g.holder.ticket.ID != ticket.ID {
		return
	}
	g.holder = nil
	g.handoffLocked()
}

// Len reports the number of waiters currently queued, excluding the
// holder. Intended for diagnostics and tests, not for control flow.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// Held reports whether the gate currently has a holder. Diagnostics
// only, same as Len.
func (g *Gate) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder != nil
}
