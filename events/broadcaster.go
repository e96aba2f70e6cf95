// Package events implements models.EventEmitter as a fan-out broadcaster:
// every job lifecycle event is logged and also published to any number of
// subscriber channels, the way a queue's event bus decouples producers
// from slow or absent consumers (cmd/encodemgrtop's dashboard, in this
// repo's case) instead of letting one block the other.
package events

import (
	"sync"

	"encodemgr/logging"
	"encodemgr/models"
)

// Kind identifies which job lifecycle event an Event carries.
type Kind int

const (
	KindAddEncode Kind = iota
	KindFinishEncode
	KindErrorEncode
	KindProgress
)

// Event is the broadcast payload. Only the field matching Kind is set.
type Event struct {
	Kind     Kind
	JobID    int64
	Finish   models.FinishEncode
	Progress *models.EncodingProgress
}

// subscriberBuffer is the per-subscriber channel capacity. A slow
// dashboard drops events past this rather than stall the manager's exit
// handlers, which call EmitFinishEncode and EmitErrorEncode synchronously.
const subscriberBuffer = 64

// Broadcaster is the default models.EventEmitter: it logs add and finish
// events at Info level and error events at Error level (progress events
// are not logged), and fans every event out to current subscribers.
type Broadcaster struct {
	logger logging.Logger

	mu   sync.RWMutex
	subs []chan Event
}

// NewBroadcaster returns a Broadcaster that logs through logger.
func NewBroadcaster(logger logging.Logger) *Broadcaster {
	return &Broadcaster{logger: logger}
}

// Subscribe returns a channel of future events. The caller must call the
// returned unsubscribe function when done; the channel is never closed,
// only detached.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub == ch {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
	return ch, unsubscribe
}

func (b *Broadcaster) publish(e Event) {
	b.mu.RLock()
	subs := make([]chan Event, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			// Slow subscriber: drop rather than block the caller.
		}
	}
}

func (b *Broadcaster) EmitAddEncode(jobID int64) {
	b.logger.Info("job enqueued", "jobId", jobID)
	b.publish(Event{Kind: KindAddEncode, JobID: jobID})
}

func (b *Broadcaster) EmitFinishEncode(record models.FinishEncode) {
	b.logger.Info("job finished", "recordedId", record.RecordedID, "output", record.FullOutputPath, "removeOriginal", record.RemoveOriginal)
	b.publish(Event{Kind: KindFinishEncode, Finish: record})
}

func (b *Broadcaster) EmitErrorEncode() {
	b.logger.Error("job failed")
	b.publish(Event{Kind: KindErrorEncode})
}

func (b *Broadcaster) EmitProgress(jobID int64, progress *models.EncodingProgress) {
	b.publish(Event{Kind: KindProgress, JobID: jobID, Progress: progress})
}
