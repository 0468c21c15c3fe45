package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "stayquote/internal/app/outbox"
)

// Subscriber receives records in the order they were flushed.
type Subscriber func(ctx context.Context, record appoutbox.EventRecord) error

// Outbox buffers records until Flush and then hands them to in-process subscribers.
// Records added under an outbox batch are flushed or discarded with that batch only.
type Outbox struct {
	mu          sync.Mutex
	pending     []pendingRecord
	subscribers []Subscriber
}

type pendingRecord struct {
	batch  *appoutbox.Batch
	record appoutbox.EventRecord
}

func NewOutbox(subs ...Subscriber) *Outbox {
	return &Outbox{subscribers: subs}
}

func (o *Outbox) Subscribe(sub Subscriber) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subscribers = append(o.subscribers, sub)
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, pendingRecord{batch: appoutbox.BatchFrom(ctx), record: record})
	return nil
}

// take removes and returns the records of ctx's batch; without a batch it takes everything.
func (o *Outbox) take(ctx context.Context) []appoutbox.EventRecord {
	batch := appoutbox.BatchFrom(ctx)
	var taken []appoutbox.EventRecord
	kept := o.pending[:0]
	for _, p := range o.pending {
		if batch == nil || p.batch == batch {
			taken = append(taken, p.record)
			continue
		}
		kept = append(kept, p)
	}
	o.pending = kept
	return taken
}

// Flush delivers the records taken for ctx. Subscriber errors are joined; delivery is not retried.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	records := o.take(ctx)
	subs := append([]Subscriber(nil), o.subscribers...)
	o.mu.Unlock()

	var errs []error
	for _, rec := range records {
		for _, sub := range subs {
			if err := sub(ctx, rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Discard drops records buffered by a command that did not commit.
func (o *Outbox) Discard(ctx context.Context) {
	o.mu.Lock()
	o.take(ctx)
	o.mu.Unlock()
}

var _ appoutbox.Outbox = (*Outbox)(nil)
