package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stayquote/internal/app/outbox"
	"stayquote/internal/domain/shared/events"
)

// Publisher writes catalog change events to the outbox of the current unit.
type Publisher struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (p Publisher) publish(ctx context.Context, evs ...events.DomainEvent) error {
	return outbox.RecordDomainEvents(ctx, p.Outbox, p.Encoder, evs)
}

type ids func() string

func (g ids) next() string {
	if g == nil {
		return uuid.NewString()
	}
	return g()
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// admin marks every catalog command and query as admin-only.
type admin struct{}

func (admin) AdminOnly() {}

// change marks commands that modify the catalog.
type change struct{}

func (change) ChangesCatalog() {}
