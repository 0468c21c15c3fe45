package availability

import (
	"time"

	"stayquote/internal/domain/shared/daterange"
)

// CatalogAggregate is the aggregate ID shared by every catalog change event.
const CatalogAggregate = "catalog"

type BlockedRangeAdded struct {
	BlockID BlockedRangeID
	Range   daterange.DateRange
	At      time.Time
}

func (e BlockedRangeAdded) EventName() string     { return "catalog.blocked_range_added" }
func (e BlockedRangeAdded) AggregateID() string   { return CatalogAggregate }
func (e BlockedRangeAdded) OccurredAt() time.Time { return e.At }

type BlockedRangeRemoved struct {
	BlockID BlockedRangeID
	Range   daterange.DateRange
	At      time.Time
}

func (e BlockedRangeRemoved) EventName() string     { return "catalog.blocked_range_removed" }
func (e BlockedRangeRemoved) AggregateID() string   { return CatalogAggregate }
func (e BlockedRangeRemoved) OccurredAt() time.Time { return e.At }

func BlockedRangeAddedEvent(b BlockedRange, at time.Time) BlockedRangeAdded {
	return BlockedRangeAdded{BlockID: b.ID, Range: b.Range, At: at.UTC()}
}

func BlockedRangeRemovedEvent(b BlockedRange, at time.Time) BlockedRangeRemoved {
	return BlockedRangeRemoved{BlockID: b.ID, Range: b.Range, At: at.UTC()}
}
