package pricing

import (
	"time"

	"stayquote/internal/domain/availability"
	"stayquote/internal/domain/shared/daterange"
)

type SeasonAdded struct {
	SeasonID SeasonID
	Range    daterange.DateRange
	Currency string
	At       time.Time
}

func (e SeasonAdded) EventName() string     { return "catalog.season_added" }
func (e SeasonAdded) AggregateID() string   { return availability.CatalogAggregate }
func (e SeasonAdded) OccurredAt() time.Time { return e.At }

type SeasonRemoved struct {
	SeasonID SeasonID
	Range    daterange.DateRange
	At       time.Time
}

func (e SeasonRemoved) EventName() string     { return "catalog.season_removed" }
func (e SeasonRemoved) AggregateID() string   { return availability.CatalogAggregate }
func (e SeasonRemoved) OccurredAt() time.Time { return e.At }

func SeasonAddedEvent(s Season, at time.Time) SeasonAdded {
	return SeasonAdded{SeasonID: s.ID, Range: s.Range, Currency: s.Currency, At: at.UTC()}
}

func SeasonRemovedEvent(s Season, at time.Time) SeasonRemoved {
	return SeasonRemoved{SeasonID: s.ID, Range: s.Range, At: at.UTC()}
}
