package stayrules

import (
	"time"

	"stayquote/internal/domain/availability"
	"stayquote/internal/domain/shared/daterange"
)

type RuleAdded struct {
	RuleID   RuleID
	Range    daterange.DateRange
	Priority int
	At       time.Time
}

func (e RuleAdded) EventName() string     { return "catalog.stay_rule_added" }
func (e RuleAdded) AggregateID() string   { return availability.CatalogAggregate }
func (e RuleAdded) OccurredAt() time.Time { return e.At }

type RuleRemoved struct {
	RuleID RuleID
	Range  daterange.DateRange
	At     time.Time
}

func (e RuleRemoved) EventName() string     { return "catalog.stay_rule_removed" }
func (e RuleRemoved) AggregateID() string   { return availability.CatalogAggregate }
func (e RuleRemoved) OccurredAt() time.Time { return e.At }

func RuleAddedEvent(r Rule, at time.Time) RuleAdded {
	return RuleAdded{RuleID: r.ID, Range: r.Range, Priority: r.Priority, At: at.UTC()}
}

func RuleRemovedEvent(r Rule, at time.Time) RuleRemoved {
	return RuleRemoved{RuleID: r.ID, Range: r.Range, At: at.UTC()}
}
