package content

import "time"

const Aggregate = "site_content"

type Updated struct {
	Key  string
	Kind Kind
	At   time.Time
}

func (e Updated) EventName() string     { return "content.updated" }
func (e Updated) AggregateID() string   { return Aggregate }
func (e Updated) OccurredAt() time.Time { return e.At }

func UpdatedEvent(b Block) Updated {
	return Updated{Key: b.Key, Kind: b.Kind, At: b.UpdatedAt}
}
