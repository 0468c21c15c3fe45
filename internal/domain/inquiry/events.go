package inquiry

import (
	"time"

	"stayquote/internal/domain/shared/daterange"
)

type Submitted struct {
	InquiryID InquiryID
	Stay      daterange.DateRange
	Guests    int
	Email     string
	Estimated bool
	At        time.Time
}

func (e Submitted) EventName() string     { return "inquiry.submitted" }
func (e Submitted) AggregateID() string   { return string(e.InquiryID) }
func (e Submitted) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	InquiryID InquiryID
	From      Status
	To        Status
	At        time.Time
}

func (e StatusChanged) EventName() string     { return "inquiry.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.InquiryID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }
