package inquiry

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/events"
)

var (
	ErrInquiryNotFound   = errors.New("inquiry: not found")
	ErrInvalidGuests     = errors.New("inquiry: guests count must be positive")
	ErrNameRequired      = errors.New("inquiry: full name is required")
	ErrEmailRequired     = errors.New("inquiry: email is required")
	ErrCheckInInPast     = errors.New("inquiry: check-in date is in the past")
	ErrInvalidTransition = errors.New("inquiry: invalid status transition")
	ErrUnknownStatus     = errors.New("inquiry: unknown status")
	ErrVersionConflict   = errors.New("inquiry: concurrent modification")
)

type InquiryID string

type Status string

const (
	StatusNew     Status = "new"
	StatusReplied Status = "replied"
	StatusBooked  Status = "booked"
	StatusClosed  Status = "closed"
)

var transitions = map[Status][]Status{
	StatusNew:     {StatusReplied, StatusClosed},
	StatusReplied: {StatusBooked, StatusClosed},
	StatusBooked:  {StatusClosed},
}

// ParseStatus accepts the lowercase status names used on the wire.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case StatusNew, StatusReplied, StatusBooked, StatusClosed:
		return s, nil
	}
	return "", ErrUnknownStatus
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Contact struct {
	FullName        string
	Email           string
	Phone           string
	PrefersWhatsApp bool
}

// Extras are the optional details a guest may add to an inquiry.
type Extras struct {
	Pets            bool
	PetsDetails     string
	Event           bool
	EventDetails    string
	ArrivalTime     string
	SpecialRequests string
	SourcePage      string
}

type Inquiry struct {
	ID        InquiryID
	Stay      daterange.DateRange
	Guests    int
	Contact   Contact
	Extras    Extras
	Estimate  *pricing.PriceEstimate
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id InquiryID) (*Inquiry, error)
	Save(ctx context.Context, inq *Inquiry) error
	// List returns inquiries newest first, plus the total matching the status filter.
	List(ctx context.Context, filter ListFilter) ([]*Inquiry, int, error)
}

type SubmitParams struct {
	ID       InquiryID
	Stay     daterange.DateRange
	Guests   int
	Contact  Contact
	Extras   Extras
	Estimate *pricing.PriceEstimate
	Now      time.Time
}

// Submit creates a new inquiry. Stay validation against the catalog happens before this call.
func Submit(p SubmitParams) (*Inquiry, error) {
	if err := p.Stay.Validate(); err != nil {
		return nil, err
	}
	if err := EnsureCheckInNotPast(p.Stay, p.Now); err != nil {
		return nil, err
	}
	if p.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	contact := p.Contact
	contact.FullName = strings.TrimSpace(contact.FullName)
	contact.Email = strings.TrimSpace(contact.Email)
	contact.Phone = strings.TrimSpace(contact.Phone)
	if contact.FullName == "" {
		return nil, ErrNameRequired
	}
	if contact.Email == "" {
		return nil, ErrEmailRequired
	}
	extras := p.Extras
	if !extras.Pets {
		extras.PetsDetails = ""
	}
	if !extras.Event {
		extras.EventDetails = ""
	}
	now := p.Now.UTC()
	inq := &Inquiry{
		ID:        p.ID,
		Stay:      p.Stay,
		Guests:    p.Guests,
		Contact:   contact,
		Extras:    extras,
		Estimate:  p.Estimate,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	inq.Record(Submitted{
		InquiryID: inq.ID,
		Stay:      inq.Stay,
		Guests:    inq.Guests,
		Email:     inq.Contact.Email,
		Estimated: inq.Estimate != nil,
		At:        now,
	})
	return inq, nil
}

// EnsureCheckInNotPast rejects stays starting before today's calendar date.
func EnsureCheckInNotPast(stay daterange.DateRange, now time.Time) error {
	if daterange.Day(stay.Start).Before(daterange.Day(now)) {
		return ErrCheckInInPast
	}
	return nil
}

// ChangeStatus moves the inquiry along new -> replied -> booked -> closed.
func (i *Inquiry) ChangeStatus(next Status, now time.Time) error {
	if !i.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	prev := i.Status
	i.Status = next
	i.UpdatedAt = now.UTC()
	i.Record(StatusChanged{InquiryID: i.ID, From: prev, To: next, At: i.UpdatedAt})
	return nil
}

// Nights is the length of the requested stay.
func (i *Inquiry) Nights() int {
	return i.Stay.Nights()
}
