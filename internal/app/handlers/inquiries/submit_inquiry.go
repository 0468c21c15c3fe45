package inquiries

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/support"
	"stayquote/internal/app/middleware"
	"stayquote/internal/app/outbox"
	"stayquote/internal/app/uow"
	"stayquote/internal/domain/catalog"
	"stayquote/internal/domain/inquiry"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/events"
)

const submitInquiryKey = "inquiry.submit"

type SubmitInquiryCommand struct {
	FullName        string    `validate:"required,max=200"`
	Email           string    `validate:"required,email,max=320"`
	Phone           string    `validate:"omitempty,max=40"`
	Guests          int       `validate:"required,gte=1,lte=50"`
	CheckIn         time.Time `validate:"required"`
	CheckOut        time.Time `validate:"required"`
	SpecialRequests string    `validate:"omitempty,max=4000"`
	PrefersWhatsApp bool
	Pets            bool
	PetsDetails     string `validate:"omitempty,max=1000"`
	Event           bool
	EventDetails    string `validate:"omitempty,max=1000"`
	ArrivalTime     string `validate:"omitempty,max=40"`
	SourcePage      string `validate:"omitempty,max=200"`
	IdempotencyKeyV string `json:"-"`
}

func (c SubmitInquiryCommand) Key() string { return submitInquiryKey }

func (c SubmitInquiryCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SubmitInquiryCommand) ResultPrototype() any { return &SubmitInquiryResult{} }

type SubmitInquiryResult struct {
	ID       string        `json:"id"`
	Estimate *dto.Estimate `json:"estimate"`
}

// SubmitInquiryHandler re-reads the catalog, re-validates the stay and stores the inquiry
// with the server-side estimate. Client-computed estimates are never trusted.
type SubmitInquiryHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	IDs        func() string
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *SubmitInquiryHandler) Handle(ctx context.Context, cmd SubmitInquiryCommand) (*SubmitInquiryResult, error) {
	now := h.now()
	var result *SubmitInquiryResult
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		window := daterange.DateRange{Start: daterange.Day(cmd.CheckIn), End: daterange.Day(cmd.CheckOut)}
		var snap catalog.Snapshot
		if window.Validate() == nil {
			var err error
			snap, err = catalog.Load(ctx, uow.Catalog(unit), window)
			if err != nil {
				return err
			}
		}
		quote := snap.Quote(cmd.CheckIn, cmd.CheckOut)
		if err := quote.Validation.Err(); err != nil {
			return err
		}

		inq, err := inquiry.Submit(inquiry.SubmitParams{
			ID:     inquiry.InquiryID(h.nextID()),
			Stay:   window,
			Guests: cmd.Guests,
			Contact: inquiry.Contact{
				FullName:        cmd.FullName,
				Email:           cmd.Email,
				Phone:           cmd.Phone,
				PrefersWhatsApp: cmd.PrefersWhatsApp,
			},
			Extras: inquiry.Extras{
				Pets:            cmd.Pets,
				PetsDetails:     cmd.PetsDetails,
				Event:           cmd.Event,
				EventDetails:    cmd.EventDetails,
				ArrivalTime:     cmd.ArrivalTime,
				SpecialRequests: cmd.SpecialRequests,
				SourcePage:      cmd.SourcePage,
			},
			Estimate: quote.Estimate,
			Now:      now,
		})
		if err != nil {
			return err
		}
		if err := unit.Inquiries().Save(ctx, inq); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, events.Drain(inq)); err != nil {
			return err
		}
		result = &SubmitInquiryResult{ID: string(inq.ID), Estimate: dto.MapEstimate(inq.Estimate)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "inquiry submitted", "inquiry_id", result.ID, "check_in", daterange.Format(cmd.CheckIn), "estimated", result.Estimate != nil)
	}
	return result, nil
}

func (h *SubmitInquiryHandler) nextID() string {
	if h.IDs != nil {
		return h.IDs()
	}
	return uuid.NewString()
}

func (h *SubmitInquiryHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

var (
	_ commands.Handler[SubmitInquiryCommand, *SubmitInquiryResult] = (*SubmitInquiryHandler)(nil)
	_ middleware.IdempotentCommand                                 = SubmitInquiryCommand{}
)
