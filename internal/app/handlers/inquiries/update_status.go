package inquiries

import (
	"context"
	"time"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/support"
	"stayquote/internal/app/outbox"
	"stayquote/internal/app/uow"
	"stayquote/internal/domain/inquiry"
	"stayquote/internal/domain/shared/events"
)

const updateStatusKey = "inquiry.update_status"

type UpdateStatusCommand struct {
	ID     string `validate:"required"`
	Status string `validate:"required,oneof=new replied booked closed"`
}

func (UpdateStatusCommand) Key() string { return updateStatusKey }

func (UpdateStatusCommand) AdminOnly() {}

type UpdateStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (dto.Inquiry, error) {
	next, err := inquiry.ParseStatus(cmd.Status)
	if err != nil {
		return dto.Inquiry{}, err
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	var out dto.Inquiry
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		inq, err := unit.Inquiries().ByID(ctx, inquiry.InquiryID(cmd.ID))
		if err != nil {
			return err
		}
		if err := inq.ChangeStatus(next, now); err != nil {
			return err
		}
		if err := unit.Inquiries().Save(ctx, inq); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, events.Drain(inq)); err != nil {
			return err
		}
		out = dto.MapInquiry(inq)
		return nil
	})
	if err != nil {
		return dto.Inquiry{}, err
	}
	return out, nil
}

var _ commands.Handler[UpdateStatusCommand, dto.Inquiry] = (*UpdateStatusHandler)(nil)
