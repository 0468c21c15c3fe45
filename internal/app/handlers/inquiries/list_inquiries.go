package inquiries

import (
	"context"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/support"
	"stayquote/internal/app/queries"
	"stayquote/internal/app/uow"
	"stayquote/internal/domain/inquiry"
)

const listInquiriesKey = "inquiry.list"

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ListInquiriesQuery pages through the inbox newest first. Empty Status lists all.
type ListInquiriesQuery struct {
	Status string `validate:"omitempty,oneof=new replied booked closed"`
	Limit  int    `validate:"gte=0"`
	Offset int    `validate:"gte=0"`
}

func (ListInquiriesQuery) Key() string { return listInquiriesKey }

func (ListInquiriesQuery) AdminOnly() {}

type ListInquiriesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListInquiriesHandler) Handle(ctx context.Context, q ListInquiriesQuery) (dto.InquiryPage, error) {
	filter := inquiry.ListFilter{Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		status, err := inquiry.ParseStatus(q.Status)
		if err != nil {
			return dto.InquiryPage{}, err
		}
		filter.Status = status
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.InquiryPage{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, total, err := unit.Inquiries().List(execCtx, filter)
	if err != nil {
		return dto.InquiryPage{}, err
	}
	return dto.InquiryPage{
		Items:  dto.MapInquiries(items),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

var _ queries.Handler[ListInquiriesQuery, dto.InquiryPage] = (*ListInquiriesHandler)(nil)
