package availability

import (
	"context"
	"time"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/support"
	"stayquote/internal/app/queries"
	"stayquote/internal/app/uow"
	"stayquote/internal/domain/catalog"
	"stayquote/internal/domain/shared/daterange"
)

const checkStayKey = "availability.check_stay"

// CheckStayQuery validates a proposed stay and prices it when it is bookable.
type CheckStayQuery struct {
	CheckIn  time.Time `validate:"required"`
	CheckOut time.Time `validate:"required"`
}

func (q CheckStayQuery) Key() string { return checkStayKey }

type CheckStayHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckStayHandler) Handle(ctx context.Context, q CheckStayQuery) (dto.Quote, error) {
	stay, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		// Nothing to look up; the validator reports the inverted range itself.
		return dto.MapQuote(q.CheckIn, q.CheckOut, catalog.Snapshot{}.Quote(q.CheckIn, q.CheckOut)), nil
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	snap, err := catalog.Load(execCtx, uow.Catalog(unit), stay)
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(stay.Start, stay.End, snap.Quote(stay.Start, stay.End)), nil
}

var _ queries.Handler[CheckStayQuery, dto.Quote] = (*CheckStayHandler)(nil)
