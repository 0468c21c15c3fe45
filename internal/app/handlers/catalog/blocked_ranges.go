package catalog

import (
	"context"
	"time"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/support"
	"stayquote/internal/app/queries"
	"stayquote/internal/app/uow"
	"stayquote/internal/domain/availability"
	"stayquote/internal/domain/shared/daterange"
)

const (
	listBlockedRangesKey  = "catalog.blocked_ranges.list"
	addBlockedRangeKey    = "catalog.blocked_ranges.add"
	deleteBlockedRangeKey = "catalog.blocked_ranges.delete"
)

type ListBlockedRangesQuery struct {
	admin
	Window daterange.DateRange
}

func (ListBlockedRangesQuery) Key() string { return listBlockedRangesKey }

type ListBlockedRangesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBlockedRangesHandler) Handle(ctx context.Context, q ListBlockedRangesQuery) ([]dto.BlockedRange, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	blocks, err := unit.BlockedRanges().List(execCtx, q.Window)
	if err != nil {
		return nil, err
	}
	return dto.MapBlockedRanges(blocks), nil
}

type AddBlockedRangeCommand struct {
	admin
	change
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required"`
	Reason    string    `validate:"max=200"`
}

func (AddBlockedRangeCommand) Key() string { return addBlockedRangeKey }

type AddBlockedRangeHandler struct {
	UoWFactory uow.UoWFactory
	Publisher  Publisher
	IDs        func() string
	Now        func() time.Time
}

func (h *AddBlockedRangeHandler) Handle(ctx context.Context, cmd AddBlockedRangeCommand) (dto.BlockedRange, error) {
	dr, err := daterange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return dto.BlockedRange{}, err
	}
	now := clock(h.Now).now()
	block, err := availability.NewBlockedRange(availability.NewBlockedRangeParams{
		ID:     availability.BlockedRangeID(ids(h.IDs).next()),
		Range:  dr,
		Reason: cmd.Reason,
		Now:    now,
	})
	if err != nil {
		return dto.BlockedRange{}, err
	}
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.BlockedRanges().Add(ctx, block); err != nil {
			return err
		}
		return h.Publisher.publish(ctx, availability.BlockedRangeAddedEvent(block, now))
	})
	if err != nil {
		return dto.BlockedRange{}, err
	}
	return dto.MapBlockedRange(block), nil
}

type DeleteBlockedRangeCommand struct {
	admin
	change
	ID string `validate:"required"`
}

func (DeleteBlockedRangeCommand) Key() string { return deleteBlockedRangeKey }

type DeleteBlockedRangeHandler struct {
	UoWFactory uow.UoWFactory
	Publisher  Publisher
	Now        func() time.Time
}

func (h *DeleteBlockedRangeHandler) Handle(ctx context.Context, cmd DeleteBlockedRangeCommand) (dto.BlockedRange, error) {
	var removed availability.BlockedRange
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		var err error
		removed, err = unit.BlockedRanges().Delete(ctx, availability.BlockedRangeID(cmd.ID))
		if err != nil {
			return err
		}
		return h.Publisher.publish(ctx, availability.BlockedRangeRemovedEvent(removed, clock(h.Now).now()))
	})
	if err != nil {
		return dto.BlockedRange{}, err
	}
	return dto.MapBlockedRange(removed), nil
}

var (
	_ queries.Handler[ListBlockedRangesQuery, []dto.BlockedRange]   = (*ListBlockedRangesHandler)(nil)
	_ commands.Handler[AddBlockedRangeCommand, dto.BlockedRange]    = (*AddBlockedRangeHandler)(nil)
	_ commands.Handler[DeleteBlockedRangeCommand, dto.BlockedRange] = (*DeleteBlockedRangeHandler)(nil)
)
