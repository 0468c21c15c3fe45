package catalog

import (
	"context"
	"strings"
	"time"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/support"
	"stayquote/internal/app/queries"
	"stayquote/internal/app/uow"
	"stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/money"
)

const (
	listSeasonsKey  = "catalog.pricing_seasons.list"
	addSeasonKey    = "catalog.pricing_seasons.add"
	deleteSeasonKey = "catalog.pricing_seasons.delete"
)

type ListSeasonsQuery struct {
	admin
	Window daterange.DateRange
}

func (ListSeasonsQuery) Key() string { return listSeasonsKey }

type ListSeasonsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListSeasonsHandler) Handle(ctx context.Context, q ListSeasonsQuery) ([]dto.PricingSeason, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	seasons, err := unit.Seasons().List(execCtx, q.Window)
	if err != nil {
		return nil, err
	}
	return dto.MapSeasons(seasons), nil
}

// AddSeasonCommand carries nightly rates in major units (149.99 USD).
type AddSeasonCommand struct {
	admin
	change
	Name       string    `validate:"required,max=120"`
	StartDate  time.Time `validate:"required"`
	EndDate    time.Time `validate:"required"`
	Currency   string    `validate:"omitempty,len=3,alpha"`
	NightlyMin *float64  `validate:"omitempty,gte=0"`
	NightlyMax *float64  `validate:"omitempty,gte=0"`
}

func (AddSeasonCommand) Key() string { return addSeasonKey }

type AddSeasonHandler struct {
	UoWFactory uow.UoWFactory
	Publisher  Publisher
	IDs        func() string
	Now        func() time.Time
}

func (h *AddSeasonHandler) Handle(ctx context.Context, cmd AddSeasonCommand) (dto.PricingSeason, error) {
	dr, err := daterange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return dto.PricingSeason{}, err
	}
	currency := strings.TrimSpace(cmd.Currency)
	if currency == "" {
		currency = money.DefaultCurrency
	}
	nightlyMin, err := minorUnits(cmd.NightlyMin, currency)
	if err != nil {
		return dto.PricingSeason{}, err
	}
	nightlyMax, err := minorUnits(cmd.NightlyMax, currency)
	if err != nil {
		return dto.PricingSeason{}, err
	}
	now := clock(h.Now).now()
	season, err := pricing.NewSeason(pricing.NewSeasonParams{
		ID:         pricing.SeasonID(ids(h.IDs).next()),
		Name:       cmd.Name,
		Range:      dr,
		Currency:   currency,
		NightlyMin: nightlyMin,
		NightlyMax: nightlyMax,
		Now:        now,
	})
	if err != nil {
		return dto.PricingSeason{}, err
	}
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		existing, err := unit.Seasons().List(ctx, season.Range)
		if err != nil {
			return err
		}
		if err := pricing.EnsureNoOverlap(existing, season); err != nil {
			return err
		}
		if err := unit.Seasons().Add(ctx, season); err != nil {
			return err
		}
		return h.Publisher.publish(ctx, pricing.SeasonAddedEvent(season, now))
	})
	if err != nil {
		return dto.PricingSeason{}, err
	}
	return dto.MapSeason(season), nil
}

func minorUnits(major *float64, currency string) (*money.Money, error) {
	if major == nil {
		return nil, nil
	}
	m, err := money.FromMajor(*major, currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type DeleteSeasonCommand struct {
	admin
	change
	ID string `validate:"required"`
}

func (DeleteSeasonCommand) Key() string { return deleteSeasonKey }

type DeleteSeasonHandler struct {
	UoWFactory uow.UoWFactory
	Publisher  Publisher
	Now        func() time.Time
}

func (h *DeleteSeasonHandler) Handle(ctx context.Context, cmd DeleteSeasonCommand) (dto.PricingSeason, error) {
	var removed pricing.Season
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		var err error
		removed, err = unit.Seasons().Delete(ctx, pricing.SeasonID(cmd.ID))
		if err != nil {
			return err
		}
		return h.Publisher.publish(ctx, pricing.SeasonRemovedEvent(removed, clock(h.Now).now()))
	})
	if err != nil {
		return dto.PricingSeason{}, err
	}
	return dto.MapSeason(removed), nil
}

var (
	_ queries.Handler[ListSeasonsQuery, []dto.PricingSeason]   = (*ListSeasonsHandler)(nil)
	_ commands.Handler[AddSeasonCommand, dto.PricingSeason]    = (*AddSeasonHandler)(nil)
	_ commands.Handler[DeleteSeasonCommand, dto.PricingSeason] = (*DeleteSeasonHandler)(nil)
)
