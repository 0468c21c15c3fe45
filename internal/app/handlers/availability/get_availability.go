package availability

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/support"
	"stayquote/internal/app/policies"
	"stayquote/internal/app/queries"
	"stayquote/internal/app/uow"
	"stayquote/internal/domain/catalog"
	"stayquote/internal/domain/shared/daterange"
)

const getAvailabilityKey = "availability.get"

const (
	DefaultWindowMonths = 18
	maxWindowMonths     = 36
)

var ErrWindowTooLarge = errors.New("availability: requested window is too large")

// GetAvailabilityQuery asks for the public calendar. Zero From means today; zero To means
// From plus the configured window.
type GetAvailabilityQuery struct {
	From time.Time
	To   time.Time
}

func (q GetAvailabilityQuery) Key() string { return getAvailabilityKey }

type GetAvailabilityHandler struct {
	UoWFactory   uow.UoWFactory
	Cache        policies.AvailabilityCache
	Clock        policies.Clock
	WindowMonths int
	Logger       *slog.Logger
}

func (h *GetAvailabilityHandler) Handle(ctx context.Context, q GetAvailabilityQuery) (dto.Availability, error) {
	window, err := h.window(q)
	if err != nil {
		return dto.Availability{}, err
	}

	if h.Cache != nil {
		cached, err := h.Cache.Get(ctx, window)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, policies.ErrCacheMiss) {
			h.warn(ctx, "availability cache read failed", err)
		}
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	snap, err := catalog.Load(execCtx, uow.Catalog(unit), window)
	if err != nil {
		return dto.Availability{}, err
	}
	view := dto.MapAvailability(window, snap.Blocked, snap.Rules, snap.Seasons)

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, window, view); err != nil {
			h.warn(ctx, "availability cache write failed", err)
		}
	}
	return view, nil
}

func (h *GetAvailabilityHandler) window(q GetAvailabilityQuery) (daterange.DateRange, error) {
	from := daterange.Day(q.From)
	if q.From.IsZero() {
		from = daterange.Day(h.now())
	}
	months := h.WindowMonths
	if months <= 0 {
		months = DefaultWindowMonths
	}
	to := daterange.Day(q.To)
	if q.To.IsZero() {
		to = from.AddDate(0, months, 0)
	}
	window, err := daterange.New(from, to)
	if err != nil {
		return daterange.DateRange{}, err
	}
	if to.After(from.AddDate(0, maxWindowMonths, 0)) {
		return daterange.DateRange{}, ErrWindowTooLarge
	}
	return window, nil
}

func (h *GetAvailabilityHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

func (h *GetAvailabilityHandler) warn(ctx context.Context, msg string, err error) {
	if h.Logger != nil {
		h.Logger.WarnContext(ctx, msg, "error", err)
	}
}

var _ queries.Handler[GetAvailabilityQuery, dto.Availability] = (*GetAvailabilityHandler)(nil)
