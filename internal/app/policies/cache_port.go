package policies

import (
	"context"
	"errors"

	"stayquote/internal/app/dto"
	"stayquote/internal/domain/shared/daterange"
)

// ErrCacheMiss is returned by AvailabilityCache.Get when nothing is stored for the window.
var ErrCacheMiss = errors.New("cache: miss")

// AvailabilityCache stores rendered availability per window. Invalidate drops every window.
type AvailabilityCache interface {
	Get(ctx context.Context, window daterange.DateRange) (dto.Availability, error)
	Set(ctx context.Context, window daterange.DateRange, value dto.Availability) error
	Invalidate(ctx context.Context) error
}
