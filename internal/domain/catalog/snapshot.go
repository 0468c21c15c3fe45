package catalog

import (
	"context"
	"fmt"
	"time"

	"stayquote/internal/domain/availability"
	"stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/stayrules"
)

// Sources is the read-only view of the admin-managed catalog.
type Sources interface {
	BlockedRanges() availability.Reader
	StayRules() stayrules.Reader
	Seasons() pricing.SeasonReader
}

// Snapshot is a point-in-time copy of blocked ranges, stay rules and pricing seasons.
type Snapshot struct {
	Blocked []availability.BlockedRange
	Rules   []stayrules.Rule
	Seasons []pricing.Season
}

// Load reads the three collections overlapping window (zero window = everything).
func Load(ctx context.Context, src Sources, window daterange.DateRange) (Snapshot, error) {
	blocked, err := src.BlockedRanges().List(ctx, window)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load blocked ranges: %w", err)
	}
	rules, err := src.StayRules().List(ctx, window)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load stay rules: %w", err)
	}
	seasons, err := src.Seasons().List(ctx, window)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load pricing seasons: %w", err)
	}
	return Snapshot{Blocked: blocked, Rules: rules, Seasons: seasons}, nil
}

// Quote couples the validation outcome with the estimate, when one is available.
type Quote struct {
	Validation stayrules.Result
	Estimate   *pricing.PriceEstimate
}

// Quote validates the stay and, only when valid, prices it.
func (s Snapshot) Quote(checkIn, checkOut time.Time) Quote {
	result := stayrules.Validate(checkIn, checkOut, s.Rules, s.Blocked)
	if !result.Valid {
		return Quote{Validation: result}
	}
	estimate, _ := pricing.Estimate(checkIn, checkOut, s.Seasons)
	return Quote{Validation: result, Estimate: estimate}
}
