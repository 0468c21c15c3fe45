package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/money"
)

var (
	ErrSeasonNotFound    = errors.New("pricing: season not found")
	ErrNameRequired      = errors.New("pricing: name is required")
	ErrNegativeComponent = errors.New("pricing: nightly amounts cannot be negative")
	ErrMinAboveMax       = errors.New("pricing: nightly min cannot exceed nightly max")
	ErrSeasonOverlap     = errors.New("pricing: season overlaps an existing season")
)

type SeasonID string

// Season prices every night inside Range. Nightly amounts are in minor units of Currency;
// a nil amount means the season has no published rate.
type Season struct {
	ID         SeasonID
	Name       string
	Range      daterange.DateRange
	Currency   string
	NightlyMin *int64
	NightlyMax *int64
	CreatedAt  time.Time
}

type NewSeasonParams struct {
	ID         SeasonID
	Name       string
	Range      daterange.DateRange
	Currency   string
	NightlyMin *money.Money
	NightlyMax *money.Money
	Now        time.Time
}

func NewSeason(p NewSeasonParams) (Season, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Season{}, ErrNameRequired
	}
	if err := p.Range.Validate(); err != nil {
		return Season{}, err
	}
	code := p.Currency
	if strings.TrimSpace(code) == "" {
		code = money.DefaultCurrency
	}
	currency, err := money.ParseCurrency(code)
	if err != nil {
		return Season{}, err
	}
	minAmount, err := amountIn(p.NightlyMin, currency)
	if err != nil {
		return Season{}, err
	}
	maxAmount, err := amountIn(p.NightlyMax, currency)
	if err != nil {
		return Season{}, err
	}
	if minAmount != nil && maxAmount != nil && *minAmount > *maxAmount {
		return Season{}, ErrMinAboveMax
	}
	return Season{
		ID:         p.ID,
		Name:       name,
		Range:      p.Range,
		Currency:   currency,
		NightlyMin: minAmount,
		NightlyMax: maxAmount,
		CreatedAt:  p.Now.UTC(),
	}, nil
}

func amountIn(m *money.Money, currency string) (*int64, error) {
	if m == nil {
		return nil, nil
	}
	if m.Currency != currency {
		return nil, money.ErrCurrencyMismatch
	}
	if m.Amount < 0 {
		return nil, ErrNegativeComponent
	}
	v := m.Amount
	return &v, nil
}

// Priced reports whether both nightly bounds are published.
func (s Season) Priced() bool {
	return s.NightlyMin != nil && s.NightlyMax != nil
}

func (s Season) InWindow(window daterange.DateRange) bool {
	if window.IsZero() {
		return true
	}
	return s.Range.Overlaps(window)
}

// precedes orders overlapping seasons deterministically: earlier start, then lower ID.
func (s Season) precedes(other Season) bool {
	if !s.Range.Start.Equal(other.Range.Start) {
		return s.Range.Start.Before(other.Range.Start)
	}
	return s.ID < other.ID
}

// SeasonFor returns the season pricing the given night.
func SeasonFor(seasons []Season, night time.Time) (Season, bool) {
	var (
		best  Season
		found bool
	)
	for _, s := range seasons {
		if !s.Range.ContainsDate(night) {
			continue
		}
		if !found || s.precedes(best) {
			best = s
			found = true
		}
	}
	return best, found
}

// EnsureNoOverlap rejects a candidate season sharing a night with an existing one.
func EnsureNoOverlap(existing []Season, candidate Season) error {
	for _, s := range existing {
		if s.ID == candidate.ID {
			continue
		}
		if s.Range.Overlaps(candidate.Range) {
			return ErrSeasonOverlap
		}
	}
	return nil
}

type SeasonReader interface {
	List(ctx context.Context, window daterange.DateRange) ([]Season, error)
}

type SeasonRepository interface {
	SeasonReader
	Add(ctx context.Context, season Season) error
	Delete(ctx context.Context, id SeasonID) (Season, error)
}
