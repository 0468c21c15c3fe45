package pricing

import (
	"time"

	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/money"
)

// SegmentKind tags breakdown lines. Only nightly lines are produced today.
type SegmentKind string

const SegmentNight SegmentKind = "night"

type Segment struct {
	Kind     SegmentKind
	Start    time.Time
	End      time.Time
	Price    money.Money
	SeasonID SeasonID
}

type Breakdown struct {
	Total    money.Money
	Currency string
	Nights   int
	Segments []Segment
}

type Breakdowns struct {
	Min Breakdown
	Max Breakdown
}

// PriceEstimate is the min/max total for a stay with per-night breakdowns.
type PriceEstimate struct {
	Min       money.Money
	Max       money.Money
	Currency  string
	Breakdown Breakdowns
}

type pricedNight struct {
	night  time.Time
	min    int64
	max    int64
	season SeasonID
}

// Estimate sums nightly min and max rates over [checkIn, checkOut).
//
// It returns false when the stay has no nights or when any night lacks a season with both
// nightly bounds; partial estimates are never produced.
func Estimate(checkIn, checkOut time.Time, seasons []Season) (*PriceEstimate, bool) {
	checkIn = daterange.Day(checkIn)
	nights := daterange.DaysBetween(checkIn, checkOut)
	if nights < 1 {
		return nil, false
	}

	priced := make([]pricedNight, 0, nights)
	currency := ""
	for i := 0; i < nights; i++ {
		night := checkIn.AddDate(0, 0, i)
		season, ok := SeasonFor(seasons, night)
		if !ok || !season.Priced() {
			return nil, false
		}
		if currency == "" {
			currency = season.Currency
		}
		priced = append(priced, pricedNight{
			night:  night,
			min:    *season.NightlyMin,
			max:    *season.NightlyMax,
			season: season.ID,
		})
	}

	minBreakdown := Breakdown{Currency: currency, Nights: nights, Segments: make([]Segment, 0, nights)}
	maxBreakdown := Breakdown{Currency: currency, Nights: nights, Segments: make([]Segment, 0, nights)}
	var totalMin, totalMax int64
	for _, n := range priced {
		totalMin += n.min
		totalMax += n.max
		minBreakdown.Segments = append(minBreakdown.Segments, n.segment(n.min, currency))
		maxBreakdown.Segments = append(maxBreakdown.Segments, n.segment(n.max, currency))
	}
	minBreakdown.Total = money.Money{Amount: totalMin, Currency: currency}
	maxBreakdown.Total = money.Money{Amount: totalMax, Currency: currency}

	return &PriceEstimate{
		Min:       minBreakdown.Total,
		Max:       maxBreakdown.Total,
		Currency:  currency,
		Breakdown: Breakdowns{Min: minBreakdown, Max: maxBreakdown},
	}, true
}

func (n pricedNight) segment(amount int64, currency string) Segment {
	return Segment{
		Kind:     SegmentNight,
		Start:    n.night,
		End:      n.night.AddDate(0, 0, 1),
		Price:    money.Money{Amount: amount, Currency: currency},
		SeasonID: n.season,
	}
}
