package dto

import (
	"time"

	"stayquote/internal/domain/catalog"
	"stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/stayrules"
)

type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Segment struct {
	Type     string  `json:"type"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Price    float64 `json:"price"`
	SeasonID string  `json:"season_id,omitempty"`
}

type Breakdown struct {
	Total    float64   `json:"total"`
	Currency string    `json:"currency"`
	Nights   int       `json:"nights"`
	Segments []Segment `json:"segments"`
}

type Estimate struct {
	Min       float64    `json:"min"`
	Max       float64    `json:"max"`
	Currency  string     `json:"currency"`
	Breakdown Breakdowns `json:"breakdown"`
}

type Breakdowns struct {
	Min Breakdown `json:"min"`
	Max Breakdown `json:"max"`
}

// Quote is the live check result for a proposed stay.
type Quote struct {
	CheckIn    string      `json:"check_in"`
	CheckOut   string      `json:"check_out"`
	Nights     int         `json:"nights"`
	Valid      bool        `json:"valid"`
	Errors     []string    `json:"errors"`
	Violations []Violation `json:"violations"`
	Estimate   *Estimate   `json:"estimate"`
}

func MapQuote(checkIn, checkOut time.Time, q catalog.Quote) Quote {
	nights := daterange.DaysBetween(checkIn, checkOut)
	if nights < 0 {
		nights = 0
	}
	return Quote{
		CheckIn:    daterange.Format(daterange.Day(checkIn)),
		CheckOut:   daterange.Format(daterange.Day(checkOut)),
		Nights:     nights,
		Valid:      q.Validation.Valid,
		Errors:     q.Validation.Messages(),
		Violations: MapViolations(q.Validation.Violations),
		Estimate:   MapEstimate(q.Estimate),
	}
}

func MapViolations(vs []stayrules.Violation) []Violation {
	out := make([]Violation, 0, len(vs))
	for _, v := range vs {
		out = append(out, Violation{Code: string(v.Code), Message: v.Message})
	}
	return out
}

func MapEstimate(e *pricing.PriceEstimate) *Estimate {
	if e == nil {
		return nil
	}
	return &Estimate{
		Min:      e.Min.Major(),
		Max:      e.Max.Major(),
		Currency: e.Currency,
		Breakdown: Breakdowns{
			Min: mapBreakdown(e.Breakdown.Min),
			Max: mapBreakdown(e.Breakdown.Max),
		},
	}
}

func mapBreakdown(b pricing.Breakdown) Breakdown {
	out := Breakdown{
		Total:    b.Total.Major(),
		Currency: b.Currency,
		Nights:   b.Nights,
		Segments: make([]Segment, 0, len(b.Segments)),
	}
	for _, s := range b.Segments {
		out.Segments = append(out.Segments, Segment{
			Type:     string(s.Kind),
			Start:    daterange.Format(s.Start),
			End:      daterange.Format(s.End),
			Price:    s.Price.Major(),
			SeasonID: string(s.SeasonID),
		})
	}
	return out
}
