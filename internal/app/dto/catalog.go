package dto

import (
	"stayquote/internal/domain/availability"
	"stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/money"
	"stayquote/internal/domain/stayrules"
)

// DateSpan is a sanitized blocked range: dates only, no reason or ID.
type DateSpan struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type BlockedRange struct {
	ID        string `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

type StayRule struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	Priority           int    `json:"priority"`
	MinNights          int    `json:"min_nights"`
	EnforceExactNights bool   `json:"enforce_exact_nights"`
	ExactNights        *int   `json:"exact_nights"`
	AllowedCheckInDOW  []int  `json:"allowed_check_in_dow"`
	AllowedCheckOutDOW []int  `json:"allowed_check_out_dow"`
}

type PricingSeason struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Currency   string   `json:"currency"`
	NightlyMin *float64 `json:"nightly_min"`
	NightlyMax *float64 `json:"nightly_max"`
}

// Availability is the public calendar payload for a window.
type Availability struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Blocked []DateSpan      `json:"blocked"`
	Rules   []StayRule      `json:"rules"`
	Seasons []PricingSeason `json:"seasons"`
}

func MapAvailability(window daterange.DateRange, blocked []availability.BlockedRange, rules []stayrules.Rule, seasons []pricing.Season) Availability {
	out := Availability{
		From:    daterange.Format(window.Start),
		To:      daterange.Format(window.End),
		Blocked: make([]DateSpan, 0, len(blocked)),
		Rules:   MapStayRules(rules),
		Seasons: MapSeasons(seasons),
	}
	for _, b := range blocked {
		out.Blocked = append(out.Blocked, DateSpan{StartDate: daterange.Format(b.Range.Start), EndDate: daterange.Format(b.Range.End)})
	}
	return out
}

func MapBlockedRanges(blocks []availability.BlockedRange) []BlockedRange {
	out := make([]BlockedRange, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, MapBlockedRange(b))
	}
	return out
}

func MapBlockedRange(b availability.BlockedRange) BlockedRange {
	return BlockedRange{
		ID:        string(b.ID),
		StartDate: daterange.Format(b.Range.Start),
		EndDate:   daterange.Format(b.Range.End),
		Reason:    b.Reason,
		CreatedAt: formatTimestamp(b.CreatedAt),
	}
}

func MapStayRules(rules []stayrules.Rule) []StayRule {
	out := make([]StayRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, MapStayRule(r))
	}
	return out
}

func MapStayRule(r stayrules.Rule) StayRule {
	return StayRule{
		ID:                 string(r.ID),
		Name:               r.Name,
		StartDate:          daterange.Format(r.Range.Start),
		EndDate:            daterange.Format(r.Range.End),
		Priority:           r.Priority,
		MinNights:          r.MinNights,
		EnforceExactNights: r.EnforceExactNights,
		ExactNights:        r.ExactNights,
		AllowedCheckInDOW:  append([]int(nil), r.AllowedCheckIn...),
		AllowedCheckOutDOW: append([]int(nil), r.AllowedCheckOut...),
	}
}

func MapSeasons(seasons []pricing.Season) []PricingSeason {
	out := make([]PricingSeason, 0, len(seasons))
	for _, s := range seasons {
		out = append(out, MapSeason(s))
	}
	return out
}

func MapSeason(s pricing.Season) PricingSeason {
	return PricingSeason{
		ID:         string(s.ID),
		Name:       s.Name,
		StartDate:  daterange.Format(s.Range.Start),
		EndDate:    daterange.Format(s.Range.End),
		Currency:   s.Currency,
		NightlyMin: majorPtr(s.NightlyMin, s.Currency),
		NightlyMax: majorPtr(s.NightlyMax, s.Currency),
	}
}

func majorPtr(amount *int64, currency string) *float64 {
	if amount == nil {
		return nil
	}
	v := money.Money{Amount: *amount, Currency: currency}.Major()
	return &v
}
