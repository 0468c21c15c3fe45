package stayrules

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"stayquote/internal/domain/shared/daterange"
)

var (
	ErrRuleNotFound   = errors.New("stayrules: rule not found")
	ErrNameRequired   = errors.New("stayrules: name is required")
	ErrMinNights      = errors.New("stayrules: min nights must be at least 1")
	ErrExactNights    = errors.New("stayrules: exact nights must be at least 1 when enforced")
	ErrExactBelowMin  = errors.New("stayrules: exact nights cannot be below min nights")
	ErrInvalidWeekday = errors.New("stayrules: weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrAmbiguousRule  = errors.New("stayrules: an overlapping rule with the same priority already exists")
)

type RuleID string

// Weekdays is a set of allowed days, 0 = Sunday .. 6 = Saturday. Empty means unrestricted.
type Weekdays []int

func (w Weekdays) Restricted() bool { return len(w) > 0 }

func (w Weekdays) Allows(day time.Weekday) bool {
	if !w.Restricted() {
		return true
	}
	for _, d := range w {
		if d == int(day) {
			return true
		}
	}
	return false
}

func (w Weekdays) validate() error {
	for _, d := range w {
		if d < 0 || d > 6 {
			return ErrInvalidWeekday
		}
	}
	return nil
}

// normalized returns a sorted copy without duplicates.
func (w Weekdays) normalized() Weekdays {
	if len(w) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(w))
	out := make(Weekdays, 0, len(w))
	for _, d := range w {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// Rule restricts stays whose check-in falls inside Range.
type Rule struct {
	ID                 RuleID
	Name               string
	Range              daterange.DateRange
	Priority           int
	MinNights          int
	EnforceExactNights bool
	ExactNights        *int
	AllowedCheckIn     Weekdays
	AllowedCheckOut    Weekdays
	CreatedAt          time.Time
}

type NewRuleParams struct {
	ID                 RuleID
	Name               string
	Range              daterange.DateRange
	Priority           int
	MinNights          int
	EnforceExactNights bool
	ExactNights        *int
	AllowedCheckIn     []int
	AllowedCheckOut    []int
	Now                time.Time
}

func NewRule(p NewRuleParams) (Rule, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Rule{}, ErrNameRequired
	}
	if err := p.Range.Validate(); err != nil {
		return Rule{}, err
	}
	minNights := p.MinNights
	if minNights == 0 {
		minNights = 1
	}
	if minNights < 1 {
		return Rule{}, ErrMinNights
	}
	if p.EnforceExactNights {
		if p.ExactNights == nil || *p.ExactNights < 1 {
			return Rule{}, ErrExactNights
		}
		if *p.ExactNights < minNights {
			return Rule{}, ErrExactBelowMin
		}
	}
	checkIn := Weekdays(p.AllowedCheckIn)
	checkOut := Weekdays(p.AllowedCheckOut)
	if err := checkIn.validate(); err != nil {
		return Rule{}, err
	}
	if err := checkOut.validate(); err != nil {
		return Rule{}, err
	}
	var exact *int
	if p.ExactNights != nil {
		v := *p.ExactNights
		exact = &v
	}
	return Rule{
		ID:                 p.ID,
		Name:               name,
		Range:              p.Range,
		Priority:           p.Priority,
		MinNights:          minNights,
		EnforceExactNights: p.EnforceExactNights,
		ExactNights:        exact,
		AllowedCheckIn:     checkIn.normalized(),
		AllowedCheckOut:    checkOut.normalized(),
		CreatedAt:          p.Now.UTC(),
	}, nil
}

// Applies reports whether a stay checking in on day is governed by the rule.
func (r Rule) Applies(checkIn time.Time) bool {
	return r.Range.ContainsDate(checkIn)
}

// outranks orders candidate rules: higher priority, then earlier start, then lower ID.
func (r Rule) outranks(other Rule) bool {
	if r.Priority != other.Priority {
		return r.Priority > other.Priority
	}
	if !r.Range.Start.Equal(other.Range.Start) {
		return r.Range.Start.Before(other.Range.Start)
	}
	return r.ID < other.ID
}

// Select returns the rule governing a check-in day, if any.
func Select(rules []Rule, checkIn time.Time) (Rule, bool) {
	var (
		best  Rule
		found bool
	)
	for _, r := range rules {
		if !r.Applies(checkIn) {
			continue
		}
		if !found || r.outranks(best) {
			best = r
			found = true
		}
	}
	return best, found
}

// EnsureUnambiguous rejects a candidate that would tie with an existing rule on some day.
func EnsureUnambiguous(existing []Rule, candidate Rule) error {
	for _, r := range existing {
		if r.ID == candidate.ID {
			continue
		}
		if r.Priority == candidate.Priority && r.Range.Overlaps(candidate.Range) {
			return ErrAmbiguousRule
		}
	}
	return nil
}

type Reader interface {
	List(ctx context.Context, window daterange.DateRange) ([]Rule, error)
}

type Repository interface {
	Reader
	Add(ctx context.Context, rule Rule) error
	Delete(ctx context.Context, id RuleID) (Rule, error)
}

func (r Rule) InWindow(window daterange.DateRange) bool {
	if window.IsZero() {
		return true
	}
	return r.Range.Overlaps(window)
}
