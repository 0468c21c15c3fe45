package stayrules

import (
	"fmt"
	"time"

	"stayquote/internal/domain/availability"
	"stayquote/internal/domain/shared/daterange"
)

type ViolationCode string

const (
	CodeInvalidRange ViolationCode = "invalid_range"
	CodeUnavailable  ViolationCode = "unavailable"
	CodeMinNights    ViolationCode = "min_nights"
	CodeExactNights  ViolationCode = "exact_nights"
	CodeCheckInDay   ViolationCode = "check_in_day"
	CodeCheckOutDay  ViolationCode = "check_out_day"
)

type Violation struct {
	Code    ViolationCode
	Message string
}

func (v Violation) Error() string { return v.Message }

// Result is the outcome of Validate. Violations keep the order in which checks ran.
type Result struct {
	Valid      bool
	Violations []Violation
	// Rule is the rule that was enforced, nil when none applied.
	Rule *Rule
}

func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Message)
	}
	return out
}

// FirstMessage is what end users usually see.
func (r Result) FirstMessage() string {
	if len(r.Violations) == 0 {
		return ""
	}
	return r.Violations[0].Message
}

// Err returns nil for a valid result and a *RejectedError otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &RejectedError{Result: r}
}

// RejectedError carries an invalid Result through error returns.
type RejectedError struct {
	Result Result
}

func (e *RejectedError) Error() string { return e.Result.FirstMessage() }

func invalid(v Violation) Result {
	return Result{Valid: false, Violations: []Violation{v}}
}

// Validate decides whether [checkIn, checkOut) can be requested.
//
// A non-positive night count and a blackout overlap are terminal. Otherwise the rule
// governing checkIn is selected and all of its constraints are reported together.
// Stays with no governing rule are accepted.
func Validate(checkIn, checkOut time.Time, rules []Rule, blocked []availability.BlockedRange) Result {
	checkIn, checkOut = daterange.Day(checkIn), daterange.Day(checkOut)
	nights := daterange.DaysBetween(checkIn, checkOut)
	if nights < 1 {
		return invalid(Violation{Code: CodeInvalidRange, Message: "Check-out date must be after check-in date"})
	}

	stay := daterange.DateRange{Start: checkIn, End: checkOut}
	if availability.Overlapping(stay, blocked) {
		return invalid(Violation{Code: CodeUnavailable, Message: "Selected dates are not available"})
	}

	rule, ok := Select(rules, checkIn)
	if !ok {
		return Result{Valid: true}
	}

	var violations []Violation
	if nights < rule.MinNights {
		violations = append(violations, Violation{
			Code:    CodeMinNights,
			Message: fmt.Sprintf("Minimum stay for this period is %d nights", rule.MinNights),
		})
	}
	if rule.EnforceExactNights && rule.ExactNights != nil && nights != *rule.ExactNights {
		violations = append(violations, Violation{
			Code:    CodeExactNights,
			Message: fmt.Sprintf("Stay must be exactly %d nights", *rule.ExactNights),
		})
	}
	if !rule.AllowedCheckIn.Allows(checkIn.Weekday()) {
		violations = append(violations, Violation{Code: CodeCheckInDay, Message: "Check-in not allowed on this day"})
	}
	if !rule.AllowedCheckOut.Allows(checkOut.Weekday()) {
		violations = append(violations, Violation{Code: CodeCheckOutDay, Message: "Check-out not allowed on this day"})
	}

	return Result{Valid: len(violations) == 0, Violations: violations, Rule: &rule}
}
