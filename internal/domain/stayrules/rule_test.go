package stayrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBreaksTiesDeterministically(t *testing.T) {
	rules := []Rule{
		{ID: "b", Range: span(t, "2026-07-01", "2026-09-01"), Priority: 2},
		{ID: "a", Range: span(t, "2026-07-01", "2026-09-01"), Priority: 2},
		{ID: "c", Range: span(t, "2026-06-01", "2026-09-01"), Priority: 2},
		{ID: "d", Range: span(t, "2026-01-01", "2026-12-31"), Priority: 1},
	}
	got, ok := Select(rules, mustDay(t, "2026-08-01"))
	require.True(t, ok)
	assert.Equal(t, RuleID("c"), got.ID, "earliest start wins on equal priority")

	got, ok = Select(rules[:2], mustDay(t, "2026-08-01"))
	require.True(t, ok)
	assert.Equal(t, RuleID("a"), got.ID, "lowest id wins when start matches too")

	got, ok = Select(rules[1:], mustDay(t, "2026-08-01"))
	require.True(t, ok)
	assert.Equal(t, RuleID("c"), got.ID, "order of the input does not matter")

	_, ok = Select(rules, mustDay(t, "2027-01-01"))
	assert.False(t, ok)
}

func TestNewRuleValidation(t *testing.T) {
	base := NewRuleParams{ID: "r1", Name: "Summer", Range: span(t, "2026-06-01", "2026-09-01"), MinNights: 3}

	rule, err := NewRule(base)
	require.NoError(t, err)
	assert.Equal(t, 3, rule.MinNights)
	assert.Nil(t, rule.AllowedCheckIn)

	p := base
	p.Name = "  "
	_, err = NewRule(p)
	assert.ErrorIs(t, err, ErrNameRequired)

	p = base
	p.MinNights = -1
	_, err = NewRule(p)
	assert.ErrorIs(t, err, ErrMinNights)

	p = base
	p.MinNights = 0
	rule, err = NewRule(p)
	require.NoError(t, err)
	assert.Equal(t, 1, rule.MinNights)

	p = base
	p.EnforceExactNights = true
	_, err = NewRule(p)
	assert.ErrorIs(t, err, ErrExactNights)

	p.ExactNights = intPtr(2)
	_, err = NewRule(p)
	assert.ErrorIs(t, err, ErrExactBelowMin)

	p = base
	p.AllowedCheckIn = []int{6, 7}
	_, err = NewRule(p)
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	p = base
	p.AllowedCheckOut = []int{6, 0, 6}
	rule, err = NewRule(p)
	require.NoError(t, err)
	assert.Equal(t, Weekdays{0, 6}, rule.AllowedCheckOut)
}

func TestEnsureUnambiguous(t *testing.T) {
	existing := []Rule{{ID: "a", Range: span(t, "2026-06-01", "2026-09-01"), Priority: 2}}

	err := EnsureUnambiguous(existing, Rule{ID: "b", Range: span(t, "2026-08-01", "2026-10-01"), Priority: 2})
	assert.ErrorIs(t, err, ErrAmbiguousRule)

	assert.NoError(t, EnsureUnambiguous(existing, Rule{ID: "b", Range: span(t, "2026-08-01", "2026-10-01"), Priority: 3}))
	assert.NoError(t, EnsureUnambiguous(existing, Rule{ID: "b", Range: span(t, "2026-09-01", "2026-10-01"), Priority: 2}))
}
