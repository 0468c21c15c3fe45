package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayquote/internal/app/policies"
	domainavailability "stayquote/internal/domain/availability"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/infra/storage/memory"
)

var today = time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := daterange.ParseDay(s)
	require.NoError(t, err)
	return d
}

func newFactory(t *testing.T, blocks ...domainavailability.BlockedRange) (*memory.Factory, *memory.BlockedRangeRepository) {
	t.Helper()
	repo := memory.NewBlockedRangeRepository()
	for _, b := range blocks {
		require.NoError(t, repo.Add(context.Background(), b))
	}
	return memory.NewFactory(repo, memory.NewStayRuleRepository(), memory.NewSeasonRepository(), memory.NewInquiryRepository()), repo
}

func TestGetAvailabilityDefaultsWindowToToday(t *testing.T) {
	factory, _ := newFactory(t)
	h := &GetAvailabilityHandler{UoWFactory: factory, Clock: policies.ClockFunc(func() time.Time { return today }), WindowMonths: 6}

	got, err := h.Handle(context.Background(), GetAvailabilityQuery{})
	require.NoError(t, err)
	assert.Equal(t, "2026-05-01", got.From)
	assert.Equal(t, "2026-11-01", got.To)
	assert.Empty(t, got.Blocked)
}

func TestGetAvailabilityRejectsHugeWindow(t *testing.T) {
	factory, _ := newFactory(t)
	h := &GetAvailabilityHandler{UoWFactory: factory}

	_, err := h.Handle(context.Background(), GetAvailabilityQuery{From: day(t, "2026-01-01"), To: day(t, "2030-01-01")})
	assert.ErrorIs(t, err, ErrWindowTooLarge)

	_, err = h.Handle(context.Background(), GetAvailabilityQuery{From: day(t, "2026-02-01"), To: day(t, "2026-01-01")})
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestGetAvailabilityServesFromCacheUntilInvalidated(t *testing.T) {
	factory, repo := newFactory(t)
	cache := memory.NewAvailabilityCache(time.Hour)
	h := &GetAvailabilityHandler{UoWFactory: factory, Cache: cache}
	q := GetAvailabilityQuery{From: day(t, "2026-07-01"), To: day(t, "2026-08-01")}

	first, err := h.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, first.Blocked)

	require.NoError(t, repo.Add(context.Background(), domainavailability.BlockedRange{
		ID:    "b1",
		Range: daterange.DateRange{Start: day(t, "2026-07-10"), End: day(t, "2026-07-12")},
	}))
	cached, err := h.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, cached.Blocked)

	require.NoError(t, cache.Invalidate(context.Background()))
	fresh, err := h.Handle(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, fresh.Blocked, 1)
	assert.Equal(t, "2026-07-10", fresh.Blocked[0].StartDate)
}

func TestCheckStay(t *testing.T) {
	factory, _ := newFactory(t, domainavailability.BlockedRange{
		ID:    "b1",
		Range: daterange.DateRange{Start: day(t, "2026-07-10"), End: day(t, "2026-07-12")},
	})
	h := &CheckStayHandler{UoWFactory: factory}

	blocked, err := h.Handle(context.Background(), CheckStayQuery{CheckIn: day(t, "2026-07-09"), CheckOut: day(t, "2026-07-11")})
	require.NoError(t, err)
	assert.False(t, blocked.Valid)
	assert.Equal(t, []string{"Selected dates are not available"}, blocked.Errors)
	assert.Nil(t, blocked.Estimate)

	inverted, err := h.Handle(context.Background(), CheckStayQuery{CheckIn: day(t, "2026-07-09"), CheckOut: day(t, "2026-07-09")})
	require.NoError(t, err)
	assert.False(t, inverted.Valid)
	assert.Equal(t, []string{"Check-out date must be after check-in date"}, inverted.Errors)

	free, err := h.Handle(context.Background(), CheckStayQuery{CheckIn: day(t, "2026-07-12"), CheckOut: day(t, "2026-07-15")})
	require.NoError(t, err)
	assert.True(t, free.Valid)
	assert.Equal(t, 3, free.Nights)
	assert.Nil(t, free.Estimate)
}
