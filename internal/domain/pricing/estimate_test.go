package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/money"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := daterange.ParseDay(s)
	require.NoError(t, err)
	return d
}

func amount(v int64) *int64 { return &v }

func season(t *testing.T, id, start, end string, minMajor, maxMajor int64) Season {
	t.Helper()
	return Season{
		ID:         SeasonID(id),
		Name:       id,
		Range:      daterange.DateRange{Start: mustDay(t, start), End: mustDay(t, end)},
		Currency:   "USD",
		NightlyMin: amount(minMajor * 100),
		NightlyMax: amount(maxMajor * 100),
	}
}

func TestEstimateSumsNightlyRates(t *testing.T) {
	seasons := []Season{season(t, "summer", "2026-06-01", "2026-09-01", 500, 700)}

	est, ok := Estimate(mustDay(t, "2026-06-10"), mustDay(t, "2026-06-13"), seasons)
	require.True(t, ok)
	assert.Equal(t, money.Must(150000, "USD"), est.Min)
	assert.Equal(t, money.Must(210000, "USD"), est.Max)
	assert.Equal(t, "USD", est.Currency)
	assert.InDelta(t, 1500.0, est.Min.Major(), 1e-9)
	assert.InDelta(t, 2100.0, est.Max.Major(), 1e-9)

	assert.Equal(t, 3, est.Breakdown.Min.Nights)
	require.Len(t, est.Breakdown.Min.Segments, 3)
	require.Len(t, est.Breakdown.Max.Segments, 3)
	first := est.Breakdown.Min.Segments[0]
	assert.Equal(t, SegmentNight, first.Kind)
	assert.Equal(t, mustDay(t, "2026-06-10"), first.Start)
	assert.Equal(t, mustDay(t, "2026-06-11"), first.End)
	assert.Equal(t, int64(50000), first.Price.Amount)
	assert.Equal(t, SeasonID("summer"), first.SeasonID)
	assert.Equal(t, int64(70000), est.Breakdown.Max.Segments[2].Price.Amount)
	assert.Equal(t, est.Min, est.Breakdown.Min.Total)
	assert.Equal(t, est.Max, est.Breakdown.Max.Total)
}

func TestEstimateAcrossSeasonBoundary(t *testing.T) {
	seasons := []Season{
		season(t, "high", "2026-06-15", "2026-09-01", 800, 1000),
		season(t, "shoulder", "2026-06-01", "2026-06-15", 500, 700),
	}
	est, ok := Estimate(mustDay(t, "2026-06-13"), mustDay(t, "2026-06-17"), seasons)
	require.True(t, ok)
	// two shoulder nights and two high nights
	assert.Equal(t, int64(2*50000+2*80000), est.Min.Amount)
	assert.Equal(t, int64(2*70000+2*100000), est.Max.Amount)

	var ids []SeasonID
	for _, seg := range est.Breakdown.Max.Segments {
		ids = append(ids, seg.SeasonID)
	}
	assert.Equal(t, []SeasonID{"shoulder", "shoulder", "high", "high"}, ids)
}

func TestEstimateReturnsNothingOnPartialCoverage(t *testing.T) {
	seasons := []Season{season(t, "early", "2026-06-01", "2026-06-15", 500, 700)}
	est, ok := Estimate(mustDay(t, "2026-06-10"), mustDay(t, "2026-06-20"), seasons)
	assert.False(t, ok)
	assert.Nil(t, est)
}

func TestEstimateReturnsNothingForUnpricedSeason(t *testing.T) {
	s := season(t, "tbd", "2026-06-01", "2026-07-01", 500, 700)
	s.NightlyMax = nil
	_, ok := Estimate(mustDay(t, "2026-06-10"), mustDay(t, "2026-06-12"), []Season{s})
	assert.False(t, ok)
}

func TestEstimateReturnsNothingForEmptyStay(t *testing.T) {
	seasons := []Season{season(t, "summer", "2026-06-01", "2026-09-01", 500, 700)}
	_, ok := Estimate(mustDay(t, "2026-06-10"), mustDay(t, "2026-06-10"), seasons)
	assert.False(t, ok)
	_, ok = Estimate(mustDay(t, "2026-06-10"), mustDay(t, "2026-06-08"), seasons)
	assert.False(t, ok)
}

func TestEstimateCurrencyFromFirstNight(t *testing.T) {
	eur := season(t, "eur", "2026-05-01", "2026-06-01", 400, 600)
	eur.Currency = "EUR"
	usd := season(t, "usd", "2026-06-01", "2026-07-01", 500, 700)
	est, ok := Estimate(mustDay(t, "2026-06-02"), mustDay(t, "2026-06-04"), []Season{eur, usd})
	require.True(t, ok)
	assert.Equal(t, "USD", est.Currency)
}

func TestEstimateOverlappingSeasonsIsDeterministic(t *testing.T) {
	a := season(t, "a", "2026-06-01", "2026-07-01", 500, 700)
	b := season(t, "b", "2026-06-10", "2026-07-01", 900, 900)
	forward, ok := Estimate(mustDay(t, "2026-06-12"), mustDay(t, "2026-06-14"), []Season{a, b})
	require.True(t, ok)
	backward, ok := Estimate(mustDay(t, "2026-06-12"), mustDay(t, "2026-06-14"), []Season{b, a})
	require.True(t, ok)
	assert.Equal(t, forward, backward)
	assert.Equal(t, int64(2*50000), forward.Min.Amount)
}

func TestEstimateIsIdempotent(t *testing.T) {
	seasons := []Season{season(t, "summer", "2026-06-01", "2026-09-01", 500, 700)}
	first, _ := Estimate(mustDay(t, "2026-07-01"), mustDay(t, "2026-07-08"), seasons)
	second, _ := Estimate(mustDay(t, "2026-07-01"), mustDay(t, "2026-07-08"), seasons)
	assert.Equal(t, first, second)
}

func TestNewSeasonValidation(t *testing.T) {
	r := daterange.DateRange{Start: mustDay(t, "2026-06-01"), End: mustDay(t, "2026-07-01")}
	lo := money.Must(50000, "USD")
	hi := money.Must(70000, "USD")

	s, err := NewSeason(NewSeasonParams{ID: "s", Name: "June", Range: r, NightlyMin: &lo, NightlyMax: &hi})
	require.NoError(t, err)
	assert.Equal(t, "USD", s.Currency)
	assert.True(t, s.Priced())

	_, err = NewSeason(NewSeasonParams{ID: "s", Name: "June", Range: r, NightlyMin: &hi, NightlyMax: &lo})
	assert.ErrorIs(t, err, ErrMinAboveMax)

	neg := money.Must(-1, "USD")
	_, err = NewSeason(NewSeasonParams{ID: "s", Name: "June", Range: r, NightlyMin: &neg})
	assert.ErrorIs(t, err, ErrNegativeComponent)

	_, err = NewSeason(NewSeasonParams{ID: "s", Name: "June", Range: r, Currency: "EUR", NightlyMin: &lo})
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	_, err = NewSeason(NewSeasonParams{ID: "s", Name: "", Range: r})
	assert.ErrorIs(t, err, ErrNameRequired)

	unpriced, err := NewSeason(NewSeasonParams{ID: "s", Name: "TBD", Range: r})
	require.NoError(t, err)
	assert.False(t, unpriced.Priced())
}

func TestEnsureNoOverlap(t *testing.T) {
	existing := []Season{season(t, "a", "2026-06-01", "2026-07-01", 1, 1)}
	assert.ErrorIs(t, EnsureNoOverlap(existing, season(t, "b", "2026-06-30", "2026-07-10", 1, 1)), ErrSeasonOverlap)
	assert.NoError(t, EnsureNoOverlap(existing, season(t, "b", "2026-07-01", "2026-07-10", 1, 1)))
}
