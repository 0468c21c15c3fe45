package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/middleware"
	appoutbox "stayquote/internal/app/outbox"
	"stayquote/internal/app/policies"
	"stayquote/internal/app/uow"
	domainavailability "stayquote/internal/domain/availability"
	domaincontent "stayquote/internal/domain/content"
	domaininquiry "stayquote/internal/domain/inquiry"
	"stayquote/internal/domain/shared/daterange"
)

func window(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return dr
}

func TestBlockedRangesListByWindowAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewBlockedRangeRepository()
	require.NoError(t, repo.Add(ctx, domainavailability.BlockedRange{ID: "b", Range: window(t, "2026-08-01", "2026-08-05")}))
	require.NoError(t, repo.Add(ctx, domainavailability.BlockedRange{ID: "a", Range: window(t, "2026-07-01", "2026-07-05")}))

	all, err := repo.List(ctx, daterange.DateRange{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domainavailability.BlockedRangeID("a"), all[0].ID)

	july, err := repo.List(ctx, window(t, "2026-07-04", "2026-08-01"))
	require.NoError(t, err)
	require.Len(t, july, 1)
	assert.Equal(t, domainavailability.BlockedRangeID("a"), july[0].ID)

	removed, err := repo.Delete(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domainavailability.BlockedRangeID("a"), removed.ID)
	_, err = repo.Delete(ctx, "a")
	assert.ErrorIs(t, err, domainavailability.ErrRangeNotFound)
}

func newInquiry(t *testing.T, id string, created time.Time) *domaininquiry.Inquiry {
	t.Helper()
	inq, err := domaininquiry.Submit(domaininquiry.SubmitParams{
		ID:      domaininquiry.InquiryID(id),
		Stay:    window(t, "2026-09-01", "2026-09-04"),
		Guests:  2,
		Contact: domaininquiry.Contact{FullName: "Guest " + id, Email: id + "@example.com"},
		Now:     created,
	})
	require.NoError(t, err)
	return inq
}

func TestInquiryRepositoryVersioningAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewInquiryRepository()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"q1", "q2", "q3"} {
		require.NoError(t, repo.Save(ctx, newInquiry(t, id, base.Add(time.Duration(i)*time.Hour))))
	}

	stale, err := repo.ByID(ctx, "q2")
	require.NoError(t, err)
	fresh, err := repo.ByID(ctx, "q2")
	require.NoError(t, err)
	require.NoError(t, fresh.ChangeStatus(domaininquiry.StatusReplied, base))
	require.NoError(t, repo.Save(ctx, fresh))
	require.NoError(t, stale.ChangeStatus(domaininquiry.StatusClosed, base))
	assert.ErrorIs(t, repo.Save(ctx, stale), domaininquiry.ErrVersionConflict)

	page, total, err := repo.List(ctx, domaininquiry.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, domaininquiry.InquiryID("q3"), page[0].ID)
	assert.Equal(t, domaininquiry.InquiryID("q2"), page[1].ID)

	replied, total, err := repo.List(ctx, domaininquiry.ListFilter{Status: domaininquiry.StatusReplied})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, domaininquiry.InquiryID("q2"), replied[0].ID)

	past, _, err := repo.List(ctx, domaininquiry.ListFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestWritableUnitsAreSerialized(t *testing.T) {
	f := NewFactory(NewBlockedRangeRepository(), NewStayRuleRepository(), NewSeasonRepository(), NewInquiryRepository())
	first, err := f.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := f.Begin(context.Background(), uow.TxOptions{})
		if err == nil {
			close(acquired)
			_ = second.Commit(context.Background())
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second writable unit started before the first finished")
	case <-time.After(20 * time.Millisecond):
	}

	reader, err := f.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	require.NoError(t, reader.Rollback(context.Background()))

	require.NoError(t, first.Commit(context.Background()))
	require.NoError(t, first.Rollback(context.Background()))
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second writable unit never started")
	}
}

func TestOutboxFlushDeliversToSubscribers(t *testing.T) {
	var got []string
	box := NewOutbox(func(_ context.Context, rec appoutbox.EventRecord) error {
		got = append(got, rec.Name)
		return nil
	})
	box.Subscribe(func(context.Context, appoutbox.EventRecord) error { return errors.New("down") })

	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{Name: "a"}))
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{Name: "b"}))
	err := box.Flush(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	require.NoError(t, box.Flush(context.Background()))
	assert.Len(t, got, 2)
}

func TestOutboxDiscardDropsPendingRecords(t *testing.T) {
	var got []string
	box := NewOutbox(func(_ context.Context, rec appoutbox.EventRecord) error {
		got = append(got, rec.Name)
		return nil
	})
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{Name: "rolled-back"}))
	box.Discard(context.Background())
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{Name: "committed"}))
	require.NoError(t, box.Flush(context.Background()))
	assert.Equal(t, []string{"committed"}, got)
}

func TestOutboxBatchesAreIsolated(t *testing.T) {
	var got []string
	box := NewOutbox(func(_ context.Context, rec appoutbox.EventRecord) error {
		got = append(got, rec.Name)
		return nil
	})
	failed := appoutbox.WithBatch(context.Background())
	committed := appoutbox.WithBatch(context.Background())

	require.NoError(t, box.Add(failed, appoutbox.EventRecord{Name: "catalog.season_added"}))
	require.NoError(t, box.Add(committed, appoutbox.EventRecord{Name: "inquiry.submitted"}))
	box.Discard(failed)
	require.NoError(t, box.Flush(committed))
	assert.Equal(t, []string{"inquiry.submitted"}, got)

	require.NoError(t, box.Flush(context.Background()))
	assert.Len(t, got, 1)
}

func TestContentRepositoryUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepository()

	_, err := repo.Get(ctx, domaincontent.WelcomeKey)
	assert.ErrorIs(t, err, domaincontent.ErrBlockNotFound)

	first, err := domaincontent.NewBlock(domaincontent.WelcomeKey, "Hello", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))
	second, err := domaincontent.NewBlock(domaincontent.WelcomeKey, "Hello again", time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))
	quote, err := domaincontent.NewBlock(domaincontent.HomeQuoteKey, "Bright", time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, quote))

	got, err := repo.Get(ctx, domaincontent.WelcomeKey)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", got.Text)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domaincontent.HomeQuoteKey, all[0].Key)
}

func TestAvailabilityCacheExpiresAndInvalidates(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	cache := NewAvailabilityCache(time.Minute)
	cache.now = func() time.Time { return now }
	w := window(t, "2026-06-01", "2027-12-01")

	_, err := cache.Get(ctx, w)
	assert.ErrorIs(t, err, policies.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, w, dto.Availability{From: "2026-06-01"}))
	got, err := cache.Get(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", got.From)

	now = now.Add(2 * time.Minute)
	_, err = cache.Get(ctx, w)
	assert.ErrorIs(t, err, policies.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, w, dto.Availability{}))
	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.Get(ctx, w)
	assert.ErrorIs(t, err, policies.ErrCacheMiss)
}

func TestIdempotencyStoreTTL(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore(time.Hour)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(context.Background(), middlewareRecord("k", now)))

	_, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(2 * time.Hour)
	_, found, err = store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func middlewareRecord(key string, at time.Time) middleware.IdempotencyRecord {
	return middleware.IdempotencyRecord{Key: key, Payload: []byte(`{}`), OccurredAt: at}
}
