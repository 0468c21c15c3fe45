package content

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/outbox"
	domaincontent "stayquote/internal/domain/content"
	"stayquote/internal/infra/storage/memory"
)

type fixture struct {
	factory *memory.Factory
	box     *memory.Outbox
	records []outbox.EventRecord
	now     time.Time
}

func newFixture() *fixture {
	f := &fixture{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	f.factory = memory.NewFactory(
		memory.NewBlockedRangeRepository(),
		memory.NewStayRuleRepository(),
		memory.NewSeasonRepository(),
		memory.NewInquiryRepository(),
	)
	f.box = memory.NewOutbox(func(_ context.Context, rec outbox.EventRecord) error {
		f.records = append(f.records, rec)
		return nil
	})
	return f
}

func (f *fixture) upsert(key, text string) (dto.ContentField, error) {
	h := &UpsertHandler{UoWFactory: f.factory, Outbox: f.box, Encoder: outbox.JSONEventEncoder{}, Now: func() time.Time { return f.now }}
	res, err := h.Handle(context.Background(), UpsertCommand{ContentKey: key, Text: text})
	if err == nil {
		_ = f.box.Flush(context.Background())
	}
	return res, err
}

func TestSiteContentServesDefaultsUntilEdited(t *testing.T) {
	f := newFixture()
	read := &SiteContentHandler{UoWFactory: f.factory}

	site, err := read.Handle(context.Background(), SiteContentQuery{})
	require.NoError(t, err)
	assert.Equal(t, "A masterpiece of light and space.", site[domaincontent.HomeQuoteKey].Text)
	assert.Equal(t, "", site[domaincontent.WelcomeKey].Text)

	_, err = f.upsert(domaincontent.HomeQuoteKey, "  Sunlight on stone.  ")
	require.NoError(t, err)

	site, err = read.Handle(context.Background(), SiteContentQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Sunlight on stone.", site[domaincontent.HomeQuoteKey].Text)
}

func TestUpsertRecordsContentUpdated(t *testing.T) {
	f := newFixture()

	res, err := f.upsert(domaincontent.WelcomeKey, "We built this house in 1962.\n\nCome stay.")
	require.NoError(t, err)
	require.Len(t, f.records, 1)
	assert.Equal(t, "content.updated", f.records[0].Name)
	assert.Equal(t, domaincontent.Aggregate, f.records[0].Aggregate)

	var payload domaincontent.Updated
	require.NoError(t, json.Unmarshal(f.records[0].Payload, &payload))
	assert.Equal(t, domaincontent.WelcomeKey, payload.Key)
	assert.Equal(t, domaincontent.KindTextarea, payload.Kind)

	fields, err := (&ListFieldsHandler{UoWFactory: f.factory}).Handle(context.Background(), ListFieldsQuery{})
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, res, fields[1])
	assert.True(t, fields[1].Custom)
	assert.Equal(t, "2026-05-01T10:00:00Z", fields[1].UpdatedAt)
	assert.False(t, fields[0].Custom)
}

func TestUpsertRejectsBadText(t *testing.T) {
	f := newFixture()

	_, err := f.upsert("footer_text", "hi")
	assert.ErrorIs(t, err, domaincontent.ErrUnknownKey)
	_, err = f.upsert(domaincontent.HomeQuoteKey, "line one\nline two")
	assert.ErrorIs(t, err, domaincontent.ErrSingleLine)
	assert.Empty(t, f.records)

	assert.ErrorIs(t, UpsertCommand{ContentKey: domaincontent.WelcomeKey, Text: "   "}.Check(), domaincontent.ErrTextRequired)
	assert.NoError(t, UpsertCommand{ContentKey: domaincontent.WelcomeKey, Text: "ok"}.Check())
}
