package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayquote/internal/domain/inquiry"
	"stayquote/internal/domain/shared/events"
)

type recordingOutbox struct {
	records []EventRecord
}

func (o *recordingOutbox) Add(_ context.Context, rec EventRecord) error {
	o.records = append(o.records, rec)
	return nil
}

func (o *recordingOutbox) Flush(context.Context) error { return nil }

func TestRecordDomainEventsEncodesInOrder(t *testing.T) {
	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	evs := []events.DomainEvent{
		inquiry.StatusChanged{InquiryID: "inq-1", From: inquiry.StatusNew, To: inquiry.StatusReplied, At: at},
		inquiry.StatusChanged{InquiryID: "inq-1", From: inquiry.StatusReplied, To: inquiry.StatusClosed, At: at},
	}
	box := &recordingOutbox{}
	ids := []string{"a", "b"}
	enc := JSONEventEncoder{
		IDGenerator: func() string { id := ids[0]; ids = ids[1:]; return id },
		Headers:     map[string]string{"source": "test"},
	}

	require.NoError(t, RecordDomainEvents(context.Background(), box, enc, evs))
	require.Len(t, box.records, 2)

	first := box.records[0]
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "inquiry.status_changed", first.Name)
	assert.Equal(t, "inq-1", first.Aggregate)
	assert.Equal(t, map[string]string{"source": "test", "event-name": "inquiry.status_changed"}, first.Headers)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(box.records[1].Payload, &payload))
	assert.Equal(t, "closed", payload["To"])
}

func TestRecordDomainEventsWithoutOutbox(t *testing.T) {
	assert.NoError(t, RecordDomainEvents(context.Background(), nil, nil, []events.DomainEvent{inquiry.Submitted{}}))
}
