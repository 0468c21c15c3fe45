package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"stayquote/internal/app/middleware"
)

// CloudEvent is the envelope written by the outbox worker.
type CloudEvent struct {
	SpecVersion string          `json:"specversion"`
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	Subject     string          `json:"subject"`
	Data        json.RawMessage `json:"data"`
}

// Deduper records delivered event ids; Seen reports true for a repeat.
// Forget drops a marker so a redelivery is applied again.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// CacheInvalidator drops cached availability when another instance changes the catalog.
type CacheInvalidator struct {
	Cache  middleware.Invalidator
	Inbox  Deduper
	Logger *slog.Logger
}

func (h CacheInvalidator) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt CloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger().Warn("skipping malformed cloudevent", "topic", msg.Topic, "offset", msg.Offset, "err", err)
		return nil
	}
	if !IsCatalogEvent(evt.Type) {
		return nil
	}
	if h.Inbox != nil && evt.ID != "" {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return fmt.Errorf("inbox %s: %w", evt.ID, err)
		}
		if seen {
			return nil
		}
	}
	if err := h.Cache.Invalidate(ctx); err != nil {
		if h.Inbox != nil && evt.ID != "" {
			if ferr := h.Inbox.Forget(ctx, evt.ID); ferr != nil {
				h.logger().Error("inbox marker kept after failed invalidation", "id", evt.ID, "err", ferr)
			}
		}
		return fmt.Errorf("invalidate availability cache: %w", err)
	}
	h.logger().Info("availability cache invalidated", "event", evt.Type, "id", evt.ID)
	return nil
}

func IsCatalogEvent(eventType string) bool {
	return strings.HasPrefix(eventType, "catalog.")
}

func (h CacheInvalidator) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
