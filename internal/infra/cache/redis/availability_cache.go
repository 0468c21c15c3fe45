package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/policies"
	"stayquote/internal/domain/shared/daterange"
)

const (
	keyPrefix  = "availability"
	versionKey = keyPrefix + ":version"
)

// AvailabilityCache stores availability payloads in Redis. Invalidate bumps a
// generation counter so stale windows simply stop being addressed and expire by TTL.
type AvailabilityCache struct {
	cli    *goredis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewClient(addr string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: addr})
}

func NewAvailabilityCache(cli *goredis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{cli: cli, ttl: ttl, tracer: otel.Tracer("stayquote/cache")}
}

func (c *AvailabilityCache) Ping(ctx context.Context) error {
	return c.cli.WithContext(ctx).Ping().Err()
}

func (c *AvailabilityCache) Get(ctx context.Context, window daterange.DateRange) (dto.Availability, error) {
	ctx, span := c.tracer.Start(ctx, "AvailabilityCache.Get", trace.WithAttributes(attribute.String("window", window.String())))
	defer span.End()

	cli := c.cli.WithContext(ctx)
	key, err := c.key(cli, window)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.Availability{}, err
	}
	raw, err := cli.Get(key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return dto.Availability{}, policies.ErrCacheMiss
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.Availability{}, fmt.Errorf("redis get %s: %w", key, err)
	}
	var out dto.Availability
	if err := json.Unmarshal(raw, &out); err != nil {
		return dto.Availability{}, fmt.Errorf("decode cached availability: %w", err)
	}
	return out, nil
}

func (c *AvailabilityCache) Set(ctx context.Context, window daterange.DateRange, value dto.Availability) error {
	ctx, span := c.tracer.Start(ctx, "AvailabilityCache.Set", trace.WithAttributes(attribute.String("window", window.String())))
	defer span.End()

	cli := c.cli.WithContext(ctx)
	key, err := c.key(cli, window)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	if err := cli.Set(key, payload, c.ttl).Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *AvailabilityCache) Invalidate(ctx context.Context) error {
	if err := c.cli.WithContext(ctx).Incr(versionKey).Err(); err != nil {
		return fmt.Errorf("redis incr %s: %w", versionKey, err)
	}
	return nil
}

func (c *AvailabilityCache) key(cli *goredis.Client, window daterange.DateRange) (string, error) {
	version, err := cli.Get(versionKey).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return "", fmt.Errorf("redis get %s: %w", versionKey, err)
	}
	return windowKey(version, window), nil
}

func windowKey(version int64, window daterange.DateRange) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, version, window.String())
}

var _ policies.AvailabilityCache = (*AvailabilityCache)(nil)
