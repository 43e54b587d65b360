package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appstock "github.com/storefront/stockcore/internal/application/stock"
	"github.com/storefront/stockcore/internal/infrastructure/config"
)

// RedisSummaryCache caches per-tenant inventory summaries in Redis. Entries
// carry a short TTL and mutations invalidate eagerly, so a stale summary can
// only survive for the TTL window after a concurrent write.
type RedisSummaryCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	logger     *zap.Logger
}

// NewRedisSummaryCache creates a cache with its own Redis client
func NewRedisSummaryCache(cfg *config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSummaryCache{
		client:     client,
		ownsClient: true,
		ttl:        ttl,
		logger:     logger,
	}, nil
}

// NewRedisSummaryCacheWithClient creates a cache over a shared client. The
// caller retains ownership of the client.
func NewRedisSummaryCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSummaryCache {
	return &RedisSummaryCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func summaryKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("stockcore:summary:%s", tenantID.String())
}

// GetSummary returns the cached summary, or nil on a miss
func (c *RedisSummaryCache) GetSummary(ctx context.Context, tenantID uuid.UUID) (*appstock.InventorySummary, error) {
	data, err := c.client.Get(ctx, summaryKey(tenantID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary from cache: %w", err)
	}

	var summary appstock.InventorySummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// corrupt entry, drop it and report a miss
		c.logger.Warn("dropping unreadable cached summary",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		c.client.Del(ctx, summaryKey(tenantID))
		return nil, nil
	}
	return &summary, nil
}

// SetSummary stores a summary with the configured TTL
func (c *RedisSummaryCache) SetSummary(ctx context.Context, tenantID uuid.UUID, summary *appstock.InventorySummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(tenantID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// InvalidateSummary drops the tenant's cached summary
func (c *RedisSummaryCache) InvalidateSummary(ctx context.Context, tenantID uuid.UUID) error {
	if err := c.client.Del(ctx, summaryKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary: %w", err)
	}
	return nil
}

// Close releases the Redis client if this cache created it
func (c *RedisSummaryCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ appstock.SummaryCache = (*RedisSummaryCache)(nil)
