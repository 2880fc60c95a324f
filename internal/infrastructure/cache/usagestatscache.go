package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pagemark/internal/shared/logger"
)

// CachedUsageStats is the server-side cached view of a user's current-month
// usage. It exists to keep the hot stats endpoint off the database; the
// ledger stays authoritative and the cache is invalidated on every write.
type CachedUsageStats struct {
	Tier          string
	MonthlyQuota  int64
	DailyQuota    int64
	TotalRequests uint64
	TotalTokens   uint64
	TotalCostUSD  float64
	AnalysisCount int64
	DailyCount    int64
	ResetDateUnix int64
	PeriodMonth   string
}

// UsageStatsCache defines the interface for usage stats caching
type UsageStatsCache interface {
	GetStats(ctx context.Context, userID string) (*CachedUsageStats, error)
	SetStats(ctx context.Context, userID string, stats *CachedUsageStats) error
	InvalidateStats(ctx context.Context, userID string) error
}

const (
	statsKeyPrefix = "usage:stats:"
	baseStatsTTL   = 2 * time.Minute
	statsTTLJitter = 30 * time.Second // TTL range: 2:00-2:30 (anti-stampede)

	fieldTier          = "tier"
	fieldMonthlyQuota  = "monthly_quota"
	fieldDailyQuota    = "daily_quota"
	fieldTotalRequests = "total_requests"
	fieldTotalTokens   = "total_tokens"
	fieldTotalCostUSD  = "total_cost_usd"
	fieldAnalysisCount = "analysis_count"
	fieldDailyCount    = "daily_count"
	fieldResetDate     = "reset_date"
	fieldPeriodMonth   = "period_month"
)

// RedisUsageStatsCache implements UsageStatsCache using Redis Hash
type RedisUsageStatsCache struct {
	client *redis.Client
	logger logger.Interface
}

// NewRedisUsageStatsCache creates a new Redis-based usage stats cache
func NewRedisUsageStatsCache(client *redis.Client, logger logger.Interface) *RedisUsageStatsCache {
	return &RedisUsageStatsCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisUsageStatsCache) key(userID string) string {
	return statsKeyPrefix + userID
}

// GetStats retrieves usage stats from cache. A nil result means cache miss.
func (c *RedisUsageStatsCache) GetStats(ctx context.Context, userID string) (*CachedUsageStats, error) {
	key := c.key(userID)

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get usage stats from cache: %w", err)
	}

	if len(result) == 0 {
		return nil, nil // Cache miss
	}

	stats := &CachedUsageStats{
		Tier:        result[fieldTier],
		PeriodMonth: result[fieldPeriodMonth],
	}

	if v, ok := result[fieldMonthlyQuota]; ok {
		stats.MonthlyQuota, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := result[fieldDailyQuota]; ok {
		stats.DailyQuota, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := result[fieldTotalRequests]; ok {
		stats.TotalRequests, _ = strconv.ParseUint(v, 10, 64)
	}
	if v, ok := result[fieldTotalTokens]; ok {
		stats.TotalTokens, _ = strconv.ParseUint(v, 10, 64)
	}
	if v, ok := result[fieldTotalCostUSD]; ok {
		stats.TotalCostUSD, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := result[fieldAnalysisCount]; ok {
		stats.AnalysisCount, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := result[fieldDailyCount]; ok {
		stats.DailyCount, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := result[fieldResetDate]; ok {
		stats.ResetDateUnix, _ = strconv.ParseInt(v, 10, 64)
	}

	return stats, nil
}

// SetStats stores usage stats in cache
func (c *RedisUsageStatsCache) SetStats(ctx context.Context, userID string, stats *CachedUsageStats) error {
	key := c.key(userID)

	fields := map[string]interface{}{
		fieldTier:          stats.Tier,
		fieldMonthlyQuota:  stats.MonthlyQuota,
		fieldDailyQuota:    stats.DailyQuota,
		fieldTotalRequests: stats.TotalRequests,
		fieldTotalTokens:   stats.TotalTokens,
		fieldTotalCostUSD:  stats.TotalCostUSD,
		fieldAnalysisCount: stats.AnalysisCount,
		fieldDailyCount:    stats.DailyCount,
		fieldResetDate:     stats.ResetDateUnix,
		fieldPeriodMonth:   stats.PeriodMonth,
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, statsTTLWithJitter())

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set usage stats in cache: %w", err)
	}

	c.logger.Debugw("usage stats cached",
		"user_id", userID,
		"period_month", stats.PeriodMonth,
		"total_requests", stats.TotalRequests,
	)

	return nil
}

// InvalidateStats removes usage stats from cache. Called after every
// successful ledger write so stats never lag behind a recorded call.
func (c *RedisUsageStatsCache) InvalidateStats(ctx context.Context, userID string) error {
	key := c.key(userID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate usage stats cache: %w", err)
	}

	c.logger.Debugw("usage stats cache invalidated",
		"user_id", userID,
	)

	return nil
}

// statsTTLWithJitter spreads expirations so a burst of stats reads after a
// cold start does not refill and expire in lockstep.
func statsTTLWithJitter() time.Duration {
	jitter := time.Duration(rand.Int64N(int64(statsTTLJitter)))
	return baseStatsTTL + jitter
}
