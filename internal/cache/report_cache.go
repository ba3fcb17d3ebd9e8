package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix = "optimization:report"
	cycleKeyPrefix  = reportKeyPrefix + ":cycle:"
	scanBatchSize   = 100
)

// ReportCache keeps the most recent optimization reports
type ReportCache interface {
	GetLatest(ctx context.Context) (*domain.OptimizationReport, bool, error)
	GetCycle(ctx context.Context, cycleNumber uint64) (*domain.OptimizationReport, bool, error)
	SetLatest(ctx context.Context, report *domain.OptimizationReport) error
	// Flush drops every cached report and returns how many cycle reports went
	Flush(ctx context.Context) (int, error)
	Close() error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

// NewReportCache connects to redis when caching is enabled and falls back
// to a no-op cache otherwise.
func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	ttl, err := reportTTL(cfg.ReportTTLSeconds)
	if err != nil {
		return nil, err
	}
	client, err := connectRedis(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetLatest(ctx context.Context) (*domain.OptimizationReport, bool, error) {
	return c.get(ctx, latestKey())
}

func (c *redisReportCache) GetCycle(ctx context.Context, cycleNumber uint64) (*domain.OptimizationReport, bool, error) {
	return c.get(ctx, cycleKey(cycleNumber))
}

func (c *redisReportCache) get(ctx context.Context, key string) (*domain.OptimizationReport, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.OptimizationReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}

	return &report, true, nil
}

// SetLatest stores the report under the latest key and its cycle number
func (c *redisReportCache) SetLatest(ctx context.Context, report *domain.OptimizationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, latestKey(), payload, c.ttl)
	pipe.Set(ctx, cycleKey(report.CycleNumber), payload, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisReportCache) Flush(ctx context.Context) (int, error) {
	return flushReports(ctx, c.client)
}

func (c *redisReportCache) Close() error {
	return c.client.Close()
}

func (n *noopReportCache) GetLatest(ctx context.Context) (*domain.OptimizationReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) GetCycle(ctx context.Context, cycleNumber uint64) (*domain.OptimizationReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetLatest(ctx context.Context, report *domain.OptimizationReport) error {
	return nil
}

func (n *noopReportCache) Flush(ctx context.Context) (int, error) {
	return 0, nil
}

func (n *noopReportCache) Close() error {
	return nil
}

func latestKey() string {
	return reportKeyPrefix + ":latest"
}

func cycleKey(cycleNumber uint64) string {
	return fmt.Sprintf("%s%d", cycleKeyPrefix, cycleNumber)
}
