package cache

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/redis/go-redis/v9"
)

// Reports stay cached for a week unless configured otherwise, which covers
// the gap between two scheduled cycles.
const (
	defaultReportTTL = 7 * 24 * time.Hour
	minReportTTL     = time.Minute
	pingTimeout      = 5 * time.Second
)

// reportTTL turns the configured seconds into a TTL. Zero selects the
// default; anything shorter than a minute is rejected.
func reportTTL(seconds int) (time.Duration, error) {
	if seconds == 0 {
		return defaultReportTTL, nil
	}
	ttl := time.Duration(seconds) * time.Second
	if ttl < minReportTTL {
		return 0, fmt.Errorf("report cache ttl %s below minimum %s", ttl, minReportTTL)
	}
	return ttl, nil
}

func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(valueOr(cfg.RedisHost, "127.0.0.1"), valueOr(cfg.RedisPort, "6379")),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func connectRedis(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// flushReports unlinks every report key and returns how many per-cycle
// reports were among them.
func flushReports(ctx context.Context, client *redis.Client) (int, error) {
	var (
		batch  []string
		cycles int
	)
	drop := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	iter := client.Scan(ctx, 0, reportKeyPrefix+":*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if isCycleKey(key) {
			cycles++
		}
		batch = append(batch, key)
		if len(batch) >= scanBatchSize {
			if err := drop(); err != nil {
				return cycles, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return cycles, fmt.Errorf("redis scan: %w", err)
	}
	return cycles, drop()
}

func isCycleKey(key string) bool {
	return strings.HasPrefix(key, cycleKeyPrefix)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
