package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/llc-formation-platform/internal/assistant"
	appconfig "github.com/wolfman30/llc-formation-platform/internal/config"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

// BuildRedisClient returns the chat transcript client, or nil when
// REDIS_ADDR is unset. With verify, an unreachable server also yields nil
// so chat falls back to the in-process store.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	opts := redisOptions(cfg)
	if opts == nil {
		return nil
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logging.Default()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available, chat transcripts stay in memory", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

func redisOptions(cfg *appconfig.Config) *redis.Options {
	if cfg == nil {
		return nil
	}
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:         addr,
		Password:     cfg.RedisPassword,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		MaxRetries:   1,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// BuildTranscriptStore picks the Redis transcript store when a client is
// available and the in-process store otherwise.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config) assistant.TranscriptStore {
	maxLen := int64(200)
	if cfg != nil && cfg.ChatTranscriptMaxLen > 0 {
		maxLen = cfg.ChatTranscriptMaxLen
	}
	if redisClient == nil {
		return assistant.NewMemoryTranscriptStore(int(maxLen))
	}
	var ttl time.Duration
	if cfg != nil {
		ttl = cfg.ChatTranscriptTTL
	}
	return assistant.NewRedisTranscriptStore(redisClient, ttl, maxLen)
}
