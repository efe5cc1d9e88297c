package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const transcriptKeyPrefix = "chat_transcript:"

// RedisTranscriptStore keeps transcripts in Redis lists with a sliding TTL.
type RedisTranscriptStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	ttl         time.Duration
	maxMessages int64
}

func NewRedisTranscriptStore(redisClient *redis.Client, ttl time.Duration, maxMessages int64) *RedisTranscriptStore {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisTranscriptStore{
		redis:       redisClient,
		tracer:      otel.Tracer("llc.internal.assistant.transcript"),
		ttl:         ttl,
		maxMessages: maxMessages,
	}
}

func (s *RedisTranscriptStore) Append(ctx context.Context, sessionID string, msg Message) error {
	if sessionID == "" {
		return errSessionRequired
	}
	fillMessage(&msg)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("assistant: marshal transcript message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "assistant.transcript.append")
	defer span.End()

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: append transcript message: %w", err)
	}
	return nil
}

func (s *RedisTranscriptStore) List(ctx context.Context, sessionID string) ([]Message, error) {
	if sessionID == "" {
		return nil, errSessionRequired
	}

	ctx, span := s.tracer.Start(ctx, "assistant.transcript.list")
	defer span.End()

	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []Message{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("assistant: list transcript: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}
