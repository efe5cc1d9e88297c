package assistant

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, maxMessages int64) (*RedisTranscriptStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTranscriptStore(client, time.Hour, maxMessages), mr
}

func TestRedisTranscriptStoreAppendList(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "sess", Message{Text: "hello", Sender: SenderUser}))
	require.NoError(t, store.Append(ctx, "sess", Message{Text: Respond("hello", English), Sender: SenderBot}))

	msgs, err := store.List(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, SenderBot, msgs[1].Sender)
	assert.NotEmpty(t, msgs[0].ID)
	assert.False(t, msgs[0].Timestamp.IsZero())

	assert.Equal(t, time.Hour, mr.TTL(transcriptKey("sess")))
}

func TestRedisTranscriptStoreTrimsAndSkipsGarbage(t *testing.T) {
	store, mr := newRedisStore(t, 2)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, store.Append(ctx, "sess", Message{Text: text, Sender: SenderUser}))
	}
	_, err := mr.RPush(transcriptKey("sess"), "not-json")
	require.NoError(t, err)

	msgs, err := store.List(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Text)
	assert.Equal(t, "three", msgs[1].Text)
}

func TestRedisTranscriptStoreEmptySession(t *testing.T) {
	store, _ := newRedisStore(t, 0)
	msgs, err := store.List(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	assert.Error(t, store.Append(context.Background(), "", Message{Text: "x"}))
	assert.Nil(t, NewRedisTranscriptStore(nil, 0, 0))
}
