package repo

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the handful of list commands the repository uses over
// an in-memory map. Everything else panics through the embedded nil Cmdable.
type fakeRedis struct {
	redis.Cmdable
	lists   map[string][]string
	expires map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		lists:   make(map[string][]string),
		expires: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		switch val := v.(type) {
		case []byte:
			f.lists[key] = append(f.lists[key], string(val))
		case string:
			f.lists[key] = append(f.lists[key], val)
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func (f *fakeRedis) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	_, ok := f.lists[key]
	if ok {
		f.expires[key] = ttl
	}
	cmd.SetVal(ok)
	return cmd
}

func (f *fakeRedis) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	cmd.SetVal(f.lists[key])
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, key := range keys {
		if _, ok := f.lists[key]; ok {
			delete(f.lists, key)
			delete(f.expires, key)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) LLen(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func TestRedisTranscriptRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	repo := NewRedisTranscriptRepository(rdb, time.Hour)

	require.NoError(t, repo.AddMessage(ctx, "s-1", schema.UserMessage("hello")))
	require.NoError(t, repo.AddMessage(ctx, "s-1", schema.AssistantMessage("hi there", nil)))
	require.NoError(t, repo.AddMessage(ctx, "s-2", schema.UserMessage("other session")))

	count, err := repo.MessageCount(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	transcript, err := repo.LoadTranscript(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", transcript.SessionID)
	require.Len(t, transcript.Messages, 2)
	assert.Equal(t, schema.User, transcript.Messages[0].Role)
	assert.Equal(t, "hello", transcript.Messages[0].Content)
	assert.Equal(t, schema.Assistant, transcript.Messages[1].Role)
	assert.Equal(t, "hi there", transcript.Messages[1].Content)

	// sessions are keyed independently
	other, err := repo.LoadTranscript(ctx, "s-2")
	require.NoError(t, err)
	require.Len(t, other.Messages, 1)
	assert.Equal(t, "other session", other.Messages[0].Content)
}

func TestRedisTranscriptRepository_AddMessageExtendsTTL(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	repo := NewRedisTranscriptRepository(rdb, 30*time.Minute)

	require.NoError(t, repo.AddMessage(ctx, "s-1", schema.UserMessage("hello")))

	assert.Equal(t, 30*time.Minute, rdb.expires["session:s-1:messages"])
}

func TestRedisTranscriptRepository_ClearTranscript(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	repo := NewRedisTranscriptRepository(rdb, time.Hour)

	require.NoError(t, repo.AddMessage(ctx, "s-1", schema.UserMessage("hello")))
	require.NoError(t, repo.ClearTranscript(ctx, "s-1"))

	count, err := repo.MessageCount(ctx, "s-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	transcript, err := repo.LoadTranscript(ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, transcript.Messages)
}

func TestRedisTranscriptRepository_EmptySession(t *testing.T) {
	ctx := context.Background()
	repo := NewRedisTranscriptRepository(newFakeRedis(), time.Hour)

	count, err := repo.MessageCount(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, count)

	transcript, err := repo.LoadTranscript(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, transcript.Messages)
}
