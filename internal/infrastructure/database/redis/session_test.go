package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFallbackWithoutClient(t *testing.T) {
	s := NewSessionStore(nil, time.Hour, nil)
	ctx := context.Background()

	assert.Empty(t, s.History(ctx, "u1"))
	assert.Empty(t, s.LastDrug(ctx, "u1"))

	s.AppendHistory(ctx, "u1", Turn{Role: "user", Content: "¿para qué sirve la aspirina?"})
	s.AppendHistory(ctx, "u1", Turn{Role: "assistant", Content: "La aspirina se indica para..."})
	s.SetLastDrug(ctx, "u1", "aspirina")

	turns := s.History(ctx, "u1")
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.False(t, turns[0].At.IsZero())
	assert.Equal(t, "aspirina", s.LastDrug(ctx, "u1"))

	// Sessions are isolated per user.
	assert.Empty(t, s.History(ctx, "u2"))
	assert.Empty(t, s.LastDrug(ctx, "u2"))
}

func TestLocalHistoryTrimsToCap(t *testing.T) {
	s := NewSessionStore(nil, time.Hour, nil)
	ctx := context.Background()

	for i := 0; i < maxHistoryTurns+5; i++ {
		s.AppendHistory(ctx, "u1", Turn{Role: "user", Content: fmt.Sprintf("turno %d", i)})
	}
	turns := s.History(ctx, "u1")
	require.Len(t, turns, maxHistoryTurns)
	assert.Equal(t, "turno 5", turns[0].Content)
}

func TestUnreachableRedisDegradesToLocal(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1", // nothing listens here
		DialTimeout: 50 * time.Millisecond,
		ReadTimeout: 50 * time.Millisecond,
	})
	s := NewSessionStore(client, time.Hour, nil)
	ctx := context.Background()

	s.SetLastDrug(ctx, "u1", "ibuprofeno")
	assert.Equal(t, "ibuprofeno", s.LastDrug(ctx, "u1"))

	s.AppendHistory(ctx, "u1", Turn{Role: "user", Content: "hola"})
	require.Len(t, s.History(ctx, "u1"), 1)

	assert.Error(t, s.Ping(ctx))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "session:u1:history", historyKey("u1"))
	assert.Equal(t, "session:u1:last_drug", drugKey("u1"))
}
