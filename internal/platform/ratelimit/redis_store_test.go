package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_FixedWindow_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("skipping integration test: REDIS_ADDR not set")
	}
	rc := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = rc.Close() }()

	s := NewRedisStore(rc)
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/punch/export", nil), httptest.NewRecorder())
	key := "export:punch:ip:" + uuid.NewString()
	t.Cleanup(func() { rc.Del(context.Background(), s.prefix+key) })

	for i := 0; i < 2; i++ {
		ok, _, err := s.Allow(c, key, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, retry, err := s.Allow(c, key, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, 60, retry, 1)
}
