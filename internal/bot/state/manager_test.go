package state

import (
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func testManager(t *testing.T, m StateManager) {
	const user = int64(100500)
	m.ClearUserState(user)
	assert.Equal(t, None, m.GetUserState(user))

	m.SetUserState(user, WaitingForHeight)
	assert.Equal(t, WaitingForHeight, m.GetUserState(user))
	assert.Equal(t, None, m.GetUserState(user+1))

	m.ClearUserState(user)
	assert.Equal(t, None, m.GetUserState(user))
}

func TestManager(t *testing.T) {
	testManager(t, NewManager())
}

func TestRedisManager(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	testManager(t, NewRedisManager(client, time.Minute))
}
