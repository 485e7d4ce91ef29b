package middleware

import (
	"context"
	"testing"
	"time"

	"socks-bot/internal/chat"
	"socks-bot/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestProperty_RateLimitingBlocksExcessiveMessages(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("messages over the window budget never reach the handler", prop.ForAll(
		func(requestsPerWindow int, excessRequests int) bool {
			// Create a mock Redis server using miniredis
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("Failed to start miniredis: %v", err)
				return false
			}
			defer mr.Close()

			redisClient := redis.NewClient(&redis.Options{
				Addr: mr.Addr(),
			})
			defer redisClient.Close()

			config := RateLimitConfig{
				RequestsPerWindow: requestsPerWindow,
				Window:            time.Minute,
				KeyPrefix:         "test_rate_limit",
			}

			handled := 0
			h := RateLimit(redisClient, config, zap.NewNop())(func(ctx context.Context, req *chat.Request) (chat.Reply, error) {
				handled++
				return chat.Text("ok"), nil
			})

			notices := 0
			for i := 0; i < requestsPerWindow+excessRequests; i++ {
				reply, err := h(context.Background(), request(domain.RoleUser, true))
				if err != nil {
					return false
				}
				if reply.Text == RateLimited {
					notices++
				}
			}

			return handled == requestsPerWindow && notices == 1
		},
		gen.IntRange(5, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimit_WindowResetsAndSendersAreSeparate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	h := RateLimit(redisClient, RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		KeyPrefix:         "rl",
	}, zap.NewNop())(reached)

	ctx := context.Background()
	first := request(domain.RoleUser, true)
	other := request(domain.RoleUser, true)
	other.Sender.ID = 200

	reply, _ := h(ctx, first)
	assert.Equal(t, "reached", reply.Text)
	reply, _ = h(ctx, first)
	assert.Equal(t, RateLimited, reply.Text)
	reply, _ = h(ctx, other)
	assert.Equal(t, "reached", reply.Text)

	mr.FastForward(2 * time.Minute)
	reply, _ = h(ctx, first)
	assert.Equal(t, "reached", reply.Text)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()
	mr.Close()

	h := RateLimit(redisClient, RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, KeyPrefix: "rl"}, zap.NewNop())(reached)
	for i := 0; i < 3; i++ {
		reply, err := h(context.Background(), request(domain.RoleUser, true))
		assert.NoError(t, err)
		assert.Equal(t, "reached", reply.Text)
	}
}
