package middleware

import (
	"context"
	"fmt"
	"time"

	"socks-bot/internal/chat"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimited is the reply sent once a sender exceeds the window budget
const RateLimited = "Слишком много сообщений. Попробуй чуть позже."

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of messages allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix
}

// RateLimit counts messages per sender in Redis. Over the limit the
// handler is skipped; Redis failures let the message through.
func RateLimit(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (chat.Reply, error) {
			key := fmt.Sprintf("%s:%d", config.KeyPrefix, req.Sender.ID)

			count, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				return next(ctx, req)
			}

			// Set expiry on first message
			if count == 1 {
				redisClient.Expire(ctx, key, config.Window)
			}

			if count > int64(config.RequestsPerWindow) {
				logger.Warn("Rate limit exceeded",
					zap.Int64("telegram_id", req.Sender.ID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)
				// answer once per window, then stay silent
				if count == int64(config.RequestsPerWindow)+1 {
					return chat.Text(RateLimited), nil
				}
				return chat.Reply{}, nil
			}

			return next(ctx, req)
		}
	}
}
