package middleware

import (
	"context"
	"fmt"

	"socks-bot/internal/chat"

	"go.uber.org/zap"
)

// Recover turns a handler panic into an error so the transport answers
// with the generic failure text instead of dropping the update.
func Recover(logger *zap.Logger) chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (reply chat.Reply, err error) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error("Panic recovered",
						zap.Any("error", p),
						zap.String("interaction_id", req.ID),
						zap.String("command", req.Command),
						zap.Stack("stack"),
					)
					reply = chat.Reply{}
					err = fmt.Errorf("panic in %q handler: %v", req.Command, p)
				}
			}()

			return next(ctx, req)
		}
	}
}
