package middleware

import (
	"context"
	"fmt"

	"socks-bot/internal/chat"
	"socks-bot/internal/validation"
)

// ValidateArgs answers with usage when fewer than min arguments arrive,
// so handlers may index their required arguments directly.
func ValidateArgs(min int, usage string) chat.Middleware {
	tag := fmt.Sprintf("min=%d", min)
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (chat.Reply, error) {
			if err := validation.Var(req.Args, tag); err != nil {
				return chat.Text(usage), nil
			}
			return next(ctx, req)
		}
	}
}
