package middleware

import (
	"context"
	"time"

	"socks-bot/internal/chat"
)

// Outcomes recorded per interaction
const (
	OutcomeReplied = "replied"
	OutcomeSilent  = "silent"
	OutcomeError   = "error"
)

// RouteOther labels requests that reached the chain without a route
const RouteOther = "other"

// CommandRecorder receives one observation per handled interaction
type CommandRecorder interface {
	ObserveCommand(command, outcome string, duration time.Duration)
}

// Metrics records counts and latency labelled by route, so the label set
// stays bounded by the registered commands
func Metrics(recorder CommandRecorder) chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (chat.Reply, error) {
			start := time.Now()
			reply, err := next(ctx, req)

			outcome := OutcomeReplied
			switch {
			case err != nil:
				outcome = OutcomeError
			case reply.Empty():
				outcome = OutcomeSilent
			}

			route := req.Route
			if route == "" {
				route = RouteOther
			}
			recorder.ObserveCommand(route, outcome, time.Since(start))

			return reply, err
		}
	}
}
