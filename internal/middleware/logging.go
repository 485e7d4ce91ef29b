package middleware

import (
	"context"
	"net/http"
	"time"

	"socks-bot/internal/chat"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logging logs every interaction with its outcome
func Logging(logger *zap.Logger) chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (chat.Reply, error) {
			start := time.Now()

			logger.Debug("Interaction started",
				zap.String("interaction_id", req.ID),
				zap.Int64("telegram_id", req.Sender.ID),
				zap.String("command", req.Command),
				zap.Int("args", len(req.Args)),
			)

			reply, err := next(ctx, req)

			fields := []zap.Field{
				zap.String("interaction_id", req.ID),
				zap.Int64("telegram_id", req.Sender.ID),
				zap.String("command", req.Command),
				zap.Int("args", len(req.Args)),
				zap.Duration("duration", time.Since(start)),
			}

			if err != nil {
				logger.Error("Interaction failed", append(fields, zap.Error(err))...)
				return reply, err
			}

			logger.Info("Interaction completed", append(fields, zap.Bool("replied", !reply.Empty()))...)
			return reply, nil
		}
	}
}

// HTTPLogging logs requests to the ops server
func HTTPLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("Request completed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
