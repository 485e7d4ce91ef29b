package middleware

import (
	"context"

	"socks-bot/internal/chat"
	"socks-bot/internal/config"
	"socks-bot/internal/domain"

	"go.uber.org/zap"
)

// Denial replies
const (
	NotRegistered = "Сначала нужно завершить регистрацию. Нажми /start."
	NoPermission  = "У тебя нет прав для этой команды."
	OnlySuperRole = "Только SUPER_ADMIN может менять роли."
)

// RequireRegistered refuses senders whose email or phone is missing
func RequireRegistered(logger *zap.Logger) chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (chat.Reply, error) {
			if !req.User.IsRegistered() {
				logger.Debug("Unregistered user attempted gated command",
					zap.Int64("telegram_id", req.User.TelegramID),
					zap.String("command", req.Command),
				)
				return chat.Text(NotRegistered), nil
			}
			return next(ctx, req)
		}
	}
}

// RequireAdmin ensures the user has admin or super admin role
func RequireAdmin(logger *zap.Logger) chat.Middleware {
	return RequireRole([]domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}, NoPermission, logger)
}

// RequireSuperAdmin ensures the user has super admin role
func RequireSuperAdmin(denied string, logger *zap.Logger) chat.Middleware {
	return RequireRole([]domain.Role{domain.RoleSuperAdmin}, denied, logger)
}

// RequireRole ensures the user has one of the specified roles
func RequireRole(allowedRoles []domain.Role, denied string, logger *zap.Logger) chat.Middleware {
	return func(next chat.HandlerFunc) chat.HandlerFunc {
		return func(ctx context.Context, req *chat.Request) (chat.Reply, error) {
			role := req.User.Role

			// Check if user's role is in allowed roles
			for _, allowed := range allowedRoles {
				if role == allowed {
					return next(ctx, req)
				}
			}

			logger.Warn("User role not authorized",
				zap.Int64("telegram_id", req.User.TelegramID),
				zap.String("role", string(role)),
				zap.String("command", req.Command),
			)
			return chat.Text(denied), nil
		}
	}
}

// RequireGate maps a configured directory gate onto a role check.
// The open gate lets every sender through; unknown gates admit only super admins.
func RequireGate(gate string, logger *zap.Logger) chat.Middleware {
	switch gate {
	case config.GateOpen:
		return func(next chat.HandlerFunc) chat.HandlerFunc { return next }
	case config.GateAdmin:
		return RequireAdmin(logger)
	case config.GateSuperAdmin:
		return RequireSuperAdmin(NoPermission, logger)
	default:
		logger.Warn("Unknown directory gate, restricting to super admins", zap.String("gate", gate))
		return RequireSuperAdmin(NoPermission, logger)
	}
}
