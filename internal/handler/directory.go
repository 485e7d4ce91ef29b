package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socks-bot/internal/chat"
	"socks-bot/internal/domain"
	"socks-bot/internal/middleware"
	"socks-bot/internal/service"

	"go.uber.org/zap"
)

// DirectoryHandler serves direct user record management
type DirectoryHandler struct {
	users  service.UserService
	gate   string
	logger *zap.Logger
}

// NewDirectoryHandler creates a new DirectoryHandler guarded by gate
func NewDirectoryHandler(users service.UserService, gate string, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		users:  users,
		gate:   gate,
		logger: logger,
	}
}

// RegisterRoutes registers the user record commands
func (h *DirectoryHandler) RegisterRoutes(d *chat.Dispatcher) {
	gate := middleware.RequireGate(h.gate, h.logger)

	d.Handle("create_user", h.CreateUser, gate, middleware.ValidateArgs(2, createUserUsage))
	d.Handle("list_users", h.ListUsers, gate)
	d.Handle("view_user", h.ViewUser, gate, middleware.ValidateArgs(1, viewUserUsage))
	d.Handle("update_user", h.UpdateUser, gate, middleware.ValidateArgs(3, updateUserUsage))
	d.Handle("delete_user", h.DeleteUser, gate, middleware.ValidateArgs(1, deleteUserUsage))
}

// CreateUser adds a user record:
// <telegram_id> <username> [first_name] [email] [phone] [role]
func (h *DirectoryHandler) CreateUser(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	telegramID, err := service.ParseTelegramID(req.Args[0])
	if err != nil {
		return chat.Text(invalidTgID), nil
	}

	arg := func(i int) string {
		if len(req.Args) > i {
			return req.Args[i]
		}
		return ""
	}

	input := service.NewUser{
		TelegramID: telegramID,
		Username:   req.Args[1],
		FirstName:  arg(2),
		Email:      arg(3),
		Phone:      arg(4),
		Role:       domain.Role(arg(5)),
	}

	user, err := h.users.Create(ctx, input)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) && user != nil {
			return chat.Text(fmt.Sprintf(createUserExists, telegramID, user.ID)), nil
		}
		return explain(err,
			explanation{service.ErrInvalidRole, invalidRole},
			explanation{service.ErrEmailTooLong, emailTooLong},
			explanation{service.ErrPhoneTooLong, phoneTooLong},
			explanation{service.ErrNameTooLong, nameTooLong},
		)
	}

	h.logger.Info("User created from directory",
		zap.Int64("telegram_id", telegramID),
		zap.Int64("created_by", req.User.TelegramID),
	)

	return chat.Text(fmt.Sprintf(createUserDone, user.ID, user.TelegramID)), nil
}

// ListUsers prints one line per user ordered by internal id
func (h *DirectoryHandler) ListUsers(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	users, err := h.users.List(ctx)
	if err != nil {
		return chat.Reply{}, err
	}

	if len(users) == 0 {
		return chat.Text(listUsersEmpty), nil
	}

	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, formatUserLine(u))
	}
	return chat.Text(strings.Join(lines, "\n")), nil
}

func (h *DirectoryHandler) ViewUser(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	telegramID, err := service.ParseTelegramID(req.Args[0])
	if err != nil {
		return chat.Text(invalidTgID), nil
	}

	user, err := h.users.Get(ctx, telegramID)
	if err != nil {
		return explain(err, explanation{service.ErrUserNotFound, userNotFound})
	}

	return chat.Text(formatUser(user)), nil
}

// UpdateUser sets one field; the value is every argument after the field
func (h *DirectoryHandler) UpdateUser(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	telegramID, err := service.ParseTelegramID(req.Args[0])
	if err != nil {
		return chat.Text(invalidTgID), nil
	}
	field := req.Args[1]
	value := strings.Join(req.Args[2:], " ")

	if _, err := h.users.UpdateField(ctx, telegramID, field, value); err != nil {
		return explain(err,
			explanation{service.ErrInvalidField, updateUserField},
			explanation{service.ErrInvalidRole, invalidRole},
			explanation{service.ErrUserNotFound, userNotFound},
			explanation{service.ErrEmailTooLong, emailTooLong},
			explanation{service.ErrPhoneTooLong, phoneTooLong},
			explanation{service.ErrNameTooLong, nameTooLong},
		)
	}

	return chat.Text(fmt.Sprintf(updateUserDone, telegramID, field, value)), nil
}

func (h *DirectoryHandler) DeleteUser(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	telegramID, err := service.ParseTelegramID(req.Args[0])
	if err != nil {
		return chat.Text(invalidTgID), nil
	}

	if err := h.users.Delete(ctx, telegramID); err != nil {
		return explain(err, explanation{service.ErrUserNotFound, userNotFound})
	}

	h.logger.Info("User deleted from directory",
		zap.Int64("telegram_id", telegramID),
		zap.Int64("deleted_by", req.User.TelegramID),
	)

	return chat.Text(fmt.Sprintf(deleteUserDone, telegramID)), nil
}
