package dialog

import (
	"context"
	"errors"
	"fmt"

	"socks-bot/internal/chat"
	"socks-bot/internal/service"

	"go.uber.org/zap"
)

const (
	PromptEmail        = "Привет! Давай зарегистрируемся.\nОтправь, пожалуйста, свой email."
	PromptPhone        = "Спасибо! Теперь отправь номер телефона."
	PromptPhoneAfter   = "Отлично, теперь отправь номер телефона."
	RepromptEmail      = "Сначала отправь email или нажми /cancel."
	RepromptPhone      = "Сначала отправь номер телефона или нажми /cancel."
	WelcomeBack        = "С возвращением! Вот меню:"
	RegistrationDone   = "Регистрация завершена! Пользуйся меню ниже."
	RegistrationCancel = "Регистрация отменена."
	EmailTooLong       = "Email не может быть длиннее 254 символов. Отправь другой или нажми /cancel."
	PhoneTooLong       = "Номер телефона не может быть длиннее 32 символов. Отправь другой или нажми /cancel."
)

// Registration walks a sender through email then phone collection
type Registration struct {
	store  Store
	users  service.UserService
	logger *zap.Logger
}

// NewRegistration creates a new instance of Registration
func NewRegistration(store Store, users service.UserService, logger *zap.Logger) *Registration {
	return &Registration{
		store:  store,
		users:  users,
		logger: logger,
	}
}

// Start is the /start route. It asks for the first missing field or,
// when the profile is complete, shows the menu and ends any dialog.
func (r *Registration) Start(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	user := req.User

	switch {
	case user.Email == "":
		if err := r.store.Set(ctx, user.TelegramID, StateAwaitingEmail); err != nil {
			return chat.Reply{}, err
		}
		return chat.Text(PromptEmail), nil

	case user.Phone == "":
		if err := r.store.Set(ctx, user.TelegramID, StateAwaitingPhone); err != nil {
			return chat.Reply{}, err
		}
		return chat.Text(PromptPhone), nil

	default:
		if err := r.store.Clear(ctx, user.TelegramID); err != nil {
			return chat.Reply{}, err
		}
		return chat.Reply{Text: WelcomeBack, Menu: chat.MenuFor(user)}, nil
	}
}

// Active reports whether the sender has a pending registration step
func (r *Registration) Active(ctx context.Context, telegramID int64) (bool, error) {
	state, err := r.store.Get(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return state != StateNone, nil
}

// Continue handles every message from a sender with a pending step
func (r *Registration) Continue(ctx context.Context, req *chat.Request) (chat.Reply, error) {
	state, err := r.store.Get(ctx, req.User.TelegramID)
	if err != nil {
		return chat.Reply{}, err
	}

	if req.IsCommand() {
		switch req.Command {
		case "cancel":
			if err := r.store.Clear(ctx, req.User.TelegramID); err != nil {
				return chat.Reply{}, err
			}
			r.logger.Info("Registration cancelled",
				zap.Int64("telegram_id", req.User.TelegramID),
				zap.String("state", string(state)),
			)
			return chat.Text(RegistrationCancel), nil
		case "start":
			return r.Start(ctx, req)
		default:
			return reprompt(state), nil
		}
	}

	if req.Text == "" {
		return reprompt(state), nil
	}

	switch state {
	case StateAwaitingEmail:
		if err := r.users.SetEmail(ctx, req.User, req.Text); err != nil {
			if errors.Is(err, service.ErrEmailTooLong) {
				return chat.Text(EmailTooLong), nil
			}
			return chat.Reply{}, err
		}
		if err := r.store.Set(ctx, req.User.TelegramID, StateAwaitingPhone); err != nil {
			return chat.Reply{}, err
		}
		return chat.Text(PromptPhoneAfter), nil

	case StateAwaitingPhone:
		if err := r.users.SetPhone(ctx, req.User, req.Text); err != nil {
			if errors.Is(err, service.ErrPhoneTooLong) {
				return chat.Text(PhoneTooLong), nil
			}
			return chat.Reply{}, err
		}
		if err := r.store.Clear(ctx, req.User.TelegramID); err != nil {
			return chat.Reply{}, err
		}
		r.logger.Info("Registration completed", zap.Int64("telegram_id", req.User.TelegramID))
		return chat.Reply{Text: RegistrationDone, Menu: chat.MenuFor(req.User)}, nil

	default:
		return chat.Reply{}, fmt.Errorf("unknown dialog state %q", state)
	}
}

func reprompt(state State) chat.Reply {
	if state == StateAwaitingPhone {
		return chat.Text(RepromptPhone)
	}
	return chat.Text(RepromptEmail)
}
