package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"socks-bot/internal/chat"
	"socks-bot/internal/config"
	"socks-bot/internal/handler"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type botRunner interface {
	Start(ctx context.Context)
}

var (
	allowedUpdates = bot.AllowedUpdates{"message"}

	createBot = func(token string, options ...bot.Option) (botRunner, error) {
		return bot.New(token, options...)
	}

	sendMessage = func(ctx context.Context, b *bot.Bot, params *bot.SendMessageParams) (*models.Message, error) {
		return b.SendMessage(ctx, params)
	}
)

// Dispatcher answers one inbound chat message
type Dispatcher interface {
	Dispatch(ctx context.Context, msg chat.Message) (chat.Reply, error)
}

// SendMetrics counts replies the platform refused
type SendMetrics interface {
	SendFailed()
}

// TelegramClient delivers Telegram messages to the dispatcher over long polling
type TelegramClient struct {
	bot        botRunner
	dispatcher Dispatcher
	metrics    SendMetrics
	logger     *zap.Logger
}

// NewTelegramClient creates a new TelegramClient
func NewTelegramClient(cfg config.TelegramConfig, dispatcher Dispatcher, metrics SendMetrics, logger *zap.Logger) (*TelegramClient, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is required")
	}

	c := &TelegramClient{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}

	b, err := createBot(cfg.Token,
		bot.WithAllowedUpdates(allowedUpdates),
		bot.WithHTTPClient(cfg.PollTimeout, &http.Client{Timeout: 2 * cfg.PollTimeout}),
		bot.WithDefaultHandler(c.handleUpdate),
		bot.WithErrorsHandler(func(err error) {
			logger.Error("Telegram polling error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	c.bot = b

	return c, nil
}

// Start polls for updates until ctx is cancelled
func (c *TelegramClient) Start(ctx context.Context) {
	c.logger.Info("Starting telegram long polling")
	c.bot.Start(ctx)
	c.logger.Info("Telegram polling stopped")
}

func (c *TelegramClient) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message

	reply, err := c.dispatcher.Dispatch(ctx, chat.Message{
		Sender: chat.Sender{
			ID:        msg.From.ID,
			Username:  msg.From.Username,
			FirstName: msg.From.FirstName,
		},
		Text: msg.Text,
	})
	if err != nil {
		c.logger.Error("Failed to handle message",
			zap.Error(err),
			zap.Int64("telegram_id", msg.From.ID),
			zap.Int64("chat_id", msg.Chat.ID),
		)
		reply = chat.Text(handler.Failed)
	}

	if reply.Empty() {
		return
	}

	params := &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   reply.Text,
	}
	if markup := keyboard(reply.Menu); markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := sendMessage(ctx, b, params); err != nil {
		c.metrics.SendFailed()
		c.logger.Warn("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", msg.Chat.ID),
		)
	}
}

// keyboard renders a menu as a reply keyboard; MenuNone yields nil
func keyboard(menu chat.Menu) *models.ReplyKeyboardMarkup {
	rows, ok := chat.MenuButtons[menu]
	if !ok {
		return nil
	}

	keyboard := make([][]models.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.KeyboardButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, models.KeyboardButton{Text: text})
		}
		keyboard = append(keyboard, buttons)
	}

	return &models.ReplyKeyboardMarkup{
		Keyboard:       keyboard,
		ResizeKeyboard: true,
	}
}
