package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"socks-bot/internal/domain"
	"socks-bot/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resolver turns a sender into a stored user
type Resolver interface {
	Resolve(ctx context.Context, observed service.Observed) (*domain.User, error)
}

// Conversation owns a sender while a multi-step exchange is pending
type Conversation interface {
	Active(ctx context.Context, telegramID int64) (bool, error)
	Continue(ctx context.Context, req *Request) (Reply, error)
}

// Dispatcher resolves the sender, then hands the request either to the
// pending conversation or to the route registered for its command.
type Dispatcher struct {
	resolver     Resolver
	conversation Conversation
	middlewares  []Middleware
	routes       map[string]HandlerFunc
	logger       *zap.Logger
}

// NewDispatcher creates a new instance of Dispatcher
func NewDispatcher(resolver Resolver, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		routes:   make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// Use appends middlewares applied to every route and to the conversation.
// Call it before Handle; routes capture the chain when registered.
func (d *Dispatcher) Use(mws ...Middleware) {
	d.middlewares = append(d.middlewares, mws...)
}

// Handle registers a command. Route middlewares run inside the global ones.
func (d *Dispatcher) Handle(command string, h HandlerFunc, mws ...Middleware) {
	command = strings.ToLower(strings.TrimPrefix(command, "/"))
	if _, exists := d.routes[command]; exists {
		panic(fmt.Sprintf("chat: duplicate route for %q", command))
	}

	all := make([]Middleware, 0, len(d.middlewares)+len(mws))
	all = append(all, d.middlewares...)
	all = append(all, mws...)
	d.routes[command] = Chain(h, all...)
}

// SetConversation installs the handler that owns senders with a pending exchange
func (d *Dispatcher) SetConversation(c Conversation) {
	d.conversation = c
}

// Commands lists registered command names in sorted order
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.routes))
	for name := range d.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch processes one inbound message. Unknown commands and stray text
// produce an empty reply. Returned errors are storage failures the caller
// should log and answer generically.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (Reply, error) {
	user, err := d.resolver.Resolve(ctx, service.Observed{
		TelegramID: msg.Sender.ID,
		Username:   msg.Sender.Username,
		FirstName:  msg.Sender.FirstName,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to resolve sender: %w", err)
	}

	command, args := ParseCommand(msg.Text)
	req := &Request{
		ID:      uuid.NewString(),
		Sender:  msg.Sender,
		User:    user,
		Command: command,
		Args:    args,
		Text:    strings.TrimSpace(msg.Text),
	}

	if d.conversation != nil {
		active, err := d.conversation.Active(ctx, msg.Sender.ID)
		if err != nil {
			return Reply{}, fmt.Errorf("failed to load conversation state: %w", err)
		}
		if active {
			req.Route = RouteDialog
			return Chain(d.conversation.Continue, d.middlewares...)(ctx, req)
		}
	}

	h, ok := d.routes[command]
	if !ok {
		d.logger.Debug("No route for message",
			zap.Int64("telegram_id", msg.Sender.ID),
			zap.String("command", command),
		)
		return Reply{}, nil
	}

	req.Route = command
	return h(ctx, req)
}
