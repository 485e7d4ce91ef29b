// Package chat routes inbound chat messages to command handlers.
// It knows nothing about the messaging platform; the transport converts
// platform updates into Messages and Replies back into platform calls.
package chat

import (
	"context"

	"socks-bot/internal/domain"
)

// Sender is the identity the platform attaches to every message
type Sender struct {
	ID        int64
	Username  string
	FirstName string
}

// Message is one inbound text from a sender
type Message struct {
	Sender Sender
	Text   string
}

// RouteDialog is the route name of every message handled by a pending conversation
const RouteDialog = "dialog"

// Request is a message after identity resolution and command parsing.
// Route is the registered route that handles it, or RouteDialog; unlike
// Command it never carries arbitrary sender text.
type Request struct {
	ID      string
	Sender  Sender
	User    *domain.User
	Command string
	Route   string
	Args    []string
	Text    string
}

// IsCommand reports whether the message started with a slash command
func (r *Request) IsCommand() bool {
	return r.Command != ""
}

// Menu selects the suggested-commands keyboard sent with a reply
type Menu int

const (
	MenuNone Menu = iota
	MenuStandard
	MenuAdmin
)

// MenuButtons lists the commands offered by each menu, one row per slice
var MenuButtons = map[Menu][][]string{
	MenuStandard: {
		{"/catalog"},
		{"/my_orders"},
	},
	MenuAdmin: {
		{"/catalog"},
		{"/my_orders"},
		{"/add_socks", "/list_orders"},
	},
}

// MenuFor picks the role-appropriate menu
func MenuFor(user *domain.User) Menu {
	if user.IsAdmin() {
		return MenuAdmin
	}
	return MenuStandard
}

// Reply is the single text answer to an inbound message.
// An empty Text means nothing is sent.
type Reply struct {
	Text string
	Menu Menu
}

// Text builds a plain reply
func Text(s string) Reply {
	return Reply{Text: s}
}

// Empty reports whether the reply carries nothing to send
func (r Reply) Empty() bool {
	return r.Text == ""
}

// HandlerFunc answers one request
type HandlerFunc func(ctx context.Context, req *Request) (Reply, error)

// Middleware wraps a handler
type Middleware func(HandlerFunc) HandlerFunc

// Chain applies middlewares so the first one listed runs outermost
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
