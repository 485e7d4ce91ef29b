package handler

import (
	"socks-bot/internal/chat"
	"socks-bot/internal/dialog"
)

// Routes is a group of commands registered together
type Routes interface {
	RegisterRoutes(d *chat.Dispatcher)
}

// Register installs the registration dialog and every command group
func Register(d *chat.Dispatcher, registration *dialog.Registration, groups ...Routes) {
	d.Handle("start", registration.Start)
	d.SetConversation(registration)

	for _, g := range groups {
		g.RegisterRoutes(d)
	}
}
