// Package chat runs the conversation loop: one line of input in, one reply out,
// with every turn written to memory.
package chat

import (
	"log/slog"

	"github.com/habiliai/mcpchat/memory"
	"github.com/habiliai/mcpchat/router"
	"github.com/habiliai/mcpchat/tool"
)

// Session holds everything a turn needs. It is built once at startup.
type Session struct {
	Store    memory.Store
	Router   *router.Router
	Registry *tool.Registry
	Logger   *slog.Logger
}

func NewSession(store memory.Store, r *router.Router, registry *tool.Registry, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		Store:    store,
		Router:   r,
		Registry: registry,
		Logger:   logger,
	}
}
