package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/config"
)

// Role identifies a notification recipient class.
type Role string

const (
	RoleShared     Role = "shared"
	RoleHandler    Role = "handler"
	RoleSupervisor Role = "supervisor"
)

// Message is an inbound chat message delivered by the gateway webhook.
type Message struct {
	Text    string
	Sender  string
	IsGroup bool
}

// Transport sends a text message to a chat address. Implementations
// are expected to fail fast; the callers treat send failures as
// log-and-continue.
type Transport interface {
	Send(ctx context.Context, to, text string) error
}

// Router resolves delivery addresses for notification roles. The
// handler address is per-ticket and supplied by the caller.
type Router struct {
	shared     string
	supervisor string
}

// NewRouter builds a router from chat configuration.
func NewRouter(cfg config.ChatConfig) Router {
	return Router{shared: cfg.SharedAddress, supervisor: cfg.SupervisorAddress}
}

// Address maps a role to a concrete chat address.
func (r Router) Address(role Role, handlerAddress string) string {
	switch role {
	case RoleHandler:
		if handlerAddress != "" {
			return handlerAddress
		}
		return r.shared
	case RoleSupervisor:
		return r.supervisor
	default:
		return r.shared
	}
}

// LogTransport logs outbound messages instead of delivering them. Used
// when no gateway URL is configured.
type LogTransport struct {
	Logger *zap.Logger
}

// Send logs the message.
func (t LogTransport) Send(ctx context.Context, to, text string) error {
	t.Logger.Info("chat send (no gateway configured)",
		zap.String("to", to),
		zap.String("text", text))
	return nil
}
