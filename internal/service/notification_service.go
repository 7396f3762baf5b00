package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/chat"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
)

// NotificationService renders domain events into chat messages and
// routes them to the shared channel, the assigned handler or the
// supervisor. Send failures are logged, never propagated.
type NotificationService struct {
	dispatcher events.Dispatcher
	transport  chat.Transport
	router     chat.Router
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, transport chat.Transport, router chat.Router, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		transport:  transport,
		router:     router,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to the events this service reacts to.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOrderCreated, n.handleOrderCreated)
	n.dispatcher.Subscribe(events.EventOrderCreationFailed, n.handleCreationFailed)
	n.dispatcher.Subscribe(events.EventOrderStateChanged, n.handleStateChanged)
	n.dispatcher.Subscribe(events.EventOrderFlagged, n.handleFlagged)
	n.dispatcher.Subscribe(events.EventOrderEscalated, n.handleEscalated)
	n.dispatcher.Subscribe(events.EventReminderDue, n.handleReminderDue)
	n.dispatcher.Subscribe(events.EventDailySummary, n.handleDailySummary)
}

// priorityIcon returns the urgency marker used in outbound texts.
func priorityIcon(priority domain.OrderPriority) string {
	switch priority {
	case domain.OrderPriorityCritical:
		return "🔴"
	case domain.OrderPriorityHigh:
		return "🟠"
	case domain.OrderPriorityLow:
		return "🟢"
	default:
		return "🟡"
	}
}

func (n *NotificationService) handleOrderCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderCreatedPayload)
	if !ok {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s Nueva orden %s (%s)\n", priorityIcon(payload.Priority), event.OrderNumber, payload.Priority)
	if payload.EquipmentName != nil {
		fmt.Fprintf(&b, "Equipo: %s\n", *payload.EquipmentName)
	}
	if payload.ClientName != nil {
		fmt.Fprintf(&b, "Cliente: %s\n", *payload.ClientName)
	}
	fmt.Fprintf(&b, "Contacto: %s\n%s", payload.Contact, payload.Description)
	n.send(ctx, chat.RoleShared, "", b.String())
	return nil
}

func (n *NotificationService) handleCreationFailed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderCreationFailedPayload)
	if !ok {
		return nil
	}
	text := fmt.Sprintf("⚠️ No se pudo crear la orden automática para %s. Crear orden manual.\nMensaje: %s",
		payload.Contact, payload.Description)
	n.send(ctx, chat.RoleShared, "", text)
	return nil
}

func (n *NotificationService) handleStateChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderStateChangedPayload)
	if !ok {
		return nil
	}
	// Only completion is broadcast; intermediate transitions stay quiet.
	if payload.NewState != domain.OrderStateDone {
		return nil
	}
	text := fmt.Sprintf("✅ Orden %s completada por %s", event.OrderNumber, payload.Actor)
	n.send(ctx, chat.RoleShared, "", text)
	return nil
}

func (n *NotificationService) handleFlagged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderFlaggedPayload)
	if !ok {
		return nil
	}
	text := fmt.Sprintf("⚠️ Problema en orden %s reportado por %s: %s",
		event.OrderNumber, payload.Actor, payload.Detail)
	n.send(ctx, chat.RoleSupervisor, "", text)
	return nil
}

func (n *NotificationService) handleEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrderEscalatedPayload)
	if !ok {
		return nil
	}
	text := fmt.Sprintf("%s Orden %s (%s) sin avance hace %s. Requiere atención del taller.",
		priorityIcon(payload.Priority), event.OrderNumber, payload.Priority, formatStale(payload.StaleFor))
	n.send(ctx, chat.RoleShared, "", text)
	return nil
}

func (n *NotificationService) handleReminderDue(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReminderDuePayload)
	if !ok {
		return nil
	}
	text := fmt.Sprintf("%s Recordatorio: orden %s (%s) sin actualizar hace %s.",
		priorityIcon(payload.Priority), event.OrderNumber, payload.Priority, formatStale(payload.StaleFor))
	n.send(ctx, chat.RoleHandler, payload.Technician, text)
	return nil
}

func (n *NotificationService) handleDailySummary(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DailySummaryPayload)
	if !ok {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Resumen del día %s\nÓrdenes del día: %d\n", payload.Date, payload.Total)
	for state, count := range payload.ByState {
		fmt.Fprintf(&b, "• %s: %d\n", state, count)
	}
	for priority, count := range payload.ByPriority {
		fmt.Fprintf(&b, "• %s: %d\n", priority, count)
	}
	fmt.Fprintf(&b, "Fuera de SLA: %d", payload.SLABreaches)
	n.send(ctx, chat.RoleSupervisor, "", b.String())
	return nil
}

func (n *NotificationService) send(ctx context.Context, role chat.Role, handlerAddress, text string) {
	to := n.router.Address(role, handlerAddress)
	if err := n.transport.Send(ctx, to, text); err != nil {
		n.logger.Warn("notification send failed",
			zap.String("role", string(role)),
			zap.String("to", to),
			zap.Error(err))
	}
}

func formatStale(d time.Duration) string {
	hours := int(d.Hours())
	if hours < 1 {
		return fmt.Sprintf("%d min", int(d.Minutes()))
	}
	return fmt.Sprintf("%d h", hours)
}
