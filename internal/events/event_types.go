package events

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated        EventType = "order_created"
	EventOrderCreationFailed EventType = "order_creation_failed"
	EventOrderStateChanged   EventType = "order_state_changed"
	EventOrderFlagged        EventType = "order_flagged"
	EventOrderEscalated      EventType = "order_escalated"
	EventReminderDue         EventType = "reminder_due"
	EventDailySummary        EventType = "daily_summary"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	OrderNumber string      `json:"order_number,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	Priority      domain.OrderPriority `json:"priority"`
	Description   string               `json:"description"`
	EquipmentName *string              `json:"equipment_name,omitempty"`
	ClientName    *string              `json:"client_name,omitempty"`
	Contact       string               `json:"contact"`
	Technician    string               `json:"technician"`
}

// OrderCreationFailedPayload payload.
type OrderCreationFailedPayload struct {
	Reason      string `json:"reason"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
}

// OrderStateChangedPayload payload.
type OrderStateChangedPayload struct {
	OldState domain.OrderState `json:"old_state"`
	NewState domain.OrderState `json:"new_state"`
	Actor    string            `json:"actor"`
}

// OrderFlaggedPayload payload.
type OrderFlaggedPayload struct {
	Detail string `json:"detail"`
	Actor  string `json:"actor"`
}

// OrderEscalatedPayload payload.
type OrderEscalatedPayload struct {
	Priority domain.OrderPriority `json:"priority"`
	StaleFor time.Duration        `json:"stale_for"`
}

// ReminderDuePayload payload.
type ReminderDuePayload struct {
	Priority   domain.OrderPriority `json:"priority"`
	Technician string               `json:"technician"`
	StaleFor   time.Duration        `json:"stale_for"`
}

// DailySummaryPayload aggregates same-day order activity.
type DailySummaryPayload struct {
	Date        string                       `json:"date"`
	Total       int                          `json:"total"`
	ByState     map[domain.OrderState]int    `json:"by_state"`
	ByPriority  map[domain.OrderPriority]int `json:"by_priority"`
	SLABreaches int                          `json:"sla_breaches"`
}
