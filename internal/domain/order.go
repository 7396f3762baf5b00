package domain

import "time"

// OrderState enumerates lifecycle states for service orders.
type OrderState string

const (
	OrderStatePending      OrderState = "PENDING"
	OrderStateInProgress   OrderState = "IN_PROGRESS"
	OrderStateWaitingParts OrderState = "WAITING_PARTS"
	OrderStateDone         OrderState = "DONE"
)

// Terminal reports whether no further transitions are allowed.
func (s OrderState) Terminal() bool {
	return s == OrderStateDone
}

// Paused reports whether the order is parked and excluded from reminders.
func (s OrderState) Paused() bool {
	return s == OrderStateWaitingParts
}

// OrderPriority enumerates SLA urgency. Fixed at creation.
type OrderPriority string

const (
	OrderPriorityLow      OrderPriority = "LOW"
	OrderPriorityMedium   OrderPriority = "MEDIUM"
	OrderPriorityHigh     OrderPriority = "HIGH"
	OrderPriorityCritical OrderPriority = "CRITICAL"
)

// ServiceOrder is the aggregate for equipment service requests opened
// from inbound chat messages.
type ServiceOrder struct {
	ID            string
	Number        string
	Description   string
	Priority      OrderPriority
	State         OrderState
	Technician    string
	EquipmentID   *string
	EquipmentName *string
	Component     *string
	Channel       string
	Contact       string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
