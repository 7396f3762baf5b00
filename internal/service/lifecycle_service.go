package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/chat"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/observability"
	"github.com/spec-kit/service-desk/internal/repository"
)

// LifecycleService owns the service order state machine and the
// operator command surface.
type LifecycleService struct {
	orders     repository.OrderRepository
	dispatcher events.Dispatcher
	transport  chat.Transport
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// LifecycleDependencies bundles collaborators for the lifecycle engine.
type LifecycleDependencies struct {
	OrderRepo  repository.OrderRepository
	Dispatcher events.Dispatcher
	Transport  chat.Transport
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		orders:     deps.OrderRepo,
		dispatcher: deps.Dispatcher,
		transport:  deps.Transport,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// transitions is the state machine: per action, the states it may leave
// from and the state it lands in. flag-problem is handled separately
// because it annotates rather than transitions.
var transitions = map[Action]map[domain.OrderState]domain.OrderState{
	ActionComplete: {
		domain.OrderStatePending:    domain.OrderStateDone,
		domain.OrderStateInProgress: domain.OrderStateDone,
	},
	ActionStart: {
		domain.OrderStatePending:      domain.OrderStateInProgress,
		domain.OrderStateWaitingParts: domain.OrderStateInProgress,
	},
	ActionHold: {
		domain.OrderStatePending:    domain.OrderStateWaitingParts,
		domain.OrderStateInProgress: domain.OrderStateWaitingParts,
	},
}

// HandleReply parses and applies an operator reply. Unrecognized text,
// unknown document numbers and invalid transitions are logged no-ops:
// the engine never replies to noise to avoid reply storms.
func (s *LifecycleService) HandleReply(ctx context.Context, text, sender string) error {
	cmd, err := ParseCommand(text)
	if err != nil {
		if errors.Is(err, ErrMissingNumber) {
			s.logger.Warn("operator command missing document number", zap.String("text", text))
		}
		return nil
	}
	return s.Apply(ctx, cmd, sender)
}

// Apply executes a parsed command.
func (s *LifecycleService) Apply(ctx context.Context, cmd Command, sender string) error {
	if cmd.Action == ActionStatus {
		return s.replyStatus(ctx, sender)
	}

	order, err := s.orders.GetByNumber(ctx, cmd.Number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("command for unknown order",
				zap.String("action", string(cmd.Action)),
				zap.String("number", cmd.Number))
			s.metrics.RecordCommand(string(cmd.Action), "unknown_order")
			return nil
		}
		return err
	}

	if cmd.Action == ActionProblem {
		return s.flagProblem(ctx, order, cmd.Detail, sender)
	}

	next, ok := transitions[cmd.Action][order.State]
	if !ok {
		s.logger.Info("command is a no-op in current state",
			zap.String("action", string(cmd.Action)),
			zap.String("number", order.Number),
			zap.String("state", string(order.State)))
		s.metrics.RecordCommand(string(cmd.Action), "noop")
		return nil
	}

	old := order.State
	order.State = next
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}
	s.metrics.RecordCommand(string(cmd.Action), "applied")
	s.publish(ctx, events.Event{
		Type:        events.EventOrderStateChanged,
		OrderNumber: order.Number,
		Payload: events.OrderStateChangedPayload{
			OldState: old,
			NewState: next,
			Actor:    sender,
		},
	})
	return nil
}

// flagProblem appends an escalation note, re-flags the order as pending
// for supervisor visibility and notifies the supervisor channel.
func (s *LifecycleService) flagProblem(ctx context.Context, order *domain.ServiceOrder, detail, sender string) error {
	if order.State.Terminal() {
		s.logger.Info("problem flag on terminal order ignored", zap.String("number", order.Number))
		s.metrics.RecordCommand(string(ActionProblem), "noop")
		return nil
	}

	note := fmt.Sprintf("[%s] problema reportado por %s: %s",
		time.Now().Format("2006-01-02 15:04"), sender, strings.TrimSpace(detail))
	if order.Notes != "" {
		order.Notes += "\n"
	}
	order.Notes += note
	order.State = domain.OrderStatePending

	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}
	s.metrics.RecordCommand(string(ActionProblem), "applied")
	s.publish(ctx, events.Event{
		Type:        events.EventOrderFlagged,
		OrderNumber: order.Number,
		Payload: events.OrderFlaggedPayload{
			Detail: strings.TrimSpace(detail),
			Actor:  sender,
		},
	})
	return nil
}

// StatusCounts returns the per-state/priority aggregation.
func (s *LifecycleService) StatusCounts(ctx context.Context) ([]repository.StateCount, error) {
	return s.orders.CountByStatePriority(ctx)
}

func (s *LifecycleService) replyStatus(ctx context.Context, sender string) error {
	counts, err := s.orders.CountByStatePriority(ctx)
	if err != nil {
		return err
	}
	s.metrics.RecordCommand(string(ActionStatus), "applied")
	if err := s.transport.Send(ctx, sender, renderStatus(counts)); err != nil {
		s.logger.Warn("status reply failed", zap.String("to", sender), zap.Error(err))
	}
	return nil
}

func renderStatus(counts []repository.StateCount) string {
	if len(counts) == 0 {
		return "Sin órdenes registradas."
	}
	var b strings.Builder
	b.WriteString("Estado de órdenes:\n")
	total := 0
	for _, sc := range counts {
		fmt.Fprintf(&b, "• %s / %s: %d\n", sc.State, sc.Priority, sc.Count)
		total += sc.Count
	}
	fmt.Fprintf(&b, "Total: %d", total)
	return b.String()
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
