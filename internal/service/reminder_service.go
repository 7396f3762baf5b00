package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/config"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/observability"
	"github.com/spec-kit/service-desk/internal/repository"
)

// sweepExclusions: terminal orders are finished, paused orders are
// waiting on parts and opted out of reminders.
var sweepExclusions = []domain.OrderState{
	domain.OrderStateDone,
	domain.OrderStateWaitingParts,
}

// ReminderService periodically sweeps for stale orders, dispatches
// tiered reminders and produces the daily summary.
type ReminderService struct {
	orders     repository.OrderRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.ReminderConfig

	now      func() time.Time
	sweeping atomic.Bool
}

// ReminderDependencies bundles collaborators for the sweeper.
type ReminderDependencies struct {
	OrderRepo  repository.OrderRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Config     config.ReminderConfig

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// NewReminderService constructs the sweeper.
func NewReminderService(deps ReminderDependencies) *ReminderService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		orders:     deps.OrderRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        deps.Config,
		now:        now,
	}
}

// Sweep runs one reminder pass. Overlapping sweeps are skipped; only
// one pass may be active at a time. Per-order dispatch failures never
// abort the rest of the batch.
func (s *ReminderService) Sweep(ctx context.Context) error {
	if !s.sweeping.CompareAndSwap(false, true) {
		s.logger.Warn("sweep already in progress, skipping")
		return nil
	}
	defer s.sweeping.Store(false)

	now := s.now()

	critical, err := s.orders.ListStale(ctx, repository.StaleFilter{
		UpdatedBefore: now.Add(-s.cfg.CriticalAfter()),
		ExcludeStates: sweepExclusions,
		Priorities:    []domain.OrderPriority{domain.OrderPriorityCritical},
	})
	if err != nil {
		return err
	}

	normal, err := s.orders.ListStale(ctx, repository.StaleFilter{
		UpdatedBefore:     now.Add(-s.cfg.NormalAfter()),
		ExcludeStates:     sweepExclusions,
		ExcludePriorities: []domain.OrderPriority{domain.OrderPriorityCritical},
	})
	if err != nil {
		return err
	}

	stale := append(critical, normal...)
	s.logger.Info("reminder sweep",
		zap.Int("critical", len(critical)),
		zap.Int("normal", len(normal)))

	escalateBefore := now.Add(-s.cfg.EscalateAfter())
	for i, order := range stale {
		staleFor := now.Sub(order.UpdatedAt)
		s.publish(ctx, events.Event{
			Type:        events.EventReminderDue,
			OrderNumber: order.Number,
			Payload: events.ReminderDuePayload{
				Priority:   order.Priority,
				Technician: order.Technician,
				StaleFor:   staleFor,
			},
		})
		s.metrics.RecordReminder(string(order.Priority))

		if order.Priority == domain.OrderPriorityCritical && order.UpdatedAt.Before(escalateBefore) {
			s.publish(ctx, events.Event{
				Type:        events.EventOrderEscalated,
				OrderNumber: order.Number,
				Payload: events.OrderEscalatedPayload{
					Priority: order.Priority,
					StaleFor: staleFor,
				},
			})
		}

		// Fixed delay between sends keeps the chat gateway happy.
		if i < len(stale)-1 && s.cfg.Throttle() > 0 {
			time.Sleep(s.cfg.Throttle())
		}
	}
	return nil
}

// DailySummary aggregates the day's orders and sends one digest to the
// supervisor channel.
func (s *ReminderService) DailySummary(ctx context.Context) error {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	todays, err := s.orders.ListCreatedSince(ctx, startOfDay)
	if err != nil {
		return err
	}

	breached, err := s.orders.ListStale(ctx, repository.StaleFilter{
		UpdatedBefore: now.Add(-s.cfg.SLA()),
		ExcludeStates: sweepExclusions,
	})
	if err != nil {
		return err
	}

	payload := events.DailySummaryPayload{
		Date:        now.Format("2006-01-02"),
		Total:       len(todays),
		ByState:     make(map[domain.OrderState]int),
		ByPriority:  make(map[domain.OrderPriority]int),
		SLABreaches: len(breached),
	}
	for _, order := range todays {
		payload.ByState[order.State]++
		payload.ByPriority[order.Priority]++
	}

	s.publish(ctx, events.Event{Type: events.EventDailySummary, Payload: payload})
	return nil
}

// Heartbeat is the hourly liveness tick: it logs the current workload
// so a silent scheduler is distinguishable from a dead one.
func (s *ReminderService) Heartbeat(ctx context.Context) {
	counts, err := s.orders.CountByStatePriority(ctx)
	if err != nil {
		s.logger.Warn("heartbeat count failed", zap.Error(err))
		return
	}
	open := 0
	for _, sc := range counts {
		if !sc.State.Terminal() {
			open += sc.Count
		}
	}
	s.logger.Info("heartbeat", zap.Int("open_orders", open))
}

func (s *ReminderService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
