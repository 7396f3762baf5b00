package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/chat"
	"github.com/spec-kit/service-desk/internal/classify"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/numbering"
	"github.com/spec-kit/service-desk/internal/observability"
	"github.com/spec-kit/service-desk/internal/repository"
	"github.com/spec-kit/service-desk/internal/resolve"
)

// createAttempts bounds the regenerate-and-retry loop on duplicate
// document numbers.
const createAttempts = 3

// IntakeService turns inbound chat messages into service orders.
type IntakeService struct {
	classifier *classify.Classifier
	catalog    *resolve.Loader
	numbers    *numbering.Service
	orders     repository.OrderRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	defaultTechnician string
}

// IntakeDependencies bundles collaborators for the intake pipeline.
type IntakeDependencies struct {
	Classifier        *classify.Classifier
	Catalog           *resolve.Loader
	Numbers           *numbering.Service
	OrderRepo         repository.OrderRepository
	Dispatcher        events.Dispatcher
	Metrics           *observability.Metrics
	Logger            *zap.Logger
	DefaultTechnician string
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	return &IntakeService{
		classifier:        deps.Classifier,
		catalog:           deps.Catalog,
		numbers:           deps.Numbers,
		orders:            deps.OrderRepo,
		dispatcher:        deps.Dispatcher,
		metrics:           deps.Metrics,
		logger:            deps.Logger,
		defaultTechnician: deps.DefaultTechnician,
	}
}

// HandleMessage classifies an inbound message and, when it describes a
// service request, resolves it against the catalog and opens an order.
// Resolution is advisory: a catalog failure never blocks creation.
func (s *IntakeService) HandleMessage(ctx context.Context, msg chat.Message) (*domain.ServiceOrder, error) {
	result := s.classifier.Classify(msg.Text)
	s.metrics.RecordMessage(result.IsServiceRequest, string(result.Priority))
	if !result.IsServiceRequest {
		s.logger.Debug("message is not a service request", zap.String("sender", msg.Sender))
		return nil, nil
	}

	var match resolve.Match
	entries, err := s.catalog.Entries(ctx)
	if err != nil {
		s.logger.Warn("catalog unavailable, creating order without references", zap.Error(err))
	} else {
		match = resolve.Resolve(msg.Text, entries)
	}

	channel := "direct"
	if msg.IsGroup {
		channel = "group"
	}

	order := &domain.ServiceOrder{
		Description: msg.Text,
		Priority:    result.Priority,
		State:       domain.OrderStatePending,
		Technician:  s.defaultTechnician,
		Channel:     channel,
		Contact:     msg.Sender,
	}
	if match.Equipment != nil {
		id, name := match.Equipment.ID, match.Equipment.Name
		order.EquipmentID = &id
		order.EquipmentName = &name
	}

	if err := s.createWithRetry(ctx, order); err != nil {
		s.logger.Error("order creation failed", zap.Error(err), zap.String("sender", msg.Sender))
		s.publish(ctx, events.Event{
			Type: events.EventOrderCreationFailed,
			Payload: events.OrderCreationFailedPayload{
				Reason:      err.Error(),
				Contact:     msg.Sender,
				Description: msg.Text,
			},
		})
		return nil, err
	}

	s.metrics.RecordOrderCreated(string(order.Priority))
	payload := events.OrderCreatedPayload{
		Priority:    order.Priority,
		Description: order.Description,
		Contact:     order.Contact,
		Technician:  order.Technician,
	}
	payload.EquipmentName = order.EquipmentName
	if match.Client != nil {
		client := match.Client.ShortName
		payload.ClientName = &client
	}
	s.publish(ctx, events.Event{
		Type:        events.EventOrderCreated,
		OrderNumber: order.Number,
		Payload:     payload,
	})
	return order, nil
}

// createWithRetry regenerates the document number and retries when the
// store reports a duplicate; the read-then-write numbering sequence is
// not atomic under concurrent creation.
func (s *IntakeService) createWithRetry(ctx context.Context, order *domain.ServiceOrder) error {
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		order.Number = s.numbers.Generate(ctx, numbering.DocTypeTicket, time.Now())
		err = s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !repository.IsDuplicateNumber(err) {
			return err
		}
		s.logger.Warn("duplicate document number, regenerating",
			zap.String("number", order.Number), zap.Int("attempt", attempt+1))
	}
	return err
}

func (s *IntakeService) publish(ctx context.Context, event events.Event) {
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
