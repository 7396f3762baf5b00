package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/observability"
	"github.com/spec-kit/service-desk/internal/repository"
)

// captureDispatcher records published events for assertions.
type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureDispatcher) Publish(ctx context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (c *captureDispatcher) ofType(eventType events.EventType) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []events.Event
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fakeTransport records outbound chat messages.
type fakeTransport struct {
	mu   sync.Mutex
	sent []sentMessage
}

type sentMessage struct {
	To   string
	Text string
}

func (f *fakeTransport) Send(ctx context.Context, to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{To: to, Text: text})
	return nil
}

func newLifecycleFixture() (*LifecycleService, *repository.MemoryOrderRepository, *captureDispatcher, *fakeTransport) {
	repo := repository.NewMemoryOrderRepository()
	dispatcher := &captureDispatcher{}
	transport := &fakeTransport{}
	svc := NewLifecycleService(LifecycleDependencies{
		OrderRepo:  repo,
		Dispatcher: dispatcher,
		Transport:  transport,
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})
	return svc, repo, dispatcher, transport
}

func seedOrder(repo *repository.MemoryOrderRepository, number string, state domain.OrderState) {
	repo.Seed(domain.ServiceOrder{
		Number:      number,
		Description: "no enciende la autoclave",
		Priority:    domain.OrderPriorityMedium,
		State:       state,
		Technician:  "tecnico-1",
		CreatedAt:   time.Now().Add(-time.Hour),
		UpdatedAt:   time.Now().Add(-time.Hour),
	})
}

func TestLifecycleCompleteAndStart(t *testing.T) {
	svc, repo, dispatcher, _ := newLifecycleFixture()
	seedOrder(repo, "TKT-20260901-001", domain.OrderStatePending)

	require.NoError(t, svc.HandleReply(context.Background(), "start TKT-20260901-001", "tecnico-1"))
	order, err := repo.GetByNumber(context.Background(), "TKT-20260901-001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateInProgress, order.State)

	require.NoError(t, svc.HandleReply(context.Background(), "listo tkt-20260901-001", "tecnico-1"))
	order, err = repo.GetByNumber(context.Background(), "TKT-20260901-001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateDone, order.State)

	changed := dispatcher.ofType(events.EventOrderStateChanged)
	require.Len(t, changed, 2)
	first := changed[0].Payload.(events.OrderStateChangedPayload)
	assert.Equal(t, domain.OrderStatePending, first.OldState)
	assert.Equal(t, domain.OrderStateInProgress, first.NewState)
	assert.Equal(t, "tecnico-1", first.Actor)
}

func TestLifecycleDoneIsTerminal(t *testing.T) {
	svc, repo, dispatcher, _ := newLifecycleFixture()
	seedOrder(repo, "TKT-20260901-002", domain.OrderStateDone)

	for _, text := range []string{
		"complete TKT-20260901-002",
		"start TKT-20260901-002",
		"hold TKT-20260901-002",
		"problema TKT-20260901-002 sigue roto",
	} {
		require.NoError(t, svc.HandleReply(context.Background(), text, "tecnico-1"))
	}

	order, err := repo.GetByNumber(context.Background(), "TKT-20260901-002")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateDone, order.State)
	assert.Empty(t, order.Notes)
	assert.Empty(t, dispatcher.ofType(events.EventOrderStateChanged))
	assert.Empty(t, dispatcher.ofType(events.EventOrderFlagged))
}

func TestLifecycleHoldAndResume(t *testing.T) {
	svc, repo, _, _ := newLifecycleFixture()
	seedOrder(repo, "TKT-20260901-003", domain.OrderStateInProgress)

	require.NoError(t, svc.HandleReply(context.Background(), "repuestos TKT-20260901-003 falta la placa", "tecnico-1"))
	order, err := repo.GetByNumber(context.Background(), "TKT-20260901-003")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateWaitingParts, order.State)

	require.NoError(t, svc.HandleReply(context.Background(), "retomo TKT-20260901-003", "tecnico-1"))
	order, err = repo.GetByNumber(context.Background(), "TKT-20260901-003")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateInProgress, order.State)
}

func TestLifecycleProblemFlag(t *testing.T) {
	svc, repo, dispatcher, _ := newLifecycleFixture()
	seedOrder(repo, "TKT-20260901-004", domain.OrderStateInProgress)

	require.NoError(t, svc.HandleReply(context.Background(), "problema TKT-20260901-004 volvió a hacer ruido", "tecnico-2"))

	order, err := repo.GetByNumber(context.Background(), "TKT-20260901-004")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatePending, order.State)
	assert.Contains(t, order.Notes, "volvió a hacer ruido")
	assert.Contains(t, order.Notes, "tecnico-2")

	flagged := dispatcher.ofType(events.EventOrderFlagged)
	require.Len(t, flagged, 1)
	payload := flagged[0].Payload.(events.OrderFlaggedPayload)
	assert.Equal(t, "volvió a hacer ruido", payload.Detail)
	assert.Equal(t, "tecnico-2", payload.Actor)
}

func TestLifecycleUnknownOrderAndNoiseAreNoOps(t *testing.T) {
	svc, _, dispatcher, transport := newLifecycleFixture()

	require.NoError(t, svc.HandleReply(context.Background(), "complete TKT-20260901-999", "tecnico-1"))
	require.NoError(t, svc.HandleReply(context.Background(), "gracias, quedó perfecto", "tecnico-1"))
	require.NoError(t, svc.HandleReply(context.Background(), "listo", "tecnico-1"))

	assert.Empty(t, dispatcher.events)
	assert.Empty(t, transport.sent)
}

func TestLifecycleStatusReply(t *testing.T) {
	svc, repo, _, transport := newLifecycleFixture()
	seedOrder(repo, "TKT-20260901-005", domain.OrderStatePending)
	seedOrder(repo, "TKT-20260901-006", domain.OrderStateInProgress)

	require.NoError(t, svc.HandleReply(context.Background(), "estado", "jefe"))

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "jefe", transport.sent[0].To)
	assert.Contains(t, transport.sent[0].Text, "Total: 2")
	assert.Contains(t, transport.sent[0].Text, string(domain.OrderStateInProgress))
}
