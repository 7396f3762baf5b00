package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/chat"
	"github.com/spec-kit/service-desk/internal/classify"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/numbering"
	"github.com/spec-kit/service-desk/internal/observability"
	"github.com/spec-kit/service-desk/internal/repository"
	"github.com/spec-kit/service-desk/internal/resolve"
	"github.com/spec-kit/service-desk/internal/service"
)

func newWebhookApp(orders *repository.MemoryOrderRepository) *fiber.App {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	intake := service.NewIntakeService(service.IntakeDependencies{
		Classifier: classify.NewClassifier(classify.DefaultRuleset()),
		Catalog:    resolve.NewLoader(&repository.MemoryCatalogRepository{}, nil, time.Minute, logger),
		Numbers:    numbering.NewService(orders, logger),
		OrderRepo:  orders,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		OrderRepo:  orders,
		Dispatcher: dispatcher,
		Transport:  chat.LogTransport{Logger: logger},
		Metrics:    metrics,
		Logger:     logger,
	})

	app := fiber.New()
	handler := NewWebhookHandler(intake, lifecycle, "", logger)
	app.Post("/webhook/messages", handler.Receive)
	return app
}

func postMessage(t *testing.T, app *fiber.App, text string) int {
	t.Helper()
	body, err := json.Marshal(dto.InboundMessageRequest{Text: text, Sender: "recepcion"})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/webhook/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestWebhookProblemWordedMessageOpensOrder(t *testing.T) {
	orders := repository.NewMemoryOrderRepository()
	app := newWebhookApp(orders)

	// "problema" is a command keyword, but here it is a customer
	// describing a fault; the message must reach intake.
	status := postMessage(t, app, "problema con la impresora de recepcion, no imprime")
	assert.Equal(t, fiber.StatusAccepted, status)

	today := time.Now().Format("20060102")
	number, err := orders.FindMaxNumber(context.Background(), "TKT", today)
	require.NoError(t, err)
	require.NotEmpty(t, number, "a service-request message must open an order")

	order, err := orders.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatePending, order.State)
	assert.Equal(t, "recepcion", order.Contact)
}

func TestWebhookCommandWithNumberRoutesToLifecycle(t *testing.T) {
	orders := repository.NewMemoryOrderRepository()
	orders.Seed(domain.ServiceOrder{
		Number:   "TKT-20250101-001",
		State:    domain.OrderStateInProgress,
		Priority: domain.OrderPriorityMedium,
	})
	app := newWebhookApp(orders)

	status := postMessage(t, app, "listo TKT-20250101-001")
	assert.Equal(t, fiber.StatusAccepted, status)

	order, err := orders.GetByNumber(context.Background(), "TKT-20250101-001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateDone, order.State)
}

func TestWebhookProblemCommandWithNumberFlagsOrder(t *testing.T) {
	orders := repository.NewMemoryOrderRepository()
	orders.Seed(domain.ServiceOrder{
		Number:   "TKT-20250101-002",
		State:    domain.OrderStateInProgress,
		Priority: domain.OrderPriorityMedium,
	})
	app := newWebhookApp(orders)

	status := postMessage(t, app, "problema TKT-20250101-002 sigue fallando")
	assert.Equal(t, fiber.StatusAccepted, status)

	order, err := orders.GetByNumber(context.Background(), "TKT-20250101-002")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatePending, order.State)
	assert.Contains(t, order.Notes, "sigue fallando")
}

func TestWebhookNonRequestTextCreatesNothing(t *testing.T) {
	orders := repository.NewMemoryOrderRepository()
	app := newWebhookApp(orders)

	status := postMessage(t, app, "gracias, ya quedó funcionando la semana pasada")
	assert.Equal(t, fiber.StatusAccepted, status)

	counts, err := orders.CountByStatePriority(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}
