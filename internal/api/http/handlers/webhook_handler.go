package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/chat"
	"github.com/spec-kit/service-desk/internal/numbering"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

const gatewaySecretHeader = "X-Gateway-Secret"

// WebhookHandler receives inbound chat messages from the gateway and
// routes them to the command engine or the intake pipeline.
type WebhookHandler struct {
	intake     *service.IntakeService
	lifecycle  *service.LifecycleService
	secretHash string
	logger     *zap.Logger
}

// NewWebhookHandler constructs the handler.
func NewWebhookHandler(intake *service.IntakeService, lifecycle *service.LifecycleService, secretHash string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		intake:     intake,
		lifecycle:  lifecycle,
		secretHash: secretHash,
		logger:     logger,
	}
}

// Receive POST /webhook/messages.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	if !auth.VerifyGatewaySecret(h.secretHash, c.Get(gatewaySecretHeader)) {
		return apperrors.NewUnauthorized("invalid gateway secret")
	}

	var req dto.InboundMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Text == "" || req.Sender == "" {
		return apperrors.NewValidationError("text and sender required", nil)
	}

	// Several action keywords ("problema") are also everyday problem
	// phrasing, so a keyword alone does not make the text a command:
	// it must target something shaped like a document number. Anything
	// else goes through classification.
	if cmd, err := service.ParseCommand(req.Text); err == nil && isOperatorCommand(cmd) {
		if err := h.lifecycle.Apply(c.UserContext(), cmd, req.Sender); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusAccepted)
	}

	msg := chat.Message{Text: req.Text, Sender: req.Sender, IsGroup: req.IsGroup}
	if _, err := h.intake.HandleMessage(c.UserContext(), msg); err != nil {
		// The failure notification has already gone out; the gateway
		// only needs to know the message was not processed.
		return apperrors.NewInternalError(err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func isOperatorCommand(cmd service.Command) bool {
	return cmd.Action == service.ActionStatus || numbering.IsDocumentNumber(cmd.Number)
}
