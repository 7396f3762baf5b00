package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// StatusHandler serves the read-only order aggregation and token issuance.
type StatusHandler struct {
	lifecycle  *service.LifecycleService
	tokens     *auth.TokenManager
	secretHash string
}

// NewStatusHandler constructs the handler.
func NewStatusHandler(lifecycle *service.LifecycleService, tokens *auth.TokenManager, secretHash string) *StatusHandler {
	return &StatusHandler{lifecycle: lifecycle, tokens: tokens, secretHash: secretHash}
}

// IssueToken POST /auth/token exchanges the gateway secret for a JWT.
func (h *StatusHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !auth.VerifyGatewaySecret(h.secretHash, req.Secret) {
		return apperrors.NewUnauthorized("invalid secret")
	}

	token, expiresAt, err := h.tokens.GenerateToken("admin", "operator")
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}})
}

// Status GET /status.
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	counts, err := h.lifecycle.StatusCounts(c.UserContext())
	if err != nil {
		return err
	}
	rows := make([]dto.StateCountResponse, 0, len(counts))
	for _, sc := range counts {
		rows = append(rows, dto.StateCountResponse{
			State:    string(sc.State),
			Priority: string(sc.Priority),
			Count:    sc.Count,
		})
	}
	return c.JSON(fiber.Map{"data": rows})
}
