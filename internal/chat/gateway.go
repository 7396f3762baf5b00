package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPGateway delivers outbound messages by POSTing to the chat
// gateway's send endpoint.
type HTTPGateway struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPGateway builds a gateway client.
func NewHTTPGateway(url string, timeout time.Duration, logger *zap.Logger) *HTTPGateway {
	return &HTTPGateway{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type sendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// Send posts the message to the gateway. Non-2xx responses are errors.
func (g *HTTPGateway) Send(ctx context.Context, to, text string) error {
	body, err := json.Marshal(sendRequest{To: to, Text: text})
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway send: unexpected status %d", resp.StatusCode)
	}

	g.logger.Debug("chat message delivered", zap.String("to", to))
	return nil
}
