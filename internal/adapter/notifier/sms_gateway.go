package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// SMSGateway sends messages through the external SMS relay's HTTP API.
type SMSGateway struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewSMSGateway creates a gateway client.
func NewSMSGateway(baseURL, token string, logger *slog.Logger) *SMSGateway {
	return &SMSGateway{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger.With("component", "sms_gateway"),
	}
}

type smsRequest struct {
	Destination string `json:"destination"`
	Message     string `json:"message"`
}

type smsResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Send delivers one message to one destination. A non-2xx response or a
// success=false body is returned as an error; the caller decides whether
// that matters.
func (g *SMSGateway) Send(ctx context.Context, destination, message string) error {
	body, err := json.Marshal(smsRequest{Destination: destination, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var out smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("sms gateway returned malformed response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("sms gateway rejected message: %s", out.Error)
	}

	return nil
}
