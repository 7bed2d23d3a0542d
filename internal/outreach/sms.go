package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/phone"
)

// SMSClient sends text messages through an HTTP SMS gateway.
type SMSClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

type smsRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// NewSMSClient creates an SMS client. Returns nil when no gateway URL is
// configured; the resolver reports the channel as unavailable in that case.
func NewSMSClient(baseURL, apiKey string, log *logger.Logger) *SMSClient {
	if baseURL == "" {
		return nil
	}

	return &SMSClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// Send delivers one SMS. Provider error text is preserved in the returned
// error so the failure classifier can match signatures like "blacklist".
func (c *SMSClient) Send(ctx context.Context, recipient, body string) error {
	normalized := phone.NormalizeE164(recipient)

	payload, err := json.Marshal(smsRequest{Phone: normalized, Message: body})
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	url := fmt.Sprintf("%s/messages", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Debug("sms sent", "phone", normalized)
	return nil
}
