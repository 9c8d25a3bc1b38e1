package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrPermanent marks delivery failures that will not succeed on retry
// (bad address, suppressed recipient). Transient failures are plain errors;
// the dispatcher leaves the match unsent either way, so a transient failure
// becomes eligible again on the next run.
var ErrPermanent = errors.New("permanent delivery failure")

type Message struct {
	To           string            `json:"to"`
	Subject      string            `json:"subject"`
	Body         string            `json:"body"`
	TrackingRefs map[string]string `json:"tracking_refs,omitempty"`
}

// Deliverer hands a message to the external delivery channel and returns the
// channel's delivery id.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) (string, error)
}

type deliverResponse struct {
	DeliveryID string `json:"delivery_id"`
	Error      string `json:"error,omitempty"`
}

type HTTPDeliverer struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

func NewHTTPDeliverer(apiURL, apiKey, from string, timeout time.Duration) *HTTPDeliverer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPDeliverer{
		apiURL: strings.TrimSpace(apiURL),
		apiKey: strings.TrimSpace(apiKey),
		from:   strings.TrimSpace(from),
		client: &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDeliverer) Deliver(ctx context.Context, msg Message) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", fmt.Errorf("deliver: %w: empty recipient", ErrPermanent)
	}

	payload := struct {
		From string `json:"from"`
		Message
	}{From: d.from, Message: msg}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deliver: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("deliver: read response: %w", err)
	}

	// 4xx means the provider rejected this message for good; 5xx is worth
	// retrying on a later run.
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", fmt.Errorf("deliver: %w: status %d", ErrPermanent, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("deliver: provider returned status %d", resp.StatusCode)
	}

	var out deliverResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("deliver: decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("deliver: provider error: %s", out.Error)
	}
	if out.DeliveryID == "" {
		return "", fmt.Errorf("deliver: provider returned no delivery id")
	}
	return out.DeliveryID, nil
}
