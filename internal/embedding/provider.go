package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider converts free text into a fixed-length embedding vector.
// Implementations wrap an external model; nothing in this module computes
// embeddings itself.
type Provider interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type HTTPProvider struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewHTTPProvider(apiURL, apiKey, model string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		apiURL: strings.TrimSpace(apiURL),
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
		client: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) EmbedText(ctx context.Context, text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("embed: empty input text")
	}

	body, err := json.Marshal(embedRequest{Model: p.model, Input: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("embed: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: provider returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("embed: provider error: %s", out.Error.Message)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embed: provider returned no embedding")
	}
	return out.Data[0].Embedding, nil
}
