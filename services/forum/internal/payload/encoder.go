// Package payload turns structured reply content into a storable payload
// reference consumed by the ledger's publish endpoint. The storage service
// is a black box that returns an immutable URI for uploaded JSON.
package payload

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

// Encoder is the port for payload encoding, kept narrow so the publication
// pipeline can be tested with a stub.
type Encoder interface {
	EncodeTextPayload(ctx context.Context, content string, tags []string) (string, error)
}

// TextPayload is the JSON document uploaded for text-only content.
type TextPayload struct {
	Kind    string   `json:"kind"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

type uploadResponse struct {
	URI string `json:"uri"`
}

// Client uploads payloads over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) EncodeTextPayload(ctx context.Context, content string, tags []string) (string, error) {
	body, err := json.Marshal(TextPayload{Kind: "text", Content: content, Tags: tags})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/payloads", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("payload: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	var out uploadResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("payload: decode error: %w", err)
	}
	if out.URI == "" {
		return "", fmt.Errorf("payload: empty uri in response")
	}
	return out.URI, nil
}
