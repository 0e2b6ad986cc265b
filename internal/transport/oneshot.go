package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iksnae/weather-chat/internal"
	"github.com/iksnae/weather-chat/internal/chat"
)

const maxErrorBody = 512

// HTTPClient is the subset of *http.Client used by OneShotClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// OneShot delivers a single message and waits for a single reply
type OneShot interface {
	Send(ctx context.Context, message string, history []chat.Message) (*Reply, error)
}

// OneShotClient posts messages to the backend's /chat endpoint
type OneShotClient struct {
	endpoint string
	client   HTTPClient
}

// NewOneShotClient creates a client for endpoint, e.g. http://localhost:8000/chat
func NewOneShotClient(endpoint string, client HTTPClient) *OneShotClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &OneShotClient{endpoint: endpoint, client: client}
}

// Endpoint returns the URL requests are posted to
func (c *OneShotClient) Endpoint() string {
	return c.endpoint
}

// Send implements OneShot. Network failures and non-2xx statuses return a
// *internal.RequestError; undecodable bodies return a *internal.ParseError.
func (c *OneShotClient) Send(ctx context.Context, message string, history []chat.Message) (*Reply, error) {
	if history == nil {
		history = []chat.Message{}
	}
	body, err := json.Marshal(chatRequest{Message: message, History: history})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &internal.RequestError{URL: c.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &internal.RequestError{URL: c.endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := strings.TrimSpace(string(snippet))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, &internal.RequestError{
			URL:    c.endpoint,
			Status: resp.StatusCode,
			Err:    errors.New(detail),
		}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &internal.ParseError{Source: "oneshot", Key: c.endpoint, Err: err}
	}
	if decoded.Response == nil {
		return nil, &internal.ParseError{
			Source: "oneshot",
			Key:    c.endpoint,
			Err:    errors.New("missing response field"),
		}
	}

	return &Reply{
		Response:  *decoded.Response,
		Data:      decoded.Data,
		Timestamp: decoded.Timestamp.Time,
	}, nil
}
