package completions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/leandrotocalini/promptfan/internal/redact"
)

// Client sends chat completion requests to a single endpoint URL.
// Each call makes exactly one HTTP request.
type Client struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string
	logger     *slog.Logger
	redactor   *redact.Redactor
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a client for the given endpoint URL and API key.
// The default HTTP client has no timeout.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		apiKey:     apiKey,
		endpoint:   endpoint,
		logger:     slog.Default(),
		redactor:   redact.New().AddLiteral(apiKey),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete posts req to the endpoint and decodes the response. A 2xx JSON
// body is returned even if it lacks choices; callers read the text through
// ChatResponse.Content.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("sending completion request",
		"model", req.Model,
		"messages", len(req.Messages),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &ClassifiedError{Type: ErrCanceled, Message: ctx.Err().Error()}
		}
		return nil, &ClassifiedError{Type: ErrTransport, Message: c.redactor.Redact(err.Error())}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ce := classifyHTTPError(resp)
		ce.Message = c.redactor.Redact(ce.Message)
		return nil, ce
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClassifiedError{
			Type:       ErrTransport,
			StatusCode: resp.StatusCode,
			Message:    c.redactor.Redact(fmt.Sprintf("read response body: %v", err)),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, &ClassifiedError{
			Type:       ErrMalformedResponse,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("parse response JSON: %v", err),
		}
	}

	return &chatResp, nil
}
