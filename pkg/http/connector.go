// Package http wraps the standard HTTP client with the plumbing every
// outbound integration needs: tuned transport timeouts, bearer-token and
// logging RoundTripper decorators, and JSON/multipart request helpers
// with typed error reporting.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"
)

// Connector issues JSON requests against a single remote service.
type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewConnector builds a connector for the given base URL. Per-request
// endpoints are appended to it.
func NewConnector(baseURL string, logger *zap.Logger, opts ...Option) *Connector {
	return &Connector{
		baseURL:    baseURL,
		httpClient: newClient(opts...),
		logger:     logger,
	}
}

// RequestOpt adjusts a single request.
type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers map[string]string
}

// WithHeader sets an extra header on the request.
func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// DoRequest sends reqBody as JSON and decodes the response into respBody.
// A non-2xx status is returned as *HTTPError, a transport failure as
// *NetworkError. Either of reqBody/respBody may be nil.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var bodyReader io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
		ctx = context.WithValue(ctx, payloadContextKey{}, raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	return c.do(req, respBody)
}

// DoMultipartRequest sends a multipart/form-data body assembled by
// prepareBody and decodes the response into respBody.
func (c *Connector) DoMultipartRequest(ctx context.Context, method, endpoint string, prepareBody func(*multipart.Writer) error, respBody any, opts ...RequestOpt) error {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := prepareBody(writer); err != nil {
		return fmt.Errorf("prepare multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	return c.do(req, respBody)
}

func (c *Connector) do(req *http.Request, respBody any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if respBody != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
