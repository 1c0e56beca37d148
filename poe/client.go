package poe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/poegate/poegate"
)

// DefaultTimeout is the fixed ceiling on upstream calls. There is no
// per-request cancellation beyond the context; the ceiling bounds how long
// a suspended request can hold resources.
const DefaultTimeout = 60 * time.Second

// Interface compliance check.
var _ poegate.Provider = (*Client)(nil)

// Client implements [poegate.Provider] for the Poe bot-query API.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	rest       *resty.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client for the streaming endpoint.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the upstream call ceiling.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Poe [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	c.rest = resty.New().
		SetBaseURL(c.baseURL).
		SetAuthToken(c.apiKey).
		SetTimeout(c.timeout)
	return c
}

// Stream sends a query to the bot endpoint and returns a [poegate.Stream]
// over the generated text chunks.
func (c *Client) Stream(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, &poegate.APIError{Message: "encode bot query", Err: err}
	}

	endpoint := c.baseURL + botPathPrefix + url.PathEscape(req.Bot)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &poegate.APIError{Message: "build bot query", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &poegate.APIError{Message: fmt.Sprintf("query bot %s", req.Bot), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(ctx, resp.Body), nil
}

// ListModels enumerates the bot identifiers the upstream currently serves.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var out modelsResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(modelsPath)
	if err != nil {
		return nil, &poegate.APIError{Message: "list available models", Err: err}
	}
	if resp.IsError() {
		return nil, &poegate.APIError{
			Message: fmt.Sprintf("list available models: status %d", resp.StatusCode()),
		}
	}
	models := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		models = append(models, m.Slug)
	}
	return models, nil
}

func buildRequest(req poegate.Request) apiRequest {
	query := make([]apiMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		query = append(query, apiMessage{
			Role:    string(poegate.NormalizeRole(m.Role)),
			Content: m.Content,
		})
	}
	return apiRequest{Version: protocolVer, Type: "query", Query: query}
}

func parseHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	msg := fmt.Sprintf("status %d", resp.StatusCode)
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &poegate.AuthenticationError{Message: "invalid Poe API key: " + msg}
	}
	return &poegate.APIError{Message: msg}
}
