package tryhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client sends requests through a Doer and reports failures as *ClientError.
type Client struct {
	client       Doer
	validStatus  func(int) bool
	logger       zerolog.Logger
	maxErrorBody int64
}

// Doer interface that match the standard HTTP client `http.Do` interface.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Do makes an HTTP request with the native `http.Do` interface.
//
// A transport failure returns a *ClientError with the request attached. A
// reply with a rejected status returns a *ClientError with both the request
// and the response attached; its body is read and closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Msg("no response received")
		return nil, &ClientError{Request: req, Err: err}
	}
	if c.validStatus(res.StatusCode) {
		return res, nil
	}

	attached, readErr := c.readResponse(res)
	err = fmt.Errorf("%w %d", ErrStatus, res.StatusCode)
	if readErr != nil {
		err = fmt.Errorf("%w: reading body: %v", err, readErr)
	}
	c.logger.Debug().
		Int("status", res.StatusCode).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("response rejected")
	return nil, &ClientError{Request: req, Response: attached, Err: err}
}

func (c *Client) readResponse(res *http.Response) (*Response, error) {
	defer res.Body.Close() //nolint:errcheck

	attached := &Response{Status: res.StatusCode, Header: res.Header}
	body, err := io.ReadAll(io.LimitReader(res.Body, c.maxErrorBody))
	attached.Data = decodeBody(res.Header.Get("Content-Type"), body)
	return attached, err
}

// decodeBody returns JSON bodies decoded and anything else as a string.
func decodeBody(contentType string, body []byte) any {
	if isJSON(contentType) && json.Valid(body) {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
	}
	return string(body)
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// Get makes a HTTP GET request to provided URL.
func (c *Client) Get(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	return c.request(ctx, http.MethodGet, url, nil, headers)
}

// Post makes a HTTP POST request to provided URL.
func (c *Client) Post(ctx context.Context, url string, body io.Reader, headers http.Header) (*http.Response, error) {
	return c.request(ctx, http.MethodPost, url, body, headers)
}

// Put makes a HTTP PUT request to provided URL.
func (c *Client) Put(ctx context.Context, url string, body io.Reader, headers http.Header) (*http.Response, error) {
	return c.request(ctx, http.MethodPut, url, body, headers)
}

// Patch makes a HTTP PATCH request to provided URL.
func (c *Client) Patch(ctx context.Context, url string, body io.Reader, headers http.Header) (*http.Response, error) {
	return c.request(ctx, http.MethodPatch, url, body, headers)
}

// Delete makes a HTTP DELETE request to provided URL.
func (c *Client) Delete(ctx context.Context, url string, headers http.Header) (*http.Response, error) {
	return c.request(ctx, http.MethodDelete, url, nil, headers)
}

func (c *Client) request(
	ctx context.Context,
	method, url string,
	body io.Reader,
	headers http.Header,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &RequestCreationError{err}
	}
	if headers != nil {
		req.Header = headers
	}
	return c.Do(req)
}

// Result is a successful response with its body decoded.
type Result[T any] struct {
	Data   T
	Status int
	Header http.Header
}

// DecodeJSON decodes the body of a successful response into T and closes it.
// It takes the pair returned by the Client methods so calls can be chained:
//
//	tryhttp.DecodeJSON[User](c.Get(ctx, url, nil))
func DecodeJSON[T any](res *http.Response, err error) (*Result[T], error) {
	if err != nil {
		return nil, err
	}
	defer res.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	out := &Result[T]{Status: res.StatusCode, Header: res.Header}
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out.Data); err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	return out, nil
}

// Option represents the client options.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client Doer) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithStatusValidator sets which status codes count as success.
func WithStatusValidator(valid func(status int) bool) Option {
	return func(c *Client) {
		c.validStatus = valid
	}
}

// WithLogger sets the logger used to report failed exchanges at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMaxErrorBody caps how many bytes of a rejected reply are kept.
func WithMaxErrorBody(n int64) Option {
	return func(c *Client) {
		c.maxErrorBody = n
	}
}

const (
	defaultHTTPTimeout  = 60 * time.Second
	defaultMaxErrorBody = 1 << 20
)

// NewClient returns a new instance of the Client.
func NewClient(opts ...Option) *Client {
	client := Client{
		client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		validStatus:  isSuccess,
		logger:       zerolog.Nop(),
		maxErrorBody: defaultMaxErrorBody,
	}
	for _, opt := range opts {
		opt(&client)
	}
	return &client
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
