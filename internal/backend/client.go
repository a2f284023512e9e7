package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// msgConnection is the localized message shown for transport-level failures,
// i.e. requests that never completed.
const msgConnection = "حدث خطأ في الاتصال بالخادم"

// Error is a failed backend call normalized for display. Message is always a
// localized string: either the backend's reported message, the fixed
// per-operation fallback, or the connection failure text. Callers render it
// and never branch on the failure kind.
type Error struct {
	Message string
	Status  int // HTTP status code, 0 when the request never completed
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts the *Error from err, wrapping foreign errors so callers
// always have a displayable message.
func AsError(err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return &Error{Message: msgConnection, Err: err}
}

// Client talks to the Kilo Fresh REST backend. It implements CategoryAPI,
// ProductAPI and OrderAPI.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client for the given base URL, e.g.
// "https://kilo-fresh-back.vercel.app/api".
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     logger.With().Str("component", "backend").Logger(),
	}
}

// errorBody is the JSON shape the backend uses for failures.
type errorBody struct {
	Message string `json:"message"`
}

// do performs one request and decodes a 2xx JSON body into out (which may be
// nil). Any failure comes back as *Error carrying fallback, or the backend's
// own message when the error body is parseable.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, fallback string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Message: fallback, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &Error{Message: msgConnection, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := fallback
		var eb errorBody
		if err := json.NewDecoder(res.Body).Decode(&eb); err == nil && eb.Message != "" {
			msg = eb.Message
		}
		c.log.Error().Int("status", res.StatusCode).Str("method", method).Str("path", path).Msg(msg)
		return &Error{Message: msg, Status: res.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return &Error{Message: fallback, Status: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path, fallback string, out any) error {
	return c.do(ctx, http.MethodGet, path, "application/json", nil, fallback, out)
}

func (c *Client) deleteJSON(ctx context.Context, path, fallback string, out any) error {
	return c.do(ctx, http.MethodDelete, path, "application/json", nil, fallback, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any, fallback string, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return &Error{Message: fallback, Err: err}
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(b), fallback, out)
}
