// Package apiclient is the typed client of the remote booking REST API.
// Every request carries the caller's bearer token; a 401 answer runs the
// unauthorized hook so the portal can forget the token.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// TokenSource yields the bearer token for the request bound to ctx.  It is
// consulted on every call, never cached.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

type tokenKey struct{}

// WithToken overrides the token source for calls made with the returned
// context.  Login uses it to resolve the user before the token is stored.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Client talks to the remote API.  It is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	log            *zap.Logger

	Buses        *Resource[model.Bus]
	Locations    *Resource[model.Location]
	Routes       *Resource[model.Route]
	Schedules    *Resource[model.Schedule]
	Reservations *Resource[model.Reservation]
	Users        *Resource[model.User]
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger used for failed calls.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithUnauthorizedHandler registers the hook run on every 401.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New builds a Client for baseURL (for example http://api:8000/api).
func New(baseURL string, timeout time.Duration, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Buses = NewResource[model.Bus](c, "buses")
	c.Locations = NewResource[model.Location](c, "locations")
	c.Routes = NewResource[model.Route](c, "routes")
	c.Schedules = NewResource[model.Schedule](c, "schedules")
	c.Reservations = NewResource[model.Reservation](c, "reservations")
	c.Users = NewResource[model.User](c, "users")
	return c
}

// TokenOverride returns the token set by WithToken, if any.
func TokenOverride(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey{}).(string)
	return t, ok
}

func (c *Client) token(ctx context.Context) string {
	if t, ok := TokenOverride(ctx); ok {
		return t
	}
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token(ctx)
}

// do sends one request.  in is JSON-encoded when non-nil; out receives the
// decoded body when non-nil.  There is no retry.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.token(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("remote call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseError(resp.StatusCode, raw)
		c.log.Debug("remote call rejected",
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// page is the paginated list shape; unpaginated endpoints return a bare array.
type page[T any] struct {
	Results []T `json:"results"`
}

func (c *Client) list(ctx context.Context, path string, out any) error {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p page[json.RawMessage]
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return fmt.Errorf("decode page %s: %w", path, err)
		}
		b, _ := json.Marshal(p.Results)
		trimmed = b
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode list %s: %w", path, err)
	}
	return nil
}
