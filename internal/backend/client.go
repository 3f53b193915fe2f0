package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIPrefix is the path every backend resource lives under.
const APIPrefix = "/api/v1"

var ErrUnauthorized = errors.New("backend: unauthorized")

// Session supplies credentials for each request. Token and OrgID are read on
// every call; Clear runs when the backend answers 401.
type Session interface {
	Token() string
	OrgID() string
	Clear(ctx context.Context) error
}

// Observer is told about every completed backend round trip. status is 0 on
// transport failure.
type Observer func(method, resource string, status int, elapsed time.Duration)

// Client is a typed backend API client bound to one session. There is no
// retry, caching or deduplication.
type Client struct {
	base    string
	http    *http.Client
	session Session
	log     *slog.Logger
	observe Observer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// New builds a client for baseURL (scheme and host, with or without the
// /api/v1 suffix).
func New(baseURL string, session Session, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	base = strings.TrimSuffix(base, APIPrefix)
	c := &Client{
		base:    base + APIPrefix,
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OrgID is the organization of the bound session.
func (c *Client) OrgID() string {
	if c.session == nil {
		return ""
	}
	return c.session.OrgID()
}

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string

	unauthorized bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}

// Unwrap exposes ErrUnauthorized for 401 responses on authenticated calls.
func (e *APIError) Unwrap() error {
	if e.unauthorized {
		return ErrUnauthorized
	}
	return nil
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// ErrorMessage extracts the backend's message from an error body: detail as a
// string, detail as a list of validation errors, or error. Empty when none.
func ErrorMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := rawMessage(payload.Detail); msg != "" {
		return msg
	}
	return rawMessage(payload.Error)
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &list) == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Message
	}
	return ""
}

type call struct {
	method   string
	path     string
	query    url.Values
	body     any
	public   bool
	resource string
}

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, r call, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("backend: decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

// send performs the request and applies the error and 401 policy. On success
// the caller owns the response body.
func (c *Client) send(ctx context.Context, r call) (*http.Response, error) {
	u := c.base + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader = http.NoBody
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s %s: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if !r.public && c.session != nil {
		if tok := c.session.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resource := r.resource
	if resource == "" {
		resource = r.path
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(r.method, resource, 0, start)
		return nil, fmt.Errorf("backend: %s %s: %w", r.method, r.path, err)
	}
	c.record(r.method, resource, resp.StatusCode, start)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{Status: resp.StatusCode, Message: ErrorMessage(raw)}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnauthorized && !r.public {
		apiErr.unauthorized = true
		if c.session != nil {
			if err := c.session.Clear(ctx); err != nil {
				c.log.Warn("backend: clear session after 401", slog.Any("err", err))
			}
		}
	}
	return nil, apiErr
}

func (c *Client) record(method, resource string, status int, start time.Time) {
	if c.observe != nil {
		c.observe(method, resource, status, time.Since(start))
	}
}

// Status is the generic {status, message} envelope many endpoints return.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Failed reports an in-band failure on a 2xx response.
func (s Status) Failed() bool { return strings.EqualFold(s.Status, "fail") }

func (s Status) Err(op string) error {
	if !s.Failed() {
		return nil
	}
	msg := s.Message
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Errorf("backend: %s: %s", op, msg)
}

func esc(s string) string { return url.PathEscape(s) }
