package proxy

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/auth"
	"voicera-console/pkg/logger"
)

const maxBody = 10 << 20

// Handler forwards /api/proxy/<path> to <server>/api/v1/<path>. It keeps the
// browser same-origin with the console while the backend stays on a
// server-side URL.
//
// With sessions configured the route sits behind the console session and the
// backend token is taken from it; a backend 401 ends that session. Without
// sessions the caller must send its own Authorization header.
type Handler struct {
	base     string
	http     *http.Client
	observe  func(method string, status int)
	sessions Sessions
}

// Sessions is the part of auth.Sessions the proxy needs.
type Sessions interface {
	RequireSession() gin.HandlerFunc
	Unauthorized(c *gin.Context)
}

type Option func(*Handler)

func WithHTTPClient(hc *http.Client) Option {
	return func(h *Handler) { h.http = hc }
}

func WithObserver(fn func(method string, status int)) Option {
	return func(h *Handler) { h.observe = fn }
}

func WithSessions(s Sessions) Option {
	return func(h *Handler) { h.sessions = s }
}

func New(serverURL string, opts ...Option) *Handler {
	base := strings.TrimRight(serverURL, "/")
	base = strings.TrimSuffix(base, "/api/v1")
	h := &Handler{base: base, http: &http.Client{Timeout: 30 * time.Second}}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Handler) Register(r gin.IRouter) {
	if h.sessions != nil {
		r.Any("/api/proxy/*path", h.sessions.RequireSession(), h.Forward)
		return
	}
	r.Any("/api/proxy/*path", h.Forward)
}

func (h *Handler) Forward(c *gin.Context) {
	log := logger.FromGin(c)
	status := h.forward(c, log)
	if h.observe != nil {
		h.observe(c.Request.Method, status)
	}
}

func (h *Handler) forward(c *gin.Context, log *slog.Logger) int {
	handle, _ := auth.FromGin(c)
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if authz == "" && handle != nil && handle.Token() != "" {
		authz = "Bearer " + handle.Token()
	}
	if authz == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
		return http.StatusUnauthorized
	}

	path := strings.TrimPrefix(c.Param("path"), "/")
	target := h.base + "/api/v1/" + path
	if raw := c.Request.URL.RawQuery; raw != "" {
		target += "?" + raw
	}

	var body io.Reader
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead && c.Request.Body != nil {
		b, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return http.StatusBadRequest
		}
		if len(b) > 0 {
			body = bytes.NewReader(b)
		}
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proxy path"})
		return http.StatusBadRequest
	}
	req.Header.Set("Authorization", authz)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		log.Error("proxy upstream failed", "method", req.Method, "path", path, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
		return http.StatusBadGateway
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && handle != nil && h.sessions != nil {
		if err := handle.Clear(c.Request.Context()); err != nil {
			log.Warn("session clear failed", "err", err)
		}
		h.sessions.Unauthorized(c)
		return http.StatusUnauthorized
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("proxy read failed", "path", path, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend response unreadable"})
		return http.StatusBadGateway
	}
	if renamesIDs(path) {
		out = renameIDs(out)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	if resp.StatusCode == http.StatusNoContent || len(out) == 0 {
		c.Status(resp.StatusCode)
		return resp.StatusCode
	}
	c.Data(resp.StatusCode, ct, out)
	return resp.StatusCode
}

// Campaign and audience documents come from Mongo with an _id key.
func renamesIDs(path string) bool {
	return strings.HasPrefix(path, "campaigns") || strings.HasPrefix(path, "audience")
}

// renameIDs moves _id to id on a top-level object or on each object of a
// top-level array. Non-JSON bodies are returned unchanged.
func renameIDs(body []byte) []byte {
	var v any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return body
	}
	switch t := v.(type) {
	case map[string]any:
		renameID(t)
	case []any:
		for _, it := range t {
			if m, ok := it.(map[string]any); ok {
				renameID(m)
			}
		}
	default:
		return body
	}
	out, err := json.Marshal(v)
	if err != nil {
		return body
	}
	return out
}

func renameID(m map[string]any) {
	raw, ok := m["_id"]
	if !ok {
		return
	}
	delete(m, "_id")
	if _, exists := m["id"]; !exists {
		m["id"] = raw
	}
}
