package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/agentform"
	"voicera-console/internal/agentops"
	"voicera-console/internal/audit"
	"voicera-console/internal/auth"
	"voicera-console/internal/backend"
	"voicera-console/internal/capability"
	"voicera-console/internal/metrics"
	"voicera-console/internal/reporting"
	"voicera-console/internal/session"
	"voicera-console/internal/telephony"
	"voicera-console/pkg/logger"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Registry *capability.Registry
	Sessions *auth.Sessions
	Audit    *audit.Service
	Metrics  *metrics.Metrics

	// BackendURL is the server-side backend origin.
	BackendURL string
	// VoiceServerURL is the public voice server base used in answer URLs.
	VoiceServerURL string
	HTTPClient     *http.Client

	// Caller and Guard enable test calls; both may be nil.
	Caller agentops.Caller
	Guard  agentops.Guard

	Location *time.Location
}

// client binds a backend client to the request's session.
func (h *Handlers) client(c *gin.Context, s backend.Session) *backend.Client {
	opts := []backend.Option{
		backend.WithHTTPClient(h.HTTPClient),
		backend.WithLogger(logger.FromGin(c)),
	}
	if h.Metrics != nil {
		opts = append(opts, backend.WithObserver(h.Metrics.ObserveBackend))
	}
	return backend.New(h.BackendURL, s, opts...)
}

// sessionClient resolves the session set by RequireSession and binds a client
// to it. It writes the error response itself when no session is present.
func (h *Handlers) sessionClient(c *gin.Context) (*session.Handle, *backend.Client, bool) {
	hd, err := auth.FromGin(c)
	if err != nil {
		h.Sessions.Unauthorized(c)
		return nil, nil, false
	}
	return hd, h.client(c, hd), true
}

func (h *Handlers) ops(c *gin.Context, api *backend.Client) *agentops.Service {
	opts := []agentops.Option{
		agentops.WithProvisioner(telephony.NewVobizProvisioner(api)),
		agentops.WithAudit(h.Audit),
		agentops.WithLogger(logger.FromGin(c)),
	}
	if h.Caller != nil {
		opts = append(opts, agentops.WithTestCalls(h.Caller, h.Guard))
	}
	return agentops.New(api, h.VoiceServerURL, opts...)
}

func actor(c *gin.Context, hd *session.Handle) agentops.Actor {
	return agentops.Actor{
		OrgID:     hd.OrgID(),
		Email:     hd.Email(),
		IPAddress: c.ClientIP(),
		RequestID: logger.RequestID(c),
	}
}

func (h *Handlers) record(c *gin.Context, hd *session.Handle, e audit.Event) {
	a := actor(c, hd)
	e.OrgID = a.OrgID
	e.ActorEmail = a.Email
	e.IPAddress = a.IPAddress
	e.RequestID = a.RequestID
	h.Audit.Record(c.Request.Context(), e)
}

// fail maps err to a JSON error response. A backend 401 ends the console
// session and points the browser at the sign-in page.
func (h *Handlers) fail(c *gin.Context, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		h.Sessions.Unauthorized(c)
	case errors.Is(err, agentform.ErrStepIncomplete),
		errors.Is(err, agentops.ErrInvalidArgument),
		errors.Is(err, reporting.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, agentform.ErrNoChanges):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "no changes to save"})
	case errors.Is(err, agentops.ErrBusy):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "a request for this agent is already in progress"})
	case errors.Is(err, telephony.ErrNumberAttached),
		errors.Is(err, telephony.ErrAgentHasNumber):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, telephony.ErrProvisioning):
		// Checked before APIError: provisioning wraps the backend error it hit.
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message})
	default:
		logger.FromGin(c).Error("request failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
