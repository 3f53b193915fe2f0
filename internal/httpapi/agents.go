package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/agentform"
	"voicera-console/internal/agentops"
	"voicera-console/internal/backend"
	"voicera-console/internal/listing"
)

func (h *Handlers) ListAgents(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	agents, err := api.ListAgents(c.Request.Context(), hd.OrgID())
	if err != nil {
		h.fail(c, err)
		return
	}
	q := listing.ParseQuery(c.Request.URL.Query()).WithDefaultSort("agent_type", false)
	c.JSON(http.StatusOK, listing.Apply(agents, listing.Agents, q))
}

func storedAgent(a backend.Agent) agentform.StoredAgent {
	return agentform.StoredAgent{
		AgentType:         a.AgentType,
		AgentCategory:     a.AgentCategory,
		PhoneNumber:       a.PhoneNumber,
		TelephonyProvider: a.TelephonyProvider,
		GreetingMessage:   a.GreetingMessage,
		Config:            a.AgentConfig,
	}
}

type editView struct {
	Agent   backend.Agent     `json:"agent"`
	Draft   agentform.Draft   `json:"draft"`
	Options agentform.Options `json:"options"`
	Changed bool              `json:"changed"`
}

func (h *Handlers) editView(a backend.Agent, ed *agentform.Editor) editView {
	return editView{Agent: a, Draft: ed.Draft(), Options: ed.Form().Options(), Changed: ed.Changed()}
}

// GetAgent returns the stored agent hydrated into an edit form.
func (h *Handlers) GetAgent(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	a, err := api.GetAgent(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.editView(a, agentform.NewEditor(h.Registry, storedAgent(a))))
}

type draftRequest struct {
	Draft agentform.Draft `json:"draft"`
}

func (h *Handlers) CreateAgent(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	a, err := h.ops(c, api).Create(c.Request.Context(), actor(c, hd), h.Registry, req.Draft)
	if errors.Is(err, agentops.ErrAttachFailed) {
		c.JSON(http.StatusCreated, gin.H{"agent": a, "warning": err.Error()})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"agent": a})
}

// PreviewAgent reports whether a posted draft differs from the stored agent
// without saving it. It drives the Save control.
func (h *Handlers) PreviewAgent(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	a, ed, ok := h.editorFor(c, api)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.editView(a, ed))
}

func (h *Handlers) SaveAgent(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	a, ed, ok := h.editorFor(c, api)
	if !ok {
		return
	}
	if err := h.ops(c, api).Save(c.Request.Context(), actor(c, hd), ed); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.editView(a, ed))
}

func (h *Handlers) editorFor(c *gin.Context, api *backend.Client) (backend.Agent, *agentform.Editor, bool) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return backend.Agent{}, nil, false
	}
	a, err := api.GetAgent(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return backend.Agent{}, nil, false
	}
	ed := agentform.NewEditor(h.Registry, storedAgent(a))
	ed.Apply(req.Draft)
	return a, ed, true
}

// DeleteAgent runs the best-effort delete and returns the per-step report.
// Only a failed agent delete fails the request.
func (h *Handlers) DeleteAgent(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	a, err := api.GetAgent(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	rep := h.ops(c, api).Delete(c.Request.Context(), actor(c, hd), a)
	if err := rep.Err(); err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			h.Sessions.Unauthorized(c)
			return
		}
		status := backend.StatusOf(err)
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error(), "report": rep})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": rep, "warnings": rep.Warnings()})
}

type testCallRequest struct {
	CustomerNumber string `json:"customer_number" binding:"required"`
}

func (h *Handlers) TestCall(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var req testCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "customer_number is required")
		return
	}
	a, err := api.GetAgent(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.ops(c, api).TestCall(c.Request.Context(), hd.Session().ID, a, req.CustomerNumber)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
