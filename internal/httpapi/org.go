package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/audit"
	"voicera-console/internal/auth"
	"voicera-console/internal/backend"
	"voicera-console/internal/listing"
)

// Members

func (h *Handlers) ListMembers(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	ms, err := api.ListMembers(c.Request.Context(), hd.OrgID())
	if err != nil {
		h.fail(c, err)
		return
	}
	q := listing.ParseQuery(c.Request.URL.Query()).WithDefaultSort("name", false)
	c.JSON(http.StatusOK, listing.Apply(ms, listing.Members, q))
}

type memberRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name"`
}

// AddMember creates a user in the caller's organization. The org id always
// comes from the session.
func (h *Handlers) AddMember(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email, password and name are required")
		return
	}
	ev := audit.Event{Type: audit.EventMemberAdded, Target: req.Email}
	err := api.AddMember(c.Request.Context(), backend.NewMember{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		Name:        strings.TrimSpace(req.Name),
		CompanyName: req.CompanyName,
		OrgID:       hd.OrgID(),
	})
	if err != nil {
		ev.Outcome, ev.Message = audit.OutcomeFailed, err.Error()
		h.record(c, hd, ev)
		h.fail(c, err)
		return
	}
	h.record(c, hd, ev)
	c.JSON(http.StatusCreated, gin.H{"status": "success"})
}

func (h *Handlers) DeleteMember(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	email := c.Param("email")
	if strings.EqualFold(email, hd.Email()) {
		badRequest(c, "cannot remove yourself")
		return
	}
	ev := audit.Event{Type: audit.EventMemberDeleted, Target: email}
	if err := api.DeleteMember(c.Request.Context(), email, hd.OrgID()); err != nil {
		ev.Outcome, ev.Message = audit.OutcomeFailed, err.Error()
		h.record(c, hd, ev)
		h.fail(c, err)
		return
	}
	h.record(c, hd, ev)
	c.Status(http.StatusNoContent)
}

// Campaigns

func (h *Handlers) ListCampaigns(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	cs, err := api.ListCampaigns(c.Request.Context(), hd.OrgID())
	if err != nil {
		h.fail(c, err)
		return
	}
	q := listing.ParseQuery(c.Request.URL.Query()).WithDefaultSort("campaign_name", false)
	c.JSON(http.StatusOK, listing.Apply(cs, listing.Campaigns, q))
}

func (h *Handlers) GetCampaign(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	cp, err := api.GetCampaign(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *Handlers) CreateCampaign(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var cp backend.Campaign
	if err := c.ShouldBindJSON(&cp); err != nil || strings.TrimSpace(cp.CampaignName) == "" {
		badRequest(c, "campaign_name is required")
		return
	}
	cp.OrgID = hd.OrgID()
	ev := audit.Event{Type: audit.EventCampaignCreated, Target: cp.CampaignName, AgentType: cp.AgentType}
	if err := api.CreateCampaign(c.Request.Context(), cp); err != nil {
		ev.Outcome, ev.Message = audit.OutcomeFailed, err.Error()
		h.record(c, hd, ev)
		h.fail(c, err)
		return
	}
	h.record(c, hd, ev)
	c.JSON(http.StatusCreated, cp)
}

// Audiences

func (h *Handlers) ListAudiences(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	as, err := api.ListAudiences(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	q := listing.ParseQuery(c.Request.URL.Query()).WithDefaultSort("audience_name", false)
	c.JSON(http.StatusOK, listing.Apply(as, listing.Audiences, q))
}

func (h *Handlers) GetAudience(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	a, err := api.GetAudience(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handlers) CreateAudience(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var a backend.Audience
	if err := c.ShouldBindJSON(&a); err != nil || strings.TrimSpace(a.AudienceName) == "" || strings.TrimSpace(a.PhoneNumber) == "" {
		badRequest(c, "audience_name and phone_number are required")
		return
	}
	ev := audit.Event{Type: audit.EventAudienceCreated, Target: a.AudienceName, PhoneNumber: a.PhoneNumber}
	if err := api.CreateAudience(c.Request.Context(), a); err != nil {
		ev.Outcome, ev.Message = audit.OutcomeFailed, err.Error()
		h.record(c, hd, ev)
		h.fail(c, err)
		return
	}
	h.record(c, hd, ev)
	c.JSON(http.StatusCreated, a)
}

// Integrations

type integrationView struct {
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ListIntegrations never returns a full key.
func (h *Handlers) ListIntegrations(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	is, err := api.ListIntegrations(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]integrationView, 0, len(is))
	for _, i := range is {
		out = append(out, integrationView{Model: i.Model, APIKey: i.MaskedKey(), UpdatedAt: i.UpdatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"integrations": out})
}

type integrationRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

func (h *Handlers) SaveIntegration(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var req integrationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.APIKey) == "" {
		badRequest(c, "api_key is required")
		return
	}
	model := c.Param("model")
	ev := audit.Event{Type: audit.EventIntegrationSet, Target: model}
	if err := api.SaveIntegration(c.Request.Context(), model, strings.TrimSpace(req.APIKey)); err != nil {
		ev.Outcome, ev.Message = audit.OutcomeFailed, err.Error()
		h.record(c, hd, ev)
		h.fail(c, err)
		return
	}
	h.record(c, hd, ev)
	c.JSON(http.StatusOK, integrationView{Model: model, APIKey: backend.Integration{APIKey: req.APIKey}.MaskedKey()})
}

func (h *Handlers) DeleteIntegration(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	model := c.Param("model")
	ev := audit.Event{Type: audit.EventIntegrationDrop, Target: model}
	if err := api.DeleteIntegration(c.Request.Context(), model); err != nil {
		ev.Outcome, ev.Message = audit.OutcomeFailed, err.Error()
		h.record(c, hd, ev)
		h.fail(c, err)
		return
	}
	h.record(c, hd, ev)
	c.Status(http.StatusNoContent)
}

// Audit

const maxAuditLimit = 100

func (h *Handlers) RecentAudit(c *gin.Context) {
	hd, err := auth.FromGin(c)
	if err != nil {
		h.Sessions.Unauthorized(c)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	events, err := h.Audit.Recent(c.Request.Context(), hd.OrgID(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
