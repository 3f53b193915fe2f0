package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"voicera-console/internal/audit"
	"voicera-console/internal/backend"
	"voicera-console/internal/listing"
	"voicera-console/internal/telephony"
	"voicera-console/pkg/logger"
)

func (h *Handlers) ListNumbers(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	nums, err := api.ListPhoneNumbers(c.Request.Context(), hd.OrgID())
	if err != nil {
		h.fail(c, err)
		return
	}
	q := listing.ParseQuery(c.Request.URL.Query()).WithDefaultSort("phone_number", false)
	c.JSON(http.StatusOK, listing.Apply(nums, listing.PhoneNumbers, q))
}

type assignmentState struct {
	agents   []backend.Agent
	registry []backend.PhoneNumber
	vobiz    []string
}

// loadAssignments fetches agents, the phone registry and, when asked, the
// Vobiz inventory concurrently.
func (h *Handlers) loadAssignments(c *gin.Context, api *backend.Client, orgID string, inventory bool) (assignmentState, error) {
	var st assignmentState
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		st.agents, err = api.ListAgents(ctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		st.registry, err = api.ListPhoneNumbers(ctx, orgID)
		return err
	})
	if inventory {
		g.Go(func() error {
			nums, err := api.VobizNumbers(ctx)
			if err != nil {
				logger.FromGin(c).Warn("vobiz inventory unavailable", "err", err)
				return nil
			}
			st.vobiz = nums
			return nil
		})
	}
	return st, g.Wait()
}

// NumberCandidates lists the numbers and agents an attach dialog may offer.
// With ?provider=vobiz the provider inventory is merged in.
func (h *Handlers) NumberCandidates(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	withInventory := strings.EqualFold(c.Query("provider"), telephony.ProviderVobiz)
	st, err := h.loadAssignments(c, api, hd.OrgID(), withInventory)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, telephony.CandidatesFor(st.agents, st.registry, st.vobiz))
}

type attachRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Provider    string `json:"provider" binding:"required"`
	AgentType   string `json:"agent_type" binding:"required"`
}

// AttachNumber refuses a number or agent that is already paired.
func (h *Handlers) AttachNumber(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var req attachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "phone_number, provider and agent_type are required")
		return
	}
	st, err := h.loadAssignments(c, api, hd.OrgID(), false)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := telephony.NewAssignments(st.agents, st.registry).CanAttach(req.PhoneNumber, req.AgentType); err != nil {
		h.fail(c, err)
		return
	}
	ev := audit.Event{Type: audit.EventNumberAttached, AgentType: req.AgentType, PhoneNumber: req.PhoneNumber}
	if err := api.AttachPhoneNumber(c.Request.Context(), req.PhoneNumber, req.Provider, req.AgentType); err != nil {
		ev.Outcome, ev.Message = audit.OutcomeFailed, err.Error()
		h.record(c, hd, ev)
		h.fail(c, err)
		return
	}
	h.record(c, hd, ev)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type detachRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

func (h *Handlers) DetachNumber(c *gin.Context) {
	hd, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	var req detachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "phone_number is required")
		return
	}
	ev := audit.Event{Type: audit.EventNumberDetached, PhoneNumber: req.PhoneNumber}
	if err := api.DetachPhoneNumber(c.Request.Context(), req.PhoneNumber); err != nil {
		ev.Outcome, ev.Message = audit.OutcomeFailed, err.Error()
		h.record(c, hd, ev)
		h.fail(c, err)
		return
	}
	h.record(c, hd, ev)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
