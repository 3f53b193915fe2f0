package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/agentform"
	"voicera-console/internal/capability"
)

// Languages lists every language any capability table offers.
func (h *Handlers) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages":         h.Registry.Languages(),
		"default_languages": capability.DefaultLanguages,
		"fallback_provider": capability.FallbackProvider,
	})
}

// Providers answers the resolver queries directly:
// ?kind=&language= lists providers, adding &provider= lists models, and
// kind=tts with &model= lists voices.
func (h *Handlers) Providers(c *gin.Context) {
	kind := capability.Kind(c.Query("kind"))
	lang := c.Query("language")
	provider := c.Query("provider")
	model := c.Query("model")

	switch {
	case kind == capability.KindTTS && provider != "" && model != "":
		c.JSON(http.StatusOK, gin.H{"voices": h.Registry.AvailableVoices(provider, model, lang)})
	case provider != "":
		c.JSON(http.StatusOK, gin.H{"models": h.Registry.SupportedModels(kind, provider, lang)})
	default:
		ids := h.Registry.SupportedProviders(kind, lang)
		out := make([]agentform.Choice, 0, len(ids))
		for _, id := range ids {
			out = append(out, agentform.Choice{ID: id, Name: h.Registry.OfficialName(kind, id)})
		}
		c.JSON(http.StatusOK, gin.H{"providers": out})
	}
}

func (h *Handlers) VoiceDescriptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"descriptions": h.Registry.VoiceDescriptions()})
}

type formRequest struct {
	Selection agentform.Selection `json:"selection"`
	Loaded    *bool               `json:"loaded,omitempty"`
	Events    []agentform.Event   `json:"events,omitempty"`
}

type formResponse struct {
	Selection agentform.Selection `json:"selection"`
	Options   agentform.Options   `json:"options"`
}

// ResolveForm applies edit events to a posted selection and returns the
// resulting selection with its option sets. The page holds the state.
func (h *Handlers) ResolveForm(c *gin.Context) {
	var req formRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	f := agentform.NewForm(h.Registry, req.Selection)
	if req.Loaded == nil || *req.Loaded {
		f.MarkLoaded()
	}
	for _, ev := range req.Events {
		if err := f.Apply(ev); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, formResponse{Selection: f.Selection(), Options: f.Options()})
}

type wizardRequest struct {
	Draft  agentform.Draft   `json:"draft"`
	Step   string            `json:"step"`
	Action string            `json:"action,omitempty"`
	Target string            `json:"target,omitempty"`
	Events []agentform.Event `json:"events,omitempty"`
}

type wizardResponse struct {
	Current string                `json:"current"`
	Steps   []agentform.StepState `json:"steps"`
	Draft   agentform.Draft       `json:"draft"`
	Options agentform.Options     `json:"options"`
	Config  map[string]any        `json:"agent_config,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Wizard rebuilds the create wizard from the posted draft, applies events and
// an optional navigation action (next, back, goto), and returns the step view.
// The review step carries the agent_config that create would send.
func (h *Handlers) Wizard(c *gin.Context) {
	var req wizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	step, ok := agentform.ParseStep(req.Step)
	if !ok && req.Step != "" {
		badRequest(c, "unknown step")
		return
	}
	w := agentform.Resume(h.Registry, req.Draft, step)
	for _, ev := range req.Events {
		if err := w.Form().Apply(ev); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	var navErr error
	switch req.Action {
	case "":
	case "next":
		navErr = w.Next()
	case "back":
		w.Back()
	case "goto":
		target, ok := agentform.ParseStep(req.Target)
		if !ok {
			badRequest(c, "unknown target step")
			return
		}
		navErr = w.GoTo(target)
	default:
		badRequest(c, "unknown action")
		return
	}

	resp := wizardResponse{
		Current: w.Current().String(),
		Steps:   w.Steps(),
		Draft:   w.Draft(),
		Options: w.Form().Options(),
	}
	if w.Current() == agentform.StepReview {
		resp.Config = agentform.BuildAgentConfig(h.Registry, w.Draft())
	}
	status := http.StatusOK
	if navErr != nil {
		if !errors.Is(navErr, agentform.ErrStepIncomplete) {
			h.fail(c, navErr)
			return
		}
		resp.Error = navErr.Error()
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}
