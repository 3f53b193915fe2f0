package agentops

import (
	"context"
	"fmt"

	"voicera-console/internal/agentform"
	"voicera-console/internal/audit"
	"voicera-console/internal/backend"
)

// Save PUTs the editor's reshaped config when it differs from the loaded
// baseline. An unchanged form yields agentform.ErrNoChanges and no request.
func (s *Service) Save(ctx context.Context, act Actor, ed *agentform.Editor) error {
	if !ed.Changed() {
		return agentform.ErrNoChanges
	}
	d := ed.Draft()
	reg := ed.Form().Registry()
	for _, step := range []agentform.Step{agentform.StepLLM, agentform.StepAudio} {
		if !agentform.Complete(reg, d, step) {
			return fmt.Errorf("%w: %s", agentform.ErrStepIncomplete, step)
		}
	}

	u := backend.AgentUpdate{
		AgentConfig:       ed.Config(),
		AgentCategory:     d.Identity.Category,
		PhoneNumber:       d.Telephony.PhoneNumber,
		GreetingMessage:   d.Identity.GreetingMessage,
		TelephonyProvider: d.Telephony.Provider,
	}
	if err := s.api.UpdateAgent(ctx, d.Identity.Name, u); err != nil {
		s.record(ctx, act, audit.Event{
			Type:      audit.EventAgentUpdated,
			AgentType: d.Identity.Name,
			Outcome:   audit.OutcomeFailed,
			Message:   err.Error(),
		})
		return fmt.Errorf("agentops: update agent: %w", err)
	}
	ed.Commit()
	s.record(ctx, act, audit.Event{Type: audit.EventAgentUpdated, AgentType: d.Identity.Name})
	return nil
}
