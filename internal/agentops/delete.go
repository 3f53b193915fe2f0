package agentops

import (
	"context"
	"errors"

	"voicera-console/internal/audit"
	"voicera-console/internal/backend"
)

// Delete step names, in execution order.
const (
	StepDetachNumber      = "detach_number"
	StepUnlinkNumber      = "unlink_number"
	StepDeleteApplication = "delete_application"
	StepDeleteAgent       = "delete_agent"
)

type StepResult struct {
	Step    string        `json:"step"`
	Outcome audit.Outcome `json:"outcome"`
	Error   string        `json:"error,omitempty"`

	err error
}

// DeleteReport is the per-step outcome of a delete.
type DeleteReport struct {
	AgentType   string       `json:"agent_type"`
	PhoneNumber string       `json:"phone_number,omitempty"`
	Steps       []StepResult `json:"steps"`
}

// Failed is true when the agent itself was not deleted. Earlier step
// failures leave provider-side leftovers but do not fail the delete.
func (r DeleteReport) Failed() bool {
	res, ok := r.Step(StepDeleteAgent)
	return !ok || res.Outcome == audit.OutcomeFailed
}

// Err returns the agent delete error, or nil.
func (r DeleteReport) Err() error {
	res, ok := r.Step(StepDeleteAgent)
	if !ok {
		return errors.New("agentops: delete agent did not run")
	}
	return res.err
}

func (r DeleteReport) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Warnings lists the failed steps other than the agent delete.
func (r DeleteReport) Warnings() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Step != StepDeleteAgent && s.Outcome == audit.OutcomeFailed {
			out = append(out, s)
		}
	}
	return out
}

// Delete runs detach, unlink, delete application and delete agent in order.
// Every step runs regardless of earlier failures and each outcome is audited.
func (s *Service) Delete(ctx context.Context, act Actor, agent backend.Agent) DeleteReport {
	rep := DeleteReport{AgentType: agent.AgentType}

	phone, lookupErr := s.numberOf(ctx, agent)
	rep.PhoneNumber = phone
	p, provisioned := s.provisioner(agent.TelephonyProvider)

	run := func(step string, skip bool, fn func() error) {
		res := StepResult{Step: step, Outcome: audit.OutcomeOK}
		if skip {
			res.Outcome = audit.OutcomeSkipped
		} else if err := fn(); err != nil {
			res.Outcome = audit.OutcomeFailed
			res.Error = err.Error()
			res.err = err
		}
		rep.Steps = append(rep.Steps, res)
		if res.Outcome == audit.OutcomeFailed {
			s.log.Warn("agent delete step failed", "agent_type", agent.AgentType, "step", step, "err", res.err)
		}
		s.record(ctx, act, audit.Event{
			Type:        audit.EventAgentDeleteStep,
			AgentType:   agent.AgentType,
			PhoneNumber: phone,
			Target:      step,
			Outcome:     res.Outcome,
			Message:     res.Error,
		})
	}

	run(StepDetachNumber, phone == "" && lookupErr == nil, func() error {
		if lookupErr != nil {
			return lookupErr
		}
		return s.api.DetachPhoneNumber(ctx, phone)
	})
	run(StepUnlinkNumber, phone == "" || !provisioned, func() error {
		return p.UnlinkNumber(ctx, phone)
	})
	run(StepDeleteApplication, agent.VobizAppID == "" || !provisioned, func() error {
		return p.DeleteApplication(ctx, agent.VobizAppID)
	})
	run(StepDeleteAgent, false, func() error {
		return s.api.DeleteAgent(ctx, agent.AgentType)
	})

	outcome := audit.OutcomeOK
	if rep.Failed() {
		outcome = audit.OutcomeFailed
	}
	s.record(ctx, act, audit.Event{
		Type:        audit.EventAgentDeleted,
		AgentType:   agent.AgentType,
		PhoneNumber: phone,
		Outcome:     outcome,
		Message:     errText(rep.Err()),
		Metadata:    audit.Metadata(rep.Steps),
	})
	return rep
}

// numberOf prefers the agent's own phone_number and falls back to the
// phone registry.
func (s *Service) numberOf(ctx context.Context, agent backend.Agent) (string, error) {
	if agent.PhoneNumber != "" {
		return agent.PhoneNumber, nil
	}
	nums, err := s.api.PhoneNumbersForAgent(ctx, agent.AgentType)
	if err != nil {
		return "", err
	}
	for _, n := range nums {
		if n.PhoneNumber != "" {
			return n.PhoneNumber, nil
		}
	}
	return "", nil
}
