package agentops

import (
	"context"
	"fmt"
	"strings"

	"voicera-console/internal/agentform"
	"voicera-console/internal/audit"
	"voicera-console/internal/backend"
	"voicera-console/internal/capability"
	"voicera-console/internal/telephony"
)

// Create provisions telephony for d and then creates the agent. With a
// provisioned provider the order is: create application, link the number,
// create the agent referencing the application, attach the number in the
// backend registry. Any provisioning failure aborts before the agent exists.
func (s *Service) Create(ctx context.Context, act Actor, reg *capability.Registry, d agentform.Draft) (backend.Agent, error) {
	for step := agentform.StepIdentity; step < agentform.StepReview; step++ {
		if !agentform.Complete(reg, d, step) {
			return backend.Agent{}, fmt.Errorf("%w: %s", agentform.ErrStepIncomplete, step)
		}
	}
	if act.OrgID == "" {
		return backend.Agent{}, fmt.Errorf("%w: org id required", ErrInvalidArgument)
	}

	phone := strings.TrimSpace(d.Telephony.PhoneNumber)
	agent := backend.Agent{
		OrgID:             act.OrgID,
		AgentType:         strings.TrimSpace(d.Identity.Name),
		AgentID:           s.newID(),
		AgentConfig:       agentform.BuildAgentConfig(reg, d),
		AgentCategory:     d.Identity.Category,
		PhoneNumber:       phone,
		GreetingMessage:   d.Identity.GreetingMessage,
		TelephonyProvider: d.Telephony.Provider,
	}
	log := s.log.With("agent_type", agent.AgentType, "telephony_provider", agent.TelephonyProvider)

	var cleanup func()
	if p, ok := s.provisioner(d.Telephony.Provider); ok {
		app, undo, err := s.provision(ctx, p, agent, phone)
		if err != nil {
			log.Warn("agent provisioning failed", "err", err)
			s.record(ctx, act, audit.Event{
				Type:        audit.EventAgentCreated,
				AgentType:   agent.AgentType,
				PhoneNumber: phone,
				Outcome:     audit.OutcomeFailed,
				Message:     err.Error(),
			})
			return backend.Agent{}, err
		}
		agent.VobizAppID = app.AppID
		agent.VobizAnswerURL = app.AnswerURL
		cleanup = undo
	}

	if err := s.api.CreateAgent(ctx, agent); err != nil {
		if cleanup != nil {
			cleanup()
		}
		s.record(ctx, act, audit.Event{
			Type:      audit.EventAgentCreated,
			AgentType: agent.AgentType,
			Outcome:   audit.OutcomeFailed,
			Message:   err.Error(),
		})
		return backend.Agent{}, fmt.Errorf("agentops: create agent: %w", err)
	}
	s.record(ctx, act, audit.Event{
		Type:        audit.EventAgentCreated,
		AgentType:   agent.AgentType,
		PhoneNumber: phone,
		Target:      agent.AgentID,
		Metadata:    audit.Metadata(map[string]string{"vobiz_app_id": agent.VobizAppID}),
	})
	log.Info("agent created", "agent_id", agent.AgentID)

	if phone == "" {
		return agent, nil
	}
	if err := s.api.AttachPhoneNumber(ctx, phone, d.Telephony.Provider, agent.AgentType); err != nil {
		s.record(ctx, act, audit.Event{
			Type:        audit.EventNumberAttached,
			AgentType:   agent.AgentType,
			PhoneNumber: phone,
			Outcome:     audit.OutcomeFailed,
			Message:     err.Error(),
		})
		return agent, fmt.Errorf("%w: %w", ErrAttachFailed, err)
	}
	s.record(ctx, act, audit.Event{Type: audit.EventNumberAttached, AgentType: agent.AgentType, PhoneNumber: phone})
	return agent, nil
}

// provision creates the application and links phone to it. The returned undo
// reverses both; it is used when the agent itself cannot be created.
func (s *Service) provision(ctx context.Context, p telephony.Provisioner, agent backend.Agent, phone string) (telephony.Application, func(), error) {
	app, err := p.CreateApplication(ctx, telephony.ApplicationRequest{
		AgentType: agent.AgentType,
		AgentID:   agent.AgentID,
		AnswerURL: telephony.AnswerURL(s.voiceURL, agent.AgentID),
	})
	if err != nil {
		return telephony.Application{}, nil, err
	}
	if phone != "" {
		if err := p.LinkNumber(ctx, phone, app.AppID); err != nil {
			if derr := p.DeleteApplication(ctx, app.AppID); derr != nil {
				s.log.Warn("application cleanup failed", "app_id", app.AppID, "err", derr)
			}
			return telephony.Application{}, nil, err
		}
	}
	undo := func() {
		if phone != "" {
			if err := p.UnlinkNumber(ctx, phone); err != nil {
				s.log.Warn("number cleanup failed", "phone_number", phone, "err", err)
			}
		}
		if err := p.DeleteApplication(ctx, app.AppID); err != nil {
			s.log.Warn("application cleanup failed", "app_id", app.AppID, "err", err)
		}
	}
	return app, undo, nil
}
