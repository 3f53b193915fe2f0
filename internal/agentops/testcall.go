package agentops

import (
	"context"
	"fmt"
	"strings"

	"voicera-console/internal/backend"
	"voicera-console/internal/telephony"
)

// Caller places outbound calls through the voice server.
type Caller interface {
	Call(ctx context.Context, oc telephony.OutboundCall) (telephony.OutboundResult, error)
}

func WithTestCalls(c Caller, g Guard) Option {
	return func(s *Service) {
		s.caller = c
		s.guard = g
	}
}

// TestCall dials customer from agent. One test call per session and agent may
// be in flight at a time; a concurrent submit gets ErrBusy.
func (s *Service) TestCall(ctx context.Context, sessionID string, agent backend.Agent, customer string) (telephony.OutboundResult, error) {
	if s.caller == nil {
		return telephony.OutboundResult{}, fmt.Errorf("%w: test calls are not configured", ErrInvalidArgument)
	}
	customer = strings.TrimSpace(customer)
	if customer == "" || agent.AgentID == "" {
		return telephony.OutboundResult{}, fmt.Errorf("%w: customer number and agent id are required", ErrInvalidArgument)
	}
	if s.guard != nil {
		release, err := s.guard.Acquire(ctx, "testcall:"+sessionID+":"+agent.AgentType)
		if err != nil {
			return telephony.OutboundResult{}, err
		}
		defer release()
	}
	res, err := s.caller.Call(ctx, telephony.OutboundCall{
		CustomerNumber: customer,
		AgentID:        agent.AgentID,
		CallerID:       agent.PhoneNumber,
	})
	if err != nil {
		s.log.Warn("test call failed", "agent_type", agent.AgentType, "err", err)
		return telephony.OutboundResult{}, err
	}
	s.log.Info("test call placed", "agent_type", agent.AgentType)
	return res, nil
}
