package telephony

import (
	"errors"
	"fmt"
	"sort"

	"voicera-console/internal/backend"
)

var (
	ErrNumberAttached = errors.New("telephony: number already attached")
	ErrAgentHasNumber = errors.New("telephony: agent already has a number")
)

// Assignments indexes which agent holds which number. An agent holds a
// number either through the phone registry or its own phone_number field.
type Assignments struct {
	byNumber map[string]string
	byAgent  map[string]string
}

func NewAssignments(agents []backend.Agent, registry []backend.PhoneNumber) Assignments {
	a := Assignments{byNumber: map[string]string{}, byAgent: map[string]string{}}
	for _, n := range registry {
		if n.Attached() {
			a.byNumber[n.PhoneNumber] = n.AgentType
			a.byAgent[n.AgentType] = n.PhoneNumber
		}
	}
	for _, ag := range agents {
		if ag.PhoneNumber == "" {
			continue
		}
		if _, ok := a.byNumber[ag.PhoneNumber]; !ok {
			a.byNumber[ag.PhoneNumber] = ag.AgentType
		}
		if _, ok := a.byAgent[ag.AgentType]; !ok {
			a.byAgent[ag.AgentType] = ag.PhoneNumber
		}
	}
	return a
}

// HolderOf returns the agent holding phone.
func (a Assignments) HolderOf(phone string) (string, bool) {
	agent, ok := a.byNumber[phone]
	return agent, ok
}

// NumberOf returns the number held by agentType.
func (a Assignments) NumberOf(agentType string) (string, bool) {
	phone, ok := a.byAgent[agentType]
	return phone, ok
}

// CanAttach rejects a number that any agent already holds, including the
// target agent itself, and an agent that already holds a number.
func (a Assignments) CanAttach(phone, agentType string) error {
	if holder, ok := a.HolderOf(phone); ok {
		return fmt.Errorf("%w: %s is attached to %s", ErrNumberAttached, phone, holder)
	}
	if held, ok := a.NumberOf(agentType); ok {
		return fmt.Errorf("%w: %s holds %s", ErrAgentHasNumber, agentType, held)
	}
	return nil
}

// AttachOptions are the values an attach dialog may offer.
type AttachOptions struct {
	Numbers []string `json:"numbers"`
	Agents  []string `json:"agents"`
}

// CandidatesFor lists free numbers (registry plus provider inventory) and
// agents without a number. Numbers are sorted; agents keep their order.
func CandidatesFor(agents []backend.Agent, registry []backend.PhoneNumber, inventory []string) AttachOptions {
	a := NewAssignments(agents, registry)
	out := AttachOptions{Numbers: []string{}, Agents: []string{}}

	seen := map[string]struct{}{}
	add := func(phone string) {
		if phone == "" {
			return
		}
		if _, dup := seen[phone]; dup {
			return
		}
		seen[phone] = struct{}{}
		if _, held := a.HolderOf(phone); !held {
			out.Numbers = append(out.Numbers, phone)
		}
	}
	for _, n := range registry {
		add(n.PhoneNumber)
	}
	for _, phone := range inventory {
		add(phone)
	}
	sort.Strings(out.Numbers)

	for _, ag := range agents {
		if _, held := a.NumberOf(ag.AgentType); !held {
			out.Agents = append(out.Agents, ag.AgentType)
		}
	}
	return out
}
