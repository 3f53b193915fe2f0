package audit

import "time"

// Event is an immutable, append-only record of a console mutation.
//
// Invariants:
// - Events are never updated or deleted.
// - org_id is required for tenancy isolation.
// - Audit is best-effort; flows never fail because an event could not be written.
//
// Storage (Postgres): table console_audit_events, INSERT-only.
type Event struct {
	ID    string    `json:"id" db:"id"`
	OrgID string    `json:"org_id" db:"org_id"`
	Type  EventType `json:"type" db:"type"`

	ActorEmail string `json:"actor_email,omitempty" db:"actor_email"`
	IPAddress  string `json:"ip_address,omitempty" db:"ip_address"`
	RequestID  string `json:"request_id,omitempty" db:"request_id"`

	// Target identifiers, depending on the event type.
	AgentType   string `json:"agent_type,omitempty" db:"agent_type"`
	PhoneNumber string `json:"phone_number,omitempty" db:"phone_number"`
	Target      string `json:"target,omitempty" db:"target"`

	Outcome Outcome `json:"outcome" db:"outcome"`
	Message string  `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventSignIn          EventType = "session.sign_in"
	EventSignOut         EventType = "session.sign_out"
	EventAgentCreated    EventType = "agent.created"
	EventAgentUpdated    EventType = "agent.updated"
	EventAgentDeleteStep EventType = "agent.delete_step"
	EventAgentDeleted    EventType = "agent.deleted"
	EventNumberAttached  EventType = "number.attached"
	EventNumberDetached  EventType = "number.detached"
	EventCampaignCreated EventType = "campaign.created"
	EventAudienceCreated EventType = "audience.created"
	EventMemberAdded     EventType = "member.added"
	EventMemberDeleted   EventType = "member.deleted"
	EventIntegrationSet  EventType = "integration.saved"
	EventIntegrationDrop EventType = "integration.deleted"
	EventHistoryExported EventType = "history.exported"
)

type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)
