package telephony

import (
	"context"
	"errors"
	"strings"
)

// ErrProvisioning wraps every failure to set up provider-side telephony for an
// agent. Agent creation aborts on it.
var ErrProvisioning = errors.New("telephony: provisioning failed")

// Provisioner manages provider-side objects for an agent: the application
// that answers calls and the numbers routed to it.
//
// Rules:
// - No provider API calls outside provisioner adapters.
// - Calls go through the backend, which holds the provider credentials.
type Provisioner interface {
	Name() string

	CreateApplication(ctx context.Context, req ApplicationRequest) (Application, error)
	DeleteApplication(ctx context.Context, appID string) error

	ListNumbers(ctx context.Context) ([]string, error)
	LinkNumber(ctx context.Context, phone, appID string) error
	UnlinkNumber(ctx context.Context, phone string) error
}

type ApplicationRequest struct {
	// AgentType doubles as the application name.
	AgentType string `json:"agent_type"`
	AgentID   string `json:"agent_id"`
	AnswerURL string `json:"answer_url"`
}

type Application struct {
	AppID     string `json:"app_id"`
	AnswerURL string `json:"answer_url"`
}

// AnswerURL is the callback the provider hits when a call for agentID comes in.
func AnswerURL(voiceServerURL, agentID string) string {
	return strings.TrimRight(voiceServerURL, "/") + "/answer/" + agentID
}
