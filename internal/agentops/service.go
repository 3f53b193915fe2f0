package agentops

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"voicera-console/internal/audit"
	"voicera-console/internal/backend"
	"voicera-console/internal/telephony"
)

var (
	ErrInvalidArgument = errors.New("agentops: invalid argument")
	ErrAttachFailed    = errors.New("agentops: agent created but number not attached")
	ErrBusy            = errors.New("agentops: request already in progress")
)

// Backend is the slice of the backend client the agent flows drive.
type Backend interface {
	CreateAgent(ctx context.Context, a backend.Agent) error
	UpdateAgent(ctx context.Context, agentType string, u backend.AgentUpdate) error
	DeleteAgent(ctx context.Context, agentType string) error
	PhoneNumbersForAgent(ctx context.Context, agentType string) ([]backend.PhoneNumber, error)
	AttachPhoneNumber(ctx context.Context, phone, provider, agentType string) error
	DetachPhoneNumber(ctx context.Context, phone string) error
}

// Actor identifies who triggered a flow, for the audit trail.
type Actor struct {
	OrgID     string
	Email     string
	IPAddress string
	RequestID string
}

type Option func(*Service)

func WithProvisioner(p telephony.Provisioner) Option {
	return func(s *Service) { s.provisioners[p.Name()] = p }
}

func WithAudit(a *audit.Service) Option {
	return func(s *Service) { s.audit = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// Service runs the multi-step agent flows: provision then create, save on
// change, and best-effort delete.
type Service struct {
	api          Backend
	voiceURL     string
	provisioners map[string]telephony.Provisioner
	audit        *audit.Service
	log          *slog.Logger
	newID        func() string

	caller Caller
	guard  Guard
}

func New(api Backend, voiceServerURL string, opts ...Option) *Service {
	s := &Service{
		api:          api,
		voiceURL:     voiceServerURL,
		provisioners: map[string]telephony.Provisioner{},
		log:          slog.Default(),
		newID:        uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) provisioner(provider string) (telephony.Provisioner, bool) {
	p, ok := s.provisioners[provider]
	return p, ok
}

func (s *Service) record(ctx context.Context, act Actor, e audit.Event) {
	e.OrgID = act.OrgID
	e.ActorEmail = act.Email
	e.IPAddress = act.IPAddress
	e.RequestID = act.RequestID
	s.audit.Record(ctx, e)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
