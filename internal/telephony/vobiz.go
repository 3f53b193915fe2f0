package telephony

import (
	"context"
	"fmt"
	"strings"

	"voicera-console/internal/backend"
)

const ProviderVobiz = "vobiz"

// VobizAPI is the slice of the backend client the Vobiz adapter needs.
type VobizAPI interface {
	CreateVobizApplication(ctx context.Context, agentType, answerURL string) (backend.VobizApplication, error)
	DeleteVobizApplication(ctx context.Context, appID string) error
	VobizNumbers(ctx context.Context) ([]string, error)
	LinkVobizNumber(ctx context.Context, phone, appID string) error
	UnlinkVobizNumber(ctx context.Context, phone string) error
}

type VobizProvisioner struct {
	api VobizAPI
}

func NewVobizProvisioner(api VobizAPI) *VobizProvisioner {
	return &VobizProvisioner{api: api}
}

func (p *VobizProvisioner) Name() string { return ProviderVobiz }

func (p *VobizProvisioner) CreateApplication(ctx context.Context, req ApplicationRequest) (Application, error) {
	if strings.TrimSpace(req.AgentType) == "" || strings.TrimSpace(req.AnswerURL) == "" {
		return Application{}, fmt.Errorf("%w: agent type and answer url are required", ErrProvisioning)
	}
	app, err := p.api.CreateVobizApplication(ctx, req.AgentType, req.AnswerURL)
	if err != nil {
		return Application{}, fmt.Errorf("%w: create application: %w", ErrProvisioning, err)
	}
	return Application{AppID: app.AppID, AnswerURL: req.AnswerURL}, nil
}

func (p *VobizProvisioner) DeleteApplication(ctx context.Context, appID string) error {
	if appID == "" {
		return nil
	}
	return p.api.DeleteVobizApplication(ctx, appID)
}

func (p *VobizProvisioner) ListNumbers(ctx context.Context) ([]string, error) {
	return p.api.VobizNumbers(ctx)
}

func (p *VobizProvisioner) LinkNumber(ctx context.Context, phone, appID string) error {
	if err := p.api.LinkVobizNumber(ctx, phone, appID); err != nil {
		return fmt.Errorf("%w: link %s: %w", ErrProvisioning, phone, err)
	}
	return nil
}

func (p *VobizProvisioner) UnlinkNumber(ctx context.Context, phone string) error {
	return p.api.UnlinkVobizNumber(ctx, phone)
}
