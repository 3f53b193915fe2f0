package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"voicera-console/internal/calls"
	"voicera-console/internal/reporting"
)

// Login exchanges credentials for a backend access token. Like the signup
// and password reset calls it is made without a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/users/login", body: body, public: true, resource: "users.login"}, &out); err != nil {
		return LoginResult{}, err
	}
	if err := out.Err("login"); err != nil {
		return LoginResult{}, err
	}
	if out.AccessToken == "" {
		return LoginResult{}, fmt.Errorf("backend: login: no access token returned")
	}
	return out, nil
}

// Signup creates an account. With OrgID set the user joins that org as a
// member instead of getting a new one.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (Status, error) {
	return c.publicStatus(ctx, "/users/signup", req, "users.signup", "signup")
}

// ForgotPassword asks the backend to mail a reset link to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (Status, error) {
	body := map[string]string{"email": email}
	return c.publicStatus(ctx, "/users/forgot-password", body, "users.forgot_password", "forgot password")
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (Status, error) {
	body := map[string]string{"token": token, "new_password": newPassword}
	return c.publicStatus(ctx, "/users/reset-password", body, "users.reset_password", "reset password")
}

func (c *Client) publicStatus(ctx context.Context, path string, body any, resource, op string) (Status, error) {
	var st Status
	if err := c.do(ctx, call{method: http.MethodPost, path: path, body: body, public: true, resource: resource}, &st); err != nil {
		return Status{}, err
	}
	if err := st.Err(op); err != nil {
		return Status{}, err
	}
	return st, nil
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, call{method: http.MethodGet, path: "/users/me", resource: "users.me"}, &out)
	return out, err
}

// Agents

func (c *Client) ListAgents(ctx context.Context, orgID string) ([]Agent, error) {
	out := []Agent{}
	err := c.do(ctx, call{method: http.MethodGet, path: "/agents/org/" + esc(orgID), resource: "agents.list"}, &out)
	return out, err
}

func (c *Client) GetAgent(ctx context.Context, agentType string) (Agent, error) {
	var out Agent
	err := c.do(ctx, call{method: http.MethodGet, path: "/agents/" + esc(agentType), resource: "agents.get"}, &out)
	return out, err
}

func (c *Client) CreateAgent(ctx context.Context, a Agent) error {
	var st Status
	if err := c.do(ctx, call{method: http.MethodPost, path: "/agents", body: a, resource: "agents.create"}, &st); err != nil {
		return err
	}
	return st.Err("create agent")
}

func (c *Client) UpdateAgent(ctx context.Context, agentType string, u AgentUpdate) error {
	var st Status
	if err := c.do(ctx, call{method: http.MethodPut, path: "/agents/" + esc(agentType), body: u, resource: "agents.update"}, &st); err != nil {
		return err
	}
	return st.Err("update agent")
}

func (c *Client) DeleteAgent(ctx context.Context, agentType string) error {
	var st Status
	if err := c.do(ctx, call{method: http.MethodDelete, path: "/agents/" + esc(agentType), resource: "agents.delete"}, &st); err != nil {
		return err
	}
	return st.Err("delete agent")
}

// Phone numbers

func (c *Client) ListPhoneNumbers(ctx context.Context, orgID string) ([]PhoneNumber, error) {
	out := []PhoneNumber{}
	err := c.do(ctx, call{method: http.MethodGet, path: "/phone-numbers/org/" + esc(orgID), resource: "phone_numbers.list"}, &out)
	return out, err
}

func (c *Client) PhoneNumbersForAgent(ctx context.Context, agentType string) ([]PhoneNumber, error) {
	out := []PhoneNumber{}
	err := c.do(ctx, call{method: http.MethodGet, path: "/phone-numbers/agent/" + esc(agentType), resource: "phone_numbers.agent"}, &out)
	return out, err
}

func (c *Client) AttachPhoneNumber(ctx context.Context, phone, provider, agentType string) error {
	body := map[string]string{"phone_number": phone, "provider": provider, "agent_type": agentType}
	var st Status
	if err := c.do(ctx, call{method: http.MethodPost, path: "/phone-numbers/attach", body: body, resource: "phone_numbers.attach"}, &st); err != nil {
		return err
	}
	return st.Err("attach phone number")
}

func (c *Client) DetachPhoneNumber(ctx context.Context, phone string) error {
	body := map[string]string{"phone_number": phone}
	var st Status
	if err := c.do(ctx, call{method: http.MethodDelete, path: "/phone-numbers/detach", body: body, resource: "phone_numbers.detach"}, &st); err != nil {
		return err
	}
	return st.Err("detach phone number")
}

// Campaigns

func (c *Client) ListCampaigns(ctx context.Context, orgID string) ([]Campaign, error) {
	out := []Campaign{}
	err := c.do(ctx, call{method: http.MethodGet, path: "/campaigns/org/" + esc(orgID), resource: "campaigns.list"}, &out)
	return out, err
}

func (c *Client) GetCampaign(ctx context.Context, name string) (Campaign, error) {
	var out Campaign
	err := c.do(ctx, call{method: http.MethodGet, path: "/campaigns/" + esc(name), resource: "campaigns.get"}, &out)
	return out, err
}

func (c *Client) CreateCampaign(ctx context.Context, cp Campaign) error {
	if cp.Status == "" {
		cp.Status = "active"
	}
	if cp.OrgID == "" {
		cp.OrgID = c.OrgID()
	}
	var st Status
	if err := c.do(ctx, call{method: http.MethodPost, path: "/campaigns", body: cp, resource: "campaigns.create"}, &st); err != nil {
		return err
	}
	return st.Err("create campaign")
}

// Audiences

func (c *Client) ListAudiences(ctx context.Context) ([]Audience, error) {
	out := []Audience{}
	err := c.do(ctx, call{method: http.MethodGet, path: "/audience", resource: "audience.list"}, &out)
	return out, err
}

func (c *Client) GetAudience(ctx context.Context, name string) (Audience, error) {
	var out Audience
	err := c.do(ctx, call{method: http.MethodGet, path: "/audience/" + esc(name), resource: "audience.get"}, &out)
	return out, err
}

func (c *Client) CreateAudience(ctx context.Context, a Audience) error {
	var st Status
	if err := c.do(ctx, call{method: http.MethodPost, path: "/audience", body: a, resource: "audience.create"}, &st); err != nil {
		return err
	}
	return st.Err("create audience")
}

// Meetings

// ListMeetings returns the org's call records, optionally for one agent.
func (c *Client) ListMeetings(ctx context.Context, agentType string) ([]calls.Meeting, error) {
	var q url.Values
	if agentType != "" {
		q = url.Values{"agent_type": {agentType}}
	}
	out := []calls.Meeting{}
	err := c.do(ctx, call{method: http.MethodGet, path: "/meetings", query: q, resource: "meetings.list"}, &out)
	return out, err
}

func (c *Client) GetMeeting(ctx context.Context, meetingID string) (calls.Meeting, error) {
	var out calls.Meeting
	err := c.do(ctx, call{method: http.MethodGet, path: "/meetings/" + esc(meetingID), resource: "meetings.get"}, &out)
	return out, err
}

// Recording streams a meeting's audio. The caller closes the reader.
func (c *Client) Recording(ctx context.Context, meetingID string) (io.ReadCloser, string, error) {
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/meetings/" + esc(meetingID) + "/recording", resource: "meetings.recording"})
	if err != nil {
		return nil, "", err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "audio/wav"
	}
	return resp.Body, ct, nil
}

// Members

func (c *Client) ListMembers(ctx context.Context, orgID string) ([]Member, error) {
	var out struct {
		Status
		Members []Member `json:"members"`
		Count   int      `json:"count"`
	}
	if err := c.do(ctx, call{method: http.MethodGet, path: "/members/" + esc(orgID), resource: "members.list"}, &out); err != nil {
		return nil, err
	}
	if err := out.Err("list members"); err != nil {
		return nil, err
	}
	if out.Members == nil {
		out.Members = []Member{}
	}
	return out.Members, nil
}

func (c *Client) AddMember(ctx context.Context, m NewMember) error {
	if m.OrgID == "" {
		m.OrgID = c.OrgID()
	}
	var st Status
	if err := c.do(ctx, call{method: http.MethodPost, path: "/members/add-member", body: m, resource: "members.add"}, &st); err != nil {
		return err
	}
	return st.Err("add member")
}

func (c *Client) DeleteMember(ctx context.Context, email, orgID string) error {
	body := map[string]string{"email": email, "org_id": orgID}
	var st Status
	if err := c.do(ctx, call{method: http.MethodPost, path: "/members/delete-member", body: body, resource: "members.delete"}, &st); err != nil {
		return err
	}
	return st.Err("delete member")
}

// Analytics

func (c *Client) Analytics(ctx context.Context, f AnalyticsFilter) (reporting.Summary, error) {
	q := url.Values{}
	for k, v := range map[string]string{
		"agent_type":   f.AgentType,
		"phone_number": f.PhoneNumber,
		"start_date":   f.StartDate,
		"end_date":     f.EndDate,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	var out reporting.Summary
	err := c.do(ctx, call{method: http.MethodGet, path: "/analytics", query: q, resource: "analytics"}, &out)
	return out, err
}

// Integrations

func (c *Client) ListIntegrations(ctx context.Context) ([]Integration, error) {
	out := []Integration{}
	err := c.do(ctx, call{method: http.MethodGet, path: "/integrations", resource: "integrations.list"}, &out)
	return out, err
}

func (c *Client) GetIntegration(ctx context.Context, model string) (Integration, error) {
	var out Integration
	err := c.do(ctx, call{method: http.MethodGet, path: "/integrations/" + esc(model), resource: "integrations.get"}, &out)
	return out, err
}

func (c *Client) SaveIntegration(ctx context.Context, model, apiKey string) error {
	body := Integration{OrgID: c.OrgID(), Model: model, APIKey: apiKey}
	var st Status
	if err := c.do(ctx, call{method: http.MethodPost, path: "/integrations", body: body, resource: "integrations.save"}, &st); err != nil {
		return err
	}
	return st.Err("save integration")
}

func (c *Client) DeleteIntegration(ctx context.Context, model string) error {
	var st Status
	if err := c.do(ctx, call{method: http.MethodDelete, path: "/integrations/" + esc(model), resource: "integrations.delete"}, &st); err != nil {
		return err
	}
	return st.Err("delete integration")
}
