package backend

import (
	"context"
	"fmt"
	"net/http"
)

// VobizApplication is the result of provisioning a Vobiz application.
type VobizApplication struct {
	Status
	AppID string `json:"app_id,omitempty"`
}

func (c *Client) CreateVobizApplication(ctx context.Context, agentType, answerURL string) (VobizApplication, error) {
	body := map[string]string{"agent_type": agentType, "answer_url": answerURL}
	var out VobizApplication
	if err := c.do(ctx, call{method: http.MethodPost, path: "/vobiz/application", body: body, resource: "vobiz.application.create"}, &out); err != nil {
		return VobizApplication{}, err
	}
	if err := out.Err("create vobiz application"); err != nil {
		return VobizApplication{}, err
	}
	if out.AppID == "" {
		return VobizApplication{}, fmt.Errorf("backend: create vobiz application: no app_id returned")
	}
	return out, nil
}

func (c *Client) DeleteVobizApplication(ctx context.Context, appID string) error {
	var st Status
	if err := c.do(ctx, call{method: http.MethodDelete, path: "/vobiz/application/" + esc(appID), resource: "vobiz.application.delete"}, &st); err != nil {
		return err
	}
	return st.Err("delete vobiz application")
}

// VobizNumbers lists the E.164 numbers on the Vobiz account.
func (c *Client) VobizNumbers(ctx context.Context) ([]string, error) {
	var out struct {
		Status
		Numbers []string `json:"numbers"`
	}
	if err := c.do(ctx, call{method: http.MethodGet, path: "/vobiz/numbers", resource: "vobiz.numbers"}, &out); err != nil {
		return nil, err
	}
	if err := out.Err("list vobiz numbers"); err != nil {
		return nil, err
	}
	if out.Numbers == nil {
		out.Numbers = []string{}
	}
	return out.Numbers, nil
}

func (c *Client) LinkVobizNumber(ctx context.Context, phone, appID string) error {
	body := map[string]string{"phone_number": phone, "application_id": appID}
	var st Status
	if err := c.do(ctx, call{method: http.MethodPost, path: "/vobiz/numbers/link", body: body, resource: "vobiz.numbers.link"}, &st); err != nil {
		return err
	}
	return st.Err("link vobiz number")
}

func (c *Client) UnlinkVobizNumber(ctx context.Context, phone string) error {
	body := map[string]string{"phone_number": phone}
	var st Status
	if err := c.do(ctx, call{method: http.MethodDelete, path: "/vobiz/numbers/unlink", body: body, resource: "vobiz.numbers.unlink"}, &st); err != nil {
		return err
	}
	return st.Err("unlink vobiz number")
}
