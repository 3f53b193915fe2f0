package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voicera-console/internal/backend"
)

// OutboundCall asks the voice server to dial CustomerNumber on behalf of an
// agent. CallerID defaults to the agent's number on the server side.
type OutboundCall struct {
	CustomerNumber string `json:"customer_number"`
	AgentID        string `json:"agent_id"`
	CallerID       string `json:"caller_id,omitempty"`
}

type OutboundResult struct {
	Status         string         `json:"status"`
	Message        string         `json:"message"`
	CustomerNumber string         `json:"customer_number"`
	AgentID        string         `json:"agent_id"`
	Result         map[string]any `json:"result,omitempty"`
}

// VoiceClient talks to the voice server that hosts agent calls.
type VoiceClient struct {
	base string
	http *http.Client
}

func NewVoiceClient(baseURL string, hc *http.Client) *VoiceClient {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &VoiceClient{base: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *VoiceClient) BaseURL() string { return c.base }

// Call starts an outbound call. Non-2xx responses become *backend.APIError
// carrying the server's detail message.
func (c *VoiceClient) Call(ctx context.Context, oc OutboundCall) (OutboundResult, error) {
	if strings.TrimSpace(oc.CustomerNumber) == "" || strings.TrimSpace(oc.AgentID) == "" {
		return OutboundResult{}, fmt.Errorf("telephony: customer number and agent id are required")
	}
	b, err := json.Marshal(oc)
	if err != nil {
		return OutboundResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/outbound/call/", bytes.NewReader(b))
	if err != nil {
		return OutboundResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return OutboundResult{}, fmt.Errorf("telephony: outbound call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return OutboundResult{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := backend.ErrorMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return OutboundResult{}, &backend.APIError{Status: resp.StatusCode, Message: msg}
	}
	var out OutboundResult
	if err := json.Unmarshal(body, &out); err != nil {
		return OutboundResult{}, fmt.Errorf("telephony: decode outbound result: %w", err)
	}
	return out, nil
}
