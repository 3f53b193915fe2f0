package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "https://backend.test"

type fakeSession struct {
	token   string
	org     string
	cleared int
}

func (s *fakeSession) Token() string { return s.token }
func (s *fakeSession) OrgID() string { return s.org }
func (s *fakeSession) Clear(context.Context) error {
	s.cleared++
	s.token, s.org = "", ""
	return nil
}

func newTestClient(t *testing.T, s Session) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return New(testBase+"/api/v1/", s, WithHTTPClient(hc))
}

func TestClientAttachesBearerAndDecodes(t *testing.T) {
	s := &fakeSession{token: "tok", org: "org-1"}
	c := newTestClient(t, s)

	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/agents/org/org-1",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
			assert.Equal(t, "application/json", req.Header.Get("Accept"))
			return httpmock.NewStringResponse(http.StatusOK, `[{"agent_type":"sales","agent_id":"a1","org_id":"org-1","agent_config":{"language":"Hindi"}}]`), nil
		})

	agents, err := c.ListAgents(context.Background(), c.OrgID())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "sales", agents[0].AgentType)
	assert.Equal(t, "Hindi", agents[0].AgentConfig["language"])
}

func TestClientReadsTokenFreshEachCall(t *testing.T) {
	s := &fakeSession{token: "first"}
	c := newTestClient(t, s)

	var seen []string
	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/users/me",
		func(req *http.Request) (*http.Response, error) {
			seen = append(seen, req.Header.Get("Authorization"))
			return httpmock.NewStringResponse(http.StatusOK, `{"email":"a@b.c","org_id":"o"}`), nil
		})

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	s.token = "second"
	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestClient401ClearsSession(t *testing.T) {
	s := &fakeSession{token: "tok", org: "org-1"}
	c := newTestClient(t, s)

	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/meetings",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`))

	_, err := c.ListMeetings(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Contains(t, err.Error(), "Could not validate credentials")
	assert.Equal(t, 1, s.cleared)
	assert.Empty(t, s.Token())
	assert.Empty(t, s.OrgID())
}

func TestClientLogin401DoesNotClear(t *testing.T) {
	s := &fakeSession{}
	c := newTestClient(t, s)
	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/users/login",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"detail":"Invalid email or password"}`))

	_, err := c.Login(context.Background(), "a@b.c", "nope")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Zero(t, s.cleared)
}

func TestClientErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail":"Agent not found"}`, "Agent not found"},
		{"detail list", `{"detail":[{"loc":["body","email"],"msg":"field required"},{"msg":"bad value"}]}`, "field required; bad value"},
		{"error field", `{"error":"upstream down"}`, "upstream down"},
		{"no message", `<html>oops</html>`, "request failed with status 404"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, &fakeSession{token: "tok"})
			httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/agents/x",
				httpmock.NewStringResponder(http.StatusNotFound, tc.body))

			_, err := c.GetAgent(context.Background(), "x")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusNotFound, apiErr.Status)
			assert.Equal(t, tc.want, apiErr.Message)
			assert.False(t, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestClientInBandFailure(t *testing.T) {
	c := newTestClient(t, &fakeSession{token: "tok"})
	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/vobiz/application",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"fail","message":"quota exceeded"}`))

	_, err := c.CreateVobizApplication(context.Background(), "sales", "https://voice.test/answer/a1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClientQueryAndBodies(t *testing.T) {
	c := newTestClient(t, &fakeSession{token: "tok", org: "org-1"})

	httpmock.RegisterResponderWithQuery(http.MethodGet, testBase+"/api/v1/analytics",
		map[string]string{"agent_type": "sales", "start_date": "2025-01-01"},
		httpmock.NewStringResponder(http.StatusOK, `{"org_id":"org-1","calls_attempted":4,"agent_breakdown":[{"agent_type":"sales","call_count":4}]}`))
	sum, err := c.Analytics(context.Background(), AnalyticsFilter{AgentType: "sales", StartDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.CallsAttempted)

	httpmock.RegisterResponder(http.MethodDelete, testBase+"/api/v1/phone-numbers/detach",
		func(req *http.Request) (*http.Response, error) {
			b, _ := io.ReadAll(req.Body)
			assert.JSONEq(t, `{"phone_number":"+911234567890"}`, string(b))
			return httpmock.NewStringResponse(http.StatusOK, `{"status":"success","message":"detached"}`), nil
		})
	require.NoError(t, c.DetachPhoneNumber(context.Background(), "+911234567890"))

	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/members/org-1",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"success","members":[{"email":"a@b.c","name":"A"}],"count":1}`))
	members, err := c.ListMembers(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "a@b.c", members[0].Email)
}

func TestIntegrationMaskedKey(t *testing.T) {
	assert.Equal(t, "****cdef", Integration{APIKey: "sk-abcdef"}.MaskedKey())
	assert.Equal(t, "****", Integration{APIKey: "abc"}.MaskedKey())
}
