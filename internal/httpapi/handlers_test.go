package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicera-console/internal/audit"
	"voicera-console/internal/auth"
	"voicera-console/internal/backend"
	"voicera-console/internal/capability"
	"voicera-console/internal/config"
	"voicera-console/internal/session"
	"voicera-console/internal/telephony"
	"voicera-console/pkg/logger"
)

const backendURL = "https://backend.test"

type harness struct {
	t      *testing.T
	r      *gin.Engine
	store  *session.MemoryStore
	events *audit.MemoryRepo
	cookie *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)

	cfg := config.SessionConfig{Secret: "test-secret", TTL: time.Hour, CookieName: "console_session"}
	mgr, err := auth.NewManager(cfg)
	require.NoError(t, err)
	store := session.NewMemoryStore(time.Hour)
	events := audit.NewMemoryRepo()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := &Handlers{
		Registry:       capability.MustLoad(),
		Sessions:       auth.NewSessions(mgr, store, cfg),
		Audit:          audit.NewService(events, log),
		BackendURL:     backendURL,
		VoiceServerURL: "https://voice.test",
		HTTPClient:     hc,
	}
	r := gin.New()
	r.Use(logger.Middleware(log))
	h.Register(r)
	return &harness{t: t, r: r, store: store, events: events}
}

func (hs *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	hs.t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(hs.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if hs.cookie != nil {
		req.AddCookie(hs.cookie)
	}
	w := httptest.NewRecorder()
	hs.r.ServeHTTP(w, req)
	return w
}

func (hs *harness) login() {
	hs.t.Helper()
	httpmock.RegisterResponder(http.MethodPost, backendURL+"/api/v1/users/login",
		httpmock.NewStringResponder(http.StatusOK, `{"access_token":"backend-access-token","token_type":"bearer","org_id":"org-1"}`))
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/users/me",
		httpmock.NewStringResponder(http.StatusOK, `{"email":"owner@acme.test","name":"Owner","org_id":"org-1"}`))

	w := hs.do(http.MethodPost, BasePath+"/session", map[string]string{"email": "owner@acme.test", "password": "pw"})
	require.Equal(hs.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "console_session" && c.Value != "" {
			hs.cookie = c
		}
	}
	require.NotNil(hs.t, hs.cookie, "session cookie not set")
}

func (hs *harness) eventTypes() []audit.EventType {
	var out []audit.EventType
	for _, e := range hs.events.Events() {
		out = append(out, e.Type)
	}
	return out
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestLoginStartsSessionAndKeepsTokenServerSide(t *testing.T) {
	hs := newHarness(t)
	hs.login()

	assert.NotContains(t, hs.cookie.Value, "backend-access-token")
	assert.Equal(t, 1, hs.store.Len())
	assert.Equal(t, []audit.EventType{audit.EventSignIn}, hs.eventTypes())

	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/agents/org/org-1",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer backend-access-token", req.Header.Get("Authorization"))
			return httpmock.NewStringResponse(http.StatusOK, `[{"agent_type":"support"},{"agent_type":"billing"},{"agent_type":"sales"}]`), nil
		})
	w := hs.do(http.MethodGet, BasePath+"/agents?page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Items []struct {
			AgentType string `json:"agent_type"`
		} `json:"items"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	}](t, w)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "billing", page.Items[0].AgentType)
	assert.Equal(t, "sales", page.Items[1].AgentType)
}

func TestLoginFailurePassesBackendMessage(t *testing.T) {
	hs := newHarness(t)
	httpmock.RegisterResponder(http.MethodPost, backendURL+"/api/v1/users/login",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"detail":"Invalid email or password"}`))

	w := hs.do(http.MethodPost, BasePath+"/session", map[string]string{"email": "a@b.c", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
	assert.Zero(t, hs.store.Len())
}

func TestProtectedRouteWithoutSessionRedirects(t *testing.T) {
	hs := newHarness(t)
	w := hs.do(http.MethodGet, BasePath+"/agents", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.SignInPath, w.Header().Get("Location"))
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestBackend401EndsSession(t *testing.T) {
	hs := newHarness(t)
	hs.login()
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/meetings",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`))

	w := hs.do(http.MethodGet, BasePath+"/history", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.SignInPath, w.Header().Get("Location"))
	assert.Zero(t, hs.store.Len())

	w = hs.do(http.MethodGet, BasePath+"/agents", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttachRejectsHeldNumber(t *testing.T) {
	hs := newHarness(t)
	hs.login()
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/agents/org/org-1",
		httpmock.NewStringResponder(http.StatusOK, `[{"agent_type":"sales"},{"agent_type":"support"}]`))
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/phone-numbers/org/org-1",
		httpmock.NewStringResponder(http.StatusOK, `[{"phone_number":"+911111111111","provider":"vobiz","agent_type":"sales"}]`))
	httpmock.RegisterResponder(http.MethodPost, backendURL+"/api/v1/phone-numbers/attach",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"success"}`))

	w := hs.do(http.MethodPost, BasePath+"/numbers/attach", map[string]string{
		"phone_number": "+911111111111", "provider": "vobiz", "agent_type": "support",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, httpmock.GetCallCountInfo()["POST "+backendURL+"/api/v1/phone-numbers/attach"])

	w = hs.do(http.MethodPost, BasePath+"/numbers/attach", map[string]string{
		"phone_number": "+912222222222", "provider": "vobiz", "agent_type": "support",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, httpmock.GetCallCountInfo()["POST "+backendURL+"/api/v1/phone-numbers/attach"])
	assert.Contains(t, hs.eventTypes(), audit.EventNumberAttached)
}

func TestCandidatesMergeVobizInventory(t *testing.T) {
	hs := newHarness(t)
	hs.login()
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/agents/org/org-1",
		httpmock.NewStringResponder(http.StatusOK, `[{"agent_type":"sales","phone_number":"+911111111111"},{"agent_type":"support"}]`))
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/phone-numbers/org/org-1",
		httpmock.NewStringResponder(http.StatusOK, `[{"phone_number":"+913333333333","provider":"vobiz"}]`))
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/vobiz/numbers",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"success","numbers":["+911111111111","+912222222222"]}`))

	w := hs.do(http.MethodGet, BasePath+"/numbers/candidates?provider=vobiz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Numbers []string `json:"numbers"`
		Agents  []string `json:"agents"`
	}](t, w)
	assert.Equal(t, []string{"+912222222222", "+913333333333"}, got.Numbers)
	assert.Equal(t, []string{"support"}, got.Agents)
}

func TestDeleteAgentContinuesPastFailedSteps(t *testing.T) {
	hs := newHarness(t)
	hs.login()
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/agents/sales",
		httpmock.NewStringResponder(http.StatusOK, `{"agent_type":"sales","agent_id":"a1","org_id":"org-1","phone_number":"+911111111111","telephony_provider":"vobiz","vobiz_app_id":"app-1"}`))
	httpmock.RegisterResponder(http.MethodDelete, backendURL+"/api/v1/phone-numbers/detach",
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"detail":"registry unavailable"}`))
	httpmock.RegisterResponder(http.MethodDelete, backendURL+"/api/v1/vobiz/numbers/unlink",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"success"}`))
	httpmock.RegisterResponder(http.MethodDelete, backendURL+"/api/v1/vobiz/application/app-1",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"success"}`))
	httpmock.RegisterResponder(http.MethodDelete, backendURL+"/api/v1/agents/sales",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"success"}`))

	w := hs.do(http.MethodDelete, BasePath+"/agents/sales", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[struct {
		Report struct {
			Steps []struct {
				Step    string `json:"step"`
				Outcome string `json:"outcome"`
			} `json:"steps"`
		} `json:"report"`
		Warnings []struct {
			Step string `json:"step"`
		} `json:"warnings"`
	}](t, w)
	require.Len(t, got.Report.Steps, 4)
	assert.Equal(t, "failed", got.Report.Steps[0].Outcome)
	for _, s := range got.Report.Steps[1:] {
		assert.Equal(t, "ok", s.Outcome, s.Step)
	}
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, "detach_number", got.Warnings[0].Step)

	types := hs.eventTypes()
	assert.Equal(t, audit.EventAgentDeleted, types[len(types)-1])
}

func TestExportHistoryCSV(t *testing.T) {
	hs := newHarness(t)
	hs.login()
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/meetings",
		httpmock.NewStringResponder(http.StatusOK, `[
			{"meeting_id":"m1","agent_type":"sales","inbound":true,"from_number":"+1","to_number":"+2","start_time_utc":"2025-01-02T10:00:00Z","end_time_utc":"2025-01-02T10:01:30Z"},
			{"meeting_id":"m2","agent_type":"sales","inbound":true,"call_busy":true,"start_time_utc":"2025-01-03T10:00:00Z"},
			{"meeting_id":"m3","agent_type":"support","start_time_utc":"2025-01-04T10:00:00Z"}
		]`))

	w := hs.do(http.MethodGet, BasePath+"/history/export?format=csv&status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="call_history_`)

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Meeting ID,"))
	assert.True(t, strings.HasPrefix(lines[1], "m1,sales,inbound"))
	assert.Contains(t, hs.eventTypes(), audit.EventHistoryExported)

	w = hs.do(http.MethodGet, BasePath+"/history/export?format=xls", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocalAnalytics(t *testing.T) {
	hs := newHarness(t)
	hs.login()
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/meetings",
		httpmock.NewStringResponder(http.StatusOK, `[
			{"meeting_id":"m1","agent_type":"sales","org_id":"org-1","duration":120,"end_time_utc":"2025-01-02T10:02:00Z"},
			{"meeting_id":"m2","agent_type":"sales","org_id":"org-1","call_busy":true},
			{"meeting_id":"m3","agent_type":"support","org_id":"org-2","duration":60,"end_time_utc":"2025-01-02T10:01:00Z"}
		]`))

	w := hs.do(http.MethodGet, BasePath+"/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[struct {
		OrgID          string  `json:"org_id"`
		CallsAttempted int     `json:"calls_attempted"`
		CallsConnected int     `json:"calls_connected"`
		Average        float64 `json:"average_call_duration"`
		MostUsedAgent  string  `json:"most_used_agent"`
	}](t, w)
	assert.Equal(t, "org-1", got.OrgID)
	assert.Equal(t, 2, got.CallsAttempted)
	assert.Equal(t, 1, got.CallsConnected)
	assert.Equal(t, 2.0, got.Average)
	assert.Equal(t, "sales", got.MostUsedAgent)
}

func TestWizardBlocksIncompleteStep(t *testing.T) {
	hs := newHarness(t)
	hs.login()

	w := hs.do(http.MethodPost, BasePath+"/form/wizard", map[string]any{"step": "identity", "action": "next"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	got := decode[wizardResponse](t, w)
	assert.Equal(t, "identity", got.Current)
	assert.NotEmpty(t, got.Error)

	w = hs.do(http.MethodPost, BasePath+"/form/wizard", map[string]any{
		"step":   "identity",
		"action": "next",
		"draft": map[string]any{
			"identity": map[string]any{"agent_type": "sales", "system_prompt": "Be helpful."},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "llm", decode[wizardResponse](t, w).Current)
}

func TestResolveFormAppliesEvents(t *testing.T) {
	hs := newHarness(t)
	hs.login()

	w := hs.do(http.MethodPost, BasePath+"/form/resolve", map[string]any{
		"selection": map[string]any{},
		"events":    []map[string]any{{"type": "language", "value": "English (US)"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[formResponse](t, w)
	assert.Equal(t, "English (US)", got.Selection.Language)
	assert.NotEmpty(t, got.Options.STTProviders)

	w = hs.do(http.MethodPost, BasePath+"/form/resolve", map[string]any{
		"events": []map[string]any{{"type": "bogus"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntegrationsAreMasked(t *testing.T) {
	hs := newHarness(t)
	hs.login()
	httpmock.RegisterResponder(http.MethodGet, backendURL+"/api/v1/integrations",
		httpmock.NewStringResponder(http.StatusOK, `[{"org_id":"org-1","model":"openai","api_key":"sk-abcdefgh"}]`))

	w := hs.do(http.MethodGet, BasePath+"/integrations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "sk-abcdefgh")
	assert.Contains(t, w.Body.String(), "****efgh")
}

func TestPublicCatalog(t *testing.T) {
	hs := newHarness(t)
	w := hs.do(http.MethodGet, BasePath+"/catalog/languages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "English (US)")
}

func TestFailMapsProvisioningToBadGateway(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"provisioning wraps backend error", fmt.Errorf("%w: create application: %w", telephony.ErrProvisioning, &backend.APIError{Status: http.StatusBadRequest, Message: "quota exceeded"}), http.StatusBadGateway},
		{"plain backend error", &backend.APIError{Status: http.StatusNotFound, Message: "Agent not found"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

			(&Handlers{}).fail(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestAccountRoutesPassThrough(t *testing.T) {
	hs := newHarness(t)
	httpmock.RegisterResponder(http.MethodPost, backendURL+"/api/v1/users/signup",
		func(req *http.Request) (*http.Response, error) {
			assert.Empty(t, req.Header.Get("Authorization"))
			b, _ := io.ReadAll(req.Body)
			assert.JSONEq(t, `{"email":"new@acme.test","password":"pw","name":"New","company_name":"Acme"}`, string(b))
			return httpmock.NewStringResponse(http.StatusCreated, `{"status":"success","message":"User created"}`), nil
		})
	httpmock.RegisterResponder(http.MethodPost, backendURL+"/api/v1/users/forgot-password",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"success","message":"Reset email sent"}`))
	httpmock.RegisterResponder(http.MethodPost, backendURL+"/api/v1/users/reset-password",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"detail":"Invalid or expired token"}`))

	w := hs.do(http.MethodPost, BasePath+"/signup", map[string]string{
		"email": " new@acme.test ", "password": "pw", "name": "New", "company_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "User created", decode[map[string]string](t, w)["message"])

	w = hs.do(http.MethodPost, BasePath+"/password/forgot", map[string]string{"email": "new@acme.test"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reset email sent", decode[map[string]string](t, w)["message"])

	w = hs.do(http.MethodPost, BasePath+"/password/reset", map[string]string{"token": "t", "new_password": "pw2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired token", decode[map[string]string](t, w)["error"])

	w = hs.do(http.MethodPost, BasePath+"/signup", map[string]string{"email": "x@acme.test"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
