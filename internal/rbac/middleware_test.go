package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/auth"
	"voicera-console/internal/session"
)

func withSession(s *session.Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), s))
		}
		c.Next()
	}
}

func serve(t *testing.T, s *session.Handle) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", withSession(s), RequireOrg(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w.Code
}

func TestRequireOrg_AllowsOrgSession(t *testing.T) {
	h := session.NewHandle(nil, session.Session{ID: "s1", Token: "tok", OrgID: "org-1"})
	if code := serve(t, h); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireOrg_RejectsMissingOrg(t *testing.T) {
	h := session.NewHandle(nil, session.Session{ID: "s1", Token: "tok"})
	if code := serve(t, h); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireOrg_RejectsMissingSession(t *testing.T) {
	if code := serve(t, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
