package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/audit"
	"voicera-console/internal/backend"
	"voicera-console/internal/session"
	"voicera-console/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials with the backend and starts a console session.
// The backend token stays server-side.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		badRequest(c, "email and password required")
		return
	}

	res, err := h.client(c, nil).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	sess := session.Session{Token: res.AccessToken, OrgID: res.OrgID, Email: req.Email}
	// Profile lookup is best-effort; the token alone is enough to proceed.
	probe := session.NewHandle(nil, sess)
	if me, err := h.client(c, probe).Me(c.Request.Context()); err == nil {
		sess.Name = me.Name
		if sess.OrgID == "" {
			sess.OrgID = me.OrgID
		}
	} else {
		logger.FromGin(c).Warn("profile lookup after login failed", "err", err)
	}

	started, err := h.Sessions.Start(c, sess)
	if err != nil {
		h.fail(c, err)
		return
	}
	logger.SetOrg(c, started.OrgID)
	h.record(c, session.NewHandle(nil, started), audit.Event{Type: audit.EventSignIn, Target: started.Email})
	c.JSON(http.StatusOK, gin.H{"email": started.Email, "name": started.Name, "org_id": started.OrgID})
}

func (h *Handlers) Logout(c *gin.Context) {
	hd, _, ok := h.sessionClient(c)
	if !ok {
		return
	}
	h.record(c, hd, audit.Event{Type: audit.EventSignOut, Target: hd.Email()})
	if err := h.Sessions.End(c); err != nil {
		logger.FromGin(c).Warn("session delete failed", "err", err)
	}
	c.Status(http.StatusNoContent)
}

// Me returns the backend profile of the signed-in user.
func (h *Handlers) Me(c *gin.Context) {
	_, api, ok := h.sessionClient(c)
	if !ok {
		return
	}
	me, err := api.Me(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	OrgID       string `json:"org_id"`
}

// Signup passes account creation through to the backend. It does not start a
// session; the page signs in afterwards.
func (h *Handlers) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		badRequest(c, "email, password and name required")
		return
	}
	st, err := h.client(c, nil).Signup(c.Request.Context(), backend.SignupRequest{
		Email:       req.Email,
		Password:    req.Password,
		Name:        strings.TrimSpace(req.Name),
		CompanyName: strings.TrimSpace(req.CompanyName),
		OrgID:       strings.TrimSpace(req.OrgID),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"email": req.Email, "message": st.Message})
}

func (h *Handlers) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		badRequest(c, "email required")
		return
	}
	st, err := h.client(c, nil).ForgotPassword(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": st.Message})
}

func (h *Handlers) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		badRequest(c, "token and new_password required")
		return
	}
	st, err := h.client(c, nil).ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": st.Message})
}
