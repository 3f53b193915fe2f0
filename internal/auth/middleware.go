package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"voicera-console/internal/config"
	"voicera-console/internal/session"
	"voicera-console/pkg/logger"
)

// SignInPath is where the browser goes when its session is gone.
const SignInPath = "/"

// Sessions issues, resolves and ends console sessions.
type Sessions struct {
	mgr    *Manager
	store  session.Store
	cookie string
	secure bool
	now    func() time.Time
}

func NewSessions(mgr *Manager, store session.Store, cfg config.SessionConfig) *Sessions {
	name := cfg.CookieName
	if name == "" {
		name = "console_session"
	}
	return &Sessions{mgr: mgr, store: store, cookie: name, secure: cfg.SecureCookie, now: time.Now}
}

func (s *Sessions) Store() session.Store { return s.store }

// Start persists sess under a fresh id and sets the cookie.
func (s *Sessions) Start(c *gin.Context, sess session.Session) (session.Session, error) {
	sess.ID = uuid.NewString()
	sess.CreatedAt = s.now().UTC()
	if err := s.store.Save(c.Request.Context(), sess); err != nil {
		return session.Session{}, err
	}
	tok, err := s.mgr.Issue(s.now(), sess.ID, sess.OrgID)
	if err != nil {
		return session.Session{}, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookie, tok, int(s.mgr.TTL().Seconds()), "/", "", s.secure, true)
	return sess, nil
}

// End deletes the stored session, if any, and clears the cookie.
func (s *Sessions) End(c *gin.Context) error {
	s.clearCookie(c)
	h, err := FromGin(c)
	if err == nil {
		return h.Clear(c.Request.Context())
	}
	id, ok := s.sessionID(c)
	if !ok {
		return nil
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}
	return nil
}

// Resolve returns the session behind the request cookie.
func (s *Sessions) Resolve(ctx context.Context, c *gin.Context) (*session.Handle, error) {
	id, ok := s.sessionID(c)
	if !ok {
		return nil, ErrNoSession
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Token == "" {
		return nil, ErrNoSession
	}
	return session.NewHandle(s.store, sess), nil
}

func (s *Sessions) sessionID(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(s.cookie)
	if err != nil || raw == "" {
		return "", false
	}
	claims, err := s.mgr.Verify(raw, s.now())
	if err != nil {
		return "", false
	}
	return claims.SessionID, true
}

// RequireSession resolves the session or answers 401 with a redirect hint.
// The handle goes on both the gin and the request context.
func (s *Sessions) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		h, err := s.Resolve(c.Request.Context(), c)
		if err != nil {
			if !errors.Is(err, ErrNoSession) && !errors.Is(err, session.ErrNotFound) {
				logger.FromGin(c).Warn("session lookup failed", "err", err)
			}
			s.Unauthorized(c)
			return
		}
		c.Set(ginSessionKey, h)
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), h))
		logger.SetOrg(c, h.OrgID())

		c.Next()
	}
}

// Unauthorized clears the cookie and aborts with 401, pointing the browser
// back at the sign-in page.
func (s *Sessions) Unauthorized(c *gin.Context) {
	s.clearCookie(c)
	c.Header("Location", SignInPath)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "redirect": SignInPath})
}

func (s *Sessions) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookie, "", -1, "/", "", s.secure, true)
}
