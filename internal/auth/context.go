package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/session"
)

var ErrNoSession = errors.New("auth: no session in context")

type ctxKey int

const ctxSession ctxKey = iota

const ginSessionKey = "session"

func WithSession(ctx context.Context, h *session.Handle) context.Context {
	return context.WithValue(ctx, ctxSession, h)
}

func SessionFrom(ctx context.Context) (*session.Handle, error) {
	if h, ok := ctx.Value(ctxSession).(*session.Handle); ok && h != nil {
		return h, nil
	}
	return nil, ErrNoSession
}

// FromGin returns the handle RequireSession stored for this request.
func FromGin(c *gin.Context) (*session.Handle, error) {
	if v, ok := c.Get(ginSessionKey); ok {
		if h, ok := v.(*session.Handle); ok && h != nil {
			return h, nil
		}
	}
	return SessionFrom(c.Request.Context())
}
