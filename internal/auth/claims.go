package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are carried by the console session cookie. The cookie only points
// at a server-side session; the backend token is never put in it.
type Claims struct {
	jwt.RegisteredClaims

	SessionID string `json:"sid"`
	OrgID     string `json:"org_id"`
}
