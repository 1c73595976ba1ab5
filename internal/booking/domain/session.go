package domain

import "time"

// Session is what the auth endpoints return: a signed bearer token plus
// enough metadata for the client to schedule a re-login.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"` // always "Bearer"
	ExpiresAt   time.Time `json:"expires_at"`
	User        Profile   `json:"user"`
}
