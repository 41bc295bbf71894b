package domain

import "time"

// SessionInfo is what can be read out of a stored token without verifying it.
// It is for display only and never decides whether a session is active.
type SessionInfo struct {
	Subject   string    `json:"sub,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
