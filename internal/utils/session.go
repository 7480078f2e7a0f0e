package utils

import "time"

// SessionData is what middleware needs to know about a session without
// depending on the auth package directly.
type SessionData struct {
	UserID    string
	OrgID     string
	Role      string
	ExpiresAt time.Time
}
