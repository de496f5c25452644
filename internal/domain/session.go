package domain

import "time"

// SessionToken describes the self-contained claim carried in a session
// cookie. Nothing is stored server-side; the role claim is advisory only
// and authorization always re-derives the role from the identity store.
type SessionToken struct {
	SubjectID string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
