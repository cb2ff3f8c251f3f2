package domain

import "time"

// Session is the verified content of a session token. Role is a snapshot
// taken at issuance and does not follow later changes to the identity.
type Session struct {
	SubjectID string
	Email     string
	Name      string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionFromIdentity snapshots an identity into a session window.
func SessionFromIdentity(identity Identity, issuedAt time.Time, ttl time.Duration) Session {
	return Session{
		SubjectID: identity.ID,
		Email:     identity.Email,
		Name:      identity.Name,
		Role:      identity.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl),
	}
}
