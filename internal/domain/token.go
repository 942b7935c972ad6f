package domain

import "time"

// RefreshToken stores only the SHA-256 hash of the raw value; the raw
// token is returned to the client once and never persisted. Rows are
// never deleted: revocation and the ReplacedByHash chain form the audit
// trail for forensic tracing.
type RefreshToken struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	TokenHash      string     `json:"-"`
	ExpiresAt      time.Time  `json:"expires_at"`
	Persistent     bool       `json:"persistent"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	ReplacedByHash *string    `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive is the single usability predicate: issued, not revoked, not
// expired.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}
