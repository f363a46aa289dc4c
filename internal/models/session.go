package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SessionLog is the persisted record of a user's most recent login. There is
// at most one row per user; logins overwrite it and logout clears the token.
// A JWT is only honoured while it equals the stored token, which is what
// makes logout and single-session-per-user effective despite JWTs staying
// cryptographically valid until expiry.
type SessionLog struct {
	bun.BaseModel `bun:"table:session_logs"`

	UserID     string     `bun:"user_id,pk" json:"user_id"`
	Token      string     `bun:"token,nullzero" json:"-"`
	LoginTime  time.Time  `bun:"login_time,notnull" json:"login_time"`
	LogoutTime *time.Time `bun:"logout_time" json:"logout_time,omitempty"`
}

// Active reports whether the session still has a live token.
func (s *SessionLog) Active() bool {
	return s != nil && s.Token != ""
}
