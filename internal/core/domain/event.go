package domain

import "time"

// AuthEventType classifies a session lifecycle event.
type AuthEventType string

const (
	EventLogin       AuthEventType = "login"
	EventLoginFailed AuthEventType = "login_failed"
	EventRegister    AuthEventType = "register"
	EventRefresh     AuthEventType = "refresh"
	EventLogout      AuthEventType = "logout"
)

// AuthEvent is one entry of the authentication audit trail.
// UserID is empty for failed logins against unknown emails.
type AuthEvent struct {
	Type      AuthEventType
	UserID    string
	Email     string
	IP        string
	UserAgent string
	Timestamp time.Time
}

// ShardKey returns the value used to keep events of one identity ordered.
func (e AuthEvent) ShardKey() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.Email
}
