package domain

import "time"

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Icon returns the glyph rendered next to a notification of this severity.
func (s Severity) Icon() string {
	switch s {
	case SeveritySuccess:
		return "✔"
	case SeverityError:
		return "✖"
	default:
		return "ℹ"
	}
}

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the notification timed out at now. A zero
// ExpiresAt never expires.
func (n Notification) Expired(now time.Time) bool {
	return !n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt)
}
