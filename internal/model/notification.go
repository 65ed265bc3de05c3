package model

import "time"

// NotificationKind classifies a notification. The kind only drives
// icon and color selection in the UI; it carries no behavior.
type NotificationKind string

const (
	KindSuccess    NotificationKind = "success"
	KindWarning    NotificationKind = "warning"
	KindError      NotificationKind = "error"
	KindPriceAlert NotificationKind = "price_alert"
	KindInfo       NotificationKind = "info"
)

// Notification priorities. A high-priority notification additionally
// surfaces a transient toast at delivery time; the toast itself is
// not persisted.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Notification is a server-issued alert or update shown in the
// notification feed. Notifications are created by the backend and
// arrive either in a batch fetch or pushed over the event stream.
type Notification struct {
	// ID is the server-assigned unique identifier.
	ID string `json:"id"`

	// Title is the short headline text.
	Title string `json:"title"`

	// Message is the full notification body.
	Message string `json:"message"`

	// Kind classifies the notification for display purposes.
	Kind NotificationKind `json:"kind"`

	// Priority is "normal" or "high" (use the Priority* constants).
	Priority string `json:"priority"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// Symbol is the related ticker symbol, if any (price alerts).
	Symbol string `json:"symbol,omitempty"`

	// CreatedAt is when the notification was generated by the server.
	CreatedAt time.Time `json:"created_at"`
}
