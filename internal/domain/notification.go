package domain

import "time"

// NotificationKind classifies a transient user-facing message.
type NotificationKind string

// NotificationKind values in display-priority order.
const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
)

// Notification is one queued transient message. IDs are monotonically
// increasing integers assigned by the queue, never reused. Entries are
// independent of each other and die after Duration elapses or on explicit
// dismissal.
type Notification struct {
	ID        int
	Message   string
	Kind      NotificationKind
	Duration  time.Duration
	Timestamp time.Time

	// Alert passthrough fields, kept for display. Zero means absent.
	Severity     string
	CurrentCount int
	Threshold    int
}

// NotificationSpec is the request shape accepted by the queue. Zero Kind and
// Duration fall back to the queue defaults (info, 5s).
type NotificationSpec struct {
	Message      string
	Kind         NotificationKind
	Duration     time.Duration
	Severity     string
	CurrentCount int
	Threshold    int
}
