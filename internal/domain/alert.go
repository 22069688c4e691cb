package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Alert severities delivered on the alert topic.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Alert is one inbound alert payload. It rides a side channel independent of
// item reconciliation: alerts never mutate the item list, they only produce
// notifications.
type Alert struct {
	Type         string `json:"type"`
	ItemID       int64  `json:"item_id"`
	Timestamp    string `json:"timestamp"`
	Severity     string `json:"severity"`
	Message      string `json:"message"`
	CurrentCount int    `json:"current_count"`
	Threshold    int    `json:"threshold"`
}

// DecodeAlertPayload parses one alert payload. Alerts are decoded leniently;
// absent fields fall back to zero values and the dedup key is built from
// whatever arrived.
func DecodeAlertPayload(raw []byte) (Alert, error) {
	var alert Alert
	if err := json.Unmarshal(raw, &alert); err != nil {
		return Alert{}, fmt.Errorf("decode alert payload: %w", err)
	}
	return alert, nil
}

// DedupKey renders the exact (type, item_id, timestamp) identity of an alert.
func (a Alert) DedupKey() string {
	return fmt.Sprintf("%s|%d|%s", a.Type, a.ItemID, a.Timestamp)
}

// NotificationKind maps alert severity onto a notification kind.
func (a Alert) NotificationKind() NotificationKind {
	switch a.Severity {
	case SeverityCritical:
		return NotificationError
	case SeverityWarning:
		return NotificationWarning
	default:
		return NotificationInfo
	}
}

// ComposeMessage builds the user-facing alert text, appending the
// count/threshold suffix when both are present.
func (a Alert) ComposeMessage() string {
	message := a.Message
	if message == "" {
		message = "Inventory alert"
	}
	if a.CurrentCount > 0 && a.Threshold > 0 {
		message += fmt.Sprintf(" (%d/%d)", a.CurrentCount, a.Threshold)
	}
	return message
}

// DisplayDuration returns how long the alert notification stays visible.
func (a Alert) DisplayDuration() time.Duration {
	if a.Severity == SeverityCritical {
		return 10 * time.Second
	}
	return 7 * time.Second
}
