package domain

import (
	"testing"
	"time"
)

func TestDecodeAlertPayload(t *testing.T) {
	raw := []byte(`{"type": "low_stock", "item_id": 4, "timestamp": "2026-08-28T10:00:00Z", "severity": "warning", "message": "Low stock on Widget", "current_count": 3, "threshold": 5}`)
	alert, err := DecodeAlertPayload(raw)
	if err != nil {
		t.Fatalf("DecodeAlertPayload() error = %v", err)
	}
	if alert.Type != "low_stock" || alert.ItemID != 4 || alert.Severity != SeverityWarning {
		t.Fatalf("unexpected alert %+v", alert)
	}
	if alert.DedupKey() != "low_stock|4|2026-08-28T10:00:00Z" {
		t.Fatalf("DedupKey() = %q", alert.DedupKey())
	}
}

func TestDecodeAlertPayloadLenient(t *testing.T) {
	alert, err := DecodeAlertPayload([]byte(`{"type": "restock"}`))
	if err != nil {
		t.Fatalf("DecodeAlertPayload() error = %v", err)
	}
	if alert.ItemID != 0 || alert.Message != "" {
		t.Fatalf("unexpected alert %+v", alert)
	}
}

func TestAlertNotificationKind(t *testing.T) {
	cases := []struct {
		severity string
		want     NotificationKind
	}{
		{SeverityCritical, NotificationError},
		{SeverityWarning, NotificationWarning},
		{"", NotificationInfo},
		{"unknown", NotificationInfo},
	}
	for _, tc := range cases {
		got := Alert{Severity: tc.severity}.NotificationKind()
		if got != tc.want {
			t.Fatalf("severity %q: kind = %q, want %q", tc.severity, got, tc.want)
		}
	}
}

func TestAlertComposeMessage(t *testing.T) {
	alert := Alert{Message: "Low stock on Widget", CurrentCount: 3, Threshold: 5}
	if got := alert.ComposeMessage(); got != "Low stock on Widget (3/5)" {
		t.Fatalf("ComposeMessage() = %q", got)
	}
}

func TestAlertComposeMessageDefaultsAndSuffix(t *testing.T) {
	if got := (Alert{}).ComposeMessage(); got != "Inventory alert" {
		t.Fatalf("ComposeMessage() = %q", got)
	}
	// Suffix only appears when both count and threshold are positive.
	if got := (Alert{Message: "Alert", CurrentCount: 3}).ComposeMessage(); got != "Alert" {
		t.Fatalf("ComposeMessage() = %q", got)
	}
	if got := (Alert{Message: "Alert", Threshold: 5}).ComposeMessage(); got != "Alert" {
		t.Fatalf("ComposeMessage() = %q", got)
	}
}

func TestAlertDisplayDuration(t *testing.T) {
	if got := (Alert{Severity: SeverityCritical}).DisplayDuration(); got != 10*time.Second {
		t.Fatalf("critical duration = %v", got)
	}
	if got := (Alert{Severity: SeverityWarning}).DisplayDuration(); got != 7*time.Second {
		t.Fatalf("warning duration = %v", got)
	}
	if got := (Alert{}).DisplayDuration(); got != 7*time.Second {
		t.Fatalf("default duration = %v", got)
	}
}
