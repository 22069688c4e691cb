package notify

import (
	"fmt"
	"time"

	"github.com/hylla/lagerkoll/internal/domain"
)

// Display durations and thresholds for change-derived notifications.
const (
	createdDuration   = 5 * time.Second
	updatedDuration   = 4 * time.Second
	lowStockThreshold = 5
)

// FromChange translates one consumed change descriptor into a notification
// spec. Callers own the exactly-once contract: the descriptor must be cleared
// after this runs.
func FromChange(c domain.Change) domain.NotificationSpec {
	if c.Kind == domain.ChangeCreated {
		return domain.NotificationSpec{
			Message:  fmt.Sprintf("New item created: %q with %d in stock", c.Item.Name, c.Item.Stock),
			Kind:     domain.NotificationSuccess,
			Duration: createdDuration,
		}
	}

	delta := c.StockDelta()
	message := fmt.Sprintf("Item %q updated", c.Item.Name)
	if delta > 0 {
		message += fmt.Sprintf(" (+%d stock)", delta)
	} else if delta < 0 {
		message += fmt.Sprintf(" (%d stock)", delta)
	}

	kind := domain.NotificationInfo
	switch {
	case c.Item.Stock == 0:
		kind = domain.NotificationError
		message += " - Out of stock!"
	case c.Item.Stock <= lowStockThreshold:
		kind = domain.NotificationWarning
		message += " - Low stock warning"
	case delta > 0:
		kind = domain.NotificationSuccess
	}

	return domain.NotificationSpec{
		Message:  message,
		Kind:     kind,
		Duration: updatedDuration,
	}
}
