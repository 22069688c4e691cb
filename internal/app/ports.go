package app

import (
	"context"
	"time"

	"github.com/hylla/lagerkoll/internal/domain"
)

// Notifier receives the notifications the reconciler produces. The notify
// queue is the production implementation; tests substitute recorders.
type Notifier interface {
	Enqueue(domain.NotificationSpec) domain.Notification
}

// Clock returns the current time.
type Clock func() time.Time

// Logger is the slice of the runtime logger the service uses for
// diagnostics. Malformed and duplicate events are logged here, never
// surfaced to the user.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

// CreateItemInput carries one outbound item-creation request. Description and
// Price are optional and serialize as null when absent.
type CreateItemInput struct {
	Name        string
	Stock       int
	Description string
	Price       *float64
}

// ItemCreator is the outbound item-creation API. There is exactly one call
// shape: no retry, no cancellation beyond ctx.
type ItemCreator interface {
	CreateItem(ctx context.Context, in CreateItemInput) (*domain.Item, error)
}
