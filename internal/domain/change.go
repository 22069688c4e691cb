package domain

import "time"

// ChangeKind discriminates the pending change descriptor.
type ChangeKind string

// ChangeKind values.
const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
)

// Change records the most recent mutation applied to the inventory state. It
// is transient: at most one is pending at a time, a newer one overwrites an
// unconsumed older one, and the notification producer consumes it exactly
// once.
type Change struct {
	Kind ChangeKind
	Item Item
	// OldStock is the stock value before an update; meaningless for created.
	OldStock int
	At       time.Time
}

// StockDelta returns the signed stock movement for updated changes.
func (c Change) StockDelta() int {
	return c.Item.Stock - c.OldStock
}
