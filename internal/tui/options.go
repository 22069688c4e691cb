package tui

// Option defines a functional option for model configuration.
type Option func(*Model)

// WithItemCreator wires the outbound item-creation client. Without one the
// create form reports creation as unavailable.
func WithItemCreator(creator ItemCreator) Option {
	return func(m *Model) {
		m.creator = creator
	}
}

// WithMaxToasts caps how many toasts render at once; older entries stay
// queued but off-screen.
func WithMaxToasts(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.maxToasts = n
		}
	}
}

// WithLowStockAccent sets the stock level at or below which rows render with
// the warning accent. Display only; notification rules are fixed.
func WithLowStockAccent(n int) Option {
	return func(m *Model) {
		if n >= 0 {
			m.lowStockAccent = n
		}
	}
}

// WithShowHelp toggles the help footer.
func WithShowHelp(show bool) Option {
	return func(m *Model) {
		m.showHelp = show
	}
}
