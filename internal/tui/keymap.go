package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	newItem    key.Binding
	dismiss    key.Binding
	dismissAll key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "row up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "row down")),
		newItem:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new item")),
		dismiss:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss toast")),
		dismissAll: key.NewBinding(key.WithKeys("X", "shift+x"), key.WithHelp("X", "dismiss all")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.newItem, k.dismiss, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.newItem, k.dismiss, k.dismissAll},
		{k.moveUp, k.moveDown},
		{k.toggleHelp, k.quit},
	}
}
