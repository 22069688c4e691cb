package domain

import (
	"fmt"
	"strings"
)

// Item is one inventory entry. Identity is ID; Name and Stock may change on
// later events, ID never does. Items are created on the first event seen for
// an unknown id and updated in place afterwards; nothing deletes them within
// a session.
type Item struct {
	ID    int64
	Name  string
	Stock int
}

// NewItem validates and normalizes one item.
func NewItem(id int64, name string, stock int) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrInvalidName
	}
	if stock < 0 {
		return Item{}, ErrInvalidStock
	}
	return Item{ID: id, Name: name, Stock: stock}, nil
}

// DedupKey renders the (id, name, stock) triple used by the burst-suppression
// window.
func (i Item) DedupKey() string {
	return fmt.Sprintf("%d|%s|%d", i.ID, i.Name, i.Stock)
}
