package domain

import (
	"encoding/json"
	"fmt"
)

// itemFields mirrors the wire shape of one item payload. Pointers distinguish
// absent fields from zero values so required-field validation can reject
// partial payloads.
type itemFields struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Stock *int    `json:"stock"`
}

// itemEnvelope accepts both the flat item shape and the variant that nests the
// fields one level under "data".
type itemEnvelope struct {
	itemFields
	Data *itemFields `json:"data"`
}

// DecodeItemPayload parses a single item event payload. Payloads missing any
// of id, name, or stock fail with ErrMissingField; callers drop those with a
// diagnostic rather than surfacing them.
func DecodeItemPayload(raw []byte) (Item, error) {
	var env itemEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Item{}, fmt.Errorf("decode item payload: %w", err)
	}
	fields := env.itemFields
	if env.Data != nil {
		fields = *env.Data
	}
	if fields.ID == nil || fields.Name == nil || fields.Stock == nil {
		return Item{}, ErrMissingField
	}
	return NewItem(*fields.ID, *fields.Name, *fields.Stock)
}

// DecodeSyncPayload splits a full-sync payload into its per-item payloads.
// Each element still goes through DecodeItemPayload so one malformed entry
// never poisons the rest of the list.
func DecodeSyncPayload(raw []byte) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode sync payload: %w", err)
	}
	return entries, nil
}
