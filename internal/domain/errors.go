package domain

import "errors"

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidStock = errors.New("invalid stock")
)
