package repositories

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned by DecrementStock when the product has fewer units than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicate is returned when a unique key (product SKU, user email) is already taken.
	ErrDuplicate = errors.New("duplicate key")
)
