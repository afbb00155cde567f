package repositories

import "errors"

var (
	// ErrCollectionNotEmpty is returned when deleting a collection that
	// still has member cards.
	ErrCollectionNotEmpty = errors.New("collection still contains cards")

	ErrNotFound = errors.New("record not found")
)
