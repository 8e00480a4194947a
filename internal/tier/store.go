package tier

import (
	"context"
	"errors"
)

// ErrRecordNotFound indicates the requested record does not exist.
var ErrRecordNotFound = errors.New("tier: record not found")

// ErrEmptyKey indicates an attempt to store a record without a key.
var ErrEmptyKey = errors.New("tier: record key must not be empty")

// ErrMissingFull indicates an attempt to store a record that has a derived
// tier without the canonical full content, which would break the tier
// monotonicity invariant.
var ErrMissingFull = errors.New("tier: record has derived tiers but no full content")

// Store persists tiered memory records.
// Implementations must be safe for concurrent use, and Put must be atomic:
// either all tiers of a record become visible or none do.
type Store interface {
	// Put stores a record, replacing any existing record with the same key.
	// Returns ErrMissingFull if the record violates tier monotonicity.
	Put(ctx context.Context, rec Record) error

	// Get retrieves a record by key. Returns ErrRecordNotFound if absent.
	Get(ctx context.Context, key string) (Record, error)

	// Has reports whether a record with the given key exists.
	Has(ctx context.Context, key string) (bool, error)

	// Keys returns all record keys in ascending lexical order.
	// Date-stamped keys therefore come back in chronological order.
	Keys(ctx context.Context) ([]string, error)

	// Latest returns the record with the greatest key, the most recent
	// entry for date-keyed stores. Returns ErrRecordNotFound when empty.
	Latest(ctx context.Context) (Record, error)

	// Len returns the total number of stored records.
	Len() int
}

// CheckInvariant verifies a record about to be stored: it must carry a key,
// and derived tiers must not exist without the canonical full content.
func CheckInvariant(rec Record) error {
	if rec.Key == "" {
		return ErrEmptyKey
	}
	if rec.FullContent == "" && (rec.ShortDigest != "" || rec.Overview != "") {
		return ErrMissingFull
	}
	return nil
}
