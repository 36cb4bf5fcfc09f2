package types

import "errors"

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Store operation errors.
var (
	// ErrNotFound reports that no document matches the requested key.
	ErrNotFound = errors.New("document not found")

	// ErrConflict reports that a keyed write lost to a concurrent writer:
	// either a uniqueness constraint rejected an insert, or a
	// compare-and-swap update observed a version other than the one it
	// read. The document in the store is intact; the losing write was
	// simply not applied.
	ErrConflict = errors.New("write conflict")

	// ErrInvalidData reports a document that cannot be persisted as given.
	ErrInvalidData = errors.New("invalid document data")
)
