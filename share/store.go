//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"fmt"
	"sync"

	"github.com/rss3p/mpcsql/errs"
)

// submissionKey is the idempotency key of spec.md §4.G step 4:
// "(owner_id, table_id, submission_timestamp)".
type submissionKey struct {
	ownerID       string
	tableID       uint64
	submittedAtNs int64
}

// Store is a computing node's in-memory holding area for the bundles
// it has received, one per table, with submission dedup (spec.md §6
// DuplicateSubmission). Bundles are read-only once received (spec.md
// §5), so Store never mutates a stored Bundle after Put.
type Store struct {
	mu      sync.Mutex
	seen    map[submissionKey]bool
	bundles map[uint64]*Bundle
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		seen:    make(map[submissionKey]bool),
		bundles: make(map[uint64]*Bundle),
	}
}

// Put records bundle as the delivery for (ownerID, tableID,
// submittedAtNs), rejecting a replay of an already-accepted key.
func (s *Store) Put(ownerID string, tableID uint64, submittedAtNs int64, bundle *Bundle) error {
	key := submissionKey{ownerID, tableID, submittedAtNs}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[key] {
		return fmt.Errorf("share: %w: owner=%s table=%d submitted_at=%d",
			errs.ErrDuplicateSubmission, ownerID, tableID, submittedAtNs)
	}
	s.seen[key] = true
	s.bundles[tableID] = bundle
	return nil
}

// Get returns the bundle stored for tableID, if any.
func (s *Store) Get(tableID uint64) (*Bundle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bundles[tableID]
	return b, ok
}
