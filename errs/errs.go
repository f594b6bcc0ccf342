//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package errs collects the sentinel error values of spec.md §7. Each
// is wrapped with call-site context by the package that raises it
// (fmt.Errorf("...: %w", errs.ErrX)); callers test kind with
// errors.Is.
package errs

import "errors"

// Compile-time / SQL front-end errors.
var (
	// ErrUnsupportedSQL is returned when a query does not match the
	// restricted grammar of spec.md §4.F.1.
	ErrUnsupportedSQL = errors.New("unsupported sql")

	// ErrUnsupportedAggregate is returned by the circuit builder for
	// Sum/Avg aggregates, which are not yet lowered to gates.
	ErrUnsupportedAggregate = errors.New("unsupported aggregate")

	// ErrUnsupportedColumnType is returned when a query references a
	// column whose type cannot participate in the requested operation
	// (e.g. a Float column in an equality filter).
	ErrUnsupportedColumnType = errors.New("unsupported column type")
)

// Circuit validation, before any network I/O.
var (
	// ErrCircuitValidation is returned when a circuit fails the
	// topology/single-assignment/output-subset invariants of spec.md §3.
	ErrCircuitValidation = errors.New("circuit validation failed")
)

// Runtime / protocol errors, fatal to the current query.
var (
	// ErrProtocolDesync is returned when a peer's frame does not carry
	// the expected query ID and gate sequence number, meaning the
	// parties are evaluating different circuits.
	ErrProtocolDesync = errors.New("protocol desync")

	// ErrTimeout is returned when a send or receive does not complete
	// before the query's deadline.
	ErrTimeout = errors.New("timeout")

	// ErrTransportFailure is returned on any lower-level transport
	// error (connection reset, partial write, etc).
	ErrTransportFailure = errors.New("transport failure")
)

// Share-ingest time errors.
var (
	// ErrInvalidShareSet is returned when reconstruct is given share
	// components that do not cover component indices {0,1,2}.
	ErrInvalidShareSet = errors.New("invalid share set")

	// ErrSchemaMismatch is returned when delivered party data disagrees
	// with a table's declared schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrDuplicateSubmission is returned when a share delivery replays
	// an already-accepted (owner_id, table_id, submission_timestamp).
	ErrDuplicateSubmission = errors.New("duplicate submission")

	// ErrInvalidPartyID is returned when BinaryPartyData names a party
	// ID outside {0,1,2}.
	ErrInvalidPartyID = errors.New("invalid party id")
)

// Fatal logic errors.
var (
	// ErrRandomnessExhausted is returned if the correlated-randomness
	// cipher's counter space would be exceeded. Unreachable for
	// realistic queries; kept as a checked error rather than a panic
	// so engine callers can still surface it cleanly.
	ErrRandomnessExhausted = errors.New("correlated randomness exhausted")
)
