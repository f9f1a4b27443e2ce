package generational

import "errors"

var (
	// ErrInvalidSnapshot is returned when snapshot bytes are malformed or
	// describe an arena that violates its own invariants.
	ErrInvalidSnapshot = errors.New("generational: invalid snapshot")
	// ErrCodecMismatch is returned when a snapshot was written with a
	// different value codec than the one used to read it.
	ErrCodecMismatch = errors.New("generational: codec mismatch")
	// ErrGenerationWidth is returned when a snapshot was written with a
	// different Generation type width.
	ErrGenerationWidth = errors.New("generational: generation width mismatch")
	// ErrSnapshotTooLarge is returned when an arena has more slots than a
	// snapshot can index (2^32).
	ErrSnapshotTooLarge = errors.New("generational: arena too large for snapshot")
	// ErrReservationPending is returned when a snapshot is requested while
	// an InsertCyclic constructor is still running.
	ErrReservationPending = errors.New("generational: insert in progress")
)
