package generational

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
)

// Generation is the counter type stored next to every slot. It counts how
// many times the slot has been vacated. The minimum is 0 and the maximum is
// the all-ones value of the type.
type Generation interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// MaxGeneration returns the largest value representable by G.
func MaxGeneration[G Generation]() G {
	var g G
	return ^g
}

// GenID is a weak reference into a GenVec: a slot index plus the generation
// the slot had when the value was inserted. It owns nothing and may be copied,
// compared and used as a map key freely.
//
// The zero value is the NULL id. The index is stored complemented so that
// the zero value reports an index of ^uint(0), which no arena can reach.
type GenID[G Generation] struct {
	inv        uint // ^index
	generation G
}

// ID is a GenID with the default 32-bit generation.
type ID = GenID[uint32]

// NullID is the NULL id with the default generation width.
var NullID ID

// Null returns the NULL id for G. It is equal to the zero value.
func Null[G Generation]() GenID[G] {
	return GenID[G]{}
}

// FromIndexAndGeneration builds an id from raw parts. No validation is done;
// validity is only meaningful relative to a specific arena.
func FromIndexAndGeneration[G Generation](index uint, generation G) GenID[G] {
	return GenID[G]{inv: ^index, generation: generation}
}

// Index returns the slot index.
func (id GenID[G]) Index() uint {
	return ^id.inv
}

// Generation returns the generation fingerprint.
func (id GenID[G]) Generation() G {
	return id.generation
}

// IsNull reports whether id is the NULL id.
func (id GenID[G]) IsNull() bool {
	return id == GenID[G]{}
}

// IsNotNull reports whether id is not the NULL id.
func (id GenID[G]) IsNotNull() bool {
	return !id.IsNull()
}

// Reset overwrites id with NULL.
func (id *GenID[G]) Reset() {
	*id = GenID[G]{}
}

// Compare orders ids by index, then by generation.
func (id GenID[G]) Compare(other GenID[G]) int {
	if c := cmp.Compare(id.Index(), other.Index()); c != 0 {
		return c
	}
	return cmp.Compare(id.generation, other.generation)
}

// Less reports whether id sorts before other.
func (id GenID[G]) Less(other GenID[G]) bool {
	return id.Compare(other) < 0
}

// String renders the id for debugging.
func (id GenID[G]) String() string {
	if id.IsNull() {
		return "GenID(null)"
	}
	return fmt.Sprintf("GenID(%d:%d)", id.Index(), id.generation)
}

// MarshalJSON encodes NULL as null and any other id as [index, generation].
func (id GenID[G]) MarshalJSON() ([]byte, error) {
	if id.IsNull() {
		return []byte("null"), nil
	}
	return json.Marshal([2]uint64{uint64(id.Index()), uint64(id.generation)})
}

// UnmarshalJSON is the inverse of MarshalJSON. null yields the NULL id.
func (id *GenID[G]) UnmarshalJSON(data []byte) error {
	var pair *[2]uint64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if pair == nil {
		id.Reset()
		return nil
	}
	if pair[1] > uint64(MaxGeneration[G]()) {
		return errors.New("generational: generation out of range")
	}
	if pair[0] > uint64(^uint(0)) {
		return errors.New("generational: index out of range")
	}
	*id = FromIndexAndGeneration(uint(pair[0]), G(pair[1]))
	return nil
}
