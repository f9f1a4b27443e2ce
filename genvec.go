package generational

import (
	"iter"
	"slices"
)

// slotState is the lifecycle state of one backing-store slot.
type slotState uint8

const (
	slotVacant   slotState = iota // on the free list
	slotOccupied                  // holds a value
	slotReserved                  // popped by InsertCyclic, value not yet installed
	slotRetired                   // generation saturated, never reused
)

// entry is one slot of the backing store. Every slot carries a generation,
// whatever its state.
type entry[T any, G Generation] struct {
	value      T
	next       int // index+1 of the next vacant slot, 0 at the tail
	generation G
	state      slotState
}

// GenVec is a growable slot arena handing out GenID handles. A handle stays
// valid until the value it refers to is removed; after that every lookup
// with it fails, even if the slot is reused.
//
// The zero value is an empty arena ready for use. A GenVec is not safe for
// concurrent mutation; see Locked.
type GenVec[T any, G Generation] struct {
	entries  []entry[T, G]
	free     int // index+1 of the free-list head, 0 when empty
	length   int
	reserved int
	overflow OverflowPolicy
}

// Vec is a GenVec with 32-bit generations.
type Vec[T any] = GenVec[T, uint32]

// New creates an empty arena.
func New[T any, G Generation](opts ...Option) GenVec[T, G] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	v := GenVec[T, G]{overflow: o.overflow}
	if o.capacity > 0 {
		v.entries = make([]entry[T, G], 0, o.capacity)
	}
	return v
}

// NewVec creates an empty arena with 32-bit generations.
func NewVec[T any](opts ...Option) Vec[T] {
	return New[T, uint32](opts...)
}

// Overflow returns the generation overflow policy of the arena.
func (v *GenVec[T, G]) Overflow() OverflowPolicy {
	return v.overflow
}

// Len returns the number of stored values.
func (v *GenVec[T, G]) Len() int {
	return v.length
}

// IsEmpty reports whether the arena holds no values.
func (v *GenVec[T, G]) IsEmpty() bool {
	return v.length == 0
}

// Cap returns the number of slots in the backing store, occupied or not.
func (v *GenVec[T, G]) Cap() int {
	return len(v.entries)
}

// Grow makes room for at least n more slots without reallocating.
func (v *GenVec[T, G]) Grow(n int) {
	if n > 0 {
		v.entries = slices.Grow(v.entries, n)
	}
}

// Insert stores value and returns its handle. The most recently vacated
// slot is reused when one exists, and it keeps the generation it was given
// on removal, so handles to the previous occupant stay stale. Otherwise a
// new slot is appended with generation 0.
//
// Inserting may reallocate the backing store, which invalidates pointers
// returned by GetMut and AllMut.
//
// Parameters:
//   - value: The value to store.
//
// Returns:
//   - The handle that resolves to value until it is removed.
func (v *GenVec[T, G]) Insert(value T) GenID[G] {
	id := v.reserve()
	v.commit(id, value)
	return id
}

// InsertCyclic reserves a slot, passes its future handle to f and stores
// the value f returns there. This lets a value hold its own handle.
//
// While f runs the handle does not resolve, and snapshots of the arena are
// refused. If f panics the slot is released with its generation advanced,
// and the panic continues.
//
// Parameters:
//   - f: Builds the value from the handle it will be stored under.
//
// Returns:
//   - The handle passed to f, now resolving to the value f returned.
func (v *GenVec[T, G]) InsertCyclic(f func(id GenID[G]) T) GenID[G] {
	id := v.reserve()
	committed := false
	defer func() {
		if !committed {
			v.cancel(id)
		}
	}()
	value := f(id)
	v.commit(id, value)
	committed = true
	return id
}

// Get returns a copy of the value id refers to. It reports false for NULL,
// stale, out-of-range or otherwise unknown ids.
func (v *GenVec[T, G]) Get(id GenID[G]) (T, bool) {
	if e := v.lookup(id); e != nil {
		return e.value, true
	}
	var zero T
	return zero, false
}

// GetMut returns a pointer to the value id refers to. The pointer is valid
// until the next Insert or InsertCyclic, which may move the backing store.
func (v *GenVec[T, G]) GetMut(id GenID[G]) (*T, bool) {
	if e := v.lookup(id); e != nil {
		return &e.value, true
	}
	return nil, false
}

// Contains reports whether id resolves to a value.
func (v *GenVec[T, G]) Contains(id GenID[G]) bool {
	return v.lookup(id) != nil
}

// Remove takes the value id refers to out of the arena. The slot's
// generation is advanced and the slot goes to the head of the free list, so
// every copy of id becomes stale. Under Saturating, a slot already at the
// maximum generation is retired instead and never reused.
//
// Parameters:
//   - id: The handle of the value to remove.
//
// Returns:
//   - The removed value and true, or the zero value and false if id does
//     not resolve. Nothing changes in that case.
func (v *GenVec[T, G]) Remove(id GenID[G]) (T, bool) {
	e := v.lookup(id)
	if e == nil {
		var zero T
		return zero, false
	}
	value := e.value
	v.vacate(int(id.Index()))
	v.length--
	return value, true
}

// IDAt returns the handle of the value stored at index, if any.
func (v *GenVec[T, G]) IDAt(index uint) (GenID[G], bool) {
	if index >= uint(len(v.entries)) {
		return GenID[G]{}, false
	}
	e := &v.entries[index]
	if e.state != slotOccupied {
		return GenID[G]{}, false
	}
	return FromIndexAndGeneration(index, e.generation), true
}

// Clear removes every value. Slots are kept and their generations advanced,
// so handles issued before Clear stay stale afterwards.
func (v *GenVec[T, G]) Clear() {
	for i := len(v.entries) - 1; i >= 0; i-- {
		if v.entries[i].state == slotOccupied {
			v.vacate(i)
		}
	}
	v.length = 0
}

// Retain removes every value for which keep returns false. keep may modify
// the value in place but must not insert into or remove from the arena.
func (v *GenVec[T, G]) Retain(keep func(id GenID[G], value *T) bool) {
	for i := len(v.entries) - 1; i >= 0; i-- {
		e := &v.entries[i]
		if e.state != slotOccupied {
			continue
		}
		if !keep(FromIndexAndGeneration(uint(i), e.generation), &e.value) {
			v.vacate(i)
			v.length--
		}
	}
}

// All iterates over the stored values in slot order.
func (v *GenVec[T, G]) All() iter.Seq2[GenID[G], T] {
	return func(yield func(GenID[G], T) bool) {
		for i := 0; i < len(v.entries); i++ {
			e := &v.entries[i]
			if e.state != slotOccupied {
				continue
			}
			if !yield(FromIndexAndGeneration(uint(i), e.generation), e.value) {
				return
			}
		}
	}
}

// AllMut iterates over the stored values by pointer in slot order.
func (v *GenVec[T, G]) AllMut() iter.Seq2[GenID[G], *T] {
	return func(yield func(GenID[G], *T) bool) {
		for i := 0; i < len(v.entries); i++ {
			e := &v.entries[i]
			if e.state != slotOccupied {
				continue
			}
			if !yield(FromIndexAndGeneration(uint(i), e.generation), &e.value) {
				return
			}
		}
	}
}

// IDs iterates over the handles of the stored values in slot order.
func (v *GenVec[T, G]) IDs() iter.Seq[GenID[G]] {
	return func(yield func(GenID[G]) bool) {
		for i := 0; i < len(v.entries); i++ {
			e := &v.entries[i]
			if e.state == slotOccupied && !yield(FromIndexAndGeneration(uint(i), e.generation)) {
				return
			}
		}
	}
}

// Values iterates over the stored values in slot order.
func (v *GenVec[T, G]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < len(v.entries); i++ {
			e := &v.entries[i]
			if e.state == slotOccupied && !yield(e.value) {
				return
			}
		}
	}
}

// Drain removes the stored values one by one as they are yielded. Stopping
// early leaves the values not yet yielded in place.
func (v *GenVec[T, G]) Drain() iter.Seq2[GenID[G], T] {
	return func(yield func(GenID[G], T) bool) {
		for i := 0; i < len(v.entries); i++ {
			e := &v.entries[i]
			if e.state != slotOccupied {
				continue
			}
			id := FromIndexAndGeneration(uint(i), e.generation)
			value := e.value
			v.vacate(i)
			v.length--
			if !yield(id, value) {
				return
			}
		}
	}
}

// lookup returns the occupied entry id refers to, or nil.
func (v *GenVec[T, G]) lookup(id GenID[G]) *entry[T, G] {
	i := id.Index()
	if i >= uint(len(v.entries)) {
		return nil
	}
	e := &v.entries[i]
	if e.state != slotOccupied || e.generation != id.generation {
		return nil
	}
	return e
}

// reserve pops the free-list head, or appends a fresh slot, and marks it
// reserved. The returned id is the one the slot will have once committed.
func (v *GenVec[T, G]) reserve() GenID[G] {
	v.reserved++
	if v.free != 0 {
		i := v.free - 1
		e := &v.entries[i]
		if e.state != slotVacant {
			panic("generational: free list corrupted")
		}
		v.free = e.next
		e.next = 0
		e.state = slotReserved
		return FromIndexAndGeneration(uint(i), e.generation)
	}
	v.entries = append(v.entries, entry[T, G]{state: slotReserved})
	return FromIndexAndGeneration(uint(len(v.entries)-1), G(0))
}

// commit installs value into a slot obtained from reserve.
func (v *GenVec[T, G]) commit(id GenID[G], value T) {
	e := &v.entries[id.Index()]
	e.value = value
	e.state = slotOccupied
	v.reserved--
	v.length++
}

// cancel releases a slot obtained from reserve without installing a value.
func (v *GenVec[T, G]) cancel(id GenID[G]) {
	v.reserved--
	v.vacate(int(id.Index()))
}

// vacate clears slot i, advances its generation and pushes it on the free
// list. Under Saturating a slot already at the maximum generation is retired
// instead. The caller adjusts length.
func (v *GenVec[T, G]) vacate(i int) {
	e := &v.entries[i]
	var zero T
	e.value = zero
	if v.overflow == Saturating && e.generation == MaxGeneration[G]() {
		e.state = slotRetired
		e.next = 0
		return
	}
	e.generation++
	e.state = slotVacant
	e.next = v.free
	v.free = i + 1
}
