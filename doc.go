// Package generational implements a generational arena: a slot-based
// container that hands out copyable, typed handles instead of pointers.
//
// Features:
//   - O(1) Insert, Get, GetMut and Remove through an intrusive free list.
//   - Handles (GenID) pair a slot index with a generation. Removing a value
//     advances the slot's generation, so every old handle to it stops
//     resolving without any bookkeeping on the caller's side.
//   - InsertCyclic hands the future handle to the value's constructor, for
//     values that reference themselves.
//   - Range-over-func iteration (All, AllMut, IDs, Values, Drain).
//   - Binary snapshots with optional LZ4 or Zstandard compression that keep
//     previously issued handles valid or stale exactly as before.
//   - Locked, a read/write locked wrapper, and ParallelRange for read-only
//     fan-out.
//
// Invalid handles never panic: lookups report false instead.
//
//	v := generational.NewVec[string]()
//	id := v.Insert("zombie")
//	name, ok := v.Get(id) // "zombie", true
//	v.Remove(id)
//	_, ok = v.Get(id)     // "", false
package generational
