package generational

import (
	"io"
	"sync"
)

// Locked guards a GenVec with a read/write mutex. Reads share the lock,
// mutations take it exclusively. Values are handed out by copy or through
// callbacks run under the lock, never as pointers that outlive it.
type Locked[T any, G Generation] struct {
	mu  sync.RWMutex
	vec GenVec[T, G]
}

// NewLocked creates an empty locked arena.
func NewLocked[T any, G Generation](opts ...Option) *Locked[T, G] {
	return &Locked[T, G]{vec: New[T, G](opts...)}
}

// Insert stores value and returns its handle.
func (l *Locked[T, G]) Insert(value T) GenID[G] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vec.Insert(value)
}

// InsertCyclic is GenVec.InsertCyclic under the write lock. f must not call
// back into l.
func (l *Locked[T, G]) InsertCyclic(f func(id GenID[G]) T) GenID[G] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vec.InsertCyclic(f)
}

// Get returns a copy of the value id refers to.
func (l *Locked[T, G]) Get(id GenID[G]) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vec.Get(id)
}

// Contains reports whether id resolves to a value.
func (l *Locked[T, G]) Contains(id GenID[G]) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vec.Contains(id)
}

// Update runs fn on the value id refers to under the write lock. It reports
// false without calling fn if id does not resolve.
func (l *Locked[T, G]) Update(id GenID[G], fn func(value *T)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.vec.GetMut(id)
	if !ok {
		return false
	}
	fn(p)
	return true
}

// Remove takes the value id refers to out of the arena.
func (l *Locked[T, G]) Remove(id GenID[G]) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vec.Remove(id)
}

// Len returns the number of stored values.
func (l *Locked[T, G]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vec.Len()
}

// Range calls fn for each stored value under the read lock until fn returns
// false. fn must not call mutating methods of l.
func (l *Locked[T, G]) Range(fn func(id GenID[G], value T) bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for id, value := range l.vec.All() {
		if !fn(id, value) {
			return
		}
	}
}

// WriteSnapshot is GenVec.WriteSnapshot under the read lock.
func (l *Locked[T, G]) WriteSnapshot(w io.Writer, codec Codec, opts ...SnapshotOption) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vec.WriteSnapshot(w, codec, opts...)
}
