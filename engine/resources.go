package engine

import (
	"reflect"

	"github.com/edwinsyarief/generational"
)

// Resources manages a collection of resources, at most one per type.
// Resources live in a generational arena, so the id of a removed resource
// never resolves again, even after its slot is reused.
type Resources struct {
	items generational.Vec[any]
	types map[reflect.Type]generational.ID
}

// Add adds a resource and returns its id. Panics if res is nil or a
// resource of the same type already exists.
func (r *Resources) Add(res any) generational.ID {
	if res == nil {
		panic("cannot add nil resource")
	}
	t := reflect.TypeOf(res)
	if r.types == nil {
		r.types = make(map[reflect.Type]generational.ID)
	}
	if _, ok := r.types[t]; ok {
		panic("resource of the same type already exists")
	}
	id := r.items.Insert(res)
	r.types[t] = id
	return id
}

// Has checks if a resource with the given id exists.
func (r *Resources) Has(id generational.ID) bool {
	return r.items.Contains(id)
}

// Get retrieves the resource by id, or nil if it doesn't exist.
func (r *Resources) Get(id generational.ID) any {
	res, _ := r.items.Get(id)
	return res
}

// Remove removes the resource by id if it exists.
func (r *Resources) Remove(id generational.ID) {
	res, ok := r.items.Remove(id)
	if !ok {
		return
	}
	delete(r.types, reflect.TypeOf(res))
}

// Len returns the number of resources.
func (r *Resources) Len() int {
	return r.items.Len()
}

// Clear removes all resources. Ids issued before Clear stay invalid.
func (r *Resources) Clear() {
	r.items.Clear()
	clear(r.types)
}

// HasResource checks if a resource of type *T exists, returning true and its
// id, or false and the NULL id.
func HasResource[T any](r *Resources) (bool, generational.ID) {
	t := reflect.TypeFor[*T]()
	if id, ok := r.types[t]; ok {
		return true, id
	}
	return false, generational.NullID
}

// GetResource retrieves the resource of type *T if it exists, returning it
// and its id, or nil and the NULL id.
func GetResource[T any](r *Resources) (*T, generational.ID) {
	t := reflect.TypeFor[*T]()
	if id, ok := r.types[t]; ok {
		res, _ := r.items.Get(id)
		return res.(*T), id
	}
	return nil, generational.NullID
}
