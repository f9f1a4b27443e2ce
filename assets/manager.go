// Package assets keeps named assets in a generational arena. Callers hold
// generational.ID handles; a handle to an unloaded asset simply stops
// resolving.
package assets

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/edwinsyarief/generational"
	"github.com/edwinsyarief/generational/engine"
)

var (
	// ErrDuplicate is returned by Insert when the name is already loaded.
	ErrDuplicate = errors.New("assets: name already loaded")
	// ErrEmptyName is returned when an asset name is empty.
	ErrEmptyName = errors.New("assets: empty name")
)

// Asset is one stored asset.
type Asset[T any] struct {
	Name  string
	Value T
}

// Loaded is published on the context's event bus when an asset is stored.
type Loaded[T any] struct {
	Name string
	ID   generational.ID
}

// Unloaded is published on the context's event bus when an asset is removed.
type Unloaded[T any] struct {
	Name string
	ID   generational.ID
}

// Manager stores assets of type T for one engine.Context.
type Manager[T any] struct {
	ctx     *engine.Context
	entries *generational.Vec[Asset[T]]
	byName  map[string]generational.ID
	logger  *slog.Logger
}

// Of returns the manager for T in ctx, creating it on first use. Its assets
// live in engine.ArenaOf[Asset[T]](ctx).
func Of[T any](ctx *engine.Context) *Manager[T] {
	if m, _ := engine.GetResource[Manager[T]](ctx.Resources()); m != nil {
		return m
	}
	m := &Manager[T]{
		ctx:     ctx,
		entries: engine.ArenaOf[Asset[T]](ctx),
		byName:  make(map[string]generational.ID),
		logger:  ctx.Logger().With(slog.String("component", "assets")),
	}
	ctx.Resources().Add(m)
	return m
}

// Load returns the id of the asset called name, calling loader to produce it
// if it is not loaded yet. Loader errors are wrapped and nothing is stored.
func (m *Manager[T]) Load(name string, loader func() (T, error)) (generational.ID, error) {
	if name == "" {
		return generational.NullID, ErrEmptyName
	}
	if id, ok := m.lookup(name); ok {
		return id, nil
	}
	value, err := loader()
	if err != nil {
		m.logger.Warn("asset load failed", slog.String("asset", name), slog.Any("error", err))
		return generational.NullID, fmt.Errorf("assets: load %q: %w", name, err)
	}
	return m.store(name, value), nil
}

// Insert stores value under name. It fails with ErrDuplicate if the name is
// already loaded.
func (m *Manager[T]) Insert(name string, value T) (generational.ID, error) {
	if name == "" {
		return generational.NullID, ErrEmptyName
	}
	if _, ok := m.lookup(name); ok {
		return generational.NullID, fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	return m.store(name, value), nil
}

func (m *Manager[T]) store(name string, value T) generational.ID {
	id := m.entries.Insert(Asset[T]{Name: name, Value: value})
	m.byName[name] = id
	m.logger.Debug("asset loaded", slog.String("asset", name), slog.String("id", id.String()))
	engine.Publish(m.ctx.Events(), Loaded[T]{Name: name, ID: id})
	return id
}

// Get returns the asset value id refers to.
func (m *Manager[T]) Get(id generational.ID) (T, bool) {
	a, ok := m.entries.Get(id)
	return a.Value, ok
}

// GetMut returns a pointer to the asset value id refers to. The pointer is
// valid until the next asset is stored.
func (m *Manager[T]) GetMut(id generational.ID) (*T, bool) {
	a, ok := m.entries.GetMut(id)
	if !ok {
		return nil, false
	}
	return &a.Value, true
}

// Lookup returns the id of the asset called name.
func (m *Manager[T]) Lookup(name string) (generational.ID, bool) {
	return m.lookup(name)
}

// lookup resolves name, dropping entries whose asset was removed from the
// arena without going through Unload.
func (m *Manager[T]) lookup(name string) (generational.ID, bool) {
	id, ok := m.byName[name]
	if !ok {
		return generational.NullID, false
	}
	if !m.entries.Contains(id) {
		delete(m.byName, name)
		return generational.NullID, false
	}
	return id, true
}

// Name returns the name of the asset id refers to.
func (m *Manager[T]) Name(id generational.ID) (string, bool) {
	a, ok := m.entries.Get(id)
	return a.Name, ok
}

// Unload removes the asset id refers to. It reports false for stale ids.
func (m *Manager[T]) Unload(id generational.ID) bool {
	a, ok := m.entries.Remove(id)
	if !ok {
		return false
	}
	delete(m.byName, a.Name)
	m.logger.Debug("asset unloaded", slog.String("asset", a.Name), slog.String("id", id.String()))
	engine.Publish(m.ctx.Events(), Unloaded[T]{Name: a.Name, ID: id})
	return true
}

// UnloadName removes the asset called name.
func (m *Manager[T]) UnloadName(name string) bool {
	id, ok := m.lookup(name)
	if !ok {
		return false
	}
	return m.Unload(id)
}

// Len returns the number of loaded assets.
func (m *Manager[T]) Len() int {
	return m.entries.Len()
}

// All iterates over the loaded assets in slot order.
func (m *Manager[T]) All() iter.Seq2[generational.ID, Asset[T]] {
	return m.entries.All()
}
