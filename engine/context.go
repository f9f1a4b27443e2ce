// Package engine provides Context, the explicit state object passed to the
// code that needs shared engine state: a resource registry, an event bus,
// a logger and one generational arena per stored type.
//
// There are no package-level singletons; every consumer receives the
// Context it works on.
package engine

import (
	"log/slog"
	"reflect"

	"github.com/edwinsyarief/generational"
)

// Context owns the shared state of one engine instance. It is not safe for
// concurrent use.
type Context struct {
	resources Resources
	events    EventBus
	logger    *slog.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewContext creates a Context. Without WithLogger, log output is discarded.
func NewContext(opts ...Option) *Context {
	c := &Context{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resources returns the resource registry.
func (c *Context) Resources() *Resources {
	return &c.resources
}

// Events returns the event bus.
func (c *Context) Events() *EventBus {
	return &c.events
}

// Logger returns the logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// ArenaOf returns the arena holding values of type T, creating it on first
// use. The arena is stored as a resource of type *generational.Vec[T].
func ArenaOf[T any](c *Context) *generational.Vec[T] {
	if arena, _ := GetResource[generational.Vec[T]](&c.resources); arena != nil {
		return arena
	}
	arena := &generational.Vec[T]{}
	id := c.resources.Add(arena)
	c.logger.Debug("arena created", slog.String("type", reflect.TypeFor[T]().String()), slog.String("resource", id.String()))
	return arena
}
