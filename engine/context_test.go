package engine

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

type tile struct {
	Kind int
}

func TestArenaOf(t *testing.T) {
	ctx := NewContext()
	tiles := ArenaOf[tile](ctx)
	id := tiles.Insert(tile{Kind: 3})

	if again := ArenaOf[tile](ctx); again != tiles {
		t.Fatal("expected the same arena on second call")
	}
	if got, ok := ArenaOf[tile](ctx).Get(id); !ok || got.Kind != 3 {
		t.Errorf("Get = %+v, %v", got, ok)
	}
	if ArenaOf[string](ctx).Len() != 0 {
		t.Error("expected a separate arena per type")
	}
	if ctx.Resources().Len() != 2 {
		t.Errorf("expected 2 resources, got %d", ctx.Resources().Len())
	}
}

func TestContextsAreIndependent(t *testing.T) {
	a, b := NewContext(), NewContext()
	ArenaOf[tile](a).Insert(tile{})
	if ArenaOf[tile](b).Len() != 0 {
		t.Error("contexts share state")
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := NewContext(WithLogger(logger), WithLogger(nil))
	if ctx.Logger() != logger {
		t.Fatal("expected configured logger")
	}
	ArenaOf[tile](ctx)
	if !strings.Contains(buf.String(), "arena created") || !strings.Contains(buf.String(), "engine.tile") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestContextEvents(t *testing.T) {
	ctx := NewContext()
	got := 0
	Subscribe(ctx.Events(), func(e TestEvent) { got = e.Value })
	Publish(ctx.Events(), TestEvent{Value: 9})
	if got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
}
