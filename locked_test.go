package generational_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/generational"
)

func TestLockedConcurrentUse(t *testing.T) {
	l := generational.NewLocked[int, uint32](generational.WithCapacity(64))

	const workers = 8
	const perWorker = 500
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				id := l.Insert(w*perWorker + i)
				assert.True(t, l.Update(id, func(v *int) { *v = -*v }))
				got, ok := l.Get(id)
				assert.True(t, ok)
				assert.Equal(t, -(w*perWorker + i), got)
				if i%2 == 0 {
					_, ok := l.Remove(id)
					assert.True(t, ok)
					assert.False(t, l.Contains(id))
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker/2, l.Len())
	n := 0
	l.Range(func(generational.ID, int) bool {
		n++
		return true
	})
	assert.Equal(t, l.Len(), n)
}

func TestLockedInsertCyclicAndSnapshot(t *testing.T) {
	l := generational.NewLocked[monster, uint32]()
	id := l.InsertCyclic(func(id generational.ID) monster {
		return monster{Name: "self", Target: id}
	})
	assert.False(t, l.Update(generational.NullID, func(*monster) { t.Fatal("called for NULL") }))

	var buf bytes.Buffer
	require.NoError(t, l.WriteSnapshot(&buf, nil, generational.WithCompression(generational.CompressionLZ4)))
	v, err := generational.ReadSnapshot[monster, uint32](&buf, nil)
	require.NoError(t, err)
	m, ok := v.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, m.Target)
}

func TestParallelRange(t *testing.T) {
	v := generational.NewVec[int]()
	var want int64
	for i := range 5000 {
		id := v.Insert(i)
		if i%5 == 0 {
			v.Remove(id)
			continue
		}
		want += int64(i)
	}

	t.Run("VisitsEveryValue", func(t *testing.T) {
		var sum, count atomic.Int64
		err := v.ParallelRange(context.Background(), 4, func(_ context.Context, id generational.ID, value int) error {
			if got, ok := v.Get(id); !ok || got != value {
				return errors.New("yielded id does not resolve")
			}
			sum.Add(int64(value))
			count.Add(1)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, want, sum.Load())
		assert.Equal(t, int64(v.Len()), count.Load())
	})

	t.Run("FirstErrorWins", func(t *testing.T) {
		boom := errors.New("boom")
		err := v.ParallelRange(context.Background(), 0, func(_ context.Context, _ generational.ID, value int) error {
			if value == 4321 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := v.ParallelRange(ctx, 2, func(context.Context, generational.ID, int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Empty", func(t *testing.T) {
		var empty generational.Vec[int]
		assert.NoError(t, empty.ParallelRange(context.Background(), 4, func(context.Context, generational.ID, int) error {
			return errors.New("called on empty arena")
		}))
	})
}
