package generational_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/edwinsyarief/generational"
)

type position struct {
	X, Y float32
}

func sizeName(size int) string {
	if size == 1000000 {
		return "1M"
	}
	return fmt.Sprintf("%dK", size/1000)
}

func filledVec(size int) (generational.Vec[position], []generational.ID) {
	v := generational.NewVec[position](generational.WithCapacity(size))
	ids := make([]generational.ID, size)
	for i := range ids {
		ids[i] = v.Insert(position{X: float32(i)})
	}
	return v, ids
}

func BenchmarkInsert(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				v := generational.NewVec[position](generational.WithCapacity(size))
				for i := 0; i < size; i++ {
					v.Insert(position{X: float32(i)})
				}
			}
		})
	}
}

func BenchmarkInsertRemoveReuse(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			v, ids := filledVec(size)
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				for i, id := range ids {
					v.Remove(id)
					ids[i] = v.Insert(position{Y: 1})
				}
			}
		})
	}
}

func BenchmarkGet(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			v, ids := filledVec(size)
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				for _, id := range ids {
					if p, ok := v.GetMut(id); ok {
						p.Y++
					}
				}
			}
		})
	}
}

func BenchmarkIterate(b *testing.B) {
	sizes := []int{1000, 10000, 100000, 1000000}
	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			v, ids := filledVec(size)
			for i := 0; i < len(ids); i += 2 {
				v.Remove(ids[i])
			}
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				for _, p := range v.AllMut() {
					p.X += p.Y
				}
			}
		})
	}
}

func BenchmarkSnapshot(b *testing.B) {
	compressions := []generational.Compression{
		generational.CompressionNone,
		generational.CompressionLZ4,
		generational.CompressionZSTD,
	}
	v, _ := filledVec(10000)
	for _, c := range compressions {
		b.Run(c.String(), func(b *testing.B) {
			var buf bytes.Buffer
			b.ReportAllocs()
			for b.Loop() {
				buf.Reset()
				if err := v.WriteSnapshot(&buf, nil, generational.WithCompression(c)); err != nil {
					b.Fatal(err)
				}
			}
			b.SetBytes(int64(buf.Len()))
		})
	}
}
