// Profiling:
// go build ./profile/churn
// go tool pprof -http=":8000" -nodefraction=0.001 ./churn mem.pprof

package main

import (
	"github.com/edwinsyarief/generational"
	"github.com/pkg/profile"
)

type body struct {
	V int64
	W int64
}

func main() {
	count := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		v := generational.NewVec[body](generational.WithCapacity(numEntities))
		ids := make([]generational.ID, 0, numEntities)

		for range iters {
			ids = ids[:0]
			for i := range numEntities {
				ids = append(ids, v.Insert(body{V: int64(i), W: 1}))
			}
			for b := range v.Values() {
				_ = b.V + b.W
			}
			for _, id := range ids {
				v.Remove(id)
			}
		}
	}
}
