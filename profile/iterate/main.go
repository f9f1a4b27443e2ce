// Profiling:
// go build ./profile/iterate
// go tool pprof -http=":8000" -nodefraction=0.001 ./iterate cpu.pprof

package main

import (
	"github.com/edwinsyarief/generational"
	"github.com/pkg/profile"
)

type body struct {
	V int64
	W int64
}

type link struct {
	self  generational.ID
	other generational.ID
}

func main() {
	rounds := 50
	iters := 1000
	entities := 100000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		bodies := generational.NewVec[body](generational.WithCapacity(numEntities))
		links := generational.NewVec[link](generational.WithCapacity(numEntities))
		for i := range numEntities {
			target := bodies.Insert(body{V: int64(i), W: 2})
			links.InsertCyclic(func(id generational.ID) link {
				return link{self: id, other: target}
			})
		}
		// Punch holes so iteration has to skip vacant slots.
		for id := range bodies.IDs() {
			if id.Index()%3 == 0 {
				bodies.Remove(id)
			}
		}

		for range iters {
			for _, b := range bodies.AllMut() {
				b.V += b.W
			}
			for _, l := range links.All() {
				if b, ok := bodies.GetMut(l.other); ok {
					b.W++
				}
			}
		}
	}
}
