package generational

import (
	"math/rand/v2"
	"testing"
)

// checkInvariants verifies length accounting and the free list.
func checkInvariants[T any, G Generation](t *testing.T, v *GenVec[T, G]) {
	t.Helper()
	occupied, vacant := 0, 0
	for i := range v.entries {
		switch v.entries[i].state {
		case slotOccupied:
			occupied++
		case slotVacant:
			vacant++
		case slotReserved:
			t.Fatalf("slot %d left reserved", i)
		}
	}
	if occupied != v.length {
		t.Fatalf("length %d, occupied slots %d", v.length, occupied)
	}
	if v.length > len(v.entries) {
		t.Fatalf("length %d exceeds backing store %d", v.length, len(v.entries))
	}
	if err := v.checkFreeList(vacant); err != nil {
		t.Fatal(err)
	}
}

// go test -run ^TestRandomOperations$ . -count 1
func TestRandomOperations(t *testing.T) {
	for _, policy := range []OverflowPolicy{Wrapping, Saturating} {
		t.Run(policy.String(), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, uint64(policy)))
			v := New[int, uint8](WithOverflow(policy))
			live := map[GenID[uint8]]int{}
			var dead []GenID[uint8]

			for step := range 20000 {
				switch op := rng.IntN(10); {
				case op < 4:
					id := v.Insert(step)
					if _, dup := live[id]; dup {
						t.Fatalf("step %d: handle %v issued twice while live", step, id)
					}
					live[id] = step
				case op < 5:
					id := v.InsertCyclic(func(id GenID[uint8]) int { return -step })
					live[id] = -step
				case op < 8:
					for id := range live {
						got, ok := v.Remove(id)
						if !ok || got != live[id] {
							t.Fatalf("step %d: Remove(%v) = %d, %v", step, id, got, ok)
						}
						delete(live, id)
						dead = append(dead, id)
						break
					}
				case op < 9 && len(dead) > 0:
					id := dead[rng.IntN(len(dead))]
					if _, ok := live[id]; ok {
						break // wrapped back to a live generation
					}
					if v.Contains(id) {
						t.Fatalf("step %d: dead handle %v resolves", step, id)
					}
				default:
					if rng.IntN(50) == 0 {
						v.Clear()
						for id := range live {
							dead = append(dead, id)
						}
						clear(live)
					}
				}
				if step%97 == 0 {
					checkInvariants(t, &v)
				}
			}
			checkInvariants(t, &v)
			if v.Len() != len(live) {
				t.Fatalf("Len %d, live handles %d", v.Len(), len(live))
			}
			for id, want := range live {
				if got, ok := v.Get(id); !ok || got != want {
					t.Fatalf("Get(%v) = %d, %v; want %d", id, got, ok, want)
				}
			}
		})
	}
}

// go test -run ^TestCancelKeepsInvariants$ . -count 1
func TestCancelKeepsInvariants(t *testing.T) {
	v := NewVec[string]()
	v.Insert("a")
	func() {
		defer func() { _ = recover() }()
		v.InsertCyclic(func(ID) string { panic("boom") })
	}()
	if v.reserved != 0 {
		t.Fatalf("reserved = %d", v.reserved)
	}
	checkInvariants(t, &v)
}
