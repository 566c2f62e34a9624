package target

import (
	"fmt"
	"math/rand"

	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/world"
)

// Spawner places people uniformly inside a mission area on the terrain.
type Spawner struct {
	terrain world.HeightSampler
	rand    *rand.Rand
	counter int
}

// NewSpawner creates a spawner. A nil rng falls back to a fixed seed.
func NewSpawner(terrain world.HeightSampler, rng *rand.Rand) *Spawner {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Spawner{terrain: terrain, rand: rng}
}

// SpawnAll spawns one person per template. IDs continue across calls as
// Person_1, Person_2, ...
func (s *Spawner) SpawnAll(area geom.Area, templates []Template) []Person {
	people := make([]Person, 0, len(templates))
	for _, tpl := range templates {
		pos := area.RandomPoint(s.rand)
		if s.terrain != nil {
			pos.Y = s.terrain.SampleHeight(pos.X, pos.Z)
		}
		h := tpl.Height
		if h <= 0 {
			h = DefaultHeight
		}
		s.counter++
		people = append(people, Person{
			ID:          fmt.Sprintf("Person_%d", s.counter),
			Position:    pos,
			Height:      h,
			Description: tpl.Description,
		})
	}
	return people
}
