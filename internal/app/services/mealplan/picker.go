package mealplan

import (
	"math/rand/v2"

	"github.com/dalemusser/mealhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rand is the source of randomness for recipe selection.
// Intn returns a uniform integer in [0, n).
type Rand interface {
	Intn(n int) int
}

// globalRand draws from the goroutine-safe top-level math/rand/v2 source.
type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.IntN(n) }

// picker chooses recipes for one generation run. The used set spans every
// category and day of the run.
type picker struct {
	rnd   Rand
	avoid bool
	used  map[primitive.ObjectID]struct{}
}

func newPicker(rnd Rand, avoidDuplicates bool) *picker {
	return &picker{
		rnd:   rnd,
		avoid: avoidDuplicates,
		used:  make(map[primitive.ObjectID]struct{}),
	}
}

// pick returns one recipe from a non-empty pool. With duplicate avoidance it
// picks uniformly among recipes not yet used in this run, falling back to the
// whole pool once every recipe has been used.
func (p *picker) pick(pool []models.Recipe) models.Recipe {
	candidates := pool
	if p.avoid {
		unused := make([]models.Recipe, 0, len(pool))
		for _, r := range pool {
			if _, ok := p.used[r.ID]; !ok {
				unused = append(unused, r)
			}
		}
		if len(unused) > 0 {
			candidates = unused
		}
	}
	r := candidates[p.rnd.Intn(len(candidates))]
	p.used[r.ID] = struct{}{}
	return r
}
