package directory

import (
	"math/rand"

	"eventdesk/internal/model"
)

// RandomCounter fakes participant figures the way the original views
// did while the backend lacks a participants endpoint: 20-119 enrolled
// against a fixed capacity of 100. Swap it out once real numbers exist.
type RandomCounter struct {
	rnd *rand.Rand
}

func NewRandomCounter(seed int64) *RandomCounter {
	return &RandomCounter{rnd: rand.New(rand.NewSource(seed))}
}

func (c *RandomCounter) Count(model.Event) (int, int) {
	return c.rnd.Intn(100) + 20, 100
}

// FixedCounter returns the same figures for every event; used in tests.
type FixedCounter struct {
	Participants, Capacity int
}

func (c FixedCounter) Count(model.Event) (int, int) {
	return c.Participants, c.Capacity
}
