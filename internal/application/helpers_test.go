package application

import (
	"strconv"
	"time"

	"github.com/mvoss/teampulse-cli/internal/adapters/kv/memory"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type seqIDs struct {
	prefix string
	next   int
}

func (g *seqIDs) NewID() string {
	g.next++
	return g.prefix + "-" + strconv.Itoa(g.next)
}

type fixture struct {
	durable  *memory.Store
	scratch  *memory.Store
	clock    *fakeClock
	registry *RegistryService
	sessions *SessionService
}

func newFixture() *fixture {
	durable := memory.NewStore()
	scratch := memory.NewStore()
	clock := newFakeClock()
	ids := &seqIDs{prefix: "id"}

	registry := NewRegistryService(durable, clock, ids, nil)
	sessions := NewSessionService(durable, scratch, registry, clock, ids, nil)

	return &fixture{
		durable:  durable,
		scratch:  scratch,
		clock:    clock,
		registry: registry,
		sessions: sessions,
	}
}
