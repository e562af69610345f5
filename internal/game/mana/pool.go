package mana

import (
	"sort"
	"sync"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// Pool mirrors the server's per-seat mana balances.
// The server is the source of truth: the pool is only ever replaced from a
// snapshot, never decremented locally.
type Pool struct {
	mu       sync.RWMutex
	balances map[grid.Seat]int
}

// NewPool creates a pool seeded with the given balances.
func NewPool(balances map[grid.Seat]int) *Pool {
	p := &Pool{balances: make(map[grid.Seat]int, 2)}
	for seat, v := range balances {
		p.balances[seat] = clampZero(v)
	}
	return p
}

// Balance returns the balance for seat, zero when unknown.
func (p *Pool) Balance(seat grid.Seat) int {
	if p == nil {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balances[seat]
}

// Replace overwrites the balances of every seat present in next and returns
// the per-seat change. Seats absent from next keep their balance.
func (p *Pool) Replace(next map[grid.Seat]int) []Delta {
	p.mu.Lock()
	defer p.mu.Unlock()

	deltas := make([]Delta, 0, len(next))
	for seat, v := range next {
		v = clampZero(v)
		old := p.balances[seat]
		p.balances[seat] = v
		if v != old {
			deltas = append(deltas, Delta{Seat: seat, Change: v - old, Balance: v})
		}
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Seat < deltas[j].Seat })
	return deltas
}

// Snapshot returns a copy of all balances.
func (p *Pool) Snapshot() map[grid.Seat]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[grid.Seat]int, len(p.balances))
	for seat, v := range p.balances {
		out[seat] = v
	}
	return out
}

// Copy creates an independent copy of the pool.
func (p *Pool) Copy() *Pool {
	return NewPool(p.Snapshot())
}

// Delta is a change in one seat's balance between two snapshots.
type Delta struct {
	Seat    grid.Seat
	Change  int
	Balance int
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
