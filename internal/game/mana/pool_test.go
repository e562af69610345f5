package mana

import (
	"testing"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

func TestPool_Balance(t *testing.T) {
	pool := NewPool(map[grid.Seat]int{grid.SeatOne: 5, grid.SeatTwo: -3})

	if pool.Balance(grid.SeatOne) != 5 {
		t.Errorf("Expected 5 mana for seat 1, got %d", pool.Balance(grid.SeatOne))
	}
	if pool.Balance(grid.SeatTwo) != 0 {
		t.Errorf("Expected negative balance to clamp to 0, got %d", pool.Balance(grid.SeatTwo))
	}
	if pool.Balance(grid.Seat("9")) != 0 {
		t.Errorf("Expected unknown seat to have 0 mana")
	}

	var nilPool *Pool
	if nilPool.Balance(grid.SeatOne) != 0 {
		t.Errorf("Expected nil pool to report 0")
	}
}

func TestPool_ReplaceReportsDeltas(t *testing.T) {
	pool := NewPool(map[grid.Seat]int{grid.SeatOne: 10, grid.SeatTwo: 10})

	deltas := pool.Replace(map[grid.Seat]int{grid.SeatOne: 7, grid.SeatTwo: 10})
	if len(deltas) != 1 {
		t.Fatalf("Expected 1 delta, got %d", len(deltas))
	}
	if deltas[0].Seat != grid.SeatOne || deltas[0].Change != -3 || deltas[0].Balance != 7 {
		t.Errorf("Unexpected delta %+v", deltas[0])
	}

	deltas = pool.Replace(map[grid.Seat]int{grid.SeatTwo: 12, grid.SeatOne: 8})
	if len(deltas) != 2 {
		t.Fatalf("Expected 2 deltas, got %d", len(deltas))
	}
	if deltas[0].Seat != grid.SeatOne || deltas[1].Seat != grid.SeatTwo {
		t.Errorf("Expected deltas sorted by seat, got %+v", deltas)
	}
}

func TestPool_ReplaceKeepsAbsentSeats(t *testing.T) {
	pool := NewPool(map[grid.Seat]int{grid.SeatOne: 4, grid.SeatTwo: 6})
	pool.Replace(map[grid.Seat]int{grid.SeatOne: 1})

	if pool.Balance(grid.SeatTwo) != 6 {
		t.Errorf("Expected seat 2 untouched at 6, got %d", pool.Balance(grid.SeatTwo))
	}
}

func TestPool_CopyIsIndependent(t *testing.T) {
	pool := NewPool(map[grid.Seat]int{grid.SeatOne: 4})
	cp := pool.Copy()
	pool.Replace(map[grid.Seat]int{grid.SeatOne: 0})

	if cp.Balance(grid.SeatOne) != 4 {
		t.Errorf("Expected copy to keep 4, got %d", cp.Balance(grid.SeatOne))
	}
}

func TestCheckPayment(t *testing.T) {
	pool := NewPool(map[grid.Seat]int{grid.SeatOne: 3})

	if res := CheckPayment(pool, grid.SeatOne, 3); !res.Success {
		t.Errorf("Expected exact balance to pay, got %s", res.Reason)
	}
	res := CheckPayment(pool, grid.SeatOne, 4)
	if res.Success {
		t.Error("Expected payment of 4 to fail with 3 available")
	}
	if res.Reason == "" {
		t.Error("Expected a reason for failed payment")
	}
	if res := CheckPayment(pool, grid.SeatTwo, 0); !res.Success {
		t.Error("Expected zero cost to always succeed")
	}
}
