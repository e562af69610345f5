package mana

import (
	"fmt"

	"github.com/runeboard/runeboard-client/internal/game/grid"
)

// PaymentResult is the outcome of checking whether a seat can pay a cost.
type PaymentResult struct {
	Success   bool
	Cost      int
	Available int
	Reason    string
}

// CheckPayment reports whether seat can cover cost from the mirrored pool.
// Costs are always whole card costs; there is no partial payment.
func CheckPayment(pool *Pool, seat grid.Seat, cost int) PaymentResult {
	available := pool.Balance(seat)
	if cost <= 0 {
		return PaymentResult{Success: true, Cost: 0, Available: available}
	}
	if available < cost {
		return PaymentResult{
			Success:   false,
			Cost:      cost,
			Available: available,
			Reason:    fmt.Sprintf("insufficient mana (need %d, have %d)", cost, available),
		}
	}
	return PaymentResult{Success: true, Cost: cost, Available: available}
}
