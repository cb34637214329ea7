// Package aggregate maintains per-retailer running encrypted totals and the
// loss-disclosure round trip. Totals only ever grow, and only through
// homomorphic addition; nothing here can read a plaintext loss.
package aggregate

import "github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"

// RetailerAggregate is one retailer's running totals. Created lazily on
// first contribution with both handles at the homomorphic zero.
type RetailerAggregate struct {
	TotalLoss     fhe.Handle
	IncidentCount fhe.Handle
	Initialized   bool
}
