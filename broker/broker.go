// Package broker submits orders for execution. The paper broker fills
// instantly at the reference price; a live adapter sits behind the
// same interface.
package broker

import (
	"context"
	"errors"
)

// Order sides.
const (
	Buy  = "BUY"
	Sell = "SELL"
)

// ErrOrderNotFound reports a fill lookup for an order the broker never
// accepted.
var ErrOrderNotFound = errors.New("order not found")

// OrderRequest is a market order for a quantity of a ticker.
// Reference carries the price the caller sized the order at.
type OrderRequest struct {
	Ticker    string
	Side      string
	Quantity  int64
	Reference float64
}

// Broker places market orders and reports their fills.
type Broker interface {
	// PlaceOrder submits the order and returns the broker's order id.
	PlaceOrder(ctx context.Context, req OrderRequest) (string, error)

	// FillPrice reports the executed price for a previously placed
	// order.
	FillPrice(ctx context.Context, orderID string) (float64, error)
}
