package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Paper is an in-memory broker that fills every order at its
// reference price. Safe for concurrent use.
type Paper struct {
	mu     sync.Mutex
	fills  map[string]float64
	orders []OrderRequest
}

// NewPaper creates an empty paper broker.
func NewPaper() *Paper {
	return &Paper{fills: make(map[string]float64)}
}

// PlaceOrder accepts the order and records an instant fill at the
// reference price.
func (p *Paper) PlaceOrder(_ context.Context, req OrderRequest) (string, error) {
	if req.Ticker == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if req.Side != Buy && req.Side != Sell {
		return "", fmt.Errorf("unknown order side %q", req.Side)
	}
	if req.Quantity <= 0 {
		return "", fmt.Errorf("order quantity must be positive, got %d", req.Quantity)
	}
	if req.Reference <= 0 {
		return "", fmt.Errorf("reference price must be positive, got %v", req.Reference)
	}

	id := ulid.Make().String()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.fills[id] = req.Reference
	p.orders = append(p.orders, req)
	return id, nil
}

// FillPrice reports the fill for an order id.
func (p *Paper) FillPrice(_ context.Context, orderID string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.fills[orderID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrOrderNotFound, orderID)
	}
	return price, nil
}

// Orders returns a copy of every accepted order, oldest first.
func (p *Paper) Orders() []OrderRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]OrderRequest, len(p.orders))
	copy(out, p.orders)
	return out
}
