package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperFillsAtReference(t *testing.T) {
	t.Parallel()

	p := NewPaper()
	ctx := context.Background()

	id, err := p.PlaceOrder(ctx, OrderRequest{
		Ticker:    "RELIANCE",
		Side:      Buy,
		Quantity:  50,
		Reference: 2510.5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	price, err := p.FillPrice(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2510.5, price)

	orders := p.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "RELIANCE", orders[0].Ticker)
	assert.Equal(t, int64(50), orders[0].Quantity)
}

func TestPaperUnknownOrder(t *testing.T) {
	t.Parallel()

	p := NewPaper()
	_, err := p.FillPrice(context.Background(), "01NOPE")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPaperRejectsBadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  OrderRequest
	}{
		{"missing ticker", OrderRequest{Side: Buy, Quantity: 1, Reference: 100}},
		{"bad side", OrderRequest{Ticker: "TCS", Side: "SHORT", Quantity: 1, Reference: 100}},
		{"zero quantity", OrderRequest{Ticker: "TCS", Side: Buy, Reference: 100}},
		{"no reference", OrderRequest{Ticker: "TCS", Side: Sell, Quantity: 1}},
	}

	p := NewPaper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := p.PlaceOrder(context.Background(), tt.req)
			assert.Error(t, err)
		})
	}
}
