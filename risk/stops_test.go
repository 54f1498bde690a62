package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swingStopConfig() StopConfig {
	return StopConfig{
		FixedPct:           0.04,
		SLMultiplier:       2.0,
		ChandelierMultiple: 2.5,
		SupportBufferPct:   0.02,
		MaxDaysNoProgress:  10,
		TargetPct:          0.04,
		UseFixed:           true,
		UseVolatility:      true,
		UseChandelier:      true,
		UseSupport:         true,
		UseTimeBased:       true,
	}
}

func TestComputeStops_ChandelierWinsAfterRally(t *testing.T) {
	t.Parallel()

	got := ComputeStops(swingStopConfig(), StopInputs{
		EntryPrice:   100,
		CurrentPrice: 103,
		HighestPrice: 112,
		Volatility:   4,
		DaysHeld:     3,
	})

	assert.InDelta(t, 96.0, got.Levels[MethodFixed], 1e-9)
	assert.InDelta(t, 92.0, got.Levels[MethodATR], 1e-9)
	assert.InDelta(t, 102.0, got.Levels[MethodChandelier], 1e-9)
	assert.InDelta(t, 102.0, got.StopLoss, 1e-9)
	assert.Equal(t, MethodChandelier, got.Method)
	assert.InDelta(t, 104.0, got.TakeProfit, 1e-9)
	assert.False(t, got.TimeExit)
}

func TestComputeStops_SupportLayer(t *testing.T) {
	t.Parallel()

	in := StopInputs{
		EntryPrice:   100,
		CurrentPrice: 100,
		HighestPrice: 100,
		Volatility:   4,
		SwingLow:     99,
	}

	got := ComputeStops(swingStopConfig(), in)

	// support = 99 × 0.98 = 97.02, tighter than fixed 96 and the
	// at-entry chandelier 90.
	assert.Equal(t, MethodSupport, got.Method)
	assert.InDelta(t, 97.02, got.StopLoss, 1e-9)

	in.SwingLow = 90
	got = ComputeStops(swingStopConfig(), in)
	assert.Equal(t, MethodFixed, got.Method)
	assert.InDelta(t, 96.0, got.StopLoss, 1e-9)
}

func TestComputeStops_FallbackGeometry(t *testing.T) {
	t.Parallel()

	// No volatility, no support, fixed disabled: nothing usable.
	cfg := StopConfig{UseVolatility: true, UseChandelier: true, TargetPct: 0.04}
	got := ComputeStops(cfg, StopInputs{EntryPrice: 100, CurrentPrice: 100, HighestPrice: 100})

	assert.Equal(t, MethodFallback, got.Method)
	assert.InDelta(t, 98.0, got.StopLoss, 1e-9)
	assert.InDelta(t, 102.0, got.TakeProfit, 1e-9)
	assert.NoError(t, got.ValidateEntry(100))
}

func TestComputeStops_TimeExitFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  float64
		daysHeld int
		want     bool
	}{
		{"stale and flat", 99.5, 10, true},
		{"stale but profitable", 104, 12, false},
		{"young and flat", 99.5, 4, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ComputeStops(swingStopConfig(), StopInputs{
				EntryPrice:   100,
				CurrentPrice: tt.current,
				HighestPrice: 105,
				Volatility:   2,
				DaysHeld:     tt.daysHeld,
			})
			assert.Equal(t, tt.want, got.TimeExit)
		})
	}
}

func TestTighten_Monotonic(t *testing.T) {
	t.Parallel()

	cfg := swingStopConfig()
	stop := 0.0
	prev := 0.0

	// Rising highest price: the synthesized stop never falls back.
	for _, highest := range []float64{100, 104, 108, 112, 111} {
		res := ComputeStops(cfg, StopInputs{
			EntryPrice:   100,
			CurrentPrice: highest,
			HighestPrice: highest,
			Volatility:   4,
		})
		stop, _ = Tighten(stop, res.StopLoss)
		assert.GreaterOrEqual(t, stop, prev)
		prev = stop
	}
	assert.InDelta(t, 102.0, stop, 1e-9)

	got, moved := Tighten(102, 96)
	assert.InDelta(t, 102.0, got, 1e-9)
	assert.False(t, moved)
}

func TestValidateEntry(t *testing.T) {
	t.Parallel()

	ok := StopResult{StopLoss: 96, TakeProfit: 104}
	assert.NoError(t, ok.ValidateEntry(100))

	aboveEntry := StopResult{StopLoss: 102, TakeProfit: 104}
	err := aboveEntry.ValidateEntry(100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStopGeometry)

	noTarget := StopResult{StopLoss: 96, TakeProfit: 100}
	assert.ErrorIs(t, noTarget.ValidateEntry(100), ErrInvalidStopGeometry)
}

func TestProfitLockStop(t *testing.T) {
	t.Parallel()

	cfg := ProfitLockConfig{StartDay: 8, TrailPct: 0.02}

	tests := []struct {
		name     string
		current  float64
		daysHeld int
		want     float64
		active   bool
	}{
		{"too young", 106, 7, 0, false},
		{"underwater", 99, 9, 0, false},
		{"big gain trails", 106, 8, 103.88, true},   // trail 106×0.98 beats floor 103
		{"medium gain floors", 104, 9, 102.0, true}, // floor 102 beats trail 101.92
		{"small gain floors", 102, 10, 101.0, true}, // floor 101 beats trail 99.96
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, active := ProfitLockStop(cfg, 100, tt.current, tt.daysHeld)
			assert.Equal(t, tt.active, active)
			if tt.active {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
