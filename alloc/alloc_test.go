package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/swingtrader/market"
	"github.com/rustyeddy/swingtrader/signal"
)

func swingConfig() Config {
	return Config{
		TargetRatio: map[market.Category]float64{
			market.LargeCap: 0.60,
			market.MidCap:   0.20,
			market.MicroCap: 0.20,
		},
		MinPosition: 20000,
		MaxPosition: 70000,
		MinScore:    65,
		MinRSRating: 65,
	}
}

func cand(ticker string, cat market.Category, score, rs float64) signal.Candidate {
	return signal.Candidate{
		Ticker:         ticker,
		Category:       cat,
		Sector:         "IT",
		Recommendation: signal.Buy,
		Score:          score,
		RSRating:       rs,
		Price:          100,
	}
}

func tickers(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Ticker
	}
	return out
}

func TestAllocate_GatesAndOrdering(t *testing.T) {
	t.Parallel()

	plan := Allocate(swingConfig(), 500000, []signal.Candidate{
		cand("LOW-SCORE", market.LargeCap, 60, 90),
		cand("LOW-RS", market.LargeCap, 80, 50),
		cand("SECOND", market.LargeCap, 85, 90),
		cand("FIRST", market.LargeCap, 92, 90),
	})

	large := plan.Categories[market.LargeCap]
	require.Len(t, large.Entries, 2)
	assert.Equal(t, []string{"FIRST", "SECOND"}, tickers(large.Entries))
}

func TestAllocate_GreedyFillsTopFirst(t *testing.T) {
	t.Parallel()

	cfg := swingConfig()
	cfg.TargetRatio = map[market.Category]float64{market.LargeCap: 1}

	plan := Allocate(cfg, 300000, []signal.Candidate{
		cand("L1", market.LargeCap, 95, 90),
		cand("L2", market.LargeCap, 90, 90),
		cand("L3", market.LargeCap, 85, 90),
		cand("L4", market.LargeCap, 80, 90),
		cand("L5", market.LargeCap, 75, 90),
		cand("L6", market.LargeCap, 70, 90),
	})

	large := plan.Categories[market.LargeCap]
	require.Len(t, large.Entries, 5)
	// Four at the 70000 cap, the fifth takes the 20000 remainder, the
	// sixth stays unfunded with nothing left to redistribute.
	for _, e := range large.Entries[:4] {
		assert.InDelta(t, 70000.0, e.Capital, 1e-9)
	}
	assert.InDelta(t, 20000.0, large.Entries[4].Capital, 1e-9)
	assert.InDelta(t, 300000.0, large.Allocated, 1e-9)
	assert.Zero(t, plan.Unallocated)
}

func TestAllocate_RemainderBelowMinimumStops(t *testing.T) {
	t.Parallel()

	cfg := swingConfig()
	cfg.TargetRatio = map[market.Category]float64{market.LargeCap: 1}

	plan := Allocate(cfg, 85000, []signal.Candidate{
		cand("L1", market.LargeCap, 90, 90),
		cand("L2", market.LargeCap, 85, 90),
	})

	large := plan.Categories[market.LargeCap]
	require.Len(t, large.Entries, 1)
	assert.InDelta(t, 70000.0, large.Entries[0].Capital, 1e-9)
	// The 15000 remainder is under min_position and no other category
	// can take it.
	assert.InDelta(t, 15000.0, plan.Unallocated, 1e-9)
}

func TestAllocate_ShortfallRedistribution(t *testing.T) {
	t.Parallel()

	plan := Allocate(swingConfig(), 500000, []signal.Candidate{
		cand("L1", market.LargeCap, 90, 90),
		cand("L2", market.LargeCap, 85, 90),
		cand("L3", market.LargeCap, 80, 90),
		cand("M1", market.MidCap, 88, 90),
		cand("M2", market.MidCap, 82, 90),
		cand("M3", market.MidCap, 76, 90),
		cand("M4", market.MidCap, 70, 90),
		cand("FILTERED", market.MicroCap, 60, 90),
	})

	// Large deploys 3 × 70000 of its 300000 target; micro qualifies
	// nobody. The 190000 pool flows to the unfunded mid-caps first.
	large := plan.Categories[market.LargeCap]
	assert.InDelta(t, 210000.0, large.Allocated, 1e-9)

	mid := plan.Categories[market.MidCap]
	require.Len(t, mid.Entries, 4)
	assert.InDelta(t, 70000.0, mid.Entries[0].Capital, 1e-9)
	assert.InDelta(t, 30000.0, mid.Entries[1].Capital, 1e-9) // own target remainder
	assert.InDelta(t, 70000.0, mid.Entries[2].Capital, 1e-9) // redistributed
	assert.InDelta(t, 70000.0, mid.Entries[3].Capital, 1e-9) // redistributed
	assert.InDelta(t, 240000.0, mid.Allocated, 1e-9)

	assert.Empty(t, plan.Categories[market.MicroCap].Entries)
	assert.InDelta(t, 50000.0, plan.Unallocated, 1e-9)
	assert.InDelta(t, 450000.0, plan.Allocated(), 1e-9)
}

func TestAllocate_EmptyCategoryRedistributesEverything(t *testing.T) {
	t.Parallel()

	cfg := swingConfig()
	cfg.TargetRatio = map[market.Category]float64{
		market.LargeCap: 0.50,
		market.MidCap:   0.25,
		market.MicroCap: 0.25,
	}

	plan := Allocate(cfg, 200000, []signal.Candidate{
		cand("L1", market.LargeCap, 90, 90),
		cand("L2", market.LargeCap, 85, 90),
		cand("M1", market.MidCap, 88, 90),
		cand("M2", market.MidCap, 80, 90),
		cand("M3", market.MidCap, 72, 90),
	})

	// Micro has zero qualifying candidates; its full 50000 target must
	// land elsewhere (here: the unfunded mid-cap M2).
	assert.InDelta(t, 0.0, plan.Unallocated, 1e-9)
	assert.InDelta(t, 200000.0, plan.Allocated(), 1e-9)
	assert.Len(t, plan.Categories[market.MidCap].Entries, 2)
}

func TestAllocate_Bounds(t *testing.T) {
	t.Parallel()

	cfg := swingConfig()
	var candidates []signal.Candidate
	for _, tk := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		candidates = append(candidates,
			cand("L-"+tk, market.LargeCap, 80, 80),
			cand("M-"+tk, market.MidCap, 80, 80),
			cand("S-"+tk, market.MicroCap, 80, 80),
		)
	}

	plan := Allocate(cfg, 500000, candidates)

	assert.LessOrEqual(t, plan.Allocated(), 500000.0)
	for _, cp := range plan.Categories {
		for _, e := range cp.Entries {
			assert.GreaterOrEqual(t, e.Capital, cfg.MinPosition)
			assert.LessOrEqual(t, e.Capital, cfg.MaxPosition)
		}
	}
}

func TestEntryOrder_Interleaves(t *testing.T) {
	t.Parallel()

	plan := Plan{Categories: map[market.Category]*CategoryPlan{
		market.LargeCap: {Entries: []Entry{{Ticker: "A"}, {Ticker: "B"}, {Ticker: "C"}, {Ticker: "D"}}},
		market.MidCap:   {Entries: []Entry{{Ticker: "F"}, {Ticker: "G"}}},
		market.MicroCap: {Entries: []Entry{{Ticker: "H"}}},
	}}

	got := plan.EntryOrder()
	assert.Equal(t, []string{"A", "B", "C", "F", "H", "D", "G"}, tickers(got))
}
