// Package alloc splits a strategy's deployable capital across
// market-cap categories: filter candidates through score gates, fund
// the best names first, and redistribute whatever a thin category
// cannot deploy. The output is a plan of capital ceilings; share
// counts are computed later at execution-time prices.
package alloc

import (
	"sort"

	"github.com/rustyeddy/swingtrader/market"
	"github.com/rustyeddy/swingtrader/signal"
)

// Config is the allocator's per-strategy configuration.
type Config struct {
	TargetRatio map[market.Category]float64 `json:"target_ratio" yaml:"target_ratio"` // fractions summing to 1
	MinPosition float64                     `json:"min_position" yaml:"min_position"` // capital per position, lower bound
	MaxPosition float64                     `json:"max_position" yaml:"max_position"` // capital per position, upper bound
	MinScore    float64                     `json:"min_score" yaml:"min_score"`
	MinRSRating float64                     `json:"min_rs_rating" yaml:"min_rs_rating"`
}

// Entry is one funded candidate: Capital is a ceiling, not an exact
// spend.
type Entry struct {
	Ticker   string
	Category market.Category
	Sector   string
	Score    float64
	RSRating float64
	Price    float64
	Capital  float64
}

// CategoryPlan is the allocation for one category.
type CategoryPlan struct {
	Category  market.Category
	Target    float64 // ratio × total
	Allocated float64
	Entries   []Entry
}

// Plan is the allocator's result. Unallocated is capital that no
// category could absorb (too few qualifying candidates everywhere).
type Plan struct {
	Total       float64
	Categories  map[market.Category]*CategoryPlan
	Unallocated float64
}

// redistribution priority: thin categories hand their leftover to
// mid-caps first, then large, then micro.
var redistributionOrder = []market.Category{market.MidCap, market.LargeCap, market.MicroCap}

// Allocate builds the allocation plan for one cycle.
//
// Per category: candidates failing the score or RS gate are dropped,
// the rest are sorted by score descending and funded greedily from the
// top, each taking min(max_position, remaining target) until the
// remainder falls under min_position. Leftover target capital is
// pooled and offered to the still-unfunded candidates of the other
// categories in redistribution priority order. The grand total never
// exceeds total, and every funded entry holds min ≤ capital ≤ max.
func Allocate(cfg Config, total float64, candidates []signal.Candidate) Plan {
	plan := Plan{Total: total, Categories: make(map[market.Category]*CategoryPlan)}

	qualified := make(map[market.Category][]signal.Candidate)
	for _, c := range candidates {
		if c.Score < cfg.MinScore || c.RSRating < cfg.MinRSRating {
			continue
		}
		qualified[c.Category] = append(qualified[c.Category], c)
	}
	for _, list := range qualified {
		sortByScore(list)
	}

	// First pass: fund each category from its own target.
	unfunded := make(map[market.Category][]signal.Candidate)
	pool := 0.0
	for _, cat := range market.Categories() {
		cp := &CategoryPlan{Category: cat, Target: total * cfg.TargetRatio[cat]}
		plan.Categories[cat] = cp

		remaining := cp.Target
		list := qualified[cat]
		i := 0
		for ; i < len(list); i++ {
			take := cfg.MaxPosition
			if take > remaining {
				take = remaining
			}
			if take < cfg.MinPosition || take <= 0 {
				break
			}
			cp.add(list[i], take)
			remaining -= take
		}
		unfunded[cat] = list[i:]
		pool += remaining
	}

	// Second pass: shortfall redistribution.
	for _, cat := range redistributionOrder {
		cp := plan.Categories[cat]
		for _, c := range unfunded[cat] {
			take := cfg.MaxPosition
			if take > pool {
				take = pool
			}
			if take < cfg.MinPosition || take <= 0 {
				break
			}
			cp.add(c, take)
			pool -= take
		}
	}

	plan.Unallocated = pool
	return plan
}

func (cp *CategoryPlan) add(c signal.Candidate, capital float64) {
	cp.Entries = append(cp.Entries, Entry{
		Ticker:   c.Ticker,
		Category: c.Category,
		Sector:   c.Sector,
		Score:    c.Score,
		RSRating: c.RSRating,
		Price:    c.Price,
		Capital:  capital,
	})
	cp.Allocated += capital
}

// Allocated sums the funded capital across all categories.
func (p Plan) Allocated() float64 {
	sum := 0.0
	for _, cp := range p.Categories {
		sum += cp.Allocated
	}
	return sum
}

// EntryOrder flattens the plan into execution order. Categories are
// interleaved large, large, large, mid, micro (repeating) so
// large-caps lead the tape but every category gets early fills;
// within a category the score order from allocation is kept.
func (p Plan) EntryOrder() []Entry {
	pattern := []market.Category{
		market.LargeCap, market.LargeCap, market.LargeCap,
		market.MidCap, market.MicroCap,
	}

	queues := make(map[market.Category][]Entry, len(p.Categories))
	pending := 0
	for cat, cp := range p.Categories {
		queues[cat] = cp.Entries
		pending += len(cp.Entries)
	}

	out := make([]Entry, 0, pending)
	for len(out) < pending {
		progressed := false
		for _, cat := range pattern {
			q := queues[cat]
			if len(q) == 0 {
				continue
			}
			out = append(out, q[0])
			queues[cat] = q[1:]
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return out
}

func sortByScore(list []signal.Candidate) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		if list[i].RSRating != list[j].RSRating {
			return list[i].RSRating > list[j].RSRating
		}
		return list[i].Ticker < list[j].Ticker
	})
}
