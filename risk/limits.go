package risk

import (
	"fmt"

	"github.com/rustyeddy/swingtrader/market"
)

// PortfolioState is a snapshot of a strategy's open book, taken by the
// store and consumed by CheckEntry. Exposure figures are position
// costs at entry.
type PortfolioState struct {
	TotalPositions   int
	ByCategory       map[market.Category]int
	BySector         map[string]int
	CategoryExposure map[market.Category]float64
	TotalExposure    float64
	TotalCapital     float64
}

// EntryRequest is the admission question: may this candidate join the
// book with this much capital?
type EntryRequest struct {
	Ticker   string
	Category market.Category
	Sector   string
	Capital  float64
}

// Decision is the gatekeeper's answer. When an entry is rejected, Code
// carries a stable identifier and Reason the human-readable line that
// goes to logs and alerts.
type Decision struct {
	Allowed bool
	Code    string
	Reason  string
}

func deny(code, format string, args ...any) Decision {
	return Decision{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// CheckEntry runs the portfolio limit checks in a fixed order and
// short-circuits on the first failure; no partial admission. Order:
// total positions, category count, sector count, single-position size,
// category exposure ceiling, total exposure ceiling.
func CheckEntry(p LimitPolicy, s PortfolioState, req EntryRequest) Decision {
	if p.MaxTotalPositions > 0 && s.TotalPositions >= p.MaxTotalPositions {
		return deny("MAX_POSITIONS", "portfolio full: %d of %d positions open",
			s.TotalPositions, p.MaxTotalPositions)
	}

	if limit, ok := p.MaxPerCategory[req.Category]; ok && limit > 0 {
		if n := s.ByCategory[req.Category]; n >= limit {
			return deny("CATEGORY_FULL", "%s full: %d of %d positions open",
				req.Category, n, limit)
		}
	}

	if p.MaxPerSector > 0 && req.Sector != "" {
		if n := s.BySector[req.Sector]; n >= p.MaxPerSector {
			return deny("SECTOR_FULL", "sector %s full: %d of %d positions open",
				req.Sector, n, p.MaxPerSector)
		}
	}

	if p.MaxPositionPct > 0 && s.TotalCapital > 0 {
		if maxValue := p.MaxPositionPct * s.TotalCapital; req.Capital > maxValue {
			return deny("POSITION_TOO_LARGE", "%s position %.0f exceeds %.0f (%.0f%% of capital)",
				req.Ticker, req.Capital, maxValue, p.MaxPositionPct*100)
		}
	}

	if ratio, ok := p.CategoryRatio[req.Category]; ok && ratio > 0 && s.TotalCapital > 0 {
		ceiling := ratio * s.TotalCapital
		if s.CategoryExposure[req.Category]+req.Capital > ceiling {
			return deny("CATEGORY_EXPOSURE", "%s exposure %.0f + %.0f breaches ceiling %.0f",
				req.Category, s.CategoryExposure[req.Category], req.Capital, ceiling)
		}
	}

	if p.MaxTotalExposurePct > 0 && s.TotalCapital > 0 {
		ceiling := p.MaxTotalExposurePct * s.TotalCapital
		if s.TotalExposure+req.Capital > ceiling {
			return deny("TOTAL_EXPOSURE", "total exposure %.0f + %.0f breaches ceiling %.0f (%.0f%% of capital)",
				s.TotalExposure, req.Capital, ceiling, p.MaxTotalExposurePct*100)
		}
	}

	return Decision{Allowed: true}
}
