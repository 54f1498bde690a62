package risk

// PnLPct returns the signed fractional gain of current over entry:
// -0.05 is a 5% loss. Degenerate entries yield 0.
func PnLPct(entry, current float64) float64 {
	if entry <= 0 {
		return 0
	}
	return (current - entry) / entry
}

// PnL returns the signed currency gain of a position of qty shares.
func PnL(entry, current float64, qty int64) float64 {
	return (current - entry) * float64(qty)
}
