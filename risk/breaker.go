package risk

// BreakerState classifies a position's unrealized loss against the
// strategy's escalation thresholds.
type BreakerState int

const (
	// StateHold: loss within tolerance, no action.
	StateHold BreakerState = iota
	// StateAlert: loss at or past the alert threshold; the operator is
	// asked to choose hold / exit / smart-stop.
	StateAlert
	// StateCircuitBreaker: loss at or past the hard stop; forced exit,
	// cannot be suppressed.
	StateCircuitBreaker
)

func (s BreakerState) String() string {
	switch s {
	case StateAlert:
		return "ALERT"
	case StateCircuitBreaker:
		return "CIRCUIT_BREAKER"
	default:
		return "HOLD"
	}
}

// Classify is the circuit breaker's pure classification:
//
//	loss = (current - entry) / entry
//	loss <= -hard  → CIRCUIT_BREAKER
//	loss <= -alert → ALERT
//	otherwise      → HOLD
//
// It is total and deterministic; suppression by holds and the forced
// exit itself are the engine's business.
func Classify(cfg BreakerConfig, entry, current float64) BreakerState {
	if entry <= 0 {
		return StateHold
	}
	loss := PnLPct(entry, current)
	switch {
	case cfg.HardStopPct > 0 && loss <= -cfg.HardStopPct:
		return StateCircuitBreaker
	case cfg.AlertPct > 0 && loss <= -cfg.AlertPct:
		return StateAlert
	default:
		return StateHold
	}
}
