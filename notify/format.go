package notify

import (
	"fmt"
	"math"
	"strings"
)

// EntryAlert announces a freshly opened position.
func EntryAlert(ticker string, qty int64, price, stop, target float64, method string) string {
	return fmt.Sprintf(
		"BUY %s\nQty %d @ ₹%.2f\nStop ₹%.2f (%s)\nTarget ₹%.2f",
		ticker, qty, price, stop, method, target)
}

// ExitAlert announces a closed position with its realized result.
func ExitAlert(ticker string, qty int64, entry, exit, pnl, pnlPct float64, reason string) string {
	word := "Profit"
	if pnl < 0 {
		word = "Loss"
	}
	return fmt.Sprintf(
		"SELL %s (%s)\nQty %d: ₹%.2f -> ₹%.2f\n%s ₹%.2f (%+.2f%%)",
		ticker, reason, qty, entry, exit, word, math.Abs(pnl), pnlPct)
}

// LossAlert asks the operator what to do with a position in the alert
// band. Silence leaves the circuit breaker in charge.
func LossAlert(ticker string, entry, current, pnlPct float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALERT %s down %.2f%% (entry ₹%.2f, now ₹%.2f)\n", ticker, -pnlPct, entry, current)
	fmt.Fprintf(&b, "/exit %s to close now\n", ticker)
	fmt.Fprintf(&b, "/hold %s to keep through today\n", ticker)
	fmt.Fprintf(&b, "/smart-stop %s to let stops manage it\n", ticker)
	b.WriteString("No reply: the circuit breaker exits automatically at the hard stop.")
	return b.String()
}

// BreakerAlert announces a forced circuit-breaker exit.
func BreakerAlert(ticker string, entry, exit, pnlPct float64) string {
	return fmt.Sprintf(
		"CIRCUIT BREAKER %s\nForced exit at ₹%.2f (entry ₹%.2f, %.2f%%)",
		ticker, exit, entry, pnlPct)
}

// FillUnknown reports an order whose fill could not be confirmed. The
// position is not recorded and needs manual reconciliation.
func FillUnknown(ticker, orderID string) string {
	return fmt.Sprintf(
		"ORDER %s: fill unknown for %s\nNot recorded. Reconcile with the broker before the next run.",
		orderID, ticker)
}

// StatusSummary reports the book and the capital pool.
func StatusSummary(open int, deployed, available, lockedProfits float64, regime string) string {
	return fmt.Sprintf(
		"Positions %d | Regime %s\nDeployed ₹%.2f\nAvailable ₹%.2f\nLocked profits ₹%.2f",
		open, regime, deployed, available, lockedProfits)
}
