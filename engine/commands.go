package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/swingtrader/notify"
	"github.com/rustyeddy/swingtrader/store"
)

// ApplyCommand executes one operator command from the notification
// channel. Commands are idempotent within a trading day; replies go
// back through the same channel.
func (e *Engine) ApplyCommand(ctx context.Context, cmd notify.Command) error {
	now := e.now()
	e.log.Info("operator command",
		zap.String("action", cmd.Action),
		zap.String("ticker", cmd.Ticker))

	switch cmd.Action {
	case notify.ActionHold:
		if err := e.store.AddHold(ctx, cmd.Ticker, e.cfg.Strategy, store.HoldSuppressed, now); err != nil {
			return fmt.Errorf("record hold: %w", err)
		}
		e.send(ctx, fmt.Sprintf("%s: holding through today. The hard stop still applies.", cmd.Ticker))
		return nil

	case notify.ActionSmartStop:
		if err := e.store.AddHold(ctx, cmd.Ticker, e.cfg.Strategy, store.HoldSmartStop, now); err != nil {
			return fmt.Errorf("record smart-stop: %w", err)
		}
		e.send(ctx, fmt.Sprintf("%s: stops manage the position from here.", cmd.Ticker))
		return nil

	case notify.ActionExit:
		pos, err := e.position(ctx, cmd.Ticker)
		if errors.Is(err, store.ErrPositionNotFound) {
			e.send(ctx, fmt.Sprintf("%s: no open position.", cmd.Ticker))
			return nil
		}
		if err != nil {
			return err
		}
		price, err := e.data.LastPrice(ctx, pos.Ticker)
		if err != nil {
			e.send(ctx, fmt.Sprintf("%s: no live price, exit not placed. Try again.", cmd.Ticker))
			return nil
		}
		return e.exitPosition(ctx, pos, price, "USER-EXIT")

	case notify.ActionStatus:
		acct, err := e.account(ctx)
		if err != nil {
			return err
		}
		snap, err := e.store.Snapshot(ctx, e.cfg.Strategy)
		if err != nil {
			return fmt.Errorf("load portfolio snapshot: %w", err)
		}
		regime, err := e.store.CurrentRegime(ctx)
		if err != nil {
			return fmt.Errorf("load regime: %w", err)
		}
		e.send(ctx, notify.StatusSummary(
			snap.TotalPositions,
			acct.DeployedCapital.InexactFloat64(),
			acct.AvailableCash().InexactFloat64(),
			acct.LockedProfits.InexactFloat64(),
			regime.Name,
		))
		return nil
	}

	return fmt.Errorf("unknown command action %q", cmd.Action)
}
