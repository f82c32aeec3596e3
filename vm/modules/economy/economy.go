package economy

import (
	"fmt"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/vm"
)

func init() {
	vm.Register(core.TxTransfer, vm.Anyone, vm.Decode(handleTransfer))
	vm.Register(core.TxTokenTransfer, vm.Anyone, vm.Decode(handleTokenTransfer))
}

func handleTransfer(ctx *vm.Context, p core.TransferPayload) error {
	if p.Amount == 0 {
		return core.ErrZeroAmount
	}
	if p.To == "" {
		return fmt.Errorf("transfer to address required")
	}
	if err := ctx.Ledger.TransferNative(ctx.Tx.From, p.To, p.Amount); err != nil {
		return err
	}

	ctx.Emit(events.EventNativeTransfer, map[string]any{
		"from":   ctx.Tx.From,
		"to":     p.To,
		"amount": p.Amount,
	})
	return nil
}

func handleTokenTransfer(ctx *vm.Context, p core.TokenTransferPayload) error {
	if p.Amount == 0 {
		return core.ErrZeroAmount
	}
	if p.To == "" || p.Mint == "" {
		return fmt.Errorf("token transfer needs mint and recipient")
	}
	if err := ctx.Ledger.Transfer(p.Mint, ctx.Tx.From, p.To, p.Amount); err != nil {
		return err
	}

	ctx.Emit(events.EventTokenTransfer, map[string]any{
		"mint":   p.Mint,
		"from":   ctx.Tx.From,
		"to":     p.To,
		"amount": p.Amount,
	})
	return nil
}
