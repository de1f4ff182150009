package game

import (
	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
)

// Deposit redeems the player's vouchers for the tokens backing them.
func (e *Engine) Deposit(playerID string, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return err
	}
	if amount == 0 || p.VoucherBalance < amount {
		return ErrInvalidAmount
	}
	if e.vault.TokenAmount < amount {
		return ErrInsufficientPoolBalance
	}

	if err := e.vouchers.Burn(amount); err != nil {
		return err
	}
	if err := e.vault.Withdraw(amount); err != nil {
		return err
	}
	p.VoucherBalance -= amount
	p.TokenBalance += amount

	e.emit(events.TypeDeposit, events.InitiatorDeposit, playerID, map[string]any{
		"player":       playerID,
		"token_amount": amount,
	})
	return nil
}

// CollateralExchange locks the player's tokens behind the voucher
// vault and mints vouchers against them.
func (e *Engine) CollateralExchange(playerID string, tokenAmount uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return 0, err
	}
	if tokenAmount == 0 {
		return 0, ErrInvalidAmount
	}
	if p.TokenBalance < tokenAmount {
		return 0, ErrInsufficientFunds
	}

	// Mint exactly what the player is credited so the vault keeps
	// backing the full supply at any exchange rate.
	voucherAmount := economy.Proportion(tokenAmount, economy.ExchangeCollateralRate)

	e.vouchers.Mint(voucherAmount)
	e.vault.Fund(voucherAmount)
	p.TokenBalance -= tokenAmount
	p.VoucherBalance += voucherAmount

	e.emit(events.TypeCollateralExchange, events.InitiatorVoucher, playerID, map[string]any{
		"player":                playerID,
		"exchange_token_amount": tokenAmount,
		"voucher_amount":        voucherAmount,
	})
	return voucherAmount, nil
}
