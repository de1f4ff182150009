package voucher

import "errors"

var (
	ErrInsufficientSupply = errors.New("voucher: insufficient total supply")
	ErrInsufficientVault  = errors.New("voucher: insufficient vault balance")
)

// Voucher tracks the in-game credit supply. MintedAmount is the
// lifetime issuance; TotalSupply is the circulating amount, reduced
// by burns only.
type Voucher struct {
	MintedAmount uint64
	TotalSupply  uint64
}

func (v *Voucher) Mint(amount uint64) {
	v.MintedAmount += amount
	v.TotalSupply += amount
}

func (v *Voucher) Burn(amount uint64) error {
	if v.TotalSupply < amount {
		return ErrInsufficientSupply
	}
	v.TotalSupply -= amount
	return nil
}

// Vault escrows the tokens backing redeemable vouchers.
type Vault struct {
	TokenAmount uint64
}

// Withdraw releases backing tokens during a redemption.
func (va *Vault) Withdraw(amount uint64) error {
	if va.TokenAmount < amount {
		return ErrInsufficientVault
	}
	va.TokenAmount -= amount
	return nil
}

// Fund adds backing tokens, e.g. from a collateral exchange.
func (va *Vault) Fund(amount uint64) {
	va.TokenAmount += amount
}
