package economy

import (
	"errors"
	"math/bits"
)

// Lamports are the base accounting unit: 1 token = 1_000_000 lamports,
// 1 ore costs 1_000 tokens.
const (
	PricePerOre      uint64 = 1_000
	LamportsPerToken uint64 = 1_000_000
	LamportsPerOre          = PricePerOre * LamportsPerToken

	SecondsPerMinute uint64 = 60
	SecondsPerHour          = SecondsPerMinute * 60
	SecondsPerDay           = SecondsPerHour * 24
	SecondsPerYear          = SecondsPerDay * 365
)

// Pool shares, in whole percent. The bonus pool mirrors the
// construction share 1:1, so a purchase commits 110% of its gross:
// the extra 25% is minted into the bonus budget.
const (
	ConstructionPoolShare uint64 = 25
	LotteryPoolShare      uint64 = 10
	ReferralPoolShare     uint64 = 10
	GrandPrizesPoolShare  uint64 = 30
	ConsumptionPoolShare  uint64 = 10
)

const (
	AnnualRate     uint64 = 100 // staking APR, percent
	EarlyUnlockAPR uint64 = 20  // clawback APR for early unlock, percent

	ExchangeCollateralRate uint64 = 100
)

var (
	ErrOverflow  = errors.New("economy: arithmetic overflow")
	ErrUnderflow = errors.New("economy: arithmetic underflow")
)

// Add returns a+b, failing on wraparound.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b, failing when b exceeds a.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Mul returns a*b, failing on wraparound.
func Mul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	prod := a * b
	if prod/a != b {
		return 0, ErrOverflow
	}
	return prod, nil
}

// Proportion computes a whole-percent share of amount. The divide
// happens before the multiply, so results truncate to multiples of
// amount/100; downstream conservation checks depend on this exact
// order.
func Proportion(amount, percent uint64) uint64 {
	return amount / 100 * percent
}

// ProratedInterest computes simple interest on principal at an annual
// percent rate over durationSeconds, truncating the same way
// Proportion does. The duration product is carried at 128 bits; a
// result that cannot fit uint64 fails with ErrOverflow.
func ProratedInterest(principal, annualRatePercent, durationSeconds uint64) (uint64, error) {
	base, err := Mul(principal/100, annualRatePercent)
	if err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(base, durationSeconds)
	if hi >= SecondsPerYear {
		return 0, ErrOverflow
	}
	quo, _ := bits.Div64(hi, lo, SecondsPerYear)
	return quo, nil
}

// Allocation is the pool-by-pool split of one gross purchase amount.
type Allocation struct {
	Construction uint64
	Bonus        uint64 // equals Construction, minted on top of gross
	Lottery      uint64
	Referral     uint64
	GrandPrizes  uint64
	Consumption  uint64
}

// Allocate splits a gross purchase amount across the reward pools.
func Allocate(gross uint64) Allocation {
	construction := Proportion(gross, ConstructionPoolShare)
	return Allocation{
		Construction: construction,
		Bonus:        construction,
		Lottery:      Proportion(gross, LotteryPoolShare),
		Referral:     Proportion(gross, ReferralPoolShare),
		GrandPrizes:  Proportion(gross, GrandPrizesPoolShare),
		Consumption:  Proportion(gross, ConsumptionPoolShare),
	}
}
