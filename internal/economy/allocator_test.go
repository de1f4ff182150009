package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProportionTruncatesBeforeMultiplying(t *testing.T) {
	assert.Equal(t, uint64(250), Proportion(1000, 25))

	// 199/100 truncates to 1 before the multiply; a multiply-first
	// implementation would return 49 here.
	assert.Equal(t, uint64(25), Proportion(199, 25))
	assert.Equal(t, uint64(0), Proportion(99, 25))
}

func TestProratedInterest(t *testing.T) {
	// 1000 tokens at 100% APR for 30 days: ~8.2%.
	interest, err := ProratedInterest(1000, 100, 30*SecondsPerDay)
	require.NoError(t, err)
	assert.Equal(t, uint64(82), interest)

	// A full year at 100% returns the principal (modulo truncation).
	interest, err = ProratedInterest(1000, 100, SecondsPerYear)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), interest)

	// Early-unlock clawback scenario: 1,000,000 tokens staked, 30 days
	// elapsed at the 20% early rate.
	principal := 1_000_000 * LamportsPerToken
	reserved := Proportion(principal, AnnualRate)
	require.Equal(t, principal, reserved)
	earned, err := ProratedInterest(principal, EarlyUnlockAPR, 30*SecondsPerDay)
	require.NoError(t, err)
	assert.Equal(t, uint64(16_438_356_164), earned)
	assert.Equal(t, uint64(983_561_643_836), reserved-earned)
}

func TestProratedInterestWideIntermediate(t *testing.T) {
	// Three shards near maturity: the duration product needs 128 bits
	// even though the quotient fits comfortably.
	principal := 3_000_000 * LamportsPerToken
	earned, err := ProratedInterest(principal, EarlyUnlockAPR, 360*SecondsPerDay)
	require.NoError(t, err)
	assert.Equal(t, uint64(591_780_821_917), earned)

	// A quotient that cannot fit uint64 fails instead of wrapping.
	_, err = ProratedInterest(^uint64(0), 100, SecondsPerYear*SecondsPerYear)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAllocateShares(t *testing.T) {
	gross := 10 * LamportsPerOre // a 10-ore purchase
	alloc := Allocate(gross)

	assert.Equal(t, Proportion(gross, 25), alloc.Construction)
	assert.Equal(t, alloc.Construction, alloc.Bonus)
	assert.Equal(t, Proportion(gross, 10), alloc.Lottery)
	assert.Equal(t, Proportion(gross, 10), alloc.Referral)
	assert.Equal(t, Proportion(gross, 30), alloc.GrandPrizes)
	assert.Equal(t, Proportion(gross, 10), alloc.Consumption)

	// Excluding the minted bonus, the split never exceeds the gross.
	spent := alloc.Construction + alloc.Lottery + alloc.Referral +
		alloc.GrandPrizes + alloc.Consumption
	assert.LessOrEqual(t, spent, gross)
}

func TestCheckedMath(t *testing.T) {
	const max = ^uint64(0)

	_, err := Add(max, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Sub(1, 2)
	assert.ErrorIs(t, err, ErrUnderflow)

	_, err = Mul(max, 2)
	assert.ErrorIs(t, err, ErrOverflow)

	sum, err := Add(40, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sum)
}
