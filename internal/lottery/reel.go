package lottery

import "github.com/ErenVance/DoomsdayArk/internal/economy"

// Draw pricing and pool floor. A draw is paid in vouchers; the pool
// must hold at least the floor before any draw is accepted so the top
// paytable line is always covered.
const (
	DrawVoucherCost       = 1_000 * economy.LamportsPerToken
	MinRewardsPoolBalance = 1_000_000 * economy.LamportsPerToken
)

// reelSymbols maps a seed byte (mod 32) onto a symbol id. Symbol 0
// appears once, symbols 1-2 twice each via adjacent slots, and the
// weighting thins out toward the blanks at the tail.
var reelSymbols = [32]uint8{
	0,
	1, 2,
	3, 4, 5,
	6, 7, 8, 9,
	10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21,
	22, 23, 24, 25, 26, 27, 28, 29, 30, 31,
}

// SymbolID maps one raw seed byte to its reel symbol.
func SymbolID(b uint8) uint8 {
	return reelSymbols[int(b)%len(reelSymbols)]
}

// Spin derives the three reel symbols from a randomness seed. The
// seed must carry at least three bytes; slot-hash seeds always do.
func Spin(seed []byte) [3]uint8 {
	var out [3]uint8
	for i := 0; i < 3; i++ {
		out[i] = SymbolID(seed[i])
	}
	return out
}

// Multiplier prices a spin against the paytable, as a multiple of the
// draw cost. Zero means the spin lost.
//
//	three 0s          → 1000
//	three of 1-2      → 100
//	three of 3-5      → 50
//	three of 6-9      → 20
//	one or two cherries (1-2) → 3 per cherry
//	two bells (3-5)   → 6
//	two lemons (6-9)  → 3
func Multiplier(symbols [3]uint8) uint64 {
	if symbols[0] == symbols[1] && symbols[1] == symbols[2] {
		switch {
		case symbols[0] == 0:
			return 1000
		case symbols[0] >= 1 && symbols[0] <= 2:
			return 100
		case symbols[0] >= 3 && symbols[0] <= 5:
			return 50
		case symbols[0] >= 6 && symbols[0] <= 9:
			return 20
		}
		return 0
	}

	var cherries, bells, lemons uint64
	for _, s := range symbols {
		switch {
		case s >= 1 && s <= 2:
			cherries++
		case s >= 3 && s <= 5:
			bells++
		case s >= 6 && s <= 9:
			lemons++
		}
	}
	switch {
	case cherries >= 1 && cherries <= 2:
		return 3 * cherries
	case bells == 2:
		return 6
	case lemons == 2:
		return 3
	}
	return 0
}

// Payout is the lamport reward for a spin.
func Payout(symbols [3]uint8) uint64 {
	return DrawVoucherCost * Multiplier(symbols)
}
