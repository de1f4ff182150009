package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolIDWrapsTheReel(t *testing.T) {
	assert.Equal(t, uint8(0), SymbolID(0))
	assert.Equal(t, uint8(1), SymbolID(1))
	assert.Equal(t, uint8(31), SymbolID(31))
	// 32 wraps back to the jackpot slot.
	assert.Equal(t, uint8(0), SymbolID(32))
	assert.Equal(t, uint8(3), SymbolID(35))
	assert.Equal(t, uint8(0), SymbolID(224))
}

func TestMultiplierPaytable(t *testing.T) {
	cases := []struct {
		name    string
		symbols [3]uint8
		want    uint64
	}{
		{"jackpot", [3]uint8{0, 0, 0}, 1000},
		{"three cherries", [3]uint8{1, 1, 1}, 100},
		{"three cherries mixed", [3]uint8{2, 2, 2}, 100},
		{"three bells", [3]uint8{4, 4, 4}, 50},
		{"three lemons", [3]uint8{7, 7, 7}, 20},
		{"three blanks", [3]uint8{15, 15, 15}, 0},
		{"one cherry", [3]uint8{1, 14, 22}, 3},
		{"two cherries", [3]uint8{1, 2, 7}, 6},
		{"two bells", [3]uint8{3, 5, 30}, 6},
		{"two lemons", [3]uint8{6, 9, 12}, 3},
		{"cherry beats bells", [3]uint8{1, 3, 4}, 3},
		{"nothing", [3]uint8{10, 20, 30}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Multiplier(tc.symbols))
		})
	}
}

func TestSpinDerivesFromSeedBytes(t *testing.T) {
	seed := []byte{0, 33, 38, 0xff}
	got := Spin(seed)
	assert.Equal(t, [3]uint8{0, 1, 6}, got)
}

func TestPayoutScalesDrawCost(t *testing.T) {
	assert.Equal(t, 1000*DrawVoucherCost, Payout([3]uint8{0, 0, 0}))
	assert.Equal(t, uint64(0), Payout([3]uint8{10, 20, 30}))
	assert.Equal(t, 6*DrawVoucherCost, Payout([3]uint8{1, 2, 7}))
}
