package slots

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/jonboulle/clockwork"
)

// SlotDuration is the nominal wall time one slot covers.
const SlotDuration = 400 * time.Millisecond

// SyntheticSource derives slots from a wall clock: one slot every
// SlotDuration since the configured genesis instant. Slot hashes are
// computed from a fixed seed, so a given seed always replays the same
// randomness. Used when no RPC node is configured.
type SyntheticSource struct {
	clock   clockwork.Clock
	genesis time.Time
	seed    [32]byte
}

func NewSyntheticSource(clock clockwork.Clock, genesis time.Time, seed [32]byte) *SyntheticSource {
	return &SyntheticSource{clock: clock, genesis: genesis, seed: seed}
}

func (s *SyntheticSource) CurrentSlot(ctx context.Context) (uint64, error) {
	elapsed := s.clock.Now().Sub(s.genesis)
	if elapsed < 0 {
		return 0, nil
	}
	return uint64(elapsed / SlotDuration), nil
}

func (s *SyntheticSource) SlotHash(ctx context.Context, slot uint64) ([32]byte, error) {
	current, _ := s.CurrentSlot(ctx)
	if slot > current {
		return [32]byte{}, ErrSlotUnavailable
	}

	var buf [40]byte
	copy(buf[:32], s.seed[:])
	binary.LittleEndian.PutUint64(buf[32:], slot)
	return sha256.Sum256(buf[:]), nil
}
