package slots

import (
	"context"
	"errors"
)

// ErrSlotUnavailable is returned when a slot hash cannot be resolved,
// either because the slot is in the future or already pruned.
var ErrSlotUnavailable = errors.New("slots: slot hash unavailable")

// Source provides the chain slot clock and per-slot hashes used as
// randomness seeds. Draws commit to a slot and reveal against the hash
// that slot produced once it is final.
type Source interface {
	// CurrentSlot returns the latest observed slot number.
	CurrentSlot(ctx context.Context) (uint64, error)

	// SlotHash returns the 32-byte hash of a finalized slot.
	SlotHash(ctx context.Context, slot uint64) ([32]byte, error)
}
