package slots

import (
	"context"
	"sync"

	"github.com/mr-tron/base58"
)

// ScriptedSource serves a hand-set slot number and hash table.
// Deterministic, advanced explicitly by the caller. Used in tests.
type ScriptedSource struct {
	mu     sync.Mutex
	slot   uint64
	hashes map[uint64][32]byte
}

func NewScriptedSource(slot uint64) *ScriptedSource {
	return &ScriptedSource{slot: slot, hashes: make(map[uint64][32]byte)}
}

// Advance moves the slot clock forward by n slots.
func (s *ScriptedSource) Advance(n uint64) {
	s.mu.Lock()
	s.slot += n
	s.mu.Unlock()
}

// SetHash pins the hash a slot resolves to.
func (s *ScriptedSource) SetHash(slot uint64, hash [32]byte) {
	s.mu.Lock()
	s.hashes[slot] = hash
	s.mu.Unlock()
}

func (s *ScriptedSource) CurrentSlot(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slot, nil
}

func (s *ScriptedSource) SlotHash(ctx context.Context, slot uint64) ([32]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[slot]
	if !ok {
		return [32]byte{}, ErrSlotUnavailable
	}
	return h, nil
}

// ParseHash decodes a base58-encoded 32-byte hash, the form block
// hashes appear in on chain explorers.
func ParseHash(s string) ([32]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return [32]byte{}, err
	}
	if len(raw) != 32 {
		return [32]byte{}, ErrSlotUnavailable
	}
	var h [32]byte
	copy(h[:], raw)
	return h, nil
}
