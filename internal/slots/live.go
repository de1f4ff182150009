package slots

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

// LiveSource reads the slot clock from a Solana RPC node. Slot hashes
// are cached once fetched; finalized block hashes never change.
type LiveSource struct {
	client *rpc.Client
	logger *slog.Logger

	mu     sync.Mutex
	hashes map[uint64][32]byte
}

func NewLiveSource(rpcURL string, logger *slog.Logger) *LiveSource {
	return &LiveSource{
		client: rpc.New(rpcURL),
		logger: logger,
		hashes: make(map[uint64][32]byte),
	}
}

func (s *LiveSource) CurrentSlot(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	slot, err := s.client.GetSlot(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return 0, err
	}
	return slot, nil
}

func (s *LiveSource) SlotHash(ctx context.Context, slot uint64) ([32]byte, error) {
	s.mu.Lock()
	if h, ok := s.hashes[slot]; ok {
		s.mu.Unlock()
		return h, nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	block, err := s.client.GetBlock(ctx, slot)
	if err != nil {
		s.logger.Warn("slot hash fetch failed", "slot", slot, "err", err)
		return [32]byte{}, ErrSlotUnavailable
	}

	h := [32]byte(block.Blockhash)

	s.mu.Lock()
	s.hashes[slot] = h
	s.mu.Unlock()

	return h, nil
}
