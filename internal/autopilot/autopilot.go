package autopilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/ErenVance/DoomsdayArk/internal/cache"
	"github.com/ErenVance/DoomsdayArk/internal/game"
)

const retryBackoff = 5 * time.Minute

// PlayerLister returns the wallets flagged for auto-reinvest in a round.
type PlayerLister interface {
	AutoReinvesting(ctx context.Context, roundNumber uint16) ([]string, error)
}

// Worker periodically reinvests on behalf of players who enabled
// autopilot, and walks grand prize distribution once a round is over.
// Players whose reinvest fails transiently go into a Redis retry set
// scored by next-attempt time.
type Worker struct {
	engine       *game.Engine
	players      PlayerLister
	rdb          *redis.Client
	botAuthority string
	clock        clockwork.Clock
	logger       *slog.Logger
	interval     time.Duration
}

func New(engine *game.Engine, players PlayerLister, rdb *redis.Client, botAuthority string, clock clockwork.Clock, logger *slog.Logger, interval time.Duration) *Worker {
	return &Worker{
		engine:       engine,
		players:      players,
		rdb:          rdb,
		botAuthority: botAuthority,
		clock:        clock,
		logger:       logger,
		interval:     interval,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one autopilot pass.
func (w *Worker) Sweep(ctx context.Context) {
	st := w.engine.GameState()
	if st.CurrentRound == 0 {
		return
	}

	rd, err := w.engine.RoundState(st.CurrentRound)
	if err != nil {
		w.logger.Error("autopilot round state", "err", err)
		return
	}

	if rd.IsOver {
		w.distributeGrandPrizes(rd.Number, rd.IsGrandPrizeDistributionCompleted)
		return
	}

	w.reinvestDue(ctx, rd.Number)
	w.reinvestFlagged(ctx, rd.Number)
}

// reinvestFlagged reinvests for every player flagged in the store.
func (w *Worker) reinvestFlagged(ctx context.Context, roundNumber uint16) {
	wallets, err := w.players.AutoReinvesting(ctx, roundNumber)
	if err != nil {
		w.logger.Error("autopilot list players", "err", err)
		return
	}
	for _, wallet := range wallets {
		w.reinvest(ctx, roundNumber, wallet)
	}
}

// reinvestDue retries wallets parked in the Redis backoff set whose
// next-attempt time has passed.
func (w *Worker) reinvestDue(ctx context.Context, roundNumber uint16) {
	key := fmt.Sprintf(cache.KeyAutopilot, roundNumber)
	now := w.clock.Now().Unix()
	members, err := w.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now),
	}).Result()
	if err != nil {
		w.logger.Error("autopilot retry scan", "err", err)
		return
	}
	for _, wallet := range members {
		if err := w.rdb.ZRem(ctx, key, wallet).Err(); err != nil {
			w.logger.Error("autopilot retry dequeue", "wallet", wallet, "err", err)
			continue
		}
		w.reinvest(ctx, roundNumber, wallet)
	}
}

func (w *Worker) reinvest(ctx context.Context, roundNumber uint16, wallet string) {
	_, err := w.engine.AutoReinvest(ctx, w.botAuthority, wallet)
	switch {
	case err == nil:
		w.logger.Info("autopilot reinvested", "wallet", wallet, "round", roundNumber)
	case errors.Is(err, game.ErrInsufficientReinvestment):
		// Not enough rewards accrued yet; park for a retry.
		w.park(ctx, roundNumber, wallet)
	case errors.Is(err, game.ErrAutoReinvestNotEnabled),
		errors.Is(err, game.ErrAlreadyExited),
		errors.Is(err, game.ErrRoundNotStarted),
		errors.Is(err, game.ErrRoundOver):
		// Flag cleared or round state moved on; drop silently.
	default:
		w.logger.Warn("autopilot reinvest failed", "wallet", wallet, "err", err)
	}
}

func (w *Worker) park(ctx context.Context, roundNumber uint16, wallet string) {
	key := fmt.Sprintf(cache.KeyAutopilot, roundNumber)
	due := w.clock.Now().Add(retryBackoff).Unix()
	if err := w.rdb.ZAdd(ctx, key, redis.Z{Score: float64(due), Member: wallet}).Err(); err != nil {
		w.logger.Error("autopilot park", "wallet", wallet, "err", err)
	}
}

// distributeGrandPrizes pays out one pending grand prize per sweep
// until the round's queue is exhausted.
func (w *Worker) distributeGrandPrizes(roundNumber uint16, completed bool) {
	if completed {
		return
	}
	res, err := w.engine.DistributeNextGrandPrize(w.botAuthority, roundNumber)
	if err != nil {
		w.logger.Warn("autopilot grand prize", "round", roundNumber, "err", err)
		return
	}
	w.logger.Info("autopilot grand prize paid",
		"round", roundNumber, "index", res.Index, "winner", res.Player, "amount", res.GrandPrizes)
}
