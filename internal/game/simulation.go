package game

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
	"github.com/ErenVance/DoomsdayArk/internal/slots"
	"github.com/ErenVance/DoomsdayArk/internal/stake"
)

// Archetype selects a scripted player behavior profile.
type Archetype int

const (
	Conservative Archetype = iota
	Aggressive
	Whale
	Casual
)

func (a Archetype) String() string {
	return [...]string{"Conservative", "Aggressive", "Whale", "Casual"}[a]
}

// SimConfig fully describes a deterministic economy simulation.
type SimConfig struct {
	Players int
	Seed    int64

	// Steps is the number of discrete simulation steps; each step
	// advances the fake clock by StepInterval. Zero defaults apply.
	Steps        int
	StepInterval time.Duration

	// FundingTokens is credited to every player's wallet up front.
	FundingTokens uint64

	Budgets      Budgets
	StakeTokens  uint64
	RoundPrizes  uint64
	CountdownSec uint64

	SilentMode bool
}

// SimPlayerStat accumulates one simulated player's lifetime numbers.
type SimPlayerStat struct {
	Archetype Archetype

	Purchases int
	Reinvests int
	Exits     int
	Draws     int
	Taps      int
	Rejected  int

	SpentTokens      uint64
	CollectedTokens  uint64
	GrandPrizesWon   uint64
	LotteryWon       uint64
	FinalTokens      uint64
	FinalVouchers    uint64
	FinalOres        uint32
	PendingSettle    bool
	ConsecutiveDays  uint16
	CollectedAirdrop uint64
}

// SimResult reports the outcome of one full simulation run.
type SimResult struct {
	Steps           int
	RoundsCompleted int
	PeriodsClosed   int

	GrandPrizesPaid uint64
	LotteryPaid     uint64
	DeveloperTake   uint64
	BurnedTokens    uint64
	EventCounts     map[events.Type]int

	PlayerStats map[string]*SimPlayerStat
	FinalState  Game
}

const (
	defaultSimSteps    = 2_000
	defaultSimInterval = time.Minute
)

// RunSimulation executes a deterministic multiplayer economy run. No
// goroutines and no wall clock: a fake clock drives both game time and
// the synthetic slot chain, so a given seed always replays the same
// history.
//
// Per step:
//  1. Advance the clock one interval.
//  2. If the round countdown expired, poke end calls until the round
//     flips over, then distribute grand prizes and open the next round.
//  3. Roll period boundaries the same way.
//  4. Let every player act per their archetype script.
func RunSimulation(cfg SimConfig) SimResult {
	steps := cfg.Steps
	if steps <= 0 {
		steps = defaultSimSteps
	}
	interval := cfg.StepInterval
	if interval <= 0 {
		interval = defaultSimInterval
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	genesis := time.Unix(1_700_000_000, 0)
	clock := clockwork.NewFakeClockAt(genesis)

	var seed [32]byte
	rng.Read(seed[:])
	src := slots.NewSyntheticSource(clock, genesis, seed)

	counts := make(map[events.Type]int)
	var sink events.Sink = events.Nop{}
	if !cfg.SilentMode {
		sink = events.SinkFunc(func(ev events.TransferEvent) {
			counts[ev.Type]++
		})
	}

	authority := "sim-authority"
	bot := "sim-bot"
	state := NewGame(authority, bot, TeamID(DefaultTeamNumber), cfg.Budgets)
	pool := stake.NewPool(cfg.StakeTokens, cfg.StakeTokens)
	e := NewEngine(state, pool, src, clock, slog.New(slog.NewTextHandler(io.Discard, nil)), sink, nil)

	ctx := context.Background()

	// Seed the population. Roughly a third conservative, a quarter
	// aggressive, a sixth whales, the rest casual.
	ids := make([]string, cfg.Players)
	stats := make(map[string]*SimPlayerStat, cfg.Players)
	for i := range ids {
		id := fmt.Sprintf("sim-wallet-%04d", i+1)
		ids[i] = id

		referrer := DefaultPlayer
		if i > 0 && rng.Float64() < 0.6 {
			referrer = ids[rng.Intn(i)]
		}
		if _, err := e.Register(id, referrer); err != nil {
			panic(fmt.Sprintf("sim register: %v", err))
		}

		e.mu.Lock()
		e.players[id].TokenBalance += cfg.FundingTokens
		e.mu.Unlock()

		var arch Archetype
		switch r := rng.Float64(); {
		case r < 0.35:
			arch = Conservative
		case r < 0.60:
			arch = Aggressive
		case r < 0.75:
			arch = Whale
		default:
			arch = Casual
		}
		stats[id] = &SimPlayerStat{Archetype: arch}
	}

	// One slot must exist before the first lottery draw.
	clock.Advance(interval)

	now := uint64(clock.Now().Unix())
	countdown := cfg.CountdownSec
	if countdown == 0 {
		countdown = 3600
	}
	if _, err := e.CreateRound(bot, now, countdown, cfg.RoundPrizes); err != nil {
		panic(fmt.Sprintf("sim create round: %v", err))
	}
	periodBudget := cfg.Budgets.PeriodRewards / 4
	if _, err := e.CreatePeriod(bot, now, uint64(steps)*uint64(interval.Seconds())/4+1, periodBudget, periodBudget); err != nil {
		panic(fmt.Sprintf("sim create period: %v", err))
	}

	result := SimResult{
		EventCounts: counts,
		PlayerStats: stats,
	}

	for step := 0; step < steps; step++ {
		clock.Advance(interval)
		now = uint64(clock.Now().Unix())

		result.RoundsCompleted += e.simRolloverRound(ctx, bot, ids, stats, now, countdown, cfg.RoundPrizes)
		result.PeriodsClosed += e.simRolloverPeriod(bot, now, uint64(steps)*uint64(interval.Seconds())/4+1, periodBudget)

		for _, id := range ids {
			simAct(ctx, e, rng, id, stats[id])
		}
	}

	result.Steps = steps
	e.mu.Lock()
	for _, id := range ids {
		p := e.players[id]
		st := stats[id]
		st.FinalTokens = p.TokenBalance
		st.FinalVouchers = p.VoucherBalance
		st.FinalOres = p.AvailableOres
		st.PendingSettle = !p.IsExited
		st.ConsecutiveDays = p.ConsecutivePurchasedDays
		st.CollectedAirdrop = p.CollectedAirdropRewards
		st.GrandPrizesWon = p.CollectedGrandPrizes
		st.LotteryWon = p.CollectedLotteryRewards
	}
	result.FinalState = *e.state
	e.mu.Unlock()

	result.GrandPrizesPaid = result.FinalState.DistributedGrandPrizes
	result.LotteryPaid = result.FinalState.DistributedLotteryRewards
	result.DeveloperTake = result.FinalState.DeveloperRewardsPoolBalance + result.FinalState.DistributedDeveloperRewards
	result.BurnedTokens = result.FinalState.BurnedTokens
	return result
}

// simRolloverRound drives a finished round through its end calls and
// grand prize queue, then opens the next one. Returns 1 when a round
// was closed out.
func (e *Engine) simRolloverRound(ctx context.Context, bot string, ids []string, stats map[string]*SimPlayerStat, now, countdown, prizes uint64) int {
	r, err := e.CurrentRoundState()
	if err != nil {
		return 0
	}
	if !r.IsOver {
		if r.EndTime > now {
			return 0
		}
		// Expired but not confirmed: one end call per step. The slot
		// spacing rule swallows calls that come too quickly.
		if _, err := e.Purchase(ctx, ids[0], 0); err != nil {
			return 0
		}
		r, err = e.CurrentRoundState()
		if err != nil || !r.IsOver {
			return 0
		}
	}

	for !r.IsGrandPrizeDistributionCompleted {
		if _, err := e.DistributeNextGrandPrize(bot, r.Number); err != nil {
			break
		}
		r, err = e.RoundState(r.Number)
		if err != nil {
			break
		}
	}

	// Everyone still holding a position settles out of the dead round.
	for _, id := range ids {
		if _, err := e.SettlePreviousRound(id); err == nil {
			stats[id].Exits++
		}
	}

	if _, err := e.CreateRound(bot, now, countdown, prizes); err != nil {
		return 1
	}
	return 1
}

func (e *Engine) simRolloverPeriod(bot string, now, duration, budget uint64) int {
	pd, err := e.currentPeriodState()
	if err != nil || !pd.IsEnded(now) {
		return 0
	}
	if !pd.IsDistributionCompleted {
		if _, err := e.DistributeLeaderboardRewards(bot, pd.Number); err != nil {
			return 0
		}
	}
	if _, err := e.CreatePeriod(bot, now, duration, budget, budget); err != nil {
		return 1
	}
	return 1
}

func (e *Engine) currentPeriodState() (periodSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pd, err := e.currentPeriod()
	if err != nil {
		return periodSnapshot{}, err
	}
	return periodSnapshot{
		Number:                  pd.Number,
		EndTime:                 pd.EndTime,
		IsDistributionCompleted: pd.IsDistributionCompleted,
	}, nil
}

type periodSnapshot struct {
	Number                  uint16
	EndTime                 uint64
	IsDistributionCompleted bool
}

func (p periodSnapshot) IsEnded(now uint64) bool { return now >= p.EndTime }

// simAct performs at most one action for a player this step, chosen by
// archetype. Rejections are normal: they exercise the engine's guard
// paths.
func simAct(ctx context.Context, e *Engine, rng *rand.Rand, id string, st *SimPlayerStat) {
	act := func(err error) {
		if err != nil {
			st.Rejected++
		}
	}

	switch st.Archetype {
	case Conservative:
		switch r := rng.Float64(); {
		case r < 0.15:
			res, err := e.Purchase(ctx, id, uint32(1+rng.Intn(3)))
			if err == nil {
				st.Purchases++
				st.SpentTokens += res.TokenCost
			}
			act(err)
		case r < 0.20:
			if _, err := e.Exit(id); err == nil {
				st.Exits++
			} else {
				st.Rejected++
			}
		case r < 0.30:
			if amount, err := e.CollectReferralRewards(id); err == nil {
				st.CollectedTokens += amount
			}
		}

	case Aggressive:
		switch r := rng.Float64(); {
		case r < 0.40:
			res, err := e.Purchase(ctx, id, uint32(5+rng.Intn(16)))
			if err == nil {
				st.Purchases++
				st.SpentTokens += res.TokenCost
			}
			act(err)
		case r < 0.55:
			if _, err := e.Reinvest(ctx, id); err == nil {
				st.Reinvests++
			} else {
				st.Rejected++
			}
		case r < 0.62:
			if _, err := e.CandyTap(id); err == nil {
				st.Taps++
			} else {
				st.Rejected++
			}
		}

	case Whale:
		switch r := rng.Float64(); {
		case r < 0.25:
			res, err := e.Purchase(ctx, id, uint32(50+rng.Intn(151)))
			if err == nil {
				st.Purchases++
				st.SpentTokens += res.TokenCost
			}
			act(err)
		case r < 0.32:
			// Top up vouchers from the wallet, then gamble.
			if _, err := e.CollateralExchange(id, 2_000*economy.LamportsPerToken); err != nil {
				st.Rejected++
				return
			}
			if _, err := e.DrawLottery(ctx, id); err == nil {
				st.Draws++
			} else {
				st.Rejected++
			}
		case r < 0.40:
			if _, err := e.RevealDrawLotteryResult(ctx, id); err != nil {
				st.Rejected++
			}
		case r < 0.45:
			if _, err := e.Stake(id, 1); err != nil {
				st.Rejected++
			}
		}

	case Casual:
		switch r := rng.Float64(); {
		case r < 0.08:
			res, err := e.Purchase(ctx, id, uint32(1+rng.Intn(2)))
			if err == nil {
				st.Purchases++
				st.SpentTokens += res.TokenCost
			}
			act(err)
		case r < 0.20:
			if amount, err := e.CollectAirdropReward(id); err == nil {
				st.CollectedTokens += amount
			}
		case r < 0.25:
			if amount, err := e.CollectConsumptionRewards(id); err == nil {
				st.CollectedTokens += amount
			}
		}
	}
}
