package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
	"github.com/ErenVance/DoomsdayArk/internal/slots"
	"github.com/ErenVance/DoomsdayArk/internal/stake"
)

const (
	testAuthority = "authority-wallet"
	testBot       = "bot-wallet"
)

func tok(n uint64) uint64 { return n * economy.LamportsPerToken }

type testEnv struct {
	engine *Engine
	clock  clockwork.FakeClock
	src    *slots.ScriptedSource
	events []events.TransferEvent
}

func newTestEnv() *testEnv {
	env := &testEnv{
		clock: clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0)),
		src:   slots.NewScriptedSource(1_000),
	}
	sink := events.SinkFunc(func(ev events.TransferEvent) {
		env.events = append(env.events, ev)
	})
	g := NewGame(testAuthority, testBot, TeamID(DefaultTeamNumber), Budgets{
		RoundRewards:        tok(10_000_000),
		PeriodRewards:       tok(1_000_000),
		RegistrationRewards: tok(1_000_000),
		AirdropRewards:      tok(1_000_000),
		ExitRewards:         tok(1_000_000),
		LotteryRewards:      tok(5_000_000),
		ConsumptionRewards:  tok(1_000_000),
		SugarRushRewards:    tok(1_000_000),
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.engine = NewEngine(g, stake.NewPool(tok(10_000_000), tok(10_000_000)), env.src, env.clock, logger, sink, nil)
	return env
}

func (env *testEnv) now() uint64 {
	return uint64(env.clock.Now().Unix())
}

func (env *testEnv) register(t *testing.T, id, referrer string) {
	t.Helper()
	if _, err := env.engine.Register(id, referrer); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
}

func (env *testEnv) fund(id string, tokens uint64) {
	env.engine.mu.Lock()
	env.engine.players[id].TokenBalance += tokens
	env.engine.mu.Unlock()
}

func (env *testEnv) openRoundAndPeriod(t *testing.T) {
	t.Helper()
	now := env.now()
	if _, err := env.engine.CreateRound(testBot, now, 3600, tok(100_000)); err != nil {
		t.Fatalf("create round: %v", err)
	}
	if _, err := env.engine.CreatePeriod(testBot, now, 3600, tok(10_000), tok(10_000)); err != nil {
		t.Fatalf("create period: %v", err)
	}
}

func (env *testEnv) buy(t *testing.T, id string, ores uint32) {
	t.Helper()
	if _, err := env.engine.Purchase(context.Background(), id, ores); err != nil {
		t.Fatalf("purchase %s x%d: %v", id, ores, err)
	}
}

// endRound drives the end-call quorum until the round flips over.
func (env *testEnv) endRound(t *testing.T, caller string) {
	t.Helper()
	for i := 0; i < 10; i++ {
		env.src.Advance(150)
		res, err := env.engine.Purchase(context.Background(), caller, 0)
		if err != nil {
			t.Fatalf("end call %d: %v", i, err)
		}
		if i == 9 && !res.RoundIsOver {
			t.Fatalf("round not over after %d calls", res.CallCount)
		}
	}
}

func (env *testEnv) player(t *testing.T, id string) playerSnapshot {
	t.Helper()
	p, err := env.engine.PlayerState(id)
	if err != nil {
		t.Fatalf("player state %s: %v", id, err)
	}
	return playerSnapshot{p.TokenBalance, p.VoucherBalance, p.AvailableOres,
		p.CollectableReferralRewards, p.CollectableConsumptionRewards,
		p.CollectableConstructionRewards, p.IsExited}
}

type playerSnapshot struct {
	Tokens, Vouchers               uint64
	Ores                           uint32
	Referral, Consumption, Pending uint64
	IsExited                       bool
}

// --------------------------------------------------------------------------- //

func TestRegisterPaysSignupBonus(t *testing.T) {
	env := newTestEnv()

	res, err := env.engine.Register("alice", DefaultPlayer)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.RegistrationReward != tok(1500) {
		t.Fatalf("registration reward = %d, want %d", res.RegistrationReward, tok(1500))
	}

	p, err := env.engine.PlayerState("alice")
	if err != nil {
		t.Fatalf("player state: %v", err)
	}
	if p.VoucherBalance != tok(1500) {
		t.Fatalf("voucher balance = %d, want %d", p.VoucherBalance, tok(1500))
	}
	if !p.IsExited || p.Referrer != DefaultPlayer {
		t.Fatalf("fresh player state off: exited=%v referrer=%q", p.IsExited, p.Referrer)
	}

	st := env.engine.GameState()
	if st.DistributedRegistrationRewards != tok(1500) {
		t.Fatalf("distributed registration = %d", st.DistributedRegistrationRewards)
	}

	env.register(t, "bob", "alice")
	p, _ = env.engine.PlayerState("alice")
	if p.ReferralCount != 1 {
		t.Fatalf("referral count = %d, want 1", p.ReferralCount)
	}
}

func TestRegisterRejectsBadReferrals(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", DefaultPlayer)

	if _, err := env.engine.Register("alice", DefaultPlayer); !errors.Is(err, ErrPlayerExists) {
		t.Fatalf("duplicate register err = %v", err)
	}
	if _, err := env.engine.Register("bob", "bob"); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("self referral err = %v", err)
	}
	if _, err := env.engine.Register("bob", "ghost"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("unknown referrer err = %v", err)
	}
}

func TestSetReferrer(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "carol", DefaultPlayer)

	if err := env.engine.SetReferrer("carol", "carol"); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("self referrer err = %v", err)
	}
	if err := env.engine.SetReferrer("carol", "alice"); err != nil {
		t.Fatalf("set referrer: %v", err)
	}
	if err := env.engine.SetReferrer("carol", "alice"); !errors.Is(err, ErrReferrerAlreadySet) {
		t.Fatalf("second set err = %v", err)
	}

	p, _ := env.engine.PlayerState("alice")
	if p.ReferralCount != 1 {
		t.Fatalf("referral count = %d, want 1", p.ReferralCount)
	}
}

// --------------------------------------------------------------------------- //

func TestPurchaseSplitsRevenue(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", "alice")
	env.fund("alice", tok(1_000_000))
	env.fund("bob", tok(1_000_000))

	before := env.engine.GameState()

	// First buyer: bob spends 10 ores = 10,000 tokens, vouchers first.
	res, err := env.engine.Purchase(context.Background(), "bob", 10)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if res.VoucherCost != tok(1500) || res.TokenCost != tok(8500) {
		t.Fatalf("cost split = %d/%d, want %d/%d", res.VoucherCost, res.TokenCost, tok(1500), tok(8500))
	}

	bob := env.player(t, "bob")
	if bob.Tokens != tok(1_000_000-8500) || bob.Vouchers != 0 || bob.Ores != 10 || bob.IsExited {
		t.Fatalf("bob after purchase: %+v", bob)
	}

	// With no prior ore holders the construction and bonus shares roll
	// into the grand prize: 2500+2500+3000 of the 10,000 token gross.
	r, err := env.engine.CurrentRoundState()
	if err != nil {
		t.Fatalf("round state: %v", err)
	}
	if r.GrandPrizePoolBalance != tok(100_000)+tok(8_000) {
		t.Fatalf("grand prize pool = %d, want %d", r.GrandPrizePoolBalance, tok(108_000))
	}
	if r.SoldOres != 10 || r.AvailableOres != 10 || r.EarningsPerOre != 0 {
		t.Fatalf("round ores: sold=%d avail=%d epo=%d", r.SoldOres, r.AvailableOres, r.EarningsPerOre)
	}
	if r.LastActiveParticipants[0] != "bob" {
		t.Fatalf("front participant = %q", r.LastActiveParticipants[0])
	}

	alice := env.player(t, "alice")
	if alice.Referral != tok(1000) {
		t.Fatalf("alice referral rewards = %d, want %d", alice.Referral, tok(1000))
	}
	if bob.Consumption != tok(850) {
		t.Fatalf("bob consumption rebate = %d, want %d", bob.Consumption, tok(850))
	}

	st := env.engine.GameState()
	if got := st.LotteryRewardsPoolBalance - before.LotteryRewardsPoolBalance; got != tok(1000) {
		t.Fatalf("lottery pool delta = %d, want %d", got, tok(1000))
	}
	if got := st.DeveloperRewardsPoolBalance - before.DeveloperRewardsPoolBalance; got != tok(850) {
		t.Fatalf("developer pool delta = %d, want %d", got, tok(850))
	}
	if st.ReferralRewardsPoolBalance != tok(1000) {
		t.Fatalf("referral pool = %d, want %d", st.ReferralRewardsPoolBalance, tok(1000))
	}

	// Second buyer: alice's construction share now accrues to holders.
	env.buy(t, "alice", 10)

	r, _ = env.engine.CurrentRoundState()
	if r.EarningsPerOre != tok(250) {
		t.Fatalf("earnings per ore = %d, want %d", r.EarningsPerOre, tok(250))
	}
	if r.GrandPrizePoolBalance != tok(111_000) {
		t.Fatalf("grand prize pool = %d, want %d", r.GrandPrizePoolBalance, tok(111_000))
	}

	st = env.engine.GameState()
	if st.ConstructionRewardsPoolBalance != tok(2500) || st.BonusRewardsPoolBalance != tok(2500) {
		t.Fatalf("construction/bonus pools = %d/%d", st.ConstructionRewardsPoolBalance, st.BonusRewardsPoolBalance)
	}
	// Alice has no referrer, so her referral share is destroyed.
	if st.BurnedTokens != tok(1000) {
		t.Fatalf("burned tokens = %d, want %d", st.BurnedTokens, tok(1000))
	}
}

func TestPurchaseValidation(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)

	if _, err := env.engine.Purchase(context.Background(), "ghost", 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("ghost purchase err = %v", err)
	}
	if _, err := env.engine.Purchase(context.Background(), "alice", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero-ore purchase before countdown expiry err = %v", err)
	}
	if _, err := env.engine.Purchase(context.Background(), "alice", 10); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("unfunded purchase err = %v", err)
	}
}

// --------------------------------------------------------------------------- //

func TestExitPaysAccruedRewards(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", "alice")
	env.fund("alice", tok(100_000))
	env.fund("bob", tok(100_000))

	env.buy(t, "alice", 10)
	env.buy(t, "bob", 10)

	env.clock.Advance(30 * time.Second)

	aliceBefore := env.player(t, "alice")
	res, err := env.engine.Exit("alice")
	if err != nil {
		t.Fatalf("exit: %v", err)
	}

	// Bob's buy accrued 2500 tokens of construction across alice's 10
	// ores; the bonus matches it and the exit drip ran for 30 seconds.
	if res.ConstructionRewards != tok(2500) || res.BonusRewards != tok(2500) {
		t.Fatalf("exit construction/bonus = %d/%d", res.ConstructionRewards, res.BonusRewards)
	}
	if res.ExitRewards != tok(30) {
		t.Fatalf("exit drip = %d, want %d", res.ExitRewards, tok(30))
	}

	alice := env.player(t, "alice")
	if alice.Tokens != aliceBefore.Tokens+tok(5030) {
		t.Fatalf("alice balance delta = %d, want %d", alice.Tokens-aliceBefore.Tokens, tok(5030))
	}
	if !alice.IsExited || alice.Ores != 0 {
		t.Fatalf("alice after exit: %+v", alice)
	}

	r, _ := env.engine.CurrentRoundState()
	if r.AvailableOres != 10 {
		t.Fatalf("round available ores = %d, want 10", r.AvailableOres)
	}

	st := env.engine.GameState()
	if st.ConstructionRewardsPoolBalance != 0 || st.BonusRewardsPoolBalance != 0 {
		t.Fatalf("pools not drained: construction=%d bonus=%d",
			st.ConstructionRewardsPoolBalance, st.BonusRewardsPoolBalance)
	}

	if _, err := env.engine.Exit("alice"); !errors.Is(err, ErrAlreadyExited) {
		t.Fatalf("second exit err = %v", err)
	}
	if _, err := env.engine.Exit("bob"); err != nil {
		t.Fatalf("bob exit: %v", err)
	}
}

func TestSettlePreviousRound(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", "alice")
	env.fund("alice", tok(100_000))
	env.fund("bob", tok(100_000))

	env.buy(t, "alice", 10)
	env.buy(t, "bob", 10)

	if _, err := env.engine.SettlePreviousRound("alice"); !errors.Is(err, ErrRoundNotOver) {
		t.Fatalf("settle before round over err = %v", err)
	}

	env.clock.Advance(3601 * time.Second)
	env.endRound(t, "bob")

	aliceBefore := env.player(t, "alice")
	res, err := env.engine.SettlePreviousRound("alice")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	// Construction only: the bonus match and exit drip are forfeited.
	if res.ConstructionRewards != tok(2500) || res.BonusRewards != 0 || res.ExitRewards != 0 {
		t.Fatalf("settle payout = %+v", res)
	}

	alice := env.player(t, "alice")
	if alice.Tokens != aliceBefore.Tokens+tok(2500) {
		t.Fatalf("settle balance delta = %d", alice.Tokens-aliceBefore.Tokens)
	}

	st := env.engine.GameState()
	if st.BonusRewardsPoolBalance != tok(2500) {
		t.Fatalf("bonus pool = %d, want untouched %d", st.BonusRewardsPoolBalance, tok(2500))
	}

	if _, err := env.engine.SettlePreviousRound("alice"); !errors.Is(err, ErrAlreadyExited) {
		t.Fatalf("second settle err = %v", err)
	}
}

// --------------------------------------------------------------------------- //

func TestEndCallQuorumFinalizesRound(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.fund("alice", tok(100_000))
	env.buy(t, "alice", 1)

	env.clock.Advance(3601 * time.Second)

	res, err := env.engine.Purchase(context.Background(), "alice", 0)
	if err != nil {
		t.Fatalf("end call: %v", err)
	}
	if !res.RoundEndCall || res.CallCount != 1 || res.RoundIsOver {
		t.Fatalf("first end call: %+v", res)
	}

	// Calls inside the 150-slot spacing window are swallowed.
	res, err = env.engine.Purchase(context.Background(), "alice", 0)
	if err != nil {
		t.Fatalf("spaced end call: %v", err)
	}
	if res.CallCount != 1 {
		t.Fatalf("call count after unspaced call = %d, want 1", res.CallCount)
	}

	if _, err := env.engine.DistributeNextGrandPrize(testBot, 1); !errors.Is(err, ErrRoundNotOver) {
		t.Fatalf("distribute before quorum err = %v", err)
	}

	for i := 0; i < 9; i++ {
		env.src.Advance(150)
		res, err = env.engine.Purchase(context.Background(), "alice", 0)
		if err != nil {
			t.Fatalf("end call %d: %v", i+2, err)
		}
	}
	if !res.RoundIsOver || res.CallCount != 10 {
		t.Fatalf("round after quorum: over=%v calls=%d", res.RoundIsOver, res.CallCount)
	}

	// The quorum clamps the leaderboard window shut as well.
	pd, err := env.engine.PeriodState(1)
	if err != nil {
		t.Fatalf("period state: %v", err)
	}
	if !pd.IsEnded(env.now()) {
		t.Fatalf("period still open after round end")
	}
}

func TestFinishedRoundRejectsActions(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", DefaultPlayer)
	env.fund("alice", tok(100_000))
	env.buy(t, "alice", 10)
	if err := env.engine.SetAutoReinvesting("alice"); err != nil {
		t.Fatalf("enable auto reinvest: %v", err)
	}

	env.clock.Advance(3601 * time.Second)
	env.endRound(t, "alice")

	before, err := env.engine.CurrentRoundState()
	if err != nil {
		t.Fatalf("round state: %v", err)
	}

	// A finished round is immutable: no purchases, no countdown
	// revival, no exits with the full bonus and drip.
	if _, err := env.engine.Purchase(context.Background(), "alice", 5); !errors.Is(err, ErrRoundOver) {
		t.Fatalf("purchase on finished round err = %v", err)
	}
	env.src.Advance(150)
	if _, err := env.engine.Purchase(context.Background(), "alice", 0); !errors.Is(err, ErrRoundOver) {
		t.Fatalf("end call on finished round err = %v", err)
	}
	if _, err := env.engine.Exit("alice"); !errors.Is(err, ErrRoundOver) {
		t.Fatalf("exit on finished round err = %v", err)
	}
	if _, err := env.engine.Reinvest(context.Background(), "alice"); !errors.Is(err, ErrRoundOver) {
		t.Fatalf("reinvest on finished round err = %v", err)
	}
	if err := env.engine.SetAutoReinvesting("bob"); !errors.Is(err, ErrRoundOver) {
		t.Fatalf("enable on finished round err = %v", err)
	}
	if err := env.engine.CancelAutoReinvesting("alice"); !errors.Is(err, ErrRoundOver) {
		t.Fatalf("cancel on finished round err = %v", err)
	}
	if _, err := env.engine.CandyTap("alice"); !errors.Is(err, ErrRoundOver) {
		t.Fatalf("tap on finished round err = %v", err)
	}

	after, _ := env.engine.CurrentRoundState()
	if after.EndTime != before.EndTime || after.SoldOres != before.SoldOres || after.AvailableOres != before.AvailableOres {
		t.Fatalf("finished round mutated: %+v vs %+v", after, before)
	}

	// Settlement of the dead position stays open: construction only.
	res, err := env.engine.SettlePreviousRound("alice")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if res.BonusRewards != 0 || res.ExitRewards != 0 {
		t.Fatalf("settle paid forfeited rewards: %+v", res)
	}
}

func TestGrandPrizeDistribution(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.fund("alice", tok(100_000))
	env.buy(t, "alice", 1)

	env.clock.Advance(3601 * time.Second)
	env.endRound(t, "alice")

	if _, err := env.engine.DistributeNextGrandPrize("alice", 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unauthorized distribute err = %v", err)
	}

	// Pool: 100,000 initial + 800 rolled in from the solo 1-ore buy.
	// First payout takes half plus one shared tenth of that half.
	aliceBefore := env.player(t, "alice")
	res, err := env.engine.DistributeNextGrandPrize(testBot, 1)
	if err != nil {
		t.Fatalf("distribute first: %v", err)
	}
	if res.Player != "alice" || res.Burned {
		t.Fatalf("first winner = %+v", res)
	}
	if res.GrandPrizes != tok(55_440) {
		t.Fatalf("first prize = %d, want %d", res.GrandPrizes, tok(55_440))
	}
	alice := env.player(t, "alice")
	if alice.Tokens != aliceBefore.Tokens+tok(55_440) {
		t.Fatalf("winner balance delta = %d", alice.Tokens-aliceBefore.Tokens)
	}

	burnedBefore := env.engine.GameState().BurnedTokens
	for i := 1; i < 10; i++ {
		res, err = env.engine.DistributeNextGrandPrize(testBot, 1)
		if err != nil {
			t.Fatalf("distribute %d: %v", i, err)
		}
		if !res.Burned || res.GrandPrizes != tok(5_040) {
			t.Fatalf("payout %d = %+v", i, res)
		}
	}
	if got := env.engine.GameState().BurnedTokens - burnedBefore; got != tok(45_360) {
		t.Fatalf("burned prize total = %d, want %d", got, tok(45_360))
	}

	r, _ := env.engine.RoundState(1)
	if r.GrandPrizePoolBalance != 0 || !r.IsGrandPrizeDistributionCompleted {
		t.Fatalf("round after distribution: pool=%d completed=%v",
			r.GrandPrizePoolBalance, r.IsGrandPrizeDistributionCompleted)
	}

	if _, err := env.engine.DistributeNextGrandPrize(testBot, 1); err == nil {
		t.Fatalf("expected error after distribution completed")
	}
}

// --------------------------------------------------------------------------- //

func TestReinvestDoublesBuyingPower(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", "alice")
	env.fund("alice", tok(100_000))
	env.fund("bob", tok(100_000))

	env.buy(t, "alice", 10)
	env.buy(t, "bob", 10)

	// Bob bought last and has accrued nothing yet.
	if _, err := env.engine.Reinvest(context.Background(), "bob"); !errors.Is(err, ErrInsufficientReinvestment) {
		t.Fatalf("bob reinvest err = %v", err)
	}

	// Alice holds 2500 tokens of accrued construction; reinvested at
	// double value that buys 5 ores.
	res, err := env.engine.Reinvest(context.Background(), "alice")
	if err != nil {
		t.Fatalf("reinvest: %v", err)
	}
	if res.PurchasedOres != 5 || res.HalfCost != tok(2500) {
		t.Fatalf("reinvest result = %+v", res)
	}

	alice := env.player(t, "alice")
	if alice.Ores != 15 {
		t.Fatalf("alice ores = %d, want 15", alice.Ores)
	}
	// Her own reinvest accrued 1250 tokens over the 20 pre-existing
	// ores; her 10 settle at 62.5 tokens each.
	if alice.Pending != tok(625) {
		t.Fatalf("alice pending = %d, want %d", alice.Pending, tok(625))
	}

	r, _ := env.engine.CurrentRoundState()
	if r.SoldOres != 25 || r.AvailableOres != 25 {
		t.Fatalf("round ores after reinvest: sold=%d avail=%d", r.SoldOres, r.AvailableOres)
	}
}

func TestAutoReinvestToggle(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)

	if err := env.engine.SetAutoReinvesting("alice"); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := env.engine.SetAutoReinvesting("alice"); !errors.Is(err, ErrAutoReinvestEnabled) {
		t.Fatalf("double enable err = %v", err)
	}

	r, _ := env.engine.CurrentRoundState()
	if r.AutoReinvestingPlayers != 1 {
		t.Fatalf("auto reinvesting players = %d", r.AutoReinvestingPlayers)
	}

	if err := env.engine.CancelAutoReinvesting("alice"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := env.engine.CancelAutoReinvesting("alice"); !errors.Is(err, ErrAutoReinvestNotEnabled) {
		t.Fatalf("double cancel err = %v", err)
	}
}

// --------------------------------------------------------------------------- //

func TestLotteryCommitReveal(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", DefaultPlayer)
	env.fund("alice", tok(10_000))
	if _, err := env.engine.CollateralExchange("alice", tok(5_000)); err != nil {
		t.Fatalf("collateral exchange: %v", err)
	}

	before := env.engine.GameState()
	commit, err := env.engine.DrawLottery(context.Background(), "alice")
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if commit != 999 {
		t.Fatalf("commit slot = %d, want 999", commit)
	}

	alice := env.player(t, "alice")
	if alice.Vouchers != tok(5_500) {
		t.Fatalf("voucher balance after draw = %d, want %d", alice.Vouchers, tok(5_500))
	}
	st := env.engine.GameState()
	if st.LotteryRewardsPoolBalance != before.LotteryRewardsPoolBalance+tok(1000) {
		t.Fatalf("lottery pool after draw = %d", st.LotteryRewardsPoolBalance)
	}

	if _, err := env.engine.DrawLottery(context.Background(), "alice"); !errors.Is(err, ErrResultNotRevealed) {
		t.Fatalf("second draw err = %v", err)
	}

	// The commit slot's hash is not known yet.
	if _, err := env.engine.RevealDrawLotteryResult(context.Background(), "alice"); !errors.Is(err, ErrRandomnessNotResolved) {
		t.Fatalf("premature reveal err = %v", err)
	}

	// Seed bytes {1,1,1} land three cherries: a 100x line.
	var seed [32]byte
	seed[0], seed[1], seed[2] = 1, 1, 1
	env.src.SetHash(999, seed)

	res, err := env.engine.RevealDrawLotteryResult(context.Background(), "alice")
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if res.Multiplier != 100 || res.LotteryRewards != tok(100_000) {
		t.Fatalf("reveal result = %+v", res)
	}
	if got := env.player(t, "alice").Tokens; got != tok(5_000)+tok(100_000) {
		t.Fatalf("alice tokens after win = %d", got)
	}

	if _, err := env.engine.RevealDrawLotteryResult(context.Background(), "alice"); !errors.Is(err, ErrRandomnessNotResolved) {
		t.Fatalf("double reveal err = %v", err)
	}

	// A second spin against a blank line pays nothing.
	env.src.Advance(5)
	if _, err := env.engine.DrawLottery(context.Background(), "alice"); err != nil {
		t.Fatalf("second draw: %v", err)
	}
	var blank [32]byte
	blank[0], blank[1], blank[2] = 10, 11, 12
	env.src.SetHash(1_004, blank)

	res, err = env.engine.RevealDrawLotteryResult(context.Background(), "alice")
	if err != nil {
		t.Fatalf("second reveal: %v", err)
	}
	if res.Multiplier != 0 || res.LotteryRewards != 0 {
		t.Fatalf("losing spin paid: %+v", res)
	}
}

func TestLotteryPoolFloor(t *testing.T) {
	env := &testEnv{
		clock: clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0)),
		src:   slots.NewScriptedSource(1_000),
	}
	g := NewGame(testAuthority, testBot, TeamID(DefaultTeamNumber), Budgets{
		RegistrationRewards: tok(10_000),
		LotteryRewards:      tok(500_000), // below the 1M floor
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.engine = NewEngine(g, stake.NewPool(0, 0), env.src, env.clock, logger, events.Nop{}, nil)

	env.register(t, "alice", DefaultPlayer)
	if _, err := env.engine.DrawLottery(context.Background(), "alice"); !errors.Is(err, ErrLotteryPoolTooLow) {
		t.Fatalf("draw below floor err = %v", err)
	}
}

func TestRevealFailureKeepsCommit(t *testing.T) {
	env := &testEnv{
		clock: clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0)),
		src:   slots.NewScriptedSource(1_000),
	}
	g := NewGame(testAuthority, testBot, TeamID(DefaultTeamNumber), Budgets{
		RegistrationRewards: tok(10_000),
		LotteryRewards:      tok(1_000_000), // exactly the draw floor
		RoundRewards:        tok(1_000_000),
		PeriodRewards:       tok(100_000),
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.engine = NewEngine(g, stake.NewPool(0, 0), env.src, env.clock, logger, events.Nop{}, nil)

	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", DefaultPlayer)

	// Both spins commit against slot 999 and land the 1000x line; the
	// pool can only cover one of them.
	if _, err := env.engine.DrawLottery(context.Background(), "alice"); err != nil {
		t.Fatalf("alice draw: %v", err)
	}
	if _, err := env.engine.DrawLottery(context.Background(), "bob"); err != nil {
		t.Fatalf("bob draw: %v", err)
	}
	var jackpot [32]byte
	env.src.SetHash(999, jackpot)

	res, err := env.engine.RevealDrawLotteryResult(context.Background(), "alice")
	if err != nil {
		t.Fatalf("alice reveal: %v", err)
	}
	if res.Multiplier != 1000 || res.LotteryRewards != tok(1_000_000) {
		t.Fatalf("alice jackpot = %+v", res)
	}

	if _, err := env.engine.RevealDrawLotteryResult(context.Background(), "bob"); !errors.Is(err, ErrInsufficientPoolBalance) {
		t.Fatalf("drained reveal err = %v", err)
	}
	// The failed reveal must not consume bob's winning commit.
	p, _ := env.engine.PlayerState("bob")
	if p.ResultRevealed || p.CommitSlot != 999 {
		t.Fatalf("commit consumed by failed reveal: revealed=%v slot=%d", p.ResultRevealed, p.CommitSlot)
	}

	// Purchases feed the pool their lottery share; once it covers the
	// line again the same commit resolves.
	env.openRoundAndPeriod(t)
	env.fund("bob", tok(10_000_000))
	env.buy(t, "bob", 9_980)

	res, err = env.engine.RevealDrawLotteryResult(context.Background(), "bob")
	if err != nil {
		t.Fatalf("bob retry reveal: %v", err)
	}
	if res.Multiplier != 1000 || res.LotteryRewards != tok(1_000_000) {
		t.Fatalf("bob jackpot = %+v", res)
	}
	if st := env.engine.GameState(); st.DistributedLotteryRewards != tok(2_000_000) {
		t.Fatalf("distributed lottery rewards = %d", st.DistributedLotteryRewards)
	}
}

// --------------------------------------------------------------------------- //

func TestStakeLifecycle(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", DefaultPlayer)
	env.fund("alice", tok(2_500_000))

	if _, err := env.engine.Stake("alice", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero stake err = %v", err)
	}
	if _, err := env.engine.Stake("alice", 99); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("oversized stake err = %v", err)
	}

	res, err := env.engine.Stake("alice", 2)
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	if res.OrderNumber != 1 || res.StakeAmount != tok(2_000_000) {
		t.Fatalf("stake result = %+v", res)
	}
	// Full-term rewards at 100% APR, vouchers paid immediately.
	if res.TokenRewards != tok(2_000_000) || res.VoucherRewards != tok(2_000_000) {
		t.Fatalf("stake rewards = %d/%d", res.TokenRewards, res.VoucherRewards)
	}

	alice := env.player(t, "alice")
	if alice.Tokens != tok(500_000) || alice.Vouchers != tok(2_001_500) {
		t.Fatalf("alice after stake: %+v", alice)
	}

	pool := env.engine.StakePoolState()
	if pool.StakedAmount != tok(2_000_000) || pool.ActiveOrders != 1 {
		t.Fatalf("pool after stake: staked=%d orders=%d", pool.StakedAmount, pool.ActiveOrders)
	}
	if pool.DistributableTokenRewards != tok(8_000_000) {
		t.Fatalf("distributable token rewards = %d", pool.DistributableTokenRewards)
	}

	orders, err := env.engine.StakeOrders("alice")
	if err != nil || len(orders) != 1 {
		t.Fatalf("orders = %v, %v", orders, err)
	}
	if orders[0].UnstakedTimestamp != env.now()+economy.SecondsPerYear {
		t.Fatalf("unlock timestamp = %d", orders[0].UnstakedTimestamp)
	}

	if _, err := env.engine.Unstake("alice", 1); !errors.Is(err, ErrStillLocked) {
		t.Fatalf("locked unstake err = %v", err)
	}
	if _, err := env.engine.Unstake("alice", 7); !errors.Is(err, ErrStakeOrderNotFound) {
		t.Fatalf("unknown order err = %v", err)
	}

	env.clock.Advance(365 * 24 * time.Hour)
	res, err = env.engine.Unstake("alice", 1)
	if err != nil {
		t.Fatalf("unstake: %v", err)
	}
	if res.TokenRewards != tok(2_000_000) {
		t.Fatalf("unstake rewards = %d", res.TokenRewards)
	}

	alice = env.player(t, "alice")
	if alice.Tokens != tok(4_500_000) {
		t.Fatalf("alice after unstake = %d, want %d", alice.Tokens, tok(4_500_000))
	}

	pool = env.engine.StakePoolState()
	if pool.StakedAmount != 0 || pool.ActiveOrders != 0 || pool.DistributedTokenRewards != tok(2_000_000) {
		t.Fatalf("pool after unstake: %+v", pool)
	}

	if _, err := env.engine.Unstake("alice", 1); err == nil {
		t.Fatalf("expected error on settled order")
	}
}

func TestEarlyUnstakeReprices(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", DefaultPlayer)
	env.fund("alice", tok(1_000_000))

	if _, err := env.engine.Stake("alice", 1); err != nil {
		t.Fatalf("stake: %v", err)
	}

	env.clock.Advance(73 * 24 * time.Hour)

	burnedBefore := env.engine.GameState().BurnedTokens
	res, err := env.engine.RequestEarlyUnstake("alice", 1)
	if err != nil {
		t.Fatalf("early unstake: %v", err)
	}
	// 73 days served at the 20% clawback APR on one shard.
	if res.TokenRewards != tok(40_000) || res.VoucherRewards != 0 {
		t.Fatalf("repriced rewards = %d/%d", res.TokenRewards, res.VoucherRewards)
	}

	// The voucher reward comes back out of the balance and the whole
	// difference is destroyed.
	alice := env.player(t, "alice")
	if alice.Vouchers != tok(1500) {
		t.Fatalf("vouchers after clawback = %d, want %d", alice.Vouchers, tok(1500))
	}
	if got := env.engine.GameState().BurnedTokens - burnedBefore; got != tok(1_960_000) {
		t.Fatalf("burned on early unstake = %d, want %d", got, tok(1_960_000))
	}

	if _, err := env.engine.RequestEarlyUnstake("alice", 1); !errors.Is(err, ErrStakeOrderNotFound) {
		t.Fatalf("double early unstake err = %v", err)
	}
	if _, err := env.engine.Unstake("alice", 1); !errors.Is(err, ErrStillLocked) {
		t.Fatalf("unstake before delay err = %v", err)
	}

	env.clock.Advance(24 * time.Hour)
	if _, err := env.engine.Unstake("alice", 1); err != nil {
		t.Fatalf("unstake after delay: %v", err)
	}
	if got := env.player(t, "alice").Tokens; got != tok(1_040_000) {
		t.Fatalf("alice tokens after early exit = %d, want %d", got, tok(1_040_000))
	}
}

// --------------------------------------------------------------------------- //

func TestAirdropStreak(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.fund("alice", tok(10_000))

	if _, err := env.engine.CollectAirdropReward("alice"); !errors.Is(err, ErrNoPurchaseToday) {
		t.Fatalf("collect without purchase err = %v", err)
	}

	env.buy(t, "alice", 1)
	reward, err := env.engine.CollectAirdropReward("alice")
	if err != nil {
		t.Fatalf("collect day 1: %v", err)
	}
	if reward != tok(100) {
		t.Fatalf("day 1 reward = %d, want %d", reward, tok(100))
	}
	if _, err := env.engine.CollectAirdropReward("alice"); !errors.Is(err, ErrAirdropAlreadyCollected) {
		t.Fatalf("double collect err = %v", err)
	}

	// Next day the streak grows.
	env.clock.Advance(24 * time.Hour)
	env.buy(t, "alice", 1)
	reward, err = env.engine.CollectAirdropReward("alice")
	if err != nil {
		t.Fatalf("collect day 2: %v", err)
	}
	if reward != tok(200) {
		t.Fatalf("day 2 reward = %d, want %d", reward, tok(200))
	}

	// Skipping a day resets the streak.
	env.clock.Advance(48 * time.Hour)
	env.buy(t, "alice", 1)
	reward, err = env.engine.CollectAirdropReward("alice")
	if err != nil {
		t.Fatalf("collect after gap: %v", err)
	}
	if reward != tok(100) {
		t.Fatalf("post-gap reward = %d, want %d", reward, tok(100))
	}

	// Airdrops are paid as vouchers, not tokens.
	p, _ := env.engine.PlayerState("alice")
	if p.CollectedAirdropRewards != tok(400) {
		t.Fatalf("lifetime airdrop = %d, want %d", p.CollectedAirdropRewards, tok(400))
	}
}

// --------------------------------------------------------------------------- //

func TestCandyTap(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", "alice")
	env.fund("alice", tok(100_000))
	env.fund("bob", tok(100_000))

	env.buy(t, "alice", 10)

	if _, err := env.engine.CandyTap("bob"); !errors.Is(err, ErrNoOresAvailable) {
		t.Fatalf("tap without ores err = %v", err)
	}

	env.buy(t, "bob", 5)
	env.clock.Advance(20 * time.Second)

	before := env.engine.GameState()
	bobBefore := env.player(t, "bob")
	aliceBefore := env.player(t, "alice")

	res, err := env.engine.CandyTap("alice")
	if err != nil {
		t.Fatalf("tap: %v", err)
	}
	// 20 seconds of drip at 10 tokens/s.
	if res.TotalCost != tok(200) || res.LastActiveParticipant != "bob" {
		t.Fatalf("tap result = %+v", res)
	}

	st := env.engine.GameState()
	if got := before.SugarRushRewardsPoolBalance - st.SugarRushRewardsPoolBalance; got != tok(200) {
		t.Fatalf("sugar pool delta = %d, want %d", got, tok(200))
	}
	// The referral share goes to the most recent participant and the
	// tapper keeps the consumption share.
	bob := env.player(t, "bob")
	if bob.Referral != bobBefore.Referral+tok(20) {
		t.Fatalf("bob referral delta = %d, want %d", bob.Referral-bobBefore.Referral, tok(20))
	}
	alice := env.player(t, "alice")
	if alice.Consumption != aliceBefore.Consumption+tok(20) {
		t.Fatalf("alice consumption delta = %d, want %d", alice.Consumption-aliceBefore.Consumption, tok(20))
	}
	if got := st.DeveloperRewardsPoolBalance - before.DeveloperRewardsPoolBalance; got != tok(20) {
		t.Fatalf("developer delta = %d, want %d", got, tok(20))
	}
	if got := st.ConstructionRewardsPoolBalance - before.ConstructionRewardsPoolBalance; got != tok(50) {
		t.Fatalf("construction delta = %d, want %d", got, tok(50))
	}
}

// --------------------------------------------------------------------------- //

func TestDepositAndCollateralExchange(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", DefaultPlayer)

	if err := env.engine.Deposit("alice", tok(2000)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("overdraw deposit err = %v", err)
	}
	if err := env.engine.Deposit("alice", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero deposit err = %v", err)
	}

	if err := env.engine.Deposit("alice", tok(500)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	alice := env.player(t, "alice")
	if alice.Tokens != tok(500) || alice.Vouchers != tok(1000) {
		t.Fatalf("after deposit: %+v", alice)
	}

	env.fund("alice", tok(1000))
	if _, err := env.engine.CollateralExchange("alice", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero exchange err = %v", err)
	}
	if _, err := env.engine.CollateralExchange("alice", tok(400)); err != nil {
		t.Fatalf("exchange: %v", err)
	}
	alice = env.player(t, "alice")
	if alice.Tokens != tok(1100) || alice.Vouchers != tok(1400) {
		t.Fatalf("after exchange: %+v", alice)
	}

	// The vault always backs the full voucher supply.
	if err := env.engine.Deposit("alice", tok(1400)); err != nil {
		t.Fatalf("full deposit: %v", err)
	}
	alice = env.player(t, "alice")
	if alice.Tokens != tok(2500) || alice.Vouchers != 0 {
		t.Fatalf("after full deposit: %+v", alice)
	}
}

// --------------------------------------------------------------------------- //

func TestTeamLifecycle(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", DefaultPlayer)
	env.register(t, "carol", DefaultPlayer)

	tm, err := env.engine.CreateTeam("alice")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if tm.Number != DefaultTeamNumber+1 {
		t.Fatalf("team number = %d, want %d", tm.Number, DefaultTeamNumber+1)
	}
	id := TeamID(tm.Number)

	if _, err := env.engine.CreateTeam("alice"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("second create err = %v", err)
	}

	if err := env.engine.ApplyToJoinTeam("bob", id); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := env.engine.AcceptTeamApplication("alice", id, "bob"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := env.engine.ApplyToJoinTeam("carol", id); err != nil {
		t.Fatalf("carol apply: %v", err)
	}
	// Plain members cannot work the application queue.
	if err := env.engine.RejectTeamApplication("bob", id, "carol"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("member reject err = %v", err)
	}
	if err := env.engine.GrantManagerPrivileges("alice", id, "bob"); err != nil {
		t.Fatalf("grant manager: %v", err)
	}
	if err := env.engine.RejectTeamApplication("bob", id, "carol"); err != nil {
		t.Fatalf("manager reject: %v", err)
	}

	// Rejection carries no cooldown; carol can reapply at once.
	if err := env.engine.ApplyToJoinTeam("carol", id); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if err := env.engine.AcceptTeamApplication("bob", id, "carol"); err != nil {
		t.Fatalf("manager accept: %v", err)
	}

	ts, err := env.engine.TeamState(id)
	if err != nil {
		t.Fatalf("team state: %v", err)
	}
	if len(ts.Members) != 3 {
		t.Fatalf("members = %v", ts.Members)
	}

	if err := env.engine.LeaveTeam("alice"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("captain leave err = %v", err)
	}
	if err := env.engine.LeaveTeam("carol"); err != nil {
		t.Fatalf("carol leave: %v", err)
	}
	// Leaving arms the rejoin cooldown.
	if err := env.engine.ApplyToJoinTeam("carol", id); !errors.Is(err, ErrTeamCooldownActive) {
		t.Fatalf("cooldown apply err = %v", err)
	}

	if err := env.engine.TransferTeamCaptaincy("alice", id, "bob"); err != nil {
		t.Fatalf("transfer captaincy: %v", err)
	}
	if err := env.engine.LeaveTeam("alice"); err != nil {
		t.Fatalf("ex-captain leave: %v", err)
	}

	ts, _ = env.engine.TeamState(id)
	if ts.Captain != "bob" || len(ts.Members) != 1 {
		t.Fatalf("team after churn: captain=%q members=%v", ts.Captain, ts.Members)
	}
}

func TestLeaderboardDistribution(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", DefaultPlayer)
	env.fund("alice", tok(100_000))
	env.fund("bob", tok(100_000))

	tm, err := env.engine.CreateTeam("alice")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	id := TeamID(tm.Number)

	env.buy(t, "alice", 7)
	env.buy(t, "bob", 3)

	if _, err := env.engine.DistributeLeaderboardRewards(testBot, 1); !errors.Is(err, ErrPeriodNotEnded) {
		t.Fatalf("distribute before end err = %v", err)
	}
	if _, err := env.engine.DistributeLeaderboardRewards("alice", 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unauthorized distribute err = %v", err)
	}

	env.clock.Advance(3601 * time.Second)

	aliceBefore := env.player(t, "alice")
	burnedBefore := env.engine.GameState().BurnedTokens

	res, err := env.engine.DistributeLeaderboardRewards(testBot, 1)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if res.TopPlayer != "alice" || res.IndividualRewards != tok(10_000) {
		t.Fatalf("individual payout = %+v", res)
	}

	alice := env.player(t, "alice")
	if alice.Tokens != aliceBefore.Tokens+tok(10_000) {
		t.Fatalf("top player delta = %d", alice.Tokens-aliceBefore.Tokens)
	}

	// Only one real team competed: first place pays, the vacant second
	// and third places burn.
	ts, _ := env.engine.TeamState(id)
	if ts.DistributableTeamRewards != tok(5_000) {
		t.Fatalf("team rewards = %d, want %d", ts.DistributableTeamRewards, tok(5_000))
	}
	if got := env.engine.GameState().BurnedTokens - burnedBefore; got != tok(5_000) {
		t.Fatalf("burned podium = %d, want %d", got, tok(5_000))
	}

	if _, err := env.engine.DistributeLeaderboardRewards(testBot, 1); err == nil {
		t.Fatalf("expected error on second distribution")
	}

	// The captain hands part of the pot to a member.
	if err := env.engine.DistributeTeamRewards("bob", id, "alice", tok(1000)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-captain distribute err = %v", err)
	}
	if err := env.engine.DistributeTeamRewards("alice", id, "alice", tok(2_000)); err != nil {
		t.Fatalf("team distribute: %v", err)
	}
	if err := env.engine.DistributeTeamRewards("alice", id, "alice", tok(10_000)); err == nil {
		t.Fatalf("expected error distributing beyond balance")
	}
}

// --------------------------------------------------------------------------- //

func TestCreateRoundValidation(t *testing.T) {
	env := newTestEnv()
	now := env.now()

	if _, err := env.engine.CreateRound("alice", now, 3600, 0); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unauthorized create err = %v", err)
	}
	if _, err := env.engine.CreateRound(testBot, now-1, 3600, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("past start err = %v", err)
	}
	if _, err := env.engine.CreateRound(testBot, now, 0, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero countdown err = %v", err)
	}
	if _, err := env.engine.CreateRound(testBot, now, 3600, tok(999_000_000)); !errors.Is(err, ErrInsufficientPoolBalance) {
		t.Fatalf("overfunded round err = %v", err)
	}
	if _, err := env.engine.CreatePeriod(testBot, now, 3600, 0, tok(1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero team budget err = %v", err)
	}
}

func TestCollectReferralRewards(t *testing.T) {
	env := newTestEnv()
	env.openRoundAndPeriod(t)
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", "alice")
	env.fund("bob", tok(100_000))

	if _, err := env.engine.CollectReferralRewards("alice"); !errors.Is(err, ErrNoRewardsToCollect) {
		t.Fatalf("empty collect err = %v", err)
	}

	env.buy(t, "bob", 10)

	got, err := env.engine.CollectReferralRewards("alice")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got != tok(1000) {
		t.Fatalf("referral payout = %d, want %d", got, tok(1000))
	}
	alice := env.player(t, "alice")
	if alice.Tokens != tok(1000) || alice.Referral != 0 {
		t.Fatalf("alice after collect: %+v", alice)
	}
}

// --------------------------------------------------------------------------- //

func TestEventNonceMonotonic(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", DefaultPlayer)
	env.register(t, "bob", "alice")
	env.openRoundAndPeriod(t)
	env.fund("alice", tok(100_000))
	env.buy(t, "alice", 5)
	if _, err := env.engine.Exit("alice"); err != nil {
		t.Fatalf("exit: %v", err)
	}

	if len(env.events) == 0 {
		t.Fatalf("no events captured")
	}
	for i, ev := range env.events {
		if ev.Nonce != uint64(i+1) {
			t.Fatalf("event %d nonce = %d, want %d", i, ev.Nonce, i+1)
		}
	}

	wantTypes := []events.Type{
		events.TypeRegister, events.TypeRegister,
		events.TypeCreateRound, events.TypeCreatePeriod,
		events.TypePurchase, events.TypeExit,
	}
	for i, want := range wantTypes {
		if env.events[i].Type != want {
			t.Fatalf("event %d type = %s, want %s", i, env.events[i].Type, want)
		}
	}
}
