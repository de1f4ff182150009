package game

import (
	"github.com/ErenVance/DoomsdayArk/internal/economy"
)

// DefaultPlayer fills empty participant and referrer slots. Rewards
// routed at it are burned instead of paid.
const DefaultPlayer = "11111111111111111111111111111111"

const (
	DefaultTeamNumber   uint32 = 1_000_000
	DefaultRoundNumber  uint16 = 1
	DefaultPeriodNumber uint16 = 1
)

const (
	RegistrationReward        = 1_500 * economy.LamportsPerToken
	DailyAirdropRewardsCap    = 500_000 * economy.LamportsPerToken
	SugarRushRewardsPerSecond = 10 * economy.LamportsPerToken
	ExitRewardsPerSecond      = 1 * economy.LamportsPerToken
	TeamJoinCooldownSeconds   = economy.SecondsPerDay
)

// Budgets seeds the per-category reward pools at game creation.
type Budgets struct {
	RoundRewards        uint64
	PeriodRewards       uint64
	RegistrationRewards uint64
	AirdropRewards      uint64
	ExitRewards         uint64
	LotteryRewards      uint64
	ConsumptionRewards  uint64
	SugarRushRewards    uint64
}

// Game is the global aggregate: every pool balance, distribution
// tally, nonce and tunable the engine operates on.
type Game struct {
	Authority    string
	BotAuthority string

	DefaultTeam string

	CurrentRound  uint16
	CurrentPeriod uint16

	ConstructionRewardsPoolBalance uint64
	BonusRewardsPoolBalance        uint64
	LotteryRewardsPoolBalance      uint64
	DeveloperRewardsPoolBalance    uint64
	ReferralRewardsPoolBalance     uint64

	RoundRewardsPoolBalance        uint64
	PeriodRewardsPoolBalance       uint64
	RegistrationRewardsPoolBalance uint64
	AirdropRewardsPoolBalance      uint64
	ConsumptionRewardsPoolBalance  uint64
	ExitRewardsPoolBalance         uint64
	SugarRushRewardsPoolBalance    uint64

	DistributableConsumptionRewards uint64

	DistributedRegistrationRewards uint64
	DistributedAirdropRewards      uint64
	DistributedConsumptionRewards  uint64
	DistributedExitRewards         uint64
	DistributedStakeRewards        uint64
	DistributedConstructionRewards uint64
	DistributedBonusRewards        uint64
	DistributedLotteryRewards      uint64
	DistributedDeveloperRewards    uint64
	DistributedReferralRewards     uint64
	DistributedGrandPrizes         uint64
	DistributedIndividualRewards   uint64
	DistributedTeamRewards         uint64

	// BurnedTokens tallies every amount destroyed instead of paid
	// (orphaned referral shares, default-entry prizes, clawbacks).
	BurnedTokens uint64

	CurrentDayDistributedAirdropRewards uint64
	CurrentDayCapAirdropRewards         uint64

	RegistrationRewards       uint64
	SugarRushRewardsPerSecond uint64
	ExitRewardsPerSecond      uint64

	TeamJoinCooldownSeconds uint64

	TeamNonce   uint32
	EventNonce  uint64
	RoundNonce  uint16
	PeriodNonce uint16
	CurrentDay  uint32
}

// NewGame creates the aggregate with default tunables and the given
// pool budgets.
func NewGame(authority, botAuthority, defaultTeam string, b Budgets) *Game {
	return &Game{
		Authority:    authority,
		BotAuthority: botAuthority,
		DefaultTeam:  defaultTeam,

		TeamNonce:   DefaultTeamNumber,
		RoundNonce:  DefaultRoundNumber,
		PeriodNonce: DefaultPeriodNumber,

		RegistrationRewards:       RegistrationReward,
		SugarRushRewardsPerSecond: SugarRushRewardsPerSecond,
		ExitRewardsPerSecond:      ExitRewardsPerSecond,
		TeamJoinCooldownSeconds:   TeamJoinCooldownSeconds,

		CurrentDayCapAirdropRewards: DailyAirdropRewardsCap,

		LotteryRewardsPoolBalance:      b.LotteryRewards,
		RoundRewardsPoolBalance:        b.RoundRewards,
		PeriodRewardsPoolBalance:       b.PeriodRewards,
		RegistrationRewardsPoolBalance: b.RegistrationRewards,
		AirdropRewardsPoolBalance:      b.AirdropRewards,
		ConsumptionRewardsPoolBalance:  b.ConsumptionRewards,
		ExitRewardsPoolBalance:         b.ExitRewards,
		SugarRushRewardsPoolBalance:    b.SugarRushRewards,

		DistributableConsumptionRewards: b.ConsumptionRewards,
	}
}

// RolloverAirdropDay resets the daily airdrop spend counter when the
// day index moves.
func (g *Game) RolloverAirdropDay(day uint32) {
	if day > g.CurrentDay {
		g.CurrentDay = day
		g.CurrentDayDistributedAirdropRewards = 0
	}
}

func (g *Game) IncrementTeamNonce() uint32 {
	n := g.TeamNonce
	g.TeamNonce++
	return n
}

func (g *Game) IncrementEventNonce() uint64 {
	g.EventNonce++
	return g.EventNonce
}
