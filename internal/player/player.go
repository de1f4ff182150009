package player

import (
	"errors"

	"github.com/ErenVance/DoomsdayArk/internal/economy"
)

const maxTeamApplications = 3

var (
	ErrTeamApplicationListFull = errors.New("player: team application list full")
	ErrAlreadyAppliedToTeam    = errors.New("player: already applied to this team")
	ErrApplicationNotFound     = errors.New("player: team application not found")
	ErrNotInTeam               = errors.New("player: not in a team")
)

// Player is the per-account state. Mutation happens under the engine
// lock; the struct itself carries no synchronization.
type Player struct {
	ID    string
	Nonce uint16

	// Wallet balances, mirrored to the durable store
	TokenBalance   uint64
	VoucherBalance uint64

	// Team membership
	Team             string
	TeamApplications []string
	CanApplyToTeamAt uint64

	// Referral
	Referrer                   string
	ReferralCount              uint16
	CollectableReferralRewards uint64
	CollectedReferralRewards   uint64

	// Round and period participation
	CurrentRound               uint16
	CurrentPeriod              uint16
	CurrentPeriodPurchasedOres uint32
	IsExited                   bool

	// Reward-per-share settlement snapshot
	EarningsPerOre                 uint64
	CollectableConstructionRewards uint64

	AvailableOres     uint32
	PurchasedOres     uint32
	IsAutoReinvesting bool

	// Daily purchase streak
	ConsecutivePurchasedDays uint16
	LastPurchasedDay         uint32

	// Airdrop
	LastCollectedAirdropDay uint32
	CollectedAirdropRewards uint64

	// Lottery commit-reveal
	RandomnessProvider string
	CommitSlot         uint64
	SpinSymbols        [3]uint8
	ResultMultiplier   uint64
	ResultRevealed     bool

	// Lifetime reward tallies
	CollectedConstructionRewards  uint64
	CollectedGrandPrizes          uint64
	CollectableConsumptionRewards uint64
	CollectedConsumptionRewards   uint64
	CollectedExitRewards          uint64
	CollectedLotteryRewards       uint64
	CollectedIndividualRewards    uint64
	CollectedTeamRewards          uint64
}

// New initializes a fresh player. A new player starts exited with the
// previous lottery result marked revealed so the first draw is valid.
func New(id, referrer, team string) *Player {
	return &Player{
		ID:             id,
		Nonce:          1,
		Team:           team,
		Referrer:       referrer,
		IsExited:       true,
		ResultRevealed: true,
	}
}

func (p *Player) IncrementNonce() {
	p.Nonce++
}

func (p *Player) IncrementReferralCount() {
	p.ReferralCount++
}

// Settle realizes construction earnings accrued since the last
// snapshot. Must run before AvailableOres changes and again after new
// ores are added so the new units start from the current accumulator.
// The round accumulator only grows; a snapshot ahead of it fails
// without touching the player.
func (p *Player) Settle(roundEarningsPerOre uint64) error {
	delta, err := economy.Sub(roundEarningsPerOre, p.EarningsPerOre)
	if err != nil {
		return err
	}
	earned, err := economy.Mul(delta, uint64(p.AvailableOres))
	if err != nil {
		return err
	}
	collectable, err := economy.Add(p.CollectableConstructionRewards, earned)
	if err != nil {
		return err
	}
	p.CollectableConstructionRewards = collectable
	p.EarningsPerOre = roundEarningsPerOre
	return nil
}

// ExitRound resets the player's in-round state after an exit or a
// previous-round settlement.
func (p *Player) ExitRound() {
	p.EarningsPerOre = 0
	p.AvailableOres = 0
	p.IsAutoReinvesting = false
	p.IsExited = true
}

// RecordPurchaseDay maintains the consecutive purchase-day streak:
// same day is a no-op, the next day extends the streak, a gap resets
// it to one.
func (p *Player) RecordPurchaseDay(currentDay uint32) {
	if p.LastPurchasedDay != currentDay {
		if p.LastPurchasedDay+1 == currentDay {
			p.ConsecutivePurchasedDays++
		} else {
			p.ConsecutivePurchasedDays = 1
		}
	}
	p.LastPurchasedDay = currentDay
}

// UpdateRandomness stores a lottery commitment and invalidates the
// previous spin.
func (p *Player) UpdateRandomness(provider string, commitSlot uint64) {
	p.RandomnessProvider = provider
	p.CommitSlot = commitSlot
	p.SpinSymbols = [3]uint8{}
	p.ResultMultiplier = 0
	p.ResultRevealed = false
}

func (p *Player) SetReferrer(referrer string) {
	p.Referrer = referrer
}

func (p *Player) ResetPeriodData() {
	p.CurrentPeriodPurchasedOres = 0
}

// JoinTeam sets the player's current team.
func (p *Player) JoinTeam(team string) {
	p.Team = team
}

// LeaveTeam resets the player to the default team and arms the
// reapplication cooldown.
func (p *Player) LeaveTeam(defaultTeam string, canApplyAt uint64) error {
	if p.Team == defaultTeam {
		return ErrNotInTeam
	}
	p.Team = defaultTeam
	p.CanApplyToTeamAt = canApplyAt
	return nil
}

func (p *Player) hasAppliedTo(team string) bool {
	for _, t := range p.TeamApplications {
		if t == team {
			return true
		}
	}
	return false
}

// ApplyToJoinTeam records an outgoing application.
func (p *Player) ApplyToJoinTeam(team string) error {
	if len(p.TeamApplications) >= maxTeamApplications {
		return ErrTeamApplicationListFull
	}
	if p.hasAppliedTo(team) {
		return ErrAlreadyAppliedToTeam
	}
	p.TeamApplications = append(p.TeamApplications, team)
	return nil
}

// AcceptTeamApplication joins the team and clears every pending
// application.
func (p *Player) AcceptTeamApplication(team string) error {
	if !p.hasAppliedTo(team) {
		return ErrApplicationNotFound
	}
	p.JoinTeam(team)
	p.TeamApplications = nil
	return nil
}

// RejectTeamApplication drops a single pending application.
func (p *Player) RejectTeamApplication(team string) error {
	if !p.hasAppliedTo(team) {
		return ErrApplicationNotFound
	}
	kept := p.TeamApplications[:0]
	for _, t := range p.TeamApplications {
		if t != team {
			kept = append(kept, t)
		}
	}
	p.TeamApplications = kept
	return nil
}
