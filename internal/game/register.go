package game

import (
	"github.com/ErenVance/DoomsdayArk/internal/events"
	"github.com/ErenVance/DoomsdayArk/internal/player"
)

// RegisterResult reports what a registration paid out.
type RegisterResult struct {
	Player             string `json:"player"`
	Referrer           string `json:"referrer"`
	RegistrationReward uint64 `json:"registration_reward"`
}

// Register onboards a new player. The referrer must already be
// registered; pass the default player for referral-less signups.
// While the registration pool lasts, the signup bonus is minted to
// the player as vouchers.
func (e *Engine) Register(playerID, referrer string) (*RegisterResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if playerID == referrer {
		return nil, ErrSelfReferral
	}
	if _, ok := e.players[playerID]; ok {
		return nil, ErrPlayerExists
	}
	ref, err := e.playerByID(referrer)
	if err != nil {
		return nil, err
	}

	p := player.New(playerID, referrer, e.state.DefaultTeam)
	e.players[playerID] = p
	ref.IncrementReferralCount()

	var reward uint64
	if e.state.RegistrationRewardsPoolBalance >= e.state.RegistrationRewards {
		reward = e.state.RegistrationRewards
		e.state.RegistrationRewardsPoolBalance -= reward
		e.state.DistributedRegistrationRewards += reward
		e.vouchers.Mint(reward)
		e.vault.Fund(reward)
		p.VoucherBalance += reward
	}

	res := &RegisterResult{Player: playerID, Referrer: referrer, RegistrationReward: reward}
	e.emit(events.TypeRegister, events.InitiatorPlayer, playerID, res)
	return res, nil
}

// SetReferrer binds a referrer after the fact. Only allowed while the
// player still points at the default player.
func (e *Engine) SetReferrer(playerID, referrer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if playerID == referrer {
		return ErrSelfReferral
	}
	p, err := e.playerByID(playerID)
	if err != nil {
		return err
	}
	ref, err := e.playerByID(referrer)
	if err != nil {
		return err
	}
	if p.Referrer != DefaultPlayer {
		return ErrReferrerAlreadySet
	}

	p.SetReferrer(referrer)
	ref.IncrementReferralCount()

	e.emit(events.TypeSetReferrer, events.InitiatorPlayer, playerID, map[string]string{
		"player":   playerID,
		"referrer": referrer,
	})
	return nil
}
