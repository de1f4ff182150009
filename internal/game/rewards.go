package game

import (
	"github.com/ErenVance/DoomsdayArk/internal/events"
)

// CollectReferralRewards pays out accumulated referral commissions in
// tokens.
func (e *Engine) CollectReferralRewards(playerID string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return 0, err
	}

	rewards := p.CollectableReferralRewards
	if rewards == 0 {
		return 0, ErrNoRewardsToCollect
	}
	if e.state.ReferralRewardsPoolBalance < rewards {
		return 0, ErrInsufficientPoolBalance
	}

	p.CollectedReferralRewards += rewards
	p.CollectableReferralRewards = 0
	e.state.ReferralRewardsPoolBalance -= rewards
	e.state.DistributedReferralRewards += rewards
	p.TokenBalance += rewards

	e.emit(events.TypeCollectReferral, events.InitiatorPlayer, playerID, map[string]any{
		"player":           playerID,
		"referral_rewards": rewards,
	})
	return rewards, nil
}

// CollectConsumptionRewards pays out accumulated spending rebates as
// freshly minted vouchers.
func (e *Engine) CollectConsumptionRewards(playerID string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return 0, err
	}

	rewards := p.CollectableConsumptionRewards
	if rewards == 0 {
		return 0, ErrNoRewardsToCollect
	}
	if e.state.ConsumptionRewardsPoolBalance < rewards {
		return 0, ErrInsufficientPoolBalance
	}

	p.CollectedConsumptionRewards += rewards
	p.CollectableConsumptionRewards = 0
	e.state.ConsumptionRewardsPoolBalance -= rewards
	e.state.DistributedConsumptionRewards += rewards

	e.vouchers.Mint(rewards)
	e.vault.Fund(rewards)
	p.VoucherBalance += rewards

	e.emit(events.TypeCollectConsumption, events.InitiatorPlayer, playerID, map[string]any{
		"player":              playerID,
		"consumption_rewards": rewards,
	})
	return rewards, nil
}

// CollectDeveloperRewards drains the developer pool to the authority.
func (e *Engine) CollectDeveloperRewards(authority string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if authority != e.state.Authority {
		return 0, ErrUnauthorized
	}

	rewards := e.state.DeveloperRewardsPoolBalance
	e.state.DeveloperRewardsPoolBalance = 0
	e.state.DistributedDeveloperRewards += rewards

	e.emit(events.TypeCollectDeveloper, events.InitiatorSystem, authority, map[string]any{
		"developer_rewards": rewards,
	})
	return rewards, nil
}
