package game

import (
	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
)

// airdropReward maps a purchase streak length to the daily reward.
func airdropReward(consecutiveDays uint16) uint64 {
	switch consecutiveDays {
	case 1:
		return 100 * economy.LamportsPerToken
	case 2:
		return 200 * economy.LamportsPerToken
	case 3:
		return 300 * economy.LamportsPerToken
	case 4:
		return 400 * economy.LamportsPerToken
	case 5:
		return 500 * economy.LamportsPerToken
	default:
		return 1000 * economy.LamportsPerToken
	}
}

// CollectAirdropReward pays the daily streak bonus as vouchers. The
// player must have purchased today and not collected yet; payouts stop
// when the day's cap or the pool runs out.
func (e *Engine) CollectAirdropReward(playerID string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return 0, err
	}

	today := e.today()
	if p.LastCollectedAirdropDay == today {
		return 0, ErrAirdropAlreadyCollected
	}
	if p.LastPurchasedDay != today {
		return 0, ErrNoPurchaseToday
	}

	reward := airdropReward(p.ConsecutivePurchasedDays)

	e.state.RolloverAirdropDay(today)
	if e.state.CurrentDayDistributedAirdropRewards+reward > e.state.CurrentDayCapAirdropRewards {
		return 0, ErrDailyAirdropCapReached
	}
	if e.state.AirdropRewardsPoolBalance < reward {
		return 0, ErrInsufficientPoolBalance
	}

	p.CollectedAirdropRewards += reward
	p.LastCollectedAirdropDay = today

	e.state.CurrentDayDistributedAirdropRewards += reward
	e.state.AirdropRewardsPoolBalance -= reward
	e.state.DistributedAirdropRewards += reward

	e.vouchers.Mint(reward)
	e.vault.Fund(reward)
	p.VoucherBalance += reward

	e.emit(events.TypeCollectAirdrop, events.InitiatorPlayer, playerID, map[string]any{
		"player":          playerID,
		"airdrop_rewards": reward,
	})
	return reward, nil
}
