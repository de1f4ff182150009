package game

import "errors"

var (
	ErrRoundNotStarted    = errors.New("game: round has not started")
	ErrRoundNotFound      = errors.New("game: round not found")
	ErrPeriodNotFound     = errors.New("game: period not found")
	ErrPlayerNotFound     = errors.New("game: player not found")
	ErrPlayerExists       = errors.New("game: player already registered")
	ErrTeamNotFound       = errors.New("game: team not found")
	ErrStakeOrderNotFound = errors.New("game: stake order not found")
	ErrUnauthorized       = errors.New("game: caller is not authorized")

	ErrInvalidAmount            = errors.New("game: invalid amount")
	ErrInsufficientFunds        = errors.New("game: insufficient funds to pay fee")
	ErrInsufficientPoolBalance  = errors.New("game: insufficient pool balance")
	ErrNeedSettlePreviousRound  = errors.New("game: previous round must be settled first")
	ErrAlreadyExited            = errors.New("game: player already exited")
	ErrNoOresAvailable          = errors.New("game: player holds no ores")
	ErrNoRewardsToCollect       = errors.New("game: no rewards to collect")
	ErrSelfReferral             = errors.New("game: cannot refer yourself")
	ErrReferrerAlreadySet       = errors.New("game: referrer already set")
	ErrInsufficientReinvestment = errors.New("game: rewards too small to reinvest")
	ErrAutoReinvestEnabled      = errors.New("game: auto reinvest already enabled")
	ErrAutoReinvestNotEnabled   = errors.New("game: auto reinvest not enabled")
	ErrRoundNotOver             = errors.New("game: round is not over")
	ErrRoundOver                = errors.New("game: round already ended")
	ErrPeriodNotEnded           = errors.New("game: period has not ended")
	ErrParticipantMismatch      = errors.New("game: participant does not match index")

	ErrLotteryPoolTooLow     = errors.New("game: lottery pool below minimum")
	ErrResultNotRevealed     = errors.New("game: previous draw result not revealed")
	ErrResultAlreadyRevealed = errors.New("game: draw result already revealed")
	ErrRandomnessExpired     = errors.New("game: randomness seed expired")
	ErrRandomnessNotResolved = errors.New("game: randomness not resolved")

	ErrAirdropAlreadyCollected = errors.New("game: airdrop already collected today")
	ErrNoPurchaseToday         = errors.New("game: no purchase made today")
	ErrDailyAirdropCapReached  = errors.New("game: daily airdrop cap reached")

	ErrTeamCooldownActive = errors.New("game: team join cooldown still active")
	ErrStillLocked        = errors.New("game: stake order is still locked")
)
