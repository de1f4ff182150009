package round

import "errors"

const (
	// ActionTimeExtension is added to the countdown on every
	// qualifying action; MaxCountdownSeconds caps how far out the
	// end time can sit.
	ActionTimeExtension uint64 = 60
	MaxCountdownSeconds uint64 = 3600

	// End-of-round confirmation: calls must be spaced at least
	// EndCallSlotInterval slots apart, and EndCallQuorum distinct
	// calls flip the round over.
	EndCallSlotInterval uint64 = 150
	EndCallQuorum       uint8  = 10

	maxParticipants = 10
	totalWinners    = 10
)

var (
	ErrInsufficientGrandPrizePool = errors.New("round: insufficient grand prize pool balance")
	ErrInsufficientOres           = errors.New("round: insufficient ores for subtraction")
	ErrDistributionCompleted      = errors.New("round: grand prize distribution already completed")
	ErrOver                       = errors.New("round: round is over")
	ErrNotOver                    = errors.New("round: round is not over")
)

// Round holds the full mutable state for one mining round.
type Round struct {
	Number uint16

	StartTime uint64
	EndTime   uint64

	LastCallSlot uint64
	CallCount    uint8

	// EarningsPerOre is the cumulative construction reward paid per
	// available ore; players settle against it lazily.
	EarningsPerOre uint64

	SoldOres      uint32
	AvailableOres uint32

	GrandPrizePoolBalance uint64

	FirstGrandPrizes  uint64
	SecondGrandPrizes uint64

	DistributedGrandPrizes      uint64
	GrandPrizeDistributionIndex uint8

	// LastActiveParticipants is most-recent-first, deduplicated,
	// capacity 10. Seeded with the default player so the grand prize
	// queue is always full.
	LastActiveParticipants []string

	AutoReinvestingPlayers uint16

	IsOver                            bool
	IsGrandPrizeDistributionCompleted bool

	LastCollectedExitRewardTimestamp      uint64
	LastCollectedSugarRushRewardTimestamp uint64
}

// New creates a round whose countdown runs from startTime for
// countdownSeconds. Slots the default player into every participant
// position.
func New(number uint16, grandPrizePool, startTime, countdownSeconds uint64, defaultPlayer string) *Round {
	participants := make([]string, maxParticipants)
	for i := range participants {
		participants[i] = defaultPlayer
	}
	return &Round{
		Number:                                number,
		StartTime:                             startTime,
		EndTime:                               startTime + countdownSeconds,
		GrandPrizePoolBalance:                 grandPrizePool,
		LastActiveParticipants:                participants,
		LastCollectedExitRewardTimestamp:      startTime,
		LastCollectedSugarRushRewardTimestamp: startTime,
	}
}

// IsOngoing reports whether the round accepts purchases at now.
func (r *Round) IsOngoing(now uint64) bool {
	return !r.IsOver && now >= r.StartTime && now < r.EndTime
}

// UpdateEndTime extends the countdown after a qualifying action and
// resets the end-call confirmation state. Within the last hour each
// action pushes the end out by a minute, never beyond now+1h; an
// already-expired countdown restarts at now+1m.
func (r *Round) UpdateEndTime(now uint64) {
	r.LastCallSlot = 0
	r.CallCount = 0

	if now > r.EndTime {
		r.EndTime = now + ActionTimeExtension
		return
	}

	if r.EndTime-now > MaxCountdownSeconds {
		return
	}

	extended := max64(r.EndTime, now) + ActionTimeExtension
	maxEnd := now + MaxCountdownSeconds
	if extended < maxEnd {
		r.EndTime = extended
	} else {
		r.EndTime = maxEnd
	}
}

// RecordEndCall registers one round-end confirmation call at
// currentSlot. Calls inside the slot spacing window are silently
// ignored. Returns true once the quorum is reached and the round has
// been flipped over.
func (r *Round) RecordEndCall(currentSlot uint64) bool {
	if currentSlot < r.LastCallSlot+EndCallSlotInterval {
		return false
	}
	r.LastCallSlot = currentSlot
	r.CallCount++
	if r.CallCount >= EndCallQuorum {
		r.IsOver = true
		return true
	}
	return false
}

// TouchParticipant moves a player to the front of the last-active
// list, evicting the oldest entry when full.
func (r *Round) TouchParticipant(player string) {
	kept := r.LastActiveParticipants[:0]
	for _, p := range r.LastActiveParticipants {
		if p != player {
			kept = append(kept, p)
		}
	}
	r.LastActiveParticipants = kept
	if len(r.LastActiveParticipants) >= maxParticipants {
		r.LastActiveParticipants = r.LastActiveParticipants[:maxParticipants-1]
	}
	r.LastActiveParticipants = append([]string{player}, r.LastActiveParticipants...)
}

// AccrueEarnings spreads a construction amount across the currently
// available ores and adds it to the per-ore accumulator.
func (r *Round) AccrueEarnings(construction uint64) {
	divisor := uint64(r.AvailableOres)
	if divisor == 0 {
		divisor = 1
	}
	r.EarningsPerOre += construction / divisor
}

// AddOres registers newly purchased ores.
func (r *Round) AddOres(ores uint32) {
	r.SoldOres += ores
	r.AvailableOres += ores
}

// SubtractOres removes a player's ores at exit or settlement.
func (r *Round) SubtractOres(ores uint32) error {
	if r.AvailableOres < ores {
		return ErrInsufficientOres
	}
	r.AvailableOres -= ores
	return nil
}

// NextGrandPrize pops the next payout from the grand prize queue.
// The first call splits the pool: the front participant takes half
// the pool plus one shared tenth, the other nine take a shared tenth
// each. Returns the amount and the participant index it belongs to.
func (r *Round) NextGrandPrize() (uint64, int, error) {
	if r.IsGrandPrizeDistributionCompleted {
		return 0, 0, ErrDistributionCompleted
	}
	if r.GrandPrizeDistributionIndex == 0 {
		half := r.GrandPrizePoolBalance / 2
		shared := half / totalWinners
		r.FirstGrandPrizes = half + shared
		r.SecondGrandPrizes = shared
	}

	amount := r.SecondGrandPrizes
	if r.GrandPrizeDistributionIndex == 0 {
		amount = r.FirstGrandPrizes
	}

	if r.GrandPrizePoolBalance < amount {
		return 0, 0, ErrInsufficientGrandPrizePool
	}
	r.GrandPrizePoolBalance -= amount
	r.DistributedGrandPrizes += amount

	index := int(r.GrandPrizeDistributionIndex)
	r.GrandPrizeDistributionIndex++
	if r.GrandPrizeDistributionIndex == totalWinners {
		r.IsGrandPrizeDistributionCompleted = true
	}
	return amount, index, nil
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
