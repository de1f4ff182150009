package game

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
	"github.com/ErenVance/DoomsdayArk/internal/period"
	"github.com/ErenVance/DoomsdayArk/internal/player"
	"github.com/ErenVance/DoomsdayArk/internal/round"
	"github.com/ErenVance/DoomsdayArk/internal/slots"
	"github.com/ErenVance/DoomsdayArk/internal/stake"
	"github.com/ErenVance/DoomsdayArk/internal/team"
	"github.com/ErenVance/DoomsdayArk/internal/voucher"
)

// BoardMirror pushes leaderboard scores to an external read model.
// Calls happen inside the engine lock and must not block.
type BoardMirror interface {
	RecordPlayerOres(ctx context.Context, periodNumber uint16, playerID string, ores uint32)
	RecordTeamOres(ctx context.Context, periodNumber uint16, teamID string, ores uint32)
}

// NopMirror discards leaderboard updates.
type NopMirror struct{}

func (NopMirror) RecordPlayerOres(context.Context, uint16, string, uint32) {}
func (NopMirror) RecordTeamOres(context.Context, uint16, string, uint32) {}

// Engine executes every game operation against the in-memory state
// under a single lock. Operations either commit fully, with exactly
// one event emitted, or leave the state untouched.
type Engine struct {
	mu sync.Mutex

	clock  clockwork.Clock
	slots  slots.Source
	logger *slog.Logger
	sink   events.Sink
	mirror BoardMirror

	state    *Game
	vouchers *voucher.Voucher
	vault    *voucher.Vault
	stake    *stake.Pool

	players map[string]*player.Player
	teams   map[string]*team.Team
	rounds  map[uint16]*round.Round
	periods map[uint16]*period.Period

	// orders is keyed by player, then by order number (the player
	// nonce at stake time).
	orders map[string]map[uint16]*stake.Order
}

func NewEngine(state *Game, pool *stake.Pool, src slots.Source, clock clockwork.Clock, logger *slog.Logger, sink events.Sink, mirror BoardMirror) *Engine {
	if mirror == nil {
		mirror = NopMirror{}
	}
	e := &Engine{
		clock:    clock,
		slots:    src,
		logger:   logger,
		sink:     sink,
		mirror:   mirror,
		state:    state,
		vouchers: &voucher.Voucher{},
		vault:    &voucher.Vault{},
		stake:    pool,
		players:  make(map[string]*player.Player),
		teams:    make(map[string]*team.Team),
		rounds:   make(map[uint16]*round.Round),
		periods:  make(map[uint16]*period.Period),
		orders:   make(map[string]map[uint16]*stake.Order),
	}

	// The default player and team absorb unattributed flows: empty
	// participant slots, orphaned referrals, vacant podium places.
	now := uint64(clock.Now().Unix())
	e.players[DefaultPlayer] = player.New(DefaultPlayer, DefaultPlayer, state.DefaultTeam)
	e.teams[state.DefaultTeam] = team.New(DefaultTeamNumber, DefaultPlayer, now)

	return e
}

func (e *Engine) now() uint64 {
	return uint64(e.clock.Now().Unix())
}

func (e *Engine) today() uint32 {
	return uint32(e.now() / economy.SecondsPerDay)
}

func (e *Engine) currentSlot(ctx context.Context) (uint64, error) {
	return e.slots.CurrentSlot(ctx)
}

// emit assigns the next event nonce and hands the record to the sink.
// Must only be called once per committed operation.
func (e *Engine) emit(t events.Type, it events.InitiatorType, initiator string, data any) {
	ev := events.TransferEvent{
		Type:          t,
		Nonce:         e.state.IncrementEventNonce(),
		Data:          data,
		InitiatorType: it,
		Initiator:     initiator,
		Timestamp:     e.now(),
	}
	e.sink.Emit(ev)
	e.logger.Debug("event committed", "type", string(t), "nonce", ev.Nonce, "initiator", initiator)
}

func (e *Engine) playerByID(id string) (*player.Player, error) {
	p, ok := e.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

func (e *Engine) teamByID(id string) (*team.Team, error) {
	t, ok := e.teams[id]
	if !ok {
		return nil, ErrTeamNotFound
	}
	return t, nil
}

func (e *Engine) roundByNumber(n uint16) (*round.Round, error) {
	r, ok := e.rounds[n]
	if !ok {
		return nil, ErrRoundNotFound
	}
	return r, nil
}

func (e *Engine) periodByNumber(n uint16) (*period.Period, error) {
	p, ok := e.periods[n]
	if !ok {
		return nil, ErrPeriodNotFound
	}
	return p, nil
}

// currentRound returns the round the game points at, or
// ErrRoundNotStarted when none has been created yet.
func (e *Engine) currentRound() (*round.Round, error) {
	if e.state.CurrentRound == 0 {
		return nil, ErrRoundNotStarted
	}
	return e.roundByNumber(e.state.CurrentRound)
}

func (e *Engine) currentPeriod() (*period.Period, error) {
	if e.state.CurrentPeriod == 0 {
		return nil, ErrPeriodNotFound
	}
	return e.periodByNumber(e.state.CurrentPeriod)
}

// burn destroys an amount instead of paying it out.
func (e *Engine) burn(amount uint64) {
	e.state.BurnedTokens += amount
}
