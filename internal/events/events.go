package events

// Type identifies which operation produced a TransferEvent.
type Type string

const (
	TypeInitialize          Type = "initialize"
	TypeRegister            Type = "register"
	TypePurchase            Type = "purchase"
	TypeReinvest            Type = "reinvest"
	TypeAutoReinvest        Type = "auto_reinvest"
	TypeSetAutoReinvest     Type = "set_auto_reinvest"
	TypeCancelAutoReinvest  Type = "cancel_auto_reinvest"
	TypeCandyTap            Type = "candy_tap"
	TypeExit                Type = "exit"
	TypeSettlePrevious      Type = "settle_previous_round"
	TypeRoundEnd            Type = "round_end"
	TypeCreateRound         Type = "create_round"
	TypeCreatePeriod        Type = "create_period"
	TypeDistributeGrand     Type = "distribute_grand_prizes"
	TypeDistributeBoards    Type = "distribute_leaderboard_rewards"
	TypeDrawLottery         Type = "draw_lottery"
	TypeRevealLottery       Type = "reveal_draw_lottery_result"
	TypeCollectAirdrop      Type = "collect_airdrop_reward"
	TypeCollectReferral     Type = "collect_referral_reward"
	TypeCollectConsumption  Type = "collect_consumption_rewards"
	TypeCollectDeveloper    Type = "collect_developer_rewards"
	TypeSetReferrer         Type = "set_referrer"
	TypeStake               Type = "stake"
	TypeRequestEarlyUnstake Type = "request_early_unstake"
	TypeUnstake             Type = "unstake"
	TypeDeposit             Type = "deposit"
	TypeCollateralExchange  Type = "collateral_exchange"
	TypeCreateTeam          Type = "create_team"
	TypeApplyToJoinTeam     Type = "apply_to_join_team"
	TypeAcceptApplication   Type = "accept_team_application"
	TypeRejectApplication   Type = "reject_team_application"
	TypeLeaveTeam           Type = "leave_team"
	TypeRemoveMember        Type = "remove_member_from_team"
	TypeGrantManager        Type = "grant_manager_privileges"
	TypeRevokeManager       Type = "revoke_manager_privileges"
	TypeTransferCaptaincy   Type = "transfer_team_captaincy"
	TypeDistributeTeam      Type = "distribute_team_rewards"
)

// InitiatorType classifies who triggered the event.
type InitiatorType string

const (
	InitiatorSystem  InitiatorType = "system"
	InitiatorPlayer  InitiatorType = "player"
	InitiatorTeam    InitiatorType = "team"
	InitiatorLottery InitiatorType = "lottery"
	InitiatorVoucher InitiatorType = "voucher"
	InitiatorStake   InitiatorType = "stake"
	InitiatorDeposit InitiatorType = "deposit"
)

// TransferEvent is the audit record every committed operation emits.
// Nonce carries the game-level event nonce, which increases by exactly
// one per committed operation.
type TransferEvent struct {
	Type          Type          `json:"type"`
	Nonce         uint64        `json:"nonce"`
	Data          any           `json:"data"`
	InitiatorType InitiatorType `json:"initiator_type"`
	Initiator     string        `json:"initiator"`
	Timestamp     uint64        `json:"timestamp"`
}

// Sink receives committed events. Implementations must not block the
// caller; slow consumers drop or buffer on their side.
type Sink interface {
	Emit(ev TransferEvent)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev TransferEvent)

func (f SinkFunc) Emit(ev TransferEvent) { f(ev) }

// Multi fans one event out to several sinks.
type Multi []Sink

func (m Multi) Emit(ev TransferEvent) {
	for _, s := range m {
		s.Emit(ev)
	}
}

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(TransferEvent) {}
