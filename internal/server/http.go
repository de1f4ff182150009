package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ErenVance/DoomsdayArk/internal/auth"
	"github.com/ErenVance/DoomsdayArk/internal/config"
	"github.com/ErenVance/DoomsdayArk/internal/game"
	"github.com/ErenVance/DoomsdayArk/internal/leaderboard"
	"github.com/ErenVance/DoomsdayArk/internal/store"
)

type Server struct {
	cfg     *config.Config
	db      *pgxpool.Pool
	rdb     *redis.Client
	hub     *Hub
	logger  *slog.Logger
	mux     *http.ServeMux
	engine  *game.Engine
	players *store.PlayerStore
	teams   *store.TeamStore
	rounds  *store.RoundStore
	periods *store.PeriodStore
	orders  *store.OrderStore
	events  *store.EventStore
	boards  *leaderboard.Service
	metrics *Metrics
}

func New(cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client, engine *game.Engine, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		db:      db,
		rdb:     rdb,
		hub:     hub,
		logger:  logger,
		mux:     http.NewServeMux(),
		engine:  engine,
		players: store.NewPlayerStore(db),
		teams:   store.NewTeamStore(db),
		rounds:  store.NewRoundStore(db),
		periods: store.NewPeriodStore(db),
		orders:  store.NewOrderStore(db),
		events:  store.NewEventStore(db),
		boards:  leaderboard.NewService(rdb, logger),
		metrics: NewMetrics(),
	}
	s.routes()
	return s
}

func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /metrics", s.metrics.ServeHTTP)
	s.mux.Handle("GET /ws", s.hub)

	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	// Public read model
	s.mux.HandleFunc("GET /api/game", s.handleGameState)
	s.mux.HandleFunc("GET /api/rounds/current", s.handleCurrentRound)
	s.mux.HandleFunc("GET /api/rounds/{number}", s.handleGetRound)
	s.mux.HandleFunc("GET /api/periods/{number}", s.handleGetPeriod)
	s.mux.HandleFunc("GET /api/players/{id}", s.handleGetPlayer)
	s.mux.HandleFunc("GET /api/players/{id}/orders", s.handleGetOrders)
	s.mux.HandleFunc("GET /api/players/{id}/history", s.handlePlayerHistory)
	s.mux.HandleFunc("GET /api/teams/{id}", s.handleGetTeam)
	s.mux.HandleFunc("GET /api/leaderboard/players", s.handlePlayerBoard)
	s.mux.HandleFunc("GET /api/leaderboard/teams", s.handleTeamBoard)
	s.mux.HandleFunc("GET /api/leaderboard/rank/{playerID}", s.handlePlayerRank)

	// Player operations
	s.authed("POST /api/register", s.handleRegister)
	s.authed("POST /api/purchase", s.handlePurchase)
	s.authed("POST /api/exit", s.handleExit)
	s.authed("POST /api/settle", s.handleSettle)
	s.authed("POST /api/candy-tap", s.handleCandyTap)
	s.authed("POST /api/reinvest", s.handleReinvest)
	s.authed("POST /api/auto-reinvest/enable", s.handleEnableAutoReinvest)
	s.authed("POST /api/auto-reinvest/cancel", s.handleCancelAutoReinvest)
	s.authed("POST /api/lottery/draw", s.handleDraw)
	s.authed("POST /api/lottery/reveal", s.handleReveal)
	s.authed("POST /api/airdrop", s.handleAirdrop)
	s.authed("POST /api/rewards/referral", s.handleCollectReferral)
	s.authed("POST /api/rewards/consumption", s.handleCollectConsumption)
	s.authed("POST /api/stake", s.handleStake)
	s.authed("POST /api/stake/early-unstake", s.handleEarlyUnstake)
	s.authed("POST /api/stake/unstake", s.handleUnstake)
	s.authed("POST /api/deposit", s.handleDeposit)
	s.authed("POST /api/exchange", s.handleExchange)

	// Team operations
	s.authed("POST /api/teams", s.handleCreateTeam)
	s.authed("POST /api/teams/apply", s.handleApplyToTeam)
	s.authed("POST /api/teams/accept", s.handleAcceptApplication)
	s.authed("POST /api/teams/reject", s.handleRejectApplication)
	s.authed("POST /api/teams/leave", s.handleLeaveTeam)
	s.authed("POST /api/teams/remove", s.handleRemoveMember)
	s.authed("POST /api/teams/grant-manager", s.handleGrantManager)
	s.authed("POST /api/teams/revoke-manager", s.handleRevokeManager)
	s.authed("POST /api/teams/transfer-captaincy", s.handleTransferCaptaincy)
	s.authed("POST /api/teams/distribute", s.handleDistributeTeamRewards)

	// Authority operations; the engine checks the caller against the
	// configured authority keys.
	s.authed("POST /api/admin/rounds", s.handleCreateRound)
	s.authed("POST /api/admin/periods", s.handleCreatePeriod)
	s.authed("POST /api/admin/grand-prize", s.handleDistributeGrandPrize)
	s.authed("POST /api/admin/leaderboard-rewards", s.handleDistributeLeaderboard)
	s.authed("POST /api/admin/developer-rewards", s.handleCollectDeveloper)
}

func (s *Server) authed(pattern string, fn http.HandlerFunc) {
	s.mux.Handle(pattern, AuthMiddleware(s.cfg.AuthSecret)(fn))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}

	if err := s.db.Ping(ctx); err != nil {
		status["db"] = "down"
		status["status"] = "degraded"
	} else {
		status["db"] = "ok"
	}

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		status["redis"] = "down"
		status["status"] = "degraded"
	} else {
		status["redis"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if status["status"] != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("write json", "err", err)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wallet    string `json:"wallet"`
		Message   string `json:"message"`
		Signature string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := auth.VerifyWalletSignature(req.Wallet, req.Message, req.Signature, time.Now()); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	token := auth.Sign(req.Wallet, s.cfg.AuthSecret, time.Now())
	writeJSON(w, map[string]string{"token": token})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.GameState())
}

func (s *Server) handleCurrentRound(w http.ResponseWriter, r *http.Request) {
	rd, err := s.engine.CurrentRoundState()
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, rd)
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	number, err := parseUint16(r.PathValue("number"))
	if err != nil {
		http.Error(w, "bad round number", http.StatusBadRequest)
		return
	}
	rd, err := s.engine.RoundState(number)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, rd)
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	number, err := parseUint16(r.PathValue("number"))
	if err != nil {
		http.Error(w, "bad period number", http.StatusBadRequest)
		return
	}
	pd, err := s.engine.PeriodState(number)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, pd)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.PlayerState(r.PathValue("id"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, p)
}

func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.engine.StakeOrders(r.PathValue("id"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, orders)
}

func (s *Server) handlePlayerHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.events.InitiatorHistory(r.Context(), r.PathValue("id"), 100)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	t, err := s.engine.TeamState(r.PathValue("id"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, t)
}

func (s *Server) handlePlayerBoard(w http.ResponseWriter, r *http.Request) {
	st := s.engine.GameState()
	entries, err := s.boards.TopPlayers(r.Context(), st.CurrentPeriod, boardCount(r))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleTeamBoard(w http.ResponseWriter, r *http.Request) {
	st := s.engine.GameState()
	entries, err := s.boards.TopTeams(r.Context(), st.CurrentPeriod, boardCount(r))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handlePlayerRank(w http.ResponseWriter, r *http.Request) {
	st := s.engine.GameState()
	entry, err := s.boards.PlayerRank(r.Context(), st.CurrentPeriod, r.PathValue("playerID"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if entry == nil {
		http.Error(w, "not ranked", http.StatusNotFound)
		return
	}
	writeJSON(w, entry)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		Referrer string `json:"referrer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Referrer == "" {
		req.Referrer = game.DefaultPlayer
	}
	res, err := s.engine.Register(wallet, req.Referrer)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, res)
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		Ores uint32 `json:"ores"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := s.engine.Purchase(r.Context(), wallet, req.Ores)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.metrics.IncrPurchase()
	s.persistPlayer(r.Context(), wallet)
	s.persistRound(r.Context(), res.Round)
	writeJSON(w, res)
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	res, err := s.engine.Exit(wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.metrics.IncrExit()
	s.persistPlayer(r.Context(), wallet)
	s.persistRound(r.Context(), res.Round)
	writeJSON(w, res)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	res, err := s.engine.SettlePreviousRound(wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, res)
}

func (s *Server) handleCandyTap(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	res, err := s.engine.CandyTap(wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	s.persistRound(r.Context(), res.Round)
	writeJSON(w, res)
}

func (s *Server) handleReinvest(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	res, err := s.engine.Reinvest(r.Context(), wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	s.persistRound(r.Context(), res.Round)
	writeJSON(w, res)
}

func (s *Server) handleEnableAutoReinvest(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	if err := s.engine.SetAutoReinvesting(wallet); err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, map[string]string{"status": "enabled"})
}

func (s *Server) handleCancelAutoReinvest(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	if err := s.engine.CancelAutoReinvesting(wallet); err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, map[string]string{"status": "cancelled"})
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	commitSlot, err := s.engine.DrawLottery(r.Context(), wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.metrics.IncrDraw()
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, map[string]uint64{"commit_slot": commitSlot})
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	res, err := s.engine.RevealDrawLotteryResult(r.Context(), wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, res)
}

func (s *Server) handleAirdrop(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	reward, err := s.engine.CollectAirdropReward(wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, map[string]uint64{"airdrop_reward": reward})
}

func (s *Server) handleCollectReferral(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	amount, err := s.engine.CollectReferralRewards(wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, map[string]uint64{"referral_rewards": amount})
}

func (s *Server) handleCollectConsumption(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	amount, err := s.engine.CollectConsumptionRewards(wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, map[string]uint64{"consumption_rewards": amount})
}

func (s *Server) handleStake(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		Shards uint64 `json:"shards"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := s.engine.Stake(wallet, req.Shards)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	s.persistOrder(r.Context(), wallet, res.OrderNumber)
	writeJSON(w, res)
}

func (s *Server) handleEarlyUnstake(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		OrderNumber uint16 `json:"order_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := s.engine.RequestEarlyUnstake(wallet, req.OrderNumber)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	s.persistOrder(r.Context(), wallet, req.OrderNumber)
	writeJSON(w, res)
}

func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		OrderNumber uint16 `json:"order_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := s.engine.Unstake(wallet, req.OrderNumber)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	s.persistOrder(r.Context(), wallet, req.OrderNumber)
	writeJSON(w, res)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		Amount uint64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := s.engine.Deposit(wallet, req.Amount); err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		Amount uint64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	vouchers, err := s.engine.CollateralExchange(wallet, req.Amount)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, map[string]uint64{"vouchers": vouchers})
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	t, err := s.engine.CreateTeam(wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	if _, err := s.teams.Create(r.Context(), game.TeamID(t.Number), t.Number, wallet); err != nil {
		s.logger.Error("persist team", "team", t.Number, "err", err)
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, t)
}

type teamRequest struct {
	TeamID string `json:"team_id"`
	Player string `json:"player"`
	Amount uint64 `json:"amount"`
}

func (s *Server) handleApplyToTeam(w http.ResponseWriter, r *http.Request) {
	s.teamOp(w, r, func(wallet string, req teamRequest) error {
		return s.engine.ApplyToJoinTeam(wallet, req.TeamID)
	})
}

func (s *Server) handleAcceptApplication(w http.ResponseWriter, r *http.Request) {
	s.teamOp(w, r, func(wallet string, req teamRequest) error {
		return s.engine.AcceptTeamApplication(wallet, req.TeamID, req.Player)
	})
}

func (s *Server) handleRejectApplication(w http.ResponseWriter, r *http.Request) {
	s.teamOp(w, r, func(wallet string, req teamRequest) error {
		return s.engine.RejectTeamApplication(wallet, req.TeamID, req.Player)
	})
}

func (s *Server) handleLeaveTeam(w http.ResponseWriter, r *http.Request) {
	s.teamOp(w, r, func(wallet string, req teamRequest) error {
		return s.engine.LeaveTeam(wallet)
	})
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	s.teamOp(w, r, func(wallet string, req teamRequest) error {
		return s.engine.RemoveMemberFromTeam(wallet, req.TeamID, req.Player)
	})
}

func (s *Server) handleGrantManager(w http.ResponseWriter, r *http.Request) {
	s.teamOp(w, r, func(wallet string, req teamRequest) error {
		return s.engine.GrantManagerPrivileges(wallet, req.TeamID, req.Player)
	})
}

func (s *Server) handleRevokeManager(w http.ResponseWriter, r *http.Request) {
	s.teamOp(w, r, func(wallet string, req teamRequest) error {
		return s.engine.RevokeManagerPrivileges(wallet, req.TeamID, req.Player)
	})
}

func (s *Server) handleTransferCaptaincy(w http.ResponseWriter, r *http.Request) {
	s.teamOp(w, r, func(wallet string, req teamRequest) error {
		return s.engine.TransferTeamCaptaincy(wallet, req.TeamID, req.Player)
	})
}

func (s *Server) handleDistributeTeamRewards(w http.ResponseWriter, r *http.Request) {
	s.teamOp(w, r, func(wallet string, req teamRequest) error {
		return s.engine.DistributeTeamRewards(wallet, req.TeamID, req.Player, req.Amount)
	})
}

func (s *Server) teamOp(w http.ResponseWriter, r *http.Request, op func(wallet string, req teamRequest) error) {
	wallet := WalletFrom(r.Context())
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := op(wallet, req); err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistPlayer(r.Context(), wallet)
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		StartTime          uint64 `json:"start_time"`
		CountdownSeconds   uint64 `json:"countdown_seconds"`
		InitialGrandPrizes uint64 `json:"initial_grand_prizes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	rd, err := s.engine.CreateRound(wallet, req.StartTime, req.CountdownSeconds, req.InitialGrandPrizes)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistRound(r.Context(), rd.Number)
	writeJSON(w, rd)
}

func (s *Server) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		StartTime         uint64 `json:"start_time"`
		DurationSeconds   uint64 `json:"duration_seconds"`
		TeamRewards       uint64 `json:"team_rewards"`
		IndividualRewards uint64 `json:"individual_rewards"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	pd, err := s.engine.CreatePeriod(wallet, req.StartTime, req.DurationSeconds, req.TeamRewards, req.IndividualRewards)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	if err := s.periods.Save(r.Context(), pd); err != nil {
		s.logger.Error("persist period", "period", pd.Number, "err", err)
	}
	writeJSON(w, pd)
}

func (s *Server) handleDistributeGrandPrize(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		Round uint16 `json:"round"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := s.engine.DistributeNextGrandPrize(wallet, req.Round)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	s.persistRound(r.Context(), req.Round)
	writeJSON(w, res)
}

func (s *Server) handleDistributeLeaderboard(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	var req struct {
		Period uint16 `json:"period"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := s.engine.DistributeLeaderboardRewards(wallet, req.Period)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleCollectDeveloper(w http.ResponseWriter, r *http.Request) {
	wallet := WalletFrom(r.Context())
	amount, err := s.engine.CollectDeveloperRewards(wallet)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, map[string]uint64{"developer_rewards": amount})
}

// persistPlayer writes the engine's current player snapshot to the
// durable store, best effort.
func (s *Server) persistPlayer(ctx context.Context, wallet string) {
	p, err := s.engine.PlayerState(wallet)
	if err != nil {
		return
	}
	if err := s.players.Save(ctx, &p); err != nil {
		s.logger.Error("persist player", "wallet", wallet, "err", err)
	}
}

func (s *Server) persistRound(ctx context.Context, number uint16) {
	rd, err := s.engine.RoundState(number)
	if err != nil {
		return
	}
	if err := s.rounds.Save(ctx, &rd); err != nil {
		s.logger.Error("persist round", "round", number, "err", err)
	}
}

func (s *Server) persistOrder(ctx context.Context, wallet string, number uint16) {
	orders, err := s.engine.StakeOrders(wallet)
	if err != nil {
		return
	}
	for i := range orders {
		if orders[i].Number != number {
			continue
		}
		if err := s.orders.Save(ctx, wallet, &orders[i]); err != nil {
			s.logger.Error("persist order", "wallet", wallet, "order", number, "err", err)
		}
		return
	}
}

func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	switch {
	case errors.Is(err, game.ErrPlayerNotFound),
		errors.Is(err, game.ErrTeamNotFound),
		errors.Is(err, game.ErrRoundNotFound),
		errors.Is(err, game.ErrPeriodNotFound),
		errors.Is(err, game.ErrStakeOrderNotFound):
		code = http.StatusNotFound
	case errors.Is(err, game.ErrUnauthorized):
		code = http.StatusForbidden
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) Handler() http.Handler {
	limiter := NewRateLimiter(30, 60)
	return ChainMiddleware(s.mux,
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
		RateLimitMiddleware(limiter, s.logger),
	)
}

func boardCount(r *http.Request) int64 {
	count := int64(50)
	if c := r.URL.Query().Get("count"); c != "" {
		if n, err := strconv.ParseInt(c, 10, 64); err == nil && n > 0 && n <= 100 {
			count = n
		}
	}
	return count
}

func parseUint16(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	return uint16(n), err
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
}
