package main

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"

	"github.com/ErenVance/DoomsdayArk/internal/autopilot"
	"github.com/ErenVance/DoomsdayArk/internal/cache"
	"github.com/ErenVance/DoomsdayArk/internal/config"
	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
	"github.com/ErenVance/DoomsdayArk/internal/game"
	"github.com/ErenVance/DoomsdayArk/internal/leaderboard"
	"github.com/ErenVance/DoomsdayArk/internal/server"
	"github.com/ErenVance/DoomsdayArk/internal/slots"
	"github.com/ErenVance/DoomsdayArk/internal/stake"
	"github.com/ErenVance/DoomsdayArk/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect db", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	clock := clockwork.NewRealClock()
	src := newSlotSource(cfg, clock, logger)

	// Durable event trail: persisted to postgres and appended to a
	// redis stream off the engine's hot path.
	eventStore := store.NewEventStore(db)
	eventCh := make(chan events.TransferEvent, 1024)
	go drainEvents(ctx, eventCh, eventStore, rdb, logger)
	asyncSink := events.SinkFunc(func(ev events.TransferEvent) {
		select {
		case eventCh <- ev:
		default:
			logger.Warn("event buffer full, dropping", "nonce", ev.Nonce)
		}
	})

	hub := server.NewHub(cfg.AuthSecret, logger)
	sink := events.Multi{asyncSink, hub.Sink()}

	boards := leaderboard.NewService(rdb, logger)

	state := game.NewGame(cfg.Authority, cfg.BotAuthority, game.TeamID(game.DefaultTeamNumber), game.Budgets{
		RoundRewards:        200_000_000 * economy.LamportsPerToken,
		PeriodRewards:       100_000_000 * economy.LamportsPerToken,
		RegistrationRewards: 30_000_000 * economy.LamportsPerToken,
		AirdropRewards:      50_000_000 * economy.LamportsPerToken,
		ExitRewards:         40_000_000 * economy.LamportsPerToken,
		LotteryRewards:      10_000_000 * economy.LamportsPerToken,
		ConsumptionRewards:  50_000_000 * economy.LamportsPerToken,
		SugarRushRewards:    20_000_000 * economy.LamportsPerToken,
	})
	stakePool := stake.NewPool(
		100_000_000*economy.LamportsPerToken,
		100_000_000*economy.LamportsPerToken,
	)

	engine := game.NewEngine(state, stakePool, src, clock, logger, sink, boards)

	srv := server.New(cfg, db, rdb, engine, hub, logger)

	pilot := autopilot.New(engine, store.NewPlayerStore(db), rdb, cfg.BotAuthority, clock, logger, cfg.AutopilotEvery)
	go pilot.Run(ctx)

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

func newLogger(env string) *slog.Logger {
	if env == "development" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// newSlotSource picks the chain slot source: a live RPC connection
// when one is configured, a clock-derived synthetic chain otherwise.
func newSlotSource(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) slots.Source {
	if cfg.SolanaRPCURL != "" {
		return slots.NewLiveSource(cfg.SolanaRPCURL, logger)
	}
	logger.Warn("no solana rpc configured, using synthetic slots")
	seed := sha256.Sum256([]byte(cfg.AuthSecret))
	return slots.NewSyntheticSource(clock, clock.Now(), seed)
}

func drainEvents(ctx context.Context, ch <-chan events.TransferEvent, es *store.EventStore, rdb *redis.Client, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			recCtx, recCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := es.Record(recCtx, ev); err != nil {
				logger.Error("record event", "nonce", ev.Nonce, "err", err)
			}
			if err := rdb.XAdd(recCtx, &redis.XAddArgs{
				Stream: cache.KeyEventStream,
				MaxLen: 100_000,
				Approx: true,
				Values: map[string]any{
					"type":      string(ev.Type),
					"nonce":     ev.Nonce,
					"initiator": ev.Initiator,
					"timestamp": ev.Timestamp,
				},
			}).Err(); err != nil {
				logger.Error("stream event", "nonce", ev.Nonce, "err", err)
			}
			recCancel()
		}
	}
}
