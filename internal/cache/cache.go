package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

const (
	KeyRoundState  = "round:%d:state"
	KeyPlayerBoard = "leaderboard:ores:player:period:%d"
	KeyTeamBoard   = "leaderboard:ores:team:period:%d"
	KeyEventStream = "events:transfer"
	KeyAutopilot   = "autopilot:retries:round:%d"
)
