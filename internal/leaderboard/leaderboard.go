package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ErenVance/DoomsdayArk/internal/cache"
)

type Entry struct {
	Key   string
	Ores  uint32
	Rank  int64
	Score float64
}

// Service mirrors the period leaderboards into redis sorted sets so
// reads never touch the engine lock. The engine state stays the
// source of truth; the mirror is best effort.
type Service struct {
	rdb     *redis.Client
	logger  *slog.Logger
	updates chan boardUpdate
}

type boardUpdate struct {
	key    string
	member string
	score  float64
}

func NewService(rdb *redis.Client, logger *slog.Logger) *Service {
	s := &Service{
		rdb:     rdb,
		logger:  logger,
		updates: make(chan boardUpdate, 1024),
	}
	go s.flushUpdates()
	return s
}

// RecordPlayerOres sets a player's period score. Part of the engine's
// board mirror, which runs under the engine lock: the write is queued
// and flushed off that path, and dropped when the buffer is full.
func (s *Service) RecordPlayerOres(ctx context.Context, periodNumber uint16, playerID string, ores uint32) {
	s.enqueue(boardUpdate{
		key:    fmt.Sprintf(cache.KeyPlayerBoard, periodNumber),
		member: playerID,
		score:  float64(ores),
	})
}

// RecordTeamOres sets a team's period score.
func (s *Service) RecordTeamOres(ctx context.Context, periodNumber uint16, teamID string, ores uint32) {
	s.enqueue(boardUpdate{
		key:    fmt.Sprintf(cache.KeyTeamBoard, periodNumber),
		member: teamID,
		score:  float64(ores),
	})
}

func (s *Service) enqueue(u boardUpdate) {
	select {
	case s.updates <- u:
	default:
		s.logger.Warn("leaderboard mirror buffer full, dropping", "key", u.key, "member", u.member)
	}
}

func (s *Service) flushUpdates() {
	for u := range s.updates {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.rdb.ZAdd(ctx, u.key, redis.Z{Score: u.score, Member: u.member}).Err(); err != nil {
			s.logger.Warn("leaderboard mirror write failed", "key", u.key, "err", err)
		}
		cancel()
	}
}

// TopPlayers returns the top N players by period ores.
func (s *Service) TopPlayers(ctx context.Context, periodNumber uint16, count int64) ([]Entry, error) {
	return s.topFromSortedSet(ctx, fmt.Sprintf(cache.KeyPlayerBoard, periodNumber), count)
}

// TopTeams returns the top N teams by period ores.
func (s *Service) TopTeams(ctx context.Context, periodNumber uint16, count int64) ([]Entry, error) {
	return s.topFromSortedSet(ctx, fmt.Sprintf(cache.KeyTeamBoard, periodNumber), count)
}

// PlayerRank returns a player's standing in a period, or nil when the
// player never scored.
func (s *Service) PlayerRank(ctx context.Context, periodNumber uint16, playerID string) (*Entry, error) {
	key := fmt.Sprintf(cache.KeyPlayerBoard, periodNumber)

	rank, err := s.rdb.ZRevRank(ctx, key, playerID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	score, err := s.rdb.ZScore(ctx, key, playerID).Result()
	if err != nil {
		return nil, err
	}

	return &Entry{Key: playerID, Ores: uint32(score), Score: score, Rank: rank + 1}, nil
}

// ResetPeriod removes both boards for a finished period.
func (s *Service) ResetPeriod(ctx context.Context, periodNumber uint16) error {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, fmt.Sprintf(cache.KeyPlayerBoard, periodNumber))
	pipe.Del(ctx, fmt.Sprintf(cache.KeyTeamBoard, periodNumber))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Service) topFromSortedSet(ctx context.Context, key string, count int64) ([]Entry, error) {
	results, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, count-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries = append(entries, Entry{
			Key:   member,
			Ores:  uint32(z.Score),
			Score: z.Score,
			Rank:  int64(i + 1),
		})
	}
	return entries, nil
}
