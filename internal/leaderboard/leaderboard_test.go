package leaderboard

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// The mirror runs under the engine lock, so a record call must return
// without waiting on redis, even with the write buffer overflowing
// against an unreachable server.
func TestMirrorWritesDoNotBlock(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "192.0.2.1:6379", // TEST-NET, never answers
		DialTimeout: 2 * time.Second,
	})
	s := NewService(rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2_000; i++ {
			s.RecordPlayerOres(context.Background(), 1, "wallet", uint32(i))
			s.RecordTeamOres(context.Background(), 1, "team:1000001", uint32(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mirror record calls blocked on redis")
	}
}
