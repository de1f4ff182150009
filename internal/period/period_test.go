package period

import "testing"

const (
	defaultPlayer = "11111111111111111111111111111111"
	defaultTeam   = "team:1000000"
)

func newTestPeriod(teamRewards, individualRewards uint64) *Period {
	return New(1, 1000, 86400, teamRewards, individualRewards, defaultPlayer, defaultTeam)
}

func TestRewardSplits(t *testing.T) {
	p := newTestPeriod(1000, 400)
	if p.TeamFirstPlaceRewards != 500 {
		t.Fatalf("first = %d", p.TeamFirstPlaceRewards)
	}
	if p.TeamSecondPlaceRewards != 300 {
		t.Fatalf("second = %d", p.TeamSecondPlaceRewards)
	}
	if p.TeamThirdPlaceRewards != 200 {
		t.Fatalf("third = %d", p.TeamThirdPlaceRewards)
	}
	sum := p.TeamFirstPlaceRewards + p.TeamSecondPlaceRewards + p.TeamThirdPlaceRewards
	if sum != 1000 {
		t.Fatalf("splits must conserve the budget, got %d", sum)
	}
}

func TestRewardSplitsAbsorbTruncation(t *testing.T) {
	// 999: first=499, second=499/5*3=297, third=999-499-297=203.
	p := newTestPeriod(999, 0)
	if p.TeamFirstPlaceRewards != 499 || p.TeamSecondPlaceRewards != 297 || p.TeamThirdPlaceRewards != 203 {
		t.Fatalf("got %d/%d/%d", p.TeamFirstPlaceRewards, p.TeamSecondPlaceRewards, p.TeamThirdPlaceRewards)
	}
}

func TestBoardsStartWithDefaultEntries(t *testing.T) {
	p := newTestPeriod(0, 0)
	if len(p.TopPlayers) != 10 || len(p.TopTeams) != 10 {
		t.Fatalf("boards must start at 10 rows, got %d/%d", len(p.TopPlayers), len(p.TopTeams))
	}
	if p.TopPlayers[0].Key != defaultPlayer || p.TopTeams[0].Key != defaultTeam {
		t.Fatal("boards must start with default entries")
	}
}

func TestUpdateTopPlayerRanksAndTruncates(t *testing.T) {
	p := newTestPeriod(0, 0)
	p.UpdateTopPlayer("alice", 5)
	p.UpdateTopPlayer("bob", 9)
	p.UpdateTopPlayer("carol", 7)

	if p.TopPlayers[0].Key != "bob" || p.TopPlayers[1].Key != "carol" || p.TopPlayers[2].Key != "alice" {
		t.Fatalf("unexpected ranking: %+v", p.TopPlayers[:3])
	}
	if len(p.TopPlayers) != 10 {
		t.Fatalf("board must stay at 10 rows, got %d", len(p.TopPlayers))
	}

	// Existing entries update in place rather than duplicating.
	p.UpdateTopPlayer("alice", 20)
	if p.TopPlayers[0].Key != "alice" {
		t.Fatalf("alice should lead after update, top is %s", p.TopPlayers[0].Key)
	}
	seen := 0
	for _, s := range p.TopPlayers {
		if s.Key == "alice" {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("alice appears %d times", seen)
	}
}

func TestClampEnd(t *testing.T) {
	p := newTestPeriod(0, 0)

	p.ClampEnd(5000) // ongoing
	if p.EndTime != 5000 {
		t.Fatalf("end should clamp to 5000, got %d", p.EndTime)
	}

	future := New(2, 10_000, 86400, 0, 0, defaultPlayer, defaultTeam)
	future.ClampEnd(5000) // not started yet
	if future.StartTime != 5000 || future.EndTime != 5000 {
		t.Fatalf("unstarted period should collapse, got [%d,%d]", future.StartTime, future.EndTime)
	}

	ended := New(3, 100, 50, 0, 0, defaultPlayer, defaultTeam)
	ended.ClampEnd(5000) // already over: untouched
	if ended.EndTime != 150 {
		t.Fatalf("ended period should be untouched, got %d", ended.EndTime)
	}
}

func TestMarkDistributionCompletedIsOneShot(t *testing.T) {
	p := newTestPeriod(0, 0)
	if err := p.MarkDistributionCompleted(); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := p.MarkDistributionCompleted(); err != ErrAlreadyDistributed {
		t.Fatalf("second call must fail, got %v", err)
	}
}
