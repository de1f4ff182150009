package team

import "testing"

func newTestTeam() *Team {
	return New(1_000_001, "captain", 1000)
}

func TestCreateTeamCaptainIsFoundingMember(t *testing.T) {
	tm := newTestTeam()
	if !tm.IsMember("captain") || !tm.IsCaptain("captain") {
		t.Fatal("captain must be the founding member")
	}
	if !tm.IsCaptainOrManager("captain") {
		t.Fatal("captain counts as captain-or-manager")
	}
}

func TestApplicationLifecycle(t *testing.T) {
	tm := newTestTeam()

	if err := tm.Apply("alice"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := tm.Apply("alice"); err != ErrApplicationExists {
		t.Fatalf("duplicate apply: %v", err)
	}
	if err := tm.AcceptApplication("bob"); err != ErrApplicationNotFound {
		t.Fatalf("accept unknown: %v", err)
	}
	if err := tm.AcceptApplication("alice"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !tm.IsMember("alice") {
		t.Fatal("alice should be a member")
	}
	if err := tm.Apply("alice"); err != ErrAlreadyMember {
		t.Fatalf("member re-apply: %v", err)
	}

	if err := tm.Apply("carol"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := tm.RejectApplication("carol"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := tm.RejectApplication("carol"); err != ErrApplicationNotFound {
		t.Fatalf("double reject: %v", err)
	}
}

func TestApplicationListCap(t *testing.T) {
	tm := newTestTeam()
	for i := 0; i < 10; i++ {
		if err := tm.Apply(string(rune('a' + i))); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}
	if err := tm.Apply("overflow"); err != ErrApplicationListFull {
		t.Fatalf("expected full list, got %v", err)
	}
}

func TestManagerPrivileges(t *testing.T) {
	tm := newTestTeam()
	tm.Members = append(tm.Members, "alice", "bob", "carol", "dave")

	for _, m := range []string{"alice", "bob", "carol"} {
		if err := tm.GrantManager(m); err != nil {
			t.Fatalf("grant %s: %v", m, err)
		}
	}
	if err := tm.GrantManager("dave"); err != ErrManagerListFull {
		t.Fatalf("fourth manager: %v", err)
	}
	if err := tm.GrantManager("ghost"); err != ErrNotMember {
		t.Fatalf("non-member: %v", err)
	}
	if err := tm.RevokeManager("alice"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := tm.RevokeManager("alice"); err != ErrManagerNotFound {
		t.Fatalf("double revoke: %v", err)
	}
	if !tm.IsCaptainOrManager("bob") || tm.IsCaptainOrManager("alice") {
		t.Fatal("manager flags wrong after revoke")
	}
}

func TestTransferCaptaincyDemotesManager(t *testing.T) {
	tm := newTestTeam()
	tm.Members = append(tm.Members, "alice")
	if err := tm.GrantManager("alice"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := tm.TransferCaptaincy("ghost"); err != ErrNotMember {
		t.Fatalf("transfer to non-member: %v", err)
	}
	if err := tm.TransferCaptaincy("alice"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !tm.IsCaptain("alice") || tm.IsManager("alice") {
		t.Fatal("new captain must not keep the manager slot")
	}
}

func TestRemoveMember(t *testing.T) {
	tm := newTestTeam()
	tm.Members = append(tm.Members, "alice")
	if err := tm.RemoveMember("captain"); err != ErrCaptainCannotLeave {
		t.Fatalf("removing captain: %v", err)
	}
	if err := tm.RemoveMember("alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if tm.IsMember("alice") {
		t.Fatal("alice should be gone")
	}
}

func TestUpdateCurrentPeriodResetsCounter(t *testing.T) {
	tm := newTestTeam()
	tm.CurrentPeriod = 1
	tm.CurrentPeriodPurchasedOres = 42
	tm.UpdateCurrentPeriod(1)
	if tm.CurrentPeriodPurchasedOres != 42 {
		t.Fatal("same period must not reset the counter")
	}
	tm.UpdateCurrentPeriod(2)
	if tm.CurrentPeriodPurchasedOres != 0 {
		t.Fatal("new period must reset the counter")
	}
}

func TestDistributeRewardsBoundedByBalance(t *testing.T) {
	tm := newTestTeam()
	tm.DistributableTeamRewards = 100
	if err := tm.DistributeRewards(150); err != ErrInsufficientTeamReward {
		t.Fatalf("over-distribution: %v", err)
	}
	if err := tm.DistributeRewards(60); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if tm.DistributableTeamRewards != 40 || tm.DistributedTeamRewards != 60 {
		t.Fatalf("balances: %d/%d", tm.DistributableTeamRewards, tm.DistributedTeamRewards)
	}
}
