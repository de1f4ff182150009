package round

import "testing"

const defaultPlayer = "11111111111111111111111111111111"

func newTestRound() *Round {
	// round 1, empty prize pool, starts at t=1000 with a 10 minute countdown
	return New(1, 0, 1000, 600, defaultPlayer)
}

// ---------------------------------------------------------------------------
// Countdown extension
// ---------------------------------------------------------------------------

func TestUpdateEndTimeExtendsByAMinute(t *testing.T) {
	r := newTestRound()
	r.UpdateEndTime(1100)
	if r.EndTime != 1660 {
		t.Fatalf("expected end 1600+60, got %d", r.EndTime)
	}
}

func TestUpdateEndTimeRestartsExpiredCountdown(t *testing.T) {
	r := newTestRound()
	r.UpdateEndTime(2000) // past end 1600
	if r.EndTime != 2060 {
		t.Fatalf("expected end now+60=2060, got %d", r.EndTime)
	}
}

func TestUpdateEndTimeNoopOutsideFinalHour(t *testing.T) {
	r := New(1, 0, 1000, 7200, defaultPlayer) // end 8200
	r.UpdateEndTime(1100)
	if r.EndTime != 8200 {
		t.Fatalf("end should be untouched with >1h remaining, got %d", r.EndTime)
	}
}

func TestUpdateEndTimeCapsAtOneHour(t *testing.T) {
	r := New(1, 0, 1000, 3590, defaultPlayer) // end 4590, 3490s remain at t=1100
	r.UpdateEndTime(1100)
	if r.EndTime != 4650 {
		t.Fatalf("expected end+60, got %d", r.EndTime)
	}
	// Right under the cap the extension clamps to now+3600.
	r2 := New(1, 0, 1000, 3599, defaultPlayer) // end 4599
	r2.UpdateEndTime(1000)
	if r2.EndTime != 4600 {
		t.Fatalf("expected clamp at now+3600=4600, got %d", r2.EndTime)
	}
}

func TestUpdateEndTimeResetsCallState(t *testing.T) {
	r := newTestRound()
	r.RecordEndCall(500)
	r.UpdateEndTime(1100)
	if r.LastCallSlot != 0 || r.CallCount != 0 {
		t.Fatalf("call state should reset, got slot=%d count=%d", r.LastCallSlot, r.CallCount)
	}
}

// ---------------------------------------------------------------------------
// Round-end confirmation quorum
// ---------------------------------------------------------------------------

func TestEndCallQuorumFlipsRound(t *testing.T) {
	r := newTestRound()
	slot := uint64(1000)
	for i := 0; i < 9; i++ {
		if r.RecordEndCall(slot) {
			t.Fatalf("round flipped early at call %d", i+1)
		}
		slot += EndCallSlotInterval
	}
	if !r.RecordEndCall(slot) {
		t.Fatal("tenth spaced call should flip the round")
	}
	if !r.IsOver {
		t.Fatal("round should be over")
	}
}

func TestEndCallsInsideSpacingWindowIgnored(t *testing.T) {
	r := newTestRound()
	r.RecordEndCall(1000)
	for s := uint64(1001); s < 1150; s += 10 {
		r.RecordEndCall(s)
	}
	if r.CallCount != 1 {
		t.Fatalf("calls inside 150 slots must not count, got %d", r.CallCount)
	}
	r.RecordEndCall(1150)
	if r.CallCount != 2 {
		t.Fatalf("call at exactly +150 slots should count, got %d", r.CallCount)
	}
}

// ---------------------------------------------------------------------------
// Earnings accumulator
// ---------------------------------------------------------------------------

func TestAccrueEarningsSpreadsAcrossOres(t *testing.T) {
	r := newTestRound()
	r.AddOres(10)
	r.AccrueEarnings(1000)
	if r.EarningsPerOre != 100 {
		t.Fatalf("expected 100 per ore, got %d", r.EarningsPerOre)
	}
	r.AccrueEarnings(55) // truncates
	if r.EarningsPerOre != 105 {
		t.Fatalf("expected 105 per ore, got %d", r.EarningsPerOre)
	}
}

func TestSubtractOresChecksBalance(t *testing.T) {
	r := newTestRound()
	r.AddOres(5)
	if err := r.SubtractOres(6); err != ErrInsufficientOres {
		t.Fatalf("expected ErrInsufficientOres, got %v", err)
	}
	if err := r.SubtractOres(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.AvailableOres != 0 || r.SoldOres != 5 {
		t.Fatalf("available=%d sold=%d", r.AvailableOres, r.SoldOres)
	}
}

// ---------------------------------------------------------------------------
// Participant list
// ---------------------------------------------------------------------------

func TestTouchParticipantKeepsMostRecentFirst(t *testing.T) {
	r := newTestRound()
	r.TouchParticipant("alice")
	r.TouchParticipant("bob")
	r.TouchParticipant("alice")

	if len(r.LastActiveParticipants) != 10 {
		t.Fatalf("list must stay at capacity 10, got %d", len(r.LastActiveParticipants))
	}
	if r.LastActiveParticipants[0] != "alice" || r.LastActiveParticipants[1] != "bob" {
		t.Fatalf("unexpected order: %v", r.LastActiveParticipants[:3])
	}
	// duplicates removed
	for _, p := range r.LastActiveParticipants[2:] {
		if p == "alice" || p == "bob" {
			t.Fatal("duplicate entry retained")
		}
	}
}

// ---------------------------------------------------------------------------
// Grand prize queue
// ---------------------------------------------------------------------------

func TestGrandPrizeQueueSplitsPool(t *testing.T) {
	r := newTestRound()
	r.GrandPrizePoolBalance = 1000

	amount, index, err := r.NextGrandPrize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index != 0 || amount != 550 { // half 500 + shared 50
		t.Fatalf("first payout: got index=%d amount=%d", index, amount)
	}

	var total = amount
	for i := 1; i < 10; i++ {
		amount, index, err = r.NextGrandPrize()
		if err != nil {
			t.Fatalf("payout %d: %v", i, err)
		}
		if index != i || amount != 50 {
			t.Fatalf("payout %d: got index=%d amount=%d", i, index, amount)
		}
		total += amount
	}
	if !r.IsGrandPrizeDistributionCompleted {
		t.Fatal("distribution should be completed after 10 payouts")
	}
	if total != 1000 || r.GrandPrizePoolBalance != 0 {
		t.Fatalf("conservation broken: paid=%d remaining=%d", total, r.GrandPrizePoolBalance)
	}
	if r.DistributedGrandPrizes != 1000 {
		t.Fatalf("distributed counter = %d", r.DistributedGrandPrizes)
	}

	if _, _, err = r.NextGrandPrize(); err != ErrDistributionCompleted {
		t.Fatalf("re-entry must fail, got %v", err)
	}
}

func TestGrandPrizeQueueTruncationStaysSolvent(t *testing.T) {
	// An odd pool truncates twice; the leftover stays in the pool.
	r := newTestRound()
	r.GrandPrizePoolBalance = 1013

	paid := uint64(0)
	for i := 0; i < 10; i++ {
		amount, _, err := r.NextGrandPrize()
		if err != nil {
			t.Fatalf("payout %d: %v", i, err)
		}
		paid += amount
	}
	if paid+r.GrandPrizePoolBalance != 1013 {
		t.Fatalf("paid %d + remaining %d != 1013", paid, r.GrandPrizePoolBalance)
	}
}
