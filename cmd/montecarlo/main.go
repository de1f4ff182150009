package main

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/game"
	"github.com/ErenVance/DoomsdayArk/internal/lottery"
)

const (
	totalRuns      = 64
	playersPerRun  = 200
	stepsPerRun    = 2_000
	lotterySamples = 5_000_000
)

func main() {
	start := time.Now()

	fmt.Printf("economy simulation: %d runs x %d players x %d steps\n", totalRuns, playersPerRun, stepsPerRun)

	results := make([]game.SimResult, totalRuns)
	workers := runtime.GOMAXPROCS(0)

	var progress atomic.Int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i := 0; i < totalRuns; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = runSim(int64(i + 1))
			if n := progress.Add(1); n%8 == 0 {
				fmt.Printf("  ... %d/%d runs\n", n, totalRuns)
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	printReport(results, elapsed)
	printLotteryRTP()
}

func runSim(seed int64) game.SimResult {
	return game.RunSimulation(game.SimConfig{
		Players:       playersPerRun,
		Seed:          seed,
		Steps:         stepsPerRun,
		StepInterval:  time.Minute,
		FundingTokens: 1_000_000 * economy.LamportsPerToken,
		Budgets: game.Budgets{
			RoundRewards:        200_000_000 * economy.LamportsPerToken,
			PeriodRewards:       100_000_000 * economy.LamportsPerToken,
			RegistrationRewards: 30_000_000 * economy.LamportsPerToken,
			AirdropRewards:      50_000_000 * economy.LamportsPerToken,
			ExitRewards:         40_000_000 * economy.LamportsPerToken,
			LotteryRewards:      10_000_000 * economy.LamportsPerToken,
			ConsumptionRewards:  50_000_000 * economy.LamportsPerToken,
			SugarRushRewards:    20_000_000 * economy.LamportsPerToken,
		},
		StakeTokens:  100_000_000 * economy.LamportsPerToken,
		RoundPrizes:  1_000_000 * economy.LamportsPerToken,
		CountdownSec: 3_600,
		SilentMode:   true,
	})
}

func printReport(results []game.SimResult, elapsed time.Duration) {
	var rounds, periods []float64
	var burned, grand, lotteryPaid, developer []float64
	byArch := make(map[game.Archetype]*archAgg)

	for _, r := range results {
		rounds = append(rounds, float64(r.RoundsCompleted))
		periods = append(periods, float64(r.PeriodsClosed))
		burned = append(burned, tokens(r.BurnedTokens))
		grand = append(grand, tokens(r.GrandPrizesPaid))
		lotteryPaid = append(lotteryPaid, tokens(r.LotteryPaid))
		developer = append(developer, tokens(r.DeveloperTake))

		for _, st := range r.PlayerStats {
			agg := byArch[st.Archetype]
			if agg == nil {
				agg = &archAgg{}
				byArch[st.Archetype] = agg
			}
			agg.players++
			agg.purchases += st.Purchases
			agg.spent += tokens(st.SpentTokens)
			agg.grandWon += tokens(st.GrandPrizesWon)
			agg.lotteryWon += tokens(st.LotteryWon)
			agg.rejected += st.Rejected
		}
	}

	sort.Float64s(rounds)
	sort.Float64s(burned)

	fmt.Println()
	fmt.Println("=== ECONOMY SIMULATION REPORT ===")
	fmt.Printf("  Runs: %d  |  Elapsed: %v  |  Workers: %d\n", len(results), elapsed.Round(time.Millisecond), runtime.GOMAXPROCS(0))
	fmt.Println()
	fmt.Printf("  Rounds completed/run:      mean %6.1f  median %6.1f\n", mean(rounds), percentile(rounds, 50))
	fmt.Printf("  Periods closed/run:        mean %6.1f\n", mean(periods))
	fmt.Printf("  Grand prizes paid (tok):   mean %12.0f\n", mean(grand))
	fmt.Printf("  Lottery paid (tok):        mean %12.0f\n", mean(lotteryPaid))
	fmt.Printf("  Developer take (tok):      mean %12.0f\n", mean(developer))
	fmt.Printf("  Burned (tok):              mean %12.0f  p90 %12.0f\n", mean(burned), percentile(burned, 90))

	fmt.Println()
	fmt.Println("=== BY ARCHETYPE ===")
	for _, a := range []game.Archetype{game.Conservative, game.Aggressive, game.Whale, game.Casual} {
		agg := byArch[a]
		if agg == nil || agg.players == 0 {
			continue
		}
		n := float64(agg.players)
		fmt.Printf("  %-13s players %5d  buys/p %6.1f  spent/p %10.0f  grand/p %8.0f  lottery/p %8.0f  rejects/p %5.1f\n",
			a.String(), agg.players,
			float64(agg.purchases)/n, agg.spent/n, agg.grandWon/n, agg.lotteryWon/n, float64(agg.rejected)/n)
	}
}

type archAgg struct {
	players    int
	purchases  int
	rejected   int
	spent      float64
	grandWon   float64
	lotteryWon float64
}

// printLotteryRTP spins the reel across a deterministic seed sequence
// and reports the return-to-player rate against the draw cost.
func printLotteryRTP() {
	fmt.Println()
	fmt.Println("=== LOTTERY REEL RTP ===")

	var totalPayout uint64
	hits := make(map[uint64]int)

	var seed [40]byte
	for i := 0; i < lotterySamples; i++ {
		binary.LittleEndian.PutUint64(seed[:8], uint64(i))
		symbols := lottery.Spin(seed[:])
		mult := lottery.Multiplier(symbols)
		hits[mult]++
		totalPayout += lottery.DrawVoucherCost * mult
	}

	cost := uint64(lotterySamples) * lottery.DrawVoucherCost
	fmt.Printf("  Samples: %d  |  RTP: %.2f%%\n", lotterySamples, float64(totalPayout)/float64(cost)*100)

	mults := make([]uint64, 0, len(hits))
	for m := range hits {
		mults = append(mults, m)
	}
	sort.Slice(mults, func(i, j int) bool { return mults[i] < mults[j] })
	for _, m := range mults {
		c := hits[m]
		fmt.Printf("  x%-4d  %9d  (%.4f%%)\n", m, c, float64(c)/float64(lotterySamples)*100)
	}
}

func tokens(lamports uint64) float64 {
	return float64(lamports) / float64(economy.LamportsPerToken)
}

func mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	t := 0.0
	for _, v := range s {
		t += v
	}
	return t / float64(len(s))
}

func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * pct / 100)
	return sorted[idx]
}
