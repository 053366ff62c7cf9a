package analysis

import "github.com/cory-johannsen/montecarlo/internal/game/dice"

// Summary condenses every statistic of a play into one value for reporting
// and persistence.
type Summary struct {
	Rolls        int
	Dice         int
	Jackpots     int
	Combos       []Tally
	Permutations []Tally
	FaceTotals   map[dice.Face]int
}

// Summary computes all statistics over the runner's latest play.
func (a *Analyzer) Summary() Summary {
	tbl := a.runner.LastPlay()
	return Summary{
		Rolls:        tbl.Rolls(),
		Dice:         tbl.NumDice(),
		Jackpots:     a.Jackpot(),
		Combos:       a.Combos(),
		Permutations: a.Permutations(),
		FaceTotals:   a.FaceCounts().Totals(),
	}
}

// JackpotRate is the share of rolls that were jackpots, or 0 for an empty play.
func (s Summary) JackpotRate() float64 {
	if s.Rolls == 0 {
		return 0
	}
	return float64(s.Jackpots) / float64(s.Rolls)
}
