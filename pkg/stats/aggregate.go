// Package stats reduces normalized prizes into summary statistics.
package stats

import (
	"math"

	"github.com/Sternrassler/nobel-prize-cache/pkg/prize"
)

// Statistics summarizes a set of prizes.
type Statistics struct {
	TotalPrizes        int            `json:"totalPrizes"`
	TotalLaureates     int            `json:"totalLaureates"`
	TotalPrizeAmount   int            `json:"totalPrizeAmount"`
	AveragePrizeAmount int            `json:"averagePrizeAmount"`
	PrizesByCategory   map[string]int `json:"prizesByCategory"`
}

// Aggregate computes Statistics in a single pass. Input order does not
// matter. An empty input yields all zeros and an empty (non-nil) category map.
func Aggregate(prizes []prize.Prize) Statistics {
	s := Statistics{
		TotalPrizes:      len(prizes),
		PrizesByCategory: make(map[string]int),
	}

	for _, p := range prizes {
		s.PrizesByCategory[p.Category]++
		s.TotalLaureates += len(p.Winners)
		s.TotalPrizeAmount += p.PrizeAmount
	}

	s.AveragePrizeAmount = average(s.TotalPrizeAmount, s.TotalPrizes)
	return s
}

// average rounds half away from zero and returns 0 for an empty set.
func average(total, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}
