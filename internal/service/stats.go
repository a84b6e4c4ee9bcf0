package service

import (
	"math"

	"github.com/nurpe/buildops-leveling/internal/model"
)

// ComputeTradeStats derives the leveling numbers for one trade from its
// bids and optional budget. Pure and total: malformed amounts (NaN,
// infinite, negative) are excluded rather than reported, and an empty
// submitted set yields all-nil fields with CoverageCount 0.
func ComputeTradeStats(bids []model.Bid, budgetAmount *float64) model.TradeStats {
	values := make([]float64, 0, len(bids))
	for _, bid := range bids {
		if bid.Status != model.BidStatusSubmitted || bid.BaseBidAmount == nil {
			continue
		}
		v := *bid.BaseBidAmount
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		values = append(values, v)
	}

	stats := model.TradeStats{CoverageCount: len(values)}
	if len(values) == 0 {
		return stats
	}

	low, high, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
		sum += v
	}
	average := sum / float64(len(values))
	spread := high - low

	stats.Low = &low
	stats.High = &high
	stats.Average = &average
	stats.SpreadAmount = &spread
	if low > 0 {
		spreadPct := spread / low * 100
		stats.SpreadPercent = &spreadPct
	}

	if budgetAmount != nil && !math.IsNaN(*budgetAmount) && !math.IsInf(*budgetAmount, 0) {
		delta := low - *budgetAmount
		stats.BudgetDeltaAmount = &delta
		if *budgetAmount > 0 {
			deltaPct := delta / *budgetAmount * 100
			stats.BudgetDeltaPercent = &deltaPct
		}
	}
	return stats
}
