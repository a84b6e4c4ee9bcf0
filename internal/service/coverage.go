package service

import (
	"math"

	"github.com/google/uuid"

	"github.com/nurpe/buildops-leveling/internal/model"
)

// DefaultTargetBidsPerTrade is the heuristic number of submitted bids a
// well-covered trade should carry.
const DefaultTargetBidsPerTrade = 3

// ComputeCoverage derives the project-wide coverage picture from the
// current trades and bids. Pure and total; the denominator never drops
// below 1, so a project with zero trades reports 0% rather than
// dividing by zero.
func ComputeCoverage(trades []model.Trade, bids []model.Bid, targetBidsPerTrade int) model.Coverage {
	if targetBidsPerTrade <= 0 {
		targetBidsPerTrade = DefaultTargetBidsPerTrade
	}

	denominator := len(trades) * targetBidsPerTrade
	if denominator < 1 {
		denominator = 1
	}

	activeByTrade := make(map[uuid.UUID]int, len(trades))
	submitted := 0
	awaiting := 0
	for _, bid := range bids {
		if !bid.Status.Active() {
			continue
		}
		activeByTrade[bid.TradeID]++
		if bid.Status == model.BidStatusSubmitted {
			submitted++
		}
		if bid.Status.Awaiting() {
			awaiting++
		}
	}

	pct := int(math.Round(float64(submitted) / float64(denominator) * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	thin := []string{}
	for _, trade := range trades {
		if activeByTrade[trade.ID] < 2 {
			thin = append(thin, trade.TradeName)
		}
	}

	return model.Coverage{
		CoveragePct:        pct,
		SubmittedCount:     submitted,
		AwaitingResponses:  awaiting,
		TradesThin:         thin,
		TargetBidsPerTrade: targetBidsPerTrade,
	}
}
