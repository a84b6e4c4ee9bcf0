package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/buildops-leveling/internal/model"
	"github.com/nurpe/buildops-leveling/internal/service"
)

func trade(name string) model.Trade {
	return model.Trade{ID: uuid.New(), TradeName: name}
}

func tradeBid(tradeID uuid.UUID, status model.BidStatus) model.Bid {
	return model.Bid{ID: uuid.New(), TradeID: tradeID, Status: status}
}

func TestComputeCoverageZeroTrades(t *testing.T) {
	coverage := service.ComputeCoverage(nil, nil, 3)
	require.Equal(t, 0, coverage.CoveragePct)
	require.Empty(t, coverage.TradesThin)
	require.Equal(t, 0, coverage.AwaitingResponses)
}

func TestComputeCoverageHalfCovered(t *testing.T) {
	electrical := trade("Electrical")
	plumbing := trade("Plumbing")
	bids := []model.Bid{
		tradeBid(electrical.ID, model.BidStatusSubmitted),
		tradeBid(electrical.ID, model.BidStatusSubmitted),
		tradeBid(plumbing.ID, model.BidStatusSubmitted),
	}

	coverage := service.ComputeCoverage([]model.Trade{electrical, plumbing}, bids, 3)
	require.Equal(t, 50, coverage.CoveragePct)
	require.Equal(t, 3, coverage.SubmittedCount)
}

func TestComputeCoverageClampsAtHundred(t *testing.T) {
	electrical := trade("Electrical")
	bids := make([]model.Bid, 0, 5)
	for i := 0; i < 5; i++ {
		bids = append(bids, tradeBid(electrical.ID, model.BidStatusSubmitted))
	}

	coverage := service.ComputeCoverage([]model.Trade{electrical}, bids, 3)
	require.Equal(t, 100, coverage.CoveragePct)
}

func TestComputeCoverageThinTrades(t *testing.T) {
	electrical := trade("Electrical")
	plumbing := trade("Plumbing")
	roofing := trade("Roofing")
	bids := []model.Bid{
		// Electrical: two active bids, not thin.
		tradeBid(electrical.ID, model.BidStatusSubmitted),
		tradeBid(electrical.ID, model.BidStatusBidding),
		// Plumbing: one active and one declined, thin.
		tradeBid(plumbing.ID, model.BidStatusInvited),
		tradeBid(plumbing.ID, model.BidStatusDeclined),
		// Roofing: no bids at all, thin.
	}

	coverage := service.ComputeCoverage([]model.Trade{electrical, plumbing, roofing}, bids, 3)
	require.Equal(t, []string{"Plumbing", "Roofing"}, coverage.TradesThin)
}

func TestComputeCoverageAwaitingResponses(t *testing.T) {
	electrical := trade("Electrical")
	bids := []model.Bid{
		tradeBid(electrical.ID, model.BidStatusInvited),
		tradeBid(electrical.ID, model.BidStatusBidding),
		tradeBid(electrical.ID, model.BidStatusNoResponse),
		tradeBid(electrical.ID, model.BidStatusSubmitted),
		tradeBid(electrical.ID, model.BidStatusDeclined),
	}

	coverage := service.ComputeCoverage([]model.Trade{electrical}, bids, 3)
	require.Equal(t, 3, coverage.AwaitingResponses)
	require.Equal(t, 1, coverage.SubmittedCount)
}

func TestComputeCoverageDefaultsTarget(t *testing.T) {
	electrical := trade("Electrical")
	coverage := service.ComputeCoverage([]model.Trade{electrical}, nil, 0)
	require.Equal(t, service.DefaultTargetBidsPerTrade, coverage.TargetBidsPerTrade)
}
