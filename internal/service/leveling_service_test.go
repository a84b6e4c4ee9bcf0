package service_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/buildops-leveling/internal/config"
	"github.com/nurpe/buildops-leveling/internal/model"
	"github.com/nurpe/buildops-leveling/internal/service"
)

func newLevelingFixture(t *testing.T) (*service.LevelingService, *mockLevelingStore, model.Principal) {
	t.Helper()
	principal := model.Principal{UserID: uuid.New(), CompanyID: uuid.New()}
	store := newMockLevelingStore(model.Project{
		ID:        uuid.New(),
		CompanyID: principal.CompanyID,
		Name:      "Riverside Tower",
	})
	cfg := &config.Config{Leveling: config.LevelingConfig{TargetBidsPerTrade: 3}}
	svc := service.NewLevelingService(store, cfg, zerolog.Nop())
	return svc, store, principal
}

func TestAddBidCreatesInvitedBid(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")

	bid, err := svc.AddBid(context.Background(), principal, service.AddBidInput{
		ProjectID: store.project.ID,
		TradeID:   trade.ID,
		SubID:     sub.ID,
	})
	require.NoError(t, err)
	require.Equal(t, model.BidStatusInvited, bid.Status)
	require.Nil(t, bid.BaseBidAmount)
	require.Equal(t, "Volt Bros", bid.SubName)
}

func TestAddBidDuplicateConflicts(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	store.addBid(trade.ID, sub.ID, model.BidStatusInvited, nil)

	_, err := svc.AddBid(context.Background(), principal, service.AddBidInput{
		ProjectID: store.project.ID,
		TradeID:   trade.ID,
		SubID:     sub.ID,
	})
	require.ErrorIs(t, err, service.ErrAlreadyExists)
}

func TestAddBidUnknownTrade(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	sub := store.addSub("Volt Bros")

	_, err := svc.AddBid(context.Background(), principal, service.AddBidInput{
		ProjectID: store.project.ID,
		TradeID:   uuid.New(),
		SubID:     sub.ID,
	})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAddBidWrongCompany(t *testing.T) {
	svc, store, _ := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	stranger := model.Principal{UserID: uuid.New(), CompanyID: uuid.New()}

	_, err := svc.AddBid(context.Background(), stranger, service.AddBidInput{
		ProjectID: store.project.ID,
		TradeID:   trade.ID,
		SubID:     sub.ID,
	})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateBidStatusStampsReceivedAt(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	bid := store.addBid(trade.ID, sub.ID, model.BidStatusBidding, nil)

	updated, err := svc.UpdateBidStatus(context.Background(), principal, bid.ID, "submitted")
	require.NoError(t, err)
	require.Equal(t, model.BidStatusSubmitted, updated.Status)
	require.NotNil(t, updated.ReceivedAt)
}

func TestUpdateBidStatusAnyTransitionAllowed(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	bid := store.addBid(trade.ID, sub.ID, model.BidStatusDeclined, nil)

	// Declined is not terminal; a declined sub can come back to bidding.
	updated, err := svc.UpdateBidStatus(context.Background(), principal, bid.ID, "bidding")
	require.NoError(t, err)
	require.Equal(t, model.BidStatusBidding, updated.Status)
}

func TestUpdateBidStatusRejectsUnknownValue(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	bid := store.addBid(trade.ID, sub.ID, model.BidStatusInvited, nil)

	_, err := svc.UpdateBidStatus(context.Background(), principal, bid.ID, "shortlisted")
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestUpdateBidAmountRoundsToCents(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	bid := store.addBid(trade.ID, sub.ID, model.BidStatusSubmitted, nil)

	amount := 100000.119
	updated, err := svc.UpdateBidAmount(context.Background(), principal, bid.ID, &amount, "base scope only")
	require.NoError(t, err)
	require.Equal(t, 100000.12, *updated.BaseBidAmount)
	require.Equal(t, "base scope only", updated.Notes)
}

func TestUpdateBidAmountNormalizesNaN(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	bid := store.addBid(trade.ID, sub.ID, model.BidStatusSubmitted, ptr(100000))

	nan := math.NaN()
	updated, err := svc.UpdateBidAmount(context.Background(), principal, bid.ID, &nan, "")
	require.NoError(t, err)
	require.Nil(t, updated.BaseBidAmount)
}

func TestRemoveBidDeletesRow(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	bid := store.addBid(trade.ID, sub.ID, model.BidStatusInvited, nil)

	require.NoError(t, svc.RemoveBid(context.Background(), principal, bid.ID))
	require.Contains(t, store.deletedBids, bid.ID)

	err := svc.RemoveBid(context.Background(), principal, bid.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpsertBudgetAllowsNilAmount(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")

	budget, err := svc.UpsertBudget(context.Background(), principal, service.UpsertBudgetInput{
		ProjectID: store.project.ID,
		TradeID:   trade.ID,
		Amount:    nil,
		Notes:     "pending owner sign-off",
	})
	require.NoError(t, err)
	require.Nil(t, budget.BudgetAmount)
	require.Equal(t, "pending owner sign-off", budget.BudgetNotes)
}

func TestReplaceAlternatesAssignsSortOrder(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	bid := store.addBid(trade.ID, sub.ID, model.BidStatusSubmitted, ptr(100000))

	alternates, err := svc.ReplaceAlternates(context.Background(), principal, bid.ID, []service.AlternateInput{
		{Title: "LED upgrade", Accepted: true, Amount: ptr(4500)},
		{Title: "Generator deduct", Accepted: false, Amount: ptr(-12000)},
	})
	require.NoError(t, err)
	require.Len(t, alternates, 2)
	require.Equal(t, 0, alternates[0].SortOrder)
	require.Equal(t, 1, alternates[1].SortOrder)
}

func TestReplaceAlternatesRejectsEmptyTitle(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	trade := store.addTrade("Electrical")
	sub := store.addSub("Volt Bros")
	bid := store.addBid(trade.ID, sub.ID, model.BidStatusSubmitted, ptr(100000))

	_, err := svc.ReplaceAlternates(context.Background(), principal, bid.ID, []service.AlternateInput{
		{Title: "   "},
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGetBoardAssemblesStatsAndCoverage(t *testing.T) {
	svc, store, principal := newLevelingFixture(t)
	electrical := store.addTrade("Electrical")
	store.addTrade("Plumbing")

	subA := store.addSub("Volt Bros")
	subB := store.addSub("Amp Co")
	subC := store.addSub("Ohm LLC")
	store.addBid(electrical.ID, subA.ID, model.BidStatusSubmitted, ptr(100000))
	store.addBid(electrical.ID, subB.ID, model.BidStatusSubmitted, ptr(110000))
	store.addBid(electrical.ID, subC.ID, model.BidStatusDeclined, nil)

	require.NoError(t, store.UpsertBudget(context.Background(), model.TradeBudget{
		ProjectID:    store.project.ID,
		TradeID:      electrical.ID,
		BudgetAmount: ptr(95000),
	}))

	board, err := svc.GetBoard(context.Background(), principal, store.project.ID)
	require.NoError(t, err)
	require.Equal(t, "Riverside Tower", board.ProjectName)
	require.Len(t, board.Trades, 2)

	electricalLine := board.Trades[0]
	require.Equal(t, "Electrical", electricalLine.Trade.TradeName)
	require.Equal(t, 2, electricalLine.Stats.CoverageCount)
	require.Equal(t, 100000.0, *electricalLine.Stats.Low)
	require.Equal(t, 5000.0, *electricalLine.Stats.BudgetDeltaAmount)
	require.NotNil(t, electricalLine.Budget)

	plumbingLine := board.Trades[1]
	require.Equal(t, 0, plumbingLine.Stats.CoverageCount)
	require.Nil(t, plumbingLine.Budget)
	require.Empty(t, plumbingLine.Bids)

	// 2 submitted of 2 trades * 3 target = 33%.
	require.Equal(t, 33, board.Coverage.CoveragePct)
	require.Equal(t, []string{"Plumbing"}, board.Coverage.TradesThin)
}
