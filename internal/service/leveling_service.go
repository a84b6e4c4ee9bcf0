package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/buildops-leveling/internal/config"
	"github.com/nurpe/buildops-leveling/internal/model"
	"github.com/nurpe/buildops-leveling/internal/money"
)

// LevelingStore is the row access the leveling service needs. The
// concrete implementation lives in internal/repository.
type LevelingStore interface {
	GetProject(ctx context.Context, projectID, companyID uuid.UUID) (*model.Project, error)
	ListTrades(ctx context.Context, projectID uuid.UUID) ([]model.Trade, error)
	GetTrade(ctx context.Context, tradeID, projectID uuid.UUID) (*model.Trade, error)
	GetSub(ctx context.Context, subID, projectID uuid.UUID) (*model.ProjectSub, error)
	ListBids(ctx context.Context, projectID uuid.UUID) ([]model.Bid, error)
	GetBid(ctx context.Context, bidID, companyID uuid.UUID) (*model.Bid, error)
	BidExists(ctx context.Context, tradeID, subID uuid.UUID) (bool, error)
	CreateBid(ctx context.Context, bid model.Bid) (*model.Bid, error)
	UpdateBidStatus(ctx context.Context, bidID uuid.UUID, status model.BidStatus, receivedAt *time.Time) error
	UpdateBidAmount(ctx context.Context, bidID uuid.UUID, amount *float64, notes string) error
	DeleteBid(ctx context.Context, bidID uuid.UUID) error
	UpsertBudget(ctx context.Context, budget model.TradeBudget) error
	ListBudgets(ctx context.Context, projectID uuid.UUID) ([]model.TradeBudget, error)
	ListAlternates(ctx context.Context, projectID uuid.UUID) ([]model.Alternate, error)
	ListAlternatesForBid(ctx context.Context, bidID uuid.UUID) ([]model.Alternate, error)
	ReplaceAlternates(ctx context.Context, bidID uuid.UUID, alternates []model.Alternate) error
}

type LevelingService struct {
	repo               LevelingStore
	targetBidsPerTrade int
	log                zerolog.Logger
}

func NewLevelingService(repo LevelingStore, cfg *config.Config, log zerolog.Logger) *LevelingService {
	return &LevelingService{
		repo:               repo,
		targetBidsPerTrade: cfg.Leveling.TargetBidsPerTrade,
		log:                log,
	}
}

// GetBoard assembles the live leveling board: trades in display order,
// each with its bids, budget and derived stats, plus project coverage.
// Everything derived is recomputed here on every call.
func (s *LevelingService) GetBoard(ctx context.Context, principal model.Principal, projectID uuid.UUID) (*model.LevelingBoard, error) {
	if !principal.Valid() {
		return nil, ErrPermissionDenied
	}
	project, err := s.repo.GetProject(ctx, projectID, principal.CompanyID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	trades, err := s.repo.ListTrades(ctx, projectID)
	if err != nil {
		return nil, err
	}
	bids, err := s.repo.ListBids(ctx, projectID)
	if err != nil {
		return nil, err
	}
	budgets, err := s.repo.ListBudgets(ctx, projectID)
	if err != nil {
		return nil, err
	}
	alternates, err := s.repo.ListAlternates(ctx, projectID)
	if err != nil {
		return nil, err
	}

	altsByBid := make(map[uuid.UUID][]model.Alternate, len(bids))
	for _, alt := range alternates {
		altsByBid[alt.BidID] = append(altsByBid[alt.BidID], alt)
	}
	bidsByTrade := make(map[uuid.UUID][]model.Bid, len(trades))
	for _, bid := range bids {
		bid.Alternates = altsByBid[bid.ID]
		bidsByTrade[bid.TradeID] = append(bidsByTrade[bid.TradeID], bid)
	}
	budgetsByTrade := make(map[uuid.UUID]model.TradeBudget, len(budgets))
	for _, budget := range budgets {
		budgetsByTrade[budget.TradeID] = budget
	}

	lines := make([]model.TradeLine, 0, len(trades))
	for _, trade := range trades {
		line := model.TradeLine{
			Trade: trade,
			Bids:  bidsByTrade[trade.ID],
		}
		if line.Bids == nil {
			line.Bids = []model.Bid{}
		}
		var budgetAmount *float64
		if budget, ok := budgetsByTrade[trade.ID]; ok {
			b := budget
			line.Budget = &b
			budgetAmount = budget.BudgetAmount
		}
		line.Stats = ComputeTradeStats(line.Bids, budgetAmount)
		lines = append(lines, line)
	}

	return &model.LevelingBoard{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Trades:      lines,
		Coverage:    ComputeCoverage(trades, bids, s.targetBidsPerTrade),
	}, nil
}

type AddBidInput struct {
	ProjectID uuid.UUID
	TradeID   uuid.UUID
	SubID     uuid.UUID
}

// AddBid puts a sub on a trade: a new bid in "invited" with no amount.
// A second add for the same (trade, sub) pair is a conflict, not a
// silent no-op, so the caller learns the sub is already listed.
func (s *LevelingService) AddBid(ctx context.Context, principal model.Principal, input AddBidInput) (*model.Bid, error) {
	if !principal.Valid() {
		return nil, ErrPermissionDenied
	}
	if input.TradeID == uuid.Nil {
		return nil, fmt.Errorf("%w: trade_id is required", ErrInvalidInput)
	}
	if input.SubID == uuid.Nil {
		return nil, fmt.Errorf("%w: sub_id is required", ErrInvalidInput)
	}

	if _, err := s.repo.GetProject(ctx, input.ProjectID, principal.CompanyID); err != nil {
		return nil, mapRepoErr(err)
	}
	if _, err := s.repo.GetTrade(ctx, input.TradeID, input.ProjectID); err != nil {
		return nil, mapRepoErr(err)
	}
	sub, err := s.repo.GetSub(ctx, input.SubID, input.ProjectID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	exists, err := s.repo.BidExists(ctx, input.TradeID, input.SubID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: sub already bids this trade", ErrAlreadyExists)
	}

	created, err := s.repo.CreateBid(ctx, model.Bid{
		ProjectID: input.ProjectID,
		TradeID:   input.TradeID,
		SubID:     input.SubID,
		SubName:   sub.CompanyName,
		Status:    model.BidStatusInvited,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("project_id", input.ProjectID.String()).
		Str("bid_id", created.ID.String()).
		Msg("bid created")
	return created, nil
}

// UpdateBidStatus moves a bid to any of the five statuses. Transitions
// are deliberately unconstrained (a prematurely submitted bid can be
// pulled back); received_at is stamped the first time a bid reaches
// "submitted". Concurrent edits resolve last write wins.
func (s *LevelingService) UpdateBidStatus(ctx context.Context, principal model.Principal, bidID uuid.UUID, rawStatus string) (*model.Bid, error) {
	if !principal.Valid() {
		return nil, ErrPermissionDenied
	}
	status, ok := model.ParseBidStatus(strings.TrimSpace(rawStatus))
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, rawStatus)
	}

	bid, err := s.repo.GetBid(ctx, bidID, principal.CompanyID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	var receivedAt *time.Time
	if status == model.BidStatusSubmitted && bid.ReceivedAt == nil {
		now := time.Now().UTC()
		receivedAt = &now
	}
	if err := s.repo.UpdateBidStatus(ctx, bid.ID, status, receivedAt); err != nil {
		return nil, err
	}

	bid.Status = status
	if receivedAt != nil {
		bid.ReceivedAt = receivedAt
	}
	return bid, nil
}

// UpdateBidAmount sets the priced amount and notes. The amount is
// independent of status; nil clears it. Non-finite input is normalized
// to nil rather than rejected.
func (s *LevelingService) UpdateBidAmount(ctx context.Context, principal model.Principal, bidID uuid.UUID, amount *float64, notes string) (*model.Bid, error) {
	if !principal.Valid() {
		return nil, ErrPermissionDenied
	}
	bid, err := s.repo.GetBid(ctx, bidID, principal.CompanyID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	amount = normalizeAmount(amount)
	if err := s.repo.UpdateBidAmount(ctx, bid.ID, amount, notes); err != nil {
		return nil, err
	}
	bid.BaseBidAmount = amount
	bid.Notes = notes
	return bid, nil
}

func (s *LevelingService) RemoveBid(ctx context.Context, principal model.Principal, bidID uuid.UUID) error {
	if !principal.Valid() {
		return ErrPermissionDenied
	}
	bid, err := s.repo.GetBid(ctx, bidID, principal.CompanyID)
	if err != nil {
		return mapRepoErr(err)
	}
	if err := s.repo.DeleteBid(ctx, bid.ID); err != nil {
		return err
	}
	s.log.Info().
		Str("project_id", bid.ProjectID.String()).
		Str("bid_id", bid.ID.String()).
		Msg("bid removed")
	return nil
}

type UpsertBudgetInput struct {
	ProjectID uuid.UUID
	TradeID   uuid.UUID
	Amount    *float64
	Notes     string
}

// UpsertBudget creates or updates the budget row for a trade. A nil
// amount is a valid state ("no budget set"), not an error.
func (s *LevelingService) UpsertBudget(ctx context.Context, principal model.Principal, input UpsertBudgetInput) (*model.TradeBudget, error) {
	if !principal.Valid() {
		return nil, ErrPermissionDenied
	}
	if input.TradeID == uuid.Nil {
		return nil, fmt.Errorf("%w: trade_id is required", ErrInvalidInput)
	}
	if _, err := s.repo.GetProject(ctx, input.ProjectID, principal.CompanyID); err != nil {
		return nil, mapRepoErr(err)
	}
	if _, err := s.repo.GetTrade(ctx, input.TradeID, input.ProjectID); err != nil {
		return nil, mapRepoErr(err)
	}

	budget := model.TradeBudget{
		ProjectID:    input.ProjectID,
		TradeID:      input.TradeID,
		BudgetAmount: normalizeAmount(input.Amount),
		BudgetNotes:  input.Notes,
	}
	if err := s.repo.UpsertBudget(ctx, budget); err != nil {
		return nil, err
	}
	budget.UpdatedAt = time.Now().UTC()
	return &budget, nil
}

type AlternateInput struct {
	Title    string   `json:"title"`
	Accepted bool     `json:"accepted"`
	Amount   *float64 `json:"amount"`
	Notes    string   `json:"notes"`
}

// ReplaceAlternates swaps the full alternate list for a bid. Order in
// the request becomes the stored sort order; the accepted total stays
// derived, never written.
func (s *LevelingService) ReplaceAlternates(ctx context.Context, principal model.Principal, bidID uuid.UUID, inputs []AlternateInput) ([]model.Alternate, error) {
	if !principal.Valid() {
		return nil, ErrPermissionDenied
	}
	bid, err := s.repo.GetBid(ctx, bidID, principal.CompanyID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	alternates := make([]model.Alternate, 0, len(inputs))
	for i, input := range inputs {
		title := strings.TrimSpace(input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: alternate title is required", ErrInvalidInput)
		}
		alternates = append(alternates, model.Alternate{
			BidID:     bid.ID,
			Title:     title,
			Accepted:  input.Accepted,
			Amount:    normalizeAmount(input.Amount),
			Notes:     input.Notes,
			SortOrder: i,
		})
	}

	if err := s.repo.ReplaceAlternates(ctx, bid.ID, alternates); err != nil {
		return nil, err
	}
	return s.repo.ListAlternatesForBid(ctx, bid.ID)
}

func normalizeAmount(amount *float64) *float64 {
	if amount == nil || math.IsNaN(*amount) || math.IsInf(*amount, 0) {
		return nil
	}
	rounded := money.RoundCents(*amount)
	return &rounded
}

func mapRepoErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
