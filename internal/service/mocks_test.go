package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/buildops-leveling/internal/model"
)

// mockLevelingStore backs the services with in-memory state so the
// mutation rules are exercised without a database.
type mockLevelingStore struct {
	project    *model.Project
	trades     []model.Trade
	subs       map[uuid.UUID]model.ProjectSub
	bids       map[uuid.UUID]model.Bid
	budgets    map[uuid.UUID]model.TradeBudget
	alternates map[uuid.UUID][]model.Alternate

	deletedBids []uuid.UUID
}

func newMockLevelingStore(project model.Project) *mockLevelingStore {
	return &mockLevelingStore{
		project:    &project,
		subs:       map[uuid.UUID]model.ProjectSub{},
		bids:       map[uuid.UUID]model.Bid{},
		budgets:    map[uuid.UUID]model.TradeBudget{},
		alternates: map[uuid.UUID][]model.Alternate{},
	}
}

func (m *mockLevelingStore) addTrade(name string) model.Trade {
	trade := model.Trade{ID: uuid.New(), ProjectID: m.project.ID, TradeName: name, SortOrder: len(m.trades)}
	m.trades = append(m.trades, trade)
	return trade
}

func (m *mockLevelingStore) addSub(name string) model.ProjectSub {
	sub := model.ProjectSub{ID: uuid.New(), ProjectID: m.project.ID, CompanyName: name}
	m.subs[sub.ID] = sub
	return sub
}

func (m *mockLevelingStore) addBid(tradeID, subID uuid.UUID, status model.BidStatus, amount *float64) model.Bid {
	bid := model.Bid{
		ID:            uuid.New(),
		ProjectID:     m.project.ID,
		TradeID:       tradeID,
		SubID:         subID,
		Status:        status,
		BaseBidAmount: amount,
		CreatedAt:     time.Now(),
	}
	if sub, ok := m.subs[subID]; ok {
		bid.SubName = sub.CompanyName
	}
	m.bids[bid.ID] = bid
	return bid
}

func (m *mockLevelingStore) GetProject(_ context.Context, projectID, companyID uuid.UUID) (*model.Project, error) {
	if m.project == nil || m.project.ID != projectID || m.project.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	project := *m.project
	return &project, nil
}

func (m *mockLevelingStore) ListTrades(_ context.Context, projectID uuid.UUID) ([]model.Trade, error) {
	return append([]model.Trade{}, m.trades...), nil
}

func (m *mockLevelingStore) GetTrade(_ context.Context, tradeID, projectID uuid.UUID) (*model.Trade, error) {
	for _, trade := range m.trades {
		if trade.ID == tradeID && trade.ProjectID == projectID {
			t := trade
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLevelingStore) GetSub(_ context.Context, subID, projectID uuid.UUID) (*model.ProjectSub, error) {
	if sub, ok := m.subs[subID]; ok && sub.ProjectID == projectID {
		s := sub
		return &s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLevelingStore) ListBids(_ context.Context, projectID uuid.UUID) ([]model.Bid, error) {
	bids := make([]model.Bid, 0, len(m.bids))
	for _, bid := range m.bids {
		if bid.ProjectID == projectID {
			bids = append(bids, bid)
		}
	}
	return bids, nil
}

func (m *mockLevelingStore) GetBid(_ context.Context, bidID, companyID uuid.UUID) (*model.Bid, error) {
	bid, ok := m.bids[bidID]
	if !ok || m.project == nil || m.project.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	b := bid
	return &b, nil
}

func (m *mockLevelingStore) BidExists(_ context.Context, tradeID, subID uuid.UUID) (bool, error) {
	for _, bid := range m.bids {
		if bid.TradeID == tradeID && bid.SubID == subID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLevelingStore) CreateBid(_ context.Context, bid model.Bid) (*model.Bid, error) {
	bid.ID = uuid.New()
	bid.CreatedAt = time.Now()
	m.bids[bid.ID] = bid
	saved := bid
	return &saved, nil
}

func (m *mockLevelingStore) UpdateBidStatus(_ context.Context, bidID uuid.UUID, status model.BidStatus, receivedAt *time.Time) error {
	bid := m.bids[bidID]
	bid.Status = status
	if receivedAt != nil {
		bid.ReceivedAt = receivedAt
	}
	m.bids[bidID] = bid
	return nil
}

func (m *mockLevelingStore) UpdateBidAmount(_ context.Context, bidID uuid.UUID, amount *float64, notes string) error {
	bid := m.bids[bidID]
	bid.BaseBidAmount = amount
	bid.Notes = notes
	m.bids[bidID] = bid
	return nil
}

func (m *mockLevelingStore) DeleteBid(_ context.Context, bidID uuid.UUID) error {
	delete(m.bids, bidID)
	delete(m.alternates, bidID)
	m.deletedBids = append(m.deletedBids, bidID)
	return nil
}

func (m *mockLevelingStore) UpsertBudget(_ context.Context, budget model.TradeBudget) error {
	budget.UpdatedAt = time.Now()
	m.budgets[budget.TradeID] = budget
	return nil
}

func (m *mockLevelingStore) ListBudgets(_ context.Context, projectID uuid.UUID) ([]model.TradeBudget, error) {
	budgets := make([]model.TradeBudget, 0, len(m.budgets))
	for _, budget := range m.budgets {
		if budget.ProjectID == projectID {
			budgets = append(budgets, budget)
		}
	}
	return budgets, nil
}

func (m *mockLevelingStore) ListAlternates(_ context.Context, projectID uuid.UUID) ([]model.Alternate, error) {
	all := []model.Alternate{}
	for bidID, alts := range m.alternates {
		if bid, ok := m.bids[bidID]; ok && bid.ProjectID == projectID {
			all = append(all, alts...)
		}
	}
	return all, nil
}

func (m *mockLevelingStore) ListAlternatesForBid(_ context.Context, bidID uuid.UUID) ([]model.Alternate, error) {
	return append([]model.Alternate{}, m.alternates[bidID]...), nil
}

func (m *mockLevelingStore) ReplaceAlternates(_ context.Context, bidID uuid.UUID, alternates []model.Alternate) error {
	stored := make([]model.Alternate, 0, len(alternates))
	for _, alt := range alternates {
		alt.ID = uuid.New()
		stored = append(stored, alt)
	}
	m.alternates[bidID] = stored
	return nil
}

// mockSnapshotStore records created snapshots and serves them back.
type mockSnapshotStore struct {
	snapshots map[uuid.UUID]model.Snapshot
	items     map[uuid.UUID][]model.SnapshotItem
	companyID uuid.UUID
}

func newMockSnapshotStore(companyID uuid.UUID) *mockSnapshotStore {
	return &mockSnapshotStore{
		snapshots: map[uuid.UUID]model.Snapshot{},
		items:     map[uuid.UUID][]model.SnapshotItem{},
		companyID: companyID,
	}
}

func (m *mockSnapshotStore) CreateSnapshot(_ context.Context, snapshot model.Snapshot, items []model.SnapshotItem) (*model.Snapshot, error) {
	snapshot.ID = uuid.New()
	snapshot.CreatedAt = time.Now()
	snapshot.Locked = true
	m.snapshots[snapshot.ID] = snapshot

	stored := make([]model.SnapshotItem, 0, len(items))
	for _, item := range items {
		item.ID = uuid.New()
		item.SnapshotID = snapshot.ID
		stored = append(stored, item)
	}
	m.items[snapshot.ID] = stored

	saved := snapshot
	return &saved, nil
}

func (m *mockSnapshotStore) ListSnapshots(_ context.Context, projectID uuid.UUID) ([]model.Snapshot, error) {
	snapshots := []model.Snapshot{}
	for _, snapshot := range m.snapshots {
		if snapshot.ProjectID == projectID {
			snapshots = append(snapshots, snapshot)
		}
	}
	return snapshots, nil
}

func (m *mockSnapshotStore) GetSnapshot(_ context.Context, snapshotID, companyID uuid.UUID) (*model.Snapshot, error) {
	snapshot, ok := m.snapshots[snapshotID]
	if !ok || companyID != m.companyID {
		return nil, gorm.ErrRecordNotFound
	}
	s := snapshot
	return &s, nil
}

func (m *mockSnapshotStore) ListItems(_ context.Context, snapshotID uuid.UUID) ([]model.SnapshotItem, error) {
	return append([]model.SnapshotItem{}, m.items[snapshotID]...), nil
}
