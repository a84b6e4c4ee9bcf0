package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/buildops-leveling/internal/model"
)

// LevelingRepository owns the row access for trades, bids, alternates
// and budgets. Every read is scoped to the caller's company through the
// projects table; rows outside the tenant scan as not found.
type LevelingRepository struct {
	db *gorm.DB
}

func NewLevelingRepository(db *gorm.DB) *LevelingRepository {
	return &LevelingRepository{db: db}
}

func (r *LevelingRepository) GetProject(ctx context.Context, projectID, companyID uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, company_id, name, created_at
		FROM projects
		WHERE id = ? AND company_id = ?
		LIMIT 1
	`, projectID, companyID).Scan(&project).Error; err != nil {
		return nil, err
	}
	if project.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &project, nil
}

func (r *LevelingRepository) ListTrades(ctx context.Context, projectID uuid.UUID) ([]model.Trade, error) {
	var trades []model.Trade
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, project_id, trade_name, sort_order
		FROM trades
		WHERE project_id = ?
		ORDER BY sort_order ASC, trade_name ASC
	`, projectID).Scan(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

func (r *LevelingRepository) GetTrade(ctx context.Context, tradeID, projectID uuid.UUID) (*model.Trade, error) {
	var trade model.Trade
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, project_id, trade_name, sort_order
		FROM trades
		WHERE id = ? AND project_id = ?
		LIMIT 1
	`, tradeID, projectID).Scan(&trade).Error; err != nil {
		return nil, err
	}
	if trade.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &trade, nil
}

func (r *LevelingRepository) GetSub(ctx context.Context, subID, projectID uuid.UUID) (*model.ProjectSub, error) {
	var sub model.ProjectSub
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, project_id, company_name, contact_name, email
		FROM project_subs
		WHERE id = ? AND project_id = ?
		LIMIT 1
	`, subID, projectID).Scan(&sub).Error; err != nil {
		return nil, err
	}
	if sub.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &sub, nil
}

func (r *LevelingRepository) ListBids(ctx context.Context, projectID uuid.UUID) ([]model.Bid, error) {
	var bids []model.Bid
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			b.id,
			b.project_id,
			b.trade_id,
			b.sub_id,
			COALESCE(s.company_name, '') AS sub_name,
			b.status,
			b.base_bid_amount,
			b.notes,
			b.received_at,
			b.created_at
		FROM leveling_bids b
		LEFT JOIN project_subs s ON s.id = b.sub_id
		WHERE b.project_id = ?
		ORDER BY b.created_at ASC
	`, projectID).Scan(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

// GetBid resolves a bid through its project so a bid belonging to
// another company reads as not found rather than forbidden.
func (r *LevelingRepository) GetBid(ctx context.Context, bidID, companyID uuid.UUID) (*model.Bid, error) {
	var bid model.Bid
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			b.id,
			b.project_id,
			b.trade_id,
			b.sub_id,
			COALESCE(s.company_name, '') AS sub_name,
			b.status,
			b.base_bid_amount,
			b.notes,
			b.received_at,
			b.created_at
		FROM leveling_bids b
		JOIN projects p ON p.id = b.project_id AND p.company_id = ?
		LEFT JOIN project_subs s ON s.id = b.sub_id
		WHERE b.id = ?
		LIMIT 1
	`, companyID, bidID).Scan(&bid).Error; err != nil {
		return nil, err
	}
	if bid.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &bid, nil
}

func (r *LevelingRepository) BidExists(ctx context.Context, tradeID, subID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM leveling_bids WHERE trade_id = ? AND sub_id = ?
	`, tradeID, subID).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *LevelingRepository) CreateBid(ctx context.Context, bid model.Bid) (*model.Bid, error) {
	var saved model.Bid
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO leveling_bids (project_id, trade_id, sub_id, status, base_bid_amount, notes, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, project_id, trade_id, sub_id, status, base_bid_amount, notes, received_at, created_at
	`,
		bid.ProjectID,
		bid.TradeID,
		bid.SubID,
		bid.Status,
		bid.BaseBidAmount,
		bid.Notes,
		bid.ReceivedAt,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	saved.SubName = bid.SubName
	return &saved, nil
}

func (r *LevelingRepository) UpdateBidStatus(ctx context.Context, bidID uuid.UUID, status model.BidStatus, receivedAt *time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE leveling_bids
		SET status = ?, received_at = COALESCE(?, received_at)
		WHERE id = ?
	`, status, receivedAt, bidID).Error
}

func (r *LevelingRepository) UpdateBidAmount(ctx context.Context, bidID uuid.UUID, amount *float64, notes string) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE leveling_bids
		SET base_bid_amount = ?, notes = ?
		WHERE id = ?
	`, amount, notes, bidID).Error
}

// DeleteBid hard-deletes the row; alternates go with it via the
// ON DELETE CASCADE on bid_alternates.
func (r *LevelingRepository) DeleteBid(ctx context.Context, bidID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM leveling_bids WHERE id = ?
	`, bidID).Error
}

func (r *LevelingRepository) UpsertBudget(ctx context.Context, budget model.TradeBudget) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO trade_budgets (project_id, trade_id, budget_amount, budget_notes, updated_at)
		VALUES (?, ?, ?, ?, NOW())
		ON CONFLICT (project_id, trade_id)
		DO UPDATE SET
			budget_amount = EXCLUDED.budget_amount,
			budget_notes = EXCLUDED.budget_notes,
			updated_at = NOW()
	`, budget.ProjectID, budget.TradeID, budget.BudgetAmount, budget.BudgetNotes).Error
}

func (r *LevelingRepository) ListBudgets(ctx context.Context, projectID uuid.UUID) ([]model.TradeBudget, error) {
	var budgets []model.TradeBudget
	if err := r.db.WithContext(ctx).Raw(`
		SELECT project_id, trade_id, budget_amount, budget_notes, updated_at
		FROM trade_budgets
		WHERE project_id = ?
	`, projectID).Scan(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *LevelingRepository) ListAlternates(ctx context.Context, projectID uuid.UUID) ([]model.Alternate, error) {
	var alternates []model.Alternate
	if err := r.db.WithContext(ctx).Raw(`
		SELECT a.id, a.bid_id, a.title, a.accepted, a.amount, a.notes, a.sort_order
		FROM bid_alternates a
		JOIN leveling_bids b ON b.id = a.bid_id
		WHERE b.project_id = ?
		ORDER BY a.sort_order ASC, a.title ASC
	`, projectID).Scan(&alternates).Error; err != nil {
		return nil, err
	}
	return alternates, nil
}

func (r *LevelingRepository) ListAlternatesForBid(ctx context.Context, bidID uuid.UUID) ([]model.Alternate, error) {
	var alternates []model.Alternate
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, bid_id, title, accepted, amount, notes, sort_order
		FROM bid_alternates
		WHERE bid_id = ?
		ORDER BY sort_order ASC, title ASC
	`, bidID).Scan(&alternates).Error; err != nil {
		return nil, err
	}
	return alternates, nil
}

// ReplaceAlternates swaps the full alternate list for a bid in one
// transaction. The list is small (bounded by what a sub offers), so a
// delete-and-reinsert keeps the write simple.
func (r *LevelingRepository) ReplaceAlternates(ctx context.Context, bidID uuid.UUID, alternates []model.Alternate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM bid_alternates WHERE bid_id = ?`, bidID).Error; err != nil {
			return err
		}
		for _, alt := range alternates {
			if err := tx.Exec(`
				INSERT INTO bid_alternates (bid_id, title, accepted, amount, notes, sort_order)
				VALUES (?, ?, ?, ?, ?, ?)
			`, bidID, alt.Title, alt.Accepted, alt.Amount, alt.Notes, alt.SortOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
