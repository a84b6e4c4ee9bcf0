package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/buildops-leveling/internal/model"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// CreateSnapshot persists the header and its items atomically. Items
// are never written again after this.
func (r *SnapshotRepository) CreateSnapshot(ctx context.Context, snapshot model.Snapshot, items []model.SnapshotItem) (*model.Snapshot, error) {
	var saved model.Snapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			INSERT INTO leveling_snapshots (project_id, title, notes, created_by, locked)
			VALUES (?, ?, ?, ?, TRUE)
			RETURNING id, project_id, title, notes, created_by, created_at, locked
		`, snapshot.ProjectID, snapshot.Title, snapshot.Notes, snapshot.CreatedBy).Scan(&saved).Error
		if err != nil {
			return err
		}

		for _, item := range items {
			if err := tx.Exec(`
				INSERT INTO snapshot_items (snapshot_id, trade_id, trade_name, sub_id, sub_name, status, base_bid_amount, notes, line_items)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				saved.ID,
				item.TradeID,
				item.TradeName,
				item.SubID,
				item.SubName,
				item.Status,
				item.BaseBidAmount,
				item.Notes,
				item.LineItems,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *SnapshotRepository) ListSnapshots(ctx context.Context, projectID uuid.UUID) ([]model.Snapshot, error) {
	var snapshots []model.Snapshot
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, project_id, title, notes, created_by, created_at, locked
		FROM leveling_snapshots
		WHERE project_id = ?
		ORDER BY created_at DESC
	`, projectID).Scan(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *SnapshotRepository) GetSnapshot(ctx context.Context, snapshotID, companyID uuid.UUID) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	if err := r.db.WithContext(ctx).Raw(`
		SELECT s.id, s.project_id, s.title, s.notes, s.created_by, s.created_at, s.locked
		FROM leveling_snapshots s
		JOIN projects p ON p.id = s.project_id AND p.company_id = ?
		WHERE s.id = ?
		LIMIT 1
	`, companyID, snapshotID).Scan(&snapshot).Error; err != nil {
		return nil, err
	}
	if snapshot.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &snapshot, nil
}

func (r *SnapshotRepository) ListItems(ctx context.Context, snapshotID uuid.UUID) ([]model.SnapshotItem, error) {
	var items []model.SnapshotItem
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, snapshot_id, trade_id, trade_name, sub_id, sub_name, status, base_bid_amount, notes, line_items
		FROM snapshot_items
		WHERE snapshot_id = ?
		ORDER BY trade_name ASC, sub_name ASC
	`, snapshotID).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
