package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LineItemsSchemaVersion is embedded in every frozen line-items payload
// so historical snapshots stay parseable as the live schema evolves.
const LineItemsSchemaVersion = 1

// Snapshot is an immutable capture of a project's leveling state.
// Locked is always true once created; neither the header nor the items
// are ever updated or deleted.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"projectId"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	CreatedBy uuid.UUID `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	Locked    bool      `json:"locked"`
}

// SnapshotItem freezes one (trade, sub) bid at capture time. Trade and
// sub names are denormalized so the item renders even if the live rows
// are later renamed or removed.
type SnapshotItem struct {
	ID            uuid.UUID      `json:"id"`
	SnapshotID    uuid.UUID      `json:"snapshotId"`
	TradeID       uuid.UUID      `json:"tradeId"`
	TradeName     string         `json:"tradeName"`
	SubID         uuid.UUID      `json:"subId"`
	SubName       string         `json:"subName"`
	Status        BidStatus      `json:"status"`
	BaseBidAmount *float64       `json:"baseBidAmount"`
	Notes         string         `json:"notes"`
	LineItems     datatypes.JSON `json:"lineItems"`
}

// SnapshotLineItems is the structured form of SnapshotItem.LineItems.
type SnapshotLineItems struct {
	SchemaVersion int             `json:"schema_version"`
	Alternates    []AlternateLine `json:"alternates"`
}

type AlternateLine struct {
	Title    string   `json:"title"`
	Accepted bool     `json:"accepted"`
	Amount   *float64 `json:"amount"`
	Notes    string   `json:"notes"`
}

// ParseLineItems decodes the frozen payload. Unknown fields from newer
// schema versions are ignored rather than rejected.
func (it SnapshotItem) ParseLineItems() (SnapshotLineItems, error) {
	var payload SnapshotLineItems
	if len(it.LineItems) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(it.LineItems, &payload); err != nil {
		return SnapshotLineItems{}, err
	}
	return payload, nil
}

// AsBid converts a frozen item into a pseudo-bid so the statistics
// engine treats snapshot rows and live rows identically.
func (it SnapshotItem) AsBid() Bid {
	return Bid{
		ID:            it.ID,
		TradeID:       it.TradeID,
		SubID:         it.SubID,
		SubName:       it.SubName,
		Status:        it.Status,
		BaseBidAmount: it.BaseBidAmount,
		Notes:         it.Notes,
	}
}

// SnapshotTradeLine groups a snapshot's items by trade with the stats
// recomputed from the frozen numbers.
type SnapshotTradeLine struct {
	TradeID   uuid.UUID      `json:"tradeId"`
	TradeName string         `json:"tradeName"`
	Items     []SnapshotItem `json:"items"`
	Stats     TradeStats     `json:"stats"`
}

type SnapshotView struct {
	Snapshot    Snapshot            `json:"snapshot"`
	ProjectName string              `json:"projectName"`
	Trades      []SnapshotTradeLine `json:"trades"`
}
