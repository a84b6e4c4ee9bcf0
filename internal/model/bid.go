package model

import (
	"time"

	"github.com/google/uuid"
)

type BidStatus string

const (
	BidStatusInvited    BidStatus = "invited"
	BidStatusBidding    BidStatus = "bidding"
	BidStatusSubmitted  BidStatus = "submitted"
	BidStatusDeclined   BidStatus = "declined"
	BidStatusNoResponse BidStatus = "no_response"
)

// ParseBidStatus validates a raw status string. Transitions between
// statuses are intentionally unconstrained; only the value set is checked.
func ParseBidStatus(raw string) (BidStatus, bool) {
	switch BidStatus(raw) {
	case BidStatusInvited, BidStatusBidding, BidStatusSubmitted, BidStatusDeclined, BidStatusNoResponse:
		return BidStatus(raw), true
	default:
		return "", false
	}
}

// Active reports whether the status still counts toward trade coverage.
// Declined is the only status that takes a sub out of the running.
func (s BidStatus) Active() bool {
	return s != BidStatusDeclined
}

// Awaiting reports whether the sub has not given a final answer yet.
func (s BidStatus) Awaiting() bool {
	switch s {
	case BidStatusInvited, BidStatusBidding, BidStatusNoResponse:
		return true
	default:
		return false
	}
}

// Bid is one subcontractor's pricing position for one trade on one project.
// At most one row exists per (trade, sub) pair; removal is a hard delete.
type Bid struct {
	ID            uuid.UUID   `json:"id"`
	ProjectID     uuid.UUID   `json:"projectId"`
	TradeID       uuid.UUID   `json:"tradeId"`
	SubID         uuid.UUID   `json:"subId"`
	SubName       string      `json:"subName"`
	Status        BidStatus   `json:"status"`
	BaseBidAmount *float64    `json:"baseBidAmount"`
	Notes         string      `json:"notes"`
	ReceivedAt    *time.Time  `json:"receivedAt"`
	CreatedAt     time.Time   `json:"createdAt"`
	Alternates    []Alternate `json:"alternates" gorm:"-"`
}

// Alternate is a named conditional price adjustment attached to a bid.
// It contributes to the accepted total only while Accepted is true.
type Alternate struct {
	ID        uuid.UUID `json:"id"`
	BidID     uuid.UUID `json:"bidId"`
	Title     string    `json:"title"`
	Accepted  bool      `json:"accepted"`
	Amount    *float64  `json:"amount"`
	Notes     string    `json:"notes"`
	SortOrder int       `json:"sortOrder"`
}

// AcceptedTotal is the bid's base amount plus every accepted alternate.
// Derived on demand, never stored. Nil when the bid has no base amount.
func (b Bid) AcceptedTotal() *float64 {
	if b.BaseBidAmount == nil {
		return nil
	}
	total := *b.BaseBidAmount
	for _, alt := range b.Alternates {
		if alt.Accepted && alt.Amount != nil {
			total += *alt.Amount
		}
	}
	return &total
}

type TradeBudget struct {
	ProjectID    uuid.UUID `json:"projectId"`
	TradeID      uuid.UUID `json:"tradeId"`
	BudgetAmount *float64  `json:"budgetAmount"`
	BudgetNotes  string    `json:"budgetNotes"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
