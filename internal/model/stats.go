package model

import "github.com/google/uuid"

// TradeStats is the leveling math for one trade. Every field except
// CoverageCount is nil when the trade has no submitted, priced bids.
type TradeStats struct {
	Low                *float64 `json:"low"`
	High               *float64 `json:"high"`
	Average            *float64 `json:"average"`
	SpreadAmount       *float64 `json:"spreadAmount"`
	SpreadPercent      *float64 `json:"spreadPercent"`
	BudgetDeltaAmount  *float64 `json:"budgetDeltaAmount"`
	BudgetDeltaPercent *float64 `json:"budgetDeltaPercent"`
	CoverageCount      int      `json:"coverageCount"`
}

// Coverage is the project-wide bid coverage picture. Recomputed from
// live rows on every read, never persisted.
type Coverage struct {
	CoveragePct        int      `json:"coveragePct"`
	SubmittedCount     int      `json:"submittedCount"`
	AwaitingResponses  int      `json:"awaitingResponses"`
	TradesThin         []string `json:"tradesThin"`
	TargetBidsPerTrade int      `json:"targetBidsPerTrade"`
}

// TradeLine is one trade row on the leveling board: the trade, its
// budget (nil until first edited), its bids, and the derived stats.
type TradeLine struct {
	Trade  Trade        `json:"trade"`
	Budget *TradeBudget `json:"budget"`
	Bids   []Bid        `json:"bids"`
	Stats  TradeStats   `json:"stats"`
}

type LevelingBoard struct {
	ProjectID   uuid.UUID   `json:"projectId"`
	ProjectName string      `json:"projectName"`
	Trades      []TradeLine `json:"trades"`
	Coverage    Coverage    `json:"coverage"`
}
