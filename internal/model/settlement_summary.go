package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementSummary is a cached snapshot of group balances, stored as JSONB on
// the group row. Keys of Members and Balances are membership ids.
type SettlementSummary struct {
	LastCalculatedAt time.Time                   `json:"last_calculated_at"`
	Total            SettlementTotals            `json:"total"`
	Members          map[string]MemberSettlement `json:"members"`
}

type SettlementTotals struct {
	Expenses decimal.Decimal `json:"expenses"`
	Payments decimal.Decimal `json:"payments"`
}

type MemberSettlement struct {
	NetBalance decimal.Decimal            `json:"net_balance"`
	TotalSpent decimal.Decimal            `json:"total_spent"`
	TotalShare decimal.Decimal            `json:"total_share"`
	Balances   map[string]decimal.Decimal `json:"balances"`
}
