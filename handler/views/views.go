package views

import (
	"lever/core"

	"github.com/shopspring/decimal"
)

// Market a listed market with its live rates
type Market struct {
	*core.Market
	// SupplyRate current yearly supply rate
	SupplyRate decimal.Decimal `json:"supply_rate"`
	// BorrowRate current yearly borrow rate
	BorrowRate decimal.Decimal `json:"borrow_rate"`
	// Suppliers count of open supply positions
	Suppliers int64 `json:"suppliers"`
	// Borrowers count of open borrow positions
	Borrowers int64 `json:"borrowers"`
}

// Account positions with liquidity
type Account struct {
	*core.Account
}

// Reward pending reward per incentive token
type Reward struct {
	UserID  string                     `json:"user_id"`
	Accrued map[string]decimal.Decimal `json:"accrued"`
}
