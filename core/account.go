package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Account an address with its positions across entered markets
type Account struct {
	UserID    string          `json:"user_id"`
	Liquidity decimal.Decimal `json:"liquidity"`
	Shortfall decimal.Decimal `json:"shortfall"`
	Supplies  []*Supply       `json:"supplies"`
	Borrows   []*Borrow       `json:"borrows"`
}

// AccountLiquidity spare borrowing power and shortfall, both non-negative and
// mutually exclusive
type AccountLiquidity struct {
	Liquidity decimal.Decimal `json:"liquidity"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// IAccountService account liquidity computation
type IAccountService interface {
	// CalculateAccountLiquidity liquidity over entered markets only
	CalculateAccountLiquidity(ctx context.Context, userID string) (*AccountLiquidity, error)
	// HypotheticalAccountLiquidity liquidity as if redeemShares/borrowAmount in
	// the modified market had already happened
	HypotheticalAccountLiquidity(ctx context.Context, userID, modifiedAssetID string, redeemShares, borrowAmount decimal.Decimal) (*AccountLiquidity, error)
	// SeizeShares collateral shares a liquidator receives for repayAmount
	SeizeShares(ctx context.Context, borrowMarket, collateralMarket *Market, repayAmount decimal.Decimal) (decimal.Decimal, error)
	// LoadAccount positions plus liquidity, for read-only queries
	LoadAccount(ctx context.Context, userID string) (*Account, error)
}
