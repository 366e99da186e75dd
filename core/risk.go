package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// IRiskService policy layer consulted before every balance-changing action.
//
// Each hook checks pause/deny guards, market listing and the relevant
// liquidity or cap condition, keeps reward indices current for the affected
// accounts, and returns nil or a specific ErrorCode. A non-nil result aborts
// the enclosing transition entirely.
type IRiskService interface {
	MintAllowed(ctx context.Context, tx *db.DB, market *Market, userID string, amount decimal.Decimal) error
	RedeemAllowed(ctx context.Context, tx *db.DB, market *Market, userID string, shares decimal.Decimal) error
	BorrowAllowed(ctx context.Context, tx *db.DB, market *Market, userID string, amount decimal.Decimal) error
	RepayAllowed(ctx context.Context, tx *db.DB, market *Market, userID, borrower string) error
	LiquidateAllowed(ctx context.Context, tx *db.DB, borrowMarket, collateralMarket *Market, liquidator, borrower string, repayAmount decimal.Decimal) error
	SeizeAllowed(ctx context.Context, tx *db.DB, borrowMarket, collateralMarket *Market, liquidator, borrower string) error
	TransferAllowed(ctx context.Context, tx *db.DB, market *Market, from, to string, shares decimal.Decimal) error

	// EnterMarket opt a supply position in as collateral
	EnterMarket(ctx context.Context, userID, assetID string) error
	// ExitMarket denied while it would leave a shortfall or an open borrow
	ExitMarket(ctx context.Context, userID, assetID string) error

	// admin / guardian operations
	SupportMarket(ctx context.Context, caller string, market *Market) error
	SetCollateralFactor(ctx context.Context, caller, assetID string, factor decimal.Decimal) error
	SetCloseFactor(ctx context.Context, caller, assetID string, factor decimal.Decimal) error
	SetSupplyCap(ctx context.Context, caller, assetID string, cap decimal.Decimal) error
	SetBorrowCap(ctx context.Context, caller, assetID string, cap decimal.Decimal) error
	SetPaused(ctx context.Context, caller, assetID, action string, paused bool) error
	// SetLiquidationGate while on, only whitelisted liquidators may liquidate
	SetLiquidationGate(ctx context.Context, caller string, on bool) error
	LiquidationGate(ctx context.Context) (bool, error)

	// AccrueAll accrues interest and reward indices for every market
	AccrueAll(ctx context.Context, at time.Time) error
}

// pausable market actions
const (
	PauseActionMint   = "mint"
	PauseActionRedeem = "redeem"
	PauseActionBorrow = "borrow"
)
