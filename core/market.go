package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Market one listed asset pool supporting mint/redeem/borrow/repay
type Market struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID string `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	Symbol  string `sql:"size:20;unique_index:symbol_idx" json:"symbol"`
	// ShareAssetID identifies the market's own share token
	ShareAssetID string          `sql:"size:36;unique_index:share_asset_idx" json:"share_asset_id"`
	TotalCash    decimal.Decimal `sql:"type:decimal(32,16)" json:"total_cash"`
	TotalBorrows decimal.Decimal `sql:"type:decimal(32,16)" json:"total_borrows"`
	Reserves     decimal.Decimal `sql:"type:decimal(32,16)" json:"reserves"`
	// TotalShares cumulative share supply minted by this market
	TotalShares decimal.Decimal `sql:"type:decimal(32,16)" json:"total_shares"`
	// InitExchangeRate exchange rate used before any share exists
	InitExchangeRate decimal.Decimal `sql:"type:decimal(20,8);default:1" json:"init_exchange_rate"`
	// ReserveFactor fraction of accrued interest kept as reserves, [0, 1]
	ReserveFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"reserve_factor"`
	// LiquidationIncentive discount granted to liquidators, e.g. 0.1
	LiquidationIncentive decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_incentive"`
	// ProtocolSeizeShare fraction of seized collateral retained as reserves
	ProtocolSeizeShare decimal.Decimal `sql:"type:decimal(20,8)" json:"protocol_seize_share"`
	// CollateralFactor fraction of supply value counted as borrowing power, [0, 0.9]
	CollateralFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"collateral_factor"`
	// CloseFactor max fraction of a borrow repayable in one liquidation, [0.05, 0.9]
	CloseFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"close_factor"`
	// SupplyCap max underlying value supplied, zero means unlimited
	SupplyCap decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"supply_cap"`
	// BorrowCap max total borrows, zero means unlimited
	BorrowCap decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"borrow_cap"`
	// BaseRate base borrow rate per year, e.g. 0.025
	BaseRate decimal.Decimal `sql:"type:decimal(20,8)" json:"base_rate"`
	// Multiplier slope of the borrow rate against utilization, per year
	Multiplier decimal.Decimal `sql:"type:decimal(20,8)" json:"multiplier"`
	// JumpMultiplier slope applied above the kink, per year
	JumpMultiplier decimal.Decimal `sql:"type:decimal(20,8)" json:"jump_multiplier"`
	// Kink utilization point where the jump multiplier kicks in
	Kink        decimal.Decimal `sql:"type:decimal(20,8)" json:"kink"`
	MintPaused  bool            `sql:"default:false" json:"mint_paused"`
	RedeemPaused bool           `sql:"default:false" json:"redeem_paused"`
	BorrowPaused bool           `sql:"default:false" json:"borrow_paused"`
	// AccruedAt timestamp of the last interest accrual
	AccruedAt time.Time `json:"accrued_at"`

	// cached rates, refreshed on every accrual
	UtilizationRate     decimal.Decimal `sql:"type:decimal(20,16)" json:"utilization_rate"`
	ExchangeRate        decimal.Decimal `sql:"type:decimal(20,16)" json:"exchange_rate"`
	SupplyRatePerSecond decimal.Decimal `sql:"type:decimal(20,16)" json:"supply_rate_per_second"`
	BorrowRatePerSecond decimal.Decimal `sql:"type:decimal(20,16)" json:"borrow_rate_per_second"`

	BorrowIndex decimal.Decimal `sql:"type:decimal(32,16)" json:"borrow_index"`
	Version     int64           `sql:"default:0" json:"version"`
	CreatedAt   time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// CurExchangeRate cached exchange rate, init rate before the first accrual
func (m *Market) CurExchangeRate() decimal.Decimal {
	if m.ExchangeRate.IsPositive() {
		return m.ExchangeRate
	}

	return m.InitExchangeRate
}

// IsDeprecated a deprecated market may be liquidated regardless of shortfall
func (m *Market) IsDeprecated() bool {
	return m.CollateralFactor.IsZero() &&
		m.BorrowPaused &&
		m.ReserveFactor.GreaterThanOrEqual(decimal.New(1, 0))
}

// TotalSupplies cash + borrows - reserves, must stay non-negative
func (m *Market) TotalSupplies() decimal.Decimal {
	return m.TotalCash.Add(m.TotalBorrows).Sub(m.Reserves)
}

// IMarketStore market store interface
type IMarketStore interface {
	Create(ctx context.Context, tx *db.DB, market *Market) error
	Find(ctx context.Context, assetID string) (*Market, error)
	FindBySymbol(ctx context.Context, symbol string) (*Market, error)
	FindByShare(ctx context.Context, shareAssetID string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
	AllAsMap(ctx context.Context) (map[string]*Market, error)
	Update(ctx context.Context, tx *db.DB, market *Market) error
}

// IMarketService market service interface
type IMarketService interface {
	AccrueInterest(ctx context.Context, tx *db.DB, market *Market, at time.Time) error
	CurBorrowRate(ctx context.Context, market *Market) (decimal.Decimal, error)
	CurSupplyRate(ctx context.Context, market *Market) (decimal.Decimal, error)
}
