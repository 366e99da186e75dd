package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Borrow a user's stored borrow position in one market.
//
// The live balance is principal * market.borrow_index / interest_index; the
// stored principal is only rebased when the position is touched.
type Borrow struct {
	ID            uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID        string          `sql:"size:36;unique_index:borrow_idx" json:"user_id"`
	AssetID       string          `sql:"size:36;unique_index:borrow_idx" json:"asset_id"`
	Principal     decimal.Decimal `sql:"type:decimal(32,16)" json:"principal"`
	InterestIndex decimal.Decimal `sql:"type:decimal(32,16);default:1" json:"interest_index"`
	Version       int64           `sql:"default:0" json:"version"`
	CreatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IBorrowStore borrow store interface
type IBorrowStore interface {
	Create(ctx context.Context, tx *db.DB, borrow *Borrow) error
	Find(ctx context.Context, userID, assetID string) (*Borrow, error)
	FindByUser(ctx context.Context, userID string) ([]*Borrow, error)
	FindByAsset(ctx context.Context, assetID string) ([]*Borrow, error)
	CountOfBorrowers(ctx context.Context, assetID string) (int64, error)
	Update(ctx context.Context, tx *db.DB, borrow *Borrow) error
	All(ctx context.Context) ([]*Borrow, error)
	Users(ctx context.Context) ([]string, error)
}

// IBorrowService borrow/repay/liquidate transitions
type IBorrowService interface {
	Borrow(ctx context.Context, userID string, market *Market, amount decimal.Decimal) (*Borrow, error)
	Repay(ctx context.Context, userID string, market *Market, amount decimal.Decimal) (decimal.Decimal, error)
	Liquidate(ctx context.Context, liquidator, borrower string, borrowMarket, collateralMarket *Market, repayAmount decimal.Decimal) (*Liquidation, error)
}

// Liquidation outcome of one liquidate action
type Liquidation struct {
	Liquidator    string          `json:"liquidator"`
	Borrower      string          `json:"borrower"`
	AssetID       string          `json:"asset_id"`
	RepayAmount   decimal.Decimal `json:"repay_amount"`
	SeizedAssetID string          `json:"seized_asset_id"`
	// SeizedShares shares moved to the liquidator, protocol share excluded
	SeizedShares   decimal.Decimal `json:"seized_shares"`
	ProtocolShares decimal.Decimal `json:"protocol_shares"`
}
