package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Supply a user's share position in one market
type Supply struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID  string `sql:"size:36;unique_index:supply_idx" json:"user_id"`
	AssetID string `sql:"size:36;unique_index:supply_idx" json:"asset_id"`
	// Shares market share balance, redeemable via the exchange rate
	Shares    decimal.Decimal `sql:"type:decimal(32,16)" json:"shares"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ISupplyStore supply store interface
type ISupplyStore interface {
	Create(ctx context.Context, tx *db.DB, supply *Supply) error
	Find(ctx context.Context, userID, assetID string) (*Supply, error)
	FindByUser(ctx context.Context, userID string) ([]*Supply, error)
	FindByAsset(ctx context.Context, assetID string) ([]*Supply, error)
	Update(ctx context.Context, tx *db.DB, supply *Supply) error
	All(ctx context.Context) ([]*Supply, error)
}

// ISupplyService mint/redeem transitions
type ISupplyService interface {
	Mint(ctx context.Context, userID string, market *Market, amount decimal.Decimal) (*Supply, error)
	Redeem(ctx context.Context, userID string, market *Market, shares decimal.Decimal) (decimal.Decimal, error)
	RedeemUnderlying(ctx context.Context, userID string, market *Market, amount decimal.Decimal) (decimal.Decimal, error)
}
