package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// RewardConfig one emission schedule per (market, incentive token) pair.
//
// Configs are never removed once created; deleting one would destroy the
// per-user index history needed for correct future accrual.
type RewardConfig struct {
	ID            uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	MarketAssetID string `sql:"size:36;unique_index:reward_cfg_idx" json:"market_asset_id"`
	RewardAssetID string `sql:"size:36;unique_index:reward_cfg_idx" json:"reward_asset_id"`
	Owner         string `sql:"size:36" json:"owner"`
	EndAt         time.Time `json:"end_at"`
	// SupplySpeed emission per second to suppliers, below EmissionCap
	SupplySpeed decimal.Decimal `sql:"type:decimal(32,16)" json:"supply_speed"`
	// BorrowSpeed emission per second to borrowers, below EmissionCap
	BorrowSpeed decimal.Decimal `sql:"type:decimal(32,16)" json:"borrow_speed"`
	// SupplyIndex global supply-side index, starts at the initial constant
	SupplyIndex     decimal.Decimal `sql:"type:decimal(42,16);default:1" json:"supply_index"`
	SupplyAccruedAt time.Time       `json:"supply_accrued_at"`
	// BorrowIndex global borrow-side index, starts at the initial constant
	BorrowIndex     decimal.Decimal `sql:"type:decimal(42,16);default:1" json:"borrow_index"`
	BorrowAccruedAt time.Time       `json:"borrow_accrued_at"`
	Version         int64           `sql:"default:0" json:"version"`
	CreatedAt       time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// RewardUserState per (config, user) last-synced indices and pending rewards
type RewardUserState struct {
	ID       uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	ConfigID uint64 `sql:"unique_index:reward_user_idx" json:"config_id"`
	UserID   string `sql:"size:36;unique_index:reward_user_idx" json:"user_id"`
	// SupplyIndex last supply-side index this user settled against
	SupplyIndex decimal.Decimal `sql:"type:decimal(42,16)" json:"supply_index"`
	// BorrowIndex last borrow-side index this user settled against
	BorrowIndex decimal.Decimal `sql:"type:decimal(42,16)" json:"borrow_index"`
	// Accrued rewards earned but not yet disbursed
	Accrued   decimal.Decimal `sql:"type:decimal(32,16)" json:"accrued"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IRewardStore reward config/user-state store interface
type IRewardStore interface {
	CreateConfig(ctx context.Context, tx *db.DB, cfg *RewardConfig) error
	FindConfig(ctx context.Context, marketAssetID, rewardAssetID string) (*RewardConfig, error)
	FindConfigByID(ctx context.Context, id uint64) (*RewardConfig, error)
	ConfigsByMarket(ctx context.Context, tx *db.DB, marketAssetID string) ([]*RewardConfig, error)
	AllConfigs(ctx context.Context) ([]*RewardConfig, error)
	UpdateConfig(ctx context.Context, tx *db.DB, cfg *RewardConfig) error
	FindUserState(ctx context.Context, tx *db.DB, configID uint64, userID string) (*RewardUserState, error)
	UserStatesByUser(ctx context.Context, userID string) ([]*RewardUserState, error)
	SaveUserState(ctx context.Context, tx *db.DB, state *RewardUserState) error
}

// IRewardService reward index engine
type IRewardService interface {
	// UpdateMarketIndices advances every config on the market up to at
	UpdateMarketIndices(ctx context.Context, tx *db.DB, market *Market, at time.Time) error
	// DistributeSupplier settles supply-side rewards for one user
	DistributeSupplier(ctx context.Context, tx *db.DB, market *Market, userID string, at time.Time) error
	// DistributeBorrower settles borrow-side rewards for one user
	DistributeBorrower(ctx context.Context, tx *db.DB, market *Market, userID string, at time.Time) error
	// Claim disburses pending rewards up to the vault's holdings; shortfalls
	// stay accrued for the next attempt
	Claim(ctx context.Context, userID string) ([]*Transfer, error)
	// Accrued pending rewards per reward asset, read-only
	Accrued(ctx context.Context, userID string) (map[string]decimal.Decimal, error)

	CreateConfig(ctx context.Context, caller string, cfg *RewardConfig) error
	SetSpeeds(ctx context.Context, caller, marketAssetID, rewardAssetID string, supplySpeed, borrowSpeed decimal.Decimal) error
	SetEndAt(ctx context.Context, caller, marketAssetID, rewardAssetID string, endAt time.Time) error
	// SetPaused pausing stops transfers, never accrual; only admin unpauses
	SetPaused(ctx context.Context, caller string, paused bool) error
}
