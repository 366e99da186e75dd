package market

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type marketStore struct {
	db *db.DB
}

// New new market store
func New(db *db.DB) core.IMarketStore {
	return &marketStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Market{})
		if err := tx.AutoMigrate(core.Market{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *marketStore) Create(ctx context.Context, tx *db.DB, market *core.Market) error {
	return tx.Update().Create(market).Error
}

func (s *marketStore) Find(ctx context.Context, assetID string) (*core.Market, error) {
	var market core.Market
	if err := s.db.View().Where("asset_id = ?", assetID).First(&market).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Market{}, nil
		}

		return nil, err
	}

	return &market, nil
}

func (s *marketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	var market core.Market
	if err := s.db.View().Where("symbol = ?", symbol).First(&market).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Market{}, nil
		}

		return nil, err
	}

	return &market, nil
}

func (s *marketStore) FindByShare(ctx context.Context, shareAssetID string) (*core.Market, error) {
	var market core.Market
	if err := s.db.View().Where("share_asset_id = ?", shareAssetID).First(&market).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Market{}, nil
		}

		return nil, err
	}

	return &market, nil
}

func (s *marketStore) All(ctx context.Context) ([]*core.Market, error) {
	var markets []*core.Market
	if err := s.db.View().Find(&markets).Error; err != nil {
		return nil, err
	}

	return markets, nil
}

func (s *marketStore) AllAsMap(ctx context.Context) (map[string]*core.Market, error) {
	markets, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	maps := make(map[string]*core.Market, len(markets))
	for _, m := range markets {
		maps[m.AssetID] = m
	}

	return maps, nil
}

func (s *marketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	version := market.Version
	market.Version++
	// column map so zero values persist, a lifted cap or an unpause
	// must not be skipped as a blank field
	update := tx.Update().Model(core.Market{}).
		Where("asset_id = ? and version = ?", market.AssetID, version).
		Updates(map[string]interface{}{
			"total_cash":             market.TotalCash,
			"total_borrows":          market.TotalBorrows,
			"reserves":               market.Reserves,
			"total_shares":           market.TotalShares,
			"reserve_factor":         market.ReserveFactor,
			"liquidation_incentive":  market.LiquidationIncentive,
			"protocol_seize_share":   market.ProtocolSeizeShare,
			"collateral_factor":      market.CollateralFactor,
			"close_factor":           market.CloseFactor,
			"supply_cap":             market.SupplyCap,
			"borrow_cap":             market.BorrowCap,
			"base_rate":              market.BaseRate,
			"multiplier":             market.Multiplier,
			"jump_multiplier":        market.JumpMultiplier,
			"kink":                   market.Kink,
			"mint_paused":            market.MintPaused,
			"redeem_paused":          market.RedeemPaused,
			"borrow_paused":          market.BorrowPaused,
			"accrued_at":             market.AccruedAt,
			"utilization_rate":       market.UtilizationRate,
			"exchange_rate":          market.ExchangeRate,
			"supply_rate_per_second": market.SupplyRatePerSecond,
			"borrow_rate_per_second": market.BorrowRatePerSecond,
			"borrow_index":           market.BorrowIndex,
			"version":                market.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
