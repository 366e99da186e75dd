package supply

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type supplyStore struct {
	db *db.DB
}

// New new supply store
func New(db *db.DB) core.ISupplyStore {
	return &supplyStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Supply{})
		if err := tx.AutoMigrate(core.Supply{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *supplyStore) Create(ctx context.Context, tx *db.DB, supply *core.Supply) error {
	return tx.Update().Create(supply).Error
}

func (s *supplyStore) Find(ctx context.Context, userID, assetID string) (*core.Supply, error) {
	var supply core.Supply
	if err := s.db.View().Where("user_id = ? and asset_id = ?", userID, assetID).First(&supply).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Supply{}, nil
		}

		return nil, err
	}

	return &supply, nil
}

func (s *supplyStore) FindByUser(ctx context.Context, userID string) ([]*core.Supply, error) {
	var supplies []*core.Supply
	if err := s.db.View().Where("user_id = ?", userID).Find(&supplies).Error; err != nil {
		return nil, err
	}

	return supplies, nil
}

func (s *supplyStore) FindByAsset(ctx context.Context, assetID string) ([]*core.Supply, error) {
	var supplies []*core.Supply
	if err := s.db.View().Where("asset_id = ?", assetID).Find(&supplies).Error; err != nil {
		return nil, err
	}

	return supplies, nil
}

func (s *supplyStore) Update(ctx context.Context, tx *db.DB, supply *core.Supply) error {
	version := supply.Version
	supply.Version++
	// column map so a fully redeemed share count of zero still writes
	update := tx.Update().Model(core.Supply{}).
		Where("user_id = ? and asset_id = ? and version = ?", supply.UserID, supply.AssetID, version).
		Updates(map[string]interface{}{
			"shares":  supply.Shares,
			"version": supply.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *supplyStore) All(ctx context.Context) ([]*core.Supply, error) {
	var supplies []*core.Supply
	if err := s.db.View().Find(&supplies).Error; err != nil {
		return nil, err
	}

	return supplies, nil
}
