package reward

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type rewardStore struct {
	db *db.DB
}

// New new reward store
func New(db *db.DB) core.IRewardStore {
	return &rewardStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update()
		if err := tx.Model(core.RewardConfig{}).AutoMigrate(core.RewardConfig{}).Error; err != nil {
			return err
		}

		if err := tx.Model(core.RewardUserState{}).AutoMigrate(core.RewardUserState{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *rewardStore) CreateConfig(ctx context.Context, tx *db.DB, cfg *core.RewardConfig) error {
	return tx.Update().Create(cfg).Error
}

func (s *rewardStore) FindConfig(ctx context.Context, marketAssetID, rewardAssetID string) (*core.RewardConfig, error) {
	var cfg core.RewardConfig
	if err := s.db.View().
		Where("market_asset_id = ? and reward_asset_id = ?", marketAssetID, rewardAssetID).
		First(&cfg).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.RewardConfig{}, nil
		}

		return nil, err
	}

	return &cfg, nil
}

func (s *rewardStore) FindConfigByID(ctx context.Context, id uint64) (*core.RewardConfig, error) {
	var cfg core.RewardConfig
	if err := s.db.View().Where("id = ?", id).First(&cfg).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.RewardConfig{}, nil
		}

		return nil, err
	}

	return &cfg, nil
}

// ConfigsByMarket reads through the transaction, so an index already advanced
// earlier in the same tx is visible to the next settlement
func (s *rewardStore) ConfigsByMarket(ctx context.Context, tx *db.DB, marketAssetID string) ([]*core.RewardConfig, error) {
	var cfgs []*core.RewardConfig
	if err := tx.Update().Where("market_asset_id = ?", marketAssetID).Find(&cfgs).Error; err != nil {
		return nil, err
	}

	return cfgs, nil
}

func (s *rewardStore) AllConfigs(ctx context.Context) ([]*core.RewardConfig, error) {
	var cfgs []*core.RewardConfig
	if err := s.db.View().Find(&cfgs).Error; err != nil {
		return nil, err
	}

	return cfgs, nil
}

func (s *rewardStore) UpdateConfig(ctx context.Context, tx *db.DB, cfg *core.RewardConfig) error {
	version := cfg.Version
	cfg.Version++
	// column map so a speed dialed down to zero still writes
	update := tx.Update().Model(core.RewardConfig{}).
		Where("id = ? and version = ?", cfg.ID, version).
		Updates(map[string]interface{}{
			"end_at":            cfg.EndAt,
			"supply_speed":      cfg.SupplySpeed,
			"borrow_speed":      cfg.BorrowSpeed,
			"supply_index":      cfg.SupplyIndex,
			"supply_accrued_at": cfg.SupplyAccruedAt,
			"borrow_index":      cfg.BorrowIndex,
			"borrow_accrued_at": cfg.BorrowAccruedAt,
			"version":           cfg.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *rewardStore) FindUserState(ctx context.Context, tx *db.DB, configID uint64, userID string) (*core.RewardUserState, error) {
	var state core.RewardUserState
	if err := tx.Update().
		Where("config_id = ? and user_id = ?", configID, userID).
		First(&state).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.RewardUserState{}, nil
		}

		return nil, err
	}

	return &state, nil
}

func (s *rewardStore) UserStatesByUser(ctx context.Context, userID string) ([]*core.RewardUserState, error) {
	var states []*core.RewardUserState
	if err := s.db.View().Where("user_id = ?", userID).Find(&states).Error; err != nil {
		return nil, err
	}

	return states, nil
}

func (s *rewardStore) SaveUserState(ctx context.Context, tx *db.DB, state *core.RewardUserState) error {
	if state.ID == 0 {
		return tx.Update().Create(state).Error
	}

	version := state.Version
	state.Version++
	// column map so claiming down to zero accrued still writes
	update := tx.Update().Model(core.RewardUserState{}).
		Where("id = ? and version = ?", state.ID, version).
		Updates(map[string]interface{}{
			"supply_index": state.SupplyIndex,
			"borrow_index": state.BorrowIndex,
			"accrued":      state.Accrued,
			"version":      state.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
