package borrow

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type borrowStore struct {
	db *db.DB
}

// New new borrow store
func New(db *db.DB) core.IBorrowStore {
	return &borrowStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Borrow{})
		if err := tx.AutoMigrate(core.Borrow{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *borrowStore) Create(ctx context.Context, tx *db.DB, borrow *core.Borrow) error {
	return tx.Update().Create(borrow).Error
}

func (s *borrowStore) Find(ctx context.Context, userID, assetID string) (*core.Borrow, error) {
	var borrow core.Borrow
	if err := s.db.View().Where("user_id = ? and asset_id = ?", userID, assetID).First(&borrow).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Borrow{}, nil
		}

		return nil, err
	}

	return &borrow, nil
}

func (s *borrowStore) FindByUser(ctx context.Context, userID string) ([]*core.Borrow, error) {
	var borrows []*core.Borrow
	if err := s.db.View().Where("user_id = ?", userID).Find(&borrows).Error; err != nil {
		return nil, err
	}

	return borrows, nil
}

func (s *borrowStore) FindByAsset(ctx context.Context, assetID string) ([]*core.Borrow, error) {
	var borrows []*core.Borrow
	if err := s.db.View().Where("asset_id = ?", assetID).Find(&borrows).Error; err != nil {
		return nil, err
	}

	return borrows, nil
}

func (s *borrowStore) CountOfBorrowers(ctx context.Context, assetID string) (int64, error) {
	var count int64
	if err := s.db.View().Model(core.Borrow{}).
		Where("asset_id = ? and principal > 0", assetID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (s *borrowStore) Update(ctx context.Context, tx *db.DB, borrow *core.Borrow) error {
	version := borrow.Version
	borrow.Version++
	// column map so a fully repaid principal of zero still writes
	update := tx.Update().Model(core.Borrow{}).
		Where("user_id = ? and asset_id = ? and version = ?", borrow.UserID, borrow.AssetID, version).
		Updates(map[string]interface{}{
			"principal":      borrow.Principal,
			"interest_index": borrow.InterestIndex,
			"version":        borrow.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *borrowStore) All(ctx context.Context) ([]*core.Borrow, error) {
	var borrows []*core.Borrow
	if err := s.db.View().Find(&borrows).Error; err != nil {
		return nil, err
	}

	return borrows, nil
}

func (s *borrowStore) Users(ctx context.Context) ([]string, error) {
	var users []string
	if err := s.db.View().Model(core.Borrow{}).
		Where("principal > 0").
		Pluck("distinct user_id", &users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
