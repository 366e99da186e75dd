package member

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type memberStore struct {
	db *db.DB
}

// New new membership store
func New(db *db.DB) core.IMemberStore {
	return &memberStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Member{})
		if err := tx.AutoMigrate(core.Member{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *memberStore) Create(ctx context.Context, tx *db.DB, member *core.Member) error {
	return tx.Update().
		Where("user_id = ? and asset_id = ?", member.UserID, member.AssetID).
		FirstOrCreate(member).Error
}

func (s *memberStore) Delete(ctx context.Context, tx *db.DB, userID, assetID string) error {
	return tx.Update().
		Where("user_id = ? and asset_id = ?", userID, assetID).
		Delete(core.Member{}).Error
}

func (s *memberStore) Exists(ctx context.Context, userID, assetID string) (bool, error) {
	var member core.Member
	if err := s.db.View().Where("user_id = ? and asset_id = ?", userID, assetID).First(&member).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (s *memberStore) FindByUser(ctx context.Context, userID string) ([]*core.Member, error) {
	var members []*core.Member
	if err := s.db.View().Where("user_id = ?", userID).Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}
