package allowlist

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type allowListStore struct {
	db *db.DB
}

// New new allow list store
func New(db *db.DB) core.IAllowListStore {
	return &allowListStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.AllowListItem{})
		if err := tx.AutoMigrate(core.AllowListItem{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *allowListStore) Save(ctx context.Context, item *core.AllowListItem) error {
	return s.db.Update().
		Where("user_id = ? and scope = ?", item.UserID, item.Scope).
		FirstOrCreate(item).Error
}

func (s *allowListStore) Delete(ctx context.Context, userID, scope string) error {
	return s.db.Update().
		Where("user_id = ? and scope = ?", userID, scope).
		Delete(core.AllowListItem{}).Error
}

func (s *allowListStore) Exists(ctx context.Context, userID, scope string) (bool, error) {
	var item core.AllowListItem
	if err := s.db.View().Where("user_id = ? and scope = ?", userID, scope).First(&item).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (s *allowListStore) All(ctx context.Context, scope string) ([]*core.AllowListItem, error) {
	var items []*core.AllowListItem
	if err := s.db.View().Where("scope = ?", scope).Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}
