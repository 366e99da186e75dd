package vault

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type vaultStore struct {
	db *db.DB
}

// New new vault store
func New(db *db.DB) core.IVaultStore {
	return &vaultStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Vault{})
		if err := tx.AutoMigrate(core.Vault{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *vaultStore) Find(ctx context.Context, assetID string) (*core.Vault, error) {
	var vault core.Vault
	if err := s.db.View().Where("asset_id = ?", assetID).First(&vault).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Vault{AssetID: assetID}, nil
		}

		return nil, err
	}

	return &vault, nil
}

func (s *vaultStore) FindForUpdate(ctx context.Context, tx *db.DB, assetID string) (*core.Vault, error) {
	var vault core.Vault
	if err := tx.Update().Where("asset_id = ?", assetID).First(&vault).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Vault{AssetID: assetID}, nil
		}

		return nil, err
	}

	return &vault, nil
}

func (s *vaultStore) Save(ctx context.Context, tx *db.DB, vault *core.Vault) error {
	if vault.ID == 0 {
		return tx.Update().Create(vault).Error
	}

	version := vault.Version
	vault.Version++
	// column map so a balance drained to exactly zero still writes
	update := tx.Update().Model(core.Vault{}).
		Where("id = ? and version = ?", vault.ID, version).
		Updates(map[string]interface{}{
			"balance": vault.Balance,
			"version": vault.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	// a silent miss here would lose a balance movement
	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
