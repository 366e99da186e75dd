package price

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.IPriceStore {
	return &priceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Price{})
		if err := tx.AutoMigrate(core.Price{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *priceStore) Save(ctx context.Context, price *core.Price) error {
	return s.db.Update().
		Where("asset_id = ?", price.AssetID).
		Assign(core.Price{
			Price:     price.Price,
			Content:   price.Content,
			UpdatedAt: price.UpdatedAt,
		}).
		FirstOrCreate(price).Error
}

func (s *priceStore) Find(ctx context.Context, assetID string) (*core.Price, error) {
	var price core.Price
	if err := s.db.View().Where("asset_id = ?", assetID).First(&price).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Price{}, nil
		}

		return nil, err
	}

	return &price, nil
}
