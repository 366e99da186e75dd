package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
)

// Member one market an account has entered. Only entered markets count as
// collateral; the risk engine owns this set.
type Member struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string    `sql:"size:36;unique_index:member_idx" json:"user_id"`
	AssetID   string    `sql:"size:36;unique_index:member_idx" json:"asset_id"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IMemberStore market membership store interface
type IMemberStore interface {
	Create(ctx context.Context, tx *db.DB, member *Member) error
	Delete(ctx context.Context, tx *db.DB, userID, assetID string) error
	Exists(ctx context.Context, userID, assetID string) (bool, error)
	FindByUser(ctx context.Context, userID string) ([]*Member, error)
}
