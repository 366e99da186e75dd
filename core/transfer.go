package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Transfer one queued outbound token payment. TraceID dedups retries.
type Transfer struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID    string          `sql:"size:36;unique_index:transfer_trace_idx" json:"trace_id"`
	OpponentID string          `sql:"size:36" json:"opponent_id"`
	AssetID    string          `sql:"size:36" json:"asset_id"`
	Amount     decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Memo       types.JSONText  `sql:"type:varchar(512)" json:"memo,omitempty"`
	HandledAt  sql.NullTime    `json:"handled_at,omitempty"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// ITransferStore transfer queue store interface
type ITransferStore interface {
	Create(ctx context.Context, tx *db.DB, transfer *Transfer) error
	Top(ctx context.Context, limit int) ([]*Transfer, error)
	Handled(ctx context.Context, tx *db.DB, id uint64) error
}

// Vault per-asset custodial balance backing outbound transfers
type Vault struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:36;unique_index:vault_idx" json:"asset_id"`
	Balance   decimal.Decimal `sql:"type:decimal(32,16)" json:"balance"`
	Version   int64           `sql:"default:0" json:"version"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IVaultStore vault store interface
type IVaultStore interface {
	Find(ctx context.Context, assetID string) (*Vault, error)
	// FindForUpdate reads through the transaction, so a balance already
	// moved earlier in the same tx is visible to the next movement
	FindForUpdate(ctx context.Context, tx *db.DB, assetID string) (*Vault, error)
	Save(ctx context.Context, tx *db.DB, vault *Vault) error
}

// IWalletService fungible token collaborator with safe-transfer discipline:
// a transfer never moves more than the vault holds, and callers decide whether
// a shortfall is fatal.
type IWalletService interface {
	Balance(ctx context.Context, assetID string) (decimal.Decimal, error)
	// Deposit credits the vault, e.g. mint/repay proceeds or reward funding
	Deposit(ctx context.Context, tx *db.DB, assetID string, amount decimal.Decimal) error
	// Transfer debits the vault and enqueues an outbound payment
	Transfer(ctx context.Context, tx *db.DB, transfer *Transfer) error
}
