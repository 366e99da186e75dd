package wallet

import (
	"context"

	"lever/core"
	"lever/pkg/id"

	"github.com/fox-one/pkg/store/db"
	"github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

type walletService struct {
	vaultStore    core.IVaultStore
	transferStore core.ITransferStore
}

// New new wallet service backed by the vault ledger
func New(vaultStore core.IVaultStore, transferStore core.ITransferStore) core.IWalletService {
	return &walletService{
		vaultStore:    vaultStore,
		transferStore: transferStore,
	}
}

func (s *walletService) Balance(ctx context.Context, assetID string) (decimal.Decimal, error) {
	vault, err := s.vaultStore.Find(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return vault.Balance, nil
}

func (s *walletService) Deposit(ctx context.Context, tx *db.DB, assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	vault, err := s.vaultStore.FindForUpdate(ctx, tx, assetID)
	if err != nil {
		return err
	}

	vault.Balance = vault.Balance.Add(amount)
	return s.vaultStore.Save(ctx, tx, vault)
}

// Transfer debits the vault and queues the payment. The vault never goes
// negative; callers decide whether a shortfall is fatal.
func (s *walletService) Transfer(ctx context.Context, tx *db.DB, transfer *core.Transfer) error {
	if !transfer.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	// trace ids dedup retried payments, so they must be well formed
	if transfer.TraceID == "" {
		transfer.TraceID = id.GenTraceID()
	} else if _, err := uuid.FromString(transfer.TraceID); err != nil {
		return core.ErrInvalidArgument
	}

	vault, err := s.vaultStore.FindForUpdate(ctx, tx, transfer.AssetID)
	if err != nil {
		return err
	}

	if vault.Balance.LessThan(transfer.Amount) {
		return core.ErrInsufficientCash
	}

	vault.Balance = vault.Balance.Sub(transfer.Amount)
	if err := s.vaultStore.Save(ctx, tx, vault); err != nil {
		return err
	}

	return s.transferStore.Create(ctx, tx, transfer)
}
