package wallet

import (
	"context"
	"path/filepath"
	"testing"

	"lever/core"
	transferstore "lever/store/transfer"
	vaultstore "lever/store/vault"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVaultStore struct {
	vaults map[string]*core.Vault
}

func (s *fakeVaultStore) Find(ctx context.Context, assetID string) (*core.Vault, error) {
	if v, ok := s.vaults[assetID]; ok {
		return v, nil
	}

	return &core.Vault{AssetID: assetID}, nil
}

func (s *fakeVaultStore) FindForUpdate(ctx context.Context, tx *db.DB, assetID string) (*core.Vault, error) {
	return s.Find(ctx, assetID)
}

func (s *fakeVaultStore) Save(ctx context.Context, tx *db.DB, vault *core.Vault) error {
	s.vaults[vault.AssetID] = vault
	return nil
}

type fakeTransferStore struct {
	transfers []*core.Transfer
}

func (s *fakeTransferStore) Create(ctx context.Context, tx *db.DB, transfer *core.Transfer) error {
	transfer.ID = uint64(len(s.transfers) + 1)
	s.transfers = append(s.transfers, transfer)
	return nil
}

func (s *fakeTransferStore) Top(ctx context.Context, limit int) ([]*core.Transfer, error) {
	if limit > len(s.transfers) {
		limit = len(s.transfers)
	}

	return s.transfers[:limit], nil
}

func (s *fakeTransferStore) Handled(ctx context.Context, tx *db.DB, id uint64) error {
	return nil
}

const btcAsset = "btc-asset"

func TestDepositAndBalance(t *testing.T) {
	vaults := &fakeVaultStore{vaults: map[string]*core.Vault{}}
	service := New(vaults, &fakeTransferStore{})
	ctx := context.Background()

	balance, err := service.Balance(ctx, btcAsset)
	require.Nil(t, err)
	assert.True(t, balance.IsZero())

	require.Nil(t, service.Deposit(ctx, nil, btcAsset, decimal.NewFromInt(100)))
	assert.Equal(t, core.ErrInvalidAmount, service.Deposit(ctx, nil, btcAsset, decimal.Zero))

	balance, err = service.Balance(ctx, btcAsset)
	require.Nil(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)))
}

func TestTransferDebitsVault(t *testing.T) {
	vaults := &fakeVaultStore{vaults: map[string]*core.Vault{}}
	transfers := &fakeTransferStore{}
	service := New(vaults, transfers)
	ctx := context.Background()

	require.Nil(t, service.Deposit(ctx, nil, btcAsset, decimal.NewFromInt(100)))

	transfer := &core.Transfer{
		OpponentID: "user-1",
		AssetID:    btcAsset,
		Amount:     decimal.NewFromInt(30),
	}
	require.Nil(t, service.Transfer(ctx, nil, transfer))
	assert.NotEmpty(t, transfer.TraceID)
	assert.Len(t, transfers.transfers, 1)

	balance, err := service.Balance(ctx, btcAsset)
	require.Nil(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(70)))
}

func TestTransferNeverOverdraws(t *testing.T) {
	vaults := &fakeVaultStore{vaults: map[string]*core.Vault{}}
	service := New(vaults, &fakeTransferStore{})
	ctx := context.Background()

	require.Nil(t, service.Deposit(ctx, nil, btcAsset, decimal.NewFromInt(10)))

	err := service.Transfer(ctx, nil, &core.Transfer{
		OpponentID: "user-1",
		AssetID:    btcAsset,
		Amount:     decimal.NewFromInt(11),
	})
	assert.Equal(t, core.ErrInsufficientCash, err)
}

func TestMovementsChainWithinTransaction(t *testing.T) {
	database, err := db.Connect("sqlite3", filepath.Join(t.TempDir(), "lever.db"))
	require.Nil(t, err)
	require.Nil(t, db.Migrate(database))

	service := New(vaultstore.New(database), transferstore.New(database))
	ctx := context.Background()

	require.Nil(t, database.Tx(func(tx *db.DB) error {
		return service.Deposit(ctx, tx, btcAsset, decimal.NewFromInt(100))
	}))

	// the transfer must see the deposit made earlier in the same
	// transaction, not the committed balance
	require.Nil(t, database.Tx(func(tx *db.DB) error {
		if err := service.Deposit(ctx, tx, btcAsset, decimal.NewFromInt(50)); err != nil {
			return err
		}

		return service.Transfer(ctx, tx, &core.Transfer{
			OpponentID: "user-1",
			AssetID:    btcAsset,
			Amount:     decimal.NewFromInt(120),
		})
	}))

	balance, err := service.Balance(ctx, btcAsset)
	require.Nil(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(30)))
}

func TestTransferRejectsMalformedTrace(t *testing.T) {
	vaults := &fakeVaultStore{vaults: map[string]*core.Vault{}}
	service := New(vaults, &fakeTransferStore{})
	ctx := context.Background()

	require.Nil(t, service.Deposit(ctx, nil, btcAsset, decimal.NewFromInt(10)))

	err := service.Transfer(ctx, nil, &core.Transfer{
		TraceID:    "not-a-uuid",
		OpponentID: "user-1",
		AssetID:    btcAsset,
		Amount:     decimal.NewFromInt(1),
	})
	assert.Equal(t, core.ErrInvalidArgument, err)
}
