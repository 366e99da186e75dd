package cmd

import (
	"lever/core"
	"lever/store/allowlist"
	"lever/store/borrow"
	"lever/store/market"
	"lever/store/member"
	"lever/store/price"
	"lever/store/reward"
	"lever/store/supply"
	"lever/store/transfer"
	"lever/store/vault"

	"github.com/fox-one/pkg/property"
	propertystore "github.com/fox-one/pkg/store/property"

	"github.com/fox-one/pkg/store/db"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideSystem() *core.System {
	return &core.System{
		Admins:    cfg.Admins,
		Guardians: cfg.Guardians,
		Genesis:   cfg.App.Genesis,
		Version:   rootCmd.Version,
	}
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideMarketStore(db *db.DB) core.IMarketStore {
	return market.New(db)
}

func provideSupplyStore(db *db.DB) core.ISupplyStore {
	return supply.New(db)
}

func provideBorrowStore(db *db.DB) core.IBorrowStore {
	return borrow.New(db)
}

func provideMemberStore(db *db.DB) core.IMemberStore {
	return member.New(db)
}

func provideRewardStore(db *db.DB) core.IRewardStore {
	return reward.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return price.New(db)
}

func provideAllowListStore(db *db.DB) core.IAllowListStore {
	return allowlist.New(db)
}

func provideVaultStore(db *db.DB) core.IVaultStore {
	return vault.New(db)
}

func provideTransferStore(db *db.DB) core.ITransferStore {
	return transfer.New(db)
}
