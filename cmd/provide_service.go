package cmd

import (
	"lever/core"
	accountservice "lever/service/account"
	allowlistservice "lever/service/allowlist"
	borrowservice "lever/service/borrow"
	marketservice "lever/service/market"
	oracleservice "lever/service/oracle"
	rewardservice "lever/service/reward"
	riskservice "lever/service/risk"
	supplyservice "lever/service/supply"
	walletservice "lever/service/wallet"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
)

func provideMarketService(marketStore core.IMarketStore) core.IMarketService {
	return marketservice.New(marketStore)
}

func provideWalletService(vaultStore core.IVaultStore, transferStore core.ITransferStore) core.IWalletService {
	return walletservice.New(vaultStore, transferStore)
}

func provideAllowListService(system *core.System, allowListStore core.IAllowListStore) core.IAllowListService {
	return allowlistservice.New(system, allowListStore)
}

func providePriceService(priceStore core.IPriceStore) core.IPriceOracleService {
	srv, err := oracleservice.New(cfg.Oracle, priceStore)
	if err != nil {
		panic(err)
	}

	return srv
}

func provideAccountService(
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	memberStore core.IMemberStore,
	priceService core.IPriceOracleService,
) core.IAccountService {
	return accountservice.New(marketStore, supplyStore, borrowStore, memberStore, priceService)
}

func provideRewardService(
	system *core.System,
	database *db.DB,
	rewardStore core.IRewardStore,
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	walletService core.IWalletService,
	propertyStore property.Store,
) core.IRewardService {
	return rewardservice.New(system, database, rewardStore, marketStore, supplyStore, borrowStore, walletService, propertyStore)
}

func provideRiskService(
	system *core.System,
	database *db.DB,
	marketStore core.IMarketStore,
	memberStore core.IMemberStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	rewardService core.IRewardService,
	allowListService core.IAllowListService,
	propertyStore property.Store,
) core.IRiskService {
	return riskservice.New(system, database, marketStore, memberStore, supplyStore, borrowStore, marketService, accountService, rewardService, allowListService, propertyStore)
}

func provideSupplyService(
	database *db.DB,
	supplyStore core.ISupplyStore,
	marketStore core.IMarketStore,
	marketService core.IMarketService,
	riskService core.IRiskService,
	walletService core.IWalletService,
) core.ISupplyService {
	return supplyservice.New(database, supplyStore, marketStore, marketService, riskService, walletService)
}

func provideBorrowService(
	database *db.DB,
	borrowStore core.IBorrowStore,
	supplyStore core.ISupplyStore,
	marketStore core.IMarketStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	riskService core.IRiskService,
	walletService core.IWalletService,
) core.IBorrowService {
	return borrowservice.New(database, borrowStore, supplyStore, marketStore, marketService, accountService, riskService, walletService)
}
