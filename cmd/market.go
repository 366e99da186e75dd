package cmd

import (
	"strings"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var addMarketCmd = &cobra.Command{
	Use:     "add-market",
	Aliases: []string{"am"},
	Short:   "list a new market",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		riskService := buildRiskService(database)

		caller, _ := cmd.Flags().GetString("caller")
		symbol, _ := cmd.Flags().GetString("symbol")
		assetID, _ := cmd.Flags().GetString("asset")
		shareAssetID, _ := cmd.Flags().GetString("share-asset")
		if symbol == "" || assetID == "" || shareAssetID == "" {
			cmd.PrintErrln("symbol, asset and share-asset are required")
			return
		}

		market := &core.Market{
			Symbol:               strings.ToUpper(symbol),
			AssetID:              assetID,
			ShareAssetID:         shareAssetID,
			InitExchangeRate:     decimalFlag(cmd, "init-exchange-rate"),
			ReserveFactor:        decimalFlag(cmd, "reserve-factor"),
			LiquidationIncentive: decimalFlag(cmd, "liquidation-incentive"),
			ProtocolSeizeShare:   decimalFlag(cmd, "protocol-seize-share"),
			CollateralFactor:     decimalFlag(cmd, "collateral-factor"),
			CloseFactor:          decimalFlag(cmd, "close-factor"),
			BaseRate:             decimalFlag(cmd, "base-rate"),
			Multiplier:           decimalFlag(cmd, "multiplier"),
			JumpMultiplier:       decimalFlag(cmd, "jump-multiplier"),
			Kink:                 decimalFlag(cmd, "kink"),
		}

		if err := riskService.SupportMarket(ctx, caller, market); err != nil {
			cmd.PrintErrln("add market error:", err)
			return
		}

		cmd.Println("market listed:", market.Symbol)
	},
}

var setCollateralFactorCmd = &cobra.Command{
	Use:   "set-collateral-factor",
	Short: "update a market's collateral factor",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		riskService := buildRiskService(database)

		caller, _ := cmd.Flags().GetString("caller")
		assetID, _ := cmd.Flags().GetString("asset")
		factor := decimalFlag(cmd, "factor")

		if err := riskService.SetCollateralFactor(ctx, caller, assetID, factor); err != nil {
			cmd.PrintErrln("set collateral factor error:", err)
			return
		}

		cmd.Println("collateral factor updated")
	},
}

var setCapCmd = &cobra.Command{
	Use:   "set-cap",
	Short: "update a market's supply or borrow cap, zero means unlimited",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		riskService := buildRiskService(database)

		caller, _ := cmd.Flags().GetString("caller")
		assetID, _ := cmd.Flags().GetString("asset")
		side, _ := cmd.Flags().GetString("side")
		cap := decimalFlag(cmd, "cap")

		var err error
		switch side {
		case "supply":
			err = riskService.SetSupplyCap(ctx, caller, assetID, cap)
		case "borrow":
			err = riskService.SetBorrowCap(ctx, caller, assetID, cap)
		default:
			cmd.PrintErrln("side must be supply or borrow")
			return
		}

		if err != nil {
			cmd.PrintErrln("set cap error:", err)
			return
		}

		cmd.Println("cap updated")
	},
}

var pauseMarketCmd = &cobra.Command{
	Use:   "pause-market",
	Short: "pause or resume a market action",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		riskService := buildRiskService(database)

		caller, _ := cmd.Flags().GetString("caller")
		assetID, _ := cmd.Flags().GetString("asset")
		action, _ := cmd.Flags().GetString("action")
		paused, _ := cmd.Flags().GetBool("paused")

		if err := riskService.SetPaused(ctx, caller, assetID, action, paused); err != nil {
			cmd.PrintErrln("pause market error:", err)
			return
		}

		cmd.Println("market action updated")
	},
}

func decimalFlag(cmd *cobra.Command, name string) decimal.Decimal {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}

	return d
}

func buildRiskService(database *db.DB) core.IRiskService {
	system := provideSystem()
	marketStore := provideMarketStore(database)
	supplyStore := provideSupplyStore(database)
	borrowStore := provideBorrowStore(database)
	memberStore := provideMemberStore(database)
	rewardStore := provideRewardStore(database)
	priceStore := providePriceStore(database)
	allowListStore := provideAllowListStore(database)
	vaultStore := provideVaultStore(database)
	transferStore := provideTransferStore(database)
	propertyStore := providePropertyStore(database)

	marketService := provideMarketService(marketStore)
	walletService := provideWalletService(vaultStore, transferStore)
	allowListService := provideAllowListService(system, allowListStore)
	priceService := providePriceService(priceStore)
	accountService := provideAccountService(marketStore, supplyStore, borrowStore, memberStore, priceService)
	rewardService := provideRewardService(system, database, rewardStore, marketStore, supplyStore, borrowStore, walletService, propertyStore)

	return provideRiskService(system, database, marketStore, memberStore, supplyStore, borrowStore, marketService, accountService, rewardService, allowListService, propertyStore)
}

func init() {
	rootCmd.AddCommand(addMarketCmd)
	rootCmd.AddCommand(setCollateralFactorCmd)
	rootCmd.AddCommand(setCapCmd)
	rootCmd.AddCommand(pauseMarketCmd)

	for _, c := range []*cobra.Command{addMarketCmd, setCollateralFactorCmd, setCapCmd, pauseMarketCmd} {
		c.Flags().String("caller", "", "acting admin or guardian user id")
	}

	addMarketCmd.Flags().String("symbol", "", "market symbol")
	addMarketCmd.Flags().String("asset", "", "underlying asset id")
	addMarketCmd.Flags().String("share-asset", "", "share asset id")
	addMarketCmd.Flags().String("init-exchange-rate", "1", "initial exchange rate")
	addMarketCmd.Flags().String("reserve-factor", "0.1", "reserve factor")
	addMarketCmd.Flags().String("liquidation-incentive", "0.05", "liquidation incentive")
	addMarketCmd.Flags().String("protocol-seize-share", "0.028", "protocol seize share")
	addMarketCmd.Flags().String("collateral-factor", "0", "collateral factor")
	addMarketCmd.Flags().String("close-factor", "0.5", "close factor")
	addMarketCmd.Flags().String("base-rate", "0.02", "yearly base rate")
	addMarketCmd.Flags().String("multiplier", "0.1", "yearly multiplier")
	addMarketCmd.Flags().String("jump-multiplier", "0", "yearly jump multiplier")
	addMarketCmd.Flags().String("kink", "0", "utilization kink")

	setCollateralFactorCmd.Flags().String("asset", "", "underlying asset id")
	setCollateralFactorCmd.Flags().String("factor", "0", "collateral factor")

	setCapCmd.Flags().String("asset", "", "underlying asset id")
	setCapCmd.Flags().String("side", "supply", "supply or borrow")
	setCapCmd.Flags().String("cap", "0", "cap amount")

	pauseMarketCmd.Flags().String("asset", "", "underlying asset id")
	pauseMarketCmd.Flags().String("action", "mint", "mint, redeem or borrow")
	pauseMarketCmd.Flags().Bool("paused", true, "paused")
}
