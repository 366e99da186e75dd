package cmd

import (
	"lever/worker"
	"lever/worker/accrual"
	"lever/worker/payout"
	"lever/worker/priceoracle"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "lever background workers",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

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
		riskService := provideRiskService(system, database, marketStore, memberStore, supplyStore, borrowStore, marketService, accountService, rewardService, allowListService, propertyStore)

		workers := []worker.IJob{
			accrual.New(&cfg, riskService),
			payout.New(&cfg, database, transferStore, propertyStore, nil),
			priceoracle.New(&cfg, marketStore, priceStore, priceService),
		}

		for _, w := range workers {
			if err := w.Start(); err != nil {
				log.Errorln(err)
				return
			}
		}

		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			for _, w := range workers {
				w.Stop()
			}

			close(done)
		})

		log.Infoln("workers started")
		<-done
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
