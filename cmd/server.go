package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lever/handler"

	"github.com/drone/signal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run lever api server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

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
		supplyService := provideSupplyService(database, supplyStore, marketStore, marketService, riskService, walletService)
		borrowService := provideBorrowService(database, borrowStore, supplyStore, marketStore, marketService, accountService, riskService, walletService)

		svr := handler.Server{
			Version:        rootCmd.Version,
			Config:         &cfg,
			MarketStore:    marketStore,
			SupplyStore:    supplyStore,
			BorrowStore:    borrowStore,
			TransferStore:  transferStore,
			MarketService:  marketService,
			AccountService: accountService,
			RewardService:  rewardService,
			RiskService:    riskService,
			SupplyService:  supplyService,
			BorrowService:  borrowService,
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: svr.Handler(),
		}

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		})

		logrus.Infoln("serve at", addr)
		err := server.ListenAndServe()
		if err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server aborted")
		}

		<-done
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
}
