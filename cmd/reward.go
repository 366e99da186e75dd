package cmd

import (
	"time"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

var addRewardCmd = &cobra.Command{
	Use:     "add-reward",
	Aliases: []string{"ar"},
	Short:   "create an emission schedule for a market",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		rewardService := buildRewardService(database)

		caller, _ := cmd.Flags().GetString("caller")
		marketAssetID, _ := cmd.Flags().GetString("market-asset")
		rewardAssetID, _ := cmd.Flags().GetString("reward-asset")
		owner, _ := cmd.Flags().GetString("owner")
		days, _ := cmd.Flags().GetInt("days")
		if marketAssetID == "" || rewardAssetID == "" {
			cmd.PrintErrln("market-asset and reward-asset are required")
			return
		}

		cfg := &core.RewardConfig{
			MarketAssetID: marketAssetID,
			RewardAssetID: rewardAssetID,
			Owner:         owner,
			EndAt:         time.Now().AddDate(0, 0, days),
			SupplySpeed:   decimalFlag(cmd, "supply-speed"),
			BorrowSpeed:   decimalFlag(cmd, "borrow-speed"),
		}

		if err := rewardService.CreateConfig(ctx, caller, cfg); err != nil {
			cmd.PrintErrln("add reward error:", err)
			return
		}

		cmd.Println("reward schedule created")
	},
}

var setRewardSpeedsCmd = &cobra.Command{
	Use:   "set-reward-speeds",
	Short: "update emission speeds for a schedule",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		rewardService := buildRewardService(database)

		caller, _ := cmd.Flags().GetString("caller")
		marketAssetID, _ := cmd.Flags().GetString("market-asset")
		rewardAssetID, _ := cmd.Flags().GetString("reward-asset")

		err := rewardService.SetSpeeds(ctx, caller, marketAssetID, rewardAssetID,
			decimalFlag(cmd, "supply-speed"), decimalFlag(cmd, "borrow-speed"))
		if err != nil {
			cmd.PrintErrln("set reward speeds error:", err)
			return
		}

		cmd.Println("reward speeds updated")
	},
}

var pauseRewardCmd = &cobra.Command{
	Use:   "pause-reward",
	Short: "pause or resume reward disbursement",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		rewardService := buildRewardService(database)

		caller, _ := cmd.Flags().GetString("caller")
		paused, _ := cmd.Flags().GetBool("paused")

		if err := rewardService.SetPaused(ctx, caller, paused); err != nil {
			cmd.PrintErrln("pause reward error:", err)
			return
		}

		cmd.Println("reward disbursement updated")
	},
}

func buildRewardService(database *db.DB) core.IRewardService {
	system := provideSystem()
	marketStore := provideMarketStore(database)
	supplyStore := provideSupplyStore(database)
	borrowStore := provideBorrowStore(database)
	rewardStore := provideRewardStore(database)
	vaultStore := provideVaultStore(database)
	transferStore := provideTransferStore(database)
	propertyStore := providePropertyStore(database)

	walletService := provideWalletService(vaultStore, transferStore)
	return provideRewardService(system, database, rewardStore, marketStore, supplyStore, borrowStore, walletService, propertyStore)
}

func init() {
	rootCmd.AddCommand(addRewardCmd)
	rootCmd.AddCommand(setRewardSpeedsCmd)
	rootCmd.AddCommand(pauseRewardCmd)

	for _, c := range []*cobra.Command{addRewardCmd, setRewardSpeedsCmd, pauseRewardCmd} {
		c.Flags().String("caller", "", "acting admin or schedule owner user id")
	}

	addRewardCmd.Flags().String("market-asset", "", "market underlying asset id")
	addRewardCmd.Flags().String("reward-asset", "", "incentive token asset id")
	addRewardCmd.Flags().String("owner", "", "schedule owner user id")
	addRewardCmd.Flags().Int("days", 30, "emission duration in days")
	addRewardCmd.Flags().String("supply-speed", "0", "emission per second to suppliers")
	addRewardCmd.Flags().String("borrow-speed", "0", "emission per second to borrowers")

	setRewardSpeedsCmd.Flags().String("market-asset", "", "market underlying asset id")
	setRewardSpeedsCmd.Flags().String("reward-asset", "", "incentive token asset id")
	setRewardSpeedsCmd.Flags().String("supply-speed", "0", "emission per second to suppliers")
	setRewardSpeedsCmd.Flags().String("borrow-speed", "0", "emission per second to borrowers")

	pauseRewardCmd.Flags().Bool("paused", true, "paused")
}
