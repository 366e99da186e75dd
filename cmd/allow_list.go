package cmd

import (
	"lever/core"
	allowlistservice "lever/service/allowlist"

	"github.com/spf13/cobra"
)

var allowListCmd = &cobra.Command{
	Use:   "allow-list",
	Short: "manage the liquidator whitelist and the deny list",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		system := provideSystem()
		service := allowlistservice.New(system, provideAllowListStore(database))

		caller, _ := cmd.Flags().GetString("caller")
		userID, _ := cmd.Flags().GetString("user")
		scope, _ := cmd.Flags().GetString("scope")
		remove, _ := cmd.Flags().GetBool("remove")

		if scope != core.AllowScopeLiquidator && scope != core.AllowScopeBlocked {
			cmd.PrintErrln("scope must be", core.AllowScopeLiquidator, "or", core.AllowScopeBlocked)
			return
		}

		var err error
		if remove {
			err = service.Remove(ctx, caller, userID, scope)
		} else {
			err = service.Add(ctx, caller, userID, scope)
		}

		if err != nil {
			cmd.PrintErrln("allow list error:", err)
			return
		}

		cmd.Println("allow list updated")
	},
}

func init() {
	rootCmd.AddCommand(allowListCmd)

	allowListCmd.Flags().String("caller", "", "acting admin user id")
	allowListCmd.Flags().String("user", "", "target user id")
	allowListCmd.Flags().String("scope", core.AllowScopeLiquidator, "list scope")
	allowListCmd.Flags().Bool("remove", false, "remove instead of add")
}
