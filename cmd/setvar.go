package cmd

import (
	"deposbank/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var setvarCmd = &cobra.Command{
	Use:   "setvar <scope> <name> <value>",
	Short: "set a guarded engine variable",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		db := provideDatabase()
		defer db.Close()

		system := provideSystem()
		variableStore := provideVariableStore(db)
		ledger := provideLedger(db)
		collateralStore := provideCollateralStore(db)
		valuator := provideValuator(variableStore)
		balancer := provideBalancer(system, variableStore, ledger, collateralStore, valuator)
		variables := provideVariableService(system, variableStore, balancer)

		actor, _ := cmd.Flags().GetString("actor")
		if actor == "" {
			actor = system.AdminAccount
		}

		scope := core.Scope(args[0])
		value := cast.ToInt64(args[2])

		if err := variables.Set(ctx, actor, scope, args[1], value); err != nil {
			cmd.PrintErrln("set variable error:", err)
			return
		}

		cmd.Printf("%s/%s = %d\n", scope, args[1], value)
	},
}

func init() {
	rootCmd.AddCommand(setvarCmd)
	setvarCmd.Flags().String("actor", "", "account performing the change")
}
