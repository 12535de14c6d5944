package cmd

import (
	"deposbank/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var custodyCmd = &cobra.Command{
	Use:   "custody",
	Short: "operate custody orders",
}

var custodyMintCmd = &cobra.Command{
	Use:   "mint <user> <symbol> <satoshi> <txid>",
	Short: "settle an external bitcoin deposit",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		db := provideDatabase()
		defer db.Close()

		system := provideSystem()
		custodian := provideCustodian(system, provideLedger(db), provideOrderStore(db), provideTransferStore(db))

		operator := operatorFlag(cmd, system)
		symbol := core.Symbol(args[1])
		satoshi := cast.ToInt64(args[2])

		if err := custodian.Mint(ctx, operator, args[0], symbol, satoshi, args[3]); err != nil {
			cmd.PrintErrln("mint error:", err)
			return
		}

		cmd.Println("mint recorded")
	},
}

var custodyRedeemCmd = &cobra.Command{
	Use:   "redeem <order> <txid>",
	Short: "attach the payout transaction to a redeem order",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		db := provideDatabase()
		defer db.Close()

		system := provideSystem()
		custodian := provideCustodian(system, provideLedger(db), provideOrderStore(db), provideTransferStore(db))

		operator := operatorFlag(cmd, system)
		orderID := cast.ToUint64(args[0])

		if err := custodian.Redeem(ctx, operator, core.SymbolDBTC, orderID, args[1]); err != nil {
			cmd.PrintErrln("redeem error:", err)
			return
		}

		cmd.Println("order processing")
	},
}

var custodyConfirmCmd = &cobra.Command{
	Use:   "confirm <kind> <order>",
	Short: "settle a processing order",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		db := provideDatabase()
		defer db.Close()

		system := provideSystem()
		custodian := provideCustodian(system, provideLedger(db), provideOrderStore(db), provideTransferStore(db))

		operator := operatorFlag(cmd, system)
		kind := core.OrderKind(args[0])
		orderID := cast.ToUint64(args[1])

		if err := custodian.Confirm(ctx, operator, kind, orderID); err != nil {
			cmd.PrintErrln("confirm error:", err)
			return
		}

		cmd.Println("order settled")
	},
}

func operatorFlag(cmd *cobra.Command, system *core.System) string {
	operator, _ := cmd.Flags().GetString("operator")
	if operator == "" {
		operator = system.CustodianAccount
	}

	return operator
}

func init() {
	custodyCmd.PersistentFlags().String("operator", "", "operator account")

	custodyCmd.AddCommand(custodyMintCmd)
	custodyCmd.AddCommand(custodyRedeemCmd)
	custodyCmd.AddCommand(custodyConfirmCmd)
	rootCmd.AddCommand(custodyCmd)
}
